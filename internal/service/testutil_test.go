package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/storage"
)

// ---------------------------------------------------------------------------
// Mock message repository
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	InsertFn          func(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetConversationFn func(ctx context.Context, a, b string) ([]models.Message, error)
	GetOlderThanFn    func(ctx context.Context, a, b string, before time.Time, limit int) ([]models.Message, error)

	inserted []models.Message
	calls    int
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *models.Message) (*models.Message, error) {
	m.calls++
	if m.InsertFn != nil {
		return m.InsertFn(ctx, msg)
	}
	stored := *msg
	stored.ID = int64(len(m.inserted) + 1)
	stored.CreatedAt = time.Date(2026, 1, 10, 9, 0, len(m.inserted), 0, time.UTC)
	m.inserted = append(m.inserted, stored)
	return &stored, nil
}

func (m *mockMessageRepo) GetConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	m.calls++
	if m.GetConversationFn != nil {
		return m.GetConversationFn(ctx, a, b)
	}
	return []models.Message{}, nil
}

func (m *mockMessageRepo) GetOlderThan(ctx context.Context, a, b string, before time.Time, limit int) ([]models.Message, error) {
	m.calls++
	if m.GetOlderThanFn != nil {
		return m.GetOlderThanFn(ctx, a, b, before, limit)
	}
	return []models.Message{}, nil
}

func (m *mockMessageRepo) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Mock storage
// ---------------------------------------------------------------------------

type storedObject struct {
	Key  string
	Body []byte
	Opts storage.PutOptions
}

type mockStorage struct {
	mu      sync.Mutex
	objects []storedObject
	deleted []string

	// failOn makes the n-th Upload call (1-based) fail.
	failOn  int
	uploads int
}

var errStorageDown = errors.New("storage unavailable")

func (m *mockStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, opts storage.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.failOn == m.uploads {
		return errStorageDown
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects = append(m.objects, storedObject{Key: key, Body: body, Opts: opts})
	return nil
}

func (m *mockStorage) GetURL(key string) string {
	return "http://cdn.test/message-attachments/" + key
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type dispatchedEvent struct {
	UserID string
	Event  string
	Data   any
}

type mockGateway struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (m *mockGateway) DispatchToUser(userID string, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testSupportID = "support-admin"

// dataURI builds a base64 data URI for payload.
func dataURI(mime, payload string) string {
	return "data:" + mime + ";base64," + base64Std(payload)
}

func newTestUploader(fs FileStorage) *AttachmentUploader {
	u := NewAttachmentUploader(fs)
	u.now = func() time.Time { return time.UnixMilli(1767949200000) }
	u.token = func() string { return "tok" }
	return u
}

func strPtr(s string) *string { return &s }
