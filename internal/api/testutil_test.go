package api

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	redisclient "github.com/kentzie123/LJA-Admin-Chat-Server/internal/redis"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/service"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/storage"
	"github.com/labstack/echo/v4"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testSupportID = "support-admin"
	testStaffID   = "staff-1"
	testClientID  = "client-7"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	return e
}

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := newTestEcho()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID string) {
	c.Set("user_id", userID)
}

func newTestRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redisclient.NewClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("creating test redis client: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func dataURI(mime, payload string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func strPtr(s string) *string { return &s }

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
// Mock message repository
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	InsertFn          func(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetConversationFn func(ctx context.Context, a, b string) ([]models.Message, error)
	GetOlderThanFn    func(ctx context.Context, a, b string, before time.Time, limit int) ([]models.Message, error)
	PingFn            func(ctx context.Context) error

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

func (m *mockMessageRepo) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock storage
// ---------------------------------------------------------------------------

type mockStorage struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	fail    bool
}

var errStorageDown = errors.New("storage unavailable")

func (m *mockStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ storage.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStorageDown
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	m.keys = append(m.keys, key)
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
// Handler wiring
// ---------------------------------------------------------------------------

type handlerMocks struct {
	repo    *mockMessageRepo
	storage *mockStorage
	gw      *mockGateway
}

func newMessageHandler(m handlerMocks) *MessageHandler {
	svc := service.NewMessageService(
		m.repo,
		service.NewAttachmentUploader(m.storage),
		m.gw,
		service.MessageServiceConfig{SupportID: testSupportID},
	)
	return NewMessageHandler(svc)
}

func defaultMocks() handlerMocks {
	return handlerMocks{repo: &mockMessageRepo{}, storage: &mockStorage{}, gw: &mockGateway{}}
}
