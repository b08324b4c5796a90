package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/database"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/gateway"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100

	cleanupTimeout = 10 * time.Second
)

// SendInput is the validated body of a send request.
type SendInput struct {
	Text        *string
	Attachments []models.AttachmentUpload
}

// MessageServiceConfig holds the deployment settings of a MessageService.
type MessageServiceConfig struct {
	// SupportID is the fixed receiver for anonymous client messages.
	SupportID string
	// CleanupOrphanedUploads deletes objects already uploaded for a message
	// that ends up not being stored.
	CleanupOrphanedUploads bool
}

// MessageService sends and reads support-chat messages.
type MessageService struct {
	messages database.MessageRepository
	uploader *AttachmentUploader
	gateway  gateway.Dispatcher
	cfg      MessageServiceConfig
}

// NewMessageService creates a MessageService.
func NewMessageService(
	messages database.MessageRepository,
	uploader *AttachmentUploader,
	gw gateway.Dispatcher,
	cfg MessageServiceConfig,
) *MessageService {
	return &MessageService{
		messages: messages,
		uploader: uploader,
		gateway:  gw,
		cfg:      cfg,
	}
}

// SendAsUser stores a message from an authenticated sender to receiverID
// and notifies the receiver.
func (s *MessageService) SendAsUser(ctx context.Context, senderID, receiverID string, in SendInput) (*models.Message, error) {
	if senderID == "" {
		return nil, ValidationError("SENDER_REQUIRED", "Sender ID required")
	}
	if receiverID == "" {
		return nil, ValidationError("RECEIVER_REQUIRED", "Receiver ID required")
	}
	return s.send(ctx, senderID, receiverID, in, "Failed to send message. Server error")
}

// SendAsClient stores a message from an anonymous client to the support
// identity and notifies it.
func (s *MessageService) SendAsClient(ctx context.Context, clientID string, in SendInput) (*models.Message, error) {
	if clientID == "" {
		return nil, ValidationError("SENDER_REQUIRED", "Sender ID required")
	}
	if s.cfg.SupportID == "" {
		return nil, ValidationError("RECEIVER_REQUIRED", "Receiver ID required")
	}
	return s.send(ctx, clientID, s.cfg.SupportID, in, "Failed to send message")
}

func (s *MessageService) send(ctx context.Context, senderID, receiverID string, in SendInput, persistMsg string) (*models.Message, error) {
	attachments, keys, err := s.uploader.UploadAll(ctx, in.Attachments)
	if err != nil {
		s.discardUploads(ctx, keys)
		return nil, err
	}

	stored, err := s.messages.Insert(ctx, &models.Message{
		Text:        in.Text,
		Attachments: attachments,
		SenderID:    senderID,
		ReceiverID:  receiverID,
	})
	if err != nil {
		slog.Error("failed to store message", "senderID", senderID, "receiverID", receiverID, "error", err)
		s.discardUploads(ctx, keys)
		return nil, PersistError(persistMsg, err)
	}

	slog.Debug("dispatching new message", "messageID", stored.ID, "receiverID", receiverID)
	s.gateway.DispatchToUser(receiverID, gateway.EventNewMessage, stored)

	return stored, nil
}

func (s *MessageService) discardUploads(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if !s.cfg.CleanupOrphanedUploads {
		slog.Warn("leaving orphaned attachments", "keys", keys)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	s.uploader.Remove(ctx, keys)
}

// GetMessages returns the whole conversation between senderID and the
// support identity, newest first.
func (s *MessageService) GetMessages(ctx context.Context, senderID string) ([]models.Message, error) {
	if s.cfg.SupportID == "" {
		return nil, ValidationError("RECEIVER_REQUIRED", "Receiver ID required")
	}
	if senderID == "" {
		return nil, ValidationError("SENDER_REQUIRED", "Sender ID required")
	}

	messages, err := s.messages.GetConversation(ctx, senderID, s.cfg.SupportID)
	if err != nil {
		return nil, QueryError(err)
	}
	return messages, nil
}

// LoadMoreMessages returns up to limit messages of the conversation between
// senderID and receiverID created before oldestDate, newest first. A limit
// of zero selects DefaultPageLimit.
func (s *MessageService) LoadMoreMessages(ctx context.Context, senderID, receiverID, oldestDate string, limit int) ([]models.Message, error) {
	if receiverID == "" {
		return nil, ValidationError("RECEIVER_REQUIRED", "Receiver ID required")
	}
	if senderID == "" {
		return nil, ValidationError("SENDER_REQUIRED", "Sender ID required")
	}
	if oldestDate == "" {
		return nil, ValidationError("DATE_REQUIRED", "Oldest Date required")
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, ValidationError("INVALID_LIMIT", "limit must be 1-100")
	}

	cutoff, err := NormalizeLegacyTimestamp(oldestDate)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.GetOlderThan(ctx, senderID, receiverID, cutoff, limit)
	if err != nil {
		return nil, QueryError(err)
	}
	return messages, nil
}
