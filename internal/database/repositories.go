package database

import (
	"context"
	"errors"
	"time"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
)

// ErrNoRowReturned is returned by Insert when the store reports success but
// hands back no row.
var ErrNoRowReturned = errors.New("insert returned no row")

// MessageRepository persists messages and answers conversation queries.
// A conversation between a and b is every row whose unordered
// {sender_id, receiver_id} pair equals {a, b}. Reads are newest first.
type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetConversation(ctx context.Context, a, b string) ([]models.Message, error)
	GetOlderThan(ctx context.Context, a, b string, before time.Time, limit int) ([]models.Message, error)
	Ping(ctx context.Context) error
}

// conversationFilter matches rows exchanged between exactly the two
// identities bound to its first two placeholders, in either direction.
const conversationFilter = `((sender_id = %[1]s AND receiver_id = %[2]s) OR (sender_id = %[2]s AND receiver_id = %[1]s))`
