package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/snowflake"
)

const messageColumns = `id, text, attachments, sender_id, receiver_id, created_at`

type messageRepo struct {
	pool *pgxpool.Pool
	ids  *snowflake.Generator
}

// NewMessageRepository returns the PostgreSQL message store.
func NewMessageRepository(pool *pgxpool.Pool, ids *snowflake.Generator) MessageRepository {
	return &messageRepo{pool: pool, ids: ids}
}

func (r *messageRepo) Insert(ctx context.Context, msg *models.Message) (*models.Message, error) {
	attachments, err := encodeAttachments(msg.Attachments)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, text, attachments, sender_id, receiver_id)
		 VALUES ($1, $2, $3::jsonb, $4, $5)
		 RETURNING `+messageColumns,
		r.ids.Next(), msg.Text, attachments, msg.SenderID, msg.ReceiverID,
	)
	stored, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRowReturned
	}
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	return stored, nil
}

func (r *messageRepo) GetConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE `+fmt.Sprintf(conversationFilter, "$1", "$2")+`
		 ORDER BY created_at DESC, id DESC`,
		a, b,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	return collectMessages(rows)
}

func (r *messageRepo) GetOlderThan(ctx context.Context, a, b string, before time.Time, limit int) ([]models.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE `+fmt.Sprintf(conversationFilter, "$1", "$2")+`
		   AND created_at < $3
		 ORDER BY created_at DESC, id DESC
		 LIMIT $4`,
		a, b, before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying older messages: %w", err)
	}
	return collectMessages(rows)
}

func (r *messageRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var (
		m   models.Message
		raw []byte
	)
	if err := row.Scan(&m.ID, &m.Text, &raw, &m.SenderID, &m.ReceiverID, &m.CreatedAt); err != nil {
		return nil, err
	}
	list, err := decodeAttachments(raw)
	if err != nil {
		return nil, err
	}
	m.Attachments = list
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	return messages, nil
}
