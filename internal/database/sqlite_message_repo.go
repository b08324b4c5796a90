package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/snowflake"
)

type sqliteMessageRow struct {
	ID          int64          `db:"id"`
	Text        sql.NullString `db:"text"`
	Attachments sql.NullString `db:"attachments"`
	SenderID    string         `db:"sender_id"`
	ReceiverID  string         `db:"receiver_id"`
	CreatedAt   string         `db:"created_at"`
}

func (r sqliteMessageRow) toModel() (models.Message, error) {
	m := models.Message{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
	}
	if r.Text.Valid {
		text := r.Text.String
		m.Text = &text
	}
	if r.Attachments.Valid {
		list, err := decodeAttachments([]byte(r.Attachments.String))
		if err != nil {
			return models.Message{}, err
		}
		m.Attachments = list
	}
	createdAt, err := parseSQLiteTime(r.CreatedAt)
	if err != nil {
		return models.Message{}, err
	}
	m.CreatedAt = createdAt
	return m, nil
}

type sqliteMessageRepo struct {
	db  *sqlx.DB
	ids *snowflake.Generator
	now func() time.Time
}

// NewSQLiteMessageRepository returns the SQLite message store. A nil clock
// defaults to time.Now.
func NewSQLiteMessageRepository(db *sqlx.DB, ids *snowflake.Generator, clock func() time.Time) MessageRepository {
	if clock == nil {
		clock = time.Now
	}
	return &sqliteMessageRepo{db: db, ids: ids, now: clock}
}

func (r *sqliteMessageRepo) Insert(ctx context.Context, msg *models.Message) (*models.Message, error) {
	attachments, err := encodeAttachments(msg.Attachments)
	if err != nil {
		return nil, err
	}

	var row sqliteMessageRow
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (id, text, attachments, sender_id, receiver_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+messageColumns,
		r.ids.Next(), msg.Text, attachments, msg.SenderID, msg.ReceiverID, formatSQLiteTime(r.now()),
	).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRowReturned
	}
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	stored, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *sqliteMessageRepo) GetConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	var rows []sqliteMessageRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE `+fmt.Sprintf(conversationFilter, "?1", "?2")+`
		 ORDER BY created_at DESC, id DESC`,
		a, b,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	return sqliteRowsToModels(rows)
}

func (r *sqliteMessageRepo) GetOlderThan(ctx context.Context, a, b string, before time.Time, limit int) ([]models.Message, error) {
	var rows []sqliteMessageRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE `+fmt.Sprintf(conversationFilter, "?1", "?2")+`
		   AND created_at < ?3
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?4`,
		a, b, formatSQLiteTime(before), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying older messages: %w", err)
	}
	return sqliteRowsToModels(rows)
}

func (r *sqliteMessageRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func sqliteRowsToModels(rows []sqliteMessageRow) ([]models.Message, error) {
	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
