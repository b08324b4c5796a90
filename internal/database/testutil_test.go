package database

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/snowflake"
)

// testPool returns a pgxpool.Pool connected to the migrated test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || IsSQLiteURL(dsn) {
		t.Skip("DATABASE_URL not set to postgres, skipping integration test")
	}
	if _, err := ApplyPostgresMigrations(dsn); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// stepClock returns a strictly increasing time on each call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func testSnowflake(t *testing.T) *snowflake.Generator {
	t.Helper()
	g, err := snowflake.NewGenerator(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return g
}

func newSQLiteRepo(t *testing.T) MessageRepository {
	t.Helper()
	db, err := NewSQLiteDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteMessageRepository(db, testSnowflake(t), newStepClock().Now)
}

func newPostgresRepo(t *testing.T) MessageRepository {
	t.Helper()
	return NewMessageRepository(testPool(t), testSnowflake(t))
}

// eachStore runs fn against every MessageRepository implementation.
func eachStore(t *testing.T, fn func(t *testing.T, repo MessageRepository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteRepo(t)) })
	t.Run("postgres", func(t *testing.T) { fn(t, newPostgresRepo(t)) })
}

// identity returns a unique identity so tests sharing a database never see
// each other's rows.
func identity(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func strPtr(s string) *string { return &s }
