package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/database"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: adminchat-cli migrate")
			fmt.Println()
			fmt.Println("Apply the embedded schema migrations.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  postgres://... or sqlite://path (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: adminchat-cli seed")
			fmt.Println()
			fmt.Println("Seed a demo conversation between a website client and the support account.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL   postgres://... or sqlite://path (required)")
			fmt.Println("  CHAT_ADMIN_ID  support identity (required)")
			fmt.Println("  SEED_CLIENT_ID demo client identity (default: demo-client)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: adminchat-cli health")
			fmt.Println()
			fmt.Println("Check if the admin chat server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "token":
		if hasFlag("--help", os.Args[2:]) || len(os.Args) < 3 {
			fmt.Println("Usage: adminchat-cli token <user-id> [ttl]")
			fmt.Println()
			fmt.Println("Mint a session token for local testing. ttl defaults to 24h.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  JWT_SECRET  signing secret shared with the server (required)")
			return
		}
		os.Exit(runToken(os.Args[2:]))
	case "version":
		fmt.Printf("adminchat-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: adminchat-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed a demo support conversation")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  token    Mint a session token for a user id")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'adminchat-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	if database.IsSQLiteURL(dbURL) {
		path := database.SQLitePath(dbURL)
		fmt.Printf("migrating sqlite database %s...\n", path)
		db, err := database.NewSQLiteDB(context.Background(), path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
			return 1
		}
		_ = db.Close()
		fmt.Println("migrations applied")
		return 0
	}

	fmt.Println("running migrations...")
	res, err := database.ApplyPostgresMigrations(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}
	if res.Changed {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", res.Version, res.Dirty)
	} else {
		fmt.Printf("no new migrations (current version: %d)\n", res.Version)
	}
	return 0
}

// --- seed ---

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	supportID := requireEnv("CHAT_ADMIN_ID")
	clientID := envOr("SEED_CLIENT_ID", "demo-client")
	ctx := context.Background()

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	fmt.Println("connecting to database...")
	var repo database.MessageRepository
	if database.IsSQLiteURL(dbURL) {
		db, err := database.NewSQLiteDB(ctx, database.SQLitePath(dbURL))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: database open failed: %v\n", err)
			return 1
		}
		defer db.Close()
		repo = database.NewSQLiteMessageRepository(db, sf, nil)
	} else {
		pool, err := database.NewPostgresPool(ctx, dbURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
			return 1
		}
		defer pool.Close()
		repo = database.NewMessageRepository(pool, sf)
	}

	conversation := []struct {
		from, to, text string
	}{
		{clientID, supportID, "Hi, I'd like to ask about enrollment."},
		{supportID, clientID, "Hello! Happy to help. Which program are you interested in?"},
		{clientID, supportID, "The weekend classes, please."},
	}

	fmt.Println("creating messages...")
	for _, line := range conversation {
		text := line.text
		if _, err := repo.Insert(ctx, &models.Message{SenderID: line.from, ReceiverID: line.to, Text: &text}); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating message: %v\n", err)
			return 1
		}
		// Distinct created_at values keep the demo ordering stable.
		time.Sleep(5 * time.Millisecond)
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  conversation: %s <-> %s\n", clientID, supportID)
	fmt.Printf("  messages:     %d\n", len(conversation))
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:8080")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}

// --- token ---

func runToken(args []string) int {
	secret := requireEnv("JWT_SECRET")
	userID := args[0]

	ttl := 24 * time.Hour
	if len(args) > 1 {
		parsed, err := time.ParseDuration(args[1])
		if err != nil || parsed <= 0 {
			fmt.Fprintf(os.Stderr, "error: invalid ttl %q\n", args[1])
			return 1
		}
		ttl = parsed
	}

	token, err := auth.NewTokenService(secret).GenerateAccessToken(userID, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: signing token: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}
