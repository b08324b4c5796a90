package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/api"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/config"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/database"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/gateway"
	redisclient "github.com/kentzie123/LJA-Admin-Chat-Server/internal/redis"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/service"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/snowflake"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("adminchat exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	sf, err := snowflake.NewGenerator(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	messages, closeStore, err := openStore(ctx, cfg.DatabaseURL, sf)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var files service.FileStorage = storage.Unconfigured{}
	var storagePinger api.Pinger
	if cfg.MinIOEnabled() {
		mc, err := storage.NewMinIOClient(ctx, storage.Options{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			return err
		}
		files, storagePinger = mc, mc
	} else {
		slog.Warn("MINIO_ENDPOINT not set; attachment uploads are disabled")
	}

	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, cfg.SupportID)

	// --- Services ---

	messageSvc := service.NewMessageService(
		messages,
		service.NewAttachmentUploader(files),
		gwManager,
		service.MessageServiceConfig{
			SupportID:              cfg.SupportID,
			CleanupOrphanedUploads: cfg.CleanupOrphanedUploads,
		},
	)

	deps := &api.Dependencies{
		Messages: api.NewMessageHandler(messageSvc),
		Sessions: api.NewSessionHandler(),
		Health: api.NewHealthHandler(map[string]api.Pinger{
			"database": messages,
			"redis":    rdb,
			"storage":  storagePinger,
		}, gwManager),
		Gateway:      gwManager,
		TokenService: tokenSvc,
		RateLimiter:  rdb,
		RateLimit:    cfg.RateLimitPerMinute,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("adminchat starting", "addr", cfg.ServerAddr, "support_id", cfg.SupportID)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		gwManager.CloseAll()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks the message store from the database URL scheme.
func openStore(ctx context.Context, databaseURL string, sf *snowflake.Generator) (database.MessageRepository, func(), error) {
	if database.IsSQLiteURL(databaseURL) {
		db, err := database.NewSQLiteDB(ctx, database.SQLitePath(databaseURL))
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using sqlite store", "path", database.SQLitePath(databaseURL))
		return database.NewSQLiteMessageRepository(db, sf, nil), func() { _ = db.Close() }, nil
	}

	pool, err := database.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return database.NewMessageRepository(pool, sf), pool.Close, nil
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				slog.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
