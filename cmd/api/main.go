// Package main is the entrypoint for the DocChat API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docchat/docchat/internal/ai"
	"github.com/docchat/docchat/internal/ai/openai"
	"github.com/docchat/docchat/internal/cache"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/email"
	"github.com/docchat/docchat/internal/handler"
	"github.com/docchat/docchat/internal/metrics"
	"github.com/docchat/docchat/internal/middleware"
	"github.com/docchat/docchat/internal/repository"
	"github.com/docchat/docchat/internal/server"
	"github.com/docchat/docchat/internal/service"
	"github.com/docchat/docchat/internal/vectorstore"
	"github.com/docchat/docchat/internal/vectorstore/badger"
	"github.com/docchat/docchat/internal/vectorstore/pgvector"
	"github.com/docchat/docchat/internal/webhook"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Run migrations before opening the pool
	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize vector store
	store, err := newVectorStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open vector store",
			slog.String("backend", cfg.VectorBackend),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("vector store ready", "backend", cfg.VectorBackend)

	// Initialize AI provider
	provider, err := openai.NewProvider(&ai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		Temperature:    cfg.ChatTemperature,
		MaxTokens:      cfg.ChatMaxTokens,
		EmbedBatchSize: cfg.EmbedBatchSize,
	})
	if err != nil {
		logger.Error("failed to initialize AI provider", "error", err)
		os.Exit(1)
	}

	// Initialize mail
	var mailer email.Sender
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTP(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		mailer = email.NewLogSender(logger)
	}

	// Initialize services
	metricsRecorder := metrics.NewInMemory()

	authService := service.NewAuthService(repo, cacheClient, mailer,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)

	documentService, err := service.NewDocumentService(repo, store, provider.Embedder(), cacheClient,
		service.DocumentConfig{
			MaxUploadSize:  cfg.MaxUploadSize,
			ChunkSize:      cfg.ChunkSize,
			ChunkOverlap:   cfg.ChunkOverlap,
			EmbedBatchSize: cfg.EmbedBatchSize,
			IngestWorkers:  cfg.IngestWorkers,
			SessionTTL:     cfg.SessionTTL,
		}, metricsRecorder, logger)
	if err != nil {
		logger.Error("failed to initialize document service", "error", err)
		os.Exit(1)
	}

	chatService := service.NewChatService(repo, store, cacheClient,
		provider.Embedder(), provider.ChatModel(),
		service.ChatConfig{
			SearchTopK:           cfg.SearchTopK,
			SummaryTopK:          cfg.SummaryTopK,
			MinSimilarity:        float32(cfg.MinSimilarity),
			ConversationMaxTurns: cfg.ConversationMaxTurns,
			ConversationTTL:      cfg.ConversationTTL,
			SessionTTL:           cfg.SessionTTL,
			AnswerCacheTTL:       cfg.AnswerCacheTTL,
			SummaryCacheTTL:      cfg.SummaryCacheTTL,
		}, metricsRecorder, logger)

	statsService := service.NewStatsService(repo, store, cacheClient)

	// Webhook delivery shares the main database pool.
	webhookRepo := webhook.NewRepository(repo.Pool())
	documentService.SetEventPublisher(webhook.NewPublisher(webhookRepo, logger))
	webhookWorker := webhook.NewWorker(webhookRepo, metricsRecorder, logger)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient, store)
	authHandler := handler.NewAuthHandler(authService, logger)
	documentHandler := handler.NewDocumentHandler(documentService, chatService, cfg.MaxUploadSize, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)
	webhookHandler := handler.NewWebhookHandler(webhookRepo, logger)

	// Setup router
	r := setupRouter(h, healthHandler, authHandler, documentHandler, chatHandler, statsHandler, webhookHandler, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Let in-flight ingestion finish before the process exits.
	srv.OnShutdown("ingest-pool", func(ctx context.Context) error {
		documentService.Release()
		return nil
	})

	// Deliver webhooks in the background until shutdown.
	workerCtx, stopWorker := context.WithCancel(ctx)
	go func() {
		if err := webhookWorker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("webhook worker exited", "error", err)
		}
	}()
	srv.OnShutdown("webhook-worker", func(ctx context.Context) error {
		stopWorker()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"vector_backend", cfg.VectorBackend,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newVectorStore opens the configured vector store backend.
func newVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorBackend {
	case config.BackendBadger:
		return badger.Open(cfg.BadgerPath, cfg.EmbeddingDimensions, false)
	default:
		return pgvector.New(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	documentHandler *handler.DocumentHandler,
	chatHandler *handler.ChatHandler,
	statsHandler *handler.StatsHandler,
	webhookHandler *handler.WebhookHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	// Alias kept for clients that probe /health.
	r.Get("/health", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger: logger,
		Cache:  cacheClient,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    logger,
		Cache:     cacheClient,
		Enabled:   cfg.RateLimitEnabled,
		UserRPM:   cfg.RateLimitRPM,
		UserBurst: cfg.RateLimitBurst,
		IPRPS:     cfg.RateLimitIPRPS,
		IPBurst:   cfg.RateLimitIPBurst,
	}

	// JSON body limit for non-upload endpoints
	bodyLimit := middleware.MaxBodySize(cfg.MaxRequestBodySize)

	r.Route("/api/v1", func(r chi.Router) {
		// Account endpoints: unauthenticated, IP rate limited
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))
			r.With(bodyLimit).Post("/register", authHandler.Register)
			r.With(bodyLimit).Post("/verify", authHandler.VerifyEmail)
			r.With(bodyLimit).Post("/resend-verification", authHandler.ResendVerification)
			r.With(bodyLimit).Post("/login", authHandler.Login)
			r.With(bodyLimit).Post("/refresh", authHandler.Refresh)
			r.With(bodyLimit).Post("/forgot-password", authHandler.ForgotPassword)
			r.With(bodyLimit).Post("/reset-password", authHandler.ResetPassword)

			// Authenticated account endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		// Everything below requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", documentHandler.Upload)
				r.Get("/", documentHandler.List)
				r.Get("/{id}", documentHandler.Get)
				r.Delete("/{id}", documentHandler.Delete)
				r.Get("/{id}/summary", documentHandler.Summary)
			})

			r.Route("/chat", func(r chi.Router) {
				r.With(bodyLimit).Post("/", chatHandler.Ask)
				r.Get("/history", chatHandler.History)
				r.Delete("/history", chatHandler.ClearHistory)
			})

			r.Route("/webhooks", func(r chi.Router) {
				r.With(bodyLimit).Post("/", webhookHandler.Create)
				r.Get("/", webhookHandler.List)
				r.Get("/{id}", webhookHandler.Get)
				r.Delete("/{id}", webhookHandler.Delete)
				r.Get("/{id}/deliveries", webhookHandler.ListDeliveries)
			})

			r.Get("/stats", statsHandler.Get)

			// Aliases kept for clients built against the original paths.
			r.Post("/upload", documentHandler.Upload)
		})
	})

	// Unversioned aliases kept for clients built against the original paths.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))
		r.Post("/upload", documentHandler.Upload)
		r.With(bodyLimit).Post("/chat", chatHandler.Ask)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
