// Command ingest loads PDF files into the document store from the
// command line, bypassing the HTTP API. Useful for seeding a corpus
// or re-ingesting documents after an embedding model change.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/docchat/docchat/internal/ai"
	"github.com/docchat/docchat/internal/ai/openai"
	"github.com/docchat/docchat/internal/cache"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/metrics"
	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/repository"
	"github.com/docchat/docchat/internal/service"
	"github.com/docchat/docchat/internal/vectorstore"
	"github.com/docchat/docchat/internal/vectorstore/badger"
	"github.com/docchat/docchat/internal/vectorstore/pgvector"
)

func main() {
	app := &cli.App{
		Name:  "ingest",
		Usage: "Bulk document ingestion for the DocChat API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Parse, chunk and embed PDF files for a user",
				ArgsUsage: "FILE [FILE...]",
				Action:    runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Email of the user the documents belong to",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-file ingestion timeout",
						Value: 10 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep going when a file fails to ingest",
					},
				},
			},
			{
				Name:      "reembed",
				Usage:     "Regenerate embeddings for stored documents from their chunk text",
				ArgsUsage: "[DOCUMENT_ID...]",
				Action:    reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Email of the user the documents belong to",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep going when a document fails to re-embed",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: migrateCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runtimeEnv bundles the connections the ingestion commands share.
type runtimeEnv struct {
	cfg   *config.Config
	repo  *repository.Repository
	cache *cache.Cache
	store vectorstore.Store
	svc   *service.DocumentService
}

func (e *runtimeEnv) Close() {
	if e.svc != nil {
		e.svc.Release()
	}
	if e.store != nil {
		e.store.Close()
	}
	if e.cache != nil {
		e.cache.Close()
	}
	if e.repo != nil {
		e.repo.Close()
	}
}

// openEnv connects to the backing services using the same environment
// configuration as the server.
func openEnv(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := &runtimeEnv{cfg: cfg}

	env.repo, err = repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	env.cache, err = cache.New(ctx, cfg.RedisURL)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	env.store, err = openStore(ctx, cfg)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

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
		env.Close()
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	env.svc, err = service.NewDocumentService(env.repo, env.store, provider.Embedder(), env.cache,
		service.DocumentConfig{
			MaxUploadSize:  cfg.MaxUploadSize,
			ChunkSize:      cfg.ChunkSize,
			ChunkOverlap:   cfg.ChunkOverlap,
			EmbedBatchSize: cfg.EmbedBatchSize,
			IngestWorkers:  cfg.IngestWorkers,
			SessionTTL:     cfg.SessionTTL,
		}, metrics.NewNoop(), slog.Default())
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to create document service: %w", err)
	}

	return env, nil
}

func lookupOwner(ctx context.Context, repo *repository.Repository, email string) (string, error) {
	user, err := repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", fmt.Errorf("failed to look up owner: %w", err)
	}
	return user.ID, nil
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("at least one PDF file is required")
	}

	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	ownerID, err := lookupOwner(ctx, env.repo, c.String("owner"))
	if err != nil {
		return err
	}

	timeout := c.Duration("timeout")
	continueOnError := c.Bool("continue-on-error")

	var failed int
	for _, path := range files {
		if err := ingestFile(ctx, env.svc, ownerID, path, timeout); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			if !continueOnError {
				return fmt.Errorf("ingestion aborted: %w", err)
			}
			continue
		}
	}

	fmt.Fprintf(os.Stderr, "Ingested %d of %d file(s)\n", len(files)-failed, len(files))
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to ingest", failed)
	}

	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	ownerID, err := lookupOwner(ctx, env.repo, c.String("owner"))
	if err != nil {
		return err
	}

	ids := c.Args().Slice()
	if len(ids) == 0 {
		// No explicit IDs: re-embed every ready document the owner has.
		docs, err := env.repo.ListDocuments(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		for _, doc := range docs {
			if doc.Status == model.StatusReady {
				ids = append(ids, doc.ID)
			}
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "No ready documents to re-embed")
		return nil
	}

	continueOnError := c.Bool("continue-on-error")

	var failed int
	for _, id := range ids {
		n, err := env.svc.Reembed(ctx, ownerID, id)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", id, err)
			if !continueOnError {
				return fmt.Errorf("re-embedding aborted: %w", err)
			}
			continue
		}
		fmt.Fprintf(os.Stderr, "OK   %s: %d chunk(s) re-embedded\n", id, n)
	}

	fmt.Fprintf(os.Stderr, "Re-embedded %d of %d document(s)\n", len(ids)-failed, len(ids))
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to re-embed", failed)
	}

	return nil
}

func ingestFile(ctx context.Context, svc *service.DocumentService, ownerID, path string, timeout time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := svc.IngestNow(ctx, ownerID, filepath.Base(path), f, info.Size())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "OK   %s: document %s, %d chunk(s), status %s\n",
		path, doc.ID, doc.ChunkCount, doc.Status)

	if doc.Status == model.StatusFailed {
		return fmt.Errorf("ingestion failed: %s", doc.FailureReason)
	}

	return nil
}

func migrateCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Migrations applied")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	if cfg.VectorBackend == config.BackendBadger {
		return badger.Open(cfg.BadgerPath, cfg.EmbeddingDimensions, false)
	}
	return pgvector.New(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
