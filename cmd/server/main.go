// Command server wires configuration, storage, the task queue, and the
// HTTP surface together and runs until signalled. Grounded on the
// teacher's main.go::startServer, generalized from a CLI-first entrypoint
// into a service-first one — the converter's CLI mode has no analog once
// statements arrive over HTTP/email intake instead of as local files.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/statement-pipeline/internal/config"
	"github.com/insightdelivered/statement-pipeline/internal/crypto"
	"github.com/insightdelivered/statement-pipeline/internal/extractors"
	"github.com/insightdelivered/statement-pipeline/internal/httpapi"
	"github.com/insightdelivered/statement-pipeline/internal/logging"
	"github.com/insightdelivered/statement-pipeline/internal/pipeline"
	"github.com/insightdelivered/statement-pipeline/internal/queue"
	"github.com/insightdelivered/statement-pipeline/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLog := logging.Setup(cfg)
	baseLog.Info().Str("version", version).Msg("starting statement pipeline")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.DSN())
	if err != nil {
		baseLog.Fatal().Err(err).Msg("opening postgres")
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		baseLog.Fatal().Err(err).Msg("running migrations")
	}

	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		baseLog.Fatal().Err(err).Msg("connecting to redis")
	}
	defer q.Close()

	box, err := crypto.New(cfg.FernetKey)
	if err != nil {
		baseLog.Fatal().Err(err).Msg("initializing credential cipher")
	}

	registry := extractors.DefaultRegistry()
	pdf := pipeline.NewPDFAccessor()

	handle := pipeline.Handler(store, registry, pdf, box, baseLog)
	worker := queue.NewWorker(q, handle, baseLog)

	go func() {
		if err := worker.Run(ctx); err != nil {
			baseLog.Error().Err(err).Msg("worker stopped")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:   "statement-pipeline v" + version,
		BodyLimit: int(cfg.MaxUploadMiB) * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	h := httpapi.New(store, q, box, cfg, baseLog)
	h.RegisterRoutes(app)

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			baseLog.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	baseLog.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		baseLog.Error().Err(err).Msg("http shutdown")
	}

	os.Exit(0)
}
