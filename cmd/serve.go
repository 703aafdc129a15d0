package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/latestcomment/influence-scoring/internal/handlers"
	"github.com/latestcomment/influence-scoring/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the questionnaire web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	sink, closeSink, err := newSink(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	service := newSessionService(cfg, sink, logger)

	engine := html.NewFileSystem(web.Templates(), ".html")
	if cfg.Templates != "" {
		engine = html.New(cfg.Templates, ".html")
	}
	app := fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: true,
	})
	app.Use(fiberlogger.New())

	h := handlers.NewHandler(service, len(cfg.Accounts) > 0, logger)
	ws := handlers.NewWebSocketHandler(service, logger)
	handlers.SetupRoutes(app, h, ws)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sweepSessions(ctx, service.Sweep, cfg.SessionIdleTimeout())
	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	logger.Info("scoring server running",
		zap.String("addr", cfg.ListenAddr),
		zap.String("sink", sink.Name()),
		zap.String("rubric", cfg.Rubric))
	return app.Listen(cfg.ListenAddr)
}

func sweepSessions(ctx context.Context, sweep func(time.Duration) int, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sweep(maxIdle); n > 0 {
				logger.Debug("swept idle sessions", zap.Int("count", n))
			}
		}
	}
}
