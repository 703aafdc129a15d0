package main

import (
	"fmt"

	"github.com/latestcomment/influence-scoring/internal/config"
	"github.com/latestcomment/influence-scoring/internal/services"
	"go.uber.org/zap"
)

// newSink builds the configured sink and a function releasing its resources.
func newSink(cfg config.Config, logger *zap.Logger) (services.Sink, func(), error) {
	switch cfg.Sink.Kind {
	case config.SinkHTTP:
		return services.NewHTTPSink(cfg.Sink.URL, cfg.SinkTimeout(), logger), func() {}, nil
	case config.SinkSQLite:
		s, err := services.NewSQLiteSink(cfg.Sink.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.SinkCSV:
		return services.NewCSVSink(cfg.Sink.CSVPath, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink.Kind)
	}
}

func newSessionService(cfg config.Config, sink services.Sink, logger *zap.Logger) *services.SessionService {
	return services.NewSessionService(services.Options{
		Rubric:        cfg.Steps(),
		Authenticator: cfg.Authenticator(),
		Sink:          sink,
		SubmitTimeout: cfg.SinkTimeout(),
		Logger:        logger,
	})
}
