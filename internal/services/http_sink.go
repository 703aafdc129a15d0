package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/latestcomment/influence-scoring/internal/models"
	"go.uber.org/zap"
)

// HTTPSink posts each submission as JSON to a pre-shared endpoint, such as a
// spreadsheet web app. Only HTTP 200 counts as success.
type HTTPSink struct {
	url    string
	client *resty.Client
	logger *zap.Logger
}

func NewHTTPSink(url string, timeout time.Duration, logger *zap.Logger) *HTTPSink {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("content-type", "application/json")

	return &HTTPSink{url: url, client: client, logger: logger}
}

func (s *HTTPSink) Name() string {
	return "http"
}

func (s *HTTPSink) Submit(ctx context.Context, record *models.SampleRecord) error {
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(record.Payload()).
		Post(s.url)
	if err != nil {
		return err
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("endpoint responded %s", res.Status())
	}

	s.logger.Debug("posted submission", zap.String("url", s.url), zap.Duration("took", res.Time()))
	return nil
}
