package services

import (
	"context"

	"github.com/latestcomment/influence-scoring/internal/models"
)

// Sink durably records one finalized sample.
type Sink interface {
	Name() string
	Submit(ctx context.Context, record *models.SampleRecord) error
}
