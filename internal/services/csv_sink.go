package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/latestcomment/influence-scoring/internal/models"
	"go.uber.org/zap"
)

// CSVSink appends one row per submission to a local file. The header is
// written only when the file is new or empty.
type CSVSink struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewCSVSink(path string, logger *zap.Logger) *CSVSink {
	return &CSVSink{path: path, logger: logger}
}

func (s *CSVSink) Name() string {
	return "csv"
}

func (s *CSVSink) Submit(ctx context.Context, record *models.SampleRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	fields := record.Fields()
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		header := make([]string, len(fields))
		for i, fld := range fields {
			header[i] = fld.Key
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	row := make([]string, len(fields))
	for i, fld := range fields {
		row[i] = fld.Value
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}

	s.logger.Debug("appended submission", zap.String("path", s.path), zap.String("title", record.Title))
	return nil
}
