package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/latestcomment/influence-scoring/internal/models"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const submissionsSchema = `
create table if not exists submissions (
	id integer primary key autoincrement,
	submitted_at text not null,
	researcher_email text not null,
	country text not null,
	title text not null,
	payload text not null
);`

// SQLiteSink stores every submission as a row holding its JSON payload.
type SQLiteSink struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteSink(path string, logger *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(submissionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSink{db: db, logger: logger}, nil
}

func (s *SQLiteSink) Name() string {
	return "sqlite"
}

func (s *SQLiteSink) Submit(ctx context.Context, record *models.SampleRecord) error {
	payload, err := json.Marshal(record.Payload())
	if err != nil {
		return err
	}
	email := ""
	if record.Researcher != nil {
		email = record.Researcher.Email
	}

	_, err = s.db.ExecContext(ctx,
		"insert into submissions (submitted_at, researcher_email, country, title, payload) values (?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339),
		email,
		string(record.Country),
		record.Title,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	s.logger.Debug("stored submission", zap.String("title", record.Title))
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
