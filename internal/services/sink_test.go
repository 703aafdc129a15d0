package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func finalizedRecord() *models.SampleRecord {
	r := models.NewSampleRecord(RubricDimensions(BasicRubric()))
	r.Title = "Midi Show - Mosaique FM"
	r.Platform = "Mosaique FM"
	r.Date = time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	r.Scores[models.DimReach] = models.Score{Value: 88, Justification: "prime time, \"national\" reach"}
	r.Researcher = &models.Researcher{Name: "Amina", Email: "a@x.com"}
	return r
}

func TestCSVSinkWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "responses.csv")
	sink := NewCSVSink(path, zap.NewNop())

	require.NoError(t, sink.Submit(context.Background(), finalizedRecord()))
	require.NoError(t, sink.Submit(context.Background(), finalizedRecord()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "country", rows[0][0])
	assert.Equal(t, "researcher_email", rows[0][len(rows[0])-1])
	assert.Equal(t, rows[1], rows[2])
	assert.Contains(t, rows[1], "prime time, \"national\" reach")
	assert.Contains(t, rows[1], "2024-02-14")
}

func TestCSVSinkAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte("existing,header\n"), 0o644))

	sink := NewCSVSink(path, zap.NewNop())
	require.NoError(t, sink.Submit(context.Background(), finalizedRecord()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"existing", "header"}, rows[0])
}

func TestCSVSinkHonorsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCSVSink(path, zap.NewNop()).Submit(ctx, finalizedRecord())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestHTTPSinkPostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, time.Second, zap.NewNop())
	require.NoError(t, sink.Submit(context.Background(), finalizedRecord()))

	assert.Equal(t, "2024-02-14", got["date"])
	assert.Equal(t, float64(88), got["reach_score"])
	assert.Equal(t, "Midi Show - Mosaique FM", got["title"])
	assert.Equal(t, map[string]any{"name": "Amina", "email": "a@x.com"}, got["researcher"])
}

func TestHTTPSinkRejectsNon200(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusInternalServerError, http.StatusNotFound} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		err := NewHTTPSink(srv.URL, time.Second, zap.NewNop()).Submit(context.Background(), finalizedRecord())
		assert.Error(t, err, "status %d", status)
		srv.Close()
	}
}

func TestHTTPSinkTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewHTTPSink(srv.URL, 5*time.Second, zap.NewNop()).Submit(ctx, finalizedRecord())
	assert.Error(t, err)
}

func TestSQLiteSinkStoresRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")
	sink, err := NewSQLiteSink(path, zap.NewNop())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Submit(context.Background(), finalizedRecord()))
	require.NoError(t, sink.Submit(context.Background(), finalizedRecord()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("select count(*) from submissions").Scan(&count))
	assert.Equal(t, 2, count)

	var email, payload string
	require.NoError(t, db.QueryRow("select researcher_email, payload from submissions limit 1").Scan(&email, &payload))
	assert.Equal(t, "a@x.com", email)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "Mosaique FM", decoded["platform"])
}
