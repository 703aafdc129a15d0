package handlers

import (
	"context"
	"testing"

	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLiveUpdateReportsMissingFields(t *testing.T) {
	svc := services.NewSessionService(services.Options{Rubric: services.BasicRubric()})
	sess := svc.CreateSession()
	_, err := svc.Login(context.Background(), sess.ID, services.Credentials{Name: "Amina", Email: "a@x.com"})
	require.NoError(t, err)
	ws := NewWebSocketHandler(svc, zap.NewNop())

	status := ws.apply(sess.ID, FieldUpdate{
		Step:   "sample_info",
		Fields: map[string]string{"platform": "Mosaique FM"},
	})
	assert.Empty(t, status.Error)
	assert.Equal(t, []string{"title"}, status.Missing)

	status = ws.apply(sess.ID, FieldUpdate{
		Step:   "sample_info",
		Fields: map[string]string{"title": "Midi Show - Mosaique FM"},
	})
	assert.Empty(t, status.Missing)

	view, err := svc.View(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Midi Show - Mosaique FM", view.Record.Title)
	assert.Equal(t, models.StepSampleInfo, view.Step.ID, "live updates never advance")
}

func TestLiveUpdateErrors(t *testing.T) {
	svc := services.NewSessionService(services.Options{Rubric: services.BasicRubric()})
	sess := svc.CreateSession()
	_, err := svc.Login(context.Background(), sess.ID, services.Credentials{Name: "Amina", Email: "a@x.com"})
	require.NoError(t, err)
	ws := NewWebSocketHandler(svc, zap.NewNop())

	status := ws.apply(sess.ID, FieldUpdate{Step: "reach", Fields: map[string]string{"reach_justification": "x"}})
	assert.Contains(t, status.Error, "not active")
	assert.Equal(t, "sample_info", status.Step, "status names the active step")
	assert.Equal(t, []string{"title", "platform"}, status.Missing)

	status = ws.apply(sess.ID, FieldUpdate{Step: "sample_info", Fields: map[string]string{"date": "yesterday"}})
	assert.Contains(t, status.Error, "YYYY-MM-DD")
	assert.Equal(t, []string{"title", "platform"}, status.Missing)
}
