package services

import (
	"errors"
	"testing"

	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var amina = models.Researcher{Name: "Amina", Email: "a@x.com"}

// completeRecord fills every required field of the extended rubric.
func completeRecord() *models.SampleRecord {
	r := models.NewSampleRecord(RubricDimensions(ExtendedRubric()))
	r.Title = "Midi Show - Mosaique FM"
	r.Platform = "Mosaique FM"
	for _, d := range r.Dimensions {
		r.Scores[d] = models.Score{Value: 70, Justification: "because " + string(d)}
	}
	return r
}

func TestRubricOrder(t *testing.T) {
	ids := func(steps []RubricStep) []models.StepID {
		var out []models.StepID
		for _, s := range steps {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []models.StepID{
		models.StepLogin, models.StepSampleInfo, models.StepReach, models.StepSalience,
		models.StepDiscursiveness, models.StepSummary,
	}, ids(BasicRubric()))
	assert.Equal(t, []models.StepID{
		models.StepLogin, models.StepSampleInfo, models.StepReach, models.StepSalience,
		models.StepDiscursiveness, models.StepValues, models.StepSummary,
	}, ids(ExtendedRubric()))

	assert.Len(t, RubricDimensions(BasicRubric()), 5)
	assert.Len(t, RubricDimensions(ExtendedRubric()), 12)
}

func TestWizardStartsAtLogin(t *testing.T) {
	w := NewWizard(ExtendedRubric())
	assert.Equal(t, models.StepLogin, w.CurrentStep())
}

func TestWizardAdvanceVisitsEveryStepOnce(t *testing.T) {
	for name, rubric := range map[string][]RubricStep{
		"basic":    BasicRubric(),
		"extended": ExtendedRubric(),
	} {
		t.Run(name, func(t *testing.T) {
			w := NewWizard(rubric)
			r := completeRecord()

			for i := 1; i < len(rubric); i++ {
				step, err := w.Advance(amina, r)
				require.NoError(t, err)
				assert.Equal(t, rubric[i].ID, step)
			}

			step, err := w.Advance(amina, r)
			require.NoError(t, err)
			assert.Equal(t, models.StepSummary, step)
		})
	}
}

func TestWizardValidationKeepsStep(t *testing.T) {
	tests := []struct {
		name    string
		step    models.StepID
		who     models.Researcher
		mutate  func(*models.SampleRecord)
		missing []string
	}{
		{
			name:    "login without email",
			step:    models.StepLogin,
			who:     models.Researcher{Name: "Amina", Email: "  "},
			missing: []string{"researcher_email"},
		},
		{
			name:    "sample info without title and platform",
			step:    models.StepSampleInfo,
			who:     amina,
			mutate:  func(r *models.SampleRecord) { r.Title = ""; r.Platform = " \t" },
			missing: []string{"title", "platform"},
		},
		{
			name: "reach without justification",
			step: models.StepReach,
			who:  amina,
			mutate: func(r *models.SampleRecord) {
				r.Scores[models.DimReach] = models.Score{Value: 10}
			},
			missing: []string{"reach_justification"},
		},
		{
			name: "discursiveness missing pathos",
			step: models.StepDiscursiveness,
			who:  amina,
			mutate: func(r *models.SampleRecord) {
				r.Scores[models.DimPathos] = models.Score{Value: 10, Justification: "\n"}
			},
			missing: []string{"pathos_justification"},
		},
		{
			name: "values missing two",
			step: models.StepValues,
			who:  amina,
			mutate: func(r *models.SampleRecord) {
				r.Scores[models.DimTruth] = models.Score{}
				r.Scores[models.DimEfficacy] = models.Score{}
			},
			missing: []string{"truth_justification", "efficacy_justification"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWizard(ExtendedRubric())
			r := completeRecord()
			for w.CurrentStep() != tt.step {
				_, err := w.Advance(amina, r)
				require.NoError(t, err)
			}
			if tt.mutate != nil {
				tt.mutate(r)
			}

			for i := 0; i < 2; i++ {
				step, err := w.Advance(tt.who, r)
				var verr *models.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.step, verr.Step)
				assert.Equal(t, tt.missing, verr.Missing)
				assert.Equal(t, tt.step, step)
				assert.Equal(t, tt.step, w.CurrentStep())
			}
		})
	}
}

func TestWizardGoBack(t *testing.T) {
	w := NewWizard(ExtendedRubric())
	r := completeRecord()

	assert.Equal(t, models.StepLogin, w.GoBack())

	_, _ = w.Advance(amina, r)
	_, _ = w.Advance(amina, r)
	assert.Equal(t, models.StepReach, w.CurrentStep())

	r.Title = ""
	assert.Equal(t, models.StepSampleInfo, w.GoBack())
	assert.Equal(t, models.StepSampleInfo, w.GoBack(), "never returns to login")
}

func TestWizardRestartAndFinish(t *testing.T) {
	w := NewWizard(BasicRubric())
	r := completeRecord()
	for w.CurrentStep() != models.StepSummary {
		_, err := w.Advance(amina, r)
		require.NoError(t, err)
	}

	assert.Equal(t, models.StepSampleInfo, w.Restart())
	assert.Equal(t, models.StepSampleInfo, w.Restart())

	assert.Equal(t, models.StepThankYou, w.Finish())
	step, err := w.Advance(amina, r)
	require.NoError(t, err)
	assert.Equal(t, models.StepThankYou, step)
	assert.Equal(t, models.StepThankYou, w.GoBack())

	assert.Equal(t, models.StepSampleInfo, w.Restart())
}

func TestWizardPosition(t *testing.T) {
	w := NewWizard(ExtendedRubric())
	page, pages := w.Position()
	assert.Equal(t, 1, page)
	assert.Equal(t, 7, pages)
}
