package services

import (
	"strings"

	"github.com/latestcomment/influence-scoring/internal/models"
)

// RubricStep is one page of the questionnaire and the fields it requires.
type RubricStep struct {
	ID         models.StepID
	Title      string
	Dimensions []models.Dimension
	// Required returns the names of required fields that are still blank.
	Required func(models.Researcher, *models.SampleRecord) []string
}

var (
	loginStep = RubricStep{
		ID:    models.StepLogin,
		Title: "Researcher Login",
		Required: func(who models.Researcher, _ *models.SampleRecord) []string {
			var missing []string
			if blank(who.Name) {
				missing = append(missing, "researcher_name")
			}
			if blank(who.Email) {
				missing = append(missing, "researcher_email")
			}
			return missing
		},
	}
	sampleInfoStep = RubricStep{
		ID:    models.StepSampleInfo,
		Title: "Sample Information",
		Required: func(_ models.Researcher, r *models.SampleRecord) []string {
			var missing []string
			if blank(r.Title) {
				missing = append(missing, "title")
			}
			if blank(r.Platform) {
				missing = append(missing, "platform")
			}
			return missing
		},
	}
	summaryStep = RubricStep{
		ID:    models.StepSummary,
		Title: "Submission Summary",
	}
)

func scoredStep(id models.StepID, title string, dims ...models.Dimension) RubricStep {
	return RubricStep{
		ID:         id,
		Title:      title,
		Dimensions: dims,
		Required: func(_ models.Researcher, r *models.SampleRecord) []string {
			var missing []string
			for _, d := range dims {
				if blank(r.Score(d).Justification) {
					missing = append(missing, d.JustificationKey())
				}
			}
			return missing
		},
	}
}

// BasicRubric scores reach, salience and discursiveness only.
func BasicRubric() []RubricStep {
	return []RubricStep{
		loginStep,
		sampleInfoStep,
		scoredStep(models.StepReach, "Reach", models.DimReach),
		scoredStep(models.StepSalience, "Salience", models.DimSalience),
		scoredStep(models.StepDiscursiveness, "Discursiveness",
			models.DimLogos, models.DimPathos, models.DimEthos),
		summaryStep,
	}
}

// ExtendedRubric adds the democratic values step before the summary.
func ExtendedRubric() []RubricStep {
	basic := BasicRubric()
	values := scoredStep(models.StepValues, "Democratic Values",
		models.DimCommonConcern,
		models.DimAiredArenas,
		models.DimPluralism,
		models.DimTruth,
		models.DimCivility,
		models.DimEqualOpportunity,
		models.DimEfficacy,
	)
	last := len(basic) - 1
	out := append([]RubricStep{}, basic[:last]...)
	return append(out, values, basic[last])
}

// RubricDimensions lists every scored dimension of a rubric in page order.
func RubricDimensions(steps []RubricStep) []models.Dimension {
	var dims []models.Dimension
	for _, s := range steps {
		dims = append(dims, s.Dimensions...)
	}
	return dims
}

// Wizard tracks the position within an ordered list of steps.
// It is not safe for concurrent use; the owning session serializes access.
type Wizard struct {
	steps    []RubricStep
	pos      int
	finished bool
}

func NewWizard(steps []RubricStep) *Wizard {
	return &Wizard{steps: steps}
}

func (w *Wizard) Steps() []RubricStep {
	return w.steps
}

func (w *Wizard) CurrentStep() models.StepID {
	if w.finished {
		return models.StepThankYou
	}
	return w.steps[w.pos].ID
}

// Current returns the active step definition. After Finish it returns a
// step with no fields.
func (w *Wizard) Current() RubricStep {
	if w.finished {
		return RubricStep{ID: models.StepThankYou, Title: "Thank You"}
	}
	return w.steps[w.pos]
}

// Position reports the 1-based page number and the page count.
func (w *Wizard) Position() (int, int) {
	return w.pos + 1, len(w.steps)
}

// Check runs the current step's validation without moving.
func (w *Wizard) Check(who models.Researcher, r *models.SampleRecord) error {
	step := w.Current()
	if step.Required == nil {
		return nil
	}
	if missing := step.Required(who, r); len(missing) > 0 {
		return &models.ValidationError{Step: step.ID, Missing: missing}
	}
	return nil
}

// Advance moves to the next step when the current one validates.
// At the last step, and after Finish, it is a no-op.
func (w *Wizard) Advance(who models.Researcher, r *models.SampleRecord) (models.StepID, error) {
	if err := w.Check(who, r); err != nil {
		return w.CurrentStep(), err
	}
	if !w.finished && w.pos < len(w.steps)-1 {
		w.pos++
	}
	return w.CurrentStep(), nil
}

// GoBack moves to the previous step without validation. It never returns
// to the login step once past it and never leaves the thank-you page.
func (w *Wizard) GoBack() models.StepID {
	if w.finished {
		return models.StepThankYou
	}
	if w.pos > w.firstContent() {
		w.pos--
	}
	return w.CurrentStep()
}

// Restart returns to the first content step.
func (w *Wizard) Restart() models.StepID {
	w.finished = false
	w.pos = w.firstContent()
	return w.CurrentStep()
}

// Finish ends the questionnaire.
func (w *Wizard) Finish() models.StepID {
	w.finished = true
	return w.CurrentStep()
}

func (w *Wizard) firstContent() int {
	for i, s := range w.steps {
		if s.ID == models.StepSampleInfo {
			return i
		}
	}
	return 0
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
