package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/latestcomment/influence-scoring/internal/models"
)

// RecordBuilder owns the in-progress record of one session.
type RecordBuilder struct {
	dims   []models.Dimension
	record *models.SampleRecord
}

func NewRecordBuilder(dims []models.Dimension) *RecordBuilder {
	return &RecordBuilder{
		dims:   dims,
		record: models.NewSampleRecord(dims),
	}
}

// Record exposes the live record. Callers must not keep it across Reset.
func (b *RecordBuilder) Record() *models.SampleRecord {
	return b.record
}

func (b *RecordBuilder) Reset() {
	b.record = models.NewSampleRecord(b.dims)
}

// SetFields merges the values that belong to step into the record.
// Every value is checked before any is applied, so a FieldError leaves the
// record as it was.
func (b *RecordBuilder) SetFields(step RubricStep, values map[string]string) error {
	next := b.record.Clone()

	if step.ID == models.StepSampleInfo {
		if err := applySampleInfo(next, values); err != nil {
			return err
		}
	}
	for _, d := range step.Dimensions {
		if err := applyDimension(next, d, values); err != nil {
			return err
		}
	}

	b.record = next
	return nil
}

// Finalize returns an independent copy of the record with the researcher attached.
func (b *RecordBuilder) Finalize(researcher models.Researcher) *models.SampleRecord {
	out := b.record.Clone()
	out.Researcher = &researcher
	return out
}

func applySampleInfo(r *models.SampleRecord, values map[string]string) error {
	if v, ok := values["country"]; ok {
		country := models.Country(strings.TrimSpace(v))
		if _, err := CatalogFor(country); err != nil {
			return &models.FieldError{Field: "country", Value: v, Reason: err.Error()}
		}
		if country != r.Country {
			r.Title = ""
		}
		r.Country = country
	}
	if v, ok := values["title"]; ok {
		title := strings.TrimSpace(v)
		if title != "" && !inCatalog(r.Country, title) {
			return &models.FieldError{
				Field:  "title",
				Value:  v,
				Reason: fmt.Sprintf("not in the %s catalog", r.Country),
			}
		}
		r.Title = title
	}
	if v, ok := values["platform"]; ok {
		r.Platform = v
	}
	if v, ok := values["link"]; ok {
		r.Link = strings.TrimSpace(v)
	}
	if v, ok := values["transcript"]; ok {
		r.Transcript = v
	}
	if v, ok := values["date"]; ok {
		v = strings.TrimSpace(v)
		if v == "" {
			r.Date = time.Time{}
			return nil
		}
		d, err := time.Parse(models.DateLayout, v)
		if err != nil {
			return &models.FieldError{Field: "date", Value: v, Reason: "expected YYYY-MM-DD"}
		}
		if d.Before(models.EarliestSampleDate) {
			return &models.FieldError{Field: "date", Value: v, Reason: "must be on or after 2024-01-01"}
		}
		r.Date = d
	}
	return nil
}

func applyDimension(r *models.SampleRecord, d models.Dimension, values map[string]string) error {
	s := r.Scores[d]
	if v, ok := values[d.ScoreKey()]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < models.MinScore || n > models.MaxScore {
			return &models.FieldError{
				Field:  d.ScoreKey(),
				Value:  v,
				Reason: fmt.Sprintf("score must be a whole number from %d to %d", models.MinScore, models.MaxScore),
			}
		}
		s.Value = n
	}
	if v, ok := values[d.JustificationKey()]; ok {
		s.Justification = v
	}
	r.Scores[d] = s
	return nil
}
