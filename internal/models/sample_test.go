package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleRecordDefaults(t *testing.T) {
	r := NewSampleRecord([]Dimension{DimReach, DimSalience})

	assert.Equal(t, CountryTunisia, r.Country)
	assert.Equal(t, DefaultScore, r.Score(DimReach).Value)
	assert.Empty(t, r.Score(DimSalience).Justification)
	assert.Nil(t, r.Researcher)
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewSampleRecord([]Dimension{DimReach})
	r.Researcher = &Researcher{Name: "Amina", Email: "a@x.com"}

	c := r.Clone()
	r.Scores[DimReach] = Score{Value: 90, Justification: "changed"}
	r.Researcher.Name = "Other"
	r.Dimensions[0] = DimTruth

	assert.Equal(t, DefaultScore, c.Score(DimReach).Value)
	assert.Equal(t, "Amina", c.Researcher.Name)
	assert.Equal(t, DimReach, c.Dimensions[0])
}

func TestFieldsOrder(t *testing.T) {
	r := NewSampleRecord([]Dimension{DimReach})
	r.Title = "Midi Show - Mosaique FM"
	r.Date = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	r.Researcher = &Researcher{Name: "Amina", Email: "a@x.com"}

	var keys []string
	for _, f := range r.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{
		"country", "title", "platform", "link", "transcript", "date",
		"reach_score", "reach_justification",
		"researcher_name", "researcher_email",
	}, keys)
	assert.Equal(t, "2024-03-09", r.Fields()[5].Value)
}

func TestPayload(t *testing.T) {
	r := NewSampleRecord([]Dimension{DimEthos})
	r.Date = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Scores[DimEthos] = Score{Value: 12, Justification: "weak sourcing"}
	r.Researcher = &Researcher{Name: "Amina", Email: "a@x.com"}

	p := r.Payload()
	assert.Equal(t, "2024-01-01", p["date"])
	assert.Equal(t, 12, p["ethos_score"])
	assert.Equal(t, "weak sourcing", p["ethos_justification"])

	who, ok := p["researcher"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", who["email"])
}

func TestPayloadWithoutDate(t *testing.T) {
	r := NewSampleRecord(nil)
	assert.Equal(t, "", r.Payload()["date"])
	assert.NotContains(t, r.Payload(), "researcher")
}
