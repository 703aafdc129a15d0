package models

import (
	"strconv"
	"time"
)

type Country string

const (
	CountryTunisia Country = "Tunisia"
	CountryLebanon Country = "Lebanon"
)

// Dimension is one scored rubric axis.
type Dimension string

const (
	DimReach            Dimension = "reach"
	DimSalience         Dimension = "salience"
	DimLogos            Dimension = "logos"
	DimPathos           Dimension = "pathos"
	DimEthos            Dimension = "ethos"
	DimCommonConcern    Dimension = "common_concern"
	DimAiredArenas      Dimension = "aired_arenas"
	DimPluralism        Dimension = "pluralism"
	DimTruth            Dimension = "truth"
	DimCivility         Dimension = "civility"
	DimEqualOpportunity Dimension = "equal_opportunity"
	DimEfficacy         Dimension = "efficacy"
)

var dimensionLabels = map[Dimension]string{
	DimReach:            "Reach",
	DimSalience:         "Salience",
	DimLogos:            "Logos (Reasoning)",
	DimPathos:           "Pathos (Emotion)",
	DimEthos:            "Ethos (Credibility)",
	DimCommonConcern:    "Common Concern",
	DimAiredArenas:      "Aired Arenas",
	DimPluralism:        "Pluralism",
	DimTruth:            "Truth",
	DimCivility:         "Civility",
	DimEqualOpportunity: "Equal Opportunity",
	DimEfficacy:         "Efficacy",
}

func (d Dimension) Label() string {
	if l, ok := dimensionLabels[d]; ok {
		return l
	}
	return string(d)
}

func (d Dimension) ScoreKey() string         { return string(d) + "_score" }
func (d Dimension) JustificationKey() string { return string(d) + "_justification" }

const (
	MinScore     = 0
	MaxScore     = 100
	DefaultScore = 50
)

// EarliestSampleDate is the first air/publication date the questionnaire accepts.
var EarliestSampleDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const DateLayout = "2006-01-02"

type Score struct {
	Value         int    `json:"score"`
	Justification string `json:"justification"`
}

// SampleRecord accumulates the fields entered for one media sample.
// Dimensions fixes which scores belong to the record and their order.
type SampleRecord struct {
	Country    Country
	Title      string
	Platform   string
	Link       string
	Transcript string
	Date       time.Time

	Dimensions []Dimension
	Scores     map[Dimension]Score

	Researcher *Researcher
}

func NewSampleRecord(dims []Dimension) *SampleRecord {
	r := &SampleRecord{
		Country:    CountryTunisia,
		Dimensions: append([]Dimension(nil), dims...),
		Scores:     make(map[Dimension]Score, len(dims)),
	}
	for _, d := range dims {
		r.Scores[d] = Score{Value: DefaultScore}
	}
	return r
}

func (r *SampleRecord) Score(d Dimension) Score {
	return r.Scores[d]
}

// Clone returns a deep copy of the record.
func (r *SampleRecord) Clone() *SampleRecord {
	c := *r
	c.Dimensions = append([]Dimension(nil), r.Dimensions...)
	c.Scores = make(map[Dimension]Score, len(r.Scores))
	for d, s := range r.Scores {
		c.Scores[d] = s
	}
	if r.Researcher != nil {
		who := *r.Researcher
		c.Researcher = &who
	}
	return &c
}

// Field is one flattened column of a record.
type Field struct {
	Key   string
	Value string
}

// Fields flattens the record into snake_case columns in a stable order.
func (r *SampleRecord) Fields() []Field {
	out := []Field{
		{"country", string(r.Country)},
		{"title", r.Title},
		{"platform", r.Platform},
		{"link", r.Link},
		{"transcript", r.Transcript},
		{"date", r.dateString()},
	}
	for _, d := range r.Dimensions {
		s := r.Scores[d]
		out = append(out,
			Field{d.ScoreKey(), strconv.Itoa(s.Value)},
			Field{d.JustificationKey(), s.Justification},
		)
	}
	if r.Researcher != nil {
		out = append(out,
			Field{"researcher_name", r.Researcher.Name},
			Field{"researcher_email", r.Researcher.Email},
		)
	}
	return out
}

// Payload is the JSON form of the record sent to remote endpoints.
// Dates are ISO-8601 strings and the researcher is a nested object.
func (r *SampleRecord) Payload() map[string]any {
	p := map[string]any{
		"country":    string(r.Country),
		"title":      r.Title,
		"platform":   r.Platform,
		"link":       r.Link,
		"transcript": r.Transcript,
		"date":       r.dateString(),
	}
	for _, d := range r.Dimensions {
		s := r.Scores[d]
		p[d.ScoreKey()] = s.Value
		p[d.JustificationKey()] = s.Justification
	}
	if r.Researcher != nil {
		p["researcher"] = map[string]string{
			"name":  r.Researcher.Name,
			"email": r.Researcher.Email,
		}
	}
	return p
}

func (r *SampleRecord) dateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format(DateLayout)
}
