package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
)

type dimensionView struct {
	Label            string
	ScoreKey         string
	JustificationKey string
	Score            int
	Justification    string
	Missing          bool
}

func templateFor(step models.StepID) string {
	switch step {
	case models.StepLogin, models.StepSampleInfo, models.StepSummary, models.StepThankYou:
		return string(step)
	default:
		return "rubric"
	}
}

func pageData(view services.SessionView, rubric []services.RubricStep) fiber.Map {
	who := view.Researcher
	data := fiber.Map{
		"Step":       string(view.Step.ID),
		"Title":      view.Step.Title,
		"NextTitle":  nextTitle(rubric, view.Step.ID),
		"Researcher": &who,
		"Record":     view.Record,
		"Submitted":  view.Submitted,
		"Flash":      view.Flash,
	}
	if view.Step.ID != models.StepThankYou {
		data["Page"] = view.Page
		data["Pages"] = view.Pages
	}

	switch view.Step.ID {
	case models.StepSampleInfo:
		catalog, _ := services.CatalogFor(view.Record.Country)
		data["Countries"] = services.Countries()
		data["Catalog"] = catalog
		date := ""
		if !view.Record.Date.IsZero() {
			date = view.Record.Date.Format(models.DateLayout)
		}
		data["Date"] = date
	case models.StepSummary:
		data["Fields"] = view.Record.Fields()
	default:
		dims := make([]*dimensionView, 0, len(view.Step.Dimensions))
		for _, d := range view.Step.Dimensions {
			s := view.Record.Score(d)
			dims = append(dims, &dimensionView{
				Label:            d.Label(),
				ScoreKey:         d.ScoreKey(),
				JustificationKey: d.JustificationKey(),
				Score:            s.Value,
				Justification:    s.Justification,
			})
		}
		data["Dimensions"] = dims
	}
	return data
}

func markMissing(data fiber.Map, missing []string) {
	dims, ok := data["Dimensions"].([]*dimensionView)
	if !ok {
		return
	}
	for _, d := range dims {
		for _, m := range missing {
			if d.JustificationKey == m {
				d.Missing = true
			}
		}
	}
}

func nextTitle(rubric []services.RubricStep, step models.StepID) string {
	for i, s := range rubric {
		if s.ID == step && i+1 < len(rubric) {
			return rubric[i+1].Title
		}
	}
	return ""
}
