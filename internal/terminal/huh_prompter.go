package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
	"golang.org/x/term"
)

// HuhPrompter asks for each step with an interactive huh form.
type HuhPrompter struct {
	in            io.Reader
	out           io.Writer
	accessible    bool
	needsPassword bool
}

func NewHuhPrompter(in io.Reader, out io.Writer, needsPassword bool) *HuhPrompter {
	// Use accessible mode for non-TTY input (e.g., piped answers).
	accessible := true
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		accessible = false
	}
	return &HuhPrompter{in: in, out: out, accessible: accessible, needsPassword: needsPassword}
}

func (p *HuhPrompter) run(groups ...*huh.Group) error {
	err := huh.NewForm(groups...).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrQuit
	}
	return err
}

func (p *HuhPrompter) Login() (services.Credentials, error) {
	var creds services.Credentials
	fields := []huh.Field{
		huh.NewInput().Title("Your Name").Value(&creds.Name),
		huh.NewInput().Title("Your Email").Value(&creds.Email),
	}
	if p.needsPassword {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&creds.Password))
	}
	err := p.run(huh.NewGroup(fields...).Title("Researcher Login"))
	return creds, err
}

func (p *HuhPrompter) SampleInfo(record *models.SampleRecord) (map[string]string, error) {
	country := string(record.Country)
	countries := make([]string, 0, 2)
	for _, c := range services.Countries() {
		countries = append(countries, string(c))
	}
	if err := p.run(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Country").
			Options(huh.NewOptions(countries...)...).
			Value(&country),
	).Title("Sample Information")); err != nil {
		return nil, err
	}

	catalog, err := services.CatalogFor(models.Country(country))
	if err != nil {
		return nil, err
	}
	var (
		title      = record.Title
		platform   = record.Platform
		link       = record.Link
		transcript = record.Transcript
		date       string
	)
	if !record.Date.IsZero() {
		date = record.Date.Format(models.DateLayout)
	}
	err = p.run(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Media Title").
			Options(huh.NewOptions(catalog...)...).
			Value(&title),
		huh.NewInput().Title("Platform or Outlet").Value(&platform),
		huh.NewInput().Title("Link (if available)").Value(&link),
		huh.NewText().Title("Transcript (paste here if available)").Value(&transcript),
		huh.NewInput().
			Title("Air/Publication Date").
			Placeholder(time.Now().Format(models.DateLayout)).
			Value(&date).
			Validate(validateDate),
	))
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"country":    country,
		"title":      title,
		"platform":   platform,
		"link":       link,
		"transcript": transcript,
		"date":       date,
	}, nil
}

func (p *HuhPrompter) Scores(step services.RubricStep, record *models.SampleRecord) (map[string]string, error) {
	scores := make([]string, len(step.Dimensions))
	justifications := make([]string, len(step.Dimensions))
	groups := make([]*huh.Group, 0, len(step.Dimensions)+1)
	for i, d := range step.Dimensions {
		s := record.Score(d)
		scores[i] = strconv.Itoa(s.Value)
		justifications[i] = s.Justification
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s Score (0-100)", d.Label())).
				Value(&scores[i]).
				Validate(validateScore),
			huh.NewText().
				Title(fmt.Sprintf("Justify your %s score", d.Label())).
				Value(&justifications[i]),
		).Title(step.Title))
	}
	next := true
	groups = append(groups, huh.NewGroup(
		huh.NewConfirm().
			Title("Continue to the next step?").
			Affirmative("Next").
			Negative("Back").
			Value(&next),
	))
	if err := p.run(groups...); err != nil {
		return nil, err
	}

	values := make(map[string]string, 2*len(step.Dimensions))
	for i, d := range step.Dimensions {
		values[d.ScoreKey()] = scores[i]
		values[d.JustificationKey()] = justifications[i]
	}
	if !next {
		return values, ErrBack
	}
	return values, nil
}

func (p *HuhPrompter) Summary(record *models.SampleRecord, submitted int) (Choice, error) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetTitle("Submission Summary (%d submitted this session)", submitted)
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, f := range record.Fields() {
		t.AppendRow(table.Row{f.Key, f.Value})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
	t.SetStyle(table.StyleRounded)
	t.Render()

	choice := ChoiceSubmitNext
	err := p.run(huh.NewGroup(
		huh.NewSelect[Choice]().
			Title("What next?").
			Options(
				huh.NewOption("Submit and score another sample", ChoiceSubmitNext),
				huh.NewOption("Submit and finish", ChoiceSubmitFinish),
				huh.NewOption("Go back", ChoiceBack),
				huh.NewOption("Discard and start over", ChoiceRestart),
				huh.NewOption("Quit without submitting", ChoiceQuit),
			).
			Value(&choice),
	))
	return choice, err
}

func (p *HuhPrompter) Notify(msg string) {
	fmt.Fprintln(p.out, msg)
}

func validateScore(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < models.MinScore || n > models.MaxScore {
		return fmt.Errorf("enter a whole number from %d to %d", models.MinScore, models.MaxScore)
	}
	return nil
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	if d.Before(models.EarliestSampleDate) {
		return fmt.Errorf("date must be on or after %s", models.EarliestSampleDate.Format(models.DateLayout))
	}
	return nil
}
