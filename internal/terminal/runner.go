// Package terminal drives a scoring session from the command line.
package terminal

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
	"go.uber.org/zap"
)

var (
	// ErrQuit is returned by a Prompter when the researcher abandons the session.
	ErrQuit = errors.New("quit")
	// ErrBack is returned by Scores, along with the values typed so far, to
	// return to the previous step.
	ErrBack = errors.New("back")
)

type Choice int

const (
	ChoiceSubmitNext Choice = iota
	ChoiceSubmitFinish
	ChoiceBack
	ChoiceRestart
	ChoiceQuit
)

// Prompter asks the researcher for the values of one step at a time.
type Prompter interface {
	Login() (services.Credentials, error)
	SampleInfo(record *models.SampleRecord) (map[string]string, error)
	Scores(step services.RubricStep, record *models.SampleRecord) (map[string]string, error)
	Summary(record *models.SampleRecord, submitted int) (Choice, error)
	Notify(msg string)
}

type Runner struct {
	Sessions *services.SessionService
	Prompter Prompter
	logger   *zap.Logger
}

func NewRunner(sessions *services.SessionService, prompter Prompter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Sessions: sessions, Prompter: prompter, logger: logger}
}

// Run walks one session from login until the researcher finishes or quits
// and returns the number of samples submitted.
func (r *Runner) Run(ctx context.Context) (int, error) {
	sess := r.Sessions.CreateSession()
	defer r.Sessions.End(sess.ID)

	for {
		if err := ctx.Err(); err != nil {
			return r.submitted(sess.ID), err
		}
		view, err := r.Sessions.View(sess.ID)
		if err != nil {
			return 0, err
		}
		if view.Flash != "" {
			r.Prompter.Notify(view.Flash)
		}

		switch view.Step.ID {
		case models.StepThankYou:
			return view.Submitted, nil

		case models.StepLogin:
			creds, err := r.Prompter.Login()
			if err != nil {
				return r.quit(view, err)
			}
			_, err = r.Sessions.Login(ctx, sess.ID, creds)
			if err := r.report(err); err != nil {
				return view.Submitted, err
			}

		case models.StepSampleInfo:
			values, err := r.Prompter.SampleInfo(view.Record)
			if err != nil {
				return r.quit(view, err)
			}
			_, err = r.Sessions.Advance(sess.ID, view.Step.ID, values)
			if err := r.report(err); err != nil {
				return view.Submitted, err
			}

		case models.StepSummary:
			choice, err := r.Prompter.Summary(view.Record, view.Submitted)
			if err != nil {
				return r.quit(view, err)
			}
			if err := r.summaryChoice(ctx, view, choice); err != nil {
				return r.quit(view, err)
			}

		default:
			values, err := r.Prompter.Scores(view.Step, view.Record)
			if errors.Is(err, ErrBack) {
				_, err = r.Sessions.Back(sess.ID, view.Step.ID, values)
				if err := r.report(err); err != nil {
					return view.Submitted, err
				}
				continue
			}
			if err != nil {
				return r.quit(view, err)
			}
			_, err = r.Sessions.Advance(sess.ID, view.Step.ID, values)
			if err := r.report(err); err != nil {
				return view.Submitted, err
			}
		}
	}
}

func (r *Runner) summaryChoice(ctx context.Context, view services.SessionView, choice Choice) error {
	var err error
	switch choice {
	case ChoiceSubmitNext:
		_, err = r.Sessions.Submit(ctx, view.ID, services.ThenNextSample)
	case ChoiceSubmitFinish:
		_, err = r.Sessions.Submit(ctx, view.ID, services.ThenFinish)
	case ChoiceBack:
		_, err = r.Sessions.Back(view.ID, view.Step.ID, nil)
	case ChoiceRestart:
		_, err = r.Sessions.Restart(view.ID)
	default:
		return ErrQuit
	}
	return r.report(err)
}

// report shows recoverable errors to the researcher and passes on the rest.
func (r *Runner) report(err error) error {
	var (
		verr *models.ValidationError
		ferr *models.FieldError
		serr *models.SubmissionError
		aerr *models.AuthenticationError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		r.Prompter.Notify("Please fill in: " + strings.Join(verr.Missing, ", "))
	case errors.As(err, &ferr):
		r.Prompter.Notify(ferr.Error())
	case errors.As(err, &serr):
		r.logger.Warn("submission failed", zap.Error(err))
		r.Prompter.Notify("Submission failed, your answers are kept: " + serr.Error())
	case errors.As(err, &aerr):
		r.Prompter.Notify("Login failed: check your email address and password.")
	default:
		return err
	}
	return nil
}

func (r *Runner) quit(view services.SessionView, err error) (int, error) {
	if errors.Is(err, ErrQuit) {
		return r.submitted(view.ID), nil
	}
	return view.Submitted, err
}

func (r *Runner) submitted(id uuid.UUID) int {
	view, err := r.Sessions.View(id)
	if err != nil {
		return 0
	}
	return view.Submitted
}
