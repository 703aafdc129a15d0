package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/latestcomment/influence-scoring/internal/models"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotLoggedIn     = errors.New("researcher is not logged in")
	ErrNotAtSummary    = errors.New("only the summary step can be submitted")
	ErrStepMismatch    = errors.New("update targets a step that is not active")
)

const DefaultSubmitTimeout = 10 * time.Second

const submittedFlash = "Sample submitted! You can now score a new sample."

// AfterSubmit chooses what the wizard does once a sample is stored.
type AfterSubmit int

const (
	ThenNextSample AfterSubmit = iota
	ThenFinish
)

// Session is the state owned by one researcher's browser or terminal.
type Session struct {
	ID         uuid.UUID
	Researcher models.Researcher
	Submitted  int

	lastSeen atomic.Int64
	flash    string
	wizard  *Wizard
	builder *RecordBuilder
	Mu      sync.Mutex
}

type SessionManager struct {
	Sessions map[uuid.UUID]*Session
	Mu       sync.Mutex
}

// SessionView is a read-only snapshot used for rendering a page.
type SessionView struct {
	ID         uuid.UUID
	Step       RubricStep
	Page       int
	Pages      int
	Researcher models.Researcher
	Record     *models.SampleRecord
	Submitted  int
	Flash      string
}

type Options struct {
	Rubric        []RubricStep
	Authenticator Authenticator
	Sink          Sink
	SubmitTimeout time.Duration
	Logger        *zap.Logger
}

type SessionService struct {
	Manager *SessionManager

	rubric  []RubricStep
	auth    Authenticator
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewSessionService(opts Options) *SessionService {
	if opts.Rubric == nil {
		opts.Rubric = ExtendedRubric()
	}
	if opts.Authenticator == nil {
		opts.Authenticator = OpenAuthenticator{}
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &SessionService{
		Manager: &SessionManager{Sessions: make(map[uuid.UUID]*Session)},
		rubric:  opts.Rubric,
		auth:    opts.Authenticator,
		sink:    opts.Sink,
		timeout: opts.SubmitTimeout,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

func (s *SessionService) Rubric() []RubricStep {
	return s.rubric
}

func (s *SessionService) CreateSession() *Session {
	sess := &Session{
		ID:      uuid.New(),
		wizard:  NewWizard(s.rubric),
		builder: NewRecordBuilder(RubricDimensions(s.rubric)),
	}
	sess.touch(s.now())

	s.Manager.Mu.Lock()
	s.Manager.Sessions[sess.ID] = sess
	s.Manager.Mu.Unlock()

	s.logger.Debug("session created", zap.Stringer("session", sess.ID))
	return sess
}

func (s *SessionService) GetSession(id uuid.UUID) (*Session, error) {
	s.Manager.Mu.Lock()
	defer s.Manager.Mu.Unlock()
	sess, ok := s.Manager.Sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// with runs fn while holding the session's lock.
func (s *SessionService) with(id uuid.UUID, fn func(*Session) error) error {
	sess, err := s.GetSession(id)
	if err != nil {
		return err
	}
	sess.touch(s.now())
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return fn(sess)
}

// LastSeen is the time of the session's latest request. It can be read
// while another request holds the session.
func (sess *Session) LastSeen() time.Time {
	return time.Unix(0, sess.lastSeen.Load())
}

func (sess *Session) touch(t time.Time) {
	sess.lastSeen.Store(t.UnixNano())
}

// Login validates the credentials, authenticates them and leaves the login
// step. A session already past login keeps its researcher.
func (s *SessionService) Login(ctx context.Context, id uuid.UUID, creds Credentials) (models.StepID, error) {
	var step models.StepID
	err := s.with(id, func(sess *Session) error {
		step = sess.wizard.CurrentStep()
		if step != models.StepLogin {
			return nil
		}

		typed := models.Researcher{Name: creds.Name, Email: creds.Email}
		if err := sess.wizard.Check(typed, sess.builder.Record()); err != nil {
			return err
		}
		who, err := s.auth.Authenticate(ctx, creds)
		if err != nil {
			s.logger.Info("login rejected", zap.String("email", creds.Email), zap.Error(err))
			return err
		}

		sess.Researcher = who
		step, err = sess.wizard.Advance(who, sess.builder.Record())
		s.logger.Info("researcher logged in",
			zap.Stringer("session", sess.ID),
			zap.String("email", who.Email))
		return err
	})
	return step, err
}

// Update merges field values into the in-progress record. The update must
// target the active step. It returns the active step and the fields that
// step still needs, taken under the same lock as the merge.
func (s *SessionService) Update(id uuid.UUID, step models.StepID, values map[string]string) (models.StepID, []string, error) {
	var (
		active  models.StepID
		missing []string
	)
	err := s.with(id, func(sess *Session) error {
		active = sess.wizard.CurrentStep()
		defer func() { missing = sess.missing() }()
		if step != active {
			return fmt.Errorf("%w: got %s, active %s", ErrStepMismatch, step, active)
		}
		if step == models.StepLogin || step == models.StepThankYou {
			return nil
		}
		return sess.builder.SetFields(sess.wizard.Current(), values)
	})
	return active, missing, err
}

// Advance applies values and moves one step forward. A request made from a
// step that is no longer active, such as a repeated click, changes nothing
// and reports the active step.
func (s *SessionService) Advance(id uuid.UUID, from models.StepID, values map[string]string) (models.StepID, error) {
	var step models.StepID
	err := s.with(id, func(sess *Session) error {
		step = sess.wizard.CurrentStep()
		if from != step {
			s.logger.Debug("ignoring stale advance",
				zap.Stringer("session", sess.ID),
				zap.String("from", string(from)),
				zap.String("active", string(step)))
			return nil
		}
		if step == models.StepLogin {
			return ErrNotLoggedIn
		}
		if len(values) > 0 {
			if err := sess.builder.SetFields(sess.wizard.Current(), values); err != nil {
				return err
			}
		}
		var err error
		step, err = sess.wizard.Advance(sess.Researcher, sess.builder.Record())
		return err
	})
	return step, err
}

// Back keeps whatever values are acceptable and moves one step backward.
func (s *SessionService) Back(id uuid.UUID, from models.StepID, values map[string]string) (models.StepID, error) {
	var step models.StepID
	err := s.with(id, func(sess *Session) error {
		step = sess.wizard.CurrentStep()
		if from != step {
			return nil
		}
		if len(values) > 0 {
			if err := sess.builder.SetFields(sess.wizard.Current(), values); err != nil {
				s.logger.Debug("dropping rejected values on back", zap.Error(err))
			}
		}
		step = sess.wizard.GoBack()
		return nil
	})
	return step, err
}

// Restart discards the in-progress record and returns to sample information.
func (s *SessionService) Restart(id uuid.UUID) (models.StepID, error) {
	var step models.StepID
	err := s.with(id, func(sess *Session) error {
		if sess.Researcher.IsZero() {
			step = sess.wizard.CurrentStep()
			return ErrNotLoggedIn
		}
		sess.builder.Reset()
		step = sess.wizard.Restart()
		return nil
	})
	return step, err
}

// Submit finalizes the record and hands it to the sink. On failure the
// in-progress record is kept so the researcher can try again.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID, then AfterSubmit) (models.StepID, error) {
	var step models.StepID
	err := s.with(id, func(sess *Session) error {
		step = sess.wizard.CurrentStep()
		if step != models.StepSummary {
			return ErrNotAtSummary
		}
		if s.sink == nil {
			return &models.SubmissionError{Sink: "none", Err: errors.New("no sink configured")}
		}

		record := sess.builder.Finalize(sess.Researcher)

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := s.sink.Submit(ctx, record); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
			}
			s.logger.Warn("submission failed",
				zap.Stringer("session", sess.ID),
				zap.String("sink", s.sink.Name()),
				zap.Error(err))
			return &models.SubmissionError{Sink: s.sink.Name(), Err: err}
		}

		sess.Submitted++
		s.logger.Info("sample submitted",
			zap.Stringer("session", sess.ID),
			zap.String("sink", s.sink.Name()),
			zap.String("title", record.Title),
			zap.Int("submitted", sess.Submitted))

		sess.builder.Reset()
		switch then {
		case ThenFinish:
			step = sess.wizard.Finish()
		default:
			step = sess.wizard.Restart()
			sess.flash = submittedFlash
		}
		return nil
	})
	return step, err
}

// View snapshots the session for rendering and consumes any pending flash.
func (s *SessionService) View(id uuid.UUID) (SessionView, error) {
	var v SessionView
	err := s.with(id, func(sess *Session) error {
		page, pages := sess.wizard.Position()
		v = SessionView{
			ID:         sess.ID,
			Step:       sess.wizard.Current(),
			Page:       page,
			Pages:      pages,
			Researcher: sess.Researcher,
			Record:     sess.builder.Record().Clone(),
			Submitted:  sess.Submitted,
			Flash:      sess.flash,
		}
		if v.Step.ID == models.StepSummary {
			v.Record = sess.builder.Finalize(sess.Researcher)
		}
		sess.flash = ""
		return nil
	})
	return v, err
}

// Missing reports the blank required fields of the active step.
func (s *SessionService) Missing(id uuid.UUID) ([]string, error) {
	var missing []string
	err := s.with(id, func(sess *Session) error {
		missing = sess.missing()
		return nil
	})
	return missing, err
}

func (sess *Session) missing() []string {
	var verr *models.ValidationError
	if err := sess.wizard.Check(sess.Researcher, sess.builder.Record()); errors.As(err, &verr) {
		return verr.Missing
	}
	return nil
}

func (s *SessionService) End(id uuid.UUID) {
	s.Manager.Mu.Lock()
	delete(s.Manager.Sessions, id)
	s.Manager.Mu.Unlock()
	s.logger.Debug("session ended", zap.Stringer("session", id))
}

// Sweep drops sessions idle for longer than maxIdle and reports how many.
func (s *SessionService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.Manager.Mu.Lock()
	defer s.Manager.Mu.Unlock()
	removed := 0
	for id, sess := range s.Manager.Sessions {
		// no session lock: a submission may hold it for the whole sink call
		if sess.LastSeen().Before(cutoff) {
			delete(s.Manager.Sessions, id)
			removed++
		}
	}
	return removed
}
