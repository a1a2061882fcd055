// Package tutor runs the daily lesson conversation. Each message moves a
// learner's session through a fixed sequence of states: welcome, Colab
// setup, a first exercise, retrieval-backed lesson Q&A and an optional
// evaluation.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/evaluation"
	"github.com/abhisek/pysis/internal/judge"
	"github.com/abhisek/pysis/internal/knowledge"
	"github.com/abhisek/pysis/internal/learner"
	"github.com/abhisek/pysis/internal/logging"
	"github.com/abhisek/pysis/internal/session"
	"github.com/abhisek/pysis/internal/store"
)

// ErrMaterialUnavailable reports a lesson day with no study material.
type ErrMaterialUnavailable struct {
	Day int
	Err error
}

func (e *ErrMaterialUnavailable) Error() string {
	return fmt.Sprintf("study material unavailable for day %d: %v", e.Day, e.Err)
}

func (e *ErrMaterialUnavailable) Unwrap() error { return e.Err }

// Judge classifies free-text replies.
type Judge interface {
	ClassifyIntent(ctx context.Context, text string) judge.Intent
	ValidateOutput(ctx context.Context, description, expected string) bool
}

// Answerer answers lesson questions from the day's material.
type Answerer interface {
	Answer(ctx context.Context, day int, question string, transcript []session.Turn) (knowledge.Answer, error)
}

// Store opens units of work against persistent state.
type Store interface {
	Begin() *store.UnitOfWork
}

var evaluationTriggers = map[string]bool{
	"evaluacion": true,
	"evaluación": true,
	"examen":     true,
	"prueba":     true,
	"test":       true,
}

// IsEvaluationTrigger reports whether text asks to start the evaluation.
func IsEvaluationTrigger(text string) bool {
	return evaluationTriggers[strings.ToLower(strings.TrimSpace(text))]
}

// Service handles learner messages.
type Service struct {
	store    Store
	judge    Judge
	answerer Answerer
	engine   *evaluation.Engine
	clock    learner.Clock
	loc      *time.Location
	locks    *keyedMutex
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for lesson-day arithmetic.
func WithClock(c learner.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLocation sets the time zone that decides calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service.
func New(st Store, j Judge, a Answerer, engine *evaluation.Engine, opts ...Option) *Service {
	s := &Service{
		store:    st,
		judge:    j,
		answerer: a,
		engine:   engine,
		clock:    learner.SystemClock{},
		loc:      time.Local,
		locks:    newKeyedMutex(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// turn carries one message through the state machine.
type turn struct {
	learnerID int64
	day       int
	text      string
	uow       *store.UnitOfWork
}

// Handle processes one message from a learner and returns the reply. The
// learner's progress and session change only when Handle succeeds.
func (s *Service) Handle(ctx context.Context, learnerID int64, name, text string) (string, error) {
	start := time.Now()
	unlock := s.locks.Lock(learnerID)
	defer unlock()

	logger := logging.FromContextOr(ctx, s.logger).With(zap.Int64("learner_id", learnerID))

	uow := s.store.Begin()
	defer uow.Discard()

	today := learner.Today(s.clock, s.loc)
	l, day, err := learner.GetOrCreate(ctx, uow, learnerID, name, today)
	if err != nil {
		return "", err
	}
	rolled, err := learner.Touch(ctx, uow, l, today)
	if err != nil {
		return "", err
	}

	sess, err := s.loadSession(ctx, uow, learnerID, logger)
	if err != nil {
		return "", err
	}
	if rolled {
		sess = session.New()
	}

	from := sess.State()
	reply, next, err := s.step(ctx, turn{learnerID: learnerID, day: day, text: text, uow: uow}, sess)
	if err != nil {
		logger.Warn("transition failed",
			zap.String("state_from", string(from)),
			zap.Int("lesson_day", day),
			zap.Error(err))
		return "", err
	}

	data, err := session.Encode(next)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := uow.SaveSession(ctx, learnerID, data); err != nil {
		return "", err
	}
	if err := uow.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit turn: %w", err)
	}

	logger.Info("turn handled",
		zap.String("state_from", string(from)),
		zap.String("state_to", string(next.State())),
		zap.Int("lesson_day", day),
		zap.Bool("rollover", rolled),
		zap.Duration("latency", time.Since(start)))
	return reply, nil
}

func (s *Service) loadSession(ctx context.Context, uow *store.UnitOfWork, learnerID int64, logger *zap.Logger) (session.Session, error) {
	data, err := uow.LoadSession(ctx, learnerID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return session.New(), nil
	case err != nil:
		return session.Session{}, fmt.Errorf("load session: %w", err)
	}
	sess, err := session.Decode(data)
	if err != nil {
		logger.Warn("discarding unreadable session", zap.Error(err))
		return session.New(), nil
	}
	return sess, nil
}

// step applies one transition. It never modifies sess.
func (s *Service) step(ctx context.Context, t turn, sess session.Session) (string, session.Session, error) {
	switch sess.State() {
	case session.StartDay:
		return welcome(t.day), sess.Enter(session.AwaitingStartConfirmation), nil

	case session.AwaitingStartConfirmation:
		if s.judge.ClassifyIntent(ctx, t.text) == judge.IntentAffirmative {
			return colabInstructions, sess.Enter(session.AwaitingColabReady), nil
		}
		return startLater, sess, nil

	case session.AwaitingColabReady:
		if s.judge.ClassifyIntent(ctx, t.text) == judge.IntentAffirmative {
			return firstExercise, sess.AwaitOutput(ExpectedHelloOutput), nil
		}
		return colabLater, sess, nil

	case session.AwaitingCodeOutput:
		expected, _ := sess.ExpectedOutput()
		if s.judge.ValidateOutput(ctx, t.text, expected) {
			return outputCorrect, sess.Enter(session.PromptForVariables), nil
		}
		return outputWrong(expected), sess, nil

	case session.PromptForVariables:
		switch s.judge.ClassifyIntent(ctx, t.text) {
		case judge.IntentAffirmative, judge.IntentQuestion:
			ans, err := s.answer(ctx, t.day, variablesDirective, sess.Transcript())
			if err != nil {
				return "", sess, err
			}
			if ans.TopicsExhausted {
				return evaluationOffer, sess.Enter(session.PromptForEvaluation), nil
			}
			return ans.Text, sess.Enter(session.LessonQA).AppendTurn(t.text, ans.Text), nil
		}
		return variablesLater, sess, nil

	case session.LessonQA:
		if IsEvaluationTrigger(t.text) {
			return s.startEvaluation(ctx, t, sess)
		}
		ans, err := s.answer(ctx, t.day, t.text, sess.Transcript())
		if err != nil {
			return "", sess, err
		}
		if ans.TopicsExhausted {
			return evaluationOffer, sess.Enter(session.PromptForEvaluation), nil
		}
		return ans.Text, sess.AppendTurn(t.text, ans.Text), nil

	case session.PromptForEvaluation:
		if s.judge.ClassifyIntent(ctx, t.text) == judge.IntentAffirmative {
			return s.startEvaluation(ctx, t, sess)
		}
		return evaluationDeclined, sess.Enter(session.DayComplete), nil

	case session.InEvaluation:
		state, _ := sess.Evaluation()
		reply, next, err := s.engine.SubmitAnswer(ctx, t.uow, t.learnerID, t.text, state)
		if err != nil {
			return "", sess, err
		}
		if next != nil {
			return reply, sess.Evaluate(*next), nil
		}
		return reply + "\n\n" + dayComplete, sess.Enter(session.DayComplete), nil

	case session.DayComplete:
		return dayComplete, sess, nil
	}
	return FallbackReply, sess, nil
}

func (s *Service) startEvaluation(ctx context.Context, t turn, sess session.Session) (string, session.Session, error) {
	reply, state, err := s.engine.Start(ctx, t.uow, t.learnerID, t.day)
	if err != nil {
		return "", sess, err
	}
	if state == nil {
		return reply, sess, nil
	}
	return reply, sess.Evaluate(*state), nil
}

func (s *Service) answer(ctx context.Context, day int, question string, transcript []session.Turn) (knowledge.Answer, error) {
	ans, err := s.answerer.Answer(ctx, day, question, transcript)
	if errors.Is(err, knowledge.ErrIndexNotFound) {
		return ans, &ErrMaterialUnavailable{Day: day, Err: err}
	}
	ans.Text = sanitizeReply(ans.Text)
	return ans, err
}
