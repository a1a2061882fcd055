// Package evaluation runs the end-of-day quiz: it asks a fixed set of
// questions one at a time, grades the answers and records the score.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/pysis/internal/session"
	"github.com/abhisek/pysis/internal/store"
)

// DefaultGradeWorkers bounds concurrent grading calls for one quiz.
const DefaultGradeWorkers = 3

// Grader decides whether a quiz answer is correct. Implementations treat
// their own failures as incorrect answers.
type Grader interface {
	GradeAnswer(ctx context.Context, question, answer string) bool
}

// Engine runs quizzes against a question bank.
type Engine struct {
	bank    Bank
	grader  Grader
	workers int
	now     func() time.Time
}

// NewEngine creates an Engine. A nil bank uses DefaultBank.
func NewEngine(bank Bank, grader Grader) *Engine {
	if bank == nil {
		bank = DefaultBank()
	}
	return &Engine{
		bank:    bank,
		grader:  grader,
		workers: DefaultGradeWorkers,
		now:     time.Now,
	}
}

// HasQuiz reports whether day has an evaluation.
func (e *Engine) HasQuiz(day int) bool {
	return len(e.bank.Questions(day)) > 0
}

// Start opens the quiz for day. It returns no state when the learner
// already completed the day, reporting the stored score, or when the day
// has no questions.
func (e *Engine) Start(ctx context.Context, repo store.ProgressRepo, learnerID int64, day int) (string, *session.Evaluation, error) {
	c, err := repo.Completion(ctx, learnerID, day)
	switch {
	case err == nil:
		return fmt.Sprintf("¡Felicidades! Ya completaste la evaluación del Día %d. Tu puntuación fue: %.2f%%.", day, c.Score), nil, nil
	case !errors.Is(err, store.ErrNotFound):
		return "", nil, fmt.Errorf("check completion: %w", err)
	}

	questions := e.bank.Questions(day)
	if len(questions) == 0 {
		return "No hay una evaluación disponible para este día.", nil, nil
	}

	state := &session.Evaluation{Day: day, NextIndex: 0, Answers: []string{}}
	return fmt.Sprintf("¡Es hora de la evaluación para el Día %d!\n\n<b>Pregunta 1:</b> %s", day, questions[0].Text), state, nil
}

// SubmitAnswer records answer against state. While questions remain it
// returns the next one with the advanced state. After the last answer it
// grades the quiz, records the completion and returns no state.
// state itself is never modified.
func (e *Engine) SubmitAnswer(ctx context.Context, repo store.ProgressRepo, learnerID int64, answer string, state session.Evaluation) (string, *session.Evaluation, error) {
	next := state.WithAnswer(answer)
	questions := e.bank.Questions(state.Day)

	if next.NextIndex < len(questions) {
		msg := fmt.Sprintf("¡Recibido! Siguiente pregunta (<b>Pregunta %d</b>):\n\n%s", next.NextIndex+1, questions[next.NextIndex].Text)
		return msg, &next, nil
	}

	score, err := e.grade(ctx, questions, next.Answers)
	if err != nil {
		return "", nil, err
	}

	err = repo.RecordCompletion(ctx, store.Completion{
		LearnerID:   learnerID,
		LessonDay:   state.Day,
		CompletedAt: e.now(),
		Score:       score,
	})
	if err != nil {
		return "", nil, fmt.Errorf("record completion: %w", err)
	}

	return fmt.Sprintf("¡Evaluación del Día %d completada! Tu puntuación final es: <b>%.2f%%</b>. ¡Gran trabajo!", state.Day, score), nil, nil
}

// grade scores answers against questions as a percentage. Each question
// is graded concurrently. A missing answer counts as incorrect.
func (e *Engine) grade(ctx context.Context, questions []Question, answers []string) (float64, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	correct := make([]bool, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		g.Go(func() error {
			correct[i] = e.grader.GradeAnswer(gctx, q.Text, answers[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	// A cancelled request must not record grades that defaulted to false.
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("grade quiz: %w", err)
	}

	n := 0
	for _, ok := range correct {
		if ok {
			n++
		}
	}
	return 100 * float64(n) / float64(len(questions)), nil
}
