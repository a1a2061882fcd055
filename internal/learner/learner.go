// Package learner computes calendar-based lesson progress and manages
// learner records on first and later contact.
package learner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/pysis/internal/store"
)

// MaxLessonDay is the last day of the course.
const MaxLessonDay = 30

// Clock abstracts the current time for day arithmetic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a settable Clock for tests and replays.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock returns a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Date returns the calendar day of t in loc as UTC midnight, the form in
// which dates are stored.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc.
func Today(c Clock, loc *time.Location) time.Time {
	return Date(c.Now(), loc)
}

// LessonDay returns the course day reached on today by a learner who
// started on start: one plus the whole days elapsed, clamped to [1, 30].
func LessonDay(start, today time.Time) int {
	days := int(today.Sub(start).Hours() / 24)
	return min(max(days+1, 1), MaxLessonDay)
}

// GetOrCreate returns the learner with id and its lesson day on today.
// A new learner starts today. An existing learner takes name when it is
// non-empty and differs from the stored one.
func GetOrCreate(ctx context.Context, repo store.ProgressRepo, id int64, name string, today time.Time) (*store.Learner, int, error) {
	l, err := repo.Learner(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l = &store.Learner{
			ID:               id,
			Name:             name,
			StartDate:        today,
			LastAccessedDate: today,
		}
		if err := repo.PutLearner(ctx, l); err != nil {
			return nil, 0, fmt.Errorf("create learner: %w", err)
		}
		return l, 1, nil
	case err != nil:
		return nil, 0, fmt.Errorf("load learner: %w", err)
	}

	if name != "" && name != l.Name {
		l.Name = name
		if err := repo.PutLearner(ctx, l); err != nil {
			return nil, 0, fmt.Errorf("rename learner: %w", err)
		}
	}
	return l, LessonDay(l.StartDate, today), nil
}

// Touch records that l was active on today. It reports whether the
// learner's last access fell on another day, which starts a new lesson day.
func Touch(ctx context.Context, repo store.ProgressRepo, l *store.Learner, today time.Time) (bool, error) {
	if l.LastAccessedDate.Equal(today) {
		return false, nil
	}
	l.LastAccessedDate = today
	if err := repo.PutLearner(ctx, l); err != nil {
		return false, fmt.Errorf("touch learner: %w", err)
	}
	return true, nil
}

// HasCompleted reports whether the learner finished day's evaluation.
func HasCompleted(ctx context.Context, repo store.ProgressRepo, id int64, day int) (bool, error) {
	_, err := repo.Completion(ctx, id, day)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
