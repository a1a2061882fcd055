package learner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pysis/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "pysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLessonDay(t *testing.T) {
	start := day(2026, 3, 1)
	tests := []struct {
		today time.Time
		want  int
	}{
		{day(2026, 2, 20), 1}, // clock skew before start
		{day(2026, 3, 1), 1},
		{day(2026, 3, 2), 2},
		{day(2026, 3, 30), 30},
		{day(2026, 3, 31), 30},
		{day(2027, 1, 1), 30},
	}
	for _, tt := range tests {
		if got := LessonDay(start, tt.today); got != tt.want {
			t.Errorf("LessonDay(%s) = %d, want %d", tt.today.Format(store.DateLayout), got, tt.want)
		}
	}
}

func TestLessonDayMonotonic(t *testing.T) {
	start := day(2026, 1, 1)
	prev := 0
	for i := range 60 {
		d := LessonDay(start, start.AddDate(0, 0, i))
		if d < prev {
			t.Fatalf("lesson day decreased at offset %d: %d < %d", i, d, prev)
		}
		if d < 1 || d > MaxLessonDay {
			t.Fatalf("lesson day %d out of range", d)
		}
		prev = d
	}
}

func TestDateUsesLocation(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	// 02:00 UTC on the 2nd is still the 1st in Bogotá.
	instant := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2026, 3, 1), Date(instant, bogota))
	assert.Equal(t, day(2026, 3, 2), Date(instant, time.UTC))
}

func TestFixedClock(t *testing.T) {
	c := NewFixedClock(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, day(2026, 3, 1), Today(c, time.UTC))
	c.Advance(2 * time.Hour)
	assert.Equal(t, day(2026, 3, 2), Today(c, time.UTC))
	c.Set(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, day(2026, 4, 1), Today(c, time.UTC))
}

func TestGetOrCreate(t *testing.T) {
	s := openStore(t)
	repo := s.Progress()
	ctx := context.Background()

	l, d, err := GetOrCreate(ctx, repo, 100, "Ana", day(2026, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, d)
	assert.Equal(t, day(2026, 3, 1), l.StartDate)
	assert.Equal(t, day(2026, 3, 1), l.LastAccessedDate)

	l, d, err = GetOrCreate(ctx, repo, 100, "", day(2026, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, d)
	assert.Equal(t, "Ana", l.Name, "empty name keeps the stored one")

	l, _, err = GetOrCreate(ctx, repo, 100, "Ana Sofía", day(2026, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, "Ana Sofía", l.Name)

	stored, err := repo.Learner(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Ana Sofía", stored.Name)
	assert.Equal(t, day(2026, 3, 1), stored.StartDate)
}

func TestTouch(t *testing.T) {
	s := openStore(t)
	repo := s.Progress()
	ctx := context.Background()

	l, _, err := GetOrCreate(ctx, repo, 7, "", day(2026, 3, 1))
	require.NoError(t, err)

	rolled, err := Touch(ctx, repo, l, day(2026, 3, 1))
	require.NoError(t, err)
	assert.False(t, rolled)

	rolled, err = Touch(ctx, repo, l, day(2026, 3, 3))
	require.NoError(t, err)
	assert.True(t, rolled)

	stored, err := repo.Learner(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, day(2026, 3, 3), stored.LastAccessedDate)
}

func TestHasCompleted(t *testing.T) {
	s := openStore(t)
	repo := s.Progress()
	ctx := context.Background()

	_, _, err := GetOrCreate(ctx, repo, 9, "", day(2026, 3, 1))
	require.NoError(t, err)

	done, err := HasCompleted(ctx, repo, 9, 1)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, repo.RecordCompletion(ctx, store.Completion{LearnerID: 9, LessonDay: 1, Score: 100}))
	done, err = HasCompleted(ctx, repo, 9, 1)
	require.NoError(t, err)
	assert.True(t, done)
}
