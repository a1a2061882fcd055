package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/pysis/internal/learner"
	"github.com/abhisek/pysis/internal/store"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "pysis.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	learners := []store.Learner{
		{ID: 10, Name: "Laura", StartDate: day(3, 1), LastAccessedDate: day(3, 10)},
		{ID: 20, StartDate: day(3, 2), LastAccessedDate: day(3, 2)},
		{ID: 30, Name: "Sofía", StartDate: day(3, 5), LastAccessedDate: day(3, 10)},
	}
	for i := range learners {
		if err := s.Progress().PutLearner(ctx, &learners[i]); err != nil {
			t.Fatalf("put learner: %v", err)
		}
	}
	for _, c := range []store.Completion{
		{LearnerID: 10, LessonDay: 1, CompletedAt: day(3, 1), Score: 100},
		{LearnerID: 10, LessonDay: 2, CompletedAt: day(3, 2), Score: 66.67},
		{LearnerID: 30, LessonDay: 1, CompletedAt: day(3, 5), Score: 33.33},
	} {
		if err := s.Progress().RecordCompletion(ctx, c); err != nil {
			t.Fatalf("record completion: %v", err)
		}
	}

	clock := learner.NewFixedClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	return NewService(s.StatsRepo(), clock, time.UTC), s
}

func score(v float64) *float64 { return &v }

func TestStudents(t *testing.T) {
	svc, _ := newService(t)
	got, err := svc.Students(context.Background())
	if err != nil {
		t.Fatalf("Students: %v", err)
	}

	want := []Student{
		{
			UserTelegramID: 10, UserName: "Laura", StartDate: "2026-03-01", LastAccessedDate: "2026-03-10",
			CompletedLessons: []LessonStat{{1, score(100)}, {2, score(66.67)}},
		},
		{
			UserTelegramID: 20, UserName: DefaultStudentName, StartDate: "2026-03-02", LastAccessedDate: "2026-03-02",
			CompletedLessons: []LessonStat{},
		},
		{
			UserTelegramID: 30, UserName: "Sofía", StartDate: "2026-03-05", LastAccessedDate: "2026-03-10",
			CompletedLessons: []LessonStat{{1, score(33.33)}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Students mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyActivity(t *testing.T) {
	svc, _ := newService(t)
	got, err := svc.DailyActivity(context.Background())
	if err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	want := []DailyActivity{{"2026-03-02", 1}, {"2026-03-10", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DailyActivity mismatch (-want +got):\n%s", diff)
	}
}

func TestLessonPerformance(t *testing.T) {
	svc, _ := newService(t)
	got, err := svc.LessonPerformance(context.Background())
	if err != nil {
		t.Fatalf("LessonPerformance: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].LessonDay != 1 || got[0].AverageScore < 66.66 || got[0].AverageScore > 66.67 {
		t.Errorf("day 1 = %+v, want average 66.665", got[0])
	}
	if got[1].LessonDay != 2 || got[1].AverageScore != 66.67 {
		t.Errorf("day 2 = %+v", got[1])
	}
}

func TestActiveUsersLastWeek(t *testing.T) {
	svc, _ := newService(t)
	got, err := svc.ActiveUsersLastWeek(context.Background())
	if err != nil {
		t.Fatalf("ActiveUsersLastWeek: %v", err)
	}
	// 2026-03-02 is outside the window that starts on 2026-03-03.
	if got.ActiveUsersCount != 2 {
		t.Errorf("ActiveUsersCount = %d, want 2", got.ActiveUsersCount)
	}
}

func TestEmptyStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "pysis.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	svc := NewService(s.StatsRepo(), nil, time.UTC)

	students, err := svc.Students(context.Background())
	if err != nil || len(students) != 0 {
		t.Fatalf("Students = %v, %v; want empty", students, err)
	}
	active, err := svc.ActiveUsersLastWeek(context.Background())
	if err != nil || active.ActiveUsersCount != 0 {
		t.Fatalf("ActiveUsersLastWeek = %v, %v; want 0", active, err)
	}
}
