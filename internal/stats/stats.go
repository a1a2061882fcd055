// Package stats projects learner progress into the reporting views served
// by the statistics API and printed by the report command.
package stats

import (
	"context"
	"time"

	"github.com/abhisek/pysis/internal/learner"
	"github.com/abhisek/pysis/internal/store"
)

// DefaultStudentName labels learners who never shared a name.
const DefaultStudentName = "Anónima"

// ActiveWindowDays is how far back a learner counts as recently active.
const ActiveWindowDays = 7

// LessonStat is one completed lesson of a student.
type LessonStat struct {
	LessonDay       int      `json:"lesson_day"`
	EvaluationScore *float64 `json:"evaluation_score"`
}

// Student is a learner with the lessons they completed.
type Student struct {
	UserTelegramID   int64        `json:"user_telegram_id"`
	UserName         string       `json:"user_name"`
	StartDate        string       `json:"start_date"`
	LastAccessedDate string       `json:"last_accessed_date"`
	CompletedLessons []LessonStat `json:"completed_lessons"`
}

// DailyActivity counts learners by the day they were last seen.
type DailyActivity struct {
	Date        string `json:"date"`
	ActiveUsers int    `json:"active_users"`
}

// LessonPerformance is the average evaluation score of a lesson day.
type LessonPerformance struct {
	LessonDay    int     `json:"lesson_day"`
	AverageScore float64 `json:"average_score"`
}

// ActiveUsers is the number of learners seen in the last week.
type ActiveUsers struct {
	ActiveUsersCount int `json:"active_users_count"`
}

// Service computes the projections.
type Service struct {
	repo  store.StatsRepo
	clock learner.Clock
	loc   *time.Location
}

// NewService creates a Service. A nil clock reads the wall clock and a nil
// location uses time.Local.
func NewService(repo store.StatsRepo, clock learner.Clock, loc *time.Location) *Service {
	if clock == nil {
		clock = learner.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, clock: clock, loc: loc}
}

// Students lists every learner ordered by id.
func (s *Service) Students(ctx context.Context) ([]Student, error) {
	rows, err := s.repo.Students(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Student, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = DefaultStudentName
		}
		lessons := make([]LessonStat, 0, len(r.Completions))
		for _, c := range r.Completions {
			score := c.Score
			lessons = append(lessons, LessonStat{LessonDay: c.LessonDay, EvaluationScore: &score})
		}
		out = append(out, Student{
			UserTelegramID:   r.ID,
			UserName:         name,
			StartDate:        r.StartDate.Format(store.DateLayout),
			LastAccessedDate: r.LastAccessedDate.Format(store.DateLayout),
			CompletedLessons: lessons,
		})
	}
	return out, nil
}

// DailyActivity returns learner counts per last-access date, oldest first.
func (s *Service) DailyActivity(ctx context.Context) ([]DailyActivity, error) {
	rows, err := s.repo.DailyActivity(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DailyActivity, len(rows))
	for i, r := range rows {
		out[i] = DailyActivity{Date: r.Date.Format(store.DateLayout), ActiveUsers: r.ActiveUsers}
	}
	return out, nil
}

// LessonPerformance returns the average score per lesson day.
func (s *Service) LessonPerformance(ctx context.Context) ([]LessonPerformance, error) {
	rows, err := s.repo.LessonPerformance(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LessonPerformance, len(rows))
	for i, r := range rows {
		out[i] = LessonPerformance{LessonDay: r.LessonDay, AverageScore: r.AverageScore}
	}
	return out, nil
}

// ActiveUsersLastWeek counts learners last seen on or after today minus
// ActiveWindowDays.
func (s *Service) ActiveUsersLastWeek(ctx context.Context) (ActiveUsers, error) {
	since := learner.Today(s.clock, s.loc).AddDate(0, 0, -ActiveWindowDays)
	n, err := s.repo.ActiveLearnersSince(ctx, since)
	if err != nil {
		return ActiveUsers{}, err
	}
	return ActiveUsers{ActiveUsersCount: n}, nil
}
