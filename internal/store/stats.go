package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LearnerWithLessons is a learner joined with its completed lessons.
type LearnerWithLessons struct {
	Learner
	Completions []Completion
}

// DayActivity counts learners whose last access fell on Date.
type DayActivity struct {
	Date        time.Time
	ActiveUsers int
}

// LessonScore is the average evaluation score for one lesson day.
type LessonScore struct {
	LessonDay    int
	AverageScore float64
}

// StatsRepo provides read-only projections over learner progress.
type StatsRepo interface {
	Students(ctx context.Context) ([]LearnerWithLessons, error)
	DailyActivity(ctx context.Context) ([]DayActivity, error)
	LessonPerformance(ctx context.Context) ([]LessonScore, error)
	ActiveLearnersSince(ctx context.Context, since time.Time) (int, error)
}

type statsRepo struct {
	store *Store
}

// StatsRepo returns a StatsRepo backed by this store.
func (s *Store) StatsRepo() StatsRepo {
	return &statsRepo{store: s}
}

func (r *statsRepo) Students(ctx context.Context) ([]LearnerWithLessons, error) {
	lq := builder().
		Select("id", "name", "start_date", "last_accessed_date").
		From(builder().Table(LearnersTable.Name)).
		OrderBy(entsql.Asc("id"))

	var (
		out   []LearnerWithLessons
		index = make(map[int64]int)
	)
	err := queryRows(ctx, r.store.drv, lq, func(rows *entsql.Rows) error {
		var (
			l           LearnerWithLessons
			name        sql.NullString
			start, last string
		)
		if err := rows.Scan(&l.ID, &name, &start, &last); err != nil {
			return err
		}
		l.Name = name.String
		var err error
		if l.StartDate, err = time.Parse(DateLayout, start); err != nil {
			return fmt.Errorf("parse start_date: %w", err)
		}
		if l.LastAccessedDate, err = time.Parse(DateLayout, last); err != nil {
			return fmt.Errorf("parse last_accessed_date: %w", err)
		}
		index[l.ID] = len(out)
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}

	cq := builder().
		Select("learner_id", "lesson_day", "completed_at", "evaluation_score").
		From(builder().Table(LessonCompletionsTable.Name)).
		OrderBy(entsql.Asc("learner_id"), entsql.Asc("lesson_day"))

	err = queryRows(ctx, r.store.drv, cq, func(rows *entsql.Rows) error {
		var c Completion
		if err := rows.Scan(&c.LearnerID, &c.LessonDay, &c.CompletedAt, &c.Score); err != nil {
			return err
		}
		if i, ok := index[c.LearnerID]; ok {
			out[i].Completions = append(out[i].Completions, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	return out, nil
}

func (r *statsRepo) DailyActivity(ctx context.Context) ([]DayActivity, error) {
	q := builder().
		Select("last_accessed_date", entsql.As(entsql.Count("id"), "active_users")).
		From(builder().Table(LearnersTable.Name)).
		GroupBy("last_accessed_date").
		OrderBy(entsql.Asc("last_accessed_date"))

	var out []DayActivity
	err := queryRows(ctx, r.store.drv, q, func(rows *entsql.Rows) error {
		var (
			a    DayActivity
			date string
		)
		if err := rows.Scan(&date, &a.ActiveUsers); err != nil {
			return err
		}
		var err error
		if a.Date, err = time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("parse activity date: %w", err)
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query daily activity: %w", err)
	}
	return out, nil
}

func (r *statsRepo) LessonPerformance(ctx context.Context) ([]LessonScore, error) {
	q := builder().
		Select("lesson_day", entsql.As(entsql.Avg("evaluation_score"), "average_score")).
		From(builder().Table(LessonCompletionsTable.Name)).
		GroupBy("lesson_day").
		OrderBy(entsql.Asc("lesson_day"))

	var out []LessonScore
	err := queryRows(ctx, r.store.drv, q, func(rows *entsql.Rows) error {
		var s LessonScore
		if err := rows.Scan(&s.LessonDay, &s.AverageScore); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query lesson performance: %w", err)
	}
	return out, nil
}

func (r *statsRepo) ActiveLearnersSince(ctx context.Context, since time.Time) (int, error) {
	q := builder().
		Select(entsql.Count(entsql.Distinct("id"))).
		From(builder().Table(LearnersTable.Name)).
		Where(entsql.GTE("last_accessed_date", since.Format(DateLayout)))

	var n int
	err := queryRows(ctx, r.store.drv, q, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count active learners: %w", err)
	}
	return n, nil
}
