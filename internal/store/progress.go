package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo and SessionRepo over any executor,
// so the same queries serve both the pooled driver and a transaction.
type progressRepo struct {
	ex dialect.ExecQuerier
}

// Progress returns a ProgressRepo backed by this store.
func (s *Store) Progress() ProgressRepo {
	return &progressRepo{ex: s.drv}
}

// Sessions returns a SessionRepo backed by this store.
func (s *Store) Sessions() SessionRepo {
	return &progressRepo{ex: s.drv}
}

func (r *progressRepo) Learner(ctx context.Context, id int64) (*Learner, error) {
	q := builder().
		Select("id", "name", "start_date", "last_accessed_date").
		From(builder().Table(LearnersTable.Name)).
		Where(entsql.EQ("id", id))

	var found *Learner
	err := queryRows(ctx, r.ex, q, func(rows *entsql.Rows) error {
		var (
			l           Learner
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
		found = &l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query learner %d: %w", id, err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *progressRepo) PutLearner(ctx context.Context, l *Learner) error {
	q := builder().
		Insert(LearnersTable.Name).
		Columns("id", "name", "start_date", "last_accessed_date").
		Values(
			l.ID,
			sql.NullString{String: l.Name, Valid: l.Name != ""},
			l.StartDate.Format(DateLayout),
			l.LastAccessedDate.Format(DateLayout),
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("name")
				u.SetExcluded("last_accessed_date")
			}),
		)
	if _, err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("save learner %d: %w", l.ID, err)
	}
	return nil
}

func (r *progressRepo) Completion(ctx context.Context, learnerID int64, day int) (*Completion, error) {
	q := builder().
		Select("learner_id", "lesson_day", "completed_at", "evaluation_score").
		From(builder().Table(LessonCompletionsTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("lesson_day", day),
		))

	var found *Completion
	err := queryRows(ctx, r.ex, q, func(rows *entsql.Rows) error {
		var c Completion
		if err := rows.Scan(&c.LearnerID, &c.LessonDay, &c.CompletedAt, &c.Score); err != nil {
			return err
		}
		found = &c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query completion: %w", err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *progressRepo) RecordCompletion(ctx context.Context, c Completion) error {
	completedAt := c.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	q := builder().
		Insert(LessonCompletionsTable.Name).
		Columns("learner_id", "lesson_day", "completed_at", "evaluation_score").
		Values(c.LearnerID, c.LessonDay, completedAt.UTC(), c.Score).
		OnConflict(
			entsql.ConflictColumns("learner_id", "lesson_day"),
			entsql.DoNothing(),
		)
	if _, err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("save completion: %w", err)
	}
	return nil
}

func (r *progressRepo) LoadSession(ctx context.Context, learnerID int64) ([]byte, error) {
	q := builder().
		Select("data").
		From(builder().Table(LearnerSessionsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID))

	var (
		data  string
		found bool
	)
	err := queryRows(ctx, r.ex, q, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&data)
	})
	if err != nil {
		return nil, fmt.Errorf("query session %d: %w", learnerID, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return []byte(data), nil
}

func (r *progressRepo) SaveSession(ctx context.Context, learnerID int64, data []byte) error {
	q := builder().
		Insert(LearnerSessionsTable.Name).
		Columns("learner_id", "data", "updated_at").
		Values(learnerID, string(data), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("learner_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("save session %d: %w", learnerID, err)
	}
	return nil
}
