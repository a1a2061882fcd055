package store

import (
	"context"
	"errors"
	"time"

	"entgo.io/ent/dialect"
)

// UnitOfWork reads through the store and buffers every write until Commit,
// which applies them in a single transaction. Reads observe buffered writes.
//
// A request that fails part way simply drops its UnitOfWork: nothing it
// staged reaches the database. The SQL transaction exists only for the
// duration of Commit, so slow work between Begin and Commit (LLM calls)
// never holds the SQLite write lock.
type UnitOfWork struct {
	reads *progressRepo
	store *Store

	learners    map[int64]*Learner
	learnerKeys []int64
	completions []Completion
	sessions    map[int64][]byte
	sessionKeys []int64
	done        bool
}

// Begin starts a new unit of work.
func (s *Store) Begin() *UnitOfWork {
	return &UnitOfWork{
		reads:    &progressRepo{ex: s.drv},
		store:    s,
		learners: make(map[int64]*Learner),
		sessions: make(map[int64][]byte),
	}
}

func (u *UnitOfWork) Learner(ctx context.Context, id int64) (*Learner, error) {
	if l, ok := u.learners[id]; ok {
		cp := *l
		return &cp, nil
	}
	return u.reads.Learner(ctx, id)
}

func (u *UnitOfWork) PutLearner(_ context.Context, l *Learner) error {
	if _, ok := u.learners[l.ID]; !ok {
		u.learnerKeys = append(u.learnerKeys, l.ID)
	}
	cp := *l
	u.learners[l.ID] = &cp
	return nil
}

func (u *UnitOfWork) Completion(ctx context.Context, learnerID int64, day int) (*Completion, error) {
	for i := range u.completions {
		c := u.completions[i]
		if c.LearnerID == learnerID && c.LessonDay == day {
			return &c, nil
		}
	}
	return u.reads.Completion(ctx, learnerID, day)
}

func (u *UnitOfWork) RecordCompletion(ctx context.Context, c Completion) error {
	if _, err := u.Completion(ctx, c.LearnerID, c.LessonDay); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	u.completions = append(u.completions, c)
	return nil
}

func (u *UnitOfWork) LoadSession(ctx context.Context, learnerID int64) ([]byte, error) {
	if data, ok := u.sessions[learnerID]; ok {
		return data, nil
	}
	return u.reads.LoadSession(ctx, learnerID)
}

func (u *UnitOfWork) SaveSession(_ context.Context, learnerID int64, data []byte) error {
	if _, ok := u.sessions[learnerID]; !ok {
		u.sessionKeys = append(u.sessionKeys, learnerID)
	}
	u.sessions[learnerID] = append([]byte(nil), data...)
	return nil
}

// Commit writes all buffered changes in one transaction. Learners are
// written first so completions and sessions satisfy their foreign keys.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return errors.New("store: unit of work already finished")
	}
	u.done = true

	return u.store.WithTx(ctx, func(ex dialect.ExecQuerier) error {
		tx := &progressRepo{ex: ex}
		for _, id := range u.learnerKeys {
			if err := tx.PutLearner(ctx, u.learners[id]); err != nil {
				return err
			}
		}
		for _, c := range u.completions {
			if err := tx.RecordCompletion(ctx, c); err != nil {
				return err
			}
		}
		for _, id := range u.sessionKeys {
			if err := tx.SaveSession(ctx, id, u.sessions[id]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Discard drops all buffered changes.
func (u *UnitOfWork) Discard() {
	u.done = true
	clear(u.learners)
	clear(u.sessions)
	u.learnerKeys = nil
	u.completions = nil
	u.sessionKeys = nil
}

// Pending reports whether any writes are buffered.
func (u *UnitOfWork) Pending() bool {
	return len(u.learnerKeys) > 0 || len(u.completions) > 0 || len(u.sessionKeys) > 0
}
