package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// chunkInsertBatch bounds the rows per INSERT to stay well under SQLite's
// host parameter limit.
const chunkInsertBatch = 100

// ChunkRepo stores embedded lesson material, one set of chunks per day.
type ChunkRepo interface {
	// ReplaceChunks atomically swaps the chunks stored for day.
	ReplaceChunks(ctx context.Context, day int, chunks []Chunk) error

	// Chunks returns the chunks for day ordered by ordinal.
	Chunks(ctx context.Context, day int) ([]Chunk, error)

	// IndexedDays returns each day that has chunks with its chunk count.
	IndexedDays(ctx context.Context) (map[int]int, error)

	// ChunkStamp identifies the indexing run that wrote day's chunks.
	ChunkStamp(ctx context.Context, day int) (ChunkStamp, error)
}

// ChunkStamp changes whenever a day is re-indexed. The zero value means
// the day has no chunks.
type ChunkStamp struct {
	Count     int
	IndexedAt string
}

type chunkRepo struct {
	store *Store
}

// ChunkRepo returns a ChunkRepo backed by this store.
func (s *Store) ChunkRepo() ChunkRepo {
	return &chunkRepo{store: s}
}

func (r *chunkRepo) ReplaceChunks(ctx context.Context, day int, chunks []Chunk) error {
	now := time.Now().UTC()
	return r.store.WithTx(ctx, func(ex dialect.ExecQuerier) error {
		del := builder().
			Delete(LessonChunksTable.Name).
			Where(entsql.EQ("lesson_day", day))
		if _, err := execQuery(ctx, ex, del); err != nil {
			return fmt.Errorf("delete chunks for day %d: %w", day, err)
		}

		for start := 0; start < len(chunks); start += chunkInsertBatch {
			end := min(start+chunkInsertBatch, len(chunks))
			ins := builder().
				Insert(LessonChunksTable.Name).
				Columns("lesson_day", "ordinal", "content", "embedding", "embedding_model", "source", "created_at")
			for i, c := range chunks[start:end] {
				vec, err := json.Marshal(c.Embedding)
				if err != nil {
					return fmt.Errorf("encode embedding: %w", err)
				}
				ins.Values(day, start+i, c.Content, string(vec), c.EmbeddingModel, c.Source, now)
			}
			if _, err := execQuery(ctx, ex, ins); err != nil {
				return fmt.Errorf("insert chunks for day %d: %w", day, err)
			}
		}
		return nil
	})
}

func (r *chunkRepo) Chunks(ctx context.Context, day int) ([]Chunk, error) {
	q := builder().
		Select("id", "lesson_day", "ordinal", "content", "embedding", "embedding_model", "source").
		From(builder().Table(LessonChunksTable.Name)).
		Where(entsql.EQ("lesson_day", day)).
		OrderBy(entsql.Asc("ordinal"))

	var out []Chunk
	err := queryRows(ctx, r.store.drv, q, func(rows *entsql.Rows) error {
		var (
			c   Chunk
			vec string
		)
		if err := rows.Scan(&c.ID, &c.LessonDay, &c.Ordinal, &c.Content, &vec, &c.EmbeddingModel, &c.Source); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(vec), &c.Embedding); err != nil {
			return fmt.Errorf("decode embedding for chunk %d: %w", c.ID, err)
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query chunks for day %d: %w", day, err)
	}
	return out, nil
}

func (r *chunkRepo) IndexedDays(ctx context.Context) (map[int]int, error) {
	q := builder().
		Select("lesson_day", entsql.As(entsql.Count("*"), "chunks")).
		From(builder().Table(LessonChunksTable.Name)).
		GroupBy("lesson_day")

	out := make(map[int]int)
	err := queryRows(ctx, r.store.drv, q, func(rows *entsql.Rows) error {
		var day, n int
		if err := rows.Scan(&day, &n); err != nil {
			return err
		}
		out[day] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query indexed days: %w", err)
	}
	return out, nil
}

func (r *chunkRepo) ChunkStamp(ctx context.Context, day int) (ChunkStamp, error) {
	q := builder().
		Select(entsql.As(entsql.Count("*"), "chunks"), entsql.As(entsql.Max("created_at"), "indexed_at")).
		From(builder().Table(LessonChunksTable.Name)).
		Where(entsql.EQ("lesson_day", day))

	var stamp ChunkStamp
	err := queryRows(ctx, r.store.drv, q, func(rows *entsql.Rows) error {
		var at sql.NullString
		if err := rows.Scan(&stamp.Count, &at); err != nil {
			return err
		}
		stamp.IndexedAt = at.String
		return nil
	})
	if err != nil {
		return ChunkStamp{}, fmt.Errorf("query chunk stamp for day %d: %w", day, err)
	}
	return stamp, nil
}
