package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/pysis/internal/store"
)

// ErrIndexNotFound is returned when a lesson day has no indexed material.
var ErrIndexNotFound = errors.New("knowledge: lesson index not found")

// Index is the embedded material of one lesson day.
type Index struct {
	Day    int
	Model  string
	Chunks []store.Chunk
}

// Search returns up to k chunks for query: the fetchK nearest chunks are
// re-ranked by maximal marginal relevance with the given lambda.
func (idx *Index) Search(query []float32, k, fetchK int, lambda float64) []store.Chunk {
	vecs := make([][]float32, len(idx.Chunks))
	for i, c := range idx.Chunks {
		vecs[i] = c.Embedding
	}
	near, _ := nearest(query, vecs, fetchK)

	candidates := make([][]float32, len(near))
	for i, j := range near {
		candidates[i] = vecs[j]
	}
	picks := mmr(query, candidates, k, lambda)

	out := make([]store.Chunk, len(picks))
	for i, p := range picks {
		out[i] = idx.Chunks[near[p]]
	}
	return out
}

// Library loads lesson indexes from the chunk store and caches them per
// day. A cached index is reused only while the day's chunk stamp is
// unchanged, so re-indexing from another process is picked up.
type Library struct {
	repo  store.ChunkRepo
	model string

	mu    sync.RWMutex
	cache map[int]cachedIndex
}

type cachedIndex struct {
	stamp store.ChunkStamp
	index *Index
}

// NewLibrary creates a Library. model is the embedding model queries will
// use; days indexed with another model fail to load.
func NewLibrary(repo store.ChunkRepo, model string) *Library {
	return &Library{repo: repo, model: model, cache: make(map[int]cachedIndex)}
}

// LoadIndex returns the index for day, or ErrIndexNotFound when the day
// has no chunks.
func (l *Library) LoadIndex(ctx context.Context, day int) (*Index, error) {
	stamp, err := l.repo.ChunkStamp(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load index for day %d: %w", day, err)
	}
	if stamp.Count == 0 {
		l.Invalidate(day)
		return nil, fmt.Errorf("day %d: %w", day, ErrIndexNotFound)
	}

	l.mu.RLock()
	cached, ok := l.cache[day]
	l.mu.RUnlock()
	if ok && cached.stamp == stamp {
		return cached.index, nil
	}

	chunks, err := l.repo.Chunks(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load index for day %d: %w", day, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("day %d: %w", day, ErrIndexNotFound)
	}
	for _, c := range chunks {
		if c.EmbeddingModel != l.model {
			return nil, fmt.Errorf("day %d is indexed with %q but queries use %q: re-run pysis index", day, c.EmbeddingModel, l.model)
		}
	}

	idx := &Index{Day: day, Model: l.model, Chunks: chunks}
	l.mu.Lock()
	l.cache[day] = cachedIndex{stamp: stamp, index: idx}
	l.mu.Unlock()
	return idx, nil
}

// Invalidate drops the cached index for day so the next load reads the
// store again.
func (l *Library) Invalidate(day int) {
	l.mu.Lock()
	delete(l.cache, day)
	l.mu.Unlock()
}
