package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/pysis/internal/store"
)

// LessonDays is the number of lesson days in the course.
const LessonDays = 30

// LessonFile returns the file name of the material for day.
func LessonFile(day int) string {
	return fmt.Sprintf("dia_%d.pdf", day)
}

// Report summarizes an ingestion run.
type Report struct {
	// Indexed maps each indexed day to its chunk count.
	Indexed map[int]int

	// Skipped lists days with no PDF or no extractable text.
	Skipped []int

	// Failed maps days that could not be indexed to the cause.
	Failed map[int]error
}

// Ingester turns lesson PDFs into embedded chunks.
type Ingester struct {
	Dir      string
	Splitter Splitter
	Embedder Embedder
	Repo     store.ChunkRepo
	Workers  int

	// Library, when set, has re-indexed days invalidated.
	Library *Library
	Logger  *zap.Logger
}

// Run indexes days 1..LessonDays from Dir. A day that fails is reported
// and does not stop the others; only a missing directory or a cancelled
// context fails the run.
func (in *Ingester) Run(ctx context.Context) (*Report, error) {
	logger := in.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(in.Dir)
	if err != nil {
		return nil, fmt.Errorf("course directory %q: %w", in.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("course directory %q is not a directory", in.Dir)
	}

	report := &Report{Indexed: make(map[int]int), Failed: make(map[int]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(in.Workers, 1))
	for day := 1; day <= LessonDays; day++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			n, err := in.ingestDay(gctx, day, logger)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, errSkipDay):
				report.Skipped = append(report.Skipped, day)
			case err != nil:
				logger.Error("index day failed", zap.Int("lesson_day", day), zap.Error(err))
				report.Failed[day] = err
			default:
				report.Indexed[day] = n
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	sort.Ints(report.Skipped)
	return report, nil
}

var errSkipDay = errors.New("skip day")

func (in *Ingester) ingestDay(ctx context.Context, day int, logger *zap.Logger) (int, error) {
	path := filepath.Join(in.Dir, LessonFile(day))
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return 0, errSkipDay
	}

	text, pageErrs, err := ExtractPDFText(path)
	if err != nil {
		return 0, err
	}
	for _, pe := range pageErrs {
		logger.Warn("skipping unreadable page", zap.Int("lesson_day", day), zap.Int("page", pe.Page), zap.Error(pe.Err))
	}
	return in.IndexText(ctx, day, text, LessonFile(day))
}

// IndexText splits, embeds and stores text as the material for day. Text
// with no content is skipped.
func (in *Ingester) IndexText(ctx context.Context, day int, text, source string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, errSkipDay
	}
	pieces := in.Splitter.Split(text)
	if len(pieces) == 0 {
		return 0, errSkipDay
	}

	vecs, err := in.Embedder.EmbedDocuments(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed day %d: %w", day, err)
	}
	chunks := make([]store.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = store.Chunk{
			LessonDay:      day,
			Ordinal:        i,
			Content:        p,
			Embedding:      vecs[i],
			EmbeddingModel: in.Embedder.Model(),
			Source:         source,
		}
	}
	if err := in.Repo.ReplaceChunks(ctx, day, chunks); err != nil {
		return 0, err
	}
	if in.Library != nil {
		in.Library.Invalidate(day)
	}
	if in.Logger != nil {
		in.Logger.Info("indexed lesson day", zap.Int("lesson_day", day), zap.Int("chunks", len(chunks)))
	}
	return len(chunks), nil
}

// IsSkipped reports whether err marks a day with nothing to index.
func IsSkipped(err error) bool {
	return errors.Is(err, errSkipDay)
}
