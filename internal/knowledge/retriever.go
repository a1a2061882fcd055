// Package knowledge answers lesson questions from the day's study
// material: it ingests lesson PDFs into embedded chunks, retrieves the
// relevant passages and asks the tutor persona to answer from them.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/llm"
	"github.com/abhisek/pysis/internal/session"
)

// Config tunes retrieval and generation.
type Config struct {
	// K is the number of chunks given to the tutor.
	K int

	// FetchK is the number of nearest chunks considered before MMR
	// re-ranking.
	FetchK int

	// Lambda trades relevance (1) against diversity (0) in MMR.
	Lambda float64

	Temperature float64
	MaxTokens   int

	// CondenseQuestion rewrites follow-up questions into standalone ones
	// before retrieval when the transcript is not empty.
	CondenseQuestion bool
}

// DefaultConfig returns the retrieval settings used in production.
func DefaultConfig() Config {
	return Config{
		K:                5,
		FetchK:           20,
		Lambda:           0.5,
		Temperature:      0.4,
		MaxTokens:        1024,
		CondenseQuestion: true,
	}
}

// Answer is the tutor's reply to one question.
type Answer struct {
	// Text is the HTML reply. It is empty when TopicsExhausted is set.
	Text string

	// TopicsExhausted reports that the tutor has no topics left for the
	// day.
	TopicsExhausted bool
}

// Retriever answers questions against the lesson library.
type Retriever struct {
	library  *Library
	embedder Embedder
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(library *Library, embedder Embedder, provider llm.Provider, cfg Config, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		library:  library,
		embedder: embedder,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Answer replies to question as the tutor for lesson day, using transcript
// as conversation history. It fails with ErrIndexNotFound when the day has
// no material.
func (r *Retriever) Answer(ctx context.Context, day int, question string, transcript []session.Turn) (Answer, error) {
	idx, err := r.library.LoadIndex(ctx, day)
	if err != nil {
		return Answer{}, err
	}

	history := formatTranscript(transcript)
	query := question
	if r.cfg.CondenseQuestion && len(transcript) > 0 {
		query = r.condense(ctx, history, question)
	}

	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	chunks := idx.Search(vec, r.cfg.K, r.cfg.FetchK, r.cfg.Lambda)

	passages := make([]string, len(chunks))
	for i, c := range chunks {
		passages[i] = c.Content
	}
	userMsg, err := render(tutorUserTemplate, tutorPromptData{
		Day:      day,
		Context:  strings.Join(passages, "\n\n"),
		History:  history,
		Question: question,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("render tutor prompt: %w", err)
	}

	resp, err := r.provider.Generate(llm.WithPurpose(ctx, llm.PurposeTutorAnswer), llm.Request{
		System:      tutorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if strings.Contains(text, TopicsCoveredSentinel) {
		return Answer{TopicsExhausted: true}, nil
	}
	return Answer{Text: text}, nil
}

// condense rewrites question into a standalone retrieval query. On
// failure the original question is used.
func (r *Retriever) condense(ctx context.Context, history, question string) string {
	userMsg, err := render(condenseUserTemplate, tutorPromptData{History: history, Question: question})
	if err != nil {
		return question
	}
	resp, err := r.provider.Generate(llm.WithPurpose(ctx, llm.PurposeCondenseQuestion), llm.Request{
		System:      condenseSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		r.logger.Warn("condense question failed, retrieving with original", zap.Error(err))
		return question
	}
	if q := strings.TrimSpace(resp.Text()); q != "" {
		return q
	}
	return question
}
