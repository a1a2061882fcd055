package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/pysis/internal/evaluation"
	"github.com/abhisek/pysis/internal/judge"
	"github.com/abhisek/pysis/internal/knowledge"
	"github.com/abhisek/pysis/internal/llm"
	"github.com/abhisek/pysis/internal/store"
	"github.com/abhisek/pysis/internal/tutor"
)

// newEmbedder builds the embedding backend selected by the configuration.
func newEmbedder(ctx context.Context) (knowledge.Embedder, error) {
	switch name := cfg.EmbedderName(); name {
	case "gemini":
		return knowledge.NewGeminiEmbedder(ctx, cfg.LLM.Gemini.APIKey, cfg.EmbeddingModel)
	case "openai":
		return knowledge.NewOpenAIEmbedder(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL, cfg.EmbeddingModel)
	case "hash":
		return knowledge.NewHashEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q", name)
	}
}

// newTutor wires the conversation service on top of st.
func newTutor(ctx context.Context, st *store.Store) (*tutor.Service, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	embedder, err := newEmbedder(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	j := judge.New(provider, judge.DefaultConfig(), logger)
	library := knowledge.NewLibrary(st.ChunkRepo(), embedder.Model())
	retriever := knowledge.NewRetriever(library, embedder, provider, knowledge.DefaultConfig(), logger)
	engine := evaluation.NewEngine(nil, j)

	return tutor.New(st, j, retriever, engine,
		tutor.WithLocation(cfg.Timezone),
		tutor.WithLogger(logger),
	), nil
}
