package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func geminiServer(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "g-test", Model: "gemini-flash", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return p
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 210, "candidatesTokenCount": 32, "totalTokenCount": 242},
		"modelVersion":  "gemini-2.5-flash",
	}
}

func TestGeminiGenerate(t *testing.T) {
	var body map[string]any
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiReply("Una <b>variable</b> es un nombre para un valor.", "STOP"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "Eres PySis.",
		Messages: []Message{
			{Role: RoleUser, Content: "¿qué es una variable?"},
			{Role: RoleAssistant, Content: "Buena pregunta."},
			{Role: RoleUser, Content: "explícalo"},
		},
		MaxTokens: 400,
	})
	require.NoError(t, err)
	assert.Equal(t, "Una <b>variable</b> es un nombre para un valor.", resp.Text())
	assert.Equal(t, Usage{InputTokens: 210, OutputTokens: 32, TotalTokens: 242}, resp.Usage)
	assert.Equal(t, "gemini-2.5-flash", resp.Model)
	assert.Equal(t, StopEnd, resp.StopReason)

	contents := body["contents"].([]any)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])
	gen := body["generationConfig"].(map[string]any)
	assert.EqualValues(t, 400, gen["maxOutputTokens"])
	assert.Contains(t, gen, "temperature")
}

func TestGeminiGenerateStructured(t *testing.T) {
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiReply(`{"correct":`, "MAX_TOKENS"))
	})
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, Schema: gradeSchema})
	var trunc *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &trunc)
}

func TestGeminiBlockedPrompt(t *testing.T) {
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"promptFeedback": map[string]any{"blockReason": "SAFETY"}})
	})
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
	assert.ErrorContains(t, err, "prompt blocked: SAFETY")
}

func TestGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	assert.ErrorAs(t, GeminiError(genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}), &rl)

	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, GeminiError(genai.APIError{Code: http.StatusForbidden}), &unavailable)
	assert.True(t, unavailable.Permanent())
	assert.Equal(t, "gemini", unavailable.Provider)

	require.ErrorAs(t, GeminiError(assert.AnError), &unavailable)
	assert.Zero(t, unavailable.Status)
}

func TestGeminiModels(t *testing.T) {
	for name, want := range map[string]string{
		"gemini-flash":     "gemini-2.5-flash",
		"gemini-lite":      "gemini-2.5-flash-lite",
		"gemini-pro":       "gemini-2.5-pro",
		"gemini-2.0-flash": "gemini-2.0-flash",
	} {
		assert.Equal(t, want, resolveModel(name, geminiModels), name)
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type":        "object",
		"description": "respuesta",
		"properties": map[string]any{
			"intent": map[string]any{"type": "string", "enum": []any{"AFFIRMATIVE", "NEGATIVE"}},
			"score":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0},
			"topics": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"other":  map[string]any{"type": "null"},
		},
		"required": []string{"intent"},
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, "respuesta", s.Description)
	assert.Equal(t, []string{"intent"}, s.Required)
	assert.Equal(t, []string{"AFFIRMATIVE", "NEGATIVE"}, s.Properties["intent"].Enum)
	require.NotNil(t, s.Properties["score"].Maximum)
	assert.Equal(t, 100.0, *s.Properties["score"].Maximum)
	assert.Equal(t, genai.TypeArray, s.Properties["topics"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["topics"].Items.Type)
	assert.Equal(t, genai.TypeString, s.Properties["other"].Type, "unsupported types fall back to string")
}
