package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 70, "completion_tokens": 9, "total_tokens": 79},
	}
}

func openAIServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func TestOpenAIGenerate(t *testing.T) {
	var body map[string]any
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"intent":"QUESTION"}`, "stop"))
	})
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-mini", BaseURL: url})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())

	schema := &Schema{Name: "intent-test", Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"intent": map[string]any{"type": "string"}},
		"required":   []any{"intent"},
	}}
	resp, err := p.Generate(context.Background(), Request{
		System:    "Clasifica la intención.",
		Messages:  []Message{{Role: RoleUser, Content: "¿qué es un string?"}},
		Schema:    schema,
		MaxTokens: 50,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"QUESTION"}`, resp.Text())
	assert.Equal(t, Usage{InputTokens: 70, OutputTokens: 9, TotalTokens: 79}, resp.Usage)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Clasifica la intención.", msgs[0].(map[string]any)["content"])
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "intent-test", format["json_schema"].(map[string]any)["name"])
}

func TestOpenAIGenerateStopReasons(t *testing.T) {
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("Un bucle <code>for</code> recorre", "length"))
	})
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: url})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "bucles"}}})
	require.NoError(t, err)
	assert.Equal(t, StopMaxTokens, resp.StopReason)

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "bucles"}}, Schema: gradeSchema})
	var trunc *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &trunc)
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		status    int
		rateLimit bool
		permanent bool
	}{
		{http.StatusTooManyRequests, true, false},
		{http.StatusUnauthorized, false, true},
		{http.StatusBadGateway, false, false},
	}
	for _, tt := range tests {
		url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": http.StatusText(tt.status), "type": "error"},
			})
		})
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "google/gemini-2.5-flash", BaseURL: url})
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		if tt.rateLimit {
			var rl *ErrRateLimit
			require.ErrorAs(t, err, &rl, tt.status)
			assert.Equal(t, "openrouter", rl.Provider)
			continue
		}
		var unavailable *ErrProviderUnavailable
		require.ErrorAs(t, err, &unavailable, tt.status)
		assert.Equal(t, tt.status, unavailable.Status)
		assert.Equal(t, tt.permanent, unavailable.Permanent())
	}
}

func TestOpenAINoChoices(t *testing.T) {
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := chatCompletion("", "stop")
		resp["choices"] = []any{}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: url})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"})
	assert.ErrorContains(t, err, "openrouter API key is required")

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "gpt-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-mini", p.ModelID(), "openrouter names are not remapped")
	assert.Equal(t, "openrouter", p.name)

	_, err = NewOpenAIProvider(OpenAIConfig{})
	assert.ErrorContains(t, err, "openai API key is required")
}
