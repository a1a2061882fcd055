package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-haiku"}, option.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 18},
	}
}

func TestAnthropicGenerate(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage("¡Hola, Ana! Hoy vemos <b>variables</b>.", "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "Eres PySis, tutor de Python.",
		Messages: []Message{
			{Role: RoleUser, Content: "hola"},
			{Role: RoleAssistant, Content: "¿Empezamos?"},
			{Role: RoleUser, Content: "sí"},
		},
		MaxTokens:   512,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "¡Hola, Ana! Hoy vemos <b>variables</b>.", resp.Text())
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 18, TotalTokens: 138}, resp.Usage)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
	assert.Equal(t, StopEnd, resp.StopReason)

	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.EqualValues(t, 512, body["max_tokens"])
	assert.EqualValues(t, 0.3, body["temperature"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
	system := body["system"].([]any)
	assert.Equal(t, "Eres PySis, tutor de Python.", system[0].(map[string]any)["text"])
}

func TestAnthropicGenerateStructured(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		stop  string
		check func(t *testing.T, resp *Response, err error)
	}{
		{"valid", "```json\n{\"correct\":true}\n```", "end_turn", func(t *testing.T, resp *Response, err error) {
			require.NoError(t, err)
			assert.Equal(t, `{"correct":true}`, resp.Text())
		}},
		{"truncated", `{"corr`, "max_tokens", func(t *testing.T, _ *Response, err error) {
			var trunc *ErrMaxTokensExceeded
			assert.ErrorAs(t, err, &trunc)
		}},
		{"off schema", `{"correcto":"sí"}`, "end_turn", func(t *testing.T, _ *Response, err error) {
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(anthropicMessage(tt.text, tt.stop))
			})
			resp, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "print('hola')"}},
				Schema:    gradeSchema,
				MaxTokens: 64,
			})
			tt.check(t, resp, err)
		})
	}
}

func anthropicError(status int, kind string, header http.Header) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

func TestAnthropicErrors(t *testing.T) {
	p := anthropicServer(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error", http.Header{"Retry-After": {"5"}}))
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 5*time.Second, rl.RetryAfter)
	assert.Equal(t, "anthropic", rl.Provider)

	p = anthropicServer(t, anthropicError(http.StatusUnauthorized, "authentication_error", nil))
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, http.StatusUnauthorized, unavailable.Status)
	assert.True(t, unavailable.Permanent())

	p = anthropicServer(t, anthropicError(http.StatusInternalServerError, "api_error", nil))
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	require.ErrorAs(t, err, &unavailable)
	assert.False(t, unavailable.Permanent())
}

func TestAnthropicEmptyContent(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		msg := anthropicMessage("", "refusal")
		msg["content"] = []map[string]any{}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msg)
	})
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestAnthropicModels(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{})
	assert.Error(t, err)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", p.ModelID())

	p, err = NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-opus-4-1"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", p.ModelID(), "unknown names pass through")
}
