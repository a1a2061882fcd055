package llm

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gradeSchema = &Schema{
	Name: "quiz-grade-test",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{"type": "boolean"},
			"score":   map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"topic":   map[string]any{"type": "string", "enum": []any{"variables", "print"}},
		},
		"required":             []any{"correct"},
		"additionalProperties": false,
	},
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"minimal", `{"correct":true}`, false},
		{"all fields", `{"correct":false,"score":40,"topic":"print"}`, false},
		{"missing required", `{"score":40}`, true},
		{"wrong type", `{"correct":"sí"}`, true},
		{"outside enum", `{"correct":true,"topic":"bucles"}`, true},
		{"above maximum", `{"correct":true,"score":101}`, true},
		{"extra property", `{"correct":true,"why":"porque"}`, true},
		{"not json", `correcto`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(gradeSchema, json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.raw, string(inv.Content))
		})
	}

	assert.NoError(t, validateResponse(nil, json.RawMessage(`cualquier cosa`)))
}

func TestValidateResponseBadSchema(t *testing.T) {
	bad := &Schema{Name: "broken-test", Definition: map[string]any{"type": 42}}
	err := validateResponse(bad, json.RawMessage(`{}`))
	assert.ErrorContains(t, err, `compile schema "broken-test"`)
}

func TestStripFence(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"correct":true}`, `{"correct":true}`},
		{"  {\"correct\":true}\n", `{"correct":true}`},
		{"```json\n{\"correct\":true}\n```", `{"correct":true}`},
		{"```\n{\"correct\":true}\n```", `{"correct":true}`},
		{"```{\"correct\":true}```", `{"correct":true}`},
		{"```", "```"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(stripFence([]byte(tt.in))), tt.in)
	}
}

func TestFinish(t *testing.T) {
	req := Request{Schema: gradeSchema}

	resp, err := finish(req, []byte("```json\n{\"correct\":true}\n```"), "gemini-2.5-flash", "", Usage{InputTokens: 90, OutputTokens: 8})
	require.NoError(t, err)
	assert.Equal(t, `{"correct":true}`, resp.Text())
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, 98, resp.Usage.TotalTokens)

	_, err = finish(req, []byte(`{"correct":tr`), "m", StopMaxTokens, Usage{})
	var trunc *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, `{"correct":tr`, string(trunc.Content))

	_, err = finish(req, []byte(`{"score":3}`), "m", StopEnd, Usage{})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)

	text := "Una lista se escribe con <code>[]</code>."
	resp, err = finish(Request{}, []byte(text), "m", StopMaxTokens, Usage{TotalTokens: 7})
	require.NoError(t, err, "plain text keeps whatever was generated")
	assert.Equal(t, text, resp.Text())
	assert.Equal(t, StopMaxTokens, resp.StopReason)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestClassify(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "12")
	err := classify("anthropic", http.StatusTooManyRequests, h, assert.AnError)
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 12*time.Second, rl.RetryAfter)
	assert.Equal(t, "anthropic", rl.Provider)
	assert.ErrorIs(t, err, assert.AnError)

	tests := []struct {
		status    int
		permanent bool
	}{
		{0, false},
		{http.StatusBadRequest, true},
		{http.StatusUnauthorized, true},
		{http.StatusNotFound, true},
		{http.StatusRequestTimeout, false},
		{http.StatusInternalServerError, false},
		{http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		var unavailable *ErrProviderUnavailable
		require.ErrorAs(t, classify("gemini", tt.status, nil, assert.AnError), &unavailable)
		assert.Equal(t, tt.status, unavailable.Status)
		assert.Equal(t, tt.permanent, unavailable.Permanent(), tt.status)
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Zero(t, retryAfter(h))
	assert.Zero(t, retryAfter(nil))

	h.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfter(h))

	h.Set("Retry-After", time.Now().Add(time.Minute).UTC().Format(http.TimeFormat))
	assert.InDelta(t, float64(time.Minute), float64(retryAfter(h)), float64(2*time.Second))

	h.Set("Retry-After", "pronto")
	assert.Zero(t, retryAfter(h))
}
