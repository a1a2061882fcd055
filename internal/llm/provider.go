// Package llm is the language-model layer shared by the intent judge, the
// quiz grader and the lesson tutor. Backends (Gemini, OpenAI, OpenRouter,
// Anthropic) sit behind Provider and are wrapped with timeout, retry and
// event-logging decorators by NewProvider.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one model reply.
type Provider interface {
	// Generate sends req and returns the reply. When req.Schema is set the
	// backend's structured-output mode is used and the returned Content is
	// JSON valid against the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is a single generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, requests a JSON reply conforming to it. A nil
	// Schema asks for free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero is sent explicitly.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema for structured replies. Name doubles as the
// cache key of the compiled schema and must be unique per definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model reply.
type Response struct {
	// Content is validated JSON for structured requests and the reply
	// text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request, which may be a
	// dated version of the configured one.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

// Text returns Content as a string.
func (r *Response) Text() string {
	return string(r.Content)
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
