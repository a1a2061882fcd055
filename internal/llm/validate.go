package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Normalised stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// compiled holds compiled schemas keyed by Schema.Name.
var compiled sync.Map

// finish turns a backend's raw output into a Response. Structured replies are
// unwrapped from Markdown code fences and validated against req.Schema; a
// structured reply cut off by the token limit yields ErrMaxTokensExceeded.
func finish(req Request, raw []byte, model, stop string, usage Usage) (*Response, error) {
	content := json.RawMessage(raw)
	if req.Schema != nil {
		content = stripFence(content)
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	if stop == "" {
		stop = StopEnd
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(b []byte) []byte {
	t := bytes.TrimSpace(b)
	if !bytes.HasPrefix(t, []byte("```")) || !bytes.HasSuffix(t, []byte("```")) || len(t) < 6 {
		return t
	}
	t = t[3 : len(t)-3]
	if nl := bytes.IndexByte(t, '\n'); nl >= 0 && !bytes.ContainsAny(t[:nl], "{[") {
		t = t[nl+1:]
	}
	return bytes.TrimSpace(t)
}

// validateResponse checks raw against schema. A nil schema accepts anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := compileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}

	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %q: %w", schema.Name, err)}
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if sch, ok := compiled.Load(schema.Name); ok {
		return sch.(*jsonschema.Schema), nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	url := "pysis://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiled.Store(schema.Name, sch)
	return sch, nil
}
