// CLAUDE:SUMMARY Text model abstraction: one Complete method, optional JSON schema, helper that decodes into a struct.
// Package textmodel abstracts the generative model behind a single Complete
// call so the pipeline stages never import a vendor SDK directly.
package textmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answered with no usable text.
var ErrEmptyResponse = errors.New("textmodel: empty response")

// Request is one generation call. When Schema is set the model is constrained
// to emit a JSON document matching it.
type Request struct {
	System string
	Prompt string
	Schema *genai.Schema
}

// Model generates text. Implementations must be safe for concurrent use;
// extraction and synthesis stages fan out over one shared instance.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleteInto runs a schema-constrained request and decodes the JSON reply
// into out. Markdown code fences around the payload are tolerated; some
// models wrap JSON output in them regardless of the response MIME type.
func CompleteInto(ctx context.Context, m Model, req Request, out any) error {
	raw, err := m.Complete(ctx, req)
	if err != nil {
		return err
	}
	cleaned := stripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("textmodel: decode response: %w", err)
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
