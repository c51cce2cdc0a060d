package llm

import (
	"context"
	"errors"

	"comida-a-casa/internal/shared"
)

// ErrNoContent is returned when a provider answers without any text.
var ErrNoContent = errors.New("no content generated")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// Request is one schema-constrained generation call.
type Request struct {
	// Operation names the caller for metrics ("menu_plan", "recipe_detail", ...).
	Operation string
	Prompt    string
	Schema    *Schema
}

// Generator produces raw text that is expected to be JSON conforming to
// the request schema. Callers must still validate it.
type Generator interface {
	GenerateJSON(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
