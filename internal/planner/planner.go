// Package planner builds the generation requests for menus, recipe details
// and shopping lists, and validates what comes back.
//
// Every response is untrusted: it is decoded into typed values and checked
// against the requested shape before anything reaches the caller. A
// response that fails that check is a GenerationFormatError; nothing is
// retried automatically.
package planner

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/recipe"
)

// Operation names reported with every generation call.
const (
	OpMenuPlan     = "menu_plan"
	OpRecipeDetail = "recipe_detail"
	OpShoppingList = "shopping_list"
)

// Planner handles the generation of menus and their derived views.
type Planner struct {
	gen llm.Generator
}

// NewPlanner creates a new Planner instance.
func NewPlanner(gen llm.Generator) *Planner {
	return &Planner{gen: gen}
}

// ExtractRecipe finds the recipe contained in a clipped page.
func (p *Planner) ExtractRecipe(ctx context.Context, sourceURL, pageText string) (recipe.ExtractorResult, error) {
	return recipe.Extract(ctx, p.gen, sourceURL, pageText)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// cleanJSON strips surrounding whitespace and markdown code fences some
// providers add even in JSON mode.
func cleanJSON(s string) []byte {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}

func generationFailed(op, message string, err error) error {
	return apperr.Wrap(apperr.GenerationFailure, op, message, err)
}

func formatError(op, message string, err error) error {
	return apperr.Wrap(apperr.GenerationFormatError, op, message, err)
}
