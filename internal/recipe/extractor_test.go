package recipe

import (
	"context"
	"errors"
	"testing"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	content string
	err     error
	lastReq llm.Request
}

func (m *mockGenerator) GenerateJSON(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.content, Usage: shared.TokenUsage{PromptTokens: 50, Model: "mock"}}, nil
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		gen := &mockGenerator{content: `{"name":" Pisto manchego ","ingredients":"calabacín, pimiento, tomate","category":"verduras y ensaladas"}`}

		res, err := Extract(ctx, gen, "https://example.com/pisto", "texto")
		require.NoError(t, err)
		assert.Equal(t, Draft{Name: "Pisto manchego", Ingredients: "calabacín, pimiento, tomate", Category: Vegetables}, res.Draft)
		assert.Equal(t, "recipe_extract", res.Meta.Operation)
		assert.Equal(t, 50, res.Meta.Usage.PromptTokens)
		assert.Equal(t, "recipe_extract", gen.lastReq.Operation)
		require.NotNil(t, gen.lastReq.Schema)
		assert.ElementsMatch(t, []string{"name", "ingredients", "category"}, gen.lastReq.Schema.Required)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := Extract(ctx, &mockGenerator{content: "not json"}, "u", "texto")
		assert.True(t, apperr.IsKind(err, apperr.GenerationFormatError))
	})

	t.Run("NoRecipeInPage", func(t *testing.T) {
		_, err := Extract(ctx, &mockGenerator{content: `{"name":"","ingredients":"","category":"Otros"}`}, "u", "texto")
		assert.True(t, apperr.IsKind(err, apperr.MalformedInput))
	})

	t.Run("ProviderError", func(t *testing.T) {
		cause := errors.New("timeout")
		_, err := Extract(ctx, &mockGenerator{err: cause}, "u", "texto")
		assert.True(t, apperr.IsKind(err, apperr.GenerationFailure))
		assert.ErrorIs(t, err, cause)
	})
}
