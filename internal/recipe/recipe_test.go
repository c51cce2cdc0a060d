package recipe

import (
	"strings"
	"testing"

	"comida-a-casa/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, Legumes, ParseCategory("legumbres"))
	assert.Equal(t, Vegetables, ParseCategory("  VERDURAS Y ENSALADAS "))
	assert.Equal(t, Unclassified, ParseCategory("Postres"))
	assert.Equal(t, Unclassified, ParseCategory(""))
	assert.Equal(t, Unclassified, ParseCategory("Desayuno"))
}

func TestDraftValidate(t *testing.T) {
	assert.NoError(t, Draft{Name: "Tortilla", Ingredients: "huevos, patatas"}.Validate())

	err := Draft{Name: "Tortilla", Ingredients: "   "}.Validate()
	assert.True(t, apperr.IsKind(err, apperr.MalformedInput))
	assert.Equal(t, IncompleteMessage, apperr.UserMessage(err))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Ninguna.", Summary(nil))

	got := Summary([]UserRecipe{
		{Name: "Lentejas", Ingredients: "lentejas, chorizo"},
		{Name: "Gazpacho", Ingredients: "tomate, pepino"},
	})
	assert.Equal(t, "Lentejas (Ingredientes: lentejas, chorizo); Gazpacho (Ingredientes: tomate, pepino)", got)
}

func TestBuildExtractorPrompt(t *testing.T) {
	prompt, err := buildExtractorPrompt("https://example.com/receta", "Pisto manchego")
	require.NoError(t, err)

	assert.Contains(t, prompt, "https://example.com/receta")
	assert.Contains(t, prompt, "Pisto manchego")
	assert.Contains(t, prompt, "Arroces, Carnes, Pescados")

	long := strings.Repeat("á", maxPageRunes+50)
	prompt, err = buildExtractorPrompt("u", long)
	require.NoError(t, err)
	assert.NotContains(t, prompt, long)
}
