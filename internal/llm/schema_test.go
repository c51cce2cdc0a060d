package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGenaiSchema(t *testing.T) {
	s := Object(map[string]*Schema{
		"name":     String("Nombre"),
		"category": Enum("Categoría", "Carnes", "Pescados"),
		"steps":    Array(String("")),
		"calories": Number(""),
	}, "name", "category")

	out := toGenaiSchema(s)
	require.NotNil(t, out)
	assert.Equal(t, genai.TypeObject, out.Type)
	assert.Equal(t, []string{"name", "category"}, out.Required)
	assert.Equal(t, genai.TypeString, out.Properties["name"].Type)
	assert.Equal(t, []string{"Carnes", "Pescados"}, out.Properties["category"].Enum)
	assert.Equal(t, "enum", out.Properties["category"].Format)
	assert.Equal(t, genai.TypeArray, out.Properties["steps"].Type)
	assert.Equal(t, genai.TypeString, out.Properties["steps"].Items.Type)
	assert.Equal(t, genai.TypeNumber, out.Properties["calories"].Type)
}

func TestSchemaJSON(t *testing.T) {
	s := Object(map[string]*Schema{"name": String("Nombre")}, "name")
	assert.JSONEq(t, `{"type":"object","properties":{"name":{"type":"string","description":"Nombre"}},"required":["name"]}`, s.JSON())

	d := s.Describe("Plato")
	assert.Equal(t, "Plato", d.Description)
	assert.Empty(t, s.Description)
}
