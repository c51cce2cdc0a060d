package llm

import "encoding/json"

// Type of a schema node.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is a provider-neutral description of the expected JSON output.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Object builds an object schema. All listed required names must be keys
// of props.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// Array builds an array schema of items.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// String builds a string schema with an optional description.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Number builds a number schema with an optional description.
func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

// Enum builds a string schema restricted to values.
func Enum(description string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: description, Enum: values}
}

// Describe returns a copy of s with the description set.
func (s *Schema) Describe(description string) *Schema {
	c := *s
	c.Description = description
	return &c
}

// JSON renders the schema as indented JSON Schema, used by providers that
// only accept the constraint inside the prompt.
func (s *Schema) JSON() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
