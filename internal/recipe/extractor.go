package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"
	"unicode/utf8"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTmpl = template.Must(template.New("extractor").Parse(extractorPrompt))

// maxPageRunes bounds the page text sent for extraction.
const maxPageRunes = 20000

// ExtractorResult is the draft found in a page plus generation metadata.
type ExtractorResult struct {
	Draft Draft
	Meta  shared.GenerationMeta
}

// ExtractionSchema constrains the extraction response.
func ExtractionSchema() *llm.Schema {
	categories := make([]string, len(Categories))
	for i, c := range Categories {
		categories[i] = string(c)
	}
	return llm.Object(map[string]*llm.Schema{
		"name":        llm.String("Nombre de la receta"),
		"ingredients": llm.String("Ingredientes separados por comas"),
		"category":    llm.Enum("Categoría del plato", categories...),
	}, "name", "ingredients", "category")
}

// Extract asks gen for the recipe contained in pageText.
func Extract(ctx context.Context, gen llm.Generator, sourceURL, pageText string) (ExtractorResult, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(sourceURL, pageText)
	if err != nil {
		return ExtractorResult{}, err
	}

	resp, err := gen.GenerateJSON(ctx, llm.Request{Operation: "recipe_extract", Prompt: prompt, Schema: ExtractionSchema()})
	meta := shared.GenerationMeta{Operation: "recipe_extract", Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return ExtractorResult{Meta: meta}, apperr.Wrap(apperr.GenerationFailure, "recipe.extract",
			"No se pudo extraer la receta. Por favor, inténtalo de nuevo.", err)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(resp.Content), &draft); err != nil {
		return ExtractorResult{Meta: meta}, apperr.Wrap(apperr.GenerationFormatError, "recipe.extract",
			"La respuesta de la IA no tiene un formato válido.",
			fmt.Errorf("failed to parse extracted recipe %w. Response: %s", err, resp.Content))
	}

	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return ExtractorResult{Meta: meta}, apperr.New(apperr.MalformedInput, "recipe.extract",
			"No se encontró ninguna receta en esa página.")
	}

	return ExtractorResult{Draft: draft, Meta: meta}, nil
}

func buildExtractorPrompt(sourceURL, pageText string) (string, error) {
	if utf8.RuneCountInString(pageText) > maxPageRunes {
		pageText = string([]rune(pageText)[:maxPageRunes])
	}

	var buf bytes.Buffer
	err := extractorTmpl.Execute(&buf, map[string]any{
		"Categories": Categories,
		"SourceURL":  sourceURL,
		"PageText":   pageText,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build extractor prompt: %w", err)
	}
	return buf.String(), nil
}
