package planner

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"
	"comida-a-casa/internal/shared"
)

//go:embed recipe_detail_prompt.md
var recipeDetailPrompt string

var recipeDetailTmpl = template.Must(template.New("recipe_detail").Parse(recipeDetailPrompt))

const (
	detailFailedMessage = "No se pudo obtener la receta. Por favor, inténtalo de nuevo."
	detailFormatMessage = "La IA devolvió una receta con un formato no válido. Por favor, inténtalo de nuevo."
)

// RecipeResult is a validated recipe detail plus generation metadata.
type RecipeResult struct {
	Recipe recipe.Detail
	Meta   shared.GenerationMeta
}

// RecipeDetailSchema is the shape of a detailed recipe.
func RecipeDetailSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"name":         llm.String("Nombre del plato"),
		"ingredients":  llm.Array(llm.String("Ingrediente con cantidad")),
		"instructions": llm.Array(llm.String("Paso de la preparación")),
		"calories":     llm.Number("Calorías totales estimadas del plato"),
		"nutritionalInfo": llm.Object(map[string]*llm.Schema{
			"protein":       llm.String("Proteínas aproximadas, p. ej. '25 g'"),
			"carbohydrates": llm.String("Hidratos de carbono aproximados, p. ej. '50 g'"),
			"fats":          llm.String("Grasas aproximadas, p. ej. '15 g'"),
		}, "protein", "carbohydrates", "fats"),
		"motivationalComment": llm.String("Comentario motivador sobre los beneficios del plato"),
	}, "name", "ingredients", "instructions", "calories", "nutritionalInfo", "motivationalComment")
}

// GetRecipeDetails requests the full recipe of dish portioned for profiles.
func (p *Planner) GetRecipeDetails(ctx context.Context, dish string, profiles []profile.Profile) (RecipeResult, error) {
	start := time.Now()

	dish = strings.TrimSpace(dish)
	if dish == "" {
		return RecipeResult{}, apperr.New(apperr.MalformedInput, "planner.recipe", "Indica el nombre del plato.")
	}

	family := "1 adulto estándar."
	if len(profiles) > 0 {
		family = profile.Summary(profiles, false)
	}
	prompt, err := render(recipeDetailTmpl, map[string]any{"Dish": dish, "Family": family})
	if err != nil {
		return RecipeResult{}, err
	}

	resp, err := p.gen.GenerateJSON(ctx, llm.Request{Operation: OpRecipeDetail, Prompt: prompt, Schema: RecipeDetailSchema()})
	meta := shared.GenerationMeta{Operation: OpRecipeDetail, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return RecipeResult{Meta: meta}, generationFailed("planner.recipe", detailFailedMessage, err)
	}

	detail, err := parseRecipeDetail(resp.Content)
	if err != nil {
		return RecipeResult{Meta: meta}, formatError("planner.recipe", detailFormatMessage,
			fmt.Errorf("failed to parse recipe %w. Response: %s", err, resp.Content))
	}
	return RecipeResult{Recipe: detail, Meta: meta}, nil
}

func parseRecipeDetail(content string) (recipe.Detail, error) {
	var d recipe.Detail
	if err := json.Unmarshal(cleanJSON(content), &d); err != nil {
		return recipe.Detail{}, err
	}
	d.Name = strings.TrimSpace(d.Name)
	d.Ingredients = nonEmpty(d.Ingredients)
	d.Instructions = nonEmpty(d.Instructions)

	switch {
	case d.Name == "":
		return recipe.Detail{}, errors.New("missing name")
	case len(d.Ingredients) == 0:
		return recipe.Detail{}, errors.New("missing ingredients")
	case len(d.Instructions) == 0:
		return recipe.Detail{}, errors.New("missing instructions")
	case d.Calories < 0:
		return recipe.Detail{}, errors.New("negative calories")
	}
	return d, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
