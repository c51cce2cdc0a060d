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
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/shared"
	"comida-a-casa/internal/shopping"
)

//go:embed shopping_list_prompt.md
var shoppingListPrompt string

var shoppingListTmpl = template.Must(template.New("shopping_list").Parse(shoppingListPrompt))

const (
	shoppingFailedMessage = "No se pudo generar la lista de la compra. Por favor, inténtalo de nuevo."
	shoppingFormatMessage = "La IA devolvió una lista de la compra con un formato no válido. Por favor, inténtalo de nuevo."
)

// ShoppingResult is a validated shopping list plus generation metadata.
type ShoppingResult struct {
	Items []shopping.Item
	Meta  shared.GenerationMeta
}

// ShoppingListSchema wraps the item list in an object so providers that
// only emit JSON objects can satisfy it.
func ShoppingListSchema() *llm.Schema {
	item := llm.Object(map[string]*llm.Schema{
		"ingredient": llm.String("Ingrediente"),
		"quantity":   llm.String("Cantidad, admite rangos como '1-2'"),
		"unit":       llm.String("Unidad"),
		"category":   llm.String("Sección del supermercado, p. ej. 'Frutas y Verduras', 'Carnicería', 'Despensa'"),
	}, "ingredient", "quantity", "unit", "category")
	return llm.Object(map[string]*llm.Schema{"items": llm.Array(item)}, "items")
}

// GenerateShoppingList requests a consolidated list for every dish in plan.
// Items come back unchecked.
func (p *Planner) GenerateShoppingList(ctx context.Context, plan menu.Plan, profiles []profile.Profile) (ShoppingResult, error) {
	start := time.Now()

	dishes := plan.Dishes()
	if len(dishes) == 0 {
		return ShoppingResult{}, apperr.New(apperr.MalformedInput, "planner.shopping", "Primero genera un menú.")
	}

	people := len(profiles)
	if people == 0 {
		people = 1
	}
	prompt, err := render(shoppingListTmpl, map[string]any{
		"People":     people,
		"Categories": shopping.Categories,
		"Dishes":     dishes,
	})
	if err != nil {
		return ShoppingResult{}, err
	}

	resp, err := p.gen.GenerateJSON(ctx, llm.Request{Operation: OpShoppingList, Prompt: prompt, Schema: ShoppingListSchema()})
	meta := shared.GenerationMeta{Operation: OpShoppingList, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return ShoppingResult{Meta: meta}, generationFailed("planner.shopping", shoppingFailedMessage, err)
	}

	items, err := parseShoppingList(resp.Content)
	if err != nil {
		return ShoppingResult{Meta: meta}, formatError("planner.shopping", shoppingFormatMessage,
			fmt.Errorf("failed to parse shopping list %w. Response: %s", err, resp.Content))
	}
	return ShoppingResult{Items: items, Meta: meta}, nil
}

// parseShoppingList accepts {"items": [...]} or a bare array.
func parseShoppingList(content string) ([]shopping.Item, error) {
	body := cleanJSON(content)

	var raw []shopping.Item
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Items *[]shopping.Item `json:"items"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Items == nil {
			return nil, errors.New("missing items")
		}
		raw = *wrapped.Items
	}

	items := make([]shopping.Item, 0, len(raw))
	for _, it := range raw {
		it.Ingredient = strings.TrimSpace(it.Ingredient)
		if it.Ingredient == "" {
			continue
		}
		it.Unit = strings.TrimSpace(it.Unit)
		it.Category = strings.TrimSpace(it.Category)
		it.Checked = false
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, errors.New("empty shopping list")
	}
	return items, nil
}
