package planner

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"
	"comida-a-casa/internal/shared"
)

//go:embed menu_plan_prompt.md
var menuPlanPrompt string

var menuPlanTmpl = template.Must(template.New("menu_plan").Parse(menuPlanPrompt))

// MaxDays bounds the length of a generated menu.
const MaxDays = 31

const (
	menuFailedMessage = "No se pudo generar el menú. Por favor, inténtalo de nuevo."
	menuFormatMessage = "La IA devolvió un menú con un formato no válido. Por favor, inténtalo de nuevo."
)

// MenuRequest describes the menu to generate.
type MenuRequest struct {
	Start             time.Time
	Days              int
	Preferences       string
	Profiles          []profile.Profile
	Recipes           []recipe.UserRecipe
	IncludeBreakfasts bool
}

// MenuResult is a validated plan plus generation metadata.
type MenuResult struct {
	Plan menu.Plan
	Meta shared.GenerationMeta
}

// GenerateMenuPlan requests a plan with one entry per requested day.
func (p *Planner) GenerateMenuPlan(ctx context.Context, req MenuRequest) (MenuResult, error) {
	start := time.Now()

	if req.Days <= 0 || req.Days > MaxDays {
		return MenuResult{}, apperr.New(apperr.MalformedInput, "planner.menu",
			fmt.Sprintf("La duración del menú debe estar entre 1 y %d días.", MaxDays))
	}

	keys := dates.ExpandRange(req.Start, req.Days)
	prompt, err := buildMenuPlanPrompt(req, keys)
	if err != nil {
		return MenuResult{}, err
	}

	resp, err := p.gen.GenerateJSON(ctx, llm.Request{
		Operation: OpMenuPlan,
		Prompt:    prompt,
		Schema:    MenuPlanSchema(keys, req.IncludeBreakfasts),
	})
	meta := shared.GenerationMeta{Operation: OpMenuPlan, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return MenuResult{Meta: meta}, generationFailed("planner.menu", menuFailedMessage, err)
	}

	plan, err := parseMenuPlan(resp.Content, keys, req.IncludeBreakfasts)
	if err != nil {
		return MenuResult{Meta: meta}, formatError("planner.menu", menuFormatMessage,
			fmt.Errorf("failed to parse menu plan %w. Response: %s", err, resp.Content))
	}

	return MenuResult{Plan: plan, Meta: meta}, nil
}

// MenuPlanSchema requires one object per key, each with lunch and dinner
// (and breakfast when requested).
func MenuPlanSchema(keys []string, includeBreakfasts bool) *llm.Schema {
	meal := llm.Object(map[string]*llm.Schema{
		"name":     llm.String("Nombre conciso del plato"),
		"category": llm.Enum("Categoría principal del plato", recipe.MealCategories()...),
	}, "name", "category")

	slots := map[string]*llm.Schema{"lunch": meal, "dinner": meal}
	required := []string{"lunch", "dinner"}
	if includeBreakfasts {
		slots["breakfast"] = meal
		required = append([]string{"breakfast"}, required...)
	}

	days := make(map[string]*llm.Schema, len(keys))
	for _, k := range keys {
		days[k] = llm.Object(slots, required...)
	}
	return llm.Object(days, keys...)
}

func buildMenuPlanPrompt(req MenuRequest, keys []string) (string, error) {
	prefs := strings.TrimSpace(req.Preferences)
	if prefs == "" {
		prefs = "Sin preferencias específicas"
	}
	return render(menuPlanTmpl, map[string]any{
		"Days":              req.Days,
		"StartDate":         keys[0],
		"Dates":             keys,
		"Family":            profile.Summary(req.Profiles, true),
		"IncludeBreakfasts": req.IncludeBreakfasts,
		"Preferences":       prefs,
		"Favourites":        recipe.Summary(req.Recipes),
	})
}

type rawMeal struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type rawDay struct {
	Breakfast *rawMeal `json:"breakfast"`
	Lunch     *rawMeal `json:"lunch"`
	Dinner    *rawMeal `json:"dinner"`
}

// parseMenuPlan decodes content and checks every requested key and slot.
// Keys that were not requested are dropped.
func parseMenuPlan(content string, keys []string, includeBreakfasts bool) (menu.Plan, error) {
	var raw map[string]rawDay
	if err := json.Unmarshal(cleanJSON(content), &raw); err != nil {
		return nil, err
	}

	plan := make(menu.Plan, len(keys))
	for _, key := range keys {
		day, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("missing date %s", key)
		}
		lunch, err := mainMeal(day.Lunch, key, "lunch")
		if err != nil {
			return nil, err
		}
		dinner, err := mainMeal(day.Dinner, key, "dinner")
		if err != nil {
			return nil, err
		}
		meals := menu.DayMeals{Lunch: lunch, Dinner: dinner}

		if includeBreakfasts {
			if day.Breakfast == nil || strings.TrimSpace(day.Breakfast.Name) == "" {
				return nil, fmt.Errorf("missing breakfast for %s", key)
			}
			meals.Breakfast = &menu.MealDetail{Name: strings.TrimSpace(day.Breakfast.Name), Category: recipe.Breakfast}
		}
		plan[key] = meals
	}
	return plan, nil
}

func mainMeal(m *rawMeal, key, slot string) (menu.MealDetail, error) {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return menu.MealDetail{}, fmt.Errorf("missing %s for %s", slot, key)
	}
	category := recipe.ParseCategory(m.Category)
	if category == recipe.Unclassified {
		category = recipe.Others
	}
	return menu.MealDetail{Name: strings.TrimSpace(m.Name), Category: category}, nil
}
