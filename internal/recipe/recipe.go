// Package recipe defines the user's stored recipes, the transient recipe
// detail produced by generation, and the CSV import format.
package recipe

import (
	"strings"

	"comida-a-casa/internal/apperr"
)

// Category is a cooking category.
type Category string

const (
	Rice       Category = "Arroces"
	Meat       Category = "Carnes"
	Fish       Category = "Pescados"
	Pasta      Category = "Pastas"
	Legumes    Category = "Legumbres"
	Vegetables Category = "Verduras y Ensaladas"
	Soups      Category = "Cremas y Sopas"
	Others     Category = "Otros"

	// Unclassified marks a user recipe without a known category.
	Unclassified Category = "Sin Clasificar"
	// Breakfast is only used for generated breakfast slots.
	Breakfast Category = "Desayuno"
)

// Categories is the closed set of cooking categories, in display order.
var Categories = []Category{Rice, Meat, Fish, Pasta, Legumes, Vegetables, Soups, Others}

// MealCategories are the categories a generated meal may carry.
func MealCategories() []string {
	out := make([]string, 0, len(Categories)+1)
	for _, c := range Categories {
		out = append(out, string(c))
	}
	return append(out, string(Breakfast))
}

// ParseCategory matches s case-insensitively against Categories.
// Anything else is Unclassified.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return Unclassified
}

// Known reports whether c belongs to Categories.
func (c Category) Known() bool {
	return ParseCategory(string(c)) == c
}

// UserRecipe is a recipe stored in the user's collection.
type UserRecipe struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients string   `json:"ingredients"`
	Category    Category `json:"category"`
}

// Draft is a recipe not yet stored.
type Draft struct {
	Name        string   `json:"name" binding:"required"`
	Ingredients string   `json:"ingredients" binding:"required"`
	Category    Category `json:"category"`
}

// IncompleteMessage is shown when a recipe lacks name or ingredients.
const IncompleteMessage = "Ambos campos son obligatorios."

// Normalize trims the fields and maps the category onto the closed set.
func (d Draft) Normalize() Draft {
	return Draft{
		Name:        strings.TrimSpace(d.Name),
		Ingredients: strings.TrimSpace(d.Ingredients),
		Category:    ParseCategory(string(d.Category)),
	}
}

// Validate checks that the draft has a name and ingredients.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Ingredients) == "" {
		return apperr.New(apperr.MalformedInput, "recipe.validate", IncompleteMessage)
	}
	return nil
}

// WithID turns the draft into a stored recipe.
func (d Draft) WithID(id string) UserRecipe {
	return UserRecipe{ID: id, Name: d.Name, Ingredients: d.Ingredients, Category: d.Category}
}

// Nutrition is the macro breakdown of a recipe, as free-text amounts.
type Nutrition struct {
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fats          string `json:"fats"`
}

// Detail is the generated, never persisted, full recipe of a dish.
type Detail struct {
	Name                string    `json:"name"`
	Ingredients         []string  `json:"ingredients"`
	Instructions        []string  `json:"instructions"`
	Calories            float64   `json:"calories"`
	Nutrition           Nutrition `json:"nutritionalInfo"`
	MotivationalComment string    `json:"motivationalComment"`
}

// Summary renders recipes as the list of family favourites used in prompts.
func Summary(recipes []UserRecipe) string {
	if len(recipes) == 0 {
		return "Ninguna."
	}
	parts := make([]string, len(recipes))
	for i, r := range recipes {
		parts[i] = r.Name + " (Ingredientes: " + r.Ingredients + ")"
	}
	return strings.Join(parts, "; ")
}
