package menu

import (
	"fmt"
	"strings"

	"comida-a-casa/internal/recipe"
)

// heavyCategories are the categories that should not repeat within a day.
var heavyCategories = map[recipe.Category]bool{
	recipe.Meat:    true,
	recipe.Fish:    true,
	recipe.Legumes: true,
	recipe.Pasta:   true,
	recipe.Rice:    true,
}

// ConfirmSwap returns a new plan where only plan[date].mealType is newMeal,
// together with a balance advisory (possibly empty). plan is not modified.
func ConfirmSwap(plan Plan, date string, mealType MealType, newMeal MealDetail) (Plan, string, error) {
	day, ok := plan[date]
	if !ok {
		return nil, "", fmt.Errorf("date %s is not part of the menu", date)
	}

	advisory := BalanceAdvisory(day, mealType, newMeal)

	switch mealType {
	case BreakfastSlot:
		m := newMeal
		day.Breakfast = &m
	case LunchSlot:
		day.Lunch = newMeal
	case DinnerSlot:
		day.Dinner = newMeal
	default:
		return nil, "", fmt.Errorf("unknown meal type %q", mealType)
	}

	// Other days are shared by value with plan.
	next := make(Plan, len(plan))
	for k, v := range plan {
		next[k] = v
	}
	next[date] = day
	return next, advisory, nil
}

// BalanceAdvisory suggests more variety when newMeal repeats the heavy
// category of the other main meal of the day. It never blocks a swap.
func BalanceAdvisory(day DayMeals, mealType MealType, newMeal MealDetail) string {
	if !heavyCategories[newMeal.Category] {
		return ""
	}

	other, otherLabel := day.Lunch, "comida"
	if mealType == LunchSlot {
		other, otherLabel = day.Dinner, "cena"
	}
	if other.Category != newMeal.Category {
		return ""
	}

	return fmt.Sprintf("💡 Sugerencia: Ya tienes un plato de %s para la %s. Para un menú más variado, podrías considerar otra opción.",
		strings.ToLower(string(other.Category)), otherLabel)
}

// MealFromRecipe places a user recipe into a slot.
func MealFromRecipe(r recipe.UserRecipe) MealDetail {
	return MealDetail{Name: r.Name, Category: r.Category}
}
