package menu

import (
	"testing"
	"time"

	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekPlan(t *testing.T) Plan {
	t.Helper()
	plan := Plan{}
	for i, day := range dates.ExpandRange(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), 7) {
		plan[day] = DayMeals{
			Breakfast: &MealDetail{Name: "Tostadas", Category: recipe.Breakfast},
			Lunch:     MealDetail{Name: "Lentejas " + day, Category: recipe.Legumes},
			Dinner:    MealDetail{Name: "Crema " + day, Category: recipe.Soups},
		}
		if i%2 == 1 {
			plan[day] = DayMeals{
				Lunch:  MealDetail{Name: "Paella " + day, Category: recipe.Rice},
				Dinner: MealDetail{Name: "Merluza " + day, Category: recipe.Fish},
			}
		}
	}
	return plan
}

func TestPlanDaysAndDishes(t *testing.T) {
	plan := Plan{
		"2025-09-02": {Lunch: MealDetail{Name: "B"}, Dinner: MealDetail{Name: "C"}},
		"2025-09-01": {Breakfast: &MealDetail{Name: "Z"}, Lunch: MealDetail{Name: "A"}, Dinner: MealDetail{Name: "Y"}},
	}
	assert.Equal(t, []string{"2025-09-01", "2025-09-02"}, plan.Days())
	assert.Equal(t, []string{"Z", "A", "Y", "B", "C"}, plan.Dishes())
	assert.True(t, plan.HasBreakfasts())
	assert.True(t, plan.Contiguous())

	plan["2025-09-05"] = DayMeals{}
	assert.False(t, plan.Contiguous())
}

func TestDaySlot(t *testing.T) {
	day := DayMeals{Lunch: MealDetail{Name: "A"}, Dinner: MealDetail{Name: "B"}}
	_, ok := day.Slot(BreakfastSlot)
	assert.False(t, ok)
	m, ok := day.Slot(DinnerSlot)
	assert.True(t, ok)
	assert.Equal(t, "B", m.Name)
}

func TestParseMealType(t *testing.T) {
	m, err := ParseMealType("lunch")
	require.NoError(t, err)
	assert.Equal(t, LunchSlot, m)
	assert.Equal(t, "Comida", m.Label())

	_, err = ParseMealType("merienda")
	assert.Error(t, err)
}

func TestNewSavedMenu(t *testing.T) {
	plan := weekPlan(t)
	saved, err := NewSavedMenu(plan)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", saved.StartDate)
	assert.Equal(t, "2025-09-07", saved.EndDate)
	assert.Equal(t, plan, saved.Plan)

	saved.Plan["2025-09-01"].Breakfast.Name = "Otro"
	assert.Equal(t, "Tostadas", plan["2025-09-01"].Breakfast.Name)

	_, err = NewSavedMenu(Plan{})
	assert.Error(t, err)
}
