// Package menu holds generated menu plans, the single-meal swap and saved
// menu snapshots.
package menu

import (
	"fmt"
	"sort"
	"time"

	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/recipe"
)

// MealType is one slot of a day.
type MealType string

const (
	BreakfastSlot MealType = "breakfast"
	LunchSlot     MealType = "lunch"
	DinnerSlot    MealType = "dinner"
)

// ParseMealType validates a slot name.
func ParseMealType(s string) (MealType, error) {
	switch MealType(s) {
	case BreakfastSlot, LunchSlot, DinnerSlot:
		return MealType(s), nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// Label is the Spanish row label used in print exports.
func (m MealType) Label() string {
	switch m {
	case BreakfastSlot:
		return "Desayuno"
	case LunchSlot:
		return "Comida"
	default:
		return "Cena"
	}
}

// MealDetail is one dish placed in a slot.
type MealDetail struct {
	Name     string          `json:"name"`
	Category recipe.Category `json:"category"`
}

// DayMeals are the slots of one day. Breakfast is optional.
type DayMeals struct {
	Breakfast *MealDetail `json:"breakfast,omitempty"`
	Lunch     MealDetail  `json:"lunch"`
	Dinner    MealDetail  `json:"dinner"`
}

// Slot returns the meal in slot m, if present.
func (d DayMeals) Slot(m MealType) (MealDetail, bool) {
	switch m {
	case BreakfastSlot:
		if d.Breakfast == nil {
			return MealDetail{}, false
		}
		return *d.Breakfast, true
	case LunchSlot:
		return d.Lunch, true
	case DinnerSlot:
		return d.Dinner, true
	}
	return MealDetail{}, false
}

// Plan maps a calendar-day key to that day's meals.
type Plan map[string]DayMeals

// Days returns the plan keys in ascending order.
func (p Plan) Days() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dishes returns every dish name in day order, breakfast first.
func (p Plan) Dishes() []string {
	var names []string
	for _, day := range p.Days() {
		meals := p[day]
		if meals.Breakfast != nil {
			names = append(names, meals.Breakfast.Name)
		}
		names = append(names, meals.Lunch.Name, meals.Dinner.Name)
	}
	return names
}

// HasBreakfasts reports whether any day carries a breakfast.
func (p Plan) HasBreakfasts() bool {
	for _, meals := range p {
		if meals.Breakfast != nil {
			return true
		}
	}
	return false
}

// Contiguous reports whether the keys form one gapless date range.
func (p Plan) Contiguous() bool {
	days := p.Days()
	if len(days) == 0 {
		return true
	}
	start, err := time.Parse(dates.KeyLayout, days[0])
	if err != nil {
		return false
	}
	expected := dates.ExpandRange(start, len(days))
	for i := range days {
		if days[i] != expected[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy sharing no mutable state with p.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for k, v := range p {
		if v.Breakfast != nil {
			b := *v.Breakfast
			v.Breakfast = &b
		}
		out[k] = v
	}
	return out
}

// SavedMenu is an immutable snapshot of a plan.
type SavedMenu struct {
	ID        string    `json:"id"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Plan      Plan      `json:"menu"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSavedMenu derives the date range from plan. An empty plan is rejected.
func NewSavedMenu(plan Plan) (SavedMenu, error) {
	days := plan.Days()
	if len(days) == 0 {
		return SavedMenu{}, fmt.Errorf("cannot save an empty menu")
	}
	return SavedMenu{
		StartDate: days[0],
		EndDate:   days[len(days)-1],
		Plan:      plan.Clone(),
	}, nil
}
