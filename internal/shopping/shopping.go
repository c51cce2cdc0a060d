// Package shopping models the categorized shopping list of a menu.
package shopping

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultCategory groups items without a supermarket category.
const DefaultCategory = "Otros"

// Categories are the supermarket sections requested from generation.
var Categories = []string{
	"Frutas y Verduras", "Carnicería", "Pescadería", "Lácteos y Huevos", "Panadería",
	"Congelados", "Bebidas", "Despensa", "Especias y Condimentos",
}

// Quantity is kept as text so ranges like "1-2" survive. It decodes from
// either a JSON string or a JSON number.
type Quantity string

func (q *Quantity) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*q = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = Quantity(strings.TrimSpace(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("quantity must be a string or a number: %w", err)
	}
	*q = Quantity(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Item is one consolidated ingredient. Checked is client state only.
type Item struct {
	Ingredient string   `json:"ingredient"`
	Quantity   Quantity `json:"quantity"`
	Unit       string   `json:"unit"`
	Category   string   `json:"category"`
	Checked    bool     `json:"checked"`
}

// Group is a supermarket section with its items.
type Group struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// GroupByCategory groups items by category, sorted alphabetically.
// onlyUnchecked drops the items already ticked.
func GroupByCategory(items []Item, onlyUnchecked bool) []Group {
	byCategory := map[string][]Item{}
	for _, it := range items {
		if onlyUnchecked && it.Checked {
			continue
		}
		cat := strings.TrimSpace(it.Category)
		if cat == "" {
			cat = DefaultCategory
		}
		byCategory[cat] = append(byCategory[cat], it)
	}

	groups := make([]Group, 0, len(byCategory))
	for cat, its := range byCategory {
		groups = append(groups, Group{Category: cat, Items: its})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

// Toggle returns a copy of items with the checked flag of items[index]
// flipped.
func Toggle(items []Item, index int) ([]Item, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("item %d out of range", index)
	}
	out := make([]Item, len(items))
	copy(out, items)
	out[index].Checked = !out[index].Checked
	return out, nil
}

// Remaining counts the unchecked items.
func Remaining(items []Item) int {
	n := 0
	for _, it := range items {
		if !it.Checked {
			n++
		}
	}
	return n
}
