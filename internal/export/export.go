// Package export renders print-friendly HTML for menus and shopping lists.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/shopping"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// maxColumns is the widest grid that fits a landscape page.
const maxColumns = 7

type printMeal struct {
	Label string
	Name  string
}

type printDay struct {
	Title string
	Meals []printMeal
}

type menuPage struct {
	Columns int
	Days    []printDay
}

// MenuHTML renders plan as a landscape grid, one card per day.
func MenuHTML(plan menu.Plan) ([]byte, error) {
	days := plan.Days()
	if len(days) == 0 {
		return nil, fmt.Errorf("cannot print an empty menu")
	}

	page := menuPage{Columns: min(len(days), maxColumns)}
	for _, key := range days {
		meals := plan[key]
		day := printDay{Title: dates.MustFormatDisplay(key)}
		for _, slot := range []menu.MealType{menu.BreakfastSlot, menu.LunchSlot, menu.DinnerSlot} {
			if m, ok := meals.Slot(slot); ok {
				day.Meals = append(day.Meals, printMeal{Label: strings.ToUpper(slot.Label()), Name: m.Name})
			}
		}
		page.Days = append(page.Days, day)
	}
	return render("menu.html", page)
}

// ShoppingListHTML renders the unchecked items grouped by category.
func ShoppingListHTML(items []shopping.Item) ([]byte, error) {
	return render("shopping_list.html", shopping.GroupByCategory(items, true))
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
