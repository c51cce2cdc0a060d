package telegram

import (
	"fmt"
	"strings"

	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/metrics"
	"comida-a-casa/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatPlanMarkdown(plan menu.Plan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Tu menú*\n\n")

	for _, key := range plan.Days() {
		day := plan[key]
		sb.WriteString(fmt.Sprintf("*%s*\n", escape(dates.MustFormatDisplay(key))))
		if day.Breakfast != nil {
			sb.WriteString(fmt.Sprintf("☕ %s: %s\n", menu.BreakfastSlot.Label(), escape(day.Breakfast.Name)))
		}
		sb.WriteString(fmt.Sprintf("🍲 %s: %s\n", menu.LunchSlot.Label(), escape(day.Lunch.Name)))
		sb.WriteString(fmt.Sprintf("🌙 %s: %s\n\n", menu.DinnerSlot.Label(), escape(day.Dinner.Name)))
	}

	sb.WriteString("_/compra para la lista de la compra, /guardar para guardar el menú._")
	return sb.String()
}

func formatShoppingMarkdown(items []shopping.Item) string {
	groups := shopping.GroupByCategory(items, true)
	if len(groups) == 0 {
		return "🛒 ¡Ya tienes todo lo necesario!"
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Lista de la compra*\n")
	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", escape(g.Category)))
		for _, it := range g.Items {
			amount := strings.TrimSpace(fmt.Sprintf("%s %s", it.Quantity, it.Unit))
			if amount == "" {
				sb.WriteString(fmt.Sprintf("• %s\n", escape(it.Ingredient)))
				continue
			}
			sb.WriteString(fmt.Sprintf("• %s: %s\n", escape(it.Ingredient), escape(amount)))
		}
	}
	return sb.String()
}

func formatStatusMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Uso y estado*\n\n")

	sb.WriteString("🗓 *Generaciones recientes*\n")
	if len(usage) == 0 {
		sb.WriteString("_Sin datos todavía_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d llamadas, %d fallidas)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures))
	}

	sb.WriteString("\n🧠 *Sistema*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB\n", health.AllocMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))

	sb.WriteString("\n🗄 *Base de datos*\n")
	sb.WriteString(fmt.Sprintf("• Tamaño: %s (%d páginas libres)\n", metrics.HumanBytes(health.DatabaseBytes), health.FreePages))
	sb.WriteString(fmt.Sprintf("• Usuarios: %d, perfiles: %d\n", health.Users, health.Profiles))
	sb.WriteString(fmt.Sprintf("• Recetas: %d, menús guardados: %d\n", health.Recipes, health.SavedMenus))
	return sb.String()
}
