package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"foodflow/internal/app"
	"foodflow/internal/metrics"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/shopping"
)

const helpText = `*FoodFlow commands*
/plan - show this week's plan
/regenerate - draw a new plan
/fetch - build a plan from online recipes
/random - one random recipe
/groceries - grocery list
/diet <diet> - change your diet
/skill <level> - change your cooking skill
/reset - clear all your data
/stats - generation stats`

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape makes user or third-party text safe for legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func welcomeText() string {
	var sb strings.Builder
	sb.WriteString("👋 *Welcome to FoodFlow!*\n\n")
	sb.WriteString("Tell me how you eat and how you cook:\n")
	sb.WriteString("`/start <diet> <skill>`, e.g. `/start vegetarian easy`\n\n")
	sb.WriteString(dietOptions())
	sb.WriteString("\n\n")
	sb.WriteString(skillOptions())
	return sb.String()
}

func dietOptions() string {
	names := make([]string, 0, len(recipe.AllDiets))
	for _, d := range recipe.AllDiets {
		names = append(names, "`"+string(d)+"`")
	}
	return "*Diets:* " + strings.Join(names, ", ")
}

func skillOptions() string {
	names := make([]string, 0, len(recipe.AllSkills))
	for _, s := range recipe.AllSkills {
		names = append(names, "`"+string(s)+"`")
	}
	return "*Skill levels:* " + strings.Join(names, ", ")
}

func formatPreferences(p recipe.Preferences) string {
	return fmt.Sprintf("🥗 *Diet:* %s\n🔪 *Skill:* %s", p.Diet.Display(), p.Skill.Display())
}

func formatError(title string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%v\n```", title, safeErr)
}

// formatResult renders a freshly generated plan with a note when the run
// was widened or came back short.
func formatResult(res app.Result) string {
	var sb strings.Builder
	if res.Fallback {
		sb.WriteString("⚠️ _No recipes match your diet at your skill level, so the plan includes other dishes._\n\n")
	}
	if res.Meta.Degraded() {
		fmt.Fprintf(&sb, "⚠️ _Only %d of %d days could be filled._\n\n", res.Meta.Produced, res.Meta.Requested)
	}
	sb.WriteString(formatPlanMarkdown(res.Plan))
	return sb.String()
}

func formatPlanMarkdown(plan *planner.WeeklyMealPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Weekly Meal Plan*")
	if plan != nil && !plan.WeekStart.IsZero() {
		fmt.Fprintf(&sb, " (week of %s)", plan.WeekStart.Format("Jan 2"))
	}
	sb.WriteString("\n\n")

	if plan == nil || len(plan.Meals) == 0 {
		sb.WriteString("_No meals planned._\n")
		return sb.String()
	}

	total := 0
	for _, m := range plan.Meals {
		fmt.Fprintf(&sb, "*%s*: %s", m.DayName(), escape(m.Name))
		if mins := m.TotalMinutes(); mins > 0 {
			fmt.Fprintf(&sb, " (%d mins)", mins)
			total += mins
		}
		sb.WriteString("\n")
		if m.Description != "" {
			fmt.Fprintf(&sb, "_%s_\n", escape(m.Description))
		}
		sb.WriteString("\n")
	}
	if total > 0 {
		fmt.Fprintf(&sb, "⏱ *Total Cooking:* %d mins\n", total)
	}
	return sb.String()
}

func formatGroceries(list *shopping.List) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *Grocery List* (%d of %d left)\n", list.Remaining(), list.Len())
	for _, section := range list.Sections() {
		fmt.Fprintf(&sb, "\n*%s*\n", escape(string(section.Category)))
		for _, it := range section.Items {
			mark := "⬜"
			if it.Checked {
				mark = "✅"
			}
			fmt.Fprintf(&sb, "%s %s\n", mark, escape(it.Normalized))
		}
	}
	return sb.String()
}

// planTag is the short plan reference carried in callback data, which
// Telegram caps at 64 bytes.
func planTag(planID string) string {
	if len(planID) > 8 {
		return planID[:8]
	}
	return planID
}

// groceryKeyboard has one toggle button per item, indexed in Items order.
// Callback data reads "chk|<plan tag>|<index>".
func groceryKeyboard(list *shopping.List, planID string) tgbotapi.InlineKeyboardMarkup {
	items := list.Items()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for i, it := range items {
		label := "⬜ " + it.Normalized
		if it.Checked {
			label = "✅ " + it.Normalized
		}
		data := fmt.Sprintf("%s|%s|%d", toggleAction, planTag(planID), i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatRecipe(r *recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎲 *%s*\n", escape(r.Name))
	if r.Area != "" || r.Category != "" {
		fmt.Fprintf(&sb, "_%s_\n", escape(strings.TrimSpace(r.Area+" "+r.Category)))
	}

	if ings := r.DisplayIngredients(); len(ings) > 0 {
		sb.WriteString("\n*Ingredients*\n")
		for _, ing := range ings {
			fmt.Fprintf(&sb, "• %s\n", escape(ing))
		}
	}
	meal := planner.MealFromRecipe(*r, 1)
	if len(meal.Instructions) > 0 {
		sb.WriteString("\n*Steps*\n")
		for i, step := range meal.Instructions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, escape(step))
		}
	}
	if r.SourceURL != "" {
		fmt.Fprintf(&sb, "\n%s\n", r.SourceURL)
	}
	return sb.String()
}

func formatStats(summary []metrics.DailySummary, health metrics.Health) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Plans*\n")
	if len(summary) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range summary {
		fmt.Fprintf(&sb, "• *%s*: %d plans (%d fetched, %d fallbacks, %d failed fetches)\n",
			d.Date, d.Runs, d.FetchRuns, d.Fallbacks, d.FailedFetches)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}
