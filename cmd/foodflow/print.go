package main

import (
	"fmt"
	"io"

	"foodflow/internal/app"
	"foodflow/internal/metrics"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/shopping"
)

func printPreferences(w io.Writer, p recipe.Preferences, onboarded bool) {
	fmt.Fprintf(w, "Diet:  %s\n", p.Diet.Display())
	fmt.Fprintf(w, "Skill: %s\n", p.Skill.Display())
	if !onboarded {
		fmt.Fprintln(w, "(onboarding not completed)")
	}
}

func printResult(w io.Writer, res app.Result) {
	if res.Fallback {
		fmt.Fprintf(w, "Note: %v; the plan includes dishes outside your preferences.\n", res.Err)
	}
	if res.Meta.Degraded() {
		fmt.Fprintf(w, "Note: only %d of %d days could be filled.\n", res.Meta.Produced, res.Meta.Requested)
	}
	printPlan(w, res.Plan)
}

func printPlan(w io.Writer, plan *planner.WeeklyMealPlan) {
	fmt.Fprintf(w, "\n=== WEEKLY MEAL PLAN (week of %s) ===\n", plan.WeekStart.Format("2006-01-02"))
	for _, m := range plan.Meals {
		fmt.Fprintf(w, "%-10s: %s", m.DayName(), m.Name)
		if mins := m.TotalMinutes(); mins > 0 {
			fmt.Fprintf(w, " (%d min, %s)", mins, m.Difficulty.Display())
		}
		fmt.Fprintln(w)
	}
}

func printGroceries(w io.Writer, list *shopping.List) {
	fmt.Fprintln(w, "\n=== GROCERY LIST ===")
	if list.Len() == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for _, s := range list.Sections() {
		fmt.Fprintf(w, "\n%s\n", s.Category)
		for _, it := range s.Items {
			box := "[ ]"
			if it.Checked {
				box = "[x]"
			}
			fmt.Fprintf(w, "  %s %s\n", box, it.Normalized)
		}
	}
}

func printSummary(w io.Writer, summary []metrics.DailySummary) {
	if len(summary) == 0 {
		fmt.Fprintln(w, "No generation runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-10s %5s %6s %9s %6s %9s\n", "DATE", "RUNS", "FETCH", "FALLBACK", "FAILED", "AVG MS")
	for _, d := range summary {
		fmt.Fprintf(w, "%-10s %5d %6d %9d %6d %9.0f\n", d.Date, d.Runs, d.FetchRuns, d.Fallbacks, d.FailedFetches, d.AvgLatencyMS)
	}
}
