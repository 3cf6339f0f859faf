package shopping

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"foodflow/internal/planner"
	"foodflow/internal/recipe"
)

// ErrUnknownItem is returned when toggling text that is not on the list.
var ErrUnknownItem = errors.New("item is not on the grocery list")

// List is a grocery list with per-item checked state. It is safe for
// concurrent use.
type List struct {
	mu       sync.RWMutex
	sections map[Category][]string
	raw      map[string]string // normalized -> first raw spelling seen
	checked  map[string]bool
}

// Aggregate builds a list from raw ingredient text. Entries are trimmed,
// empty ones dropped, and duplicates removed by exact (case-sensitive)
// match.
func Aggregate(ingredients []string) *List {
	l := &List{
		sections: make(map[Category][]string, len(Categories)),
		raw:      make(map[string]string),
		checked:  make(map[string]bool),
	}

	seen := make(map[string]struct{})
	for _, raw := range ingredients {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		cat := Categorize(text)
		l.sections[cat] = append(l.sections[cat], text)
		l.raw[text] = raw
		l.checked[text] = false
	}

	for _, items := range l.sections {
		sort.Strings(items)
	}
	return l
}

// FromPlan aggregates every ingredient of every meal in plan. A nil or
// empty plan gives an empty list.
func FromPlan(plan *planner.WeeklyMealPlan) *List {
	return Aggregate(plan.Ingredients())
}

// FromRecipes aggregates externally supplied recipe records.
func FromRecipes(recipes []recipe.Recipe) *List {
	var all []string
	for _, r := range recipes {
		all = append(all, r.DisplayIngredients()...)
	}
	return Aggregate(all)
}

// Len returns the number of unique items.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.checked)
}

// Remaining returns how many items are still unchecked.
func (l *List) Remaining() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, c := range l.checked {
		if !c {
			n++
		}
	}
	return n
}

// ByCategory returns every category, with an empty slice where nothing
// matched.
func (l *List) ByCategory() map[Category][]Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[Category][]Item, len(Categories))
	for _, cat := range Categories {
		out[cat] = l.itemsLocked(cat)
	}
	return out
}

// Sections returns the non-empty categories in display order.
func (l *List) Sections() []Section {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Section
	for _, cat := range Categories {
		if items := l.itemsLocked(cat); len(items) > 0 {
			out = append(out, Section{Category: cat, Items: items})
		}
	}
	return out
}

// Items returns every item, category by category.
func (l *List) Items() []Item {
	var out []Item
	for _, s := range l.Sections() {
		out = append(out, s.Items...)
	}
	return out
}

func (l *List) itemsLocked(cat Category) []Item {
	texts := l.sections[cat]
	items := make([]Item, 0, len(texts))
	for _, text := range texts {
		items = append(items, Item{
			Raw:        l.raw[text],
			Normalized: text,
			Category:   cat,
			Checked:    l.checked[text],
		})
	}
	return items
}

// Toggle flips the checked state of the item with exactly this text and
// returns the new state.
func (l *List) Toggle(text string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.checked[text]
	if !ok {
		return false, ErrUnknownItem
	}
	l.checked[text] = !state
	return !state, nil
}

// IsChecked reports the checked state of text. Unknown items are unchecked.
func (l *List) IsChecked(text string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.checked[text]
}
