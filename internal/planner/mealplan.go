package planner

import (
	"time"

	"foodflow/internal/recipe"
)

// DaysPerWeek is the number of meals a complete plan holds.
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Meal is a template (or fetched recipe) bound to a day of the week.
type Meal struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []string      `json:"instructions"`
	PrepMinutes  int           `json:"prepTime"`
	CookMinutes  int           `json:"cookTime"`
	Difficulty   recipe.Skill  `json:"difficulty"`
	Tags         []recipe.Diet `json:"dietaryTags"`
	DayOfWeek    int           `json:"dayOfWeek"` // 1 = Monday ... 7 = Sunday

	// Only set for meals from an external recipe source.
	SourceID  string `json:"sourceId,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Category  string `json:"category,omitempty"`
	Area      string `json:"area,omitempty"`
	VideoURL  string `json:"videoUrl,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// DayName returns the weekday name for the meal's DayOfWeek.
func (m Meal) DayName() string {
	if m.DayOfWeek < 1 || m.DayOfWeek > DaysPerWeek {
		return ""
	}
	return dayNames[m.DayOfWeek-1]
}

// TotalMinutes is prep plus cook time.
func (m Meal) TotalMinutes() int {
	return m.PrepMinutes + m.CookMinutes
}

// HasTag reports whether the meal carries diet tag d.
func (m Meal) HasTag(d recipe.Diet) bool {
	for _, t := range m.Tags {
		if t == d {
			return true
		}
	}
	return false
}

// NewMeal instantiates a template for the given day.
func NewMeal(t recipe.Template, day int) Meal {
	return Meal{
		Name:         t.Name,
		Description:  t.Description,
		Ingredients:  append([]string(nil), t.Ingredients...),
		Instructions: append([]string(nil), t.Instructions...),
		PrepMinutes:  t.PrepMinutes,
		CookMinutes:  t.CookMinutes,
		Difficulty:   t.Difficulty,
		Tags:         append([]recipe.Diet(nil), t.Tags...),
		DayOfWeek:    day,
	}
}

// Clone returns a copy of m that shares no slices with it.
func (m Meal) Clone() Meal {
	m.Ingredients = append([]string(nil), m.Ingredients...)
	m.Instructions = append([]string(nil), m.Instructions...)
	m.Tags = append([]recipe.Diet(nil), m.Tags...)
	return m
}

// WeeklyMealPlan is the set of meals for one calendar week. A plan is
// replaced as a whole, never edited in place.
type WeeklyMealPlan struct {
	ID        string    `json:"id"`
	WeekStart time.Time `json:"weekStartDate"`
	Meals     []Meal    `json:"meals"`
}

// Clone returns a deep copy of p. A nil plan clones to nil.
func (p *WeeklyMealPlan) Clone() *WeeklyMealPlan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Meals = make([]Meal, len(p.Meals))
	for i, m := range p.Meals {
		cp.Meals[i] = m.Clone()
	}
	return &cp
}

// Complete reports whether every day of the week has a meal.
func (p *WeeklyMealPlan) Complete() bool {
	return p != nil && len(p.Meals) == DaysPerWeek
}

// MealFor returns the meal planned for day, if any.
func (p *WeeklyMealPlan) MealFor(day int) (Meal, bool) {
	if p == nil {
		return Meal{}, false
	}
	for _, m := range p.Meals {
		if m.DayOfWeek == day {
			return m, true
		}
	}
	return Meal{}, false
}

// Ingredients flattens every meal's ingredient list in day order.
func (p *WeeklyMealPlan) Ingredients() []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, m := range p.Meals {
		out = append(out, m.Ingredients...)
	}
	return out
}

// GetWeekStart returns midnight on the Monday of t's week.
func GetWeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
