// Package recipe defines the dietary and skill vocabulary, the static meal
// template catalog, and the recipe record returned by external sources.
package recipe

import (
	"fmt"
	"strings"
)

// Diet is a dietary preference. DietNone means no restriction.
type Diet string

const (
	DietNone       Diet = "none"
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
	DietKeto       Diet = "keto"
	DietGlutenFree Diet = "gluten-free"
)

// AllDiets lists every diet in display order.
var AllDiets = []Diet{DietNone, DietVegetarian, DietVegan, DietKeto, DietGlutenFree}

var dietDisplay = map[Diet]string{
	DietNone:       "No Restrictions",
	DietVegetarian: "Vegetarian",
	DietVegan:      "Vegan",
	DietKeto:       "Keto",
	DietGlutenFree: "Gluten-Free",
}

// Display returns the human readable label.
func (d Diet) Display() string {
	if s, ok := dietDisplay[d]; ok {
		return s
	}
	return string(d)
}

// Valid reports whether d is one of the known diets.
func (d Diet) Valid() bool {
	_, ok := dietDisplay[d]
	return ok
}

// ParseDiet accepts either the canonical value or the display label,
// case-insensitively.
func ParseDiet(s string) (Diet, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllDiets {
		if s == string(d) || s == strings.ToLower(d.Display()) {
			return d, nil
		}
	}
	switch s {
	case "glutenfree", "gluten free":
		return DietGlutenFree, nil
	case "", "no restriction":
		return DietNone, nil
	}
	return "", fmt.Errorf("unknown dietary preference %q", s)
}

// Skill is a cooking-skill level, ordered easy < intermediate < advanced.
type Skill string

const (
	SkillEasy         Skill = "easy"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

// AllSkills lists every skill level in ascending order.
var AllSkills = []Skill{SkillEasy, SkillIntermediate, SkillAdvanced}

// Rank returns the position of s in the difficulty order, or -1 if unknown.
func (s Skill) Rank() int {
	for i, v := range AllSkills {
		if v == s {
			return i
		}
	}
	return -1
}

// Admits reports whether a cook at level s may be given a template of the
// given difficulty. Higher levels admit everything below them.
func (s Skill) Admits(difficulty Skill) bool {
	r := difficulty.Rank()
	return r >= 0 && r <= s.Rank()
}

// Display returns the capitalized label.
func (s Skill) Display() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Valid reports whether s is one of the known levels.
func (s Skill) Valid() bool { return s.Rank() >= 0 }

// ParseSkill parses a skill level case-insensitively.
func ParseSkill(s string) (Skill, error) {
	v := Skill(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown cooking skill level %q", s)
	}
	return v, nil
}

// Preferences is what the user picked during onboarding or in settings.
type Preferences struct {
	Diet      Diet  `json:"dietaryPreference"`
	Skill     Skill `json:"cookingSkillLevel"`
	Onboarded bool  `json:"onboarded"`
}

// DefaultPreferences is the first-run value: no restriction, easy recipes.
func DefaultPreferences() Preferences {
	return Preferences{Diet: DietNone, Skill: SkillEasy}
}

// IsDefault reports whether diet and skill still hold their first-run values.
func (p Preferences) IsDefault() bool {
	return p.Diet == DietNone && p.Skill == SkillEasy
}

// Template is a catalog entry not yet bound to a day.
type Template struct {
	Name         string
	Description  string
	Ingredients  []string
	Instructions []string
	PrepMinutes  int
	CookMinutes  int
	Difficulty   Skill
	Tags         []Diet
}

// HasTag reports whether the template is tagged with d.
func (t Template) HasTag(d Diet) bool {
	for _, tag := range t.Tags {
		if tag == d {
			return true
		}
	}
	return false
}

// TotalMinutes is prep plus cook time.
func (t Template) TotalMinutes() int {
	return t.PrepMinutes + t.CookMinutes
}

// Recipe is a structured record returned by an external recipe source.
type Recipe struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Instructions string   `json:"instructions"`
	ImageURL     string   `json:"image_url"`
	Ingredients  []string `json:"ingredients"`
	Category     string   `json:"category,omitempty"`
	Area         string   `json:"area,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	VideoURL     string   `json:"video_url,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
}

// DisplayIngredients returns the ingredient lines with empty entries dropped.
func (r Recipe) DisplayIngredients() []string {
	out := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing) != "" {
			out = append(out, ing)
		}
	}
	return out
}
