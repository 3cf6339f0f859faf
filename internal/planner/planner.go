package planner

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodflow/internal/recipe"
)

// ErrEmptyCandidateSet is returned when no template survives the diet and
// skill filters. It points at a gap in catalog coverage.
var ErrEmptyCandidateSet = errors.New("no meal templates match the preferences")

// EmptyCandidateSetError carries the preferences that produced no candidates.
type EmptyCandidateSetError struct {
	Diet  recipe.Diet
	Skill recipe.Skill
}

func (e *EmptyCandidateSetError) Error() string {
	return fmt.Sprintf("%s: diet=%s skill=%s", ErrEmptyCandidateSet, e.Diet, e.Skill)
}

func (e *EmptyCandidateSetError) Unwrap() error { return ErrEmptyCandidateSet }

// Generator builds weekly plans from the template catalog. It does no I/O
// and is safe for concurrent use.
type Generator struct {
	catalog recipe.Catalog
	now     func() time.Time

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand fixes the random source, making generation reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithClock overrides the clock used to stamp the week start.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator over catalog.
func NewGenerator(catalog recipe.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Catalog returns the catalog the generator draws from.
func (g *Generator) Catalog() recipe.Catalog {
	return g.catalog
}

// Candidates returns the templates matching prefs: the diet subset first
// (DietNone means the whole catalog), then the cumulative skill filter.
func (g *Generator) Candidates(prefs recipe.Preferences) ([]recipe.Template, error) {
	candidates := g.catalog.WithDiet(prefs.Diet).ForSkill(prefs.Skill)
	if len(candidates) == 0 {
		return nil, &EmptyCandidateSetError{Diet: prefs.Diet, Skill: prefs.Skill}
	}
	return candidates, nil
}

// Generate builds a seven-day plan for prefs.
func (g *Generator) Generate(prefs recipe.Preferences) (*WeeklyMealPlan, error) {
	candidates, err := g.Candidates(prefs)
	if err != nil {
		return nil, err
	}
	return g.GenerateFrom(candidates)
}

// GenerateFrom builds a seven-day plan drawing from an explicit candidate
// set. Each day is an independent uniform draw, so a template may repeat.
func (g *Generator) GenerateFrom(candidates []recipe.Template) (*WeeklyMealPlan, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidateSet
	}

	meals := make([]Meal, 0, DaysPerWeek)
	g.mu.Lock()
	for day := 1; day <= DaysPerWeek; day++ {
		t := candidates[g.rng.IntN(len(candidates))]
		meals = append(meals, NewMeal(t, day))
	}
	g.mu.Unlock()

	return &WeeklyMealPlan{
		ID:        uuid.NewString(),
		WeekStart: GetWeekStart(g.now()),
		Meals:     meals,
	}, nil
}
