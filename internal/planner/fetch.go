package planner

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"foodflow/internal/recipe"
	"foodflow/internal/shared"
)

// RecipeSource returns one random recipe per call.
type RecipeSource interface {
	RandomRecipe(ctx context.Context) (*recipe.Recipe, error)
}

// FetchGenerator builds a plan by asking an external source for one recipe
// per day. Days are fetched concurrently and joined before the plan is
// returned; a failed day is left out rather than failing the week.
type FetchGenerator struct {
	source      RecipeSource
	concurrency int
	now         func() time.Time
	log         logrus.FieldLogger
}

// NewFetchGenerator creates a FetchGenerator. concurrency caps the number of
// in-flight fetches; values below 1 mean one fetch per day at once.
func NewFetchGenerator(source RecipeSource, concurrency int, log logrus.FieldLogger) *FetchGenerator {
	if concurrency < 1 {
		concurrency = DaysPerWeek
	}
	return &FetchGenerator{
		source:      source,
		concurrency: concurrency,
		now:         time.Now,
		log:         log,
	}
}

// Generate fetches all seven days and returns whatever succeeded, in day
// order. The plan may hold fewer than seven meals; RunMeta.Failed says how
// many days were dropped.
func (f *FetchGenerator) Generate(ctx context.Context) (*WeeklyMealPlan, shared.RunMeta) {
	start := time.Now()

	var slots [DaysPerWeek]*Meal
	var failed [DaysPerWeek]bool

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i := 0; i < DaysPerWeek; i++ {
		day := i + 1
		g.Go(func() error {
			rec, err := f.source.RandomRecipe(ctx)
			if err != nil {
				f.log.WithFields(logrus.Fields{"day": day, "error": err}).Warn("recipe fetch failed, leaving day empty")
				failed[day-1] = true
				return nil
			}
			meal := MealFromRecipe(*rec, day)
			slots[day-1] = &meal
			return nil
		})
	}
	// Goroutines never return errors; Wait is only the join barrier.
	_ = g.Wait()

	plan := &WeeklyMealPlan{
		ID:        uuid.NewString(),
		WeekStart: GetWeekStart(f.now()),
		Meals:     make([]Meal, 0, DaysPerWeek),
	}
	meta := shared.RunMeta{Mode: shared.ModeFetch, Requested: DaysPerWeek}
	for i := range slots {
		if slots[i] != nil {
			plan.Meals = append(plan.Meals, *slots[i])
		}
		if failed[i] {
			meta.Failed++
		}
	}
	meta.Produced = len(plan.Meals)
	meta.Latency = time.Since(start)

	return plan, meta
}

var stepSplit = regexp.MustCompile(`(\r?\n\s*){2,}|\r\n`)

// MealFromRecipe converts a fetched recipe into a Meal for day. External
// recipes carry no difficulty or timings, so they count as easy with zero
// minutes. Tags that name a known diet become diet tags.
func MealFromRecipe(r recipe.Recipe, day int) Meal {
	m := Meal{
		Name:        r.Name,
		Description: describe(r),
		Ingredients: r.DisplayIngredients(),
		Difficulty:  recipe.SkillEasy,
		DayOfWeek:   day,
		SourceID:    r.ID,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Area:        r.Area,
		VideoURL:    r.VideoURL,
		SourceURL:   r.SourceURL,
	}

	for _, step := range stepSplit.Split(r.Instructions, -1) {
		if step = strings.TrimSpace(step); step != "" {
			m.Instructions = append(m.Instructions, step)
		}
	}

	for _, tag := range r.Tags {
		d, err := recipe.ParseDiet(tag)
		if err != nil || d == recipe.DietNone {
			continue
		}
		if !m.HasTag(d) {
			m.Tags = append(m.Tags, d)
		}
	}
	if strings.EqualFold(r.Category, "vegetarian") && !m.HasTag(recipe.DietVegetarian) {
		m.Tags = append(m.Tags, recipe.DietVegetarian)
	}
	if strings.EqualFold(r.Category, "vegan") && !m.HasTag(recipe.DietVegan) {
		m.Tags = append(m.Tags, recipe.DietVegan)
	}

	return m
}

func describe(r recipe.Recipe) string {
	switch {
	case r.Area != "" && r.Category != "":
		return r.Area + " " + strings.ToLower(r.Category)
	case r.Category != "":
		return r.Category
	default:
		return r.Area
	}
}
