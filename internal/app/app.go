// Package app wires the user state, generators and grocery aggregation into
// the operations the CLI and the Telegram bot call.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"foodflow/internal/metrics"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/shared"
	"foodflow/internal/shopping"
	"foodflow/internal/userstate"
)

// ErrFetchUnavailable is returned by the fetch operations when the App was
// built without a recipe source.
var ErrFetchUnavailable = errors.New("no recipe source configured")

// Deps holds the App's collaborators. Store and Generator are required.
type Deps struct {
	Store     *userstate.Store
	Generator *planner.Generator
	Source    planner.RecipeSource // optional, enables FetchPlan and RandomRecipe
	Fetcher   *planner.FetchGenerator
	Recorder  metrics.Recorder
	Log       logrus.FieldLogger
}

// App holds the application's dependencies.
type App struct {
	store     *userstate.Store
	generator *planner.Generator
	source    planner.RecipeSource
	fetcher   *planner.FetchGenerator
	recorder  metrics.Recorder
	log       logrus.FieldLogger

	mu         sync.Mutex
	groceries  *shopping.List
	listPlanID string
}

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	a := &App{
		store:     d.Store,
		generator: d.Generator,
		source:    d.Source,
		fetcher:   d.Fetcher,
		recorder:  d.Recorder,
		log:       d.Log,
	}
	if a.recorder == nil {
		a.recorder = metrics.NopRecorder{}
	}
	if a.log == nil {
		a.log = logrus.StandardLogger()
	}
	if a.fetcher == nil && a.source != nil {
		a.fetcher = planner.NewFetchGenerator(a.source, planner.DaysPerWeek, a.log)
	}
	return a
}

// Result describes one generation run.
type Result struct {
	Plan *planner.WeeklyMealPlan
	Meta shared.RunMeta
	// Fallback is set when the preferences matched no template and a wider
	// candidate set was used.
	Fallback bool
	// Err carries the recovered generation error, if any.
	Err error
}

// Preferences returns the stored preferences.
func (a *App) Preferences() recipe.Preferences {
	return a.store.Load()
}

// HasCompletedOnboarding reports whether the first-run flow has finished.
func (a *App) HasCompletedOnboarding() bool {
	return a.store.HasCompletedOnboarding()
}

// SetDiet changes only the dietary preference.
func (a *App) SetDiet(ctx context.Context, d recipe.Diet) (recipe.Preferences, error) {
	if !d.Valid() {
		return a.store.Load(), fmt.Errorf("invalid diet %q", d)
	}
	prefs := a.store.Load()
	prefs.Diet = d
	a.store.Save(ctx, prefs)
	return prefs, nil
}

// SetSkill changes only the cooking skill level.
func (a *App) SetSkill(ctx context.Context, s recipe.Skill) (recipe.Preferences, error) {
	if !s.Valid() {
		return a.store.Load(), fmt.Errorf("invalid skill level %q", s)
	}
	prefs := a.store.Load()
	prefs.Skill = s
	a.store.Save(ctx, prefs)
	return prefs, nil
}

// CompleteOnboarding stores the first-run choices and generates the first
// plan for them.
func (a *App) CompleteOnboarding(ctx context.Context, d recipe.Diet, s recipe.Skill) (Result, error) {
	if !d.Valid() {
		return Result{}, fmt.Errorf("invalid diet %q", d)
	}
	if !s.Valid() {
		return Result{}, fmt.Errorf("invalid skill level %q", s)
	}
	a.store.CompleteOnboarding(ctx, d, s)
	return a.GeneratePlan(ctx)
}

// GeneratePlan builds a plan from the template catalog for the stored
// preferences and publishes it.
//
// When nothing matches, the diet filter is dropped (skill still applies),
// and if that is empty too the whole catalog is used. The first error
// stays in Result.Err. An error is returned only when the catalog itself
// is empty.
func (a *App) GeneratePlan(ctx context.Context) (Result, error) {
	start := time.Now()
	prefs := a.store.Load()

	var res Result
	plan, err := a.generator.Generate(prefs)
	if errors.Is(err, planner.ErrEmptyCandidateSet) {
		a.log.WithFields(logrus.Fields{
			"diet":  prefs.Diet,
			"skill": prefs.Skill,
		}).Warn("no templates match preferences, widening candidate set")
		res.Fallback = true
		res.Err = err
		plan, err = a.generateWidened(prefs)
	}
	if err != nil {
		return res, fmt.Errorf("failed to generate plan: %w", err)
	}

	res.Plan = plan
	res.Meta = shared.RunMeta{
		Mode:      shared.ModeTemplate,
		Diet:      string(prefs.Diet),
		Skill:     string(prefs.Skill),
		Requested: planner.DaysPerWeek,
		Produced:  len(plan.Meals),
		Fallback:  res.Fallback,
		Latency:   time.Since(start),
	}
	a.publish(ctx, plan, res.Meta)
	return res, nil
}

// RegeneratePlan is GeneratePlan; a new plan replaces the current one.
func (a *App) RegeneratePlan(ctx context.Context) (Result, error) {
	return a.GeneratePlan(ctx)
}

func (a *App) generateWidened(prefs recipe.Preferences) (*planner.WeeklyMealPlan, error) {
	catalog := a.generator.Catalog()
	if bySkill := catalog.ForSkill(prefs.Skill); len(bySkill) > 0 {
		return a.generator.GenerateFrom(bySkill)
	}
	return a.generator.GenerateFrom(catalog)
}

// FetchPlan builds a plan from the external recipe source and publishes it
// once every day has settled. Failed days are left out; the plan may hold
// fewer than seven meals.
func (a *App) FetchPlan(ctx context.Context) (Result, error) {
	if a.fetcher == nil {
		return Result{}, ErrFetchUnavailable
	}
	prefs := a.store.Load()

	plan, meta := a.fetcher.Generate(ctx)
	meta.Diet = string(prefs.Diet)
	meta.Skill = string(prefs.Skill)
	if meta.Degraded() {
		a.log.WithFields(logrus.Fields{
			"produced": meta.Produced,
			"failed":   meta.Failed,
		}).Warn("fetched plan is incomplete")
	}

	a.publish(ctx, plan, meta)
	return Result{Plan: plan, Meta: meta}, nil
}

// RandomRecipe fetches one recipe from the external source.
func (a *App) RandomRecipe(ctx context.Context) (*recipe.Recipe, error) {
	if a.source == nil {
		return nil, ErrFetchUnavailable
	}
	r, err := a.source.RandomRecipe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch random recipe: %w", err)
	}
	return r, nil
}

func (a *App) publish(ctx context.Context, plan *planner.WeeklyMealPlan, meta shared.RunMeta) {
	a.mu.Lock()
	a.store.SavePlan(ctx, plan)
	a.groceries = nil
	a.listPlanID = ""
	a.mu.Unlock()

	if err := a.recorder.RecordRun(ctx, meta); err != nil {
		a.log.WithError(err).Warn("failed to record generation metrics")
	}
	a.log.WithFields(logrus.Fields{
		"plan_id":  plan.ID,
		"mode":     meta.Mode,
		"meals":    meta.Produced,
		"fallback": meta.Fallback,
		"latency":  meta.Latency,
	}).Info("meal plan published")
}

// CurrentPlan returns the active plan, if any.
func (a *App) CurrentPlan() (*planner.WeeklyMealPlan, bool) {
	return a.store.LoadPlan()
}

// GroceryList returns the list for the active plan. The same list, with its
// checked state, is returned until a new plan is published.
func (a *App) GroceryList() *shopping.List {
	list, _ := a.Groceries()
	return list
}

// Groceries is GroceryList plus the ID of the plan the list was built from.
// The ID is empty when there is no plan.
func (a *App) Groceries() (*shopping.List, string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	plan, ok := a.store.LoadPlan()
	if !ok {
		a.groceries = nil
		a.listPlanID = ""
		return shopping.FromPlan(nil), ""
	}
	if a.groceries == nil || a.listPlanID != plan.ID {
		a.groceries = shopping.FromPlan(plan)
		a.listPlanID = plan.ID
	}
	return a.groceries, a.listPlanID
}

// ToggleItem flips the checked state of an item on the current list.
func (a *App) ToggleItem(text string) (bool, error) {
	return a.GroceryList().Toggle(text)
}

// ClearData resets preferences and removes the plan.
func (a *App) ClearData(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.groceries = nil
	a.listPlanID = ""
	a.log.Info("user data cleared")
	return nil
}
