package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/internal/logger"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/shared"
	"foodflow/internal/shopping"
	"foodflow/internal/storage"
	"foodflow/internal/userstate"
)

type captureRecorder struct {
	mu   sync.Mutex
	runs []shared.RunMeta
}

func (c *captureRecorder) RecordRun(_ context.Context, meta shared.RunMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, meta)
	return nil
}

func (c *captureRecorder) last() shared.RunMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs[len(c.runs)-1]
}

// everyOther fails every second call.
type everyOther struct{ calls atomic.Int32 }

func (s *everyOther) RandomRecipe(context.Context) (*recipe.Recipe, error) {
	n := s.calls.Add(1)
	if n%2 == 0 {
		return nil, errors.New("timeout")
	}
	return &recipe.Recipe{
		ID:          fmt.Sprintf("%d", n),
		Name:        fmt.Sprintf("Fetched %d", n),
		Ingredients: []string{"200g Chicken", "1 Lemon"},
	}, nil
}

func newTestApp(t *testing.T, catalog recipe.Catalog, source planner.RecipeSource) (*App, *captureRecorder, storage.KV) {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	rec := &captureRecorder{}

	a := NewApp(Deps{
		Store:     userstate.New(ctx, kv, logger.Discard()),
		Generator: planner.NewGenerator(catalog),
		Source:    source,
		Recorder:  rec,
		Log:       logger.Discard(),
	})
	return a, rec, kv
}

func TestOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	a, rec, kv := newTestApp(t, recipe.DefaultCatalog(), nil)

	assert.False(t, a.HasCompletedOnboarding())
	_, ok := a.CurrentPlan()
	assert.False(t, ok)
	assert.Zero(t, a.GroceryList().Len())

	res, err := a.CompleteOnboarding(ctx, recipe.DietVegetarian, recipe.SkillEasy)
	require.NoError(t, err)
	assert.True(t, a.HasCompletedOnboarding())
	assert.False(t, res.Fallback)
	assert.NoError(t, res.Err)
	require.Len(t, res.Plan.Meals, planner.DaysPerWeek)
	for _, m := range res.Plan.Meals {
		assert.True(t, m.HasTag(recipe.DietVegetarian), m.Name)
		assert.Equal(t, recipe.SkillEasy, m.Difficulty, m.Name)
	}

	meta := rec.last()
	assert.Equal(t, shared.ModeTemplate, meta.Mode)
	assert.Equal(t, "vegetarian", meta.Diet)
	assert.Equal(t, planner.DaysPerWeek, meta.Produced)

	current, ok := a.CurrentPlan()
	require.True(t, ok)
	assert.Equal(t, res.Plan.ID, current.ID)

	_, err = kv.Get(ctx, userstate.PlanKey)
	assert.NoError(t, err, "plan should be persisted")

	// A fresh App over the same KV sees the same state.
	b := NewApp(Deps{
		Store:     userstate.New(ctx, kv, logger.Discard()),
		Generator: planner.NewGenerator(recipe.DefaultCatalog()),
		Log:       logger.Discard(),
	})
	assert.True(t, b.HasCompletedOnboarding())
	reloaded, ok := b.CurrentPlan()
	require.True(t, ok)
	assert.Equal(t, res.Plan.ID, reloaded.ID)
}

func TestCompleteOnboardingRejectsInvalidValues(t *testing.T) {
	a, _, _ := newTestApp(t, recipe.DefaultCatalog(), nil)

	_, err := a.CompleteOnboarding(context.Background(), recipe.Diet("paleo"), recipe.SkillEasy)
	assert.Error(t, err)
	assert.False(t, a.HasCompletedOnboarding())
}

func TestSetDietAndSkill(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t, recipe.DefaultCatalog(), nil)

	prefs, err := a.SetDiet(ctx, recipe.DietKeto)
	require.NoError(t, err)
	assert.Equal(t, recipe.DietKeto, prefs.Diet)
	assert.Equal(t, recipe.SkillEasy, prefs.Skill)

	prefs, err = a.SetSkill(ctx, recipe.SkillAdvanced)
	require.NoError(t, err)
	assert.Equal(t, recipe.DietKeto, prefs.Diet)
	assert.Equal(t, recipe.SkillAdvanced, prefs.Skill)
	assert.Equal(t, prefs, a.Preferences())

	_, err = a.SetSkill(ctx, recipe.Skill("expert"))
	assert.Error(t, err)
	assert.Equal(t, recipe.SkillAdvanced, a.Preferences().Skill)
}

func TestGeneratePlanFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("DropsDietKeepsSkill", func(t *testing.T) {
		catalog := recipe.Catalog{
			{Name: "Fancy Veg", Difficulty: recipe.SkillAdvanced, Tags: []recipe.Diet{recipe.DietVegetarian}},
			{Name: "Plain Toast", Difficulty: recipe.SkillEasy},
		}
		a, rec, _ := newTestApp(t, catalog, nil)
		_, err := a.SetDiet(ctx, recipe.DietVegetarian)
		require.NoError(t, err)

		res, err := a.GeneratePlan(ctx)
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.ErrorIs(t, res.Err, planner.ErrEmptyCandidateSet)

		var typed *planner.EmptyCandidateSetError
		require.ErrorAs(t, res.Err, &typed)
		assert.Equal(t, recipe.DietVegetarian, typed.Diet)

		for _, m := range res.Plan.Meals {
			assert.Equal(t, "Plain Toast", m.Name)
		}
		assert.True(t, rec.last().Fallback)
	})

	t.Run("FullCatalog", func(t *testing.T) {
		catalog := recipe.Catalog{
			{Name: "Soufflé", Difficulty: recipe.SkillAdvanced},
		}
		a, _, _ := newTestApp(t, catalog, nil)
		_, err := a.SetDiet(ctx, recipe.DietVegan)
		require.NoError(t, err)

		res, err := a.GeneratePlan(ctx)
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		require.Len(t, res.Plan.Meals, planner.DaysPerWeek)
		assert.Equal(t, "Soufflé", res.Plan.Meals[0].Name)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		a, _, _ := newTestApp(t, recipe.Catalog{}, nil)

		_, err := a.GeneratePlan(ctx)
		assert.ErrorIs(t, err, planner.ErrEmptyCandidateSet)
		_, ok := a.CurrentPlan()
		assert.False(t, ok)
	})
}

func TestGroceryListLifecycle(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t, recipe.DefaultCatalog(), nil)

	first, err := a.RegeneratePlan(ctx)
	require.NoError(t, err)

	list := a.GroceryList()
	require.Positive(t, list.Len())
	item := list.Items()[0].Normalized

	checked, err := a.ToggleItem(item)
	require.NoError(t, err)
	assert.True(t, checked)
	assert.True(t, a.GroceryList().IsChecked(item), "list is cached while the plan is unchanged")

	_, err = a.ToggleItem("definitely not an ingredient")
	assert.ErrorIs(t, err, shopping.ErrUnknownItem)

	second, err := a.RegeneratePlan(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Plan.ID, second.Plan.ID)
	assert.Equal(t, list.Len()-list.Remaining(), 1)
	assert.Zero(t, a.GroceryList().Len()-a.GroceryList().Remaining(), "checked state resets with a new plan")

	_, planID := a.Groceries()
	assert.Equal(t, second.Plan.ID, planID)

	require.NoError(t, a.ClearData(ctx))
	_, planID = a.Groceries()
	assert.Empty(t, planID)
}

func TestFetchPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("Unavailable", func(t *testing.T) {
		a, _, _ := newTestApp(t, recipe.DefaultCatalog(), nil)
		_, err := a.FetchPlan(ctx)
		assert.ErrorIs(t, err, ErrFetchUnavailable)
		_, err = a.RandomRecipe(ctx)
		assert.ErrorIs(t, err, ErrFetchUnavailable)
	})

	t.Run("DegradedWeekIsPublished", func(t *testing.T) {
		src := &everyOther{}
		a, rec, _ := newTestApp(t, recipe.DefaultCatalog(), src)

		res, err := a.FetchPlan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, res.Meta.Requested)
		assert.Equal(t, 4, res.Meta.Produced)
		assert.Equal(t, 3, res.Meta.Failed)
		assert.True(t, res.Meta.Degraded())
		assert.False(t, res.Plan.Complete())

		current, ok := a.CurrentPlan()
		require.True(t, ok)
		assert.Equal(t, res.Plan.ID, current.ID)
		assert.Equal(t, shared.ModeFetch, rec.last().Mode)

		sections := a.GroceryList().ByCategory()
		assert.Equal(t, []string{"200g Chicken"}, normalized(sections[shopping.CategoryMeatFish]))
		assert.Equal(t, []string{"1 Lemon"}, normalized(sections[shopping.CategoryFresh]))
	})

	t.Run("RandomRecipe", func(t *testing.T) {
		a, _, _ := newTestApp(t, recipe.DefaultCatalog(), &everyOther{})
		r, err := a.RandomRecipe(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Fetched 1", r.Name)

		_, err = a.RandomRecipe(ctx)
		assert.Error(t, err)
	})
}

func TestConcurrentRegenerationLastWriteWins(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t, recipe.DefaultCatalog(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.RegeneratePlan(ctx)
			_ = a.GroceryList().Len()
		}()
	}
	wg.Wait()

	plan, ok := a.CurrentPlan()
	require.True(t, ok)
	assert.Len(t, plan.Meals, planner.DaysPerWeek)
}

func TestClearData(t *testing.T) {
	ctx := context.Background()
	a, _, kv := newTestApp(t, recipe.DefaultCatalog(), nil)

	_, err := a.CompleteOnboarding(ctx, recipe.DietVegan, recipe.SkillIntermediate)
	require.NoError(t, err)
	require.Positive(t, a.GroceryList().Len())

	require.NoError(t, a.ClearData(ctx))
	assert.False(t, a.HasCompletedOnboarding())
	assert.Equal(t, recipe.DefaultPreferences(), a.Preferences())
	_, ok := a.CurrentPlan()
	assert.False(t, ok)
	assert.Zero(t, a.GroceryList().Len())

	_, err = kv.Get(ctx, userstate.PreferencesKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func normalized(items []shopping.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Normalized)
	}
	return out
}
