package userstate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/internal/database"
	"foodflow/internal/logger"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/storage"
)

// flakyKV wraps a KV and fails the operations that are switched on.
type flakyKV struct {
	storage.KV
	failGet, failSet, failDelete bool
}

var errBoom = errors.New("disk on fire")

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errBoom
	}
	return f.KV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errBoom
	}
	return f.KV.Set(ctx, key, value)
}

func (f *flakyKV) Delete(ctx context.Context, keys ...string) error {
	if f.failDelete {
		return errBoom
	}
	return f.KV.Delete(ctx, keys...)
}

func samplePlan() *planner.WeeklyMealPlan {
	g := planner.NewGenerator(recipe.DefaultCatalog())
	plan, _ := g.Generate(recipe.DefaultPreferences())
	return plan
}

func TestStoreDefaults(t *testing.T) {
	s := New(context.Background(), storage.NewMemoryStore(), logger.Discard())

	assert.Equal(t, recipe.DefaultPreferences(), s.Load())
	_, ok := s.LoadPlan()
	assert.False(t, ok)
	assert.False(t, s.HasCompletedOnboarding())
}

func TestStorePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "state.db"), logger.Discard())
	require.NoError(t, err)
	defer db.Close()
	kv := storage.NewSQLiteStore(db.SQL)

	s := New(ctx, kv, logger.Discard())
	s.CompleteOnboarding(ctx, recipe.DietVegan, recipe.SkillIntermediate)
	plan := samplePlan()
	s.SavePlan(ctx, plan)

	restarted := New(ctx, kv, logger.Discard())
	assert.Equal(t, recipe.Preferences{Diet: recipe.DietVegan, Skill: recipe.SkillIntermediate, Onboarded: true}, restarted.Load())
	assert.True(t, restarted.HasCompletedOnboarding())

	got, ok := restarted.LoadPlan()
	require.True(t, ok)
	assert.Equal(t, plan.ID, got.ID)
	require.Len(t, got.Meals, planner.DaysPerWeek)
	assert.Equal(t, plan.Meals[6].Name, got.Meals[6].Name)
	assert.True(t, plan.WeekStart.Equal(got.WeekStart))
}

func TestStoreCorruptDataFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, PreferencesKey, []byte("{not json")))
	require.NoError(t, kv.Set(ctx, PlanKey, []byte(`{"meals": "nope"}`)))

	s := New(ctx, kv, logger.Discard())

	assert.Equal(t, recipe.DefaultPreferences(), s.Load())
	_, ok := s.LoadPlan()
	assert.False(t, ok)
}

func TestStoreUnknownEnumIsCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, PreferencesKey, []byte(`{"dietaryPreference":"paleo","cookingSkillLevel":"easy"}`)))

	s := New(ctx, kv, logger.Discard())
	assert.Equal(t, recipe.DefaultPreferences(), s.Load())
}

func TestStoreReadFailureIsNotFatal(t *testing.T) {
	kv := &flakyKV{KV: storage.NewMemoryStore(), failGet: true}

	s := New(context.Background(), kv, logger.Discard())
	assert.Equal(t, recipe.DefaultPreferences(), s.Load())
}

func TestStoreWriteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KV: storage.NewMemoryStore(), failSet: true}
	s := New(ctx, kv, logger.Discard())

	prefs := recipe.Preferences{Diet: recipe.DietKeto, Skill: recipe.SkillAdvanced}
	s.Save(ctx, prefs)
	s.SavePlan(ctx, samplePlan())

	// In-memory state stays authoritative.
	assert.Equal(t, prefs, s.Load())
	_, ok := s.LoadPlan()
	assert.True(t, ok)

	// Nothing reached the backing store.
	_, err := kv.KV.Get(ctx, PreferencesKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreSaveOverwritesWholeRecord(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := New(ctx, kv, logger.Discard())

	s.CompleteOnboarding(ctx, recipe.DietKeto, recipe.SkillAdvanced)
	s.Save(ctx, recipe.Preferences{Diet: recipe.DietVegetarian, Skill: recipe.SkillEasy})

	raw, err := kv.Get(ctx, PreferencesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dietaryPreference":"vegetarian","cookingSkillLevel":"easy","onboarded":false}`, string(raw))
}

func TestStoreSavePlanNilRemoves(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := New(ctx, kv, logger.Discard())

	s.SavePlan(ctx, samplePlan())
	s.SavePlan(ctx, nil)

	_, ok := s.LoadPlan()
	assert.False(t, ok)
	_, err := kv.Get(ctx, PlanKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreLoadPlanReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, storage.NewMemoryStore(), logger.Discard())
	plan := samplePlan()
	s.SavePlan(ctx, plan)

	plan.Meals[0].Name = "Mutated by caller"
	got, _ := s.LoadPlan()
	assert.NotEqual(t, "Mutated by caller", got.Meals[0].Name)

	got.Meals[1].Name = "Mutated by reader"
	again, _ := s.LoadPlan()
	assert.NotEqual(t, "Mutated by reader", again.Meals[1].Name)

	want := again.Meals[2].Ingredients[0]
	plan.Meals[2].Ingredients[0] = "Mutated ingredient"
	again.Meals[2].Ingredients[0] = "Mutated ingredient"
	again.Meals[2].Instructions = append(again.Meals[2].Instructions[:0], "Mutated step")
	latest, _ := s.LoadPlan()
	assert.Equal(t, want, latest.Meals[2].Ingredients[0])
	assert.NotEqual(t, "Mutated step", latest.Meals[2].Instructions[0])
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := New(ctx, kv, logger.Discard())
	s.CompleteOnboarding(ctx, recipe.DietVegan, recipe.SkillAdvanced)
	s.SavePlan(ctx, samplePlan())

	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, recipe.DefaultPreferences(), s.Load())
	_, ok := s.LoadPlan()
	assert.False(t, ok)
	assert.False(t, s.HasCompletedOnboarding())

	// A fresh process sees the same.
	restarted := New(ctx, kv, logger.Discard())
	assert.Equal(t, recipe.DefaultPreferences(), restarted.Load())
	_, ok = restarted.LoadPlan()
	assert.False(t, ok)
}

func TestStoreClearFailureLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KV: storage.NewMemoryStore()}
	s := New(ctx, kv, logger.Discard())
	s.CompleteOnboarding(ctx, recipe.DietKeto, recipe.SkillEasy)
	s.SavePlan(ctx, samplePlan())

	kv.failDelete = true
	require.ErrorIs(t, s.Clear(ctx), errBoom)

	assert.Equal(t, recipe.DietKeto, s.Load().Diet)
	_, ok := s.LoadPlan()
	assert.True(t, ok)

	kv.failDelete = false
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, recipe.DefaultPreferences(), s.Load())
}

func TestHasCompletedOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("ExplicitFlagWithDefaults", func(t *testing.T) {
		s := New(ctx, storage.NewMemoryStore(), logger.Discard())
		s.CompleteOnboarding(ctx, recipe.DietNone, recipe.SkillEasy)
		assert.True(t, s.HasCompletedOnboarding())
	})

	t.Run("SettingsChangeWithoutOnboarding", func(t *testing.T) {
		s := New(ctx, storage.NewMemoryStore(), logger.Discard())
		s.Save(ctx, recipe.Preferences{Diet: recipe.DietKeto, Skill: recipe.SkillEasy})
		assert.False(t, s.HasCompletedOnboarding())
	})

	t.Run("LegacyRecordUsesHeuristic", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, PreferencesKey, []byte(`{"dietaryPreference":"vegan","cookingSkillLevel":"easy"}`)))
		s := New(ctx, kv, logger.Discard())
		assert.True(t, s.HasCompletedOnboarding())
	})

	t.Run("LegacyRecordSurvivesSettingsChange", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, PreferencesKey, []byte(`{"dietaryPreference":"vegan","cookingSkillLevel":"easy"}`)))
		s := New(ctx, kv, logger.Discard())
		require.True(t, s.HasCompletedOnboarding())

		prefs := s.Load()
		prefs.Skill = recipe.SkillAdvanced
		s.Save(ctx, prefs)
		assert.True(t, s.HasCompletedOnboarding())

		restarted := New(ctx, kv, logger.Discard())
		assert.True(t, restarted.HasCompletedOnboarding())
		assert.Equal(t, recipe.SkillAdvanced, restarted.Load().Skill)
	})

	t.Run("LegacyDefaultRecord", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, PreferencesKey, []byte(`{"dietaryPreference":"none","cookingSkillLevel":"easy"}`)))
		s := New(ctx, kv, logger.Discard())
		assert.False(t, s.HasCompletedOnboarding())
	})
}

func TestStoreReload(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	a := New(ctx, kv, logger.Discard())
	b := New(ctx, kv, logger.Discard())

	a.Save(ctx, recipe.Preferences{Diet: recipe.DietGlutenFree, Skill: recipe.SkillEasy})
	assert.Equal(t, recipe.DietNone, b.Load().Diet)

	b.Reload(ctx)
	assert.Equal(t, recipe.DietGlutenFree, b.Load().Diet)
}

func TestStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, storage.NewMemoryStore(), logger.Discard())
	plan := samplePlan()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.SavePlan(ctx, plan)
		}
	}()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			got, ok := s.LoadPlan()
			require.True(t, ok)
			assert.Len(t, got.Meals, planner.DaysPerWeek)
			return
		case <-deadline:
			t.Fatal("timed out")
		default:
			if got, ok := s.LoadPlan(); ok {
				assert.Len(t, got.Meals, planner.DaysPerWeek)
			}
		}
	}
}
