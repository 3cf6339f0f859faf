// Package userstate holds the user's preferences and active meal plan.
//
// The in-memory copy is authoritative. Every mutation writes through to the
// KV store straight away; a failed write is logged and skipped, never
// surfaced, because the state can always be rebuilt from fresh user input.
package userstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/storage"
)

// Persistence keys.
const (
	PreferencesKey = "userPreferences"
	PlanKey        = "currentMealPlan"
)

// Store is the single owner of user state for a running process. Build one
// at startup and hand it to whoever needs it.
type Store struct {
	kv  storage.KV
	log logrus.FieldLogger

	mu    sync.RWMutex
	prefs recipe.Preferences
	plan  *planner.WeeklyMealPlan
}

// New creates a Store and loads whatever is persisted in kv.
func New(ctx context.Context, kv storage.KV, log logrus.FieldLogger) *Store {
	s := &Store{
		kv:    kv,
		log:   log,
		prefs: recipe.DefaultPreferences(),
	}
	s.Reload(ctx)
	return s
}

// storedPreferences mirrors recipe.Preferences but can tell an explicit
// false from a record written before the flag existed.
type storedPreferences struct {
	Diet      recipe.Diet  `json:"dietaryPreference"`
	Skill     recipe.Skill `json:"cookingSkillLevel"`
	Onboarded *bool        `json:"onboarded"`
}

// Reload replaces the in-memory state with what is persisted. Absent or
// unreadable values become the defaults.
func (s *Store) Reload(ctx context.Context) {
	prefs := s.readPreferences(ctx)
	plan := s.readPlan(ctx)

	s.mu.Lock()
	s.prefs, s.plan = prefs, plan
	s.mu.Unlock()
}

// readPreferences decodes the stored record. A record written before the
// onboarded flag existed is migrated on read: it counts as onboarded once it
// differs from the defaults.
func (s *Store) readPreferences(ctx context.Context) recipe.Preferences {
	data, err := s.kv.Get(ctx, PreferencesKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"key": PreferencesKey, "error": err}).Warn("failed to read preferences, using defaults")
		}
		return recipe.DefaultPreferences()
	}

	var stored storedPreferences
	if err := json.Unmarshal(data, &stored); err != nil || !stored.Diet.Valid() || !stored.Skill.Valid() {
		s.log.WithFields(logrus.Fields{"key": PreferencesKey, "error": err}).Warn("stored preferences are corrupt, using defaults")
		return recipe.DefaultPreferences()
	}

	prefs := recipe.Preferences{Diet: stored.Diet, Skill: stored.Skill}
	if stored.Onboarded != nil {
		prefs.Onboarded = *stored.Onboarded
	} else {
		prefs.Onboarded = !prefs.IsDefault()
	}
	return prefs
}

func (s *Store) readPlan(ctx context.Context) *planner.WeeklyMealPlan {
	data, err := s.kv.Get(ctx, PlanKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"key": PlanKey, "error": err}).Warn("failed to read meal plan, treating as absent")
		}
		return nil
	}

	var plan planner.WeeklyMealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		s.log.WithFields(logrus.Fields{"key": PlanKey, "error": err}).Warn("stored meal plan is corrupt, treating as absent")
		return nil
	}
	return &plan
}

// Load returns the current preferences.
func (s *Store) Load() recipe.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Save replaces the preferences and persists them. The lock is held across
// the write so the stored order matches the in-memory order.
func (s *Store) Save(ctx context.Context, prefs recipe.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = prefs
	s.write(ctx, PreferencesKey, prefs)
}

// CompleteOnboarding stores the user's choices and marks onboarding done.
func (s *Store) CompleteOnboarding(ctx context.Context, diet recipe.Diet, skill recipe.Skill) recipe.Preferences {
	prefs := recipe.Preferences{Diet: diet, Skill: skill, Onboarded: true}
	s.Save(ctx, prefs)
	return prefs
}

// HasCompletedOnboarding reports the onboarded flag.
func (s *Store) HasCompletedOnboarding() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Onboarded
}

// LoadPlan returns a deep copy of the active plan.
func (s *Store) LoadPlan() (*planner.WeeklyMealPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.plan == nil {
		return nil, false
	}
	return s.plan.Clone(), true
}

// SavePlan replaces the active plan and persists it. A nil plan removes it.
func (s *Store) SavePlan(ctx context.Context, plan *planner.WeeklyMealPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan == nil {
		s.plan = nil
		if err := s.kv.Delete(ctx, PlanKey); err != nil {
			s.log.WithFields(logrus.Fields{"key": PlanKey, "error": err}).Warn("failed to remove stored meal plan")
		}
		return
	}
	s.plan = plan.Clone()
	s.write(ctx, PlanKey, s.plan)
}

// Clear resets preferences to the defaults and removes the plan. Both keys
// go in one atomic delete; if it fails nothing changes and the error is
// returned so the caller can retry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, PreferencesKey, PlanKey); err != nil {
		return fmt.Errorf("failed to clear user data: %w", err)
	}
	s.prefs = recipe.DefaultPreferences()
	s.plan = nil
	return nil
}

func (s *Store) write(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("failed to encode value, write skipped")
		return
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("failed to persist value, write skipped")
	}
}
