package services

import (
	"context"
	"sync"

	"firstbites/models"
)

// Session is the in-memory view of one signed-in user: profile, catalog,
// per-food state and logs. It lives from login until logout or expiry and is
// only ever mutated through a Tracker.
type Session struct {
	mu     sync.RWMutex
	user   models.User
	foods  []models.Food
	byID   map[uint]int
	states map[uint]*models.FoodState
	logs   []models.FoodLog
}

func loadSession(ctx context.Context, store Store, userID uint) (*Session, error) {
	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	foods, err := store.ListFoods(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list foods", Err: err}
	}
	states, err := store.ListFoodStates(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list food states", Err: err}
	}
	logs, err := store.ListLogs(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list logs", Err: err}
	}

	s := &Session{user: *user}
	s.reset(foods, states, logs)
	return s, nil
}

// reset replaces the cached catalog, states and logs. Callers hold mu.
func (s *Session) reset(foods []models.Food, states []models.FoodState, logs []models.FoodLog) {
	s.foods = foods
	s.byID = make(map[uint]int, len(foods))
	for i, f := range foods {
		s.byID[f.ID] = i
	}
	s.states = make(map[uint]*models.FoodState, len(states))
	for i := range states {
		st := states[i]
		s.states[st.FoodID] = &st
	}
	s.logs = logs
}

func (s *Session) food(id uint) (models.Food, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Food{}, false
	}
	return s.foods[i], true
}

func (s *Session) status(foodID uint) models.Status {
	if st := s.states[foodID]; st != nil {
		return st.Status
	}
	return models.StatusToTry
}

func (s *Session) logIndex(id string) int {
	for i := range s.logs {
		if s.logs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) removeLog(id string) {
	if i := s.logIndex(id); i >= 0 {
		s.logs = append(s.logs[:i], s.logs[i+1:]...)
	}
}

// familySafe reports whether every catalog food of the allergen family is SAFE.
func (s *Session) familySafe(family string) bool {
	for _, f := range s.foods {
		if f.IsAllergen && f.AllergenFamily == family && s.status(f.ID) != models.StatusSafe {
			return false
		}
	}
	return true
}

// allAllergensSafe reports whether every allergen in the catalog is SAFE.
func (s *Session) allAllergensSafe() bool {
	found := false
	for _, f := range s.foods {
		if !f.IsAllergen {
			continue
		}
		found = true
		if s.status(f.ID) != models.StatusSafe {
			return false
		}
	}
	return found
}

func (s *Session) triedCount() int {
	n := 0
	for _, st := range s.states {
		if st.Status.Tried() {
			n++
		}
	}
	return n
}

// mutation is an optimistic change paired with its exact inverse.
type mutation struct {
	apply func()
	undo  func()
}
