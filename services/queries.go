package services

import (
	"cmp"
	"slices"

	"firstbites/models"
	"firstbites/utils"
)

// FoodWithState is a catalog food joined with the user's progress on it.
// State is nil until the food is first logged.
type FoodWithState struct {
	models.Food
	State *models.FoodState `json:"state"`
}

// Status is the food's introduction status, TO_TRY when never logged.
func (f FoodWithState) Status() models.Status {
	if f.State == nil {
		return models.StatusToTry
	}
	return f.State.Status
}

// LogEntry is a log joined with the food it was recorded against.
type LogEntry struct {
	models.FoodLog
	FoodID   uint   `json:"food_id"`
	FoodName string `json:"food_name"`
	Emoji    string `json:"emoji"`
}

type FamilyProgress struct {
	Family   string `json:"family"`
	Safe     int    `json:"safe"`
	Total    int    `json:"total"`
	Complete bool   `json:"complete"`
}

type Progress struct {
	Tried          int              `json:"tried"`
	SafeAllergens  int              `json:"safe_allergens"`
	TotalAllergens int              `json:"total_allergens"`
	TotalLogs      int              `json:"total_logs"`
	NextMilestone  int              `json:"next_milestone,omitempty"`
	Families       []FamilyProgress `json:"families"`
}

func (s *Session) withState(f models.Food) FoodWithState {
	out := FoodWithState{Food: f}
	if st := s.states[f.ID]; st != nil {
		cp := *st
		out.State = &cp
	}
	return out
}

func (t *Tracker) Profile() models.User {
	t.sess.mu.RLock()
	defer t.sess.mu.RUnlock()
	return t.sess.user
}

// Foods returns the bare catalog in category, name order.
func (t *Tracker) Foods() []models.Food {
	t.sess.mu.RLock()
	defer t.sess.mu.RUnlock()
	return slices.Clone(t.sess.foods)
}

func (t *Tracker) GetFoodWithState(id uint) (*FoodWithState, error) {
	s := t.sess
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.food(id)
	if !ok {
		return nil, notFound("food", id)
	}
	fw := s.withState(f)
	return &fw, nil
}

func (t *Tracker) GetFoodsWithStates() []FoodWithState {
	return t.filterFoods(func(FoodWithState) bool { return true })
}

func (t *Tracker) GetAllergenFoods() []FoodWithState {
	return t.filterFoods(func(f FoodWithState) bool { return f.IsAllergen })
}

func (t *Tracker) filterFoods(keep func(FoodWithState) bool) []FoodWithState {
	s := t.sess
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FoodWithState, 0, len(s.foods))
	for _, f := range s.foods {
		if fw := s.withState(f); keep(fw) {
			out = append(out, fw)
		}
	}
	return out
}

// GetTriedCount counts foods currently TRYING or SAFE.
func (t *Tracker) GetTriedCount() int {
	t.sess.mu.RLock()
	defer t.sess.mu.RUnlock()
	return t.sess.triedCount()
}

func (t *Tracker) GetSafeAllergenCount() int {
	n := 0
	for _, f := range t.GetAllergenFoods() {
		if f.Status() == models.StatusSafe {
			n++
		}
	}
	return n
}

func (t *Tracker) GetTotalAllergenCount() int {
	return len(t.GetAllergenFoods())
}

func (t *Tracker) GetTotalLogCount() int {
	t.sess.mu.RLock()
	defer t.sess.mu.RUnlock()
	return len(t.sess.logs)
}

// GetRecentLogs returns up to limit logs, newest first.
func (t *Tracker) GetRecentLogs(limit int) []LogEntry {
	s := t.sess
	s.mu.RLock()
	defer s.mu.RUnlock()

	foodByState := make(map[string]models.Food, len(s.states))
	for foodID, st := range s.states {
		if f, ok := s.food(foodID); ok {
			foodByState[st.ID] = f
		}
	}

	logs := slices.Clone(s.logs)
	slices.SortStableFunc(logs, func(a, b models.FoodLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}

	out := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		e := LogEntry{FoodLog: l}
		if f, ok := foodByState[l.StateID]; ok {
			e.FoodID, e.FoodName, e.Emoji = f.ID, f.Name, f.Emoji
		}
		out = append(out, e)
	}
	return out
}

// GetNextSuggestions ranks untried non-allergen foods for the baby's age.
// Ties keep catalog order.
func (t *Tracker) GetNextSuggestions(limit int) []FoodWithState {
	s := t.sess
	s.mu.RLock()
	age := utils.AgeInMonths(s.user.BabyBirthDate, t.now())
	var candidates []FoodWithState
	for _, f := range s.foods {
		if f.IsAllergen || s.status(f.ID) != models.StatusToTry {
			continue
		}
		candidates = append(candidates, s.withState(f))
	}
	s.mu.RUnlock()

	slices.SortStableFunc(candidates, func(a, b FoodWithState) int {
		return cmp.Compare(SuggestionScore(age, b.Name), SuggestionScore(age, a.Name))
	})
	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// GetAllergenMaintenanceNeeded lists SAFE allergens not eaten within the
// maintenance window.
func (t *Tracker) GetAllergenMaintenanceNeeded() []FoodWithState {
	cutoff := t.now().Add(-MaintenanceWindow)
	return t.filterFoods(func(f FoodWithState) bool {
		if !f.IsAllergen || f.Status() != models.StatusSafe {
			return false
		}
		return f.State.LastEaten == nil || f.State.LastEaten.Before(cutoff)
	})
}

// GetAllergenFamilies reports per-family clearance in first-seen catalog order.
func (t *Tracker) GetAllergenFamilies() []FamilyProgress {
	var out []FamilyProgress
	idx := map[string]int{}
	for _, f := range t.GetAllergenFoods() {
		if f.AllergenFamily == "" {
			continue
		}
		i, ok := idx[f.AllergenFamily]
		if !ok {
			i = len(out)
			idx[f.AllergenFamily] = i
			out = append(out, FamilyProgress{Family: f.AllergenFamily})
		}
		out[i].Total++
		if f.Status() == models.StatusSafe {
			out[i].Safe++
		}
	}
	for i := range out {
		out[i].Complete = out[i].Safe == out[i].Total
	}
	return out
}

func (t *Tracker) Summary() Progress {
	p := Progress{
		Tried:          t.GetTriedCount(),
		SafeAllergens:  t.GetSafeAllergenCount(),
		TotalAllergens: t.GetTotalAllergenCount(),
		TotalLogs:      t.GetTotalLogCount(),
		Families:       t.GetAllergenFamilies(),
	}
	for _, m := range Milestones {
		if m > p.Tried {
			p.NextMilestone = m
			break
		}
	}
	return p
}
