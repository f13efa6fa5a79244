package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"firstbites/models"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// memStore is an in-memory Store with per-operation failure injection.
type memStore struct {
	mu     sync.Mutex
	foods  []models.Food
	users  map[uint]models.User
	states map[string]models.FoodState
	logs   []models.FoodLog

	failSaveState  error
	failCreateLog  error
	failUpdateLog  error
	failDeleteLog  error
	failSaveUser   error
	failListStates error
}

func newMemStore(foods []models.Food, users ...models.User) *memStore {
	m := &memStore{
		foods:  foods,
		users:  map[uint]models.User{},
		states: map[string]models.FoodState{},
	}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memStore) ListFoods(context.Context) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.foods), nil
}

func (m *memStore) UpsertFoods(_ context.Context, foods []models.Food) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foods = append(m.foods, foods...)
	return nil
}

func (m *memStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("user %d exists", u.ID)
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) SaveUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveUser != nil {
		return m.failSaveUser
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (m *memStore) DeleteAccount(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return notFound("user", id)
	}
	delete(m.users, id)
	for k, st := range m.states {
		if st.UserID == id {
			delete(m.states, k)
		}
	}
	m.logs = slices.DeleteFunc(m.logs, func(l models.FoodLog) bool { return l.UserID == id })
	return nil
}

func (m *memStore) ListFoodStates(_ context.Context, id uint) ([]models.FoodState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListStates != nil {
		return nil, m.failListStates
	}
	var out []models.FoodState
	for _, st := range m.states {
		if st.UserID == id {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *memStore) SaveFoodState(_ context.Context, st *models.FoodState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveState != nil {
		return m.failSaveState
	}
	for id, cur := range m.states {
		if cur.UserID == st.UserID && cur.FoodID == st.FoodID {
			st.ID = id
		}
	}
	m.states[st.ID] = *st
	return nil
}

func (m *memStore) DeleteFoodState(_ context.Context, userID uint, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[id]; ok && st.UserID == userID {
		delete(m.states, id)
	}
	return nil
}

func (m *memStore) ListLogs(_ context.Context, id uint) ([]models.FoodLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FoodLog
	for _, l := range m.logs {
		if l.UserID == id {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) CreateLog(_ context.Context, l *models.FoodLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateLog != nil {
		return m.failCreateLog
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memStore) UpdateLog(_ context.Context, l *models.FoodLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdateLog != nil {
		return m.failUpdateLog
	}
	for i := range m.logs {
		if m.logs[i].ID == l.ID {
			m.logs[i] = *l
			return nil
		}
	}
	return notFound("log", l.ID)
}

func (m *memStore) DeleteLog(_ context.Context, userID uint, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteLog != nil {
		return m.failDeleteLog
	}
	n := len(m.logs)
	m.logs = slices.DeleteFunc(m.logs, func(l models.FoodLog) bool { return l.ID == id && l.UserID == userID })
	if len(m.logs) == n {
		return notFound("log", id)
	}
	return nil
}

func (m *memStore) stateFor(userID, foodID uint) (models.FoodState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.states {
		if st.UserID == userID && st.FoodID == foodID {
			return st, true
		}
	}
	return models.FoodState{}, false
}

func (m *memStore) logCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// recordingDispatcher keeps every notification it is handed.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return d.err
}

func (d *recordingDispatcher) all() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.sent)
}

type fakeUploader struct {
	url string
	err error
	got []string
}

func (u *fakeUploader) UploadBase64Image(_ context.Context, dataURI, keyPrefix string) (string, error) {
	u.got = append(u.got, keyPrefix)
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

// stepClock starts at a fixed instant and advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

const testUser uint = 7

// testCatalog is sorted the way GormStore.ListFoods returns it.
func testCatalog() []models.Food {
	return []models.Food{
		{ID: 30, Name: "Peanut Butter", Category: "Allergens", IsAllergen: true, AllergenFamily: "Peanut"},
		{ID: 31, Name: "Peanut Puffs", Category: "Allergens", IsAllergen: true, AllergenFamily: "Peanut"},
		{ID: 32, Name: "Scrambled Egg", Category: "Allergens", IsAllergen: true, AllergenFamily: "Egg"},
		{ID: 2, Name: "Banana", Category: "Fruits", Emoji: "🍌"},
		{ID: 7, Name: "Blueberries", Category: "Fruits"},
		{ID: 5, Name: "Mango", Category: "Fruits"},
		{ID: 20, Name: "Chicken", Category: "Proteins"},
		{ID: 15, Name: "Tofu", Category: "Proteins"},
		{ID: 1, Name: "Avocado", Category: "Vegetables"},
		{ID: 9, Name: "Sweet Potato", Category: "Vegetables"},
	}
}

func newTestTracker(t *testing.T, store *memStore, deps TrackerDeps) *Tracker {
	t.Helper()
	deps.Store = store
	if deps.Now == nil {
		deps.Now = stepClock(testStart)
	}
	tr, err := NewTracker(context.Background(), testUser, deps)
	require.NoError(t, err)
	return tr
}

func defaultUser() models.User {
	return models.User{ID: testUser, Email: "parent@example.com", BabyName: "Mia", MilestoneAlerts: true, ReminderAlerts: true}
}
