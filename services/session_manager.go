package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"firstbites/models"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// SessionManager keeps one Tracker per signed-in user. Sessions are built on
// first use, dropped on logout and expire after ttl without access.
type SessionManager struct {
	deps  TrackerDeps
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.SugaredLogger

	openMu sync.Mutex
}

func NewSessionManager(deps TrackerDeps, ttl time.Duration) *SessionManager {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &SessionManager{
		deps:  deps,
		cache: cache.New(ttl, ttl/2+time.Second),
		ttl:   ttl,
		log:   log,
	}
	m.cache.OnEvicted(func(key string, v any) {
		if t, ok := v.(*Tracker); ok {
			t.Wait()
		}
		m.log.Debugw("session closed", "user_id", key)
	})
	return m
}

func sessionKey(userID uint) string { return strconv.FormatUint(uint64(userID), 10) }

// Open returns the user's tracker, loading it from the store on login. A user
// row is created the first time an authenticated id is seen.
func (m *SessionManager) Open(ctx context.Context, userID uint, email string) (*Tracker, error) {
	key := sessionKey(userID)
	if v, ok := m.cache.Get(key); ok {
		m.cache.Set(key, v, m.ttl)
		return v.(*Tracker), nil
	}

	m.openMu.Lock()
	defer m.openMu.Unlock()
	if v, ok := m.cache.Get(key); ok {
		return v.(*Tracker), nil
	}

	t, err := NewTracker(ctx, userID, m.deps)
	var nf *NotFoundError
	if errors.As(err, &nf) && nf.Kind == "user" {
		u := &models.User{ID: userID, Email: email, MilestoneAlerts: true, ReminderAlerts: true}
		if cerr := m.deps.Store.CreateUser(ctx, u); cerr != nil {
			return nil, &PersistenceError{Op: "create user", Err: cerr}
		}
		m.log.Infow("created user on first login", "user_id", userID)
		t, err = NewTracker(ctx, userID, m.deps)
	}
	if err != nil {
		return nil, err
	}

	m.cache.Set(key, t, m.ttl)
	return t, nil
}

// Close tears the user's session down (logout).
func (m *SessionManager) Close(userID uint) {
	m.cache.Delete(sessionKey(userID))
}

// Active returns the number of live sessions.
func (m *SessionManager) Active() int { return m.cache.ItemCount() }

// DeleteAccount removes every row owned by the user and ends the session.
func (m *SessionManager) DeleteAccount(ctx context.Context, userID uint) error {
	m.Close(userID)
	if err := m.deps.Store.DeleteAccount(ctx, userID); err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return &PersistenceError{Op: "delete account", Err: err}
	}
	return nil
}

// Flush waits for pending notifications of every live session and drops them.
func (m *SessionManager) Flush() {
	for _, item := range m.cache.Items() {
		if t, ok := item.Object.(*Tracker); ok {
			t.Wait()
		}
	}
	m.cache.Flush()
}
