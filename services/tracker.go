package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"firstbites/models"
	"firstbites/utils"

	"go.uber.org/zap"
)

// Milestones are the tried-food totals that earn a celebration and a push.
var Milestones = []int{10, 25, 50, 75, 100}

// MaintenanceWindow is how long a SAFE allergen may go uneaten before it is
// flagged for re-exposure.
const MaintenanceWindow = 7 * 24 * time.Hour

const defaultNotifyTimeout = 10 * time.Second

// TrackerDeps are the collaborators of a Tracker. Only Store is required.
type TrackerDeps struct {
	Store      Store
	Dispatcher Dispatcher
	Bus        *EventBus
	Uploader   ImageUploader
	Metrics    *Metrics
	Logger     *zap.SugaredLogger
	Now        func() time.Time
}

// Tracker owns the food introduction state of one user's session.
type Tracker struct {
	userID     uint
	sess       *Session
	store      Store
	dispatcher Dispatcher
	bus        *EventBus
	uploader   ImageUploader
	metrics    *Metrics
	log        *zap.SugaredLogger
	now        func() time.Time

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// NewTracker loads the user's session from the store.
func NewTracker(ctx context.Context, userID uint, deps TrackerDeps) (*Tracker, error) {
	sess, err := loadSession(ctx, deps.Store, userID)
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		userID:        userID,
		sess:          sess,
		store:         deps.Store,
		dispatcher:    deps.Dispatcher,
		bus:           deps.Bus,
		uploader:      deps.Uploader,
		metrics:       deps.Metrics,
		log:           deps.Logger,
		now:           deps.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
	if t.log == nil {
		t.log = zap.NewNop().Sugar()
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.log = t.log.With("user_id", userID)
	return t, nil
}

func (t *Tracker) UserID() uint { return t.userID }

// Wait blocks until in-flight notifications have finished.
func (t *Tracker) Wait() { t.pending.Wait() }

type LogFoodInput struct {
	FoodID      uint   `json:"food_id" binding:"required"`
	HasReaction bool   `json:"has_reaction"`
	Severity    int    `json:"severity"`
	Notes       string `json:"notes"`
}

type LogResult struct {
	State  models.FoodState `json:"state"`
	Log    models.FoodLog   `json:"log"`
	Events []Event          `json:"events"`
}

func validSeverity(v int) error {
	if v < models.SeverityNone || v > models.SeveritySevere {
		return &ValidationError{Field: "severity", Reason: "must be 0, 1 or 2"}
	}
	return nil
}

// LogFood records one exposure. The session reflects the new state and log
// before the store is written; a failed write reverts both and returns a
// PersistenceError. Logging against a REACTION food is allowed.
func (t *Tracker) LogFood(ctx context.Context, in LogFoodInput) (*LogResult, error) {
	if err := validSeverity(in.Severity); err != nil {
		t.metrics.FoodLogged("invalid")
		return nil, err
	}

	s := t.sess
	s.mu.Lock()
	food, ok := s.food(in.FoodID)
	if !ok {
		s.mu.Unlock()
		t.metrics.FoodLogged("not_found")
		return nil, notFound("food", in.FoodID)
	}

	now := t.now()
	var prev *models.FoodState
	if cur := s.states[food.ID]; cur != nil {
		cp := *cur
		prev = &cp
	}

	next := models.FoodState{
		ID:        utils.NewID(),
		UserID:    t.userID,
		FoodID:    food.ID,
		CreatedAt: now,
	}
	prevCount, prevStatus := 0, models.StatusToTry
	if prev != nil {
		next = *prev
		prevCount, prevStatus = prev.ExposureCount, prev.Status
	}
	next.Status, next.ExposureCount = NextState(food, prevCount, in.HasReaction)
	next.LastEaten = &now
	next.UpdatedAt = now

	entry := models.FoodLog{
		ID:               utils.NewID(),
		UserID:           t.userID,
		StateID:          next.ID,
		ReactionSeverity: in.Severity,
		Notes:            in.Notes,
		CreatedAt:        now,
	}

	familyBefore := food.AllergenFamily != "" && s.familySafe(food.AllergenFamily)
	allBefore := s.allAllergensSafe()
	triedBefore := s.triedCount()

	applied := new(models.FoodState)
	m := mutation{
		apply: func() {
			*applied = next
			s.states[food.ID] = applied
			s.logs = append(s.logs, entry)
		},
		undo: func() {
			// a later log of the same food has already replaced this state
			if s.states[food.ID] == applied {
				if prev == nil {
					delete(s.states, food.ID)
				} else {
					st := *prev
					s.states[food.ID] = &st
				}
			}
			s.removeLog(entry.ID)
		},
	}
	m.apply()

	var events []Event
	event := func(kind EventKind) Event {
		return Event{Kind: kind, UserID: t.userID, FoodID: food.ID, FoodName: food.Name, At: now}
	}
	if next.Status == models.StatusSafe && prevStatus != models.StatusSafe {
		events = append(events, event(EventFoodMarkedSafe))
	}
	if food.IsAllergen {
		if food.AllergenFamily != "" && !familyBefore && s.familySafe(food.AllergenFamily) {
			e := event(EventAllergenFamilyCompleted)
			e.Family = food.AllergenFamily
			events = append(events, e)
		}
		if !allBefore && s.allAllergensSafe() {
			events = append(events, event(EventAllAllergensCompleted))
		}
	}
	// a count that falls after a reaction and climbs back celebrates again
	milestone := 0
	if triedAfter := s.triedCount(); triedAfter > triedBefore && slices.Contains(Milestones, triedAfter) {
		milestone = triedAfter
		e := event(EventMilestoneReached)
		e.Milestone = milestone
		events = append(events, e)
	}
	babyName := s.user.BabyName
	s.mu.Unlock()

	generatedID := next.ID
	if err := t.store.SaveFoodState(ctx, &next); err != nil {
		t.rollback("log food", m)
		t.metrics.FoodLogged("failed")
		return nil, &PersistenceError{Op: "save food state", Err: err}
	}
	adopted := next.ID != generatedID
	if adopted {
		// another session created the row first; keep its id
		entry.StateID = next.ID
		t.adoptStateID(food.ID, applied, entry.ID, next.ID)
	}
	if err := t.store.CreateLog(ctx, &entry); err != nil {
		if t.stateIsCurrent(food.ID, applied) && !adopted {
			t.compensateState(ctx, prev, next)
		}
		t.rollback("log food", m)
		t.metrics.FoodLogged("failed")
		return nil, &PersistenceError{Op: "create log", Err: err}
	}

	t.metrics.FoodLogged("ok")
	t.log.Debugw("food logged", "food_id", food.ID, "status", next.Status, "exposures", next.ExposureCount)
	t.bus.Publish(events...)
	if milestone > 0 {
		t.notifyMilestone(babyName, food, milestone)
	}

	return &LogResult{State: next, Log: entry, Events: events}, nil
}

func (t *Tracker) rollback(op string, m mutation) {
	t.sess.mu.Lock()
	m.undo()
	t.sess.mu.Unlock()
	t.metrics.RolledBack(op)
	t.log.Warnw("store write failed, local update reverted", "op", op)
}

func (t *Tracker) stateIsCurrent(foodID uint, st *models.FoodState) bool {
	t.sess.mu.RLock()
	defer t.sess.mu.RUnlock()
	return t.sess.states[foodID] == st
}

func (t *Tracker) adoptStateID(foodID uint, applied *models.FoodState, logID, stateID string) {
	s := t.sess
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.states[foodID]; st != nil && st.ID == applied.ID {
		st.ID = stateID
	}
	for i := range s.logs {
		if s.logs[i].StateID == applied.ID || s.logs[i].ID == logID {
			s.logs[i].StateID = stateID
		}
	}
	applied.ID = stateID
}

// compensateState puts the remote state row back the way it was after the
// state write succeeded but the log insert did not.
func (t *Tracker) compensateState(ctx context.Context, prev *models.FoodState, written models.FoodState) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var err error
	if prev == nil {
		err = t.store.DeleteFoodState(ctx, t.userID, written.ID)
	} else {
		restore := *prev
		err = t.store.SaveFoodState(ctx, &restore)
	}
	if err != nil {
		t.log.Errorw("could not restore food state after failed log insert", "state_id", written.ID, "error", err)
	}
}

func (t *Tracker) notifyMilestone(babyName string, food models.Food, milestone int) {
	if t.dispatcher == nil {
		return
	}
	if babyName == "" {
		babyName = "Your little one"
	}
	n := Notification{
		UserID:      t.userID,
		Title:       fmt.Sprintf("%d foods tried! 🎉", milestone),
		Body:        fmt.Sprintf("%s just tried %s. That makes %d foods so far.", babyName, food.Name, milestone),
		Type:        models.NotificationMilestone,
		ReferenceID: strconv.FormatUint(uint64(food.ID), 10),
	}

	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.notifyTimeout)
		defer cancel()
		if err := t.dispatcher.Dispatch(ctx, n); err != nil {
			t.metrics.Notified(n.Type, "failed")
			t.log.Warnw("milestone notification failed", "milestone", milestone, "error", err)
			return
		}
		t.metrics.Notified(n.Type, "sent")
	}()
}

// LogUpdate holds the editable fields of a log; nil fields are left as they are.
type LogUpdate struct {
	Severity  *int       `json:"reaction_severity"`
	Notes     *string    `json:"notes"`
	CreatedAt *time.Time `json:"created_at"`
}

// UpdateLog edits a log after the fact. The owning food state keeps the
// status and exposure count it was given when the log was first recorded.
func (t *Tracker) UpdateLog(ctx context.Context, logID string, u LogUpdate) (*models.FoodLog, error) {
	if u.Severity != nil {
		if err := validSeverity(*u.Severity); err != nil {
			return nil, err
		}
	}

	s := t.sess
	s.mu.Lock()
	i := s.logIndex(logID)
	if i < 0 {
		s.mu.Unlock()
		return nil, notFound("log", logID)
	}
	prev := s.logs[i]
	next := prev
	if u.Severity != nil {
		next.ReactionSeverity = *u.Severity
	}
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	if u.CreatedAt != nil {
		next.CreatedAt = *u.CreatedAt
	}
	replace := func(l models.FoodLog) func() {
		return func() {
			if j := s.logIndex(logID); j >= 0 {
				s.logs[j] = l
			}
		}
	}
	m := mutation{apply: replace(next), undo: replace(prev)}
	m.apply()
	s.mu.Unlock()

	if err := t.store.UpdateLog(ctx, &next); err != nil {
		t.rollback("update log", m)
		return nil, &PersistenceError{Op: "update log", Err: err}
	}
	return &next, nil
}

// DeleteLog removes a log. The owning food state is not decremented or reverted.
func (t *Tracker) DeleteLog(ctx context.Context, logID string) error {
	s := t.sess
	s.mu.Lock()
	i := s.logIndex(logID)
	if i < 0 {
		s.mu.Unlock()
		return notFound("log", logID)
	}
	removed := s.logs[i]
	m := mutation{
		apply: func() { s.removeLog(logID) },
		undo: func() {
			at := min(i, len(s.logs))
			s.logs = slices.Insert(s.logs, at, removed)
		},
	}
	m.apply()
	s.mu.Unlock()

	if err := t.store.DeleteLog(ctx, t.userID, logID); err != nil {
		t.rollback("delete log", m)
		return &PersistenceError{Op: "delete log", Err: err}
	}
	return nil
}

// ProfileUpdate holds the editable profile fields; nil fields are left as they are.
// ProfilePicture is a base64 data URI uploaded before the profile is saved.
type ProfileUpdate struct {
	ParentName      *string    `json:"parent_name"`
	BabyName        *string    `json:"baby_name"`
	BabyBirthDate   *time.Time `json:"baby_birth_date"`
	ProfilePicture  string     `json:"profile_picture"`
	MilestoneAlerts *bool      `json:"milestone_alerts"`
	ReminderAlerts  *bool      `json:"reminder_alerts"`
}

func (t *Tracker) UpdateProfile(ctx context.Context, u ProfileUpdate) (*models.User, error) {
	if u.BabyBirthDate != nil && u.BabyBirthDate.After(t.now()) {
		return nil, &ValidationError{Field: "baby_birth_date", Reason: "is in the future"}
	}

	var pictureURL string
	if u.ProfilePicture != "" {
		if t.uploader == nil {
			return nil, &ValidationError{Field: "profile_picture", Reason: "uploads are not configured"}
		}
		url, err := t.uploader.UploadBase64Image(ctx, u.ProfilePicture, fmt.Sprintf("profile-pictures/%d", t.userID))
		if err != nil {
			return nil, &PersistenceError{Op: "upload profile picture", Err: err}
		}
		pictureURL = url
	}

	s := t.sess
	s.mu.Lock()
	prev := s.user
	next := prev
	if u.ParentName != nil {
		next.ParentName = *u.ParentName
	}
	if u.BabyName != nil {
		next.BabyName = *u.BabyName
	}
	if u.BabyBirthDate != nil {
		d := *u.BabyBirthDate
		next.BabyBirthDate = &d
	}
	if pictureURL != "" {
		next.ProfilePicture = pictureURL
	}
	if u.MilestoneAlerts != nil {
		next.MilestoneAlerts = *u.MilestoneAlerts
	}
	if u.ReminderAlerts != nil {
		next.ReminderAlerts = *u.ReminderAlerts
	}
	m := mutation{
		apply: func() { s.user = next },
		undo:  func() { s.user = prev },
	}
	m.apply()
	s.mu.Unlock()

	row := next
	if err := t.store.SaveUser(ctx, &row); err != nil {
		t.rollback("update profile", m)
		return nil, &PersistenceError{Op: "save user", Err: err}
	}
	return &next, nil
}

// RefreshData reloads everything from the store, discarding the cache. On
// failure the current cache is kept.
func (t *Tracker) RefreshData(ctx context.Context) error {
	fresh, err := loadSession(ctx, t.store, t.userID)
	if err != nil {
		return err
	}
	s := t.sess
	s.mu.Lock()
	s.user = fresh.user
	s.foods, s.byID = fresh.foods, fresh.byID
	s.states, s.logs = fresh.states, fresh.logs
	s.mu.Unlock()
	return nil
}
