package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventKind string

const (
	EventFoodMarkedSafe          EventKind = "food.safe"
	EventAllergenFamilyCompleted EventKind = "allergen_family.completed"
	EventAllAllergensCompleted   EventKind = "allergens.completed"
	EventMilestoneReached        EventKind = "milestone.reached"
)

// Event is a celebration-worthy outcome of a successful LogFood.
type Event struct {
	Kind      EventKind `json:"kind"`
	UserID    uint      `json:"user_id"`
	FoodID    uint      `json:"food_id,omitempty"`
	FoodName  string    `json:"food_name,omitempty"`
	Family    string    `json:"family,omitempty"`
	Milestone int       `json:"milestone,omitempty"`
	At        time.Time `json:"at"`
}

type EventHandler func(Event)

// EventBus fans events out to subscribers synchronously, in subscription order.
type EventBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]EventHandler
	order    []int
	log      *zap.SugaredLogger
}

func NewEventBus(log *zap.SugaredLogger) *EventBus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EventBus{handlers: make(map[int]EventHandler), log: log}
}

// Subscribe registers h and returns a func that removes it again.
func (b *EventBus) Subscribe(h EventHandler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *EventBus) Publish(events ...Event) {
	if b == nil || len(events) == 0 {
		return
	}
	b.mu.RLock()
	hs := make([]EventHandler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, e := range events {
		for _, h := range hs {
			b.deliver(h, e)
		}
	}
}

func (b *EventBus) deliver(h EventHandler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("event handler panicked", "kind", e.Kind, "user_id", e.UserID, "panic", r)
		}
	}()
	h(e)
}
