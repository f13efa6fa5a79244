package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus(nil)
	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "a:"+string(e.Kind)) })
	unsubscribe := bus.Subscribe(func(e Event) { got = append(got, "b:"+string(e.Kind)) })

	bus.Publish(Event{Kind: EventFoodMarkedSafe}, Event{Kind: EventMilestoneReached})
	assert.Equal(t, []string{
		"a:food.safe", "b:food.safe",
		"a:milestone.reached", "b:milestone.reached",
	}, got)

	got = nil
	unsubscribe()
	bus.Publish(Event{Kind: EventAllAllergensCompleted})
	assert.Equal(t, []string{"a:allergens.completed"}, got)
}

func TestEventBus_RecoversFromHandlerPanic(t *testing.T) {
	bus := NewEventBus(nil)
	delivered := 0
	bus.Subscribe(func(Event) { panic("bad handler") })
	bus.Subscribe(func(Event) { delivered++ })

	assert.NotPanics(t, func() { bus.Publish(Event{Kind: EventFoodMarkedSafe}) })
	assert.Equal(t, 1, delivered)
}

func TestEventBus_NilIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NotPanics(t, func() { bus.Publish(Event{Kind: EventFoodMarkedSafe}) })
}
