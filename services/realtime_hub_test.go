package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeHub_ForwardsBusEvents(t *testing.T) {
	hub := NewRealtimeHub(nil)
	bus := NewEventBus(nil)
	defer hub.Attach(bus)()

	registered := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cl := &WSClient{UserID: testUser, Conn: conn}
		hub.Register(cl)
		close(registered)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unregister(cl)
				return
			}
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}
	assert.Equal(t, 1, hub.Connections())

	bus.Publish(
		Event{Kind: EventFoodMarkedSafe, UserID: testUser + 1, FoodName: "not mine"},
		Event{Kind: EventAllergenFamilyCompleted, UserID: testUser, Family: "Egg"},
	)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventAllergenFamilyCompleted, got.Kind)
	assert.Equal(t, "Egg", got.Family)
}
