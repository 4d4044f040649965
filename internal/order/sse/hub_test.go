package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSendToUser(t *testing.T) {
	hub := NewHub(nil)
	alice := &Client{ID: "a1", UserID: "alice", Events: make(chan Event, 4)}
	bob := &Client{ID: "b1", UserID: "bob", Events: make(chan Event, 4)}
	hub.Register(alice)
	hub.Register(bob)
	assert.Equal(t, 2, hub.ClientCount())

	hub.PublishNotification("alice", map[string]string{"type": "drawing_assigned"})

	require.Len(t, alice.Events, 1)
	assert.Len(t, bob.Events, 0)
	ev := <-alice.Events
	assert.Equal(t, "notification", ev.EventType)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(ev.Data), &payload))
	assert.Equal(t, "drawing_assigned", payload["type"])
}

func TestHubBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{ID: "s1", UserID: "u", Events: make(chan Event, 1)}
	hub.Register(slow)

	hub.PublishItemUpdate("p1", "i1", "in_production")
	hub.PublishProjectUpdate("p1", "status_changed")

	assert.Len(t, slow.Events, 1)
	ev := <-slow.Events
	assert.Equal(t, "item_update", ev.EventType)
	assert.Contains(t, ev.Data, `"status":"in_production"`)
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{ID: "c1", UserID: "u", Events: make(chan Event, 1)}
	hub.Register(c)
	hub.Unregister("c1")
	hub.Unregister("c1")

	_, ok := <-c.Events
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}
