package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// Every peer's read loop plus join announcements call Broadcast, so writes to
// a single connection must be serialized or gorilla/websocket corrupts frames.
func TestChatHub_BroadcastSerializesConcurrentWrites(t *testing.T) {
	hub := NewChatHub(nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		hub.join("room-1", conn)
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer peer.Close()

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.rooms["room-1"]) == 1
	}, time.Second, 5*time.Millisecond)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.Broadcast("room-1", ChatMessage{
				Type:   "message",
				RoomID: "room-1",
				Text:   fmt.Sprintf("message %d", n),
			})
		}(i)
	}
	wg.Wait()

	peer.SetReadDeadline(time.Now().Add(time.Second))
	for i := 0; i < writers; i++ {
		var msg ChatMessage
		assert.NoError(t, peer.ReadJSON(&msg))
		assert.Equal(t, "message", msg.Type)
		assert.Equal(t, "room-1", msg.RoomID)
	}
}
