package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakleaf-games/tictactoe-arena/internal/usecase"
)

type stubClient struct {
	userID string

	mu     sync.Mutex
	roomID string
	events []usecase.Event
}

func (that *stubClient) UserID() string { return that.userID }

func (that *stubClient) RoomID() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.roomID
}

func (that *stubClient) BindRoom(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.roomID = roomID
}

func (that *stubClient) Send(event usecase.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.events = append(that.events, event)
}

func (that *stubClient) received() []usecase.Event {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]usecase.Event(nil), that.events...)
}

func TestHub_Join(t *testing.T) {
	hub := NewHub()
	client := &stubClient{userID: "u1"}

	// When: the same client joins the same room twice
	hub.Join("room-1", client)
	hub.Join("room-1", client)

	// Then: it is counted once
	assert.Equal(t, 1, hub.Members("room-1"))
}

func TestHub_Leave(t *testing.T) {
	hub := NewHub()
	first := &stubClient{userID: "u1"}
	second := &stubClient{userID: "u2"}

	hub.Join("room-1", first)
	hub.Join("room-1", second)

	hub.Leave("room-1", first)
	assert.Equal(t, 1, hub.Members("room-1"))

	// Leaving a room the client is not in changes nothing.
	hub.Leave("room-1", first)
	hub.Leave("room-2", first)
	assert.Equal(t, 1, hub.Members("room-1"))

	hub.Leave("room-1", second)
	assert.Equal(t, 0, hub.Members("room-1"))
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	first := &stubClient{userID: "u1"}
	second := &stubClient{userID: "u2"}
	outsider := &stubClient{userID: "u3"}

	hub.Join("room-1", first)
	hub.Join("room-1", second)
	hub.Join("room-2", outsider)

	// When: an event is broadcast to room-1
	event := usecase.Event{Action: usecase.ActionRoomUpdate}
	hub.Broadcast("room-1", event)

	// Then: both members got it, the outsider did not
	assert.Len(t, first.received(), 1)
	assert.Len(t, second.received(), 1)
	assert.Empty(t, outsider.received())

	// Broadcasting to an empty room is a no-op.
	hub.Broadcast("room-9", event)
}
