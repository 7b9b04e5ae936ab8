package websocket

import (
	"sync"

	"github.com/oakleaf-games/tictactoe-arena/internal/usecase"
)

// Hub - keeps the room-scoped broadcast groups: for every room id, the set of
// live connections currently watching it. It implements usecase.RoomGroups.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[usecase.Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[usecase.Client]struct{}),
	}
}

// Join - adds client to the room's group. Joining twice has no extra effect.
func (that *Hub) Join(roomID string, client usecase.Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group, ok := that.rooms[roomID]
	if !ok {
		group = make(map[usecase.Client]struct{})
		that.rooms[roomID] = group
	}

	group[client] = struct{}{}
}

// Leave - removes client from the room's group. Leaving a group the client
// is not in is a no-op.
func (that *Hub) Leave(roomID string, client usecase.Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(group, client)

	if len(group) == 0 {
		delete(that.rooms, roomID)
	}
}

// Broadcast - delivers event to every current member of the room's group.
// Fire and forget: Send queues on the member's outbound channel and never
// blocks the caller.
func (that *Hub) Broadcast(roomID string, event usecase.Event) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for client := range that.rooms[roomID] {
		client.Send(event)
	}
}

// Members - reports the current group size. Used by tests and logging.
func (that *Hub) Members(roomID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms[roomID])
}
