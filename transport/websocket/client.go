package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oakleaf-games/tictactoe-arena/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	sendBufferSize = 64
)

// Client - is one live WebSocket connection with its authenticated user.
// It implements usecase.Client: the read pump feeds inbound messages to the
// server's dispatch, the write pump drains the Send queue to the socket.
type Client struct {
	logger *slog.Logger

	userID string
	conn   *websocket.Conn
	server *Server

	send chan usecase.Event
	done chan struct{}

	mu     sync.Mutex
	roomID string
}

func newClient(logger *slog.Logger, server *Server, conn *websocket.Conn, userID string) *Client {
	return &Client{
		logger: logger,
		userID: userID,
		conn:   conn,
		server: server,
		send:   make(chan usecase.Event, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (that *Client) UserID() string {
	return that.userID
}

func (that *Client) RoomID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.roomID
}

func (that *Client) BindRoom(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.roomID = roomID
}

// Send - queues event for delivery. When the client's buffer is full the
// event is dropped rather than blocking the room's critical section; the
// write deadline will soon tear down such a stalled connection anyway.
func (that *Client) Send(event usecase.Event) {
	select {
	case that.send <- event:
	default:
		that.logger.Warn("dropping event for slow client", "userID", that.userID, "action", event.Action)
	}
}

func (that *Client) run() {
	go that.writePump()
	that.readPump()
}

func (that *Client) readPump() {
	log := that.logger.With("method", "readPump", "userID", that.userID)

	// the send channel is never closed: broadcasts may race a disconnect, and
	// queueing into a dead client's buffer is harmless.
	defer func() {
		that.server.disconnect(that)
		close(that.done)
		_ = that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("failed to read message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			that.sendError("invalid message format")
			continue
		}

		that.server.handleMessage(that, &message)
	}
}

func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case <-that.done:
			_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case event := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *Client) sendError(message string) {
	that.Send(usecase.Event{Action: usecase.ActionError, Payload: usecase.ErrorPayload{Message: message}})
}
