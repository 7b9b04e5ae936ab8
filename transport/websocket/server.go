package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/usecase"
)

const authCookieName = "auth_token"

type coordinator interface {
	Join(ctx context.Context, client usecase.Client, roomID string) error
	Move(ctx context.Context, client usecase.Client, roomID string, cell int) error
	Leave(client usecase.Client, roomID string)
	Disconnect(client usecase.Client)
}

type tokenParser interface {
	ParseToken(tokenString string) (string, error)
}

// Server - accepts WebSocket connections, authenticates them before the
// upgrade and dispatches decoded client messages to the coordinator.
type Server struct {
	logger *slog.Logger

	coordinator coordinator
	auth        tokenParser
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, client *Client, message *Message) error
}

func New(logger *slog.Logger, coordinator coordinator, auth tokenParser) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		coordinator: coordinator,
		auth:        auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}

	server.handlers = map[string]func(context.Context, *Client, *Message) error{
		actionJoinRoom:  server.handleJoinRoom,
		actionMakeMove:  server.handleMakeMove,
		actionLeaveRoom: server.handleLeaveRoom,
	}

	return server
}

// Start - serves /ws on port until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - authenticates the request, upgrades it and runs the client pumps.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	userID, err := that.authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("connection established", "userID", userID)

	client := newClient(that.logger, that, conn, userID)
	client.run()
}

// authenticate - resolves the pre-authenticated user from the session cookie
// or an Authorization bearer token.
func (that *Server) authenticate(r *http.Request) (string, error) {
	tokenString := ""

	if cookie, err := r.Cookie(authCookieName); err == nil {
		tokenString = cookie.Value
	}

	if tokenString == "" {
		const bearerPrefix = "Bearer "
		if header := r.Header.Get("Authorization"); len(header) > len(bearerPrefix) {
			tokenString = header[len(bearerPrefix):]
		}
	}

	if tokenString == "" {
		return "", errors.New("missing auth token")
	}

	userID, err := that.auth.ParseToken(tokenString)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	return userID, nil
}

// handleMessage - routes one decoded frame. Rejections only ever reach the
// connection that caused them.
func (that *Server) handleMessage(client *Client, message *Message) {
	handler, ok := that.handlers[message.Action]
	if !ok {
		client.sendError(fmt.Sprintf("%v: %s", ErrUnknownAction, message.Action))
		return
	}

	ctx := context.Background()

	if err := handler(ctx, client, message); err != nil {
		client.sendError(clientMessage(err))
	}
}

func (that *Server) handleJoinRoom(ctx context.Context, client *Client, message *Message) error {
	payload, err := decodeJoinRoom(message.Payload)
	if err != nil {
		return err
	}

	return that.coordinator.Join(ctx, client, payload.RoomID)
}

func (that *Server) handleMakeMove(ctx context.Context, client *Client, message *Message) error {
	payload, err := decodeMakeMove(message.Payload)
	if err != nil {
		return err
	}

	return that.coordinator.Move(ctx, client, payload.RoomID, *payload.Cell)
}

func (that *Server) handleLeaveRoom(_ context.Context, client *Client, message *Message) error {
	payload, err := decodeLeaveRoom(message.Payload)
	if err != nil {
		return err
	}

	that.coordinator.Leave(client, payload.RoomID)

	return nil
}

func (that *Server) disconnect(client *Client) {
	that.coordinator.Disconnect(client)
	that.logger.Info("connection closed", "userID", client.UserID())
}

// clientMessage - maps coordinator rejections to the messages shown inline
// to the acting player.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, apperror.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, apperror.ErrGameNotInProgress):
		return "Game is not in progress"
	case errors.Is(err, apperror.ErrNotAPlayer):
		return "You are not a player in this game"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "It's not your turn"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "Cell is already occupied"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "Invalid cell index"
	case errors.Is(err, ErrMalformedPayload):
		return err.Error()
	default:
		return "Failed to process request"
	}
}
