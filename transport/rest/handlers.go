package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
)

const (
	authCookieName   = "auth_token"
	authCookieMaxAge = 72 * 60 * 60

	userIDContextKey = "userID"
)

type userService interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type authService interface {
	GenerateToken(userID string) (string, error)
	ParseToken(tokenString string) (string, error)
}

type roomStore interface {
	Create(ctx context.Context, name, hostID string) (*entity.Room, error)
	ListAvailable(ctx context.Context) []*entity.Room
}

type gameHistory interface {
	ListByPlayer(ctx context.Context, userID string) ([]*entity.GameRecord, error)
}

// Handler - carries the HTTP API: auth flow, lobby room browsing and the
// finished-game history of the signed-in user.
type Handler struct {
	logger *slog.Logger

	users userService
	auth  authService
	rooms roomStore
	games gameHistory
}

func NewHandler(logger *slog.Logger, users userService, auth authService, rooms roomStore, games gameHistory) *Handler {
	return &Handler{
		logger: logger.With("component", "rest"),
		users:  users,
		auth:   auth,
		rooms:  rooms,
		games:  games,
	}
}

func (that *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ping", that.Ping)

	api := router.Group("/api")
	{
		api.POST("/auth/register", that.Register)
		api.POST("/auth/login", that.Login)
		api.POST("/auth/logout", that.Logout)

		authed := api.Group("", that.requireAuth)
		{
			authed.GET("/auth/me", that.Me)
			authed.POST("/rooms", that.CreateRoom)
			authed.GET("/rooms", that.ListRooms)
			authed.GET("/games", that.ListGames)
			authed.GET("/games/stats", that.Stats)
		}
	}

	return router
}

func (that *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (that *Handler) Register(c *gin.Context) {
	log := that.logger.With("method", "Register")

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := that.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, apperror.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("failed to register user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if !that.setSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (that *Handler) Login(c *gin.Context) {
	log := that.logger.With("method", "Login")

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := that.users.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("failed to login user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if !that.setSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusOK, user)
}

func (that *Handler) Logout(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (that *Handler) Me(c *gin.Context) {
	user, err := that.users.GetByID(c.Request.Context(), c.GetString(userIDContextKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (that *Handler) CreateRoom(c *gin.Context) {
	log := that.logger.With("method", "CreateRoom")

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := that.rooms.Create(c.Request.Context(), req.Name, c.GetString(userIDContextKey))
	if errors.Is(err, apperror.ErrEmptyRoomName) || errors.Is(err, apperror.ErrRoomNameTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("failed to create room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (that *Handler) ListRooms(c *gin.Context) {
	rooms := that.rooms.ListAvailable(c.Request.Context())
	if rooms == nil {
		rooms = []*entity.Room{}
	}

	c.JSON(http.StatusOK, rooms)
}

func (that *Handler) ListGames(c *gin.Context) {
	log := that.logger.With("method", "ListGames")

	records, err := that.games.ListByPlayer(c.Request.Context(), c.GetString(userIDContextKey))
	if err != nil {
		log.Error("failed to list games", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if records == nil {
		records = []*entity.GameRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// Stats - aggregates the signed-in user's results from their game history.
func (that *Handler) Stats(c *gin.Context) {
	log := that.logger.With("method", "Stats")

	userID := c.GetString(userIDContextKey)

	records, err := that.games.ListByPlayer(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list games", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	var wins, draws int
	for _, record := range records {
		switch {
		case record.WinnerID == userID:
			wins++
		case record.Result == entity.ResultDraw:
			draws++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"wins":       wins,
		"losses":     len(records) - wins - draws,
		"draws":      draws,
		"totalGames": len(records),
	})
}

func (that *Handler) requireAuth(c *gin.Context) {
	tokenString, err := c.Cookie(authCookieName)
	if err != nil || tokenString == "" {
		const bearerPrefix = "Bearer "
		if header := c.GetHeader("Authorization"); len(header) > len(bearerPrefix) {
			tokenString = header[len(bearerPrefix):]
		}
	}

	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := that.auth.ParseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.Set(userIDContextKey, userID)
	c.Next()
}

func (that *Handler) setSession(c *gin.Context, userID string) bool {
	token, err := that.auth.GenerateToken(userID)
	if err != nil {
		that.logger.Error("failed to generate auth token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return false
	}

	c.SetCookie(authCookieName, token, authCookieMaxAge, "/", "", false, true)

	return true
}
