package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"proctor-service/config"
	"proctor-service/internal/catalog"
	"proctor-service/internal/dto"
	"proctor-service/internal/middleware"
	ws "proctor-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the frontend origin once it is configurable
	},
}

type WebSocketHandler struct {
	hub      *ws.Hub
	config   *config.Config
	progress ProgressReader
}

func NewWebSocketHandler(hub *ws.Hub, cfg *config.Config, progress ProgressReader) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		config:   cfg,
		progress: progress,
	}
}

// HandleWebSocket godoc
// @Summary Open a proctored game session
// @Tags sessions
// @Param game_id query string true "Catalog game id"
// @Param token query string false "Access token when headers cannot be set"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /ws [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		dto.JsonError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	gameID := c.Query("game_id")
	if gameID == "" {
		dto.JsonError(c, http.StatusBadRequest, "Missing game_id")
		return
	}

	game, ok := catalog.Lookup(gameID)
	if !ok {
		dto.JsonError(c, http.StatusNotFound, "Game not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := h.progress.Get(ctx, userID)
	if err != nil {
		log.Printf("Failed to load progress for user %s: %v", userID, err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to load progress")
		return
	}
	if !game.Unlocked(rec.GamesCompleted) {
		dto.JsonError(c, http.StatusForbidden, "Game is locked")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID, game)

	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
