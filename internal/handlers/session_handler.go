package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"proctor-service/internal/constants"
	"proctor-service/internal/dto"
	"proctor-service/internal/middleware"
	"proctor-service/internal/models"

	"github.com/gin-gonic/gin"
)

const maxHistorySize = 100

type SessionHistory interface {
	GetSession(ctx context.Context, id string) (*models.SessionRecord, error)
	GetSessionsByUser(ctx context.Context, userID string, limit int) ([]*models.SessionRecord, error)
	CountByOutcome(ctx context.Context, userID, outcome string) (int, error)
}

var historyOutcomes = []string{
	constants.OutcomeCompleted,
	constants.OutcomeDisqualified,
	constants.OutcomeBlocked,
	constants.OutcomeAbandoned,
}

type SessionHandler struct {
	sessions SessionHistory
}

func NewSessionHandler(sessions SessionHistory) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetSessions godoc
// @Summary List the caller's finished sessions
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum sessions (default 20, max 100)"
// @Success 200 {object} dto.SessionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/sessions [get]
func (h *SessionHandler) GetSessions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		dto.JsonError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			dto.JsonError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistorySize)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	records, err := h.sessions.GetSessionsByUser(ctx, userID, limit)
	if err != nil {
		log.Printf("Failed to load sessions for user %s: %v", userID, err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to load sessions")
		return
	}

	outcomes := make(map[string]int, len(historyOutcomes))
	for _, outcome := range historyOutcomes {
		n, err := h.sessions.CountByOutcome(ctx, userID, outcome)
		if err != nil {
			log.Printf("Failed to count %s sessions for user %s: %v", outcome, userID, err)
			dto.JsonError(c, http.StatusInternalServerError, "Failed to load sessions")
			return
		}
		outcomes[outcome] = n
	}

	resp := dto.SessionsResponse{
		Sessions: make([]dto.SessionResponse, 0, len(records)),
		Outcomes: outcomes,
	}
	for _, rec := range records {
		resp.Sessions = append(resp.Sessions, dto.NewSessionResponse(rec))
	}

	c.JSON(http.StatusOK, resp)
}

// GetSession godoc
// @Summary Get one of the caller's sessions with its violations
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session id"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		dto.JsonError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := h.sessions.GetSession(ctx, c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		dto.JsonError(c, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		log.Printf("Failed to load session %s: %v", c.Param("id"), err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to load session")
		return
	}
	// Other users' sessions are reported as missing.
	if rec.UserID != userID {
		dto.JsonError(c, http.StatusNotFound, "Session not found")
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(rec))
}
