package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"proctor-service/internal/catalog"
	"proctor-service/internal/dto"
	"proctor-service/internal/middleware"
	"proctor-service/internal/models"
	"proctor-service/internal/progress"

	"github.com/gin-gonic/gin"
)

type ProgressReader interface {
	Get(ctx context.Context, userID string) (models.ProgressRecord, error)
}

type ProgressService interface {
	ProgressReader
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type ProgressHandler struct {
	progress ProgressService
}

func NewProgressHandler(progress ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// ListGames godoc
// @Summary List the catalog with lock state
// @Tags games
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.GamesResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/games [get]
func (h *ProgressHandler) ListGames(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.GamesResponse{
		GameProgress: rec.GamesCompleted,
		Games:        catalog.WithLocks(rec.GamesCompleted),
	})
}

// GetProgress godoc
// @Summary Get the caller's progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProgressResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	c.JSON(http.StatusOK, dto.ProgressResponse{
		UserID:       userID,
		GameProgress: rec.GamesCompleted,
		TotalScore:   rec.TotalScore,
		TotalGames:   len(catalog.All()),
	})
}

// GetLeaderboard godoc
// @Summary Top users by total score
// @Tags progress
// @Produce json
// @Param limit query int false "Maximum entries (default 10)"
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/leaderboard [get]
func (h *ProgressHandler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			dto.JsonError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := h.progress.Leaderboard(ctx, limit)
	if errors.Is(err, progress.ErrNoLeaderboard) {
		dto.JsonError(c, http.StatusNotImplemented, "Leaderboard is not available")
		return
	}
	if err != nil {
		log.Printf("Failed to load leaderboard: %v", err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	c.JSON(http.StatusOK, dto.LeaderboardResponse{Entries: entries})
}

func (h *ProgressHandler) load(c *gin.Context) (models.ProgressRecord, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		dto.JsonError(c, http.StatusUnauthorized, "User ID not found in context")
		return models.ProgressRecord{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := h.progress.Get(ctx, userID)
	if err != nil {
		log.Printf("Failed to load progress for user %s: %v", userID, err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to load progress")
		return models.ProgressRecord{}, false
	}
	return rec, true
}
