package dto

import (
	"encoding/json"
	"time"

	"proctor-service/internal/models"
)

type SessionResponse struct {
	ID             string          `json:"id" example:"0b7e3c1e-8a53-4c55-a0c4-6f1b0f0d1a2b"`
	GameID         string          `json:"game_id" example:"reading-detective"`
	Outcome        string          `json:"outcome" example:"completed"`
	Score          int             `json:"score" example:"40"`
	Reason         string          `json:"reason,omitempty"`
	CameraStatus   string          `json:"camera_status" example:"active"`
	ViolationCount int             `json:"violation_count" example:"1"`
	Violations     json.RawMessage `json:"violations" swaggertype:"array,object"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}

type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Outcomes map[string]int    `json:"outcomes"`
}

func NewSessionResponse(rec *models.SessionRecord) SessionResponse {
	resp := SessionResponse{
		ID:             rec.ID,
		GameID:         rec.GameID,
		Outcome:        rec.Outcome,
		Score:          rec.Score,
		Reason:         rec.Reason,
		CameraStatus:   rec.CameraStatus,
		ViolationCount: rec.ViolationCount,
		Violations:     json.RawMessage("[]"),
		StartedAt:      rec.StartedAt,
	}
	if rec.Violations != "" && json.Valid([]byte(rec.Violations)) {
		resp.Violations = json.RawMessage(rec.Violations)
	}
	if rec.FinishedAt.Valid {
		finished := rec.FinishedAt.Time
		resp.FinishedAt = &finished
	}
	return resp
}
