package models

import (
	"database/sql"
	"time"

	"proctor-service/internal/constants"
)

// ProgressRecord keeps the storage keys the display pages read.
type ProgressRecord struct {
	GamesCompleted int `json:"gameProgress"`
	TotalScore     int `json:"totalScore"`
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	TotalScore int    `json:"total_score"`
	Completed  int    `json:"games_completed"`
}

type ViolationEvent struct {
	Kind      constants.ViolationKind `json:"kind"`
	Timestamp time.Time               `json:"timestamp"`
	Detail    string                  `json:"detail,omitempty"`
}

type SessionSummary struct {
	SessionID      string                 `json:"session_id"`
	UserID         string                 `json:"user_id"`
	GameID         string                 `json:"game_id"`
	Outcome        string                 `json:"outcome"`
	Score          int                    `json:"score"`
	Reason         string                 `json:"reason,omitempty"`
	CameraStatus   constants.CameraStatus `json:"camera_status"`
	ViolationCount int                    `json:"violation_count"`
	Violations     []ViolationEvent       `json:"violations"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     time.Time              `json:"finished_at"`
}

// SessionRecord is the audit row of a finished session.
type SessionRecord struct {
	ID             string
	UserID         string
	GameID         string
	Outcome        string
	Score          int
	Reason         string
	CameraStatus   string
	ViolationCount int
	Violations     string // JSON
	StartedAt      time.Time
	FinishedAt     sql.NullTime
}
