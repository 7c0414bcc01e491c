package dto

import (
	"proctor-service/internal/catalog"
	"proctor-service/internal/models"
)

type GamesResponse struct {
	GameProgress int             `json:"gameProgress" example:"3"`
	Games        []catalog.Entry `json:"games"`
}

type ProgressResponse struct {
	UserID       string `json:"user_id" example:"6695dde6-8f6e-4973-905f-077ff7d3e2f8"`
	GameProgress int    `json:"gameProgress" example:"3"`
	TotalScore   int    `json:"totalScore" example:"420"`
	TotalGames   int    `json:"total_games" example:"19"`
}

type LeaderboardResponse struct {
	Entries []models.LeaderboardEntry `json:"entries"`
}
