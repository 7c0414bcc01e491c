package repository

import (
	"context"
	"database/sql"
	"errors"

	"proctor-service/internal/models"
)

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get returns a zero record for a user with no row yet.
func (r *ProgressRepository) Get(ctx context.Context, userID string) (models.ProgressRecord, error) {
	query := `SELECT games_completed, total_score FROM progress_records WHERE user_id = $1`

	var rec models.ProgressRecord
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&rec.GamesCompleted, &rec.TotalScore)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProgressRecord{}, nil
	}
	if err != nil {
		return models.ProgressRecord{}, err
	}
	return rec, nil
}

func (r *ProgressRepository) Save(ctx context.Context, userID string, rec models.ProgressRecord) error {
	query := `
		INSERT INTO progress_records (user_id, games_completed, total_score, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE
		SET games_completed = EXCLUDED.games_completed,
			total_score = EXCLUDED.total_score,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, userID, rec.GamesCompleted, rec.TotalScore)
	return err
}

// TopScores ranks users by total score, ties broken by games completed.
func (r *ProgressRepository) TopScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT user_id, total_score, games_completed
		FROM progress_records
		ORDER BY total_score DESC, games_completed DESC, user_id ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		entry := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.UserID, &entry.TotalScore, &entry.Completed); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
