package repository

import (
	"context"
	"database/sql"

	"proctor-service/internal/models"
)

// SessionRepository stores the audit trail of finished sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, session *models.SessionRecord) error {
	query := `
		INSERT INTO proctor_sessions (id, user_id, game_id, outcome, score, reason, camera_status, violation_count, violations, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.GameID,
		session.Outcome,
		session.Score,
		session.Reason,
		session.CameraStatus,
		session.ViolationCount,
		session.Violations,
		session.StartedAt,
		session.FinishedAt,
	)
	return err
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	query := `
		SELECT id, user_id, game_id, outcome, score, reason, camera_status, violation_count, violations, started_at, finished_at
		FROM proctor_sessions
		WHERE id = $1
	`
	session := &models.SessionRecord{}
	err := scanSession(r.db.QueryRowContext(ctx, query, id), session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *SessionRepository) GetSessionsByUser(ctx context.Context, userID string, limit int) ([]*models.SessionRecord, error) {
	query := `
		SELECT id, user_id, game_id, outcome, score, reason, camera_status, violation_count, violations, started_at, finished_at
		FROM proctor_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.SessionRecord
	for rows.Next() {
		session := &models.SessionRecord{}
		if err := scanSession(rows, session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) CountByOutcome(ctx context.Context, userID, outcome string) (int, error) {
	query := `SELECT COUNT(*) FROM proctor_sessions WHERE user_id = $1 AND outcome = $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, userID, outcome).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner, session *models.SessionRecord) error {
	return row.Scan(
		&session.ID,
		&session.UserID,
		&session.GameID,
		&session.Outcome,
		&session.Score,
		&session.Reason,
		&session.CameraStatus,
		&session.ViolationCount,
		&session.Violations,
		&session.StartedAt,
		&session.FinishedAt,
	)
}
