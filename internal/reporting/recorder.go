package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"proctor-service/internal/constants"
	"proctor-service/internal/models"
)

type AuditStore interface {
	CreateSession(ctx context.Context, session *models.SessionRecord) error
}

type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

type ReportStore interface {
	PutJSON(ctx context.Context, objectName string, body []byte) error
}

// Recorder fans a finished session out to every configured sink. Any sink
// may be nil; failures are logged and never reach the session.
type Recorder struct {
	audit   AuditStore
	events  Publisher
	reports ReportStore
	timeout time.Duration
}

func NewRecorder(audit AuditStore, events Publisher, reports ReportStore) *Recorder {
	return &Recorder{
		audit:   audit,
		events:  events,
		reports: reports,
		timeout: 5 * time.Second,
	}
}

// Event is the message body published for every outcome.
type Event struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	GameID         string    `json:"game_id"`
	Outcome        string    `json:"outcome"`
	Score          int       `json:"score"`
	Reason         string    `json:"reason,omitempty"`
	ViolationCount int       `json:"violation_count"`
	FinishedAt     time.Time `json:"finished_at"`
}

func QueueFor(outcome string) (string, bool) {
	switch outcome {
	case constants.OutcomeCompleted:
		return constants.QueueSessionCompleted, true
	case constants.OutcomeDisqualified:
		return constants.QueueSessionDisqualified, true
	case constants.OutcomeBlocked:
		return constants.QueueSessionBlocked, true
	default:
		return "", false
	}
}

func ReportObjectName(summary models.SessionSummary) string {
	return fmt.Sprintf("reports/%s/%s.json", summary.UserID, summary.SessionID)
}

func (r *Recorder) Record(ctx context.Context, summary models.SessionSummary) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.audit != nil {
		if err := r.writeAudit(ctx, summary); err != nil {
			log.Printf("Failed to write session audit %s: %v", summary.SessionID, err)
		}
	}

	if r.events != nil {
		if queue, ok := QueueFor(summary.Outcome); ok {
			if err := r.publish(ctx, queue, summary); err != nil {
				log.Printf("Failed to publish %s event for session %s: %v", summary.Outcome, summary.SessionID, err)
			}
		}
	}

	// Only sessions that actually ran have something worth reporting.
	if r.reports != nil && summary.Outcome != constants.OutcomeBlocked {
		body, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			log.Printf("Failed to encode integrity report: %v", err)
			return
		}
		if err := r.reports.PutJSON(ctx, ReportObjectName(summary), body); err != nil {
			log.Printf("Failed to upload integrity report for session %s: %v", summary.SessionID, err)
		}
	}
}

func (r *Recorder) writeAudit(ctx context.Context, summary models.SessionSummary) error {
	violations := summary.Violations
	if violations == nil {
		violations = []models.ViolationEvent{}
	}
	data, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("encode violations: %w", err)
	}

	started := summary.StartedAt
	if started.IsZero() {
		started = summary.FinishedAt
	}

	return r.audit.CreateSession(ctx, &models.SessionRecord{
		ID:             summary.SessionID,
		UserID:         summary.UserID,
		GameID:         summary.GameID,
		Outcome:        summary.Outcome,
		Score:          summary.Score,
		Reason:         summary.Reason,
		CameraStatus:   string(summary.CameraStatus),
		ViolationCount: summary.ViolationCount,
		Violations:     string(data),
		StartedAt:      started,
		FinishedAt:     sql.NullTime{Time: summary.FinishedAt, Valid: !summary.FinishedAt.IsZero()},
	})
}

func (r *Recorder) publish(ctx context.Context, queue string, summary models.SessionSummary) error {
	body, err := json.Marshal(Event{
		SessionID:      summary.SessionID,
		UserID:         summary.UserID,
		GameID:         summary.GameID,
		Outcome:        summary.Outcome,
		Score:          summary.Score,
		Reason:         summary.Reason,
		ViolationCount: summary.ViolationCount,
		FinishedAt:     summary.FinishedAt,
	})
	if err != nil {
		return err
	}
	return r.events.Publish(ctx, queue, body)
}
