package session

import (
	"time"

	"proctor-service/internal/catalog"
	"proctor-service/internal/constants"
	"proctor-service/internal/disqualification"
	"proctor-service/internal/integrity"
	"proctor-service/internal/models"
)

// Presenter renders session state on the client. Implementations must not
// block: they are called with the session lock held.
type Presenter interface {
	PhaseChanged(snap Snapshot)
	Instructions(game catalog.Game)
	Monitoring(active bool, listeners []integrity.SignalType)
	GameStarted(snap Snapshot)
	Tick(snap Snapshot)
	Violation(ev models.ViolationEvent, violationCount int)
	Warning(w Warning)
	Disqualified(reason string, redirectIn time.Duration)
	Completed(res CompletionResult)
	Redirect(path, message string)
}

type Warning struct {
	Kind      constants.ViolationKind `json:"kind"`
	Count     int                     `json:"count"`
	Remaining int                     `json:"remaining"`
	Message   string                  `json:"message"`
}

type CompletionResult struct {
	Score    int                   `json:"score"`
	Progress models.ProgressRecord `json:"progress"`
	Advanced bool                  `json:"advanced"`
	Saved    bool                  `json:"saved"`
}

type Snapshot struct {
	ID                     string                  `json:"id"`
	GameID                 string                  `json:"game_id"`
	Phase                  constants.Phase         `json:"phase"`
	Score                  int                     `json:"score"`
	TimeRemaining          int                     `json:"time_remaining"`
	QuestionIndex          int                     `json:"question_index"`
	TotalQuestions         int                     `json:"total_questions"`
	CameraStatus           constants.CameraStatus  `json:"camera_status"`
	FaceCount              int                     `json:"face_count"`
	AnomalySeconds         int                     `json:"anomaly_seconds"`
	IntegrityState         disqualification.State  `json:"integrity_state"`
	ViolationCount         int                     `json:"violation_count"`
	Violations             []models.ViolationEvent `json:"violations,omitempty"`
	DisqualificationReason string                  `json:"disqualification_reason,omitempty"`
}
