package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"proctor-service/config"
	"proctor-service/internal/constants"
	"proctor-service/internal/dto"
	"proctor-service/internal/middleware"
	"proctor-service/internal/models"

	"github.com/gin-gonic/gin"
)

type fakeHistory struct {
	records []*models.SessionRecord
	limit   int
}

func (f *fakeHistory) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeHistory) GetSessionsByUser(ctx context.Context, userID string, limit int) ([]*models.SessionRecord, error) {
	f.limit = limit
	var out []*models.SessionRecord
	for _, rec := range f.records {
		if rec.UserID == userID && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeHistory) CountByOutcome(ctx context.Context, userID, outcome string) (int, error) {
	n := 0
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Outcome == outcome {
			n++
		}
	}
	return n, nil
}

func newHistoryRouter(history SessionHistory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.AuthConfig{JWTSecret: testSecret}

	r := gin.New()
	h := NewSessionHandler(history)
	sessions := r.Group("/api/sessions", middleware.JWTAuth(cfg))
	sessions.GET("", h.GetSessions)
	sessions.GET("/:id", h.GetSession)
	return r
}

func historyFixture() *fakeHistory {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeHistory{records: []*models.SessionRecord{
		{
			ID: "s1", UserID: "u1", GameID: "reading-detective", Outcome: constants.OutcomeCompleted,
			Score: 40, CameraStatus: string(constants.CameraActive), Violations: "[]",
			StartedAt: started, FinishedAt: sql.NullTime{Time: started.Add(5 * time.Minute), Valid: true},
		},
		{
			ID: "s2", UserID: "u1", GameID: "word-match", Outcome: constants.OutcomeDisqualified,
			Reason: "tab switching violation", CameraStatus: string(constants.CameraActive), ViolationCount: 1,
			Violations: `[{"kind":"tab_switch","timestamp":"2026-03-01T11:00:00Z"}]`,
			StartedAt:  started.Add(time.Hour),
		},
		{
			ID: "s3", UserID: "u2", GameID: "word-match", Outcome: constants.OutcomeBlocked,
			CameraStatus: string(constants.CameraDenied), StartedAt: started,
		},
	}}
}

func TestGetSessions_ListsOwnHistory(t *testing.T) {
	history := historyFixture()
	r := newHistoryRouter(history)

	w := get(r, "/api/sessions?limit=500", tokenFor(t, "u1"))
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", w.Code, w.Body.String())
	}
	if history.limit != maxHistorySize {
		t.Errorf("limit passed = %d, want %d", history.limit, maxHistorySize)
	}

	var resp dto.SessionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(resp.Sessions))
	}
	if resp.Outcomes[constants.OutcomeCompleted] != 1 || resp.Outcomes[constants.OutcomeDisqualified] != 1 {
		t.Errorf("outcomes = %v", resp.Outcomes)
	}
	if resp.Outcomes[constants.OutcomeBlocked] != 0 {
		t.Errorf("blocked = %d, want 0 (belongs to another user)", resp.Outcomes[constants.OutcomeBlocked])
	}
	if resp.Sessions[0].FinishedAt == nil {
		t.Error("completed session lost finished_at")
	}

	var violations []models.ViolationEvent
	if err := json.Unmarshal(resp.Sessions[1].Violations, &violations); err != nil {
		t.Fatalf("decode violations: %v", err)
	}
	if len(violations) != 1 || violations[0].Kind != constants.ViolationTabSwitch {
		t.Errorf("violations = %+v", violations)
	}
}

func TestGetSessions_Rejections(t *testing.T) {
	r := newHistoryRouter(historyFixture())

	if w := get(r, "/api/sessions", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous code = %d, want 401", w.Code)
	}
	if w := get(r, "/api/sessions?limit=0", tokenFor(t, "u1")); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 code = %d, want 400", w.Code)
	}
}

func TestGetSession(t *testing.T) {
	r := newHistoryRouter(historyFixture())
	token := tokenFor(t, "u1")

	w := get(r, "/api/sessions/s2", token)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", w.Code, w.Body.String())
	}
	var resp dto.SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != constants.OutcomeDisqualified || resp.Reason != "tab switching violation" {
		t.Errorf("session = %+v", resp)
	}

	if w := get(r, "/api/sessions/missing", token); w.Code != http.StatusNotFound {
		t.Errorf("missing code = %d, want 404", w.Code)
	}
	if w := get(r, "/api/sessions/s3", token); w.Code != http.StatusNotFound {
		t.Errorf("other user's session code = %d, want 404", w.Code)
	}
}
