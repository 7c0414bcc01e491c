package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"proctor-service/config"
	"proctor-service/internal/models"
	"proctor-service/pkg/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	client, err := database.NewClient(&config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return client.GetDB()
}

func TestProgressRepository_MissingUserIsZero(t *testing.T) {
	repo := NewProgressRepository(openTestDB(t))

	rec, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != (models.ProgressRecord{}) {
		t.Errorf("Get = %+v, want zero record", rec)
	}
}

func TestProgressRepository_SaveUpserts(t *testing.T) {
	repo := NewProgressRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, "u1", models.ProgressRecord{GamesCompleted: 1, TotalScore: 40}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := repo.Save(ctx, "u1", models.ProgressRecord{GamesCompleted: 5, TotalScore: 4200}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	rec, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.GamesCompleted != 5 || rec.TotalScore != 4200 {
		t.Errorf("Get = %+v, want {5 4200}", rec)
	}
}

func TestProgressRepository_TopScores(t *testing.T) {
	repo := NewProgressRepository(openTestDB(t))
	ctx := context.Background()

	repo.Save(ctx, "alice", models.ProgressRecord{GamesCompleted: 3, TotalScore: 300})
	repo.Save(ctx, "bob", models.ProgressRecord{GamesCompleted: 5, TotalScore: 300})
	repo.Save(ctx, "carol", models.ProgressRecord{GamesCompleted: 1, TotalScore: 50})

	top, err := repo.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].UserID != "bob" || top[0].Rank != 1 {
		t.Errorf("first = %+v, want bob at rank 1", top[0])
	}
	if top[1].UserID != "alice" || top[1].Rank != 2 {
		t.Errorf("second = %+v, want alice at rank 2", top[1])
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := NewSessionRepository(openTestDB(t))
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &models.SessionRecord{
		ID:             "s-1",
		UserID:         "u1",
		GameID:         "word-match",
		Outcome:        "disqualified",
		Score:          10,
		Reason:         "tab switching violation",
		CameraStatus:   "active",
		ViolationCount: 1,
		Violations:     `[{"kind":"tab_switch"}]`,
		StartedAt:      started,
		FinishedAt:     sql.NullTime{Time: started.Add(time.Minute), Valid: true},
	}
	if err := repo.CreateSession(ctx, rec); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Outcome != "disqualified" || got.Reason != rec.Reason || got.Violations != rec.Violations {
		t.Errorf("GetSession = %+v", got)
	}
	if !got.FinishedAt.Valid {
		t.Error("finished_at lost")
	}

	n, err := repo.CountByOutcome(ctx, "u1", "disqualified")
	if err != nil || n != 1 {
		t.Errorf("CountByOutcome = %d, %v", n, err)
	}

	list, err := repo.GetSessionsByUser(ctx, "u1", 10)
	if err != nil || len(list) != 1 {
		t.Errorf("GetSessionsByUser = %d, %v", len(list), err)
	}

	if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetSession(missing) = %v, want sql.ErrNoRows", err)
	}
}
