package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"proctor-service/internal/models"
)

var ErrInvalidScore = errors.New("score must not be negative")

// Store persists one ProgressRecord per user. Get returns a zero record for
// a user it has never seen.
type Store interface {
	Get(ctx context.Context, userID string) (models.ProgressRecord, error)
	Save(ctx context.Context, userID string, rec models.ProgressRecord) error
}

// CanAdvance reports whether finishing a game may move the unlock counter.
// Only the game sitting exactly at the user's current index advances it, so
// replaying an already unlocked game cannot inflate the counter.
func CanAdvance(currentIndex, expectedPriorIndex int) bool {
	return currentIndex == expectedPriorIndex
}

type Service struct {
	store Store
	mu    sync.Mutex
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID string) (models.ProgressRecord, error) {
	return s.store.Get(ctx, userID)
}

// RecordCompletion adds the score and advances the unlock counter when the
// guard allows it. It returns the stored record and whether it advanced.
func (s *Service) RecordCompletion(ctx context.Context, userID string, unlockIndex, score int) (models.ProgressRecord, bool, error) {
	if score < 0 {
		return models.ProgressRecord{}, false, ErrInvalidScore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return models.ProgressRecord{}, false, fmt.Errorf("load progress: %w", err)
	}

	advanced := CanAdvance(rec.GamesCompleted, unlockIndex)
	if advanced {
		rec.GamesCompleted++
	}
	rec.TotalScore += score

	if err := s.store.Save(ctx, userID, rec); err != nil {
		return models.ProgressRecord{}, false, fmt.Errorf("save progress: %w", err)
	}

	log.Printf("Progress recorded: user=%s, unlockIndex=%d, advanced=%v, gameProgress=%d, totalScore=%d",
		userID, unlockIndex, advanced, rec.GamesCompleted, rec.TotalScore)
	return rec, advanced, nil
}

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.ProgressRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.ProgressRecord)}
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (models.ProgressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[userID], nil
}

func (m *MemoryStore) Save(ctx context.Context, userID string, rec models.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = rec
	return nil
}

func (m *MemoryStore) TopScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.mu.RLock()
	entries := make([]models.LeaderboardEntry, 0, len(m.records))
	for userID, rec := range m.records {
		entries = append(entries, models.LeaderboardEntry{
			UserID:     userID,
			TotalScore: rec.TotalScore,
			Completed:  rec.GamesCompleted,
		})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.Completed != b.Completed {
			return a.Completed > b.Completed
		}
		return a.UserID < b.UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Ranker is implemented by stores that can order users by score.
type Ranker interface {
	TopScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

var ErrNoLeaderboard = errors.New("progress store cannot rank users")

const MaxLeaderboardSize = 100

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	ranker, ok := s.store.(Ranker)
	if !ok {
		return nil, ErrNoLeaderboard
	}
	if limit <= 0 || limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	return ranker.TopScores(ctx, limit)
}
