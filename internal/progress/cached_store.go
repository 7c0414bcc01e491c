package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"proctor-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache is the slice of the redis client the store needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedStore reads through a cache and writes through to the inner store.
type CachedStore struct {
	inner Store
	cache Cache
	ttl   time.Duration
}

func NewCachedStore(inner Store, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: cache, ttl: ttl}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("progress:%s", userID)
}

func Encode(rec models.ProgressRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func Decode(data string) (models.ProgressRecord, error) {
	var rec models.ProgressRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return models.ProgressRecord{}, err
	}
	return rec, nil
}

func (s *CachedStore) Get(ctx context.Context, userID string) (models.ProgressRecord, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, cacheKey(userID))
		if err == nil {
			if rec, err := Decode(data); err == nil {
				return rec, nil
			}
			log.Printf("Discarding corrupt cached progress for user %s", userID)
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("Failed to read cached progress: %v", err)
		}
	}

	rec, err := s.inner.Get(ctx, userID)
	if err != nil {
		return models.ProgressRecord{}, err
	}
	s.fill(ctx, userID, rec)
	return rec, nil
}

func (s *CachedStore) Save(ctx context.Context, userID string, rec models.ProgressRecord) error {
	if err := s.inner.Save(ctx, userID, rec); err != nil {
		if s.cache != nil {
			if derr := s.cache.Delete(ctx, cacheKey(userID)); derr != nil {
				log.Printf("Failed to invalidate cached progress: %v", derr)
			}
		}
		return err
	}
	s.fill(ctx, userID, rec)
	return nil
}

func (s *CachedStore) fill(ctx context.Context, userID string, rec models.ProgressRecord) {
	if s.cache == nil {
		return
	}
	data, err := Encode(rec)
	if err != nil {
		log.Printf("Failed to encode progress: %v", err)
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID), data, s.ttl); err != nil {
		log.Printf("Failed to cache progress: %v", err)
	}
}

// TopScores always reads the inner store; the cache only holds per-user rows.
func (s *CachedStore) TopScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	ranker, ok := s.inner.(Ranker)
	if !ok {
		return nil, ErrNoLeaderboard
	}
	return ranker.TopScores(ctx, limit)
}
