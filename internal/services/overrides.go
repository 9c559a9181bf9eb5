package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/scoutlab/vexscout/internal/models"
)

// OverrideStore holds the human-entered scouting layer for each event:
// manual 1-10 ratings, confirmed head-to-head elimination results, free-form
// notes and live pick tracking. The engine never reads the store directly;
// it gets a snapshot copied at the start of each run.
type OverrideStore interface {
	Snapshot(ctx context.Context, sku string) (models.OverrideSnapshot, error)
	SetRating(ctx context.Context, sku, team string, rating int) error
	AddHeadToHead(ctx context.Context, sku string, record models.HeadToHead) error
	ClearHeadToHead(ctx context.Context, sku string) error
	SetNote(ctx context.Context, sku, team, note string) error
	SetPicked(ctx context.Context, sku, team string, picked bool) error
	ResetPicks(ctx context.Context, sku string) error
}

// RedisOverrideStore keeps one JSON document per event. Overrides survive
// restarts and cache flushes of analysis results do not touch them.
type RedisOverrideStore struct {
	cache  *CacheService
	logger *logrus.Logger
	mu     sync.Mutex
}

func NewRedisOverrideStore(cache *CacheService, logger *logrus.Logger) *RedisOverrideStore {
	return &RedisOverrideStore{cache: cache, logger: logger}
}

func (s *RedisOverrideStore) load(ctx context.Context, sku string) models.OverrideSnapshot {
	var snap models.OverrideSnapshot
	if err := s.cache.Get(ctx, OverridesCacheKey(sku), &snap); err != nil {
		snap = models.OverrideSnapshot{}
	}
	if snap.Ratings == nil {
		snap.Ratings = make(map[string]int)
	}
	if snap.Notes == nil {
		snap.Notes = make(map[string]string)
	}
	return snap
}

func (s *RedisOverrideStore) save(ctx context.Context, sku string, snap models.OverrideSnapshot) error {
	// Overrides never expire; a scout's notes outlive any cache TTL.
	return s.cache.Set(ctx, OverridesCacheKey(sku), snap, 0)
}

func (s *RedisOverrideStore) Snapshot(ctx context.Context, sku string) (models.OverrideSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, sku), nil
}

func (s *RedisOverrideStore) SetRating(ctx context.Context, sku, team string, rating int) error {
	if rating != 0 && (rating < models.ManualRatingMin || rating > models.ManualRatingMax) {
		return fmt.Errorf("rating must be %d-%d or 0 to remove, got %d",
			models.ManualRatingMin, models.ManualRatingMax, rating)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx, sku)
	if rating == 0 {
		delete(snap.Ratings, team)
	} else {
		snap.Ratings[team] = rating
	}
	s.logger.WithFields(logrus.Fields{
		"event":  sku,
		"team":   team,
		"rating": rating,
	}).Info("Manual rating updated")
	return s.save(ctx, sku, snap)
}

func (s *RedisOverrideStore) AddHeadToHead(ctx context.Context, sku string, record models.HeadToHead) error {
	if record.Winner == "" || record.Loser == "" {
		return fmt.Errorf("head-to-head needs both winner and loser")
	}
	if strings.EqualFold(record.Winner, record.Loser) {
		return fmt.Errorf("a team cannot beat itself")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx, sku)
	snap.HeadToHead = append(snap.HeadToHead, record)
	return s.save(ctx, sku, snap)
}

func (s *RedisOverrideStore) ClearHeadToHead(ctx context.Context, sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx, sku)
	snap.HeadToHead = nil
	return s.save(ctx, sku, snap)
}

func (s *RedisOverrideStore) SetNote(ctx context.Context, sku, team, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx, sku)
	if note == "" {
		delete(snap.Notes, team)
	} else {
		snap.Notes[team] = note
	}
	return s.save(ctx, sku, snap)
}

func (s *RedisOverrideStore) SetPicked(ctx context.Context, sku, team string, picked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx, sku)
	filtered := snap.Picked[:0]
	for _, p := range snap.Picked {
		if !strings.EqualFold(p, team) {
			filtered = append(filtered, p)
		}
	}
	snap.Picked = filtered
	if picked {
		snap.Picked = append(snap.Picked, team)
	}
	return s.save(ctx, sku, snap)
}

func (s *RedisOverrideStore) ResetPicks(ctx context.Context, sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx, sku)
	snap.Picked = nil
	return s.save(ctx, sku, snap)
}

// MemoryOverrideStore is the in-process variant used in tests and when no
// Redis is configured.
type MemoryOverrideStore struct {
	mu     sync.Mutex
	events map[string]models.OverrideSnapshot
}

func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{events: make(map[string]models.OverrideSnapshot)}
}

func (s *MemoryOverrideStore) get(sku string) models.OverrideSnapshot {
	snap := s.events[sku]
	if snap.Ratings == nil {
		snap.Ratings = make(map[string]int)
	}
	if snap.Notes == nil {
		snap.Notes = make(map[string]string)
	}
	return snap
}

func (s *MemoryOverrideStore) Snapshot(_ context.Context, sku string) (models.OverrideSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	// Copy so a caller holding the snapshot never races a later write.
	out := models.OverrideSnapshot{
		Ratings:    make(map[string]int, len(snap.Ratings)),
		Notes:      make(map[string]string, len(snap.Notes)),
		HeadToHead: append([]models.HeadToHead(nil), snap.HeadToHead...),
		Picked:     append([]string(nil), snap.Picked...),
	}
	for k, v := range snap.Ratings {
		out.Ratings[k] = v
	}
	for k, v := range snap.Notes {
		out.Notes[k] = v
	}
	return out, nil
}

func (s *MemoryOverrideStore) SetRating(_ context.Context, sku, team string, rating int) error {
	if rating != 0 && (rating < models.ManualRatingMin || rating > models.ManualRatingMax) {
		return fmt.Errorf("rating must be %d-%d or 0 to remove, got %d",
			models.ManualRatingMin, models.ManualRatingMax, rating)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	if rating == 0 {
		delete(snap.Ratings, team)
	} else {
		snap.Ratings[team] = rating
	}
	s.events[sku] = snap
	return nil
}

func (s *MemoryOverrideStore) AddHeadToHead(_ context.Context, sku string, record models.HeadToHead) error {
	if record.Winner == "" || record.Loser == "" {
		return fmt.Errorf("head-to-head needs both winner and loser")
	}
	if strings.EqualFold(record.Winner, record.Loser) {
		return fmt.Errorf("a team cannot beat itself")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	snap.HeadToHead = append(snap.HeadToHead, record)
	s.events[sku] = snap
	return nil
}

func (s *MemoryOverrideStore) ClearHeadToHead(_ context.Context, sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	snap.HeadToHead = nil
	s.events[sku] = snap
	return nil
}

func (s *MemoryOverrideStore) SetNote(_ context.Context, sku, team, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	if note == "" {
		delete(snap.Notes, team)
	} else {
		snap.Notes[team] = note
	}
	s.events[sku] = snap
	return nil
}

func (s *MemoryOverrideStore) SetPicked(_ context.Context, sku, team string, picked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	filtered := snap.Picked[:0]
	for _, p := range snap.Picked {
		if !strings.EqualFold(p, team) {
			filtered = append(filtered, p)
		}
	}
	snap.Picked = filtered
	if picked {
		snap.Picked = append(snap.Picked, team)
	}
	s.events[sku] = snap
	return nil
}

func (s *MemoryOverrideStore) ResetPicks(_ context.Context, sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.get(sku)
	snap.Picked = nil
	s.events[sku] = snap
	return nil
}
