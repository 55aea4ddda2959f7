// Package store owns player records and the derived leaderboard.
// Mutations mark the store dirty; a background flusher writes the full
// snapshot through the gateway at a fixed cadence, bounding the
// data-loss window to that interval.
package store

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"rockduel/internal/model"
	"rockduel/internal/reward"
)

const (
	// FlushInterval is the debounced-write cadence.
	FlushInterval = 1200 * time.Millisecond

	// LeaderboardSize caps the derived projection.
	LeaderboardSize = 100

	initialRating = 1000
)

var (
	ErrInvalidIdentity = errors.New("invalid player identity")
	ErrNotFound        = errors.New("player not found")
)

// PlayerStore holds all player records in memory and persists them
// through a Gateway. Reads and mutations are safe against the
// concurrent flusher; the orchestrator is the sole mutator.
type PlayerStore struct {
	mu          sync.RWMutex
	gw          Gateway
	players     map[string]*model.PlayerRecord
	leaderboard []model.LeaderboardEntry
	dirty       bool
}

// Open loads the persisted snapshot through the gateway.
func Open(gw Gateway) (*PlayerStore, error) {
	snap, err := gw.Load()
	if err != nil {
		return nil, err
	}
	return &PlayerStore{
		gw:          gw,
		players:     snap.Players,
		leaderboard: snap.Leaderboard,
	}, nil
}

// Ensure returns the record for an identity, creating it on first
// handshake and refreshing the display name otherwise.
func (s *PlayerStore) Ensure(id, name string, now time.Time) (model.PlayerRecord, error) {
	if id == "" {
		return model.PlayerRecord{}, ErrInvalidIdentity
	}
	name = sanitizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		p = &model.PlayerRecord{
			ID:         id,
			Name:       name,
			Rating:     initialRating,
			RockSkin:   model.DefaultSkinID,
			OwnedSkins: []string{model.DefaultSkinID},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.players[id] = p
	} else {
		p.Name = name
		p.UpdatedAt = now
	}
	s.dirty = true
	return *p, nil
}

// Get returns a copy of the record for an identity.
func (s *PlayerStore) Get(id string) (model.PlayerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.PlayerRecord{}, false
	}
	return *p, true
}

// Update applies fn to the record under the store lock and marks the
// store dirty. Returns false for an unknown identity.
func (s *PlayerStore) Update(id string, now time.Time, fn func(*model.PlayerRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return false
	}
	fn(p)
	p.UpdatedAt = now
	s.dirty = true
	return true
}

// Mutate applies fn to the record in one critical section so callers
// can validate and mutate under a single lock acquisition; fn must
// validate before touching the record. An error from fn is returned
// unchanged and does not mark the store dirty.
func (s *PlayerStore) Mutate(id string, now time.Time, fn func(*model.PlayerRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(p); err != nil {
		return err
	}
	p.UpdatedAt = now
	s.dirty = true
	return nil
}

// Profile builds the public projection with derived level and tier.
func (s *PlayerStore) Profile(id string) (model.Profile, bool) {
	p, ok := s.Get(id)
	if !ok {
		return model.Profile{}, false
	}
	return model.Profile{
		ID:         p.ID,
		Name:       p.Name,
		XP:         p.XP,
		Level:      reward.Level(p.XP),
		Rubies:     p.Rubies,
		Rating:     p.Rating,
		Tier:       reward.Tier(p.Rating),
		Wins:       p.Wins,
		Losses:     p.Losses,
		RockSkin:   p.RockSkin,
		OwnedSkins: append([]string(nil), p.OwnedSkins...),
	}, true
}

// RebuildLeaderboard recomputes the top-N projection from the record
// set. The projection is rebuilt wholesale, never diffed.
func (s *PlayerStore) RebuildLeaderboard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]model.LeaderboardEntry, 0, len(s.players))
	for _, p := range s.players {
		entries = append(entries, model.LeaderboardEntry{
			ID:     p.ID,
			Name:   p.Name,
			Rating: p.Rating,
			Tier:   reward.Tier(p.Rating),
			Level:  reward.Level(p.XP),
			Wins:   p.Wins,
			Losses: p.Losses,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].ID < entries[j].ID
	})
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	s.leaderboard = entries
	s.dirty = true
}

// Leaderboard returns the current projection.
func (s *PlayerStore) Leaderboard() []model.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LeaderboardEntry(nil), s.leaderboard...)
}

// FlushIfDirty writes the snapshot through the gateway when there are
// unsaved mutations.
func (s *PlayerStore) FlushIfDirty() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snap := &Snapshot{
		Players:     make(map[string]*model.PlayerRecord, len(s.players)),
		Leaderboard: append([]model.LeaderboardEntry(nil), s.leaderboard...),
	}
	for id, p := range s.players {
		cp := *p
		snap.Players[id] = &cp
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.gw.Save(snap); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// RunFlusher writes dirty state at FlushInterval until ctx is done,
// then performs a final flush so a controlled shutdown loses nothing.
func (s *PlayerStore) RunFlusher(ctx context.Context) {
	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.FlushIfDirty(); err != nil {
				log.Printf("store flush failed: %v", err)
			}
		case <-ctx.Done():
			if err := s.FlushIfDirty(); err != nil {
				log.Printf("store final flush failed: %v", err)
			}
			return
		}
	}
}

func sanitizeName(name string) string {
	runes := []rune(name)
	if len(runes) > model.MaxNameLength {
		runes = runes[:model.MaxNameLength]
	}
	out := string(runes)
	if out == "" {
		out = "Player"
	}
	return out
}
