// Package matchmaking holds the casual and ranked waitlists and the
// pairing passes run once per scheduler cycle.
package matchmaking

import (
	"fmt"
	"sort"
	"time"
)

// Kind selects which waitlist an entry joins.
type Kind string

const (
	KindCasual Kind = "casual"
	KindRanked Kind = "ranked"
)

const (
	// RankGateLevel is the minimum derived level for ranked play.
	RankGateLevel = 15

	// MaxWait evicts entries that have waited too long.
	MaxWait = 5 * time.Minute

	// Ranked gap widening: the allowed rating gap starts at BaseGap and
	// grows by GapIncrement for every full GapInterval waited.
	BaseGap      = 120
	GapIncrement = 60
	GapInterval  = 10 * time.Second
)

// Entry is one waiting player.
type Entry struct {
	SessionID  string
	PlayerID   string
	Name       string
	Rating     int
	EnqueuedAt time.Time
}

// Pair is a successful pairing, oldest entry first.
type Pair struct {
	A, B   Entry
	Ranked bool
}

// RankLockedError rejects a ranked join below the level gate.
type RankLockedError struct {
	NeedLevel int
}

func (e *RankLockedError) Error() string {
	return fmt.Sprintf("ranked queue requires level %d", e.NeedLevel)
}

// Queue owns both waitlists. It is not safe for concurrent use; the
// orchestrator is its sole owner.
type Queue struct {
	casual []Entry
	ranked []Entry
}

func New() *Queue {
	return &Queue{}
}

// Join enqueues an entry, first removing any previous entry for the
// same player so a player occupies at most one queue at a time. Ranked
// joins below the level gate are rejected without enqueueing.
func (q *Queue) Join(e Entry, kind Kind, level int) error {
	if kind == KindRanked && level < RankGateLevel {
		return &RankLockedError{NeedLevel: RankGateLevel}
	}
	q.Leave(e.PlayerID)
	if kind == KindRanked {
		q.ranked = append(q.ranked, e)
	} else {
		q.casual = append(q.casual, e)
	}
	return nil
}

// Leave removes the player from whichever queue holds them. Removing an
// absent player is a no-op.
func (q *Queue) Leave(playerID string) {
	q.casual = removePlayer(q.casual, playerID)
	q.ranked = removePlayer(q.ranked, playerID)
}

// LeaveSession removes the player's entry only when it is backed by the
// given session, so a stale session of the same identity cannot evict
// the entry a live session enqueued.
func (q *Queue) LeaveSession(playerID, sessionID string) {
	q.casual = removeSessionEntry(q.casual, playerID, sessionID)
	q.ranked = removeSessionEntry(q.ranked, playerID, sessionID)
}

// Contains reports whether the player is waiting in either queue.
func (q *Queue) Contains(playerID string) bool {
	for _, e := range q.casual {
		if e.PlayerID == playerID {
			return true
		}
	}
	for _, e := range q.ranked {
		if e.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Len returns the number of entries waiting in one queue.
func (q *Queue) Len(kind Kind) int {
	if kind == KindRanked {
		return len(q.ranked)
	}
	return len(q.casual)
}

// Sweep evicts entries whose backing session is gone or whose wait
// exceeds MaxWait. Called once per cycle before matching.
func (q *Queue) Sweep(now time.Time, alive func(sessionID string) bool) {
	q.casual = sweep(q.casual, now, alive)
	q.ranked = sweep(q.ranked, now, alive)
}

// MatchCasual pops the two oldest entries while at least two remain.
func (q *Queue) MatchCasual() []Pair {
	var pairs []Pair
	for len(q.casual) >= 2 {
		a, b := q.casual[0], q.casual[1]
		q.casual = q.casual[2:]
		pairs = append(pairs, Pair{A: a, B: b})
	}
	return pairs
}

// MatchRanked pairs rating-compatible entries, oldest waiter first. For
// each head entry the allowed gap widens with its wait time; the later
// entry with the smallest gap inside it wins, earlier enqueue breaking
// ties. Heads without a partner stay queued.
func (q *Queue) MatchRanked(now time.Time) []Pair {
	sort.SliceStable(q.ranked, func(i, j int) bool {
		return q.ranked[i].EnqueuedAt.Before(q.ranked[j].EnqueuedAt)
	})

	var pairs []Pair
	for i := 0; i < len(q.ranked); {
		head := q.ranked[i]
		maxGap := AllowedGap(now.Sub(head.EnqueuedAt))

		bestJ := -1
		bestGap := maxGap + 1
		for j := i + 1; j < len(q.ranked); j++ {
			gap := head.Rating - q.ranked[j].Rating
			if gap < 0 {
				gap = -gap
			}
			if gap <= maxGap && gap < bestGap {
				bestGap = gap
				bestJ = j
			}
		}

		if bestJ < 0 {
			i++
			continue
		}

		partner := q.ranked[bestJ]
		// Remove the higher index first so the head index stays valid.
		q.ranked = append(q.ranked[:bestJ], q.ranked[bestJ+1:]...)
		q.ranked = append(q.ranked[:i], q.ranked[i+1:]...)
		pairs = append(pairs, Pair{A: head, B: partner, Ranked: true})
	}
	return pairs
}

// AllowedGap is the rating gap permitted after waiting for the given
// duration.
func AllowedGap(wait time.Duration) int {
	if wait < 0 {
		wait = 0
	}
	return BaseGap + GapIncrement*int(wait/GapInterval)
}

func removePlayer(entries []Entry, playerID string) []Entry {
	for i, e := range entries {
		if e.PlayerID == playerID {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func removeSessionEntry(entries []Entry, playerID, sessionID string) []Entry {
	for i, e := range entries {
		if e.PlayerID == playerID && e.SessionID == sessionID {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func sweep(entries []Entry, now time.Time, alive func(string) bool) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if alive != nil && !alive(e.SessionID) {
			continue
		}
		if now.Sub(e.EnqueuedAt) > MaxWait {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
