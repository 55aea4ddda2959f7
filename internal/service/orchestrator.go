package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"rockduel/internal/game"
	"rockduel/internal/matchmaking"
	"rockduel/internal/model"
	"rockduel/internal/rating"
	"rockduel/internal/reward"
	"rockduel/internal/store"
)

// TickRate is the fixed scheduler cadence.
const TickRate = time.Second / 30

var ErrAlreadyInMatch = errors.New("player already in a live match")

type liveMatch struct {
	sim      *game.Match
	sessions [2]string // session id per side
}

// Orchestrator drives the fixed-rate cycle: sweep the queues, pair
// waiting players, step every live match, and apply terminal
// consequences through the player store. It exclusively owns the
// queues and the live-match set. Commands arriving from sessions are
// staged under the same lock and take effect at the next cycle.
type Orchestrator struct {
	mu sync.Mutex

	store       *store.PlayerStore
	queue       *matchmaking.Queue
	broadcaster Broadcaster
	alive       func(sessionID string) bool

	matches  map[string]*liveMatch // room id -> match
	byPlayer map[string]string     // player id -> room id

	lastTick time.Time
	now      func() time.Time
}

func NewOrchestrator(s *store.PlayerStore, b Broadcaster) *Orchestrator {
	return &Orchestrator{
		store:       s,
		queue:       matchmaking.New(),
		broadcaster: b,
		matches:     make(map[string]*liveMatch),
		byPlayer:    make(map[string]string),
		now:         time.Now,
	}
}

// SetSessionChecker installs the liveness probe used by the queue sweep.
func (o *Orchestrator) SetSessionChecker(alive func(sessionID string) bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.alive = alive
}

// Run drives Advance at TickRate until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			o.Advance(t)
		}
	}
}

// Advance runs one scheduler cycle at the given instant. Exported so
// tests can drive the scheduler with a virtual clock.
func (o *Orchestrator) Advance(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	dt := TickRate.Seconds()
	if !o.lastTick.IsZero() {
		dt = now.Sub(o.lastTick).Seconds()
	}
	o.lastTick = now

	o.queue.Sweep(now, o.alive)
	for _, p := range o.queue.MatchRanked(now) {
		o.startMatch(p)
	}
	for _, p := range o.queue.MatchCasual() {
		o.startMatch(p)
	}

	for _, lm := range o.matches {
		events := lm.sim.Step(dt)
		o.emitEvents(lm, events)
		if lm.sim.Over {
			o.finalizeMatch(lm, now)
		} else {
			o.sendToMatch(lm, MsgState, lm.sim.Snapshot())
		}
	}
}

// Handshake ensures the record for an identity and returns the public
// profile with the current leaderboard.
func (o *Orchestrator) Handshake(id, name string) (model.Profile, []model.LeaderboardEntry, error) {
	_, err := o.store.Ensure(id, name, o.now())
	if err != nil {
		return model.Profile{}, nil, err
	}
	o.store.RebuildLeaderboard()
	prof, _ := o.store.Profile(id)
	return prof, o.store.Leaderboard(), nil
}

// JoinQueue enqueues a player. Ranked joins below the level gate return
// a matchmaking.RankLockedError; players already fighting are rejected.
func (o *Orchestrator) JoinQueue(sessionID, playerID string, ranked bool) error {
	rec, ok := o.store.Get(playerID)
	if !ok {
		return ErrUnknownPlayer
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, fighting := o.byPlayer[playerID]; fighting {
		return ErrAlreadyInMatch
	}

	kind := matchmaking.KindCasual
	if ranked {
		kind = matchmaking.KindRanked
	}
	return o.queue.Join(matchmaking.Entry{
		SessionID:  sessionID,
		PlayerID:   playerID,
		Name:       rec.Name,
		Rating:     rec.Rating,
		EnqueuedAt: o.now(),
	}, kind, reward.Level(rec.XP))
}

// LeaveQueue removes the session's queue entry and, when that session
// backs a live match, resolves the match immediately as a forfeit.
func (o *Orchestrator) LeaveQueue(sessionID, playerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue.LeaveSession(playerID, sessionID)
	o.forfeit(sessionID, playerID)
}

// Disconnect handles session loss: identical consequences to an
// explicit leave, applied at the point of notice. Only the departing
// session is affected; another live session of the same identity keeps
// its queue entry and match.
func (o *Orchestrator) Disconnect(sessionID, playerID string) {
	if playerID == "" {
		return
	}
	o.LeaveQueue(sessionID, playerID)
}

// UpdateIntent stages the latest input for a player's live match,
// last write wins. It takes effect on the next cycle.
func (o *Orchestrator) UpdateIntent(playerID string, in game.Intent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if roomID, ok := o.byPlayer[playerID]; ok {
		if lm, ok := o.matches[roomID]; ok {
			lm.sim.SetIntent(playerID, in)
		}
	}
}

// OfflineResult applies a reward claim reported from a local/AI match.
// Claims inside the cooldown window return a reward.CooldownError. The
// cooldown check and the grant run under a single store lock so
// concurrent claims from the same identity cannot double-grant.
func (o *Orchestrator) OfflineResult(playerID string, won bool) (model.Profile, []model.LeaderboardEntry, error) {
	now := o.now()
	grant := reward.ForMatch(won, false)
	err := o.store.Mutate(playerID, now, func(r *model.PlayerRecord) error {
		if err := reward.CheckOfflineClaim(r.LastOfflineRewardAt, now); err != nil {
			return err
		}
		r.LastOfflineRewardAt = now
		r.XP += grant.XP
		r.Rubies += grant.Rubies
		if won {
			r.Wins++
		} else {
			r.Losses++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Profile{}, nil, ErrUnknownPlayer
		}
		return model.Profile{}, nil, err
	}
	o.store.RebuildLeaderboard()

	prof, _ := o.store.Profile(playerID)
	return prof, o.store.Leaderboard(), nil
}

// LiveMatches reports the number of matches currently simulated.
func (o *Orchestrator) LiveMatches() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.matches)
}

// startMatch creates the simulation for a pairing and announces it.
// Caller holds the lock.
func (o *Orchestrator) startMatch(p matchmaking.Pair) {
	roomID := "match_" + uuid.NewString()
	sim := game.NewMatch(roomID, p.Ranked, p.A.PlayerID, p.B.PlayerID)
	lm := &liveMatch{sim: sim, sessions: [2]string{p.A.SessionID, p.B.SessionID}}
	o.matches[roomID] = lm
	o.byPlayer[p.A.PlayerID] = roomID
	o.byPlayer[p.B.PlayerID] = roomID

	o.sendToMatch(lm, MsgMatchStart, MatchStartPayload{
		Room:   roomID,
		Ranked: p.Ranked,
		Players: []MatchStartPlayer{
			{ID: p.A.PlayerID, Name: p.A.Name, Side: game.SideLeft.String()},
			{ID: p.B.PlayerID, Name: p.B.Name, Side: game.SideRight.String()},
		},
	})
	log.Printf("match %s started: %s vs %s (ranked=%v)", roomID, p.A.PlayerID, p.B.PlayerID, p.Ranked)
}

// forfeit resolves the player's live match in favour of the opponent,
// but only when the departing session is one of the match's own: a
// spectating duplicate session cannot end a match it does not back.
// Caller holds the lock.
func (o *Orchestrator) forfeit(sessionID, playerID string) {
	roomID, ok := o.byPlayer[playerID]
	if !ok {
		return
	}
	lm, ok := o.matches[roomID]
	if !ok {
		return
	}
	if lm.sessions[0] != sessionID && lm.sessions[1] != sessionID {
		return
	}
	lm.sim.Forfeit(playerID)
	o.finalizeMatch(lm, o.now())
}

// finalizeMatch applies terminal consequences: rating for ranked
// matches, rewards and counters for both players, leaderboard rebuild,
// match_over notification, and removal from the live set. Caller holds
// the lock.
func (o *Orchestrator) finalizeMatch(lm *liveMatch, now time.Time) {
	sim := lm.sim
	winnerID := sim.WinnerID
	loserID := sim.Combatants[game.SideLeft].PlayerID
	if loserID == winnerID {
		loserID = sim.Combatants[game.SideRight].PlayerID
	}

	if sim.Ranked {
		w, wOK := o.store.Get(winnerID)
		l, lOK := o.store.Get(loserID)
		if wOK && lOK {
			newW, newL := rating.Apply(w.Rating, l.Rating, true)
			o.store.Update(winnerID, now, func(r *model.PlayerRecord) { r.Rating = newW })
			o.store.Update(loserID, now, func(r *model.PlayerRecord) { r.Rating = newL })
		}
	}

	o.applyMatchReward(winnerID, true, sim.Ranked, now)
	o.applyMatchReward(loserID, false, sim.Ranked, now)
	o.store.RebuildLeaderboard()

	profiles := make(map[string]model.Profile, 2)
	if p, ok := o.store.Profile(winnerID); ok {
		profiles[winnerID] = p
	}
	if p, ok := o.store.Profile(loserID); ok {
		profiles[loserID] = p
	}

	o.sendToMatch(lm, MsgMatchOver, MatchOverPayload{
		WinnerID:    winnerID,
		Ranked:      sim.Ranked,
		Reason:      string(sim.Reason),
		Profiles:    profiles,
		Leaderboard: o.store.Leaderboard(),
	})

	delete(o.matches, sim.RoomID)
	delete(o.byPlayer, winnerID)
	delete(o.byPlayer, loserID)
	log.Printf("match %s over: winner=%s reason=%s", sim.RoomID, winnerID, sim.Reason)
}

func (o *Orchestrator) applyMatchReward(playerID string, won, ranked bool, now time.Time) {
	grant := reward.ForMatch(won, ranked)
	o.store.Update(playerID, now, func(r *model.PlayerRecord) {
		r.XP += grant.XP
		r.Rubies += grant.Rubies
		if won {
			r.Wins++
		} else {
			r.Losses++
		}
	})
}

func (o *Orchestrator) emitEvents(lm *liveMatch, events []game.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case game.ShootEvent:
			o.sendToMatch(lm, MsgShoot, ShootPayload{Owner: ev.OwnerID})
		case game.HitEvent:
			o.sendToMatch(lm, MsgHit, HitPayload{Target: ev.TargetID, Owner: ev.OwnerID})
		case game.RoundOverEvent:
			o.sendToMatch(lm, MsgRoundOver, RoundPayload{
				Round:      ev.Round,
				Winner:     ev.Winner.String(),
				ScoreLeft:  ev.WinsLeft,
				ScoreRight: ev.WinsRight,
			})
		case game.RoundStartEvent:
			o.sendToMatch(lm, MsgRoundStart, RoundPayload{
				Round:      ev.Round,
				ScoreLeft:  ev.WinsLeft,
				ScoreRight: ev.WinsRight,
			})
		}
	}
}

func (o *Orchestrator) sendToMatch(lm *liveMatch, msgType string, payload interface{}) {
	if o.broadcaster == nil {
		return
	}
	for _, sessionID := range lm.sessions {
		o.broadcaster.SendToSession(sessionID, msgType, payload)
	}
}
