package service

import "rockduel/internal/model"

// Outbound message type names.
const (
	MsgMatchStart = "match_start"
	MsgRoundStart = "round_start"
	MsgRoundOver  = "round_over"
	MsgState      = "state"
	MsgMatchOver  = "match_over"
	MsgShoot      = "shoot"
	MsgHit        = "hit"
)

// MatchStartPayload announces a fresh pairing to both participants.
type MatchStartPayload struct {
	Room    string             `json:"room"`
	Ranked  bool               `json:"ranked"`
	Players []MatchStartPlayer `json:"players"`
}

type MatchStartPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Side string `json:"side"`
}

// RoundPayload carries round number and per-side score for
// round_start and round_over.
type RoundPayload struct {
	Round      int    `json:"round"`
	Winner     string `json:"winner,omitempty"` // round_over only
	ScoreLeft  int    `json:"scoreLeft"`
	ScoreRight int    `json:"scoreRight"`
}

// MatchOverPayload reports the terminal result with the post-match
// profiles and the rebuilt leaderboard.
type MatchOverPayload struct {
	WinnerID    string                   `json:"winnerId"`
	Ranked      bool                     `json:"ranked"`
	Reason      string                   `json:"reason"`
	Profiles    map[string]model.Profile `json:"profiles"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

// ShootPayload and HitPayload trigger client-side effects only.
type ShootPayload struct {
	Owner string `json:"owner"`
}

type HitPayload struct {
	Target string `json:"target"`
	Owner  string `json:"owner"`
}
