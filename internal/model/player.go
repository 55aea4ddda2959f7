package model

import "time"

const MaxNameLength = 16

// PlayerRecord is the persisted state for one player identity.
// Level and tier are derived from XP and rating, never stored.
type PlayerRecord struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	XP                  int64     `json:"xp"`
	Rubies              int64     `json:"rubies"`
	Rating              int       `json:"rating"`
	Wins                int       `json:"wins"`
	Losses              int       `json:"losses"`
	RockSkin            string    `json:"rockSkin"`
	OwnedSkins          []string  `json:"ownedSkins"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	LastOfflineRewardAt time.Time `json:"lastOfflineRewardAt"`
}

// OwnsSkin reports whether the record's owned set contains skinID.
func (p *PlayerRecord) OwnsSkin(skinID string) bool {
	for _, s := range p.OwnedSkins {
		if s == skinID {
			return true
		}
	}
	return false
}

// Profile is the public projection of a player record sent to clients.
type Profile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	XP         int64    `json:"xp"`
	Level      int      `json:"level"`
	Rubies     int64    `json:"rubies"`
	Rating     int      `json:"rating"`
	Tier       string   `json:"tier"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	RockSkin   string   `json:"rockSkin"`
	OwnedSkins []string `json:"ownedSkins"`
}

// LeaderboardEntry is one row of the derived top-N leaderboard.
type LeaderboardEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Tier   string `json:"tier"`
	Level  int    `json:"level"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}
