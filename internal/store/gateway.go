package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"rockduel/internal/model"
)

// Snapshot is the persisted layout: the full record set keyed by player
// identity plus the derived leaderboard.
type Snapshot struct {
	Players     map[string]*model.PlayerRecord `json:"players"`
	Leaderboard []model.LeaderboardEntry       `json:"leaderboard"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Players: make(map[string]*model.PlayerRecord)}
}

// Gateway persists store snapshots. The store is the only caller.
type Gateway interface {
	// Load reads the persisted snapshot. A missing or corrupt store
	// loads as an empty snapshot, never as an error.
	Load() (*Snapshot, error)
	// Save writes the snapshot so that readers never observe a
	// partial write.
	Save(*Snapshot) error
}

// FileGateway persists the snapshot as a single JSON file, written to a
// temporary path and renamed into place.
type FileGateway struct {
	Path string
}

func NewFileGateway(path string) (*FileGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileGateway{Path: path}, nil
}

func (g *FileGateway) Load() (*Snapshot, error) {
	data, err := os.ReadFile(g.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt store is recovered as empty rather than fatal.
		return emptySnapshot(), nil
	}
	if snap.Players == nil {
		snap.Players = make(map[string]*model.PlayerRecord)
	}
	return &snap, nil
}

func (g *FileGateway) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := g.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, g.Path)
}
