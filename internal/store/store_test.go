package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rockduel/internal/model"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) (*PlayerStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	gw, err := NewFileGateway(path)
	require.NoError(t, err)
	s, err := Open(gw)
	require.NoError(t, err)
	return s, path
}

func TestEnsureCreatesRecord(t *testing.T) {
	s, _ := openTestStore(t)

	p, err := s.Ensure("id1", "Alice", now)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, 1000, p.Rating)
	assert.Equal(t, model.DefaultSkinID, p.RockSkin)
	assert.Equal(t, []string{model.DefaultSkinID}, p.OwnedSkins)
	assert.Equal(t, now, p.CreatedAt)

	// Second handshake refreshes the name, keeps everything else.
	s.Update("id1", now, func(r *model.PlayerRecord) { r.XP = 500 })
	p, err = s.Ensure("id1", "Alicia", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.Name)
	assert.Equal(t, int64(500), p.XP)
	assert.Equal(t, now, p.CreatedAt)
}

func TestEnsureRejectsEmptyIdentity(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.Ensure("", "Alice", now)
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestEnsureSanitizesName(t *testing.T) {
	s, _ := openTestStore(t)

	p, err := s.Ensure("id1", "", now)
	require.NoError(t, err)
	assert.Equal(t, "Player", p.Name)

	p, err = s.Ensure("id2", "abcdefghijklmnopqrstuvwxyz", now)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnop", p.Name)
}

func TestUpdateUnknownPlayer(t *testing.T) {
	s, _ := openTestStore(t)
	assert.False(t, s.Update("ghost", now, func(*model.PlayerRecord) {}))
}

func TestMutateAppliesOrRejectsAtomically(t *testing.T) {
	s, path := openTestStore(t)
	_, err := s.Ensure("id1", "Alice", now)
	require.NoError(t, err)
	s.Update("id1", now, func(r *model.PlayerRecord) { r.Rubies = 50 })
	require.NoError(t, s.FlushIfDirty())

	err = s.Mutate("ghost", now, func(*model.PlayerRecord) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	// A rejecting closure mutates nothing and does not dirty the store.
	wantErr := errors.New("not enough")
	err = s.Mutate("id1", now, func(r *model.PlayerRecord) error {
		if r.Rubies < 100 {
			return wantErr
		}
		r.Rubies -= 100
		return nil
	})
	assert.ErrorIs(t, err, wantErr)
	rec, _ := s.Get("id1")
	assert.Equal(t, int64(50), rec.Rubies)

	info1, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, s.FlushIfDirty())
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())

	// An accepting closure mutates and persists.
	require.NoError(t, s.Mutate("id1", now, func(r *model.PlayerRecord) error {
		r.Rubies -= 20
		return nil
	}))
	require.NoError(t, s.FlushIfDirty())

	gw, err := NewFileGateway(path)
	require.NoError(t, err)
	reloaded, err := Open(gw)
	require.NoError(t, err)
	rec, _ = reloaded.Get("id1")
	assert.Equal(t, int64(30), rec.Rubies)
}

func TestProfileDerivesLevelAndTier(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.Ensure("id1", "Alice", now)
	require.NoError(t, err)
	s.Update("id1", now, func(r *model.PlayerRecord) {
		r.XP = 480 // level 3
		r.Rating = 1400
	})

	prof, ok := s.Profile("id1")
	require.True(t, ok)
	assert.Equal(t, 3, prof.Level)
	assert.Equal(t, "Platinum", prof.Tier)
}

func TestLeaderboardOrderingAndCap(t *testing.T) {
	s, _ := openTestStore(t)
	_, _ = s.Ensure("a", "A", now)
	_, _ = s.Ensure("b", "B", now)
	_, _ = s.Ensure("c", "C", now)
	s.Update("b", now, func(r *model.PlayerRecord) { r.Rating = 1500 })
	s.Update("c", now, func(r *model.PlayerRecord) { r.Rating = 1200 })

	s.RebuildLeaderboard()
	lb := s.Leaderboard()
	require.Len(t, lb, 3)
	assert.Equal(t, "b", lb[0].ID)
	assert.Equal(t, "c", lb[1].ID)
	assert.Equal(t, "a", lb[2].ID)
	assert.Equal(t, "Platinum", lb[0].Tier)
}

func TestFlushAndReload(t *testing.T) {
	s, path := openTestStore(t)
	_, err := s.Ensure("id1", "Alice", now)
	require.NoError(t, err)
	s.Update("id1", now, func(r *model.PlayerRecord) { r.Wins = 3 })
	s.RebuildLeaderboard()
	require.NoError(t, s.FlushIfDirty())

	// Nothing dirty: second flush leaves the file untouched.
	info1, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, s.FlushIfDirty())
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())

	gw, err := NewFileGateway(path)
	require.NoError(t, err)
	reloaded, err := Open(gw)
	require.NoError(t, err)
	p, ok := reloaded.Get("id1")
	require.True(t, ok)
	assert.Equal(t, 3, p.Wins)
	assert.Len(t, reloaded.Leaderboard(), 1)
}

func TestCorruptStoreLoadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	gw, err := NewFileGateway(path)
	require.NoError(t, err)
	s, err := Open(gw)
	require.NoError(t, err)
	_, ok := s.Get("anyone")
	assert.False(t, ok)
}

func TestMissingStoreLoadsAsEmpty(t *testing.T) {
	s, _ := openTestStore(t)
	assert.Empty(t, s.Leaderboard())
}
