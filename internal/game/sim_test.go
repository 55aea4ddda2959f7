package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 1.0 / 30

func newTestMatch(ranked bool) *Match {
	return NewMatch("room1", ranked, "alice", "bob")
}

func eventsOfType[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if ev, ok := e.(T); ok {
			out = append(out, ev)
		}
	}
	return out
}

func TestNewMatchStartingState(t *testing.T) {
	m := newTestMatch(false)
	assert.Equal(t, 1, m.Round)
	assert.False(t, m.Over)

	left := m.Combatants[SideLeft]
	right := m.Combatants[SideRight]
	assert.Equal(t, "alice", left.PlayerID)
	assert.Equal(t, "bob", right.PlayerID)
	assert.Equal(t, SpawnOffsetX, left.X)
	assert.Equal(t, ArenaWidth-SpawnOffsetX, right.X)
	assert.Equal(t, HPPerRound, left.HP)
	assert.True(t, left.OnGround)
}

func TestStepWithoutIntentsIsIdle(t *testing.T) {
	m := newTestMatch(false)
	events := m.Step(tick)
	assert.Empty(t, events)
	assert.Equal(t, SpawnOffsetX, m.Combatants[SideLeft].X)
	assert.Equal(t, GroundY, m.Combatants[SideLeft].Y)
}

func TestMoveIntents(t *testing.T) {
	m := newTestMatch(false)
	m.SetIntent("alice", Intent{Right: true})
	m.Step(tick)
	assert.Greater(t, m.Combatants[SideLeft].X, SpawnOffsetX)

	// Opposing intents cancel out.
	m.SetIntent("alice", Intent{Left: true, Right: true})
	x := m.Combatants[SideLeft].X
	m.Step(tick)
	assert.Equal(t, x, m.Combatants[SideLeft].X)
}

func TestLeftCombatantClampedToOwnHalf(t *testing.T) {
	m := newTestMatch(false)
	m.SetIntent("alice", Intent{Right: true})
	for i := 0; i < 300; i++ {
		m.Step(tick)
	}
	assert.Equal(t, ArenaWidth/2-WallMargin, m.Combatants[SideLeft].X)
}

func TestJumpOnlyWhenGrounded(t *testing.T) {
	m := newTestMatch(false)
	m.SetIntent("bob", Intent{Jump: true})
	m.Step(tick)
	c := m.Combatants[SideRight]
	assert.False(t, c.OnGround)
	assert.Less(t, c.VY, 0.0)

	// Holding jump mid-air must not re-apply the impulse.
	m.Step(tick)
	vyAfter := m.Combatants[SideRight].VY
	assert.Greater(t, vyAfter, JumpVelocity)

	// Gravity eventually brings the combatant back to the ground.
	for i := 0; i < 120; i++ {
		m.SetIntent("bob", Intent{})
		m.Step(tick)
	}
	c = m.Combatants[SideRight]
	assert.True(t, c.OnGround)
	assert.Equal(t, GroundY, c.Y)
}

func TestAttackSpawnsProjectileAndCooldown(t *testing.T) {
	m := newTestMatch(false)
	m.SetIntent("alice", Intent{Attack: true})
	events := m.Step(tick)

	shots := eventsOfType[ShootEvent](events)
	require.Len(t, shots, 1)
	assert.Equal(t, "alice", shots[0].OwnerID)
	require.Len(t, m.Projectiles, 1)
	p := m.Projectiles[0]
	assert.Equal(t, "alice", p.OwnerID)
	assert.Greater(t, p.VX, 0.0)

	// Cooldown swallows the next attack intent.
	events = m.Step(tick)
	assert.Empty(t, eventsOfType[ShootEvent](events))
	assert.Len(t, m.Projectiles, 1)

	// After the cooldown elapses the attack fires again.
	fired := false
	for i := 0; i < 30 && !fired; i++ {
		events = m.Step(tick)
		fired = len(eventsOfType[ShootEvent](events)) > 0
	}
	assert.True(t, fired, "attack should fire once the cooldown elapses")
}

func TestRightSideShootsLeft(t *testing.T) {
	m := newTestMatch(false)
	m.SetIntent("bob", Intent{Attack: true})
	m.Step(tick)
	require.Len(t, m.Projectiles, 1)
	assert.Less(t, m.Projectiles[0].VX, 0.0)
}

func TestProjectileLeavesArena(t *testing.T) {
	m := newTestMatch(false)
	m.Projectiles = append(m.Projectiles, Projectile{
		X: ArenaWidth + RockBoundsMarginX - 1, Y: 300, VX: RockSpeed, OwnerID: "alice", Alive: true,
	})
	m.Step(tick)
	assert.Empty(t, m.Projectiles)
}

func TestProjectileHit(t *testing.T) {
	m := newTestMatch(false)
	target := m.Combatants[SideRight]
	m.Projectiles = append(m.Projectiles, Projectile{
		X: target.X - HitboxWidth/2 - 5, Y: target.Y - 30,
		VX: RockSpeed, OwnerID: "alice", Alive: true,
	})

	events := m.Step(0.01)
	hits := eventsOfType[HitEvent](events)
	require.Len(t, hits, 1)
	assert.Equal(t, "bob", hits[0].TargetID)
	assert.Equal(t, "alice", hits[0].OwnerID)

	c := m.Combatants[SideRight]
	assert.Equal(t, HPPerRound-1, c.HP)
	assert.Equal(t, KnockbackVY, c.VY)
	assert.Empty(t, m.Projectiles, "spent projectile must be dropped")
}

func TestProjectileNeverHitsOwner(t *testing.T) {
	m := newTestMatch(false)
	owner := m.Combatants[SideLeft]
	m.Projectiles = append(m.Projectiles, Projectile{
		X: owner.X, Y: owner.Y - 30, VX: 1, OwnerID: "alice", Alive: true,
	})
	events := m.Step(0.01)
	assert.Empty(t, eventsOfType[HitEvent](events))
	assert.Equal(t, HPPerRound, m.Combatants[SideLeft].HP)
}

func TestRoundOverAwardsOppositeSideOnce(t *testing.T) {
	m := newTestMatch(false)
	m.Combatants[SideRight].HP = 0
	events := m.Step(tick)

	overs := eventsOfType[RoundOverEvent](events)
	require.Len(t, overs, 1)
	assert.Equal(t, SideLeft, overs[0].Winner)
	assert.Equal(t, 1, m.Wins[SideLeft])
	assert.Equal(t, 0, m.Wins[SideRight])

	// Reset for round two.
	starts := eventsOfType[RoundStartEvent](events)
	require.Len(t, starts, 1)
	assert.Equal(t, 2, starts[0].Round)
	assert.Equal(t, 2, m.Round)
	assert.Equal(t, HPPerRound, m.Combatants[SideRight].HP)
	assert.Equal(t, SpawnOffsetX, m.Combatants[SideLeft].X)
	assert.Empty(t, m.Projectiles)
}

func TestDoubleKOGoesToLeftSide(t *testing.T) {
	m := newTestMatch(false)
	m.Combatants[SideLeft].HP = 0
	m.Combatants[SideRight].HP = 0
	events := m.Step(tick)

	overs := eventsOfType[RoundOverEvent](events)
	require.Len(t, overs, 1)
	assert.Equal(t, SideLeft, overs[0].Winner)
	assert.Equal(t, 1, m.Wins[SideLeft])
	assert.Equal(t, 0, m.Wins[SideRight])
}

func TestMatchEndsAtTargetWins(t *testing.T) {
	m := newTestMatch(true)

	// Right side takes three rounds first.
	for i := 0; i < 3; i++ {
		m.Combatants[SideLeft].HP = 0
		m.Step(tick)
	}
	require.False(t, m.Over)

	// Left side then wins four straight: terminal regardless of the
	// right side's round count or remaining round budget.
	for i := 0; i < 4; i++ {
		m.Combatants[SideRight].HP = 0
		m.Step(tick)
	}
	assert.True(t, m.Over)
	assert.Equal(t, "alice", m.WinnerID)
	assert.Equal(t, EndNormal, m.Reason)
	assert.Equal(t, 4, m.Wins[SideLeft])
	assert.Equal(t, 3, m.Wins[SideRight])
}

func TestRoundCapLeaderWins(t *testing.T) {
	m := newTestMatch(false)
	m.Round = MaxRounds
	m.Wins[SideLeft] = 2
	m.Wins[SideRight] = 1

	m.Combatants[SideRight].HP = 0
	m.Step(tick)
	assert.True(t, m.Over)
	assert.Equal(t, "alice", m.WinnerID)
}

func TestRoundCapTieGoesToSuddenDeath(t *testing.T) {
	m := newTestMatch(false)
	m.Round = MaxRounds
	m.Wins[SideLeft] = 1
	m.Wins[SideRight] = 2

	// Left evens the score at the cap: no winner yet, play on.
	m.Combatants[SideRight].HP = 0
	events := m.Step(tick)
	require.False(t, m.Over)
	starts := eventsOfType[RoundStartEvent](events)
	require.Len(t, starts, 1)
	assert.Equal(t, MaxRounds+1, starts[0].Round)

	// The next decided round ends it.
	m.Combatants[SideLeft].HP = 0
	m.Step(tick)
	assert.True(t, m.Over)
	assert.Equal(t, "bob", m.WinnerID)
}

func TestForfeit(t *testing.T) {
	m := newTestMatch(true)
	m.Forfeit("alice")
	assert.True(t, m.Over)
	assert.Equal(t, "bob", m.WinnerID)
	assert.Equal(t, EndForfeit, m.Reason)

	// Steps after terminal are no-ops.
	assert.Nil(t, m.Step(tick))
}

func TestForfeitWinsEvenAtZeroHP(t *testing.T) {
	m := newTestMatch(true)
	m.Combatants[SideRight].HP = 0
	m.Forfeit("alice")
	assert.True(t, m.Over)
	assert.Equal(t, "bob", m.WinnerID)
	assert.Equal(t, EndForfeit, m.Reason)
}

func TestStepClampsDelta(t *testing.T) {
	m := newTestMatch(false)
	m.SetIntent("alice", Intent{Right: true})
	m.Step(10)
	moved := m.Combatants[SideLeft].X - SpawnOffsetX
	assert.InDelta(t, MoveSpeed*MaxStepSeconds, moved, 1e-9)
}

func TestSnapshotClampsHP(t *testing.T) {
	m := newTestMatch(false)
	m.Combatants[SideLeft].HP = -1
	snap := m.Snapshot()
	require.Len(t, snap.Combatants, 2)
	assert.Equal(t, 0, snap.Combatants[0].HP)
	assert.Equal(t, "left", snap.Combatants[0].Side)
	assert.Equal(t, "right", snap.Combatants[1].Side)
}

func TestSideOpponent(t *testing.T) {
	assert.Equal(t, SideRight, SideLeft.Opponent())
	assert.Equal(t, SideLeft, SideRight.Opponent())
}
