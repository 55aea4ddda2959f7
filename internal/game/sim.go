// Package game holds the server-authoritative duel simulation. A Match
// owns all mutable state for one duel and advances it one fixed tick at
// a time; it never touches persistence or the network.
package game

import "math"

// Match is the simulation state for one duel. It is not safe for
// concurrent use; the orchestrator is its sole driver.
type Match struct {
	RoomID string
	Ranked bool

	Round int
	Wins  [2]int

	Combatants  [2]Combatant
	Projectiles []Projectile

	Over     bool
	WinnerID string
	Reason   EndReason

	intents [2]Intent
	elapsed float64
}

// NewMatch creates a fresh match with both combatants at their starting
// positions for round one.
func NewMatch(roomID string, ranked bool, leftID, rightID string) *Match {
	m := &Match{
		RoomID: roomID,
		Ranked: ranked,
		Round:  1,
	}
	m.Combatants[SideLeft] = newCombatant(leftID, SideLeft)
	m.Combatants[SideRight] = newCombatant(rightID, SideRight)
	return m
}

func newCombatant(playerID string, side Side) Combatant {
	x := SpawnOffsetX
	if side == SideRight {
		x = ArenaWidth - SpawnOffsetX
	}
	return Combatant{
		PlayerID: playerID,
		X:        x,
		Y:        GroundY,
		OnGround: true,
		HP:       HPPerRound,
	}
}

// SideOf returns which side a player occupies.
func (m *Match) SideOf(playerID string) (Side, bool) {
	switch playerID {
	case m.Combatants[SideLeft].PlayerID:
		return SideLeft, true
	case m.Combatants[SideRight].PlayerID:
		return SideRight, true
	}
	return SideLeft, false
}

// SetIntent buffers the latest input for a participant, last write wins.
// It takes effect on the next step, never mid-step.
func (m *Match) SetIntent(playerID string, in Intent) {
	if side, ok := m.SideOf(playerID); ok {
		m.intents[side] = in
	}
}

// Forfeit terminates the match immediately in favour of the opponent of
// the departing player, regardless of current hit points.
func (m *Match) Forfeit(leaverID string) {
	if m.Over {
		return
	}
	side, ok := m.SideOf(leaverID)
	if !ok {
		return
	}
	m.finish(m.Combatants[side.Opponent()].PlayerID, EndForfeit)
}

// Step advances the simulation by dt seconds (clamped to
// MaxStepSeconds) and returns the side effects of the step.
func (m *Match) Step(dt float64) []Event {
	if m.Over {
		return nil
	}
	if dt < 0 {
		dt = 0
	}
	if dt > MaxStepSeconds {
		dt = MaxStepSeconds
	}
	m.elapsed += dt

	var events []Event
	events = m.applyIntents(dt, events)
	m.integrateCombatants(dt)
	m.integrateProjectiles(dt)
	events = m.resolveHits(events)
	m.dropDeadProjectiles()
	events = m.resolveRound(events)
	return events
}

func (m *Match) applyIntents(dt float64, events []Event) []Event {
	for side := SideLeft; side <= SideRight; side++ {
		c := &m.Combatants[side]
		in := m.intents[side]

		ax := 0.0
		if in.Left {
			ax -= 1
		}
		if in.Right {
			ax += 1
		}
		c.VX = ax * MoveSpeed

		if in.Jump && c.OnGround {
			c.VY = JumpVelocity
			c.OnGround = false
		}

		c.Cooldown = math.Max(0, c.Cooldown-dt)

		if in.Attack && c.Cooldown <= 0 {
			c.Cooldown = ShootCooldownSeconds
			dir := 1.0
			if side == SideRight {
				dir = -1.0
			}
			m.Projectiles = append(m.Projectiles, Projectile{
				X:       c.X + dir*RockSpawnDX,
				Y:       c.Y + RockSpawnDY,
				VX:      dir * RockSpeed,
				VY:      RockInitialVY,
				OwnerID: c.PlayerID,
				Born:    m.elapsed,
				Alive:   true,
			})
			events = append(events, ShootEvent{OwnerID: c.PlayerID})
		}
	}
	return events
}

func (m *Match) integrateCombatants(dt float64) {
	for side := SideLeft; side <= SideRight; side++ {
		c := &m.Combatants[side]
		c.X += c.VX * dt
		c.Y += c.VY * dt
		c.VY += Gravity * dt

		// Each combatant is confined to their half of the arena.
		if side == SideLeft {
			c.X = clamp(c.X, WallMargin, ArenaWidth/2-WallMargin)
		} else {
			c.X = clamp(c.X, ArenaWidth/2+WallMargin, ArenaWidth-WallMargin)
		}

		if c.Y >= GroundY {
			c.Y = GroundY
			c.VY = 0
			c.OnGround = true
		}
	}
}

func (m *Match) integrateProjectiles(dt float64) {
	for i := range m.Projectiles {
		p := &m.Projectiles[i]
		if !p.Alive {
			continue
		}
		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.VY += Gravity * RockGravityScale * dt

		if p.X < -RockBoundsMarginX || p.X > ArenaWidth+RockBoundsMarginX || p.Y > ArenaHeight+RockBoundsMarginY {
			p.Alive = false
		}
	}
}

func (m *Match) resolveHits(events []Event) []Event {
	for i := range m.Projectiles {
		p := &m.Projectiles[i]
		if !p.Alive {
			continue
		}
		for side := SideLeft; side <= SideRight; side++ {
			c := &m.Combatants[side]
			if c.PlayerID == p.OwnerID {
				continue
			}
			// Hitbox is anchored above the feet.
			rx := c.X - HitboxWidth/2
			ry := c.Y - HitboxHeight
			if !pointInRect(p.X, p.Y, rx, ry, HitboxWidth, HitboxHeight) {
				continue
			}

			p.Alive = false
			c.HP--
			c.VY = KnockbackVY
			if p.VX > 0 {
				c.X += KnockbackDX
			} else {
				c.X -= KnockbackDX
			}
			events = append(events, HitEvent{TargetID: c.PlayerID, OwnerID: p.OwnerID})
			break // a projectile resolves against at most one combatant
		}
	}
	return events
}

func (m *Match) dropDeadProjectiles() {
	live := m.Projectiles[:0]
	for _, p := range m.Projectiles {
		if p.Alive {
			live = append(live, p)
		}
	}
	m.Projectiles = live
}

func (m *Match) resolveRound(events []Event) []Event {
	left := &m.Combatants[SideLeft]
	right := &m.Combatants[SideRight]
	if left.HP > 0 && right.HP > 0 {
		return events
	}

	// A double KO goes to the left side: the round is judged by whether
	// the right combatant is down, regardless of the left's own state.
	winner := SideRight
	if right.HP <= 0 {
		winner = SideLeft
	}
	m.Wins[winner]++
	events = append(events, RoundOverEvent{
		Round:     m.Round,
		Winner:    winner,
		WinsLeft:  m.Wins[SideLeft],
		WinsRight: m.Wins[SideRight],
	})

	if m.Wins[winner] >= TargetWins {
		m.finish(m.Combatants[winner].PlayerID, EndNormal)
		return events
	}

	// At the round cap the leader takes the match. A still-tied cap
	// goes to sudden death: extra rounds until one side pulls ahead.
	if m.Round >= MaxRounds && m.Wins[SideLeft] != m.Wins[SideRight] {
		leader := SideLeft
		if m.Wins[SideRight] > m.Wins[SideLeft] {
			leader = SideRight
		}
		m.finish(m.Combatants[leader].PlayerID, EndNormal)
		return events
	}

	m.resetRound()
	events = append(events, RoundStartEvent{
		Round:     m.Round,
		WinsLeft:  m.Wins[SideLeft],
		WinsRight: m.Wins[SideRight],
	})
	return events
}

func (m *Match) resetRound() {
	m.Round++
	leftID := m.Combatants[SideLeft].PlayerID
	rightID := m.Combatants[SideRight].PlayerID
	m.Combatants[SideLeft] = newCombatant(leftID, SideLeft)
	m.Combatants[SideRight] = newCombatant(rightID, SideRight)
	m.Projectiles = m.Projectiles[:0]
}

func (m *Match) finish(winnerID string, reason EndReason) {
	m.Over = true
	m.WinnerID = winnerID
	m.Reason = reason
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func pointInRect(px, py, rx, ry, rw, rh float64) bool {
	return px >= rx && px <= rx+rw && py >= ry && py <= ry+rh
}
