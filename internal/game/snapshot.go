package game

// Snapshot is the per-tick wire view of a match broadcast to its two
// participants. Hit points are clamped at zero here so a terminal blow
// never leaks a negative value to clients.
type Snapshot struct {
	Room        string               `json:"room"`
	W           float64              `json:"w"`
	H           float64              `json:"h"`
	GroundY     float64              `json:"groundY"`
	Round       int                  `json:"round"`
	MaxRounds   int                  `json:"maxRounds"`
	TargetWins  int                  `json:"targetWins"`
	WinsLeft    int                  `json:"winsLeft"`
	WinsRight   int                  `json:"winsRight"`
	Combatants  []CombatantSnapshot  `json:"combatants"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
}

type CombatantSnapshot struct {
	ID       string  `json:"id"`
	Side     string  `json:"side"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	OnGround bool    `json:"onGround"`
	HP       int     `json:"hp"`
	Cooldown float64 `json:"cooldown"`
}

type ProjectileSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Owner string  `json:"owner"`
}

// Snapshot builds the broadcast view of the current state.
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		Room:        m.RoomID,
		W:           ArenaWidth,
		H:           ArenaHeight,
		GroundY:     GroundY,
		Round:       m.Round,
		MaxRounds:   MaxRounds,
		TargetWins:  TargetWins,
		WinsLeft:    m.Wins[SideLeft],
		WinsRight:   m.Wins[SideRight],
		Combatants:  make([]CombatantSnapshot, 0, 2),
		Projectiles: make([]ProjectileSnapshot, 0, len(m.Projectiles)),
	}
	for side := SideLeft; side <= SideRight; side++ {
		c := m.Combatants[side]
		hp := c.HP
		if hp < 0 {
			hp = 0
		}
		snap.Combatants = append(snap.Combatants, CombatantSnapshot{
			ID:       c.PlayerID,
			Side:     side.String(),
			X:        c.X,
			Y:        c.Y,
			VX:       c.VX,
			VY:       c.VY,
			OnGround: c.OnGround,
			HP:       hp,
			Cooldown: c.Cooldown,
		})
	}
	for _, p := range m.Projectiles {
		if !p.Alive {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			X: p.X, Y: p.Y, VX: p.VX, VY: p.VY, Owner: p.OwnerID,
		})
	}
	return snap
}
