package game

// Side selects one of the two combatants of a match.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Intent is the buffered input for one combatant. Missing or malformed
// client input decodes to the zero value: no movement, no attack.
type Intent struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Jump   bool `json:"jump"`
	Attack bool `json:"attack"`
}

// Combatant is one player's simulated avatar.
type Combatant struct {
	PlayerID string
	X, Y     float64
	VX, VY   float64
	OnGround bool
	HP       int
	Cooldown float64 // seconds until the next shot is allowed
}

// Projectile is one live rock. Dead projectiles are dropped at the end
// of the step that deactivated them.
type Projectile struct {
	X, Y    float64
	VX, VY  float64
	OwnerID string
	Born    float64 // match clock seconds at spawn
	Alive   bool
}

// EndReason records how a match reached its terminal state.
type EndReason string

const (
	EndNormal  EndReason = "normal"
	EndForfeit EndReason = "forfeit"
)
