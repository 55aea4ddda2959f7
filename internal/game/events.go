package game

// Event is a side effect signalled by a simulation step. Callers type
// switch on the concrete kinds below.
type Event interface {
	matchEvent()
}

// ShootEvent fires when a combatant spawns a projectile.
type ShootEvent struct {
	OwnerID string
}

// HitEvent fires when a projectile connects with the opposing combatant.
type HitEvent struct {
	TargetID string
	OwnerID  string
}

// RoundOverEvent fires when a round is decided, before any reset.
type RoundOverEvent struct {
	Round     int
	Winner    Side
	WinsLeft  int
	WinsRight int
}

// RoundStartEvent fires when the next round begins after a reset.
type RoundStartEvent struct {
	Round     int
	WinsLeft  int
	WinsRight int
}

func (ShootEvent) matchEvent()      {}
func (HitEvent) matchEvent()        {}
func (RoundOverEvent) matchEvent()  {}
func (RoundStartEvent) matchEvent() {}
