package game

const (
	ArenaWidth  = 900.0
	ArenaHeight = 450.0
	GroundY     = 360.0

	MoveSpeed     = 320.0
	JumpVelocity  = -520.0
	Gravity       = 1400.0
	WallMargin    = 40.0  // keeps combatants off the arena edges and the midline
	SpawnOffsetX  = 120.0 // distance of the starting position from each edge

	RockSpeed         = 620.0
	RockGravityScale  = 0.35
	RockSpawnDX       = 34.0  // muzzle offset in the firing direction
	RockSpawnDY       = -40.0 // spawn height above the feet
	RockInitialVY     = -40.0
	RockBoundsMarginX = 100.0
	RockBoundsMarginY = 200.0

	ShootCooldownSeconds = 0.72

	HitboxWidth  = 46.0
	HitboxHeight = 62.0

	KnockbackVY = -220.0
	KnockbackDX = 18.0

	HPPerRound = 5
	TargetWins = 4
	MaxRounds  = 7

	// MaxStepSeconds caps a single integration step so a scheduler
	// stall cannot tunnel projectiles through hitboxes.
	MaxStepSeconds = 0.05
)
