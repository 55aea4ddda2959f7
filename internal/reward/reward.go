// Package reward computes experience and currency grants and the
// progression values derived from them.
package reward

import (
	"fmt"
	"math"
	"time"
)

// OfflineCooldown is the minimum interval between accepted offline
// (local/AI match) reward claims per player.
const OfflineCooldown = 30 * time.Second

// Grant is the amount awarded to one player after a match.
type Grant struct {
	XP     int64
	Rubies int64
}

// ForMatch returns the grant for a finished match. Ranked matches pay
// strictly more than casual ones, winners more than losers.
func ForMatch(won, ranked bool) Grant {
	g := Grant{XP: 25, Rubies: 5}
	if ranked {
		g = Grant{XP: 45, Rubies: 9}
	}
	if won {
		if ranked {
			g.XP += 35
			g.Rubies += 6
		} else {
			g.XP += 18
			g.Rubies += 3
		}
	}
	return g
}

// Level derives the display level from cumulative experience.
func Level(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + int(math.Floor(math.Sqrt(float64(xp)/120)))
}

// Tier derives the display tier from a rating.
func Tier(rating int) string {
	switch {
	case rating < 900:
		return "Iron"
	case rating < 1050:
		return "Bronze"
	case rating < 1200:
		return "Silver"
	case rating < 1350:
		return "Gold"
	case rating < 1500:
		return "Platinum"
	case rating < 1650:
		return "Diamond"
	case rating < 1850:
		return "Master"
	case rating < 2100:
		return "Grandmaster"
	default:
		return "Challenger"
	}
}

// CooldownError rejects an offline reward claim made before the
// cooldown window has elapsed.
type CooldownError struct {
	Wait time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("reward cooldown active, %s remaining", e.Wait)
}

// CheckOfflineClaim returns a CooldownError when now is inside the
// cooldown window following lastClaim. A claim exactly at the window
// boundary is accepted.
func CheckOfflineClaim(lastClaim, now time.Time) error {
	elapsed := now.Sub(lastClaim)
	if elapsed < OfflineCooldown {
		return &CooldownError{Wait: OfflineCooldown - elapsed}
	}
	return nil
}
