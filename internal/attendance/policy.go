package attendance

import (
	"time"

	"portal-backend/internal/models"
)

// RequiredWorkMinutes is the base daily requirement before break excess is
// added on top.
const RequiredWorkMinutes = 480

// Decision is the early-clock-out policy outcome. Elapsed time is measured
// from clock-in including breaks; break overruns extend the requirement.
type Decision struct {
	Allowed            bool    `json:"allowed"`
	ElapsedMinutes     float64 `json:"elapsedMinutes"`
	RequiredMinutes    float64 `json:"requiredMinutes"`
	ShortfallMinutes   float64 `json:"shortfallMinutes"`
	LunchExcessMinutes float64 `json:"lunchExcessMinutes"`
	OtherExcessMinutes float64 `json:"otherExcessMinutes"`
}

// Evaluate computes the clock-out gate for a session. It is pure: no side
// effects, no clock reads.
func Evaluate(clockIn, now time.Time, entries []models.BreakEntry) Decision {
	lunch, other := CategoryBreak(entries, now)

	decision := Decision{
		ElapsedMinutes: now.Sub(clockIn).Minutes(),
	}
	if over := lunch.Minutes() - LunchLimitMinutes; over > 0 {
		decision.LunchExcessMinutes = over
	}
	if over := other.Minutes() - OtherLimitMinutes; over > 0 {
		decision.OtherExcessMinutes = over
	}
	decision.RequiredMinutes = RequiredWorkMinutes + decision.LunchExcessMinutes + decision.OtherExcessMinutes

	if decision.ElapsedMinutes >= decision.RequiredMinutes {
		decision.Allowed = true
	} else {
		decision.ShortfallMinutes = decision.RequiredMinutes - decision.ElapsedMinutes
	}
	return decision
}
