// Package attendance implements the live attendance session engine:
// clock-in/out lifecycle, the break ledger, the early-clock-out policy
// and derived elapsed-time snapshots.
package attendance

import (
	"time"

	"portal-backend/internal/models"
)

// Per-category break budgets, in minutes. Lunch has its own budget; every
// other break type shares one combined budget.
const (
	LunchLimitMinutes = 60
	OtherLimitMinutes = 15
)

func breakDuration(entry models.BreakEntry, now time.Time) time.Duration {
	end := now
	if entry.BreakEnd != nil {
		end = *entry.BreakEnd
	}
	if end.Before(entry.BreakStart) {
		return 0
	}
	return end.Sub(entry.BreakStart)
}

// TotalBreak sums all break durations for a session. An open break
// contributes its live duration up to now.
func TotalBreak(entries []models.BreakEntry, now time.Time) time.Duration {
	var total time.Duration
	for _, entry := range entries {
		total += breakDuration(entry, now)
	}
	return total
}

// CategoryBreak splits the ledger into lunch time and the combined
// non-lunch bucket.
func CategoryBreak(entries []models.BreakEntry, now time.Time) (lunch, other time.Duration) {
	for _, entry := range entries {
		d := breakDuration(entry, now)
		if entry.BreakType == models.BreakTypeLunch {
			lunch += d
		} else {
			other += d
		}
	}
	return lunch, other
}

// ExcessMinutes is the break time consumed beyond the per-category budgets.
// It feeds directly into the early-clock-out policy.
func ExcessMinutes(entries []models.BreakEntry, now time.Time) float64 {
	lunch, other := CategoryBreak(entries, now)
	excess := 0.0
	if over := lunch.Minutes() - LunchLimitMinutes; over > 0 {
		excess += over
	}
	if over := other.Minutes() - OtherLimitMinutes; over > 0 {
		excess += over
	}
	return excess
}
