package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portal-backend/internal/models"
)

func TestEvaluateShortDayIsDeferred(t *testing.T) {
	clockIn := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	now := clockIn.Add(30 * time.Minute)

	decision := Evaluate(clockIn, now, nil)

	require.False(t, decision.Allowed)
	require.InDelta(t, 30, decision.ElapsedMinutes, 1e-9)
	require.InDelta(t, 480, decision.RequiredMinutes, 1e-9)
	require.InDelta(t, 450, decision.ShortfallMinutes, 1e-9)
}

func TestEvaluateFullDayPasses(t *testing.T) {
	clockIn := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	now := clockIn.Add(8 * time.Hour)

	decision := Evaluate(clockIn, now, nil)

	require.True(t, decision.Allowed)
	require.Zero(t, decision.ShortfallMinutes)
}

func TestEvaluateBreakExcessExtendsRequirement(t *testing.T) {
	// Lunch 12:00-13:15 runs 15 minutes over budget, so a full 480
	// elapsed minutes at 17:00 still falls short of the extended 495.
	clockIn := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	lunchEnd := time.Date(2024, 3, 4, 13, 15, 0, 0, time.UTC)
	entries := []models.BreakEntry{
		{
			BreakType:  models.BreakTypeLunch,
			BreakStart: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
			BreakEnd:   &lunchEnd,
		},
	}
	now := time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)

	decision := Evaluate(clockIn, now, entries)

	require.False(t, decision.Allowed)
	require.InDelta(t, 480, decision.ElapsedMinutes, 1e-9)
	require.InDelta(t, 495, decision.RequiredMinutes, 1e-9)
	require.InDelta(t, 15, decision.LunchExcessMinutes, 1e-9)
	require.Zero(t, decision.OtherExcessMinutes)
	require.InDelta(t, 15, decision.ShortfallMinutes, 1e-9)
}

func TestEvaluateBreaksCountTowardElapsed(t *testing.T) {
	// Elapsed time is wall time since clock-in, breaks included.
	clockIn := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	lunchEnd := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)
	entries := []models.BreakEntry{
		{
			BreakType:  models.BreakTypeLunch,
			BreakStart: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
			BreakEnd:   &lunchEnd,
		},
	}
	now := clockIn.Add(8 * time.Hour)

	decision := Evaluate(clockIn, now, entries)
	require.True(t, decision.Allowed)
}
