package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"portal-backend/internal/models"
)

// Snapshot is the derived, never-persisted view of a live session: always
// recomputed from the session, its break ledger and the current time.
type Snapshot struct {
	SessionID      uuid.UUID `json:"sessionId"`
	OnBreak        bool      `json:"onBreak"`
	ConsentPending bool      `json:"consentPending"`

	Elapsed   time.Duration `json:"-"`
	Worked    time.Duration `json:"-"`
	Breaks    time.Duration `json:"-"`
	Lunch     time.Duration `json:"-"`
	Other     time.Duration `json:"-"`
	Remaining time.Duration `json:"-"`

	ElapsedDisplay   string `json:"elapsed"`
	WorkedDisplay    string `json:"worked"`
	BreaksDisplay    string `json:"breaks"`
	LunchDisplay     string `json:"lunch"`
	OtherDisplay     string `json:"other"`
	RemainingDisplay string `json:"remaining"`
}

// BuildSnapshot derives the presenter state for one tick.
func BuildSnapshot(session *models.AttendanceSession, entries []models.BreakEntry, now time.Time, consentPending bool) Snapshot {
	lunch, other := CategoryBreak(entries, now)
	breaks := lunch + other
	elapsed := now.Sub(session.ClockIn)
	if elapsed < 0 {
		elapsed = 0
	}
	worked := elapsed - breaks
	if worked < 0 {
		worked = 0
	}

	required := time.Duration((RequiredWorkMinutes + ExcessMinutes(entries, now)) * float64(time.Minute))
	remaining := required - elapsed
	if remaining < 0 {
		remaining = 0
	}

	onBreak := false
	for _, entry := range entries {
		if entry.BreakEnd == nil {
			onBreak = true
			break
		}
	}

	return Snapshot{
		SessionID:        session.ID,
		OnBreak:          onBreak,
		ConsentPending:   consentPending,
		Elapsed:          elapsed,
		Worked:           worked,
		Breaks:           breaks,
		Lunch:            lunch,
		Other:            other,
		Remaining:        remaining,
		ElapsedDisplay:   FormatClock(elapsed),
		WorkedDisplay:    FormatClock(worked),
		BreaksDisplay:    FormatDuration(breaks),
		LunchDisplay:     FormatDuration(lunch),
		OtherDisplay:     FormatDuration(other),
		RemainingDisplay: FormatClock(remaining),
	}
}

// FormatClock renders a duration as HH:MM:SS for the live counter.
func FormatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDuration renders a duration the short human way.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// Presenter pushes a snapshot to a sink once a second while the context
// lives. It is a pure reader: it never mutates session state.
type Presenter struct {
	service *Service
	userID  uuid.UUID
	period  time.Duration
	emit    func(Snapshot)
}

func NewPresenter(service *Service, userID uuid.UUID, emit func(Snapshot)) *Presenter {
	return &Presenter{
		service: service,
		userID:  userID,
		period:  time.Second,
		emit:    emit,
	}
}

// Run ticks until the context is cancelled or the session is gone.
func (p *Presenter) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snapshot, err := p.service.Current(ctx, p.userID)
			if err != nil {
				return err
			}
			p.emit(*snapshot)
		}
	}
}
