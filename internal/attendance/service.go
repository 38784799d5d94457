package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"portal-backend/internal/models"
	"portal-backend/internal/notify"
)

// Service is the session controller. It owns the transitions
// NoSession -> Active -> (OnBreak <-> Active) -> Completed, plus the
// cancellation edge when mandatory monitoring is revoked mid-session.
//
// State-mutating operations are serialized per session by the owning
// client; the duplicate check on clock-in narrows but does not close the
// cross-device race window.
type Service struct {
	store   Store
	reports ReportChecker
	monitor Monitor
	sink    notify.Sink
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, reports ReportChecker, monitor Monitor, sink notify.Sink, opts ...Option) *Service {
	s := &Service{
		store:   store,
		reports: reports,
		monitor: monitor,
		sink:    sink,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClockIn opens a session for the user. The duplicate check runs right
// before the insert. When the user's policy mandates monitoring the new
// session starts in a pending-consent sub-state.
func (s *Service) ClockIn(ctx context.Context, user *models.User) (*models.AttendanceSession, error) {
	existing, err := s.store.ActiveSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("clock in: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateSession
	}

	session := &models.AttendanceSession{
		UserID:  user.ID,
		ClockIn: s.now(),
		Status:  models.SessionStatusActive,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("clock in: %w", err)
	}

	if user.MonitoringRequired {
		s.monitor.RequestConsent(session.ID, user.ID)
	}
	s.sink.Success(user.ID, "Clocked in. Have a productive day!")
	return session, nil
}

// ClockOut completes the active session. Preconditions, in order: no open
// break, an end-of-day report on file, and the early-clock-out policy.
// A shortfall is a soft gate: the caller repeats the request with
// confirmEarly once the user acknowledges the deficit.
func (s *Service) ClockOut(ctx context.Context, user *models.User, confirmEarly bool) (*models.AttendanceSession, error) {
	session, err := s.requireActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	open, err := s.store.OpenBreak(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("clock out: %w", err)
	}
	if open != nil {
		return nil, ErrOnBreak
	}

	hasReport, err := s.reports.HasReport(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("clock out: %w", err)
	}
	if !hasReport {
		return nil, ErrMissingEodReport
	}

	entries, err := s.store.SessionBreaks(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("clock out: %w", err)
	}

	now := s.now()
	decision := Evaluate(session.ClockIn, now, entries)
	if !decision.Allowed && !confirmEarly {
		return nil, &EarlyClockOutError{Decision: decision}
	}

	worked := now.Sub(session.ClockIn) - TotalBreak(entries, now)
	totalHours := math.Round(worked.Hours()*100) / 100

	session.ClockOut = &now
	session.Status = models.SessionStatusCompleted
	session.TotalHours = &totalHours
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("clock out: %w", err)
	}

	s.monitor.Stop(session.ID)
	s.sink.Success(user.ID, fmt.Sprintf("Clocked out. %.2f hours recorded.", totalHours))
	return session, nil
}

// StartBreak opens a typed break. An active capture cycle is paused for
// the duration; the pause is intentional and must not cancel the session.
func (s *Service) StartBreak(ctx context.Context, user *models.User, breakType string) (*models.BreakEntry, error) {
	if !models.ValidBreakType(breakType) {
		return nil, ErrInvalidBreakType
	}

	session, err := s.requireActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	open, err := s.store.OpenBreak(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("start break: %w", err)
	}
	if open != nil {
		return nil, ErrOnBreak
	}

	entry := &models.BreakEntry{
		SessionID:  session.ID,
		BreakType:  breakType,
		BreakStart: s.now(),
	}
	if err := s.store.CreateBreak(ctx, entry); err != nil {
		return nil, fmt.Errorf("start break: %w", err)
	}

	if session.ScreenMonitoringEnabled {
		s.monitor.Pause(session.ID)
	}
	return entry, nil
}

// EndBreak closes the open break. When the user's policy mandates
// monitoring a fresh consent cycle is requested before capture resumes.
func (s *Service) EndBreak(ctx context.Context, user *models.User) (*models.BreakEntry, error) {
	session, err := s.requireActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	open, err := s.store.OpenBreak(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("end break: %w", err)
	}
	if open == nil {
		return nil, ErrNoActiveBreak
	}

	now := s.now()
	if now.Before(open.BreakStart) {
		now = open.BreakStart
	}
	open.BreakEnd = &now
	if err := s.store.SaveBreak(ctx, open); err != nil {
		return nil, fmt.Errorf("end break: %w", err)
	}

	if user.MonitoringRequired {
		s.monitor.RequestConsent(session.ID, user.ID)
	}
	return open, nil
}

// GrantMonitoring records the user's consent on the session. The caller
// then binds the capture source and starts the scheduler.
func (s *Service) GrantMonitoring(ctx context.Context, user *models.User) (*models.AttendanceSession, error) {
	session, err := s.requireActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !s.monitor.ConsentPending(session.ID) {
		return nil, ErrConsentNotPending
	}

	session.ScreenMonitoringEnabled = true
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("grant monitoring: %w", err)
	}
	return session, nil
}

// DenyMonitoring refuses a pending consent request. Consent is only ever
// requested under a mandatory-monitoring policy, so the request stays
// pending and work is not considered started until the user relents.
func (s *Service) DenyMonitoring(ctx context.Context, user *models.User) error {
	session, err := s.requireActive(ctx, user.ID)
	if err != nil {
		return err
	}
	if !s.monitor.ConsentPending(session.ID) {
		return ErrConsentNotPending
	}
	return ErrSourceDenied
}

// CancelSession removes a session whose mandatory monitoring was revoked.
// The record is deleted, not completed: the worked time is discarded
// because the monitoring precondition was violated after admission.
func (s *Service) CancelSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	s.monitor.Stop(sessionID)
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	s.sink.Failure(userID, "Screen sharing was revoked. Your session was cancelled and the time discarded.")
	return nil
}

// Current returns the live snapshot for the user's active session.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	session, err := s.requireActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.SessionBreaks(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("current session: %w", err)
	}
	snapshot := BuildSnapshot(session, entries, s.now(), s.monitor.ConsentPending(session.ID))
	return &snapshot, nil
}

func (s *Service) requireActive(ctx context.Context, userID uuid.UUID) (*models.AttendanceSession, error) {
	session, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active session lookup: %w", err)
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	return session, nil
}
