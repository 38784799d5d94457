package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portal-backend/internal/models"
)

type memStore struct {
	sessions map[uuid.UUID]*models.AttendanceSession
	breaks   []*models.BreakEntry
	deleted  []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[uuid.UUID]*models.AttendanceSession)}
}

func (m *memStore) ActiveSession(_ context.Context, userID uuid.UUID) (*models.AttendanceSession, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == models.SessionStatusActive {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSession(_ context.Context, session *models.AttendanceSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *memStore) SaveSession(_ context.Context, session *models.AttendanceSession) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *memStore) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	delete(m.sessions, sessionID)
	m.deleted = append(m.deleted, sessionID)
	return nil
}

func (m *memStore) OpenBreak(_ context.Context, sessionID uuid.UUID) (*models.BreakEntry, error) {
	for _, b := range m.breaks {
		if b.SessionID == sessionID && b.BreakEnd == nil {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memStore) SessionBreaks(_ context.Context, sessionID uuid.UUID) ([]models.BreakEntry, error) {
	var entries []models.BreakEntry
	for _, b := range m.breaks {
		if b.SessionID == sessionID {
			entries = append(entries, *b)
		}
	}
	return entries, nil
}

func (m *memStore) CreateBreak(_ context.Context, entry *models.BreakEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.breaks = append(m.breaks, entry)
	return nil
}

func (m *memStore) SaveBreak(_ context.Context, entry *models.BreakEntry) error {
	for i, b := range m.breaks {
		if b.ID == entry.ID {
			m.breaks[i] = entry
		}
	}
	return nil
}

type stubReports struct {
	has map[uuid.UUID]bool
}

func (r *stubReports) HasReport(_ context.Context, sessionID uuid.UUID) (bool, error) {
	return r.has[sessionID], nil
}

type stubMonitor struct {
	pending         map[uuid.UUID]bool
	consentRequests []uuid.UUID
	pauses          []uuid.UUID
	stops           []uuid.UUID
}

func newStubMonitor() *stubMonitor {
	return &stubMonitor{pending: make(map[uuid.UUID]bool)}
}

func (m *stubMonitor) RequestConsent(sessionID, _ uuid.UUID) {
	m.pending[sessionID] = true
	m.consentRequests = append(m.consentRequests, sessionID)
}

func (m *stubMonitor) ConsentPending(sessionID uuid.UUID) bool { return m.pending[sessionID] }

func (m *stubMonitor) Pause(sessionID uuid.UUID) { m.pauses = append(m.pauses, sessionID) }

func (m *stubMonitor) Stop(sessionID uuid.UUID) {
	delete(m.pending, sessionID)
	m.stops = append(m.stops, sessionID)
}

type stubSink struct {
	successes []string
	failures  []string
}

func (s *stubSink) Success(_ uuid.UUID, message string) { s.successes = append(s.successes, message) }
func (s *stubSink) Failure(_ uuid.UUID, message string) { s.failures = append(s.failures, message) }

type fixture struct {
	store   *memStore
	reports *stubReports
	monitor *stubMonitor
	sink    *stubSink
	service *Service
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   newMemStore(),
		reports: &stubReports{has: make(map[uuid.UUID]bool)},
		monitor: newStubMonitor(),
		sink:    &stubSink{},
		now:     time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	f.service = NewService(f.store, f.reports, f.monitor, f.sink, WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func testUser(monitoring bool) *models.User {
	return &models.User{ID: uuid.New(), Email: "worker@example.com", Role: "employee", MonitoringRequired: monitoring}
}

func TestClockInCreatesActiveSession(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)

	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusActive, session.Status)
	require.Equal(t, f.now, session.ClockIn)
	require.Nil(t, session.ClockOut)
	require.Nil(t, session.TotalHours)
	require.Empty(t, f.monitor.consentRequests)
}

func TestClockInRejectsDuplicateSession(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)

	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.ClockIn(context.Background(), user)
	require.ErrorIs(t, err, ErrDuplicateSession)
}

func TestClockInMandatoryMonitoringRequestsConsent(t *testing.T) {
	f := newFixture(t)
	user := testUser(true)

	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	require.True(t, f.monitor.ConsentPending(session.ID))
}

func TestStartBreakRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.StartBreak(context.Background(), user, "siesta")
	require.ErrorIs(t, err, ErrInvalidBreakType)
}

func TestStartBreakRejectsSecondOpenBreak(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.StartBreak(context.Background(), user, models.BreakTypeCoffee)
	require.NoError(t, err)

	_, err = f.service.StartBreak(context.Background(), user, models.BreakTypeLunch)
	require.ErrorIs(t, err, ErrOnBreak)
}

func TestStartBreakPausesActiveCapture(t *testing.T) {
	f := newFixture(t)
	user := testUser(true)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.GrantMonitoring(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.StartBreak(context.Background(), user, models.BreakTypeLunch)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{session.ID}, f.monitor.pauses)
}

func TestEndBreakWithoutOpenBreak(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.EndBreak(context.Background(), user)
	require.ErrorIs(t, err, ErrNoActiveBreak)
}

func TestEndBreakReRequestsConsentForMandatoryMonitoring(t *testing.T) {
	f := newFixture(t)
	user := testUser(true)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	_, err = f.service.GrantMonitoring(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.StartBreak(context.Background(), user, models.BreakTypeCoffee)
	require.NoError(t, err)
	f.advance(10 * time.Minute)

	entry, err := f.service.EndBreak(context.Background(), user)
	require.NoError(t, err)
	require.NotNil(t, entry.BreakEnd)
	// clock-in consent plus the post-break cycle
	require.Equal(t, []uuid.UUID{session.ID, session.ID}, f.monitor.consentRequests)
}

func TestClockOutBlockedWhileOnBreak(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	_, err = f.service.StartBreak(context.Background(), user, models.BreakTypeLunch)
	require.NoError(t, err)

	_, err = f.service.ClockOut(context.Background(), user, false)
	require.ErrorIs(t, err, ErrOnBreak)
}

func TestClockOutRequiresEodReport(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	f.advance(9 * time.Hour)

	_, err = f.service.ClockOut(context.Background(), user, false)
	require.ErrorIs(t, err, ErrMissingEodReport)
}

func TestClockOutEarlyIsDeferredUntilConfirmed(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	f.reports.has[session.ID] = true
	f.advance(30 * time.Minute)

	_, err = f.service.ClockOut(context.Background(), user, false)
	var early *EarlyClockOutError
	require.ErrorAs(t, err, &early)
	require.InDelta(t, 30, early.Decision.ElapsedMinutes, 1e-9)
	require.InDelta(t, 480, early.Decision.RequiredMinutes, 1e-9)

	completed, err := f.service.ClockOut(context.Background(), user, true)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusCompleted, completed.Status)
	require.NotNil(t, completed.TotalHours)
	require.InDelta(t, 0.5, *completed.TotalHours, 1e-9)
	require.Equal(t, []uuid.UUID{session.ID}, f.monitor.stops)
}

func TestClockOutTotalHoursExcludesBreaks(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	f.reports.has[session.ID] = true

	f.advance(3 * time.Hour)
	_, err = f.service.StartBreak(context.Background(), user, models.BreakTypeLunch)
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.service.EndBreak(context.Background(), user)
	require.NoError(t, err)
	f.advance(4*time.Hour + 30*time.Minute)

	// 8.5h elapsed, 1h lunch: 7.5h on the clock.
	completed, err := f.service.ClockOut(context.Background(), user, false)
	require.NoError(t, err)
	require.NotNil(t, completed.TotalHours)
	require.InDelta(t, 7.5, *completed.TotalHours, 1e-9)

	// Round-trip: recompute independently from the persisted ledger.
	entries, err := f.store.SessionBreaks(context.Background(), session.ID)
	require.NoError(t, err)
	worked := completed.ClockOut.Sub(completed.ClockIn) - TotalBreak(entries, *completed.ClockOut)
	require.InDelta(t, worked.Hours(), *completed.TotalHours, 0.005)
}

func TestCancelSessionDeletesRecord(t *testing.T) {
	f := newFixture(t)
	user := testUser(true)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, f.service.CancelSession(context.Background(), user.ID, session.ID))

	require.Equal(t, []uuid.UUID{session.ID}, f.store.deleted)
	active, err := f.store.ActiveSession(context.Background(), user.ID)
	require.NoError(t, err)
	require.Nil(t, active)
	require.NotEmpty(t, f.sink.failures)
}

func TestGrantMonitoringNeedsPendingConsent(t *testing.T) {
	f := newFixture(t)
	user := testUser(false)
	_, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.GrantMonitoring(context.Background(), user)
	require.ErrorIs(t, err, ErrConsentNotPending)
}

func TestDenyMonitoringKeepsConsentPending(t *testing.T) {
	f := newFixture(t)
	user := testUser(true)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)

	err = f.service.DenyMonitoring(context.Background(), user)
	require.ErrorIs(t, err, ErrSourceDenied)
	require.True(t, f.monitor.ConsentPending(session.ID))
}

func TestCurrentSnapshot(t *testing.T) {
	f := newFixture(t)
	user := testUser(true)
	session, err := f.service.ClockIn(context.Background(), user)
	require.NoError(t, err)
	f.advance(2 * time.Hour)

	snapshot, err := f.service.Current(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, snapshot.SessionID)
	require.True(t, snapshot.ConsentPending)
	require.False(t, snapshot.OnBreak)
	require.Equal(t, 2*time.Hour, snapshot.Elapsed)
	require.Equal(t, 6*time.Hour, snapshot.Remaining)
}
