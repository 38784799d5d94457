package capture

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"portal-backend/internal/storage"
)

var (
	// ErrNoMonitoring is returned when a frame or revoke arrives for a
	// session with no live capture cycle.
	ErrNoMonitoring = errors.New("no active monitoring for session")
)

// Manager tracks the live monitoring state of every session: pending
// consent requests, bound sources and running schedulers. Each session
// owns its own cancellable capture cycle; nothing here is process-wide.
type Manager struct {
	blobs  storage.Blob
	store  Store
	logger *log.Logger

	interval     time.Duration
	pollInterval time.Duration
	pollAttempts int

	// onRevoked is the session controller's cancellation edge. Set once
	// during wiring, before any session is admitted.
	onRevoked func(sessionID, userID uuid.UUID)

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionMonitor
}

type sessionMonitor struct {
	userID         uuid.UUID
	consentPending bool
	source         *FrameSource
	scheduler      *Scheduler
	cancel         context.CancelFunc
}

type ManagerOption func(*Manager)

func WithCaptureInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) { m.interval = interval }
}

func WithManagerLogger(logger *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(blobs storage.Blob, store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		blobs:        blobs,
		store:        store,
		logger:       log.Default(),
		interval:     DefaultInterval,
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
		sessions:     make(map[uuid.UUID]*sessionMonitor),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetRevokedHandler wires the unintentional-stop signal to the session
// controller's cancellation edge.
func (m *Manager) SetRevokedHandler(fn func(sessionID, userID uuid.UUID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRevoked = fn
}

// RequestConsent opens (or reopens) a consent cycle for the session. The
// scheduler never requests access on its own; this only flags the prompt.
func (m *Manager) RequestConsent(sessionID, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := m.sessions[sessionID]
	if ms == nil {
		ms = &sessionMonitor{}
		m.sessions[sessionID] = ms
	}
	ms.userID = userID
	ms.consentPending = true
}

func (m *Manager) ConsentPending(sessionID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := m.sessions[sessionID]
	return ms != nil && ms.consentPending
}

// Grant binds a fresh source to the session and starts its capture
// cycle. Must follow a pending consent request.
func (m *Manager) Grant(sessionID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms := m.sessions[sessionID]
	if ms == nil || !ms.consentPending {
		return ErrNoMonitoring
	}

	ms.consentPending = false
	ms.userID = userID
	ms.source = NewFrameSource()

	ctx, cancel := context.WithCancel(context.Background())
	ms.cancel = cancel
	ms.scheduler = NewScheduler(sessionID, userID, ms.source, m.blobs, m.store,
		func() { m.handleRevoked(sessionID) },
		WithInterval(m.interval),
		WithReadinessPoll(m.pollInterval, m.pollAttempts),
		WithLogger(m.logger),
	)
	go ms.scheduler.Run(ctx)
	return nil
}

// PushFrame feeds the latest client frame to the session's source.
func (m *Manager) PushFrame(sessionID uuid.UUID, jpegBytes []byte) error {
	m.mu.Lock()
	ms := m.sessions[sessionID]
	var source *FrameSource
	if ms != nil {
		source = ms.source
	}
	m.mu.Unlock()

	if source == nil {
		return ErrNoMonitoring
	}
	return source.Push(jpegBytes)
}

// Revoke is the user ending the share outside of a break. The source's
// ended signal propagates through the scheduler, which decides whether
// the stop was intentional.
func (m *Manager) Revoke(sessionID uuid.UUID) error {
	m.mu.Lock()
	ms := m.sessions[sessionID]
	var source *FrameSource
	if ms != nil {
		source = ms.source
	}
	m.mu.Unlock()

	if source == nil {
		return ErrNoMonitoring
	}
	source.End()
	return nil
}

// Pause stops the capture cycle for a break without tearing down the
// session's monitoring state. Resumption requires a fresh consent grant.
func (m *Manager) Pause(sessionID uuid.UUID) {
	m.mu.Lock()
	ms := m.sessions[sessionID]
	var scheduler *Scheduler
	var cancel context.CancelFunc
	if ms != nil {
		scheduler = ms.scheduler
		cancel = ms.cancel
		ms.scheduler = nil
		ms.cancel = nil
		ms.source = nil
	}
	m.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

// Stop tears down all monitoring state for the session. Idempotent.
func (m *Manager) Stop(sessionID uuid.UUID) {
	m.mu.Lock()
	ms := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	var scheduler *Scheduler
	var cancel context.CancelFunc
	if ms != nil {
		scheduler = ms.scheduler
		cancel = ms.cancel
	}
	m.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

func (m *Manager) handleRevoked(sessionID uuid.UUID) {
	m.mu.Lock()
	ms := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	var userID uuid.UUID
	var cancel context.CancelFunc
	if ms != nil {
		userID = ms.userID
		cancel = ms.cancel
	}
	onRevoked := m.onRevoked
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ms != nil && onRevoked != nil {
		onRevoked(sessionID, userID)
	}
}
