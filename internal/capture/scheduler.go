// Package capture drives periodic screen captures for monitored sessions.
// Capture is best-effort instrumentation: individual tick failures are
// logged and skipped, never escalated to session state.
package capture

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"portal-backend/internal/models"
	"portal-backend/internal/storage"
)

// Default cadence: one capture every five minutes, with a bounded 100 ms
// readiness poll before the first one.
const (
	DefaultInterval     = 5 * time.Minute
	DefaultPollInterval = 100 * time.Millisecond
	DefaultPollAttempts = 50
)

// Store persists capture records.
type Store interface {
	CreateCapture(ctx context.Context, capture *models.ScreenCapture) error
}

// Scheduler owns one capture cycle for one session. It is created per
// consent grant and never reused; a paused session gets a new scheduler
// on the next grant.
type Scheduler struct {
	sessionID uuid.UUID
	userID    uuid.UUID
	source    Source
	blobs     storage.Blob
	store     Store
	logger    *log.Logger

	interval     time.Duration
	pollInterval time.Duration
	pollAttempts int

	// onRevoked fires only for unintentional source loss.
	onRevoked func()

	mu                     sync.Mutex
	pendingIntentionalStop bool
	stopped                bool
}

type SchedulerOption func(*Scheduler)

func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.interval = interval }
}

func WithReadinessPoll(interval time.Duration, attempts int) SchedulerOption {
	return func(s *Scheduler) {
		s.pollInterval = interval
		s.pollAttempts = attempts
	}
}

func WithLogger(logger *log.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

func NewScheduler(sessionID, userID uuid.UUID, source Source, blobs storage.Blob, store Store, onRevoked func(), opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sessionID:    sessionID,
		userID:       userID,
		source:       source,
		blobs:        blobs,
		store:        store,
		logger:       log.Default(),
		interval:     DefaultInterval,
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
		onRevoked:    onRevoked,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until the source ends or the context is cancelled. It waits
// for the source to report non-zero dimensions (bounded poll, then
// proceeds anyway), takes an immediate capture, then captures on the
// fixed period.
func (s *Scheduler) Run(ctx context.Context) {
	ready := func() bool {
		w, h := s.source.Dimensions()
		return w > 0 && h > 0
	}
	if !WaitReady(ctx, s.pollInterval, s.pollAttempts, ready) {
		s.logger.Printf("capture session=%s: source not ready after poll window, proceeding", s.sessionID)
	}

	s.captureOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-s.source.Done():
			if !s.consumeIntentionalStop() && s.onRevoked != nil {
				s.logger.Printf("capture session=%s: source revoked by user", s.sessionID)
				s.onRevoked()
			}
			return
		case <-ticker.C:
			s.captureOnce(ctx)
		}
	}
}

// Stop releases the source exactly once. It covers both the intentional
// pause on break-start and the final stop at completion; repeated calls
// are no-ops.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.pendingIntentionalStop = true
	s.mu.Unlock()

	s.source.Release()
}

// consumeIntentionalStop reads and immediately clears the latch, so one
// intentional stop excuses exactly one source-ended signal.
func (s *Scheduler) consumeIntentionalStop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	intentional := s.pendingIntentionalStop
	s.pendingIntentionalStop = false
	return intentional
}

func (s *Scheduler) captureOnce(ctx context.Context) {
	frame, err := s.source.Frame()
	if err != nil {
		s.logger.Printf("capture session=%s: no frame, skipping tick: %v", s.sessionID, err)
		recordCapture(false, time.Time{})
		return
	}

	now := time.Now()
	path := fmt.Sprintf("%s/%s/%d.jpg", s.userID, s.sessionID, now.UnixMilli())
	url, err := s.blobs.Upload(ctx, path, frame)
	if err != nil {
		s.logger.Printf("capture session=%s: upload failed, skipping tick: %v", s.sessionID, err)
		recordCapture(false, time.Time{})
		return
	}

	record := &models.ScreenCapture{
		SessionID:  s.sessionID,
		UserID:     s.userID,
		ImageURL:   url,
		CapturedAt: now,
	}
	if err := s.store.CreateCapture(ctx, record); err != nil {
		s.logger.Printf("capture session=%s: persist failed, skipping tick: %v", s.sessionID, err)
		recordCapture(false, time.Time{})
		return
	}
	recordCapture(true, now)
}
