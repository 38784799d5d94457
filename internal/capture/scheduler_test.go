package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portal-backend/internal/models"
)

type stubSource struct {
	mu       sync.Mutex
	frame    []byte
	width    int
	height   int
	released int
	done     chan struct{}
	endOnce  sync.Once
}

func newStubSource(width, height int) *stubSource {
	return &stubSource{
		frame:  []byte("jpeg-bytes"),
		width:  width,
		height: height,
		done:   make(chan struct{}),
	}
}

func (s *stubSource) Dimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *stubSource) Frame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil, ErrNoFrame
	}
	return s.frame, nil
}

func (s *stubSource) Release() {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
	s.endOnce.Do(func() { close(s.done) })
}

func (s *stubSource) End() {
	s.endOnce.Do(func() { close(s.done) })
}

func (s *stubSource) Done() <-chan struct{} { return s.done }

func (s *stubSource) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type stubBlob struct {
	mu      sync.Mutex
	fail    bool
	uploads []string
}

func (b *stubBlob) Upload(_ context.Context, path string, _ []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return "", errors.New("upload unavailable")
	}
	b.uploads = append(b.uploads, path)
	return path, nil
}

func (b *stubBlob) setFail(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = fail
}

type stubCaptureStore struct {
	mu       sync.Mutex
	captures []models.ScreenCapture
}

func (s *stubCaptureStore) CreateCapture(_ context.Context, capture *models.ScreenCapture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures = append(s.captures, *capture)
	return nil
}

func (s *stubCaptureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.captures)
}

func newTestScheduler(source Source, blobs *stubBlob, store *stubCaptureStore, onRevoked func()) *Scheduler {
	return NewScheduler(uuid.New(), uuid.New(), source, blobs, store, onRevoked,
		WithInterval(20*time.Millisecond),
		WithReadinessPoll(time.Millisecond, 3),
	)
}

func TestSchedulerCapturesImmediatelyThenPeriodically(t *testing.T) {
	source := newStubSource(1920, 1080)
	blobs := &stubBlob{}
	store := &stubCaptureStore{}

	scheduler := newTestScheduler(source, blobs, store, nil)
	go scheduler.Run(context.Background())
	defer scheduler.Stop()

	require.Eventually(t, func() bool { return store.count() >= 3 },
		2*time.Second, 5*time.Millisecond)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	source := newStubSource(1920, 1080)
	blobs := &stubBlob{}
	store := &stubCaptureStore{}

	revoked := make(chan struct{}, 1)
	scheduler := newTestScheduler(source, blobs, store, func() { revoked <- struct{}{} })

	done := make(chan struct{})
	go func() {
		scheduler.Run(context.Background())
		close(done)
	}()

	scheduler.Stop()
	scheduler.Stop()
	scheduler.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not exit after stop")
	}

	require.Equal(t, 1, source.releaseCount())
	select {
	case <-revoked:
		t.Fatal("intentional stop must not raise the revoked signal")
	default:
	}
}

func TestSchedulerRaisesRevokedOnUnintentionalEnd(t *testing.T) {
	source := newStubSource(1920, 1080)
	blobs := &stubBlob{}
	store := &stubCaptureStore{}

	revoked := make(chan struct{})
	scheduler := newTestScheduler(source, blobs, store, func() { close(revoked) })
	go scheduler.Run(context.Background())

	source.End()

	select {
	case <-revoked:
	case <-time.After(2 * time.Second):
		t.Fatal("revoked signal not raised")
	}
}

func TestSchedulerSkipsFailedTicksAndKeepsGoing(t *testing.T) {
	source := newStubSource(1920, 1080)
	blobs := &stubBlob{}
	blobs.setFail(true)
	store := &stubCaptureStore{}

	scheduler := newTestScheduler(source, blobs, store, nil)
	go scheduler.Run(context.Background())
	defer scheduler.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, store.count())

	blobs.setFail(false)
	require.Eventually(t, func() bool { return store.count() >= 1 },
		2*time.Second, 5*time.Millisecond)
}

func TestSchedulerProceedsWhenSourceNeverReady(t *testing.T) {
	source := newStubSource(0, 0)
	blobs := &stubBlob{}
	store := &stubCaptureStore{}

	scheduler := newTestScheduler(source, blobs, store, nil)
	go scheduler.Run(context.Background())
	defer scheduler.Stop()

	// The frame is still served, so captures happen despite the
	// readiness timeout.
	require.Eventually(t, func() bool { return store.count() >= 1 },
		2*time.Second, 5*time.Millisecond)
}
