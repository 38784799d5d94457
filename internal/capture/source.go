package capture

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"sync"
)

var (
	// ErrNoFrame is returned when the source has not produced a frame yet.
	ErrNoFrame = errors.New("no frame available from capture source")
	// ErrSourceEnded rejects frames pushed after the source ended.
	ErrSourceEnded = errors.New("capture source ended")
)

// Source is a consented screen/window capture source. Dimensions stay
// zero until the source has produced its first usable frame. Done is
// closed exactly once when the source ends, whether released by us or
// revoked by the user.
type Source interface {
	Dimensions() (width, height int)
	Frame() ([]byte, error)
	Release()
	Done() <-chan struct{}
}

// FrameSource is fed JPEG frames by the transport layer (the client
// pushes what its screen-share API produces). It satisfies Source.
type FrameSource struct {
	mu      sync.Mutex
	frame   []byte
	width   int
	height  int
	done    chan struct{}
	endOnce sync.Once
}

func NewFrameSource() *FrameSource {
	return &FrameSource{done: make(chan struct{})}
}

// Push stores the latest frame. Dimensions are read from the JPEG header
// so readiness reflects a decodable, non-zero-size image.
func (s *FrameSource) Push(jpegBytes []byte) error {
	select {
	case <-s.done:
		return ErrSourceEnded
	default:
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(jpegBytes))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = jpegBytes
	s.width = cfg.Width
	s.height = cfg.Height
	return nil
}

func (s *FrameSource) Dimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *FrameSource) Frame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil, ErrNoFrame
	}
	frame := make([]byte, len(s.frame))
	copy(frame, s.frame)
	return frame, nil
}

// Release drops the buffered frame and ends the source. Safe to call more
// than once.
func (s *FrameSource) Release() {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
	s.endOnce.Do(func() { close(s.done) })
}

// End marks the source as ended by the user (revocation).
func (s *FrameSource) End() {
	s.endOnce.Do(func() { close(s.done) })
}

func (s *FrameSource) Done() <-chan struct{} {
	return s.done
}
