// Package notify isolates user-facing notifications behind a sink so the
// session engine can be tested without a UI. Delivery is fire-and-forget.
package notify

import (
	"log"

	"github.com/google/uuid"
)

// Sink receives user-facing messages. Implementations must not block the
// caller on delivery problems.
type Sink interface {
	Success(userID uuid.UUID, message string)
	Failure(userID uuid.UUID, message string)
}

// LogSink writes notifications to the process log.
type LogSink struct {
	Logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Success(userID uuid.UUID, message string) {
	s.Logger.Printf("notify user=%s ok: %s", userID, message)
}

func (s *LogSink) Failure(userID uuid.UUID, message string) {
	s.Logger.Printf("notify user=%s error: %s", userID, message)
}

// Fanout delivers each notification to every sink.
type Fanout []Sink

func (f Fanout) Success(userID uuid.UUID, message string) {
	for _, sink := range f {
		sink.Success(userID, message)
	}
}

func (f Fanout) Failure(userID uuid.UUID, message string) {
	for _, sink := range f {
		sink.Failure(userID, message)
	}
}
