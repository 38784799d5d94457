package attendance

import (
	"context"

	"github.com/google/uuid"

	"portal-backend/internal/models"
)

// Store captures the persistence operations the session engine needs.
// Lookups return nil (no error) when no matching row exists.
type Store interface {
	ActiveSession(ctx context.Context, userID uuid.UUID) (*models.AttendanceSession, error)
	CreateSession(ctx context.Context, session *models.AttendanceSession) error
	SaveSession(ctx context.Context, session *models.AttendanceSession) error
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	OpenBreak(ctx context.Context, sessionID uuid.UUID) (*models.BreakEntry, error)
	SessionBreaks(ctx context.Context, sessionID uuid.UUID) ([]models.BreakEntry, error)
	CreateBreak(ctx context.Context, entry *models.BreakEntry) error
	SaveBreak(ctx context.Context, entry *models.BreakEntry) error
}

// ReportChecker is the end-of-day report collaborator. The engine only
// asks whether a report exists for a session.
type ReportChecker interface {
	HasReport(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// Monitor is the capture side of the engine: consent bookkeeping and the
// pause/stop hooks the controller drives on break and completion edges.
type Monitor interface {
	RequestConsent(sessionID, userID uuid.UUID)
	ConsentPending(sessionID uuid.UUID) bool
	Pause(sessionID uuid.UUID)
	Stop(sessionID uuid.UUID)
}
