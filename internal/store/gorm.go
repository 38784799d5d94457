// Package store is the gorm-backed persistence layer for the attendance
// engine.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal-backend/internal/models"
)

type Gorm struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Gorm {
	return &Gorm{DB: db}
}

func (s *Gorm) ActiveSession(ctx context.Context, userID uuid.UUID) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		Order("created_at desc").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Gorm) CreateSession(ctx context.Context, session *models.AttendanceSession) error {
	return s.DB.WithContext(ctx).Create(session).Error
}

func (s *Gorm) SaveSession(ctx context.Context, session *models.AttendanceSession) error {
	return s.DB.WithContext(ctx).Save(session).Error
}

func (s *Gorm) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.AttendanceSession{}, "id = ?", sessionID).Error
}

func (s *Gorm) OpenBreak(ctx context.Context, sessionID uuid.UUID) (*models.BreakEntry, error) {
	var entry models.BreakEntry
	err := s.DB.WithContext(ctx).
		Where("session_id = ? AND break_end IS NULL", sessionID).
		Order("created_at desc").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Gorm) SessionBreaks(ctx context.Context, sessionID uuid.UUID) ([]models.BreakEntry, error) {
	var entries []models.BreakEntry
	err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").Find(&entries).Error
	return entries, err
}

func (s *Gorm) CreateBreak(ctx context.Context, entry *models.BreakEntry) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

func (s *Gorm) SaveBreak(ctx context.Context, entry *models.BreakEntry) error {
	return s.DB.WithContext(ctx).Save(entry).Error
}

func (s *Gorm) CreateCapture(ctx context.Context, capture *models.ScreenCapture) error {
	return s.DB.WithContext(ctx).Create(capture).Error
}

// SessionByID fetches one session with its break ledger preloaded.
func (s *Gorm) SessionByID(ctx context.Context, sessionID uuid.UUID) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	err := s.DB.WithContext(ctx).Preload("Breaks", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionsForUser lists the user's sessions, newest first, with their
// break ledgers preloaded.
func (s *Gorm) SessionsForUser(ctx context.Context, userID uuid.UUID) ([]models.AttendanceSession, error) {
	var sessions []models.AttendanceSession
	err := s.DB.WithContext(ctx).Preload("Breaks", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).Where("user_id = ?", userID).Order("created_at desc").Find(&sessions).Error
	return sessions, err
}

// CapturesForSession lists capture records, oldest first.
func (s *Gorm) CapturesForSession(ctx context.Context, sessionID uuid.UUID) ([]models.ScreenCapture, error) {
	var captures []models.ScreenCapture
	err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("captured_at asc").Find(&captures).Error
	return captures, err
}
