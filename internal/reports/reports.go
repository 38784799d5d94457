// Package reports is the end-of-day report collaborator. The attendance
// engine only consults HasReport as a clock-out precondition; submission
// and retrieval live here for the portal surface.
package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal-backend/internal/models"
)

var ErrAlreadySubmitted = errors.New("a report was already submitted for this session")

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) HasReport(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.EodReport{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Submit(ctx context.Context, report *models.EodReport) error {
	exists, err := s.HasReport(ctx, report.SessionID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadySubmitted
	}
	return s.DB.WithContext(ctx).Create(report).Error
}

func (s *Store) ForSession(ctx context.Context, sessionID uuid.UUID) (*models.EodReport, error) {
	var report models.EodReport
	err := s.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
