package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

type AttendanceSession struct {
	ID                      uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID                  uuid.UUID    `gorm:"type:char(36);index;not null" json:"userId"`
	ClockIn                 time.Time    `gorm:"not null" json:"clockIn"`
	ClockOut                *time.Time   `json:"clockOut,omitempty"`
	Status                  string       `gorm:"size:20;index;not null" json:"status"`
	ScreenMonitoringEnabled bool         `gorm:"not null;default:false" json:"screenMonitoringEnabled"`
	TotalHours              *float64     `json:"totalHours,omitempty"`
	Breaks                  []BreakEntry `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"breaks,omitempty"`
	CreatedAt               time.Time    `json:"createdAt"`
}

func (s *AttendanceSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
