package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EodReport struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:char(36);uniqueIndex;not null" json:"sessionId"`
	UserID    uuid.UUID `gorm:"type:char(36);index;not null" json:"userId"`
	Summary   string    `gorm:"type:text;not null" json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *EodReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
