package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScreenCapture struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:char(36);index;not null" json:"sessionId"`
	UserID     uuid.UUID `gorm:"type:char(36);index;not null" json:"userId"`
	ImageURL   string    `gorm:"size:2048;not null" json:"imageUrl"`
	CapturedAt time.Time `gorm:"not null" json:"capturedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c *ScreenCapture) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
