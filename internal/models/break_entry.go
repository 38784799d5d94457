package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BreakTypeLunch    = "lunch"
	BreakTypeCoffee   = "coffee"
	BreakTypeBathroom = "bathroom"
	BreakTypePersonal = "personal"
	BreakTypeOther    = "other"
)

func ValidBreakType(breakType string) bool {
	switch breakType {
	case BreakTypeLunch, BreakTypeCoffee, BreakTypeBathroom, BreakTypePersonal, BreakTypeOther:
		return true
	}
	return false
}

type BreakEntry struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID  uuid.UUID  `gorm:"type:char(36);index;not null" json:"sessionId"`
	BreakType  string     `gorm:"size:20;not null" json:"breakType"`
	BreakStart time.Time  `gorm:"not null" json:"breakStart"`
	BreakEnd   *time.Time `json:"breakEnd,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (b *BreakEntry) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
