package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeClaimCreated      EventType = "claim_created"
	EventTypeClaimStatusChange EventType = "claim_status_change"
	EventTypeClaimCancelled    EventType = "claim_cancelled"
	EventTypePostCreated       EventType = "post_created"
	EventTypePostUpdated       EventType = "post_updated"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	UserID  *uuid.UUID `gorm:"type:uuid;index"`
	PostID  *uuid.UUID `gorm:"type:uuid;index"`
	ClaimID *uuid.UUID `gorm:"type:uuid;index"`

	Details string `gorm:"type:text"`

	// Навигационные поля
	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Post  *Post  `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Claim *Claim `gorm:"foreignKey:ClaimID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
