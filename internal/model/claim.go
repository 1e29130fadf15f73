package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Вид отклика: кто на что претендует.
type ClaimKind string

const (
	ClaimKindSwap            ClaimKind = "swap_claim"
	ClaimKindFreecycle       ClaimKind = "freecycle_claim"
	ClaimKindVolunteerPledge ClaimKind = "volunteer_pledge"
)

// Статус взаимодействия «пользователь × пост». Машина состояний:
//
//	pending  -> approved | rejected
//	approved -> assigned
//	assigned -> completed | reopened
//	reopened -> assigned
//	любой нефинальный -> cancelled (отзыв самим заявителем)
//
// Статус хранится и читается из хранилища поста, никогда не
// изобретается на клиенте.
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusRejected  ClaimStatus = "rejected"
	ClaimStatusAssigned  ClaimStatus = "assigned"
	ClaimStatusCompleted ClaimStatus = "completed"
	ClaimStatusReopened  ClaimStatus = "reopened"
	ClaimStatusCancelled ClaimStatus = "cancelled"
)

// CanTransition проверяет допустимость перехода статуса.
func (s ClaimStatus) CanTransition(to ClaimStatus) bool {
	switch s {
	case ClaimStatusPending:
		return to == ClaimStatusApproved || to == ClaimStatusRejected || to == ClaimStatusCancelled
	case ClaimStatusApproved:
		return to == ClaimStatusAssigned || to == ClaimStatusCancelled
	case ClaimStatusAssigned:
		return to == ClaimStatusCompleted || to == ClaimStatusReopened
	case ClaimStatusReopened:
		return to == ClaimStatusAssigned || to == ClaimStatusCancelled
	case ClaimStatusRejected, ClaimStatusCompleted, ClaimStatusCancelled:
		return false
	}
	return false
}

// Active — отклик удерживает слот (учитывается при проверке занятости
// и при подсчёте волонтёрских мест).
func (s ClaimStatus) Active() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusAssigned, ClaimStatusReopened:
		return true
	}
	return false
}

// claims
type Claim struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ClaimantID uuid.UUID `gorm:"type:uuid;not null;index"`

	Kind   ClaimKind   `gorm:"type:varchar(32);not null"`
	Status ClaimStatus `gorm:"type:varchar(32);not null;index"`

	// Выбранный материализованный слот; nil, когда у поста нет календаря.
	SlotStart *time.Time `gorm:"type:timestamp with time zone;index"`
	SlotEnd   *time.Time `gorm:"type:timestamp with time zone"`

	Comment string `gorm:"type:text"`

	CreatedAt   time.Time  `gorm:"not null;default:now()"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()"`
	CancelledAt *time.Time `gorm:"type:timestamp with time zone"`

	Post     *Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Claimant *User `gorm:"foreignKey:ClaimantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (c *Claim) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
