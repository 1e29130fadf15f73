package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статус аккаунта. Заблокированные и деактивированные пользователи
// не могут оставлять отклики.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Handle       string `gorm:"type:varchar(64);not null;uniqueIndex"`
	DisplayName  string `gorm:"type:varchar(255)"`
	ContactPhone string `gorm:"type:varchar(32)"`

	Status UserStatus `gorm:"type:varchar(32);not null;default:'active';index"`

	Note string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля (опционально)
	Posts  []Post  `gorm:"foreignKey:AuthorID"`
	Claims []Claim `gorm:"foreignKey:ClaimantID"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
