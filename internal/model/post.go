package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип поста. Закрытое перечисление: новые типы добавляются здесь и ТОЛЬКО
// здесь, вся ветвящаяся логика идёт через методы ниже, а не через разбросанные
// сравнения строк.
type PostType string

const (
	PostTypeTaskPromo         PostType = "task_promo"
	PostTypeSwap              PostType = "swap"
	PostTypeFreecycle         PostType = "freecycle"
	PostTypeNotice            PostType = "notice"
	PostTypeVolunteerSlotPack PostType = "volunteer_slotpack"
)

// Known проверяет, что тип входит в закрытое множество.
func (t PostType) Known() bool {
	switch t {
	case PostTypeTaskPromo, PostTypeSwap, PostTypeFreecycle, PostTypeNotice, PostTypeVolunteerSlotPack:
		return true
	}
	return false
}

// CarriesCalendar: календарь доступности уместен только у обменов,
// фрисайкла и волонтёрских пакетов. Остальные типы календарь не хранят
// и не отдают, даже если клиент его прислал.
func (t PostType) CarriesCalendar() bool {
	switch t {
	case PostTypeSwap, PostTypeFreecycle, PostTypeVolunteerSlotPack:
		return true
	case PostTypeTaskPromo, PostTypeNotice:
		return false
	}
	return false
}

// CarriesSlotCount — количество волонтёрских мест есть только у slot pack.
func (t PostType) CarriesSlotCount() bool {
	return t == PostTypeVolunteerSlotPack
}

// CarriesTaskLink — ссылка на задачу есть только у промо задачи.
func (t PostType) CarriesTaskLink() bool {
	return t == PostTypeTaskPromo
}

// ValidatePostType возвращает ошибку для неизвестного типа.
func ValidatePostType(t PostType) error {
	if !t.Known() {
		return fmt.Errorf("unknown post type %q", string(t))
	}
	return nil
}

// posts
type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index"`

	Type PostType `gorm:"type:varchar(32);not null;index"`

	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	// Календарь доступности как JSONB; заполняется только для типов с
	// CarriesCalendar. Перезаписывается целиком, патч-семантики нет.
	Calendar datatypes.JSON `gorm:"type:jsonb"`

	// Количество волонтёрских мест (volunteer_slotpack).
	SlotCount *int `gorm:"type:int"`

	// Ссылка на задачу (task_promo).
	TaskID *uuid.UUID `gorm:"type:uuid;index"`

	// Геокодированная точка; заполняется геокодером по адресу.
	Address string   `gorm:"type:varchar(255)"`
	Lat     *float64 `gorm:"type:double precision"`
	Lng     *float64 `gorm:"type:double precision"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля
	Author *User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Claims []Claim `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
