package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByHandle(ctx context.Context, handle string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	UpsertUser(ctx context.Context, handle, displayName, contactPhone string) (*model.User, error)
	UpdateContacts(ctx context.Context, handle, displayName, contactPhone, note string) (*model.User, error)
	SetStatus(ctx context.Context, handle string, status model.UserStatus) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByHandle(ctx context.Context, handle string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	// Keep only digits; ignore formatting characters.
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	n := normalizePhone(phone)
	if n == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var u model.User
	// Try normalized first, then raw (in case old data is not normalized).
	q := r.db.WithContext(ctx).Model(&model.User{}).
		Where("contact_phone = ?", n)
	if strings.TrimSpace(phone) != n {
		q = q.Or("contact_phone = ?", strings.TrimSpace(phone))
	}
	if err := q.First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) UpsertUser(ctx context.Context, handle, displayName, contactPhone string) (*model.User, error) {
	contactPhone = normalizePhone(contactPhone)
	var u model.User
	tx := r.db.WithContext(ctx).Where("handle = ?", handle).First(&u)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			u.Handle = handle
			u.DisplayName = displayName
			u.ContactPhone = contactPhone
			u.Status = model.UserStatusActive
			if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
				return nil, err
			}
			return &u, nil
		}
		return nil, tx.Error
	}
	// update existing
	updates := map[string]any{
		"display_name":  displayName,
		"contact_phone": contactPhone,
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("handle = ?", handle).Updates(updates).Error; err != nil {
		return nil, err
	}
	u.DisplayName = displayName
	u.ContactPhone = contactPhone
	return &u, nil
}

func (r *GormUserRepository) UpdateContacts(ctx context.Context, handle, displayName, contactPhone, note string) (*model.User, error) {
	updates := map[string]any{}
	if displayName != "" {
		updates["display_name"] = displayName
	}
	if contactPhone != "" {
		updates["contact_phone"] = normalizePhone(contactPhone)
	}
	if note != "" {
		updates["note"] = note
	}
	if len(updates) == 0 {
		// nothing to update; just return current user
		return r.FindByHandle(ctx, handle)
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("handle = ?", handle).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByHandle(ctx, handle)
}

func (r *GormUserRepository) SetStatus(ctx context.Context, handle string, status model.UserStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("handle = ?", handle).
		Update("status", status).
		Error
}
