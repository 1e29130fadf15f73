package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/repository"
)

var (
	ErrInvalidHandle = errors.New("invalid handle")
	ErrUserNotFound  = errors.New("user not found")
)

// UserService реализует регистрацию и управление профилем по хэндлу.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterUser создаёт пользователя по хэндлу или возвращает существующего,
// обновляя контактные данные.
func (s *UserService) RegisterUser(ctx context.Context, handle, displayName, contactPhone string) (*model.User, error) {
	if handle == "" {
		return nil, ErrInvalidHandle
	}
	return s.userRepo.UpsertUser(ctx, handle, displayName, contactPhone)
}

// UpdateContacts обновляет отображаемое имя, телефон и заметку.
func (s *UserService) UpdateContacts(ctx context.Context, handle, displayName, contactPhone, note string) (*model.User, error) {
	if handle == "" {
		return nil, ErrInvalidHandle
	}
	u, err := s.userRepo.UpdateContacts(ctx, handle, displayName, contactPhone, note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetProfile возвращает профиль пользователя по хэндлу.
func (s *UserService) GetProfile(ctx context.Context, handle string) (*model.User, error) {
	if handle == "" {
		return nil, ErrInvalidHandle
	}
	u, err := s.userRepo.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// FindByPhone ищет профиль по контактному телефону. Формат номера не важен:
// сравнение идёт по нормализованным цифрам.
func (s *UserService) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	u, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// SetStatus меняет статус аккаунта (active / inactive / blocked).
func (s *UserService) SetStatus(ctx context.Context, handle string, status model.UserStatus) error {
	if handle == "" {
		return ErrInvalidHandle
	}
	return s.userRepo.SetStatus(ctx, handle, status)
}
