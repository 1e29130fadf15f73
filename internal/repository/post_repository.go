package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/model"
)

type PostRepository interface {
	// Создать пост.
	Create(ctx context.Context, post *model.Post) error
	// Найти пост по ID.
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// Обновить пост целиком (календарь перезаписывается, не патчится).
	Update(ctx context.Context, post *model.Post) error
	// Проставить геокоординаты поста (фоновое догеокодирование адреса).
	UpdateCoordinates(ctx context.Context, id string, lat, lng float64) error
	// Удалить пост.
	Delete(ctx context.Context, id string) error
	// Лента постов, опционально по типу, с пагинацией.
	List(ctx context.Context, postType string, limit, offset int) ([]model.Post, int64, error)
	// Посты автора.
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]model.Post, int64, error)
}

type GormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *model.Post) error {
	// Save перезаписывает все колонки — полная замена по контракту хранения.
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *GormPostRepository) UpdateCoordinates(ctx context.Context, id string, lat, lng float64) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"lat": lat, "lng": lng}).
		Error
}

func (r *GormPostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}

func (r *GormPostRepository) List(ctx context.Context, postType string, limit, offset int) ([]model.Post, int64, error) {
	var posts []model.Post
	q := r.db.WithContext(ctx).Model(&model.Post{})

	if postType != "" {
		q = q.Where("type = ?", postType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *GormPostRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]model.Post, int64, error) {
	var posts []model.Post
	q := r.db.WithContext(ctx).Model(&model.Post{}).Where("author_id = ?", authorID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}
