package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/model"
)

type ClaimRepository interface {
	// Создать отклик.
	Create(ctx context.Context, claim *model.Claim) error
	// Получить отклик по ID.
	GetByID(ctx context.Context, id string) (*model.Claim, error)
	// Обновить статус отклика (например, при отмене).
	UpdateStatus(ctx context.Context, id string, status model.ClaimStatus, cancelledAt *time.Time) error
	// Отклики по посту.
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Claim, int64, error)
	// Отклики пользователя.
	ListByClaimant(ctx context.Context, claimantID string, limit, offset int) ([]model.Claim, int64, error)
	// Занято ли начало слота активным откликом по посту.
	HasActiveClaimAt(ctx context.Context, postID string, slotStart time.Time) (bool, error)
	// Количество активных откликов по посту (лимит волонтёрских мест).
	CountActiveByPost(ctx context.Context, postID string) (int64, error)
	// Активный отклик пользователя по посту, если есть.
	FindActiveByPostAndClaimant(ctx context.Context, postID, claimantID string) (*model.Claim, error)
}

// Реализация на GORM.
type GormClaimRepository struct {
	db *gorm.DB
}

func NewGormClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// activeStatuses — статусы, удерживающие слот.
var activeStatuses = []model.ClaimStatus{
	model.ClaimStatusPending,
	model.ClaimStatusApproved,
	model.ClaimStatusAssigned,
	model.ClaimStatusReopened,
}

func (r *GormClaimRepository) Create(ctx context.Context, claim *model.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *GormClaimRepository) GetByID(ctx context.Context, id string) (*model.Claim, error) {
	var c model.Claim
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormClaimRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status model.ClaimStatus,
	cancelledAt *time.Time,
) error {
	update := map[string]any{
		"status": status,
	}
	if cancelledAt != nil {
		update["cancelled_at"] = *cancelledAt
	}
	return r.db.WithContext(ctx).
		Model(&model.Claim{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormClaimRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Claim, int64, error) {
	var (
		claims []model.Claim
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&model.Claim{}).Where("post_id = ?", postID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, 0, err
	}

	return claims, total, nil
}

func (r *GormClaimRepository) ListByClaimant(ctx context.Context, claimantID string, limit, offset int) ([]model.Claim, int64, error) {
	var (
		claims []model.Claim
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&model.Claim{}).Where("claimant_id = ?", claimantID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, 0, err
	}

	return claims, total, nil
}

func (r *GormClaimRepository) HasActiveClaimAt(ctx context.Context, postID string, slotStart time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Claim{}).
		Where("post_id = ?", postID).
		Where("slot_start = ?", slotStart).
		Where("status IN ?", activeStatuses).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormClaimRepository) CountActiveByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Claim{}).
		Where("post_id = ?", postID).
		Where("status IN ?", activeStatuses).
		Count(&count).
		Error
	return count, err
}

func (r *GormClaimRepository) FindActiveByPostAndClaimant(ctx context.Context, postID, claimantID string) (*model.Claim, error) {
	var c model.Claim
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Where("claimant_id = ?", claimantID).
		Where("status IN ?", activeStatuses).
		First(&c).
		Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
