package repository

import (
	"context"
	"time"

	"github.com/varkes/adshort/internal/app/model"
	"gorm.io/gorm"
)

// ClickRepository defines the data access contract for click records.
type ClickRepository interface {
	Create(ctx context.Context, click *model.Click) error
	// ListSince loads every click for a link newer than since. The
	// analytics window is bounded (30 days), so no pagination.
	ListSince(ctx context.Context, linkID uint, since time.Time) ([]model.Click, error)
	DeleteByLink(ctx context.Context, linkID uint) error
}

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository returns a GORM-backed ClickRepository.
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(ctx context.Context, click *model.Click) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *clickRepository) ListSince(ctx context.Context, linkID uint, since time.Time) ([]model.Click, error) {
	var result []model.Click
	if err := r.db.WithContext(ctx).
		Where("link_id = ? AND timestamp >= ?", linkID, since).
		Order("timestamp ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *clickRepository) DeleteByLink(ctx context.Context, linkID uint) error {
	return r.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Delete(&model.Click{}).Error
}
