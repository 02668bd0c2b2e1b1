package repository

import (
	"context"
	"errors"

	"github.com/varkes/adshort/internal/app/model"
	"gorm.io/gorm"
)

// AdSnippetRepository defines the data access contract for ad snippets.
type AdSnippetRepository interface {
	Create(ctx context.Context, ad *model.AdSnippet) error
	GetByID(ctx context.Context, id uint) (*model.AdSnippet, error)
	// GetActive returns one active snippet for the interstitial, or
	// ErrNotFound when none is configured.
	GetActive(ctx context.Context) (*model.AdSnippet, error)
	List(ctx context.Context) ([]model.AdSnippet, error)
	Update(ctx context.Context, ad *model.AdSnippet) error
	Delete(ctx context.Context, id uint) error
}

type adSnippetRepository struct {
	db *gorm.DB
}

// NewAdSnippetRepository returns a GORM-backed AdSnippetRepository.
func NewAdSnippetRepository(db *gorm.DB) AdSnippetRepository {
	return &adSnippetRepository{db: db}
}

func (r *adSnippetRepository) Create(ctx context.Context, ad *model.AdSnippet) error {
	if err := r.db.WithContext(ctx).Create(ad).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *adSnippetRepository) GetByID(ctx context.Context, id uint) (*model.AdSnippet, error) {
	var ad model.AdSnippet
	if err := r.db.WithContext(ctx).First(&ad, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ad, nil
}

func (r *adSnippetRepository) GetActive(ctx context.Context) (*model.AdSnippet, error) {
	var ad model.AdSnippet
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("updated_at DESC").
		First(&ad).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ad, nil
}

func (r *adSnippetRepository) List(ctx context.Context) ([]model.AdSnippet, error) {
	var result []model.AdSnippet
	if err := r.db.WithContext(ctx).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *adSnippetRepository) Update(ctx context.Context, ad *model.AdSnippet) error {
	result := r.db.WithContext(ctx).
		Model(&model.AdSnippet{}).
		Where("id = ?", ad.ID).
		Updates(map[string]interface{}{
			"name":   ad.Name,
			"html":   ad.HTML,
			"active": ad.Active,
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return ErrDuplicateKey
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return r.db.WithContext(ctx).First(ad, ad.ID).Error
}

func (r *adSnippetRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.AdSnippet{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
