package repository

import (
	"context"

	"github.com/varkes/adshort/internal/app/model"
	"gorm.io/gorm"
)

// APIKeyRepository defines the data access contract for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *model.APIKey) error
	// Revoke marks the key with the given digest as revoked. Returns
	// ErrNotFound when the user owns no key with that digest.
	Revoke(ctx context.Context, userID uint, digest string) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository returns a GORM-backed APIKeyRepository.
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) Create(ctx context.Context, key *model.APIKey) error {
	if err := r.db.WithContext(ctx).Create(key).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *apiKeyRepository) Revoke(ctx context.Context, userID uint, digest string) error {
	result := r.db.WithContext(ctx).
		Model(&model.APIKey{}).
		Where("user_id = ? AND digest = ?", userID, digest).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
