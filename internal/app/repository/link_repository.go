package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/varkes/adshort/internal/app/model"
	"gorm.io/gorm"
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByID(ctx context.Context, id uint) (*model.Link, error)
	// GetByCodeOrAlias tries the code column first, then the alias
	// column. Both live in one namespace so at most one row matches.
	GetByCodeOrAlias(ctx context.Context, code string) (*model.Link, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error)
	// CodeInUse reports whether code is taken as either a code or an alias.
	CodeInUse(ctx context.Context, code string) (bool, error)
	// AllCodes returns every code and alias, used to warm the
	// generator's bloom filter at startup.
	AllCodes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, link *model.Link) error
	SetEnabled(ctx context.Context, id uint, enabled bool) error
	// IncrementClickCount performs a single atomic server-side add,
	// never a read-modify-write.
	IncrementClickCount(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type linkRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewLinkRepository returns a GORM-backed LinkRepository. The pgx pool
// is used for the click-count hot path and may be nil in tests, in
// which case the increment goes through GORM.
func NewLinkRepository(db *gorm.DB, pool *pgxpool.Pool) LinkRepository {
	return &linkRepository{db: db, pool: pool}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id uint) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) GetByCodeOrAlias(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if err == nil {
		return &link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).Where("alias = ?", code).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *linkRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("code = ? OR alias = ?", code, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepository) AllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}

	var aliases []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("alias IS NOT NULL").
		Pluck("alias", &aliases).Error; err != nil {
		return nil, err
	}

	return append(codes, aliases...), nil
}

func (r *linkRepository) Update(ctx context.Context, link *model.Link) error {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ?", link.ID).
		Updates(map[string]interface{}{
			"original_url":  link.OriginalURL,
			"alias":         link.Alias,
			"password_hash": link.PasswordHash,
			"enabled":       link.Enabled,
			"expires_at":    link.ExpiresAt,
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

	return r.db.WithContext(ctx).First(link, link.ID).Error
}

func (r *linkRepository) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ?", id).
		Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *linkRepository) IncrementClickCount(ctx context.Context, id uint) error {
	if r.pool != nil {
		_, err := r.pool.Exec(ctx,
			`UPDATE links SET click_count = click_count + 1 WHERE id = $1`, id)
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1")).Error
}

func (r *linkRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Link{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
