package promocodes

import (
	"context"
	"errors"
	"fmt"

	"seatkeep/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, code *PromoCode) error
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
	List(ctx context.Context, eventID *uuid.UUID) ([]PromoCode, error)
	Deactivate(ctx context.Context, code string) (int64, error)

	// Inside the commit transaction
	GetByCodeForUpdate(tx *gorm.DB, code string) (*PromoCode, error)
	IncrementUsage(tx *gorm.DB, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, code *PromoCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// GetByCode returns nil, nil when the code does not exist
func (r *repository) GetByCode(ctx context.Context, code string) (*PromoCode, error) {
	return findByCode(r.db.WithContext(ctx), code)
}

func (r *repository) GetByCodeForUpdate(tx *gorm.DB, code string) (*PromoCode, error) {
	return findByCode(tx.Clauses(dbutil.ForUpdate()), code)
}

func findByCode(db *gorm.DB, code string) (*PromoCode, error) {
	var p PromoCode
	err := db.Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load promo code: %w", err)
	}
	return &p, nil
}

// List returns codes usable for an event (its own and global ones), or all codes when eventID is nil
func (r *repository) List(ctx context.Context, eventID *uuid.UUID) ([]PromoCode, error) {
	var codes []PromoCode
	query := r.db.WithContext(ctx)
	if eventID != nil {
		query = query.Where("(event_id = ? OR event_id IS NULL)", *eventID)
	}
	err := query.Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *repository) Deactivate(ctx context.Context, code string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&PromoCode{}).
		Where("code = ?", code).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// IncrementUsage takes one redemption. The cap is re-checked in the UPDATE,
// so zero affected rows means the code ran out.
func (r *repository) IncrementUsage(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Model(&PromoCode{}).
		Where("id = ? AND (max_redemptions < 0 OR used_count < max_redemptions)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment promo usage: %w", res.Error)
	}
	return res.RowsAffected, nil
}
