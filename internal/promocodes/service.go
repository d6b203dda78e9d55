package promocodes

import (
	"context"
	"time"

	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/dbutil"
	"seatkeep/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	Validate(ctx context.Context, code string, orderAmount float64, eventID string) (*Quote, error)
	Create(ctx context.Context, req CreatePromoCodeRequest) (*PromoCode, error)
	List(ctx context.Context, eventID string) ([]PromoCode, error)
	Deactivate(ctx context.Context, code string) error

	// Redeem validates and consumes one redemption inside tx
	Redeem(tx *gorm.DB, code string, eventID uuid.UUID, orderAmount float64, now time.Time) (*Quote, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation(apperrors.CodeInvalidInput, "invalid %s %q", field, raw)
	}
	return id, nil
}

func (s *service) Validate(ctx context.Context, code string, orderAmount float64, eventID string) (*Quote, error) {
	id, err := parseUUID(eventID, "event ID")
	if err != nil {
		return nil, err
	}
	if orderAmount < 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "order amount cannot be negative")
	}

	p, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, apperrors.Internal(err, "failed to validate promo code")
	}
	return Check(p, id, orderAmount, s.now())
}

func (s *service) Redeem(tx *gorm.DB, code string, eventID uuid.UUID, orderAmount float64, now time.Time) (*Quote, error) {
	p, err := s.repo.GetByCodeForUpdate(tx, NormalizeCode(code))
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load promo code")
	}
	quote, err := Check(p, eventID, orderAmount, now)
	if err != nil {
		return nil, err
	}

	n, err := s.repo.IncrementUsage(tx, p.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to redeem promo code")
	}
	if n == 0 {
		return nil, apperrors.Conflict(apperrors.CodePromoExhausted, "promo code %s has no redemptions left", p.Code)
	}
	if quote.RemainingRedemptions > 0 {
		quote.RemainingRedemptions--
	}
	return quote, nil
}

func (s *service) Create(ctx context.Context, req CreatePromoCodeRequest) (*PromoCode, error) {
	p := &PromoCode{
		ID:             uuid.New(),
		Code:           NormalizeCode(req.Code),
		DiscountType:   DiscountPercent,
		DiscountAmount: req.DiscountAmount,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		MaxRedemptions: Unlimited,
		MinOrderAmount: req.MinOrderAmount,
		IsActive:       true,
		Description:    req.Description,
	}
	if req.DiscountType != "" {
		p.DiscountType = DiscountType(NormalizeCode(req.DiscountType))
	}
	if req.MaxRedemptions != nil {
		p.MaxRedemptions = *req.MaxRedemptions
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.EventID != "" {
		id, err := parseUUID(req.EventID, "event ID")
		if err != nil {
			return nil, err
		}
		p.EventID = &id
	}

	switch {
	case p.DiscountType != DiscountPercent && p.DiscountType != DiscountFixed:
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "unknown discount type %q", req.DiscountType)
	case p.DiscountType == DiscountPercent && p.DiscountAmount > 100:
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "percent discount cannot exceed 100")
	case p.MaxRedemptions == 0 || p.MaxRedemptions < Unlimited:
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "max redemptions must be -1 or positive")
	case p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt):
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "ends_at is before starts_at")
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, apperrors.Conflict(apperrors.CodeInvalidInput, "promo code %s already exists", p.Code)
		}
		return nil, apperrors.Internal(err, "failed to create promo code")
	}

	logger.GetDefault().InfoWithContext(ctx, "Promo Code Created", map[string]interface{}{
		"code":          p.Code,
		"discount_type": string(p.DiscountType),
		"global":        p.EventID == nil,
	})
	return p, nil
}

func (s *service) List(ctx context.Context, eventID string) ([]PromoCode, error) {
	var filter *uuid.UUID
	if eventID != "" {
		id, err := parseUUID(eventID, "event ID")
		if err != nil {
			return nil, err
		}
		filter = &id
	}

	codes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list promo codes")
	}
	return codes, nil
}

func (s *service) Deactivate(ctx context.Context, code string) error {
	n, err := s.repo.Deactivate(ctx, NormalizeCode(code))
	if err != nil {
		return apperrors.Internal(err, "failed to deactivate promo code")
	}
	if n == 0 {
		return apperrors.NotFound("promo code %s not found", NormalizeCode(code))
	}
	return nil
}
