package promocodes

import (
	"strings"
	"time"

	"seatkeep/internal/shared/apperrors"

	"github.com/google/uuid"
)

// NormalizeCode upper-cases and trims a code as entered by a buyer
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Check applies the single validation contract shared by the validate
// endpoint and commit. p may be nil when the code does not exist.
func Check(p *PromoCode, eventID uuid.UUID, amount float64, now time.Time) (*Quote, error) {
	if p == nil {
		return nil, apperrors.NotFound("promo code not found")
	}
	invalid := func(reason string) *apperrors.Error {
		return apperrors.Validation(apperrors.CodePromoInvalid, "promo code %s %s", p.Code, reason)
	}

	switch {
	case !p.IsActive:
		return nil, invalid("is not active")
	case p.EventID != nil && *p.EventID != eventID:
		return nil, invalid("is not valid for this event")
	case p.StartsAt != nil && now.Before(*p.StartsAt):
		return nil, invalid("is not valid yet")
	case p.EndsAt != nil && now.After(*p.EndsAt):
		return nil, invalid("has expired")
	case amount < p.MinOrderAmount:
		return nil, invalid("requires a higher order amount").WithField("min_order_amount", p.MinOrderAmount)
	case p.Remaining() == 0:
		return nil, apperrors.Conflict(apperrors.CodePromoExhausted, "promo code %s has no redemptions left", p.Code)
	}

	discount := p.Discount(amount)
	return &Quote{
		Code:                 p.Code,
		DiscountType:         p.DiscountType,
		OrderAmount:          amount,
		Discount:             discount,
		FinalAmount:          roundCents(amount - discount),
		RemainingRedemptions: p.Remaining(),
	}, nil
}
