package promocodes

import "time"

type CreatePromoCodeRequest struct {
	Code           string     `json:"code" binding:"required,min=3,max=50"`
	EventID        string     `json:"event_id" binding:"omitempty,uuid"`
	DiscountType   string     `json:"discount_type" binding:"omitempty,oneof=PERCENT FIXED percent fixed"`
	DiscountAmount float64    `json:"discount_amount" binding:"required,gt=0"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	MaxRedemptions *int       `json:"max_redemptions" binding:"omitempty,min=-1"`
	MinOrderAmount float64    `json:"min_order_amount" binding:"min=0"`
	IsActive       *bool      `json:"is_active"`
	Description    string     `json:"description" binding:"max=255"`
}

type ValidatePromoCodeRequest struct {
	Code        string  `json:"code" binding:"required"`
	EventID     string  `json:"event_id" binding:"required,uuid"`
	OrderAmount float64 `json:"order_amount" binding:"min=0"`
}

type ListPromoCodesQuery struct {
	EventID string `form:"event_id" binding:"omitempty,uuid"`
}
