package promocodes

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Unlimited is the max_redemptions value of a code without a cap
const Unlimited = -1

// PromoCode is a discount that commit may redeem. A nil EventID makes the code global.
type PromoCode struct {
	ID             uuid.UUID    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code           string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	EventID        *uuid.UUID   `gorm:"type:varchar(36);index" json:"event_id,omitempty"`
	DiscountType   DiscountType `gorm:"type:varchar(10);not null" json:"discount_type"`
	DiscountAmount float64      `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	StartsAt       *time.Time   `json:"starts_at,omitempty"`
	EndsAt         *time.Time   `json:"ends_at,omitempty"`
	MaxRedemptions int          `gorm:"not null" json:"max_redemptions"`
	UsedCount      int          `gorm:"not null" json:"used_count"`
	MinOrderAmount float64      `gorm:"type:decimal(10,2);not null" json:"min_order_amount"`
	IsActive       bool         `gorm:"not null" json:"is_active"`
	Description    string       `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}

// Remaining is the number of redemptions left, or Unlimited
func (p *PromoCode) Remaining() int {
	if p.MaxRedemptions < 0 {
		return Unlimited
	}
	if left := p.MaxRedemptions - p.UsedCount; left > 0 {
		return left
	}
	return 0
}

// Discount computes the discount for an order amount, always within [0, amount]
func (p *PromoCode) Discount(amount float64) float64 {
	if amount <= 0 || p.DiscountAmount <= 0 {
		return 0
	}

	var d float64
	switch p.DiscountType {
	case DiscountPercent:
		pct := math.Min(p.DiscountAmount, 100)
		d = math.Round(amount*pct) / 100
	case DiscountFixed:
		d = p.DiscountAmount
	}
	return math.Min(math.Max(d, 0), amount)
}

// Quote is the outcome of validating a code against an order
type Quote struct {
	Code                 string       `json:"code"`
	DiscountType         DiscountType `json:"discount_type"`
	OrderAmount          float64      `json:"order_amount"`
	Discount             float64      `json:"discount"`
	FinalAmount          float64      `json:"final_amount"`
	RemainingRedemptions int          `json:"remaining_redemptions"`
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
