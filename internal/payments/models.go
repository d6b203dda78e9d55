package payments

import "strings"

// Status is the outcome reported by the payment provider
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusTimedOut  Status = "TIMED_OUT"
)

// Result is one payment outcome message
type Result struct {
	PaymentID string `json:"payment_id,omitempty"`
	OwnerRef  string `json:"owner_ref"`
	Status    Status `json:"status"`
	PromoCode string `json:"promo_code,omitempty"`
}

func (r *Result) normalize() {
	r.OwnerRef = strings.TrimSpace(r.OwnerRef)
	r.Status = Status(strings.ToUpper(strings.TrimSpace(string(r.Status))))
	r.PromoCode = strings.TrimSpace(r.PromoCode)
}
