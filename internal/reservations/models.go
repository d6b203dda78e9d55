package reservations

import (
	"math"
	"time"

	"seatkeep/internal/seats"
)

// Release reasons, recorded in logs and seat events
const (
	ReasonReleased  = "released"
	ReasonPayment   = "payment_failed"
	ReasonExpired   = "expired"
	ReasonCancelled = "cancelled"
)

// Reservation is the view over the seats one owner currently holds
type Reservation struct {
	OwnerRef  string     `json:"owner_ref"`
	EventID   string     `json:"event_id"`
	SeatIDs   []string   `json:"seat_ids"`
	Seats     []SeatLine `json:"seats"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Subtotal  float64    `json:"subtotal"`
}

// SeatLine is one seat on a reservation or receipt
type SeatLine struct {
	ID         string  `json:"id"`
	Section    string  `json:"section"`
	RowLabel   string  `json:"row_label"`
	SeatNumber string  `json:"seat_number"`
	Tier       string  `json:"tier"`
	Price      float64 `json:"price"`
}

// Receipt is returned by a successful commit
type Receipt struct {
	OwnerRef  string     `json:"owner_ref"`
	EventID   string     `json:"event_id"`
	Seats     []SeatLine `json:"seats"`
	Subtotal  float64    `json:"subtotal"`
	PromoCode string     `json:"promo_code,omitempty"`
	Discount  float64    `json:"discount"`
	Total     float64    `json:"total"`
	SoldAt    time.Time  `json:"sold_at"`
}

// ReleaseResult reports seats returned to the pool
type ReleaseResult struct {
	OwnerRef string   `json:"owner_ref"`
	Released int      `json:"released"`
	SeatIDs  []string `json:"seat_ids"`
}

func lines(held []seats.Seat) ([]SeatLine, []string, float64) {
	out := make([]SeatLine, 0, len(held))
	ids := make([]string, 0, len(held))
	var subtotal float64
	for _, s := range held {
		out = append(out, SeatLine{
			ID:         s.ID.String(),
			Section:    s.Section,
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			Tier:       s.Tier,
			Price:      s.Price,
		})
		ids = append(ids, s.ID.String())
		subtotal += s.Price
	}
	return out, ids, roundCents(subtotal)
}

// newReservation builds the view; held must be non-empty and all active
func newReservation(owner string, held []seats.Seat) *Reservation {
	seatLines, ids, subtotal := lines(held)
	r := &Reservation{
		OwnerRef: owner,
		EventID:  held[0].EventID.String(),
		SeatIDs:  ids,
		Seats:    seatLines,
		Subtotal: subtotal,
	}
	for _, s := range held {
		if s.HeldAt != nil && (r.CreatedAt.IsZero() || s.HeldAt.Before(r.CreatedAt)) {
			r.CreatedAt = *s.HeldAt
		}
		if s.HoldExpiresAt != nil && (r.ExpiresAt.IsZero() || s.HoldExpiresAt.Before(r.ExpiresAt)) {
			r.ExpiresAt = *s.HoldExpiresAt
		}
	}
	return r
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
