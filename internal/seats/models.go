package seats

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a seat
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHeld      Status = "HELD"
	StatusSold      Status = "SOLD"
)

// Seat is one unit of inventory. Holds live on the row itself: a reservation
// is the set of HELD seats sharing a holder_ref.
type Seat struct {
	ID            uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID       uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_seats_position,priority:1;index:idx_seats_event_status,priority:1" json:"event_id"`
	ObjectID      uuid.UUID  `gorm:"type:varchar(36);index" json:"object_id"`
	Section       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_seats_position,priority:2" json:"section"`
	RowLabel      string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_seats_position,priority:3" json:"row_label"`
	SeatNumber    string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_seats_position,priority:4" json:"seat_number"`
	Tier          string     `gorm:"type:varchar(20);not null" json:"tier"`
	Price         float64    `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Status        Status     `gorm:"type:varchar(20);not null;default:'AVAILABLE';index:idx_seats_event_status,priority:2" json:"status"`
	HolderRef     *string    `gorm:"type:varchar(100);index" json:"holder_ref,omitempty"`
	HeldAt        *time.Time `json:"held_at,omitempty"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
	Ordinal       int        `gorm:"not null;default:0" json:"ordinal"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Seat) TableName() string {
	return "seats"
}

// Holder returns the hold owner or buyer reference, empty when unset
func (s *Seat) Holder() string {
	if s.HolderRef == nil {
		return ""
	}
	return *s.HolderRef
}

// HoldActive reports whether the seat is HELD with an expiry still in the future
func (s *Seat) HoldActive(now time.Time) bool {
	return s.Status == StatusHeld && s.HoldExpiresAt != nil && s.HoldExpiresAt.After(now)
}

// EffectiveStatus is the status every read path reports: an expired hold is AVAILABLE.
func (s *Seat) EffectiveStatus(now time.Time) Status {
	if s.Status == StatusHeld && !s.HoldActive(now) {
		return StatusAvailable
	}
	return s.Status
}

// Label renders the seat for humans, e.g. "VIP-1-3"
func (s *Seat) Label() string {
	return s.Section + "-" + s.RowLabel + "-" + s.SeatNumber
}
