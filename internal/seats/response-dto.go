package seats

import (
	"time"

	"github.com/google/uuid"
)

// GenerateResult reports a completed regeneration
type GenerateResult struct {
	EventID   string         `json:"event_id"`
	Deleted   int64          `json:"deleted"`
	Created   int            `json:"created"`
	BySection map[string]int `json:"by_section"`
}

type RenumberResult struct {
	EventID string `json:"event_id"`
	Scheme  Scheme `json:"scheme"`
	Total   int    `json:"total"`
	Updated int    `json:"updated"`
}

type RepriceResult struct {
	EventID string  `json:"event_id"`
	Tier    string  `json:"tier"`
	Price   float64 `json:"price"`
	Updated int64   `json:"updated"`
}

// SeatView is the cached shape of a seat in availability listings
type SeatView struct {
	ID            uuid.UUID  `json:"id"`
	Section       string     `json:"section"`
	RowLabel      string     `json:"row_label"`
	SeatNumber    string     `json:"seat_number"`
	Tier          string     `json:"tier"`
	Price         float64    `json:"price"`
	Status        Status     `json:"status"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}

type Counts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Sold      int `json:"sold"`
}

func (c *Counts) add(status Status) {
	c.Total++
	switch status {
	case StatusAvailable:
		c.Available++
	case StatusHeld:
		c.Held++
	case StatusSold:
		c.Sold++
	}
}

type SectionAvailability struct {
	Section string     `json:"section"`
	Counts  Counts     `json:"counts"`
	Seats   []SeatView `json:"seats"`
}

// Availability is the per-section listing of an event's seats
type Availability struct {
	EventID  string                `json:"event_id"`
	Sections []SectionAvailability `json:"sections"`
	Totals   Counts                `json:"totals"`
}
