// Package messaging publishes seat lifecycle events to the configured bus.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Seat lifecycle event types. They double as RabbitMQ routing keys.
const (
	EventSeatsGenerated   = "seats.generated"
	EventSeatsRenumbered  = "seats.renumbered"
	EventSeatsRepriced    = "seats.repriced"
	EventSeatsReserved    = "seats.reserved"
	EventSeatsReleased    = "seats.released"
	EventSeatsSold        = "seats.sold"
	EventSeatsReopened    = "seats.reopened"
	EventSeatsExpired     = "seats.expired"
	EventCheckinRecorded  = "checkin.recorded"
	EventFloorPlanChanged = "floorplan.changed"
)

// SeatEvent is the envelope written to every transport.
type SeatEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	EventID    string                 `json:"event_id"`
	OwnerRef   string                 `json:"owner_ref,omitempty"`
	SeatIDs    []string               `json:"seat_ids,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// NewEvent stamps a new envelope with an id and the current time.
func NewEvent(eventType, eventID, ownerRef string, seatIDs []string, data map[string]interface{}) *SeatEvent {
	return &SeatEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		EventID:    eventID,
		OwnerRef:   ownerRef,
		SeatIDs:    seatIDs,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// PartitionKey keeps every event of one show on one Kafka partition.
func (e *SeatEvent) PartitionKey() string {
	if e.EventID != "" {
		return e.EventID
	}
	return e.OwnerRef
}

func (e *SeatEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers seat events to a bus.
type Publisher interface {
	Publish(ctx context.Context, event *SeatEvent) error
	Close() error
}
