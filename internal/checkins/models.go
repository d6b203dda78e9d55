package checkins

import (
	"time"

	"github.com/google/uuid"
)

// Source records how a check-in reached the ledger
type Source string

const (
	SourceManual Source = "MANUAL"
	SourceQR     Source = "QR"
	SourceLambda Source = "LAMBDA"
)

// CheckinRecord is the single admission record of a registration at an event
type CheckinRecord struct {
	ID             uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID        uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_checkin_event_registration,priority:1" json:"event_id"`
	RegistrationID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_checkin_event_registration,priority:2" json:"registration_id"`
	IdempotencyKey string    `gorm:"type:varchar(255);not null" json:"idempotency_key"`
	CheckedInAt    time.Time `gorm:"not null" json:"checked_in_at"`
	Operator       string    `gorm:"type:varchar(100)" json:"operator,omitempty"`
	DeviceID       string    `gorm:"type:varchar(100)" json:"device_id,omitempty"`
	Location       string    `gorm:"type:varchar(255)" json:"location,omitempty"`
	Source         Source    `gorm:"type:varchar(10);not null" json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (CheckinRecord) TableName() string {
	return "checkin_records"
}

// Metadata is what the door device reports alongside a check-in
type Metadata struct {
	Operator string
	DeviceID string
	Location string
	Source   Source
}

// Result is a check-in outcome. Already is true when the same request was recorded before.
type Result struct {
	Record  *CheckinRecord `json:"record"`
	Already bool           `json:"already_checked_in"`
}
