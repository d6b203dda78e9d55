package floorplans

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectKind is the shape of a floor plan object
type ObjectKind string

const (
	KindGrid       ObjectKind = "GRID"
	KindRoundTable ObjectKind = "ROUND_TABLE"
	KindRectTable  ObjectKind = "RECT_TABLE"
	KindBooth      ObjectKind = "BOOTH"
	KindStage      ObjectKind = "STAGE"
	KindFree       ObjectKind = "FREE"
)

// Tier is the pricing tier of an object and of every seat generated from it
type Tier string

const (
	TierVIP     Tier = "VIP"
	TierPremium Tier = "PREMIUM"
	TierGeneral Tier = "GENERAL"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierVIP, TierPremium, TierGeneral:
		return true
	}
	return false
}

func (t Tier) String() string {
	return string(t)
}

// FloorPlan is the single canonical layout of an event
type FloorPlan struct {
	ID        uuid.UUID         `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID   uuid.UUID         `gorm:"type:varchar(36);uniqueIndex;not null" json:"event_id"`
	Name      string            `gorm:"type:varchar(200)" json:"name"`
	Version   int               `gorm:"not null;default:1" json:"version"`
	Objects   []FloorPlanObject `gorm:"foreignKey:FloorPlanID" json:"objects,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FloorPlanObject is one seat-bearing (or decorative) element of a layout
type FloorPlanObject struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"id"`
	FloorPlanID  uuid.UUID  `gorm:"type:varchar(36);index;not null" json:"floor_plan_id"`
	EventID      uuid.UUID  `gorm:"type:varchar(36);index;not null" json:"event_id"`
	Kind         ObjectKind `gorm:"type:varchar(20);not null" json:"kind" validate:"required,oneof=GRID ROUND_TABLE RECT_TABLE BOOTH STAGE FREE"`
	Label        string     `gorm:"type:varchar(100)" json:"label,omitempty" validate:"max=100"`
	Section      string     `gorm:"type:varchar(100)" json:"section,omitempty" validate:"max=100"`
	Tier         Tier       `gorm:"type:varchar(20);not null" json:"tier" validate:"required,oneof=VIP PREMIUM GENERAL"`
	GenderTag    string     `gorm:"type:varchar(20)" json:"gender_tag,omitempty" validate:"max=20"`
	Rows         int        `gorm:"column:grid_rows;not null;default:0" json:"rows" validate:"min=0,max=1000"`
	Columns      int        `gorm:"column:grid_columns;not null;default:0" json:"columns" validate:"min=0,max=1000"`
	TotalSeats   int        `gorm:"not null;default:0" json:"total_seats" validate:"min=0,max=100000"`
	RowOrigin    int        `gorm:"not null;default:1" json:"row_origin" validate:"min=0"`
	ColumnOrigin int        `gorm:"not null;default:1" json:"column_origin" validate:"min=0"`
	Price        float64    `gorm:"type:decimal(10,2);not null;default:0" json:"price" validate:"min=0"`
	SortOrder    int        `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (FloorPlan) TableName() string {
	return "floor_plans"
}

func (FloorPlanObject) TableName() string {
	return "floor_plan_objects"
}

// SeatCount is the number of seats the object contributes.
// An explicit total wins; a grid falls back to rows x columns; a stage seats nobody.
func (o FloorPlanObject) SeatCount() int {
	if o.Kind == KindStage {
		return 0
	}
	if o.TotalSeats > 0 {
		return o.TotalSeats
	}
	if o.Kind == KindGrid && o.Rows > 0 && o.Columns > 0 {
		return o.Rows * o.Columns
	}
	return 0
}

// HasGridGeometry reports whether rows and columns are both set
func (o FloorPlanObject) HasGridGeometry() bool {
	return o.Rows > 0 && o.Columns > 0
}

// EffectiveSection is the zone label seats are filed under, falling back to the tier
func (o FloorPlanObject) EffectiveSection() string {
	if s := strings.TrimSpace(o.Section); s != "" {
		return s
	}
	return string(o.Tier)
}

// Origins returns the 1-based grid origin of the object
func (o FloorPlanObject) Origins() (row, column int) {
	row, column = o.RowOrigin, o.ColumnOrigin
	if row < 1 {
		row = 1
	}
	if column < 1 {
		column = 1
	}
	return row, column
}
