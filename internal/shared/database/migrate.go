package database

import (
	"seatkeep/internal/checkins"
	"seatkeep/internal/floorplans"
	"seatkeep/internal/promocodes"
	"seatkeep/internal/seats"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&floorplans.FloorPlan{},
		&floorplans.FloorPlanObject{},
		&seats.Seat{},
		&checkins.CheckinRecord{},
		&promocodes.PromoCode{},
	)
}
