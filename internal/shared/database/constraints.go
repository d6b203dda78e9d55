package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds Postgres-only guards that back the seat state machine
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// Status must be one of the three lifecycle states
		`DO $$ BEGIN
			ALTER TABLE seats ADD CONSTRAINT chk_seats_status
			CHECK (status IN ('AVAILABLE', 'HELD', 'SOLD'));
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		// A held seat always has an owner and an expiry
		`DO $$ BEGIN
			ALTER TABLE seats ADD CONSTRAINT chk_seats_hold_shape
			CHECK (status <> 'HELD' OR (holder_ref IS NOT NULL AND hold_expires_at IS NOT NULL));
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		// Redemptions never run past the cap
		`DO $$ BEGIN
			ALTER TABLE promo_codes ADD CONSTRAINT chk_promo_codes_usage
			CHECK (max_redemptions < 0 OR used_count <= max_redemptions);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		// Sweeper lookups
		`CREATE INDEX IF NOT EXISTS idx_seats_held_expiry
			ON seats (hold_expires_at) WHERE status = 'HELD';`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
