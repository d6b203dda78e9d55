package checkins

import (
	"context"
	"errors"
	"fmt"

	"seatkeep/internal/seats"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Insert records the check-in unless the registration already has one
	Insert(ctx context.Context, record *CheckinRecord) (bool, error)
	Get(ctx context.Context, eventID uuid.UUID, registrationID string) (*CheckinRecord, error)
	// Overwrite replaces the metadata when the stored key differs from record's key
	Overwrite(ctx context.Context, record *CheckinRecord) (bool, error)
	HasSoldSeat(ctx context.Context, eventID uuid.UUID, holderRef string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, record *CheckinRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "registration_id"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert check-in: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Get returns nil, nil when the registration has not checked in
func (r *repository) Get(ctx context.Context, eventID uuid.UUID, registrationID string) (*CheckinRecord, error) {
	var record CheckinRecord
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND registration_id = ?", eventID, registrationID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load check-in: %w", err)
	}
	return &record, nil
}

func (r *repository) Overwrite(ctx context.Context, record *CheckinRecord) (bool, error) {
	res := r.db.WithContext(ctx).Model(&CheckinRecord{}).
		Where("event_id = ? AND registration_id = ? AND idempotency_key <> ?",
			record.EventID, record.RegistrationID, record.IdempotencyKey).
		Updates(map[string]interface{}{
			"idempotency_key": record.IdempotencyKey,
			"checked_in_at":   record.CheckedInAt,
			"operator":        record.Operator,
			"device_id":       record.DeviceID,
			"location":        record.Location,
			"source":          record.Source,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update check-in: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) HasSoldSeat(ctx context.Context, eventID uuid.UUID, holderRef string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&seats.Seat{}).
		Where("event_id = ? AND holder_ref = ? AND status = ?", eventID, holderRef, seats.StatusSold).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to verify registration: %w", err)
	}
	return count > 0, nil
}
