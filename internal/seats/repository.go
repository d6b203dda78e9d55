package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatkeep/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInventoryInUse is returned when regeneration would drop live holds or sales
var ErrInventoryInUse = errors.New("seats are held or sold")

const insertBatchSize = 500

// ListFilter narrows an availability listing
type ListFilter struct {
	Section string
	Tier    string
}

type Repository interface {
	// Generation
	ReplaceForEvent(ctx context.Context, eventID uuid.UUID, seats []Seat, force bool, now time.Time) (deleted int64, err error)
	DeleteByEventTx(tx *gorm.DB, eventID uuid.UUID) (int64, error)

	// Reads
	ListByEvent(ctx context.Context, eventID uuid.UUID, filter ListFilter) ([]Seat, error)

	// Maintenance
	ReleaseExpired(ctx context.Context, eventID uuid.UUID, now time.Time) ([]uuid.UUID, error)
	Relabel(ctx context.Context, eventID uuid.UUID, relabel func([]Seat) map[uuid.UUID]string) (updated, total int, err error)
	UpdateTierPrice(ctx context.Context, eventID uuid.UUID, tier string, price float64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// inUse matches seats that regeneration must not drop silently
func inUse(db *gorm.DB, eventID uuid.UUID, now time.Time) *gorm.DB {
	return db.Model(&Seat{}).
		Where("event_id = ?", eventID).
		Where("(status = ? OR (status = ? AND hold_expires_at > ?))", StatusSold, StatusHeld, now)
}

// ReplaceForEvent deletes every seat of the event and inserts seats, atomically
func (r *repository) ReplaceForEvent(ctx context.Context, eventID uuid.UUID, seats []Seat, force bool, now time.Time) (int64, error) {
	var deleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !force {
			var live int64
			if err := inUse(tx, eventID, now).Count(&live).Error; err != nil {
				return fmt.Errorf("failed to count live seats: %w", err)
			}
			if live > 0 {
				return fmt.Errorf("%w: %d seat(s)", ErrInventoryInUse, live)
			}
		}

		n, err := r.DeleteByEventTx(tx, eventID)
		if err != nil {
			return err
		}
		deleted = n

		if len(seats) > 0 {
			if err := tx.CreateInBatches(seats, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert seats: %w", err)
			}
		}
		return nil
	})
	return deleted, err
}

// DeleteByEventTx removes all seats of an event inside the caller's transaction
func (r *repository) DeleteByEventTx(tx *gorm.DB, eventID uuid.UUID) (int64, error) {
	res := tx.Where("event_id = ?", eventID).Delete(&Seat{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete seats: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID, filter ListFilter) ([]Seat, error) {
	var seats []Seat
	query := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if filter.Section != "" {
		query = query.Where("section = ?", filter.Section)
	}
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
	}
	err := query.Order("ordinal ASC").Find(&seats).Error
	return seats, err
}

// ReleaseExpired flips expired holds of the event back to AVAILABLE. The
// status and expiry predicates are repeated in the UPDATE so a hold refreshed
// in between is left alone.
func (r *repository) ReleaseExpired(ctx context.Context, eventID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expired []Seat
		if err := tx.Select("id").
			Where("event_id = ? AND status = ? AND hold_expires_at <= ?", eventID, StatusHeld, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		for _, s := range expired {
			ids = append(ids, s.ID)
		}
		return tx.Model(&Seat{}).
			Where("id IN ? AND status = ? AND hold_expires_at <= ?", ids, StatusHeld, now).
			Updates(ReleasedColumns()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to release expired holds: %w", err)
	}
	return ids, nil
}

// ReleasedColumns is the column set of a seat returned to the pool
func ReleasedColumns() map[string]interface{} {
	return map[string]interface{}{
		"status":          StatusAvailable,
		"holder_ref":      nil,
		"held_at":         nil,
		"hold_expires_at": nil,
		"sold_at":         nil,
	}
}

// Relabel rewrites seat numbers in two phases: changed seats first move to a
// temporary label unique by id, then to their final label, so the position
// index never sees two seats on one number.
func (r *repository) Relabel(ctx context.Context, eventID uuid.UUID, relabel func([]Seat) map[uuid.UUID]string) (int, int, error) {
	var updated, total int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seats []Seat
		if err := tx.Clauses(dbutil.ForUpdate()).
			Where("event_id = ?", eventID).
			Order("ordinal ASC").
			Find(&seats).Error; err != nil {
			return fmt.Errorf("failed to load seats: %w", err)
		}
		total = len(seats)

		labels := relabel(seats)
		var changed []Seat
		for _, s := range seats {
			if next, ok := labels[s.ID]; ok && next != s.SeatNumber {
				changed = append(changed, s)
			}
		}

		for _, s := range changed {
			if err := tx.Model(&Seat{}).Where("id = ?", s.ID).
				Update("seat_number", "~"+s.ID.String()).Error; err != nil {
				return fmt.Errorf("failed to stage seat %s: %w", s.ID, err)
			}
		}
		for _, s := range changed {
			if err := tx.Model(&Seat{}).Where("id = ?", s.ID).
				Update("seat_number", labels[s.ID]).Error; err != nil {
				return fmt.Errorf("failed to relabel seat %s: %w", s.ID, err)
			}
		}

		updated = len(changed)
		return nil
	})
	return updated, total, err
}

func (r *repository) UpdateTierPrice(ctx context.Context, eventID uuid.UUID, tier string, price float64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Seat{}).
		Where("event_id = ? AND tier = ?", eventID, tier).
		Update("price", price)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update tier price: %w", res.Error)
	}
	return res.RowsAffected, nil
}
