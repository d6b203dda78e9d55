package reservations

import (
	"context"
	"fmt"
	"time"

	"seatkeep/internal/seats"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unavailability reasons reported per seat on a reservation conflict
const (
	UnavailableSold   = "SOLD"
	UnavailableHeld   = "HELD"
	UnavailableLocked = "LOCKED"
)

// PriceFunc runs inside the commit transaction once the subtotal is known and
// returns the discount to apply. An error rolls the commit back.
type PriceFunc func(tx *gorm.DB, eventID uuid.UUID, subtotal float64) (discount float64, err error)

type Repository interface {
	Hold(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID, owner string, now, expires time.Time) ([]seats.Seat, error)
	ActiveHolds(ctx context.Context, owner string, now time.Time) ([]seats.Seat, error)
	Sell(ctx context.Context, owner string, now time.Time, price PriceFunc) ([]seats.Seat, float64, error)
	ReleaseHeld(ctx context.Context, owner string) ([]seats.Seat, error)
	ReopenSold(ctx context.Context, owner string, seatIDs []uuid.UUID) ([]seats.Seat, error)
	ReleaseExpiredBatch(ctx context.Context, now time.Time, limit int) ([]seats.Seat, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Hold places or refreshes a hold on every requested seat, or on none.
func (r *repository) Hold(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID, owner string, now, expires time.Time) ([]seats.Seat, error) {
	var held []seats.Seat

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Every requested seat must belong to the event
		var found []seats.Seat
		if err := tx.Select("id").Where("event_id = ? AND id IN ?", eventID, seatIDs).Find(&found).Error; err != nil {
			return fmt.Errorf("failed to load seats: %w", err)
		}
		if len(found) != len(seatIDs) {
			known := make(map[uuid.UUID]bool, len(found))
			for _, s := range found {
				known[s.ID] = true
			}
			var missing []string
			for _, id := range seatIDs {
				if !known[id] {
					missing = append(missing, id.String())
				}
			}
			return apperrors.NotFound("%d seat(s) not found on event %s", len(missing), eventID).
				WithField("missing_seat_ids", missing)
		}

		// 2. Lock the rows without waiting; rows a concurrent writer holds are skipped
		var locked []seats.Seat
		if err := tx.Clauses(dbutil.ForUpdateSkipLocked()).
			Where("event_id = ? AND id IN ?", eventID, seatIDs).
			Find(&locked).Error; err != nil {
			return fmt.Errorf("failed to lock seats: %w", err)
		}
		byID := make(map[uuid.UUID]seats.Seat, len(locked))
		for _, s := range locked {
			byID[s.ID] = s
		}

		// 3. Classify what blocks the request
		var unavailable []apperrors.UnavailableSeat
		for _, id := range seatIDs {
			s, ok := byID[id]
			switch {
			case !ok:
				unavailable = append(unavailable, apperrors.UnavailableSeat{SeatID: id.String(), Reason: UnavailableLocked})
			case s.Status == seats.StatusSold:
				unavailable = append(unavailable, apperrors.UnavailableSeat{SeatID: id.String(), Reason: UnavailableSold})
			case s.HoldActive(now) && s.Holder() != owner:
				unavailable = append(unavailable, apperrors.UnavailableSeat{SeatID: id.String(), Reason: UnavailableHeld})
			}
		}
		if len(unavailable) > 0 {
			return apperrors.SeatsUnavailable(unavailable)
		}

		// 4. An owner holds seats of one event at a time
		var elsewhere int64
		if err := tx.Model(&seats.Seat{}).
			Where("holder_ref = ? AND status = ? AND hold_expires_at > ? AND event_id <> ?", owner, seats.StatusHeld, now, eventID).
			Count(&elsewhere).Error; err != nil {
			return fmt.Errorf("failed to check existing holds: %w", err)
		}
		if elsewhere > 0 {
			return apperrors.Conflict(apperrors.CodeSeatsUnavailable,
				"owner %s already holds seats for another event; release them first", owner)
		}

		// 5. Drop stale holds of this owner so they never block a later commit
		if err := tx.Model(&seats.Seat{}).
			Where("holder_ref = ? AND status = ? AND hold_expires_at <= ?", owner, seats.StatusHeld, now).
			Updates(seats.ReleasedColumns()).Error; err != nil {
			return fmt.Errorf("failed to drop stale holds: %w", err)
		}

		// 6. Conditional update; the predicate repeats the availability guard
		res := tx.Model(&seats.Seat{}).
			Where("event_id = ? AND id IN ?", eventID, seatIDs).
			Where("(status = ? OR (status = ? AND (hold_expires_at <= ? OR holder_ref = ?)))",
				seats.StatusAvailable, seats.StatusHeld, now, owner).
			Updates(map[string]interface{}{
				"status":          seats.StatusHeld,
				"holder_ref":      owner,
				"held_at":         now,
				"hold_expires_at": expires,
				"sold_at":         nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to hold seats: %w", res.Error)
		}
		if res.RowsAffected != int64(len(seatIDs)) {
			unavailable = make([]apperrors.UnavailableSeat, 0, len(seatIDs))
			for _, id := range seatIDs {
				unavailable = append(unavailable, apperrors.UnavailableSeat{SeatID: id.String(), Reason: UnavailableHeld})
			}
			return apperrors.SeatsUnavailable(unavailable)
		}

		// 7. The reservation is everything the owner now holds on the event
		return tx.Where("holder_ref = ? AND status = ? AND event_id = ? AND hold_expires_at > ?",
			owner, seats.StatusHeld, eventID, now).
			Order("ordinal ASC").
			Find(&held).Error
	})
	if err != nil {
		return nil, err
	}
	return held, nil
}

func (r *repository) ActiveHolds(ctx context.Context, owner string, now time.Time) ([]seats.Seat, error) {
	var held []seats.Seat
	err := r.db.WithContext(ctx).
		Where("holder_ref = ? AND status = ? AND hold_expires_at > ?", owner, seats.StatusHeld, now).
		Order("ordinal ASC").
		Find(&held).Error
	return held, err
}

// Sell turns the owner's hold into a sale. Nothing is sold unless every held
// seat is still inside its hold and price succeeds.
func (r *repository) Sell(ctx context.Context, owner string, now time.Time, price PriceFunc) ([]seats.Seat, float64, error) {
	var sold []seats.Seat
	var discount float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the owner's held seats
		var held []seats.Seat
		if err := tx.Clauses(dbutil.ForUpdateSkipLocked()).
			Where("holder_ref = ? AND status = ?", owner, seats.StatusHeld).
			Order("ordinal ASC").
			Find(&held).Error; err != nil {
			return fmt.Errorf("failed to lock held seats: %w", err)
		}
		var total int64
		if err := tx.Model(&seats.Seat{}).
			Where("holder_ref = ? AND status = ?", owner, seats.StatusHeld).
			Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count held seats: %w", err)
		}
		if total == 0 {
			return apperrors.PreconditionFailed(apperrors.CodeNoActiveHold, "owner %s has no active hold", owner)
		}
		if int64(len(held)) != total {
			return apperrors.Conflict(apperrors.CodeSeatsUnavailable, "hold of %s is being modified, retry", owner)
		}

		// 2. Every seat must still be inside its hold
		ids := make([]uuid.UUID, 0, len(held))
		var subtotal float64
		for _, s := range held {
			if !s.HoldActive(now) {
				return apperrors.PreconditionFailed(apperrors.CodeHoldExpired, "hold of %s expired at %s",
					owner, s.HoldExpiresAt.Format(time.RFC3339)).WithField("seat_id", s.ID.String())
			}
			ids = append(ids, s.ID)
			subtotal += s.Price
		}
		subtotal = roundCents(subtotal)

		// 3. Price the order; promo redemption happens here
		if price != nil {
			d, err := price(tx, held[0].EventID, subtotal)
			if err != nil {
				return err
			}
			discount = d
		}

		// 4. Sell, re-checking the hold in the predicate
		res := tx.Model(&seats.Seat{}).
			Where("id IN ? AND holder_ref = ? AND status = ? AND hold_expires_at > ?", ids, owner, seats.StatusHeld, now).
			Updates(map[string]interface{}{
				"status":          seats.StatusSold,
				"sold_at":         now,
				"hold_expires_at": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to sell seats: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return apperrors.PreconditionFailed(apperrors.CodeHoldExpired, "hold of %s changed during commit", owner)
		}

		for i := range held {
			held[i].Status = seats.StatusSold
			held[i].SoldAt = &now
			held[i].HoldExpiresAt = nil
		}
		sold = held
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sold, discount, nil
}

// ReleaseHeld returns every seat the owner holds, expired or not, to the pool
func (r *repository) ReleaseHeld(ctx context.Context, owner string) ([]seats.Seat, error) {
	return r.reopen(ctx, "holder_ref = ? AND status = ?", owner, seats.StatusHeld)
}

// ReopenSold returns the owner's sold seats to the pool, optionally only seatIDs
func (r *repository) ReopenSold(ctx context.Context, owner string, seatIDs []uuid.UUID) ([]seats.Seat, error) {
	if len(seatIDs) > 0 {
		return r.reopen(ctx, "holder_ref = ? AND status = ? AND id IN ?", owner, seats.StatusSold, seatIDs)
	}
	return r.reopen(ctx, "holder_ref = ? AND status = ?", owner, seats.StatusSold)
}

func (r *repository) reopen(ctx context.Context, query string, args ...interface{}) ([]seats.Seat, error) {
	var released []seats.Seat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(dbutil.ForUpdate()).Where(query, args...).Find(&released).Error; err != nil {
			return err
		}
		if len(released) == 0 {
			return nil
		}
		return tx.Model(&seats.Seat{}).Where(query, args...).Updates(seats.ReleasedColumns()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}
	return released, nil
}

// ReleaseExpiredBatch frees up to limit expired holds across all events
func (r *repository) ReleaseExpiredBatch(ctx context.Context, now time.Time, limit int) ([]seats.Seat, error) {
	var expired []seats.Seat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(dbutil.ForUpdateSkipLocked()).
			Select("id", "event_id", "holder_ref").
			Where("status = ? AND hold_expires_at <= ?", seats.StatusHeld, now).
			Order("hold_expires_at ASC").
			Limit(limit).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(expired))
		for i, s := range expired {
			ids[i] = s.ID
		}
		res := tx.Model(&seats.Seat{}).
			Where("id IN ? AND status = ? AND hold_expires_at <= ?", ids, seats.StatusHeld, now).
			Updates(seats.ReleasedColumns())
		return res.Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sweep expired holds: %w", err)
	}
	return expired, nil
}
