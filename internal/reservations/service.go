package reservations

import (
	"context"
	"strings"
	"time"

	"seatkeep/internal/promocodes"
	"seatkeep/internal/seats"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/config"
	"seatkeep/pkg/cache"
	"seatkeep/pkg/logger"
	"seatkeep/pkg/messaging"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromoRedeemer consumes a promo redemption inside the commit transaction
type PromoRedeemer interface {
	Redeem(tx *gorm.DB, code string, eventID uuid.UUID, orderAmount float64, now time.Time) (*promocodes.Quote, error)
}

type Service interface {
	Reserve(ctx context.Context, eventID string, seatIDs []string, ownerRef string, ttl time.Duration) (*Reservation, error)
	GetReservation(ctx context.Context, ownerRef string) (*Reservation, error)
	Commit(ctx context.Context, ownerRef, promoCode string) (*Receipt, error)
	Release(ctx context.Context, ownerRef, reason string) (*ReleaseResult, error)
	Cancel(ctx context.Context, ownerRef string, seatIDs []string) (*ReleaseResult, error)
	SweepExpired(ctx context.Context, batch int) (int, error)
}

type service struct {
	repo      Repository
	promos    PromoRedeemer
	cache     cache.Service
	publisher messaging.Publisher
	holds     config.HoldConfig
	now       func() time.Time
}

func NewService(repo Repository, promos PromoRedeemer, cacheService cache.Service, publisher messaging.Publisher, holds config.HoldConfig) Service {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		promos:    promos,
		cache:     cacheService,
		publisher: publisher,
		holds:     holds,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func normalizeOwner(ownerRef string) (string, error) {
	owner := strings.TrimSpace(ownerRef)
	if owner == "" {
		return "", apperrors.Validation(apperrors.CodeInvalidInput, "owner reference is required")
	}
	if len(owner) > 100 {
		return "", apperrors.Validation(apperrors.CodeInvalidInput, "owner reference is longer than 100 characters")
	}
	return owner, nil
}

func parseSeatIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, apperrors.Validation(apperrors.CodeInvalidInput, "invalid seat ID %q", r)
		}
		if seen[id] {
			return nil, apperrors.Validation(apperrors.CodeInvalidInput, "seat %s is listed twice", id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// holdTTL resolves the requested TTL: zero means the default, anything above the maximum is rejected
func (s *service) holdTTL(ttl time.Duration) (time.Duration, error) {
	switch {
	case ttl < 0:
		return 0, apperrors.Validation(apperrors.CodeInvalidInput, "hold TTL cannot be negative")
	case ttl == 0:
		return s.holds.DefaultTTL, nil
	case s.holds.MaxTTL > 0 && ttl > s.holds.MaxTTL:
		return 0, apperrors.Validation(apperrors.CodeInvalidInput, "hold TTL %s exceeds the maximum of %s", ttl, s.holds.MaxTTL)
	}
	return ttl, nil
}

func (s *service) Reserve(ctx context.Context, eventID string, seatIDs []string, ownerRef string, ttl time.Duration) (*Reservation, error) {
	id, err := uuid.Parse(strings.TrimSpace(eventID))
	if err != nil {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "invalid event ID %q", eventID)
	}
	owner, err := normalizeOwner(ownerRef)
	if err != nil {
		return nil, err
	}
	if len(seatIDs) == 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "at least one seat is required")
	}
	if s.holds.MaxSeatsPerHold > 0 && len(seatIDs) > s.holds.MaxSeatsPerHold {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "a hold takes at most %d seats", s.holds.MaxSeatsPerHold)
	}
	ids, err := parseSeatIDs(seatIDs)
	if err != nil {
		return nil, err
	}
	ttl, err = s.holdTTL(ttl)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(ttl)
	held, err := s.repo.Hold(ctx, id, ids, owner, now, expires)
	if err != nil {
		if unavailable := apperrors.UnavailableSeatsOf(err); len(unavailable) > 0 {
			logger.GetDefault().WithError(err).LogReservationConflict(ctx, id.String(), owner, len(unavailable))
		}
		return nil, s.translate(err, "failed to reserve seats")
	}

	requested := make([]string, len(ids))
	for i, seatID := range ids {
		requested[i] = seatID.String()
	}
	seats.InvalidateAvailability(ctx, s.cache, id.String())
	messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventSeatsReserved, id.String(), owner, requested,
		map[string]interface{}{"expires_at": expires}))
	logger.GetDefault().LogSeatsReserved(ctx, id.String(), owner, len(ids), expires)

	return newReservation(owner, held), nil
}

func (s *service) GetReservation(ctx context.Context, ownerRef string) (*Reservation, error) {
	owner, err := normalizeOwner(ownerRef)
	if err != nil {
		return nil, err
	}

	held, err := s.repo.ActiveHolds(ctx, owner, s.now())
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load reservation")
	}
	if len(held) == 0 {
		return nil, apperrors.NotFound("no active reservation for %s", owner)
	}
	return newReservation(owner, held), nil
}

func (s *service) Commit(ctx context.Context, ownerRef, promoCode string) (*Receipt, error) {
	owner, err := normalizeOwner(ownerRef)
	if err != nil {
		return nil, err
	}
	code := promocodes.NormalizeCode(promoCode)
	if code != "" && s.promos == nil {
		return nil, apperrors.Validation(apperrors.CodePromoInvalid, "promo codes are not accepted")
	}

	now := s.now()
	sold, discount, err := s.repo.Sell(ctx, owner, now, func(tx *gorm.DB, eventID uuid.UUID, subtotal float64) (float64, error) {
		if code == "" {
			return 0, nil
		}
		quote, err := s.promos.Redeem(tx, code, eventID, subtotal, now)
		if err != nil {
			return 0, err
		}
		return quote.Discount, nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to commit reservation")
	}

	seatLines, ids, subtotal := lines(sold)
	receipt := &Receipt{
		OwnerRef:  owner,
		EventID:   sold[0].EventID.String(),
		Seats:     seatLines,
		Subtotal:  subtotal,
		PromoCode: code,
		Discount:  discount,
		Total:     roundCents(subtotal - discount),
		SoldAt:    now,
	}

	seats.InvalidateAvailability(ctx, s.cache, receipt.EventID)
	messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventSeatsSold, receipt.EventID, owner, ids,
		map[string]interface{}{"subtotal": subtotal, "discount": discount, "total": receipt.Total, "promo_code": code}))
	logger.GetDefault().LogReservationCommitted(ctx, owner, len(sold), receipt.Total)

	return receipt, nil
}

// Release returns every seat the owner holds to the pool. Releasing nothing succeeds.
func (s *service) Release(ctx context.Context, ownerRef, reason string) (*ReleaseResult, error) {
	owner, err := normalizeOwner(ownerRef)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = ReasonReleased
	}

	released, err := s.repo.ReleaseHeld(ctx, owner)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to release hold")
	}

	s.announce(ctx, messaging.EventSeatsReleased, owner, reason, released)
	return releaseResult(owner, released), nil
}

// Cancel reopens the owner's sold seats, all of them when seatIDs is empty
func (s *service) Cancel(ctx context.Context, ownerRef string, seatIDs []string) (*ReleaseResult, error) {
	owner, err := normalizeOwner(ownerRef)
	if err != nil {
		return nil, err
	}
	ids, err := parseSeatIDs(seatIDs)
	if err != nil {
		return nil, err
	}

	reopened, err := s.repo.ReopenSold(ctx, owner, ids)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to cancel seats")
	}

	s.announce(ctx, messaging.EventSeatsReopened, owner, ReasonCancelled, reopened)
	return releaseResult(owner, reopened), nil
}

// SweepExpired frees one batch of expired holds
func (s *service) SweepExpired(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = s.holds.SweeperBatchSize
	}
	expired, err := s.repo.ReleaseExpiredBatch(ctx, s.now(), batch)
	if err != nil {
		return 0, err
	}

	byOwner := make(map[string][]seats.Seat)
	for _, seat := range expired {
		byOwner[seat.Holder()] = append(byOwner[seat.Holder()], seat)
	}
	for owner, group := range byOwner {
		s.announce(ctx, messaging.EventSeatsExpired, owner, ReasonExpired, group)
	}
	return len(expired), nil
}

// announce invalidates listings and publishes one message per event touched
func (s *service) announce(ctx context.Context, eventType, owner, reason string, changed []seats.Seat) {
	if len(changed) == 0 {
		return
	}
	byEvent := make(map[uuid.UUID][]string)
	for _, seat := range changed {
		byEvent[seat.EventID] = append(byEvent[seat.EventID], seat.ID.String())
	}
	for eventID, ids := range byEvent {
		seats.InvalidateAvailability(ctx, s.cache, eventID.String())
		messaging.Emit(ctx, s.publisher, messaging.NewEvent(eventType, eventID.String(), owner, ids,
			map[string]interface{}{"reason": reason}))
	}
	logger.GetDefault().LogSeatsReleased(ctx, owner, reason, len(changed))
}

func releaseResult(owner string, changed []seats.Seat) *ReleaseResult {
	ids := make([]string, len(changed))
	for i, seat := range changed {
		ids[i] = seat.ID.String()
	}
	return &ReleaseResult{OwnerRef: owner, Released: len(changed), SeatIDs: ids}
}

// translate keeps domain errors and wraps everything else as internal
func (s *service) translate(err error, msg string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(err, msg)
}
