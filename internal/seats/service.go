package seats

import (
	"context"
	"errors"
	"strings"
	"time"

	"seatkeep/internal/floorplans"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/constants"
	"seatkeep/internal/shared/dbutil"
	"seatkeep/pkg/cache"
	"seatkeep/pkg/logger"
	"seatkeep/pkg/messaging"

	"github.com/google/uuid"
)

// LayoutSource is the read side of the floor plan store
type LayoutSource interface {
	GetLayout(ctx context.Context, eventID uuid.UUID) ([]floorplans.FloorPlanObject, error)
}

type Service interface {
	GenerateSeats(ctx context.Context, eventID string, req GenerateSeatsRequest) (*GenerateResult, error)
	RenumberSeats(ctx context.Context, eventID, scheme string) (*RenumberResult, error)
	UpdateTierPrice(ctx context.Context, eventID, tier string, price float64) (*RepriceResult, error)
	ListSeats(ctx context.Context, eventID string, query ListSeatsQuery) (*Availability, error)
}

type service struct {
	repo      Repository
	layouts   LayoutSource
	cache     cache.Service
	publisher messaging.Publisher
	now       func() time.Time
}

func NewService(repo Repository, layouts LayoutSource, cacheService cache.Service, publisher messaging.Publisher) Service {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		layouts:   layouts,
		cache:     cacheService,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// InvalidateAvailability drops the cached listings of an event. Every seat
// mutation calls it after commit.
func InvalidateAvailability(ctx context.Context, c cache.Service, eventID string) {
	if err := c.DeletePattern(ctx, constants.BuildSeatAvailabilityEventPattern(eventID)); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to invalidate seat availability", "event_id", eventID)
	}
}

func (s *service) GenerateSeats(ctx context.Context, eventID string, req GenerateSeatsRequest) (*GenerateResult, error) {
	id, err := floorplans.ParseEventID(eventID)
	if err != nil {
		return nil, err
	}

	var layout []floorplans.FloorPlanObject
	if req.Objects != nil {
		layout = floorplans.ObjectsFromRequest(req.Objects)
		for i := range layout {
			layout[i].ID = uuid.New()
		}
	} else {
		if layout, err = s.layouts.GetLayout(ctx, id); err != nil {
			return nil, err
		}
	}

	if len(layout) == 0 {
		return nil, apperrors.Validation(apperrors.CodeEmptyLayout, "event %s has no layout objects; existing seats were kept", id)
	}
	if err := floorplans.ValidateLayout(layout); err != nil {
		return nil, err
	}

	generated, err := Generate(id, layout)
	if err != nil {
		return nil, err
	}
	if len(generated) == 0 {
		return nil, apperrors.Validation(apperrors.CodeEmptyLayout, "layout of event %s yields no seats; existing seats were kept", id)
	}

	deleted, err := s.repo.ReplaceForEvent(ctx, id, generated, req.Force, s.now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInventoryInUse):
			return nil, apperrors.Conflict(apperrors.CodeInventoryInUse,
				"event %s has held or sold seats; regenerate with force to drop them", id)
		case dbutil.IsUniqueViolation(err):
			return nil, apperrors.Validation(apperrors.CodeDuplicateSeatPosition,
				"layout places two seats on one position; existing seats were kept").WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to generate seats")
	}

	result := &GenerateResult{
		EventID:   id.String(),
		Deleted:   deleted,
		Created:   len(generated),
		BySection: make(map[string]int),
	}
	for _, seat := range generated {
		result.BySection[seat.Section]++
	}

	InvalidateAvailability(ctx, s.cache, id.String())
	messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventSeatsGenerated, id.String(), "", nil,
		map[string]interface{}{"deleted": deleted, "created": len(generated), "force": req.Force}))
	logger.GetDefault().LogSeatsGenerated(ctx, id.String(), int(deleted), len(generated))

	return result, nil
}

func (s *service) RenumberSeats(ctx context.Context, eventID, rawScheme string) (*RenumberResult, error) {
	id, err := floorplans.ParseEventID(eventID)
	if err != nil {
		return nil, err
	}
	scheme, err := ParseScheme(rawScheme)
	if err != nil {
		return nil, err
	}

	updated, total, err := s.repo.Relabel(ctx, id, func(seats []Seat) map[uuid.UUID]string {
		return Renumber(seats, scheme)
	})
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, apperrors.Conflict(apperrors.CodeDuplicateSeatPosition, "renumbering collided with an existing seat position").WithCause(err)
		}
		return nil, apperrors.Internal(err, "failed to renumber seats")
	}
	if total == 0 {
		return nil, apperrors.NotFound("event %s has no seats", id)
	}

	if updated > 0 {
		InvalidateAvailability(ctx, s.cache, id.String())
		messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventSeatsRenumbered, id.String(), "", nil,
			map[string]interface{}{"scheme": string(scheme), "updated": updated}))
	}
	logger.GetDefault().LogSeatsRenumbered(ctx, id.String(), string(scheme), updated)

	return &RenumberResult{EventID: id.String(), Scheme: scheme, Total: total, Updated: updated}, nil
}

func (s *service) UpdateTierPrice(ctx context.Context, eventID, tier string, price float64) (*RepriceResult, error) {
	id, err := floorplans.ParseEventID(eventID)
	if err != nil {
		return nil, err
	}
	t := floorplans.Tier(strings.ToUpper(strings.TrimSpace(tier)))
	if !t.IsValid() {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "unknown tier %q", tier)
	}
	if price < 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "price cannot be negative")
	}

	n, err := s.repo.UpdateTierPrice(ctx, id, t.String(), price)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to update tier price")
	}
	if n == 0 {
		return nil, apperrors.NotFound("event %s has no %s seats", id, t)
	}

	InvalidateAvailability(ctx, s.cache, id.String())
	messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventSeatsRepriced, id.String(), "", nil,
		map[string]interface{}{"tier": t.String(), "price": price, "updated": n}))

	return &RepriceResult{EventID: id.String(), Tier: t.String(), Price: price, Updated: n}, nil
}

// ListSeats returns the availability view. Expired holds of the event are
// swapped back to AVAILABLE first; statuses are re-derived on every call so a
// cached listing never reports a hold that has since expired.
func (s *service) ListSeats(ctx context.Context, eventID string, query ListSeatsQuery) (*Availability, error) {
	id, err := floorplans.ParseEventID(eventID)
	if err != nil {
		return nil, err
	}
	filter := ListFilter{
		Section: strings.TrimSpace(query.Section),
		Tier:    strings.ToUpper(strings.TrimSpace(query.Tier)),
	}

	now := s.now()
	released, err := s.repo.ReleaseExpired(ctx, id, now)
	if err != nil {
		logger.GetDefault().WithError(err).Warn("lazy expiry failed", "event_id", id.String())
	} else if len(released) > 0 {
		InvalidateAvailability(ctx, s.cache, id.String())
		messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventSeatsExpired, id.String(), "", uuidStrings(released), nil))
	}

	var views []SeatView
	key := constants.BuildSeatAvailabilityKey(id.String(), filter.Section, filter.Tier)
	err = s.cache.GetOrSet(ctx, key, constants.TTL_SEAT_AVAILABILITY, func() (interface{}, error) {
		seats, err := s.repo.ListByEvent(ctx, id, filter)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to list seats")
		}
		out := make([]SeatView, 0, len(seats))
		for _, seat := range seats {
			out = append(out, SeatView{
				ID:            seat.ID,
				Section:       seat.Section,
				RowLabel:      seat.RowLabel,
				SeatNumber:    seat.SeatNumber,
				Tier:          seat.Tier,
				Price:         seat.Price,
				Status:        seat.Status,
				HoldExpiresAt: seat.HoldExpiresAt,
			})
		}
		return out, nil
	}, &views)
	if err != nil {
		return nil, err
	}

	return groupAvailability(id.String(), views, now), nil
}

func groupAvailability(eventID string, views []SeatView, now time.Time) *Availability {
	out := &Availability{EventID: eventID, Sections: []SectionAvailability{}}
	index := make(map[string]int)

	for _, v := range views {
		if v.Status == StatusHeld && (v.HoldExpiresAt == nil || !v.HoldExpiresAt.After(now)) {
			v.Status = StatusAvailable
			v.HoldExpiresAt = nil
		}
		i, ok := index[v.Section]
		if !ok {
			i = len(out.Sections)
			index[v.Section] = i
			out.Sections = append(out.Sections, SectionAvailability{Section: v.Section})
		}
		out.Sections[i].Seats = append(out.Sections[i].Seats, v)
		out.Sections[i].Counts.add(v.Status)
		out.Totals.add(v.Status)
	}
	return out
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
