package floorplans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/constants"
	"seatkeep/internal/shared/dbutil"
	"seatkeep/pkg/cache"
	"seatkeep/pkg/logger"
	"seatkeep/pkg/messaging"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	// GetFloorPlan returns the plan with its objects (cached read view)
	GetFloorPlan(ctx context.Context, eventID string) (*FloorPlan, error)
	// GetLayout returns the objects straight from the store
	GetLayout(ctx context.Context, eventID uuid.UUID) ([]FloorPlanObject, error)
	SaveLayout(ctx context.Context, eventID string, req SaveLayoutRequest) (*FloorPlan, error)
	DeleteFloorPlan(ctx context.Context, eventID string) (*DeleteResult, error)
}

type service struct {
	repo      Repository
	cache     cache.Service
	publisher messaging.Publisher
	cascade   CascadeFunc
}

// NewService wires the floor plan store. cascade runs inside the deletion
// transaction and removes the event's seats.
func NewService(repo Repository, cacheService cache.Service, publisher messaging.Publisher, cascade CascadeFunc) Service {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		cascade:   cascade,
	}
}

// ParseEventID validates an event id taken from a request
func ParseEventID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.Validation(apperrors.CodeInvalidInput, "invalid event ID %q", raw)
	}
	return id, nil
}

func (s *service) GetFloorPlan(ctx context.Context, eventID string) (*FloorPlan, error) {
	id, err := ParseEventID(eventID)
	if err != nil {
		return nil, err
	}

	var plan FloorPlan
	err = s.cache.GetOrSet(ctx, constants.BuildFloorPlanLayoutKey(id.String()), constants.TTL_FLOOR_PLAN_LAYOUT,
		func() (interface{}, error) {
			p, err := s.repo.GetByEventID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NotFound("floor plan for event %s not found", id)
				}
				return nil, apperrors.Internal(err, "failed to load floor plan")
			}
			return p, nil
		}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *service) GetLayout(ctx context.Context, eventID uuid.UUID) ([]FloorPlanObject, error) {
	objects, err := s.repo.GetObjectsByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load layout")
	}
	return objects, nil
}

func (s *service) SaveLayout(ctx context.Context, eventID string, req SaveLayoutRequest) (*FloorPlan, error) {
	id, err := ParseEventID(eventID)
	if err != nil {
		return nil, err
	}

	objects := ObjectsFromRequest(req.Objects)
	if err := ValidateLayout(objects); err != nil {
		return nil, err
	}

	plan, err := s.repo.SaveLayout(ctx, id, strings.TrimSpace(req.Name), objects)
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, apperrors.Conflict(apperrors.CodeInvalidLayout, "floor plan for event %s was created concurrently, retry", id)
		}
		return nil, apperrors.Internal(err, "failed to save layout")
	}

	s.invalidate(ctx, id)
	messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventFloorPlanChanged, id.String(), "", nil,
		map[string]interface{}{"version": plan.Version, "objects": len(plan.Objects)}))

	logger.GetDefault().InfoWithContext(ctx, "Floor Plan Saved", map[string]interface{}{
		"event_id": id.String(),
		"version":  plan.Version,
		"objects":  len(plan.Objects),
	})
	return plan, nil
}

func (s *service) DeleteFloorPlan(ctx context.Context, eventID string) (*DeleteResult, error) {
	id, err := ParseEventID(eventID)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.DeleteByEventID(ctx, id, s.cascade)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("floor plan for event %s not found", id)
		}
		return nil, apperrors.Internal(err, "failed to delete floor plan")
	}

	s.invalidate(ctx, id)
	messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventFloorPlanChanged, id.String(), "", nil,
		map[string]interface{}{"deleted": true, "seats_deleted": result.SeatsDeleted}))

	return result, nil
}

// invalidate drops every cached read view derived from the layout
func (s *service) invalidate(ctx context.Context, eventID uuid.UUID) {
	id := eventID.String()
	errs := []error{
		s.cache.Delete(ctx, constants.BuildFloorPlanLayoutKey(id)),
		s.cache.DeletePattern(ctx, constants.BuildCapacityEventPattern(id)),
		s.cache.DeletePattern(ctx, constants.BuildSeatAvailabilityEventPattern(id)),
	}
	if err := errors.Join(errs...); err != nil {
		logger.GetDefault().WithError(err).Warn(fmt.Sprintf("failed to invalidate layout caches for event %s", id))
	}
}
