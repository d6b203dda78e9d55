package capacity

import (
	"context"

	"seatkeep/internal/floorplans"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/constants"
	"seatkeep/pkg/cache"

	"github.com/google/uuid"
)

// LayoutSource is the read side of the floor plan store
type LayoutSource interface {
	GetLayout(ctx context.Context, eventID uuid.UUID) ([]floorplans.FloorPlanObject, error)
}

type Service interface {
	AggregateCapacity(ctx context.Context, eventID string, expectedAttendance int) (*Report, error)
}

type service struct {
	layouts LayoutSource
	cache   cache.Service
}

func NewService(layouts LayoutSource, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &service{layouts: layouts, cache: cacheService}
}

func (s *service) AggregateCapacity(ctx context.Context, eventID string, expectedAttendance int) (*Report, error) {
	id, err := floorplans.ParseEventID(eventID)
	if err != nil {
		return nil, err
	}
	if expectedAttendance < 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "expected attendance cannot be negative")
	}

	var report Report
	key := constants.BuildCapacityReportKey(id.String(), expectedAttendance)
	err = s.cache.GetOrSet(ctx, key, constants.TTL_CAPACITY_REPORT, func() (interface{}, error) {
		objects, err := s.layouts.GetLayout(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(objects) == 0 {
			return nil, apperrors.NotFound("floor plan for event %s not found", id)
		}
		r := Aggregate(objects, expectedAttendance)
		r.EventID = id.String()
		return r, nil
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
