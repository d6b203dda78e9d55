package floorplans

import (
	"context"
	"errors"
	"fmt"

	"seatkeep/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CascadeFunc removes rows owned by an event inside the deletion transaction
// and reports how many it removed.
type CascadeFunc func(tx *gorm.DB, eventID uuid.UUID) (int64, error)

// Repository interface for floor plan operations
type Repository interface {
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*FloorPlan, error)
	GetObjectsByEventID(ctx context.Context, eventID uuid.UUID) ([]FloorPlanObject, error)
	SaveLayout(ctx context.Context, eventID uuid.UUID, name string, objects []FloorPlanObject) (*FloorPlan, error)
	DeleteByEventID(ctx context.Context, eventID uuid.UUID, cascade CascadeFunc) (*DeleteResult, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new floor plan repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*FloorPlan, error) {
	var plan FloorPlan
	err := r.db.WithContext(ctx).
		Preload("Objects", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&plan, "event_id = ?", eventID).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) GetObjectsByEventID(ctx context.Context, eventID uuid.UUID) ([]FloorPlanObject, error) {
	var objects []FloorPlanObject
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC").
		Find(&objects).Error
	return objects, err
}

// SaveLayout replaces every object of the event's plan and bumps the version
func (r *repository) SaveLayout(ctx context.Context, eventID uuid.UUID, name string, objects []FloorPlanObject) (*FloorPlan, error) {
	var saved FloorPlan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan FloorPlan
		err := tx.Clauses(dbutil.ForUpdate()).First(&plan, "event_id = ?", eventID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			plan = FloorPlan{ID: uuid.New(), EventID: eventID, Name: name, Version: 1}
			if err := tx.Create(&plan).Error; err != nil {
				return fmt.Errorf("failed to create floor plan: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load floor plan: %w", err)
		default:
			plan.Version++
			if name != "" {
				plan.Name = name
			}
			if err := tx.Model(&plan).Updates(map[string]interface{}{
				"version": plan.Version,
				"name":    plan.Name,
			}).Error; err != nil {
				return fmt.Errorf("failed to bump floor plan version: %w", err)
			}
			if err := tx.Where("floor_plan_id = ?", plan.ID).Delete(&FloorPlanObject{}).Error; err != nil {
				return fmt.Errorf("failed to clear floor plan objects: %w", err)
			}
		}

		for i := range objects {
			objects[i].ID = uuid.New()
			objects[i].FloorPlanID = plan.ID
			objects[i].EventID = eventID
			objects[i].SortOrder = i
		}
		if len(objects) > 0 {
			if err := tx.CreateInBatches(objects, 200).Error; err != nil {
				return fmt.Errorf("failed to insert floor plan objects: %w", err)
			}
		}

		plan.Objects = objects
		saved = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteByEventID removes the plan, its objects and whatever cascade removes, atomically
func (r *repository) DeleteByEventID(ctx context.Context, eventID uuid.UUID, cascade CascadeFunc) (*DeleteResult, error) {
	result := &DeleteResult{EventID: eventID.String()}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan FloorPlan
		if err := tx.Clauses(dbutil.ForUpdate()).First(&plan, "event_id = ?", eventID).Error; err != nil {
			return err
		}

		res := tx.Where("floor_plan_id = ?", plan.ID).Delete(&FloorPlanObject{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete floor plan objects: %w", res.Error)
		}
		result.Objects = res.RowsAffected

		if cascade != nil {
			n, err := cascade(tx, eventID)
			if err != nil {
				return err
			}
			result.SeatsDeleted = n
		}

		if err := tx.Delete(&plan).Error; err != nil {
			return fmt.Errorf("failed to delete floor plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
