package floorplans

import (
	"context"
	"testing"

	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/testutil"
	"seatkeep/pkg/messaging"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestSeatCount(t *testing.T) {
	tests := []struct {
		name string
		obj  FloorPlanObject
		want int
	}{
		{"grid geometry", FloorPlanObject{Kind: KindGrid, Rows: 2, Columns: 3}, 6},
		{"grid explicit total wins", FloorPlanObject{Kind: KindGrid, Rows: 2, Columns: 3, TotalSeats: 5}, 5},
		{"free count", FloorPlanObject{Kind: KindFree, TotalSeats: 10}, 10},
		{"table without count", FloorPlanObject{Kind: KindRoundTable, Rows: 2, Columns: 4}, 0},
		{"stage", FloorPlanObject{Kind: KindStage, TotalSeats: 40}, 0},
		{"negative", FloorPlanObject{Kind: KindFree, TotalSeats: -3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.SeatCount(); got != tt.want {
				t.Errorf("SeatCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateLayout(t *testing.T) {
	tests := []struct {
		name    string
		objects []FloorPlanObject
		wantErr bool
	}{
		{"valid", []FloorPlanObject{{Kind: KindGrid, Tier: TierVIP, Rows: 2, Columns: 3, Price: 500}}, false},
		{"empty is not a validation error", nil, false},
		{"unknown kind", []FloorPlanObject{{Kind: "SOFA", Tier: TierVIP, TotalSeats: 2}}, true},
		{"unknown tier", []FloorPlanObject{{Kind: KindFree, Tier: "GOLD", TotalSeats: 2}}, true},
		{"negative price", []FloorPlanObject{{Kind: KindFree, Tier: TierGeneral, TotalSeats: 2, Price: -1}}, true},
		{"grid overflow", []FloorPlanObject{{Kind: KindGrid, Tier: TierVIP, Rows: 2, Columns: 3, TotalSeats: 7}}, true},
		{"half geometry", []FloorPlanObject{{Kind: KindGrid, Tier: TierVIP, Rows: 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayout(tt.objects)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.IsValidation(err) {
				t.Errorf("ValidateLayout() error kind = %s, want VALIDATION", apperrors.KindOf(err))
			}
		})
	}
}

type cascadeRow struct {
	ID      uint   `gorm:"primaryKey"`
	EventID string `gorm:"type:varchar(36);index"`
}

func newTestService(t *testing.T) (Service, *gorm.DB, *messaging.RecordingPublisher) {
	t.Helper()
	db := testutil.OpenDB(t, &FloorPlan{}, &FloorPlanObject{}, &cascadeRow{})
	pub := &messaging.RecordingPublisher{}
	cascade := func(tx *gorm.DB, eventID uuid.UUID) (int64, error) {
		res := tx.Where("event_id = ?", eventID.String()).Delete(&cascadeRow{})
		return res.RowsAffected, res.Error
	}
	return NewService(NewRepository(db), nil, pub, cascade), db, pub
}

func demoLayout() SaveLayoutRequest {
	return SaveLayoutRequest{
		Name: "Main hall",
		Objects: []ObjectRequest{
			{Kind: "grid", Section: "VIP", Tier: "vip", Rows: 2, Columns: 3, Price: 500},
			{Kind: "FREE", Section: "General", Tier: "GENERAL", TotalSeats: 10, Price: 150},
		},
	}
}

func TestSaveLayoutReplacesObjectsAndBumpsVersion(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	eventID := uuid.NewString()

	first, err := svc.SaveLayout(ctx, eventID, demoLayout())
	if err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	if first.Version != 1 || len(first.Objects) != 2 {
		t.Fatalf("first save = v%d with %d objects, want v1 with 2", first.Version, len(first.Objects))
	}

	smaller := SaveLayoutRequest{Objects: []ObjectRequest{{Kind: "BOOTH", Tier: "PREMIUM", TotalSeats: 4, Price: 90}}}
	second, err := svc.SaveLayout(ctx, eventID, smaller)
	if err != nil {
		t.Fatalf("SaveLayout() second error = %v", err)
	}
	if second.Version != 2 || second.Name != "Main hall" {
		t.Errorf("second save = v%d %q, want v2 %q", second.Version, second.Name, "Main hall")
	}

	layout, err := svc.GetLayout(ctx, uuid.MustParse(eventID))
	if err != nil {
		t.Fatalf("GetLayout() error = %v", err)
	}
	if len(layout) != 1 || layout[0].Kind != KindBooth || layout[0].Tier != TierPremium {
		t.Errorf("GetLayout() = %+v, want the single booth", layout)
	}

	if got := pub.Types(); len(got) != 2 || got[0] != messaging.EventFloorPlanChanged {
		t.Errorf("published %v, want two floorplan.changed events", got)
	}
}

func TestSaveLayoutRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveLayout(ctx, "not-a-uuid", demoLayout()); !apperrors.IsValidation(err) {
		t.Errorf("SaveLayout(bad id) error = %v, want validation", err)
	}

	bad := SaveLayoutRequest{Objects: []ObjectRequest{{Kind: "GRID", Tier: "VIP", Rows: 1, Columns: 2, TotalSeats: 3}}}
	if _, err := svc.SaveLayout(ctx, uuid.NewString(), bad); !apperrors.IsValidation(err) {
		t.Errorf("SaveLayout(overflow) error = %v, want validation", err)
	}
}

func TestDeleteFloorPlanCascades(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	eventID := uuid.NewString()

	if _, err := svc.SaveLayout(ctx, eventID, demoLayout()); err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		db.Create(&cascadeRow{EventID: eventID})
	}
	db.Create(&cascadeRow{EventID: uuid.NewString()})

	res, err := svc.DeleteFloorPlan(ctx, eventID)
	if err != nil {
		t.Fatalf("DeleteFloorPlan() error = %v", err)
	}
	if res.Objects != 2 || res.SeatsDeleted != 3 {
		t.Errorf("DeleteFloorPlan() = %+v, want 2 objects and 3 seats", res)
	}

	var left int64
	db.Model(&cascadeRow{}).Count(&left)
	if left != 1 {
		t.Errorf("remaining rows = %d, want 1 (other event untouched)", left)
	}

	if _, err := svc.GetFloorPlan(ctx, eventID); !apperrors.IsNotFound(err) {
		t.Errorf("GetFloorPlan() after delete error = %v, want not found", err)
	}
	if _, err := svc.DeleteFloorPlan(ctx, eventID); !apperrors.IsNotFound(err) {
		t.Errorf("DeleteFloorPlan() twice error = %v, want not found", err)
	}
}
