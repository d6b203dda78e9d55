package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"seatkeep/internal/checkins"
	"seatkeep/internal/floorplans"
	"seatkeep/internal/promocodes"
	"seatkeep/internal/seats"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/database"
	"seatkeep/internal/shared/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sqlDB := testutil.OpenDB(t, &floorplans.FloorPlan{}, &floorplans.FloorPlanObject{}, &seats.Seat{},
		&checkins.CheckinRecord{}, &promocodes.PromoCode{})

	cfg := config.Load()
	cfg.Holds.SweeperEnabled = true
	router := NewRouter(cfg, &database.DB{SQL: sqlDB}, nil)
	engine := gin.New()
	router.SetupRoutes(engine)

	if router.Jobs() == nil || router.Reservations() == nil || router.Checkins() == nil {
		t.Fatal("router did not expose its services")
	}

	eventID := uuid.NewString()
	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodGet, "/api/v1/events/" + eventID + "/floor-plan", http.StatusNotFound},
		{http.MethodGet, "/api/v1/events/" + eventID + "/capacity", http.StatusNotFound},
		{http.MethodGet, "/api/v1/reservations/nobody", http.StatusNotFound},
		{http.MethodGet, "/api/v1/events/" + eventID + "/checkins/reg-1", http.StatusNotFound},
		{http.MethodPost, "/api/v1/admin/events/" + eventID + "/seats/generate", http.StatusUnauthorized},
		{http.MethodPut, "/api/v1/admin/events/" + eventID + "/floor-plan", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/promo-codes", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/admin/reservations/web-1/cancel", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
		}
	}
}
