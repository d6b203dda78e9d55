package promocodes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestDiscount(t *testing.T) {
	tests := []struct {
		name   string
		code   PromoCode
		amount float64
		want   float64
	}{
		{"percent", PromoCode{DiscountType: DiscountPercent, DiscountAmount: 10}, 1000, 100},
		{"percent rounds to cents", PromoCode{DiscountType: DiscountPercent, DiscountAmount: 15}, 33.33, 5},
		{"percent capped at 100", PromoCode{DiscountType: DiscountPercent, DiscountAmount: 150}, 80, 80},
		{"fixed", PromoCode{DiscountType: DiscountFixed, DiscountAmount: 50}, 200, 50},
		{"fixed above amount", PromoCode{DiscountType: DiscountFixed, DiscountAmount: 500}, 200, 200},
		{"zero amount", PromoCode{DiscountType: DiscountFixed, DiscountAmount: 5}, 0, 0},
		{"unknown type", PromoCode{DiscountType: "BOGO", DiscountAmount: 5}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.code.Discount(tt.amount)
			if got != tt.want {
				t.Errorf("Discount(%v) = %v, want %v", tt.amount, got, tt.want)
			}
			if got < 0 || got > tt.amount {
				t.Errorf("Discount(%v) = %v escapes [0, amount]", tt.amount, got)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	eventID := uuid.New()
	otherEvent := uuid.New()
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	base := func(mut func(p *PromoCode)) *PromoCode {
		p := &PromoCode{Code: "SAVE10", DiscountType: DiscountPercent, DiscountAmount: 10, MaxRedemptions: Unlimited, IsActive: true}
		if mut != nil {
			mut(p)
		}
		return p
	}

	tests := []struct {
		name string
		code *PromoCode
		kind apperrors.Kind
	}{
		{"valid global", base(nil), ""},
		{"valid for event", base(func(p *PromoCode) { p.EventID = &eventID }), ""},
		{"missing", nil, apperrors.KindNotFound},
		{"inactive", base(func(p *PromoCode) { p.IsActive = false }), apperrors.KindValidation},
		{"other event", base(func(p *PromoCode) { p.EventID = &otherEvent }), apperrors.KindValidation},
		{"not started", base(func(p *PromoCode) { p.StartsAt = &future }), apperrors.KindValidation},
		{"ended", base(func(p *PromoCode) { p.EndsAt = &past }), apperrors.KindValidation},
		{"below minimum", base(func(p *PromoCode) { p.MinOrderAmount = 500 }), apperrors.KindValidation},
		{"exhausted", base(func(p *PromoCode) { p.MaxRedemptions, p.UsedCount = 3, 3 }), apperrors.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := Check(tt.code, eventID, 200, now)
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Check() error = %v", err)
				}
				if quote.Discount != 20 || quote.FinalAmount != 180 || quote.RemainingRedemptions != Unlimited {
					t.Errorf("Check() = %+v, want discount 20 final 180 unlimited", quote)
				}
				return
			}
			if got := apperrors.KindOf(err); got != tt.kind {
				t.Errorf("Check() error = %v (kind %s), want %s", err, got, tt.kind)
			}
		})
	}
}

func newService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t, &PromoCode{})
	return NewService(NewRepository(db)).(*service), db
}

func intPtr(v int) *int { return &v }

func TestCreateAndValidate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	eventID := uuid.NewString()

	created, err := svc.Create(ctx, CreatePromoCodeRequest{Code: " early20 ", DiscountType: "percent", DiscountAmount: 20, EventID: eventID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Code != "EARLY20" || created.MaxRedemptions != Unlimited || !created.IsActive {
		t.Errorf("Create() = %+v, want EARLY20 unlimited active", created)
	}

	quote, err := svc.Validate(ctx, "Early20", 250, eventID)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if quote.Discount != 50 || quote.FinalAmount != 200 {
		t.Errorf("Validate() = %+v, want 50 off 250", quote)
	}

	if _, err := svc.Validate(ctx, "EARLY20", 250, uuid.NewString()); !apperrors.IsValidation(err) {
		t.Errorf("Validate(other event) error = %v, want validation", err)
	}
	if _, err := svc.Create(ctx, CreatePromoCodeRequest{Code: "EARLY20", DiscountAmount: 5}); !apperrors.IsConflict(err) {
		t.Errorf("duplicate Create() error = %v, want conflict", err)
	}
	if _, err := svc.Create(ctx, CreatePromoCodeRequest{Code: "NOPE", DiscountAmount: 5, MaxRedemptions: intPtr(0)}); !apperrors.IsValidation(err) {
		t.Errorf("Create(max 0) error = %v, want validation", err)
	}
	if _, err := svc.Create(ctx, CreatePromoCodeRequest{Code: "HALFOFF", DiscountAmount: 150}); !apperrors.IsValidation(err) {
		t.Errorf("Create(150%%) error = %v, want validation", err)
	}
}

func TestRedeemIsBoundedByMaxRedemptions(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	eventID := uuid.New()

	if _, err := svc.Create(ctx, CreatePromoCodeRequest{Code: "TWICE", DiscountType: "FIXED", DiscountAmount: 30, MaxRedemptions: intPtr(2)}); err != nil {
		t.Fatal(err)
	}

	redeem := func() (*Quote, error) {
		var quote *Quote
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			quote, err = svc.Redeem(tx, "twice", eventID, 100, time.Now().UTC())
			return err
		})
		return quote, err
	}

	for i := 1; i <= 2; i++ {
		quote, err := redeem()
		if err != nil {
			t.Fatalf("redemption %d error = %v", i, err)
		}
		if quote.FinalAmount != 70 || quote.RemainingRedemptions != 2-i {
			t.Errorf("redemption %d = %+v", i, quote)
		}
	}

	_, err := redeem()
	if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodePromoExhausted {
		t.Fatalf("third redemption error = %v, want PROMO_EXHAUSTED", err)
	}

	var p PromoCode
	db.First(&p, "code = ?", "TWICE")
	if p.UsedCount != 2 {
		t.Errorf("UsedCount = %d, want 2", p.UsedCount)
	}
}

func TestIncrementUsageRechecksCap(t *testing.T) {
	svc, db := newService(t)
	p := &PromoCode{ID: uuid.New(), Code: "LAST", DiscountType: DiscountFixed, DiscountAmount: 1, MaxRedemptions: 1, UsedCount: 1, IsActive: true}
	if err := db.Create(p).Error; err != nil {
		t.Fatal(err)
	}

	n, err := svc.repo.IncrementUsage(db, p.ID)
	if err != nil || n != 0 {
		t.Errorf("IncrementUsage() = %d, %v; want 0 rows", n, err)
	}
}

func TestListAndDeactivate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	eventID := uuid.NewString()

	for _, req := range []CreatePromoCodeRequest{
		{Code: "GLOBAL5", DiscountAmount: 5},
		{Code: "EVENT10", DiscountAmount: 10, EventID: eventID},
		{Code: "ELSEWHERE", DiscountAmount: 10, EventID: uuid.NewString()},
	} {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatal(err)
		}
	}

	codes, err := svc.List(ctx, eventID)
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 {
		t.Errorf("List(event) returned %d codes, want 2 (event + global)", len(codes))
	}
	all, _ := svc.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("List() returned %d codes, want 3", len(all))
	}

	if err := svc.Deactivate(ctx, "global5"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if _, err := svc.Validate(ctx, "GLOBAL5", 10, eventID); !apperrors.IsValidation(err) {
		t.Errorf("Validate(deactivated) error = %v, want validation", err)
	}
	if err := svc.Deactivate(ctx, "missing"); !apperrors.IsNotFound(err) {
		t.Errorf("Deactivate(missing) error = %v, want not found", err)
	}
}

func TestPromoRoutes(t *testing.T) {
	svc, _ := newService(t)
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	SetupPromoCodeRoutes(engine.Group("/api/v1"), NewController(svc))
	eventID := uuid.NewString()

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/admin/promo-codes", `{"code":"vip50","discount_type":"FIXED","discount_amount":50}`, http.StatusCreated},
		{http.MethodPost, "/admin/promo-codes", `{"code":"x","discount_amount":50}`, http.StatusBadRequest},
		{http.MethodPost, "/promo-codes/validate", `{"code":"VIP50","event_id":"` + eventID + `","order_amount":120}`, http.StatusOK},
		{http.MethodPost, "/promo-codes/validate", `{"code":"NOPE","event_id":"` + eventID + `","order_amount":120}`, http.StatusNotFound},
		{http.MethodGet, "/admin/promo-codes?event_id=" + eventID, "", http.StatusOK},
		{http.MethodDelete, "/admin/promo-codes/vip50", "", http.StatusOK},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, "/api/v1"+tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
		}
	}
}
