package checkins

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"seatkeep/internal/seats"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/testutil"
	"seatkeep/pkg/messaging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestDecodeToken(t *testing.T) {
	eventID := "0b6f3f8e-8d0c-4a7e-9a59-3c1c1f1f4242"
	payload := `{"registrationId":"reg-77","eventId":"` + eventID + `"}`
	std := base64.StdEncoding.EncodeToString([]byte(payload + " "))

	tests := []struct {
		name    string
		token   string
		wantReg string
		wantEvt string
		wantErr bool
	}{
		{"plain json", payload, "reg-77", eventID, false},
		{"standard base64", base64.StdEncoding.EncodeToString([]byte(payload)), "reg-77", eventID, false},
		{"url escaped base64", url.QueryEscape(std), "reg-77", eventID, false},
		{"base64url", base64.RawURLEncoding.EncodeToString([]byte(payload)), "reg-77", eventID, false},
		{"padded base64url", base64.URLEncoding.EncodeToString([]byte(payload)), "reg-77", eventID, false},
		{"numeric ids", `{"registrationId":77,"eventId":42}`, "77", "42", false},
		{"surrounding space", "  " + payload + "\n", "reg-77", eventID, false},
		{"round trip", EncodeToken(eventID, "reg-77"), "reg-77", eventID, false},
		{"empty", "", "", "", true},
		{"garbage", "not-a-token", "", "", true},
		{"missing event", `{"registrationId":"reg-77"}`, "", "", true},
		{"null registration", `{"registrationId":null,"eventId":42}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := DecodeToken(tt.token)
			if tt.wantErr {
				if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeInvalidToken {
					t.Errorf("DecodeToken(%q) error = %v, want INVALID_TOKEN", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeToken(%q) error = %v", tt.token, err)
			}
			if tok.RegistrationID != tt.wantReg || tok.EventID != tt.wantEvt {
				t.Errorf("DecodeToken(%q) = %+v, want %s/%s", tt.token, tok, tt.wantReg, tt.wantEvt)
			}
		})
	}
}

type fixture struct {
	db      *gorm.DB
	svc     *service
	events  *messaging.RecordingPublisher
	eventID uuid.UUID
	now     time.Time
}

func newFixture(t *testing.T, cfg config.CheckinConfig) *fixture {
	t.Helper()
	db := testutil.OpenDB(t, &CheckinRecord{}, &seats.Seat{})
	f := &fixture{
		db:      db,
		events:  &messaging.RecordingPublisher{},
		eventID: uuid.New(),
		now:     time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC),
	}
	f.svc = NewService(NewRepository(db), f.events, cfg).(*service)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestCheckinIsRecordedOnce(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{})
	ctx := context.Background()
	first := f.now

	res, err := f.svc.Checkin(ctx, f.eventID.String(), "reg-1", "key-1", Metadata{DeviceID: "door-1"})
	if err != nil {
		t.Fatalf("Checkin() error = %v", err)
	}
	if res.Already || res.Record.Source != SourceManual || res.Record.DeviceID != "door-1" {
		t.Errorf("first Checkin() = %+v", res)
	}

	f.now = f.now.Add(time.Minute)
	res, err = f.svc.Checkin(ctx, f.eventID.String(), "reg-1", "key-1", Metadata{DeviceID: "door-2"})
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if !res.Already || res.Record.DeviceID != "door-1" || !res.Record.CheckedInAt.Equal(first) {
		t.Errorf("retry with same key = %+v, want the stored record untouched", res.Record)
	}

	res, err = f.svc.Checkin(ctx, f.eventID.String(), "reg-1", "key-2", Metadata{DeviceID: "door-3", Location: "Gate B"})
	if err != nil {
		t.Fatalf("new key error = %v", err)
	}
	if res.Already || res.Record.DeviceID != "door-3" || res.Record.Location != "Gate B" || !res.Record.CheckedInAt.Equal(f.now) {
		t.Errorf("new key = %+v, want overwritten metadata", res.Record)
	}

	var count int64
	f.db.Model(&CheckinRecord{}).Count(&count)
	if count != 1 {
		t.Errorf("records = %d, want 1", count)
	}
	if got := len(f.events.Types()); got != 2 {
		t.Errorf("published %d events, want 2 (retry publishes nothing)", got)
	}
}

func TestCheckinWithoutKeyDeduplicates(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{})
	ctx := context.Background()

	for i, wantAlready := range []bool{false, true, true} {
		res, err := f.svc.Checkin(ctx, f.eventID.String(), " reg-9 ", "", Metadata{})
		if err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
		if res.Already != wantAlready {
			t.Errorf("call %d Already = %v, want %v", i, res.Already, wantAlready)
		}
	}
}

func TestConcurrentDuplicateScans(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{})
	f.svc.publisher = messaging.NoopPublisher{}
	token := EncodeToken(f.eventID.String(), "reg-5")

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Scan(context.Background(), f.eventID.String(), token, "", Metadata{})
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("scan %d error = %v", i, errs[i])
		}
		if !res.Already {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("%d scans recorded a new check-in, want 1", fresh)
	}
}

func TestScan(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{})
	ctx := context.Background()

	res, err := f.svc.Scan(ctx, f.eventID.String(), EncodeToken(f.eventID.String(), "reg-3"), "", Metadata{Location: "Gate A"})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if res.Record.RegistrationID != "reg-3" || res.Record.Source != SourceQR || res.Record.Location != "Gate A" {
		t.Errorf("Scan() record = %+v", res.Record)
	}

	_, err = f.svc.Scan(ctx, f.eventID.String(), EncodeToken(uuid.NewString(), "reg-3"), "", Metadata{})
	if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeWrongEvent || !apperrors.IsValidation(err) {
		t.Errorf("Scan(other event) error = %v, want WRONG_EVENT validation", err)
	}
	_, err = f.svc.Scan(ctx, f.eventID.String(), `{"registrationId":7,"eventId":42}`, "", Metadata{})
	if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeWrongEvent {
		t.Errorf("Scan(numeric event) error = %v, want WRONG_EVENT", err)
	}

	res, err = f.svc.Scan(ctx, f.eventID.String(), EncodeToken(f.eventID.String(), "reg-4"), "", Metadata{Source: SourceLambda})
	if err != nil || res.Record.Source != SourceLambda {
		t.Errorf("Scan(lambda) = %+v, %v; want LAMBDA source", res, err)
	}
}

func TestRequireSoldSeat(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{RequireSoldSeat: true, PassQRSize: 128})
	ctx := context.Background()

	buyer := "reg-buyer"
	seat := seats.Seat{
		ID:         uuid.New(),
		EventID:    f.eventID,
		ObjectID:   uuid.New(),
		Section:    "VIP",
		RowLabel:   "1",
		SeatNumber: "1",
		Tier:       "VIP",
		Price:      500,
		Status:     seats.StatusSold,
		HolderRef:  &buyer,
		Ordinal:    1,
	}
	if err := f.db.Create(&seat).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Checkin(ctx, f.eventID.String(), buyer, "", Metadata{}); err != nil {
		t.Errorf("Checkin(buyer) error = %v", err)
	}
	if _, err := f.svc.Checkin(ctx, f.eventID.String(), "reg-stranger", "", Metadata{}); !apperrors.IsNotFound(err) {
		t.Errorf("Checkin(stranger) error = %v, want not found", err)
	}
	if _, err := f.svc.Pass(ctx, f.eventID.String(), "reg-stranger"); !apperrors.IsNotFound(err) {
		t.Errorf("Pass(stranger) error = %v, want not found", err)
	}

	png, err := f.svc.Pass(ctx, f.eventID.String(), buyer)
	if err != nil {
		t.Fatalf("Pass() error = %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("Pass() is not a PNG: % x", png[:8])
	}
}

func TestGetAndValidation(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{})
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, f.eventID.String(), "reg-1"); !apperrors.IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
	f.svc.Checkin(ctx, f.eventID.String(), "reg-1", "", Metadata{Operator: "ana"})
	if rec, err := f.svc.Get(ctx, f.eventID.String(), "reg-1"); err != nil || rec.Operator != "ana" {
		t.Errorf("Get() = %+v, %v", rec, err)
	}

	tests := []struct {
		name, eventID, reg string
	}{
		{"bad event", "42", "reg-1"},
		{"blank registration", f.eventID.String(), "  "},
		{"long registration", f.eventID.String(), strings.Repeat("r", 101)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Checkin(ctx, tt.eventID, tt.reg, "", Metadata{}); !apperrors.IsValidation(err) {
				t.Errorf("Checkin(%q, %q) error = %v, want validation", tt.eventID, tt.reg, err)
			}
		})
	}
}

func TestCheckinRoutes(t *testing.T) {
	f := newFixture(t, config.CheckinConfig{})
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	SetupCheckinRoutes(engine.Group("/api/v1"), NewController(f.svc))

	base := "/api/v1/events/" + f.eventID.String() + "/checkins"
	token := EncodeToken(f.eventID.String(), "reg-2")
	tests := []struct {
		method, path, body, key string
		want                    int
	}{
		{http.MethodPost, base, `{"registration_id":"reg-1"}`, "k1", http.StatusCreated},
		{http.MethodPost, base, `{"registration_id":"reg-1"}`, "k1", http.StatusOK},
		{http.MethodPost, base, `{}`, "", http.StatusBadRequest},
		{http.MethodPost, base + "/scan", `{"token":"` + token + `"}`, "", http.StatusCreated},
		{http.MethodPost, base + "/scan", `{"token":"` + EncodeToken(uuid.NewString(), "reg-2") + `"}`, "", http.StatusBadRequest},
		{http.MethodGet, base + "/reg-2", "", "", http.StatusOK},
		{http.MethodGet, base + "/reg-404", "", "", http.StatusNotFound},
		{http.MethodGet, base + "/reg-2/pass.png", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		if tt.key != "" {
			req.Header.Set(IdempotencyHeader, tt.key)
		}
		engine.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
		}
		if strings.HasSuffix(tt.path, ".png") && w.Header().Get("Content-Type") != "image/png" {
			t.Errorf("pass Content-Type = %q, want image/png", w.Header().Get("Content-Type"))
		}
	}
}
