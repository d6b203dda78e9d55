package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"seatkeep/internal/floorplans"
	"seatkeep/internal/reservations"
	"seatkeep/internal/seats"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/testutil"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

type call struct {
	method, owner, arg string
}

type fakeSettler struct {
	calls []call
	err   error
}

func (f *fakeSettler) Commit(_ context.Context, owner, promo string) (*reservations.Receipt, error) {
	f.calls = append(f.calls, call{"commit", owner, promo})
	return &reservations.Receipt{OwnerRef: owner}, f.err
}

func (f *fakeSettler) Release(_ context.Context, owner, reason string) (*reservations.ReleaseResult, error) {
	f.calls = append(f.calls, call{"release", owner, reason})
	return &reservations.ReleaseResult{OwnerRef: owner}, f.err
}

func TestListenerRoutesStatuses(t *testing.T) {
	tests := []struct {
		body string
		want call
	}{
		{`{"owner_ref":"web-1","status":"SUCCEEDED","promo_code":"TENOFF"}`, call{"commit", "web-1", "TENOFF"}},
		{`{"owner_ref":" web-1 ","status":"succeeded"}`, call{"commit", "web-1", ""}},
		{`{"owner_ref":"web-1","status":"FAILED"}`, call{"release", "web-1", reservations.ReasonPayment}},
		{`{"owner_ref":"web-1","status":"TIMED_OUT"}`, call{"release", "web-1", reservations.ReasonPayment}},
		{`{"owner_ref":"web-1","status":"CANCELLED"}`, call{"release", "web-1", reservations.ReasonCancelled}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			settler := &fakeSettler{}
			if err := NewListener(settler).Handle(context.Background(), []byte(tt.body)); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if len(settler.calls) != 1 || settler.calls[0] != tt.want {
				t.Errorf("calls = %+v, want %+v", settler.calls, tt.want)
			}
		})
	}
}

func TestListenerErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		settleErr     error
		wantErr       bool
		wantMalformed bool
	}{
		{"not json", `{`, nil, true, true},
		{"missing owner", `{"status":"SUCCEEDED"}`, nil, true, true},
		{"unknown status", `{"owner_ref":"a","status":"REFUNDED"}`, nil, true, true},
		{"hold expired", `{"owner_ref":"a","status":"SUCCEEDED"}`, apperrors.PreconditionFailed(apperrors.CodeHoldExpired, "expired"), false, false},
		{"promo exhausted", `{"owner_ref":"a","status":"SUCCEEDED"}`, apperrors.Conflict(apperrors.CodePromoExhausted, "gone"), false, false},
		{"unknown promo", `{"owner_ref":"a","status":"SUCCEEDED"}`, apperrors.NotFound("no code"), false, false},
		{"database down", `{"owner_ref":"a","status":"FAILED"}`, apperrors.Internal(errors.New("conn refused"), "failed"), true, false},
		{"plain error", `{"owner_ref":"a","status":"FAILED"}`, errors.New("boom"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewListener(&fakeSettler{err: tt.settleErr}).Handle(context.Background(), []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if IsMalformed(err) != tt.wantMalformed {
				t.Errorf("IsMalformed(%v) = %v, want %v", err, IsMalformed(err), tt.wantMalformed)
			}
		})
	}
}

func TestListenerCommitsRealHold(t *testing.T) {
	db := testutil.OpenDB(t, &seats.Seat{})
	eventID := uuid.New()
	generated, err := seats.Generate(eventID, []floorplans.FloorPlanObject{
		{ID: uuid.New(), Kind: floorplans.KindFree, Tier: floorplans.TierGeneral, TotalSeats: 3, Price: 150},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&generated).Error; err != nil {
		t.Fatal(err)
	}

	svc := reservations.NewService(reservations.NewRepository(db), nil, nil, nil,
		config.HoldConfig{DefaultTTL: 10 * time.Minute, MaxTTL: 30 * time.Minute, MaxSeatsPerHold: 5})
	ctx := context.Background()
	if _, err := svc.Reserve(ctx, eventID.String(), []string{generated[0].ID.String(), generated[1].ID.String()}, "web-7", 0); err != nil {
		t.Fatal(err)
	}

	listener := NewListener(svc)
	if err := listener.Handle(ctx, []byte(`{"owner_ref":"web-7","status":"SUCCEEDED"}`)); err != nil {
		t.Fatalf("Handle(SUCCEEDED) error = %v", err)
	}
	var sold int64
	db.Model(&seats.Seat{}).Where("status = ?", seats.StatusSold).Count(&sold)
	if sold != 2 {
		t.Errorf("sold seats = %d, want 2", sold)
	}

	// a duplicate delivery finds no hold and is acknowledged
	if err := listener.Handle(ctx, []byte(`{"owner_ref":"web-7","status":"SUCCEEDED"}`)); err != nil {
		t.Errorf("duplicate Handle() error = %v, want nil", err)
	}
}

type fakeSession struct {
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32 { return nil }
func (s *fakeSession) MemberID() string { return "member-1" }
func (s *fakeSession) GenerationID() int32 { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string) {}
func (s *fakeSession) Commit() {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(m *sarama.ConsumerMessage, _ string) { s.marked = append(s.marked, m.Offset) }

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string { return "payment-results" }
func (c *fakeClaim) Partition() int32 { return 0 }
func (c *fakeClaim) InitialOffset() int64 { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64 { return int64(len(c.messages)) }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func claimOf(bodies ...string) *fakeClaim {
	c := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(bodies))}
	for i, b := range bodies {
		c.messages <- &sarama.ConsumerMessage{Topic: "payment-results", Offset: int64(i), Value: []byte(b)}
	}
	close(c.messages)
	return c
}

func TestConsumeClaimMarksAppliedAndMalformed(t *testing.T) {
	settler := &fakeSettler{}
	consumer := NewKafkaConsumerWithGroup(nil, &ConsumerConfig{MaxRetries: 2, RetryBackoffDuration: time.Millisecond}, NewListener(settler))
	handler := &consumerGroupHandler{consumer: consumer}
	session := &fakeSession{ctx: context.Background()}

	err := handler.ConsumeClaim(session, claimOf(
		`{"owner_ref":"a","status":"SUCCEEDED"}`,
		`garbage`,
		`{"owner_ref":"b","status":"FAILED"}`,
	))
	if err != nil {
		t.Fatalf("ConsumeClaim() error = %v", err)
	}
	if len(session.marked) != 3 {
		t.Errorf("marked offsets = %v, want all three", session.marked)
	}
	if len(settler.calls) != 2 {
		t.Errorf("settler calls = %+v, want 2", settler.calls)
	}
}

func TestConsumeClaimStopsOnTransientFailure(t *testing.T) {
	settler := &fakeSettler{err: errors.New("db down")}
	consumer := NewKafkaConsumerWithGroup(nil, &ConsumerConfig{MaxRetries: 2, RetryBackoffDuration: time.Millisecond}, NewListener(settler))
	handler := &consumerGroupHandler{consumer: consumer}
	session := &fakeSession{ctx: context.Background()}

	err := handler.ConsumeClaim(session, claimOf(`{"owner_ref":"a","status":"FAILED"}`, `{"owner_ref":"b","status":"FAILED"}`))
	if err == nil {
		t.Fatal("ConsumeClaim() error = nil, want the transient failure")
	}
	if len(session.marked) != 0 {
		t.Errorf("marked offsets = %v, want none", session.marked)
	}
	if len(settler.calls) != 3 {
		t.Errorf("attempts = %d, want 3 (one try plus two retries)", len(settler.calls))
	}
}

type fakeAck struct {
	acked            bool
	nacked, requeued bool
}

func (a *fakeAck) Ack(bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func TestAMQPDispatch(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		settleErr error
		want      fakeAck
	}{
		{"applied", `{"owner_ref":"a","status":"SUCCEEDED"}`, nil, fakeAck{acked: true}},
		{"rejected by domain", `{"owner_ref":"a","status":"SUCCEEDED"}`, apperrors.PreconditionFailed(apperrors.CodeNoActiveHold, "none"), fakeAck{acked: true}},
		{"malformed", `[]`, nil, fakeAck{nacked: true}},
		{"transient", `{"owner_ref":"a","status":"FAILED"}`, errors.New("db down"), fakeAck{nacked: true, requeued: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := NewAMQPConsumer("amqp://unused", "payment.results", 0, NewListener(&fakeSettler{err: tt.settleErr}))
			var ack fakeAck
			consumer.dispatch(context.Background(), []byte(tt.body), &ack)
			if ack != tt.want {
				t.Errorf("settlement = %+v, want %+v", ack, tt.want)
			}
		})
	}
}
