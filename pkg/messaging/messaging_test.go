package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"seatkeep/internal/shared/config"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestKafkaPublisherWritesEnvelope(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "seat-events" {
			return fmt.Errorf("topic = %s, want seat-events", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "evt-42" {
			return fmt.Errorf("key = %s, want evt-42", key)
		}
		raw, _ := msg.Value.Encode()
		var got SeatEvent
		if err := json.Unmarshal(raw, &got); err != nil {
			return err
		}
		if got.Type != EventSeatsReserved || got.OwnerRef != "owner-a" || len(got.SeatIDs) != 2 {
			return fmt.Errorf("envelope = %+v", got)
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "seat-events")
	ev := NewEvent(EventSeatsReserved, "evt-42", "owner-a", []string{"s1", "s2"}, nil)
	if err := pub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "seat-events")
	err := pub.Publish(context.Background(), NewEvent(EventSeatsSold, "evt-1", "o", nil, nil))
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("Publish() error = %v, want ErrOutOfBrokers", err)
	}
	_ = pub.Close()
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, *SeatEvent) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func TestEmitSwallowsErrors(t *testing.T) {
	f := &failingPublisher{}
	Emit(context.Background(), f, NewEvent(EventSeatsReleased, "e", "o", nil, nil))
	Emit(context.Background(), nil, NewEvent(EventSeatsReleased, "e", "o", nil, nil))
	if f.calls != 1 {
		t.Errorf("publisher called %d times, want 1", f.calls)
	}
}

func TestNewPublisherSelectsBus(t *testing.T) {
	p, err := NewPublisher(config.MessagingConfig{Bus: "none"})
	if err != nil {
		t.Fatalf("NewPublisher(none) error = %v", err)
	}
	if _, ok := p.(NoopPublisher); !ok {
		t.Errorf("NewPublisher(none) = %T, want NoopPublisher", p)
	}
	if _, err := NewPublisher(config.MessagingConfig{Bus: "carrier-pigeon"}); err == nil {
		t.Errorf("NewPublisher(carrier-pigeon) error = nil, want unsupported bus")
	}
}
