package messaging

import (
	"context"
	"fmt"

	"seatkeep/internal/shared/config"
	"seatkeep/pkg/logger"
)

// NewPublisher builds the publisher selected by EVENT_BUS.
func NewPublisher(cfg config.MessagingConfig) (Publisher, error) {
	switch cfg.Bus {
	case "", "none":
		return NoopPublisher{}, nil
	case "kafka":
		kcfg := DefaultKafkaProducerConfig()
		kcfg.Brokers = cfg.KafkaBrokers
		kcfg.Topic = cfg.KafkaTopic
		return NewKafkaPublisher(kcfg)
	case "rabbitmq":
		return NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	default:
		return nil, fmt.Errorf("unsupported EVENT_BUS %q", cfg.Bus)
	}
}

// Emit publishes after a committed transaction. Delivery is best effort:
// the database already holds the truth, so failures are only logged.
func Emit(ctx context.Context, p Publisher, event *SeatEvent) {
	if p == nil || event == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish seat event", err, map[string]interface{}{
			"type":     event.Type,
			"event_id": event.EventID,
			"seats":    len(event.SeatIDs),
		})
	}
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *SeatEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

// RecordingPublisher keeps events in memory; handy for tests and local runs.
type RecordingPublisher struct {
	Events []*SeatEvent
}

func (r *RecordingPublisher) Publish(_ context.Context, event *SeatEvent) error {
	r.Events = append(r.Events, event)
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

// Types lists the recorded event types in publish order.
func (r *RecordingPublisher) Types() []string {
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Type
	}
	return types
}
