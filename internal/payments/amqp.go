package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatkeep/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxReconnectBackoff = 30 * time.Second

// acknowledger is the part of amqp.Delivery the consumer settles with
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// AMQPConsumer feeds payment results from a durable RabbitMQ queue into a Listener
type AMQPConsumer struct {
	url      string
	queue    string
	prefetch int
	listener *Listener
}

func NewAMQPConsumer(url, queue string, prefetch int, listener *Listener) *AMQPConsumer {
	if prefetch <= 0 {
		prefetch = 50
	}
	return &AMQPConsumer{url: url, queue: queue, prefetch: prefetch, listener: listener}
}

// Run consumes until ctx is done, reconnecting with backoff when the broker goes away
func (c *AMQPConsumer) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			logger.GetDefault().WithError(err).Warn("Payment queue dial failed", "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < maxReconnectBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if err != nil {
			logger.GetDefault().WithError(err).Warn("Payment queue consume loop ended, reconnecting")
			if !sleep(ctx, 2*time.Second) {
				return
			}
		}
	}
}

func (c *AMQPConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		logger.GetDefault().WithError(err).Warn("Payment queue QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	logger.GetDefault().Info("Consuming payment results", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.dispatch(ctx, d.Body, d)
		}
	}
}

// dispatch acks applied messages, drops malformed ones and requeues the rest
func (c *AMQPConsumer) dispatch(ctx context.Context, body []byte, ack acknowledger) {
	err := c.listener.Handle(ctx, body)
	switch {
	case err == nil:
		_ = ack.Ack(false)
	case IsMalformed(err):
		logger.GetDefault().WithError(err).Warn("Dropping payment result")
		_ = ack.Nack(false, false)
	default:
		logger.GetDefault().WithError(err).Error("Payment result failed, requeueing")
		_ = ack.Nack(false, true)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
