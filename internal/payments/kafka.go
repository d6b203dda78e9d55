package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"seatkeep/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "seatkeep-payment-results",
		Topics:               []string{"payment-results"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    time.Minute,
		OffsetOldest:         true,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// KafkaConsumer feeds payment results from a consumer group into a Listener
type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	listener      *Listener
	wg            sync.WaitGroup
	cancel        context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, listener *Listener) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return NewKafkaConsumerWithGroup(consumerGroup, config, listener), nil
}

// NewKafkaConsumerWithGroup wraps an existing consumer group
func NewKafkaConsumerWithGroup(group sarama.ConsumerGroup, config *ConsumerConfig, listener *Listener) *KafkaConsumer {
	return &KafkaConsumer{
		consumerGroup: group,
		config:        config,
		listener:      listener,
	}
}

// Start launches numWorkers group members; they run until Stop or ctx is done
func (kc *KafkaConsumer) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, kc.cancel = context.WithCancel(ctx)
	logger.GetDefault().Info("Starting payment result consumers", "workers", numWorkers, "topics", kc.config.Topics)

	go kc.handleErrors()

	for i := 0; i < numWorkers; i++ {
		kc.wg.Add(1)
		go func(workerID int) {
			defer kc.wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}
}

func (kc *KafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{consumer: kc, workerID: workerID}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Consume returns on every rebalance and whenever a claim gives up on a message
		if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
			logger.GetDefault().WithError(err).Warn("Payment consumer session ended", "worker", workerID)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (kc *KafkaConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		logger.GetDefault().WithError(err).Error("Payment consumer group error")
	}
}

func (kc *KafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	kc.wg.Wait()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	logger.GetDefault().Info("Payment result consumers stopped")
	return nil
}

type consumerGroupHandler struct {
	consumer *KafkaConsumer
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message once it is applied or known to be malformed.
// A message that still fails after retries ends the session unmarked, so the
// group resumes from it.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			err := h.executeWithRetry(session.Context(), message)
			switch {
			case err == nil:
				session.MarkMessage(message, "")
			case IsMalformed(err):
				logger.GetDefault().WithError(err).Warn("Dropping payment result",
					"topic", message.Topic, "partition", message.Partition, "offset", message.Offset)
				session.MarkMessage(message, "")
			default:
				return err
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) executeWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoffDuration

	for attempt := 0; ; attempt++ {
		err := h.consumer.listener.Handle(ctx, message.Value)
		if err == nil || IsMalformed(err) || attempt >= maxRetries {
			return err
		}

		// Exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		logger.GetDefault().WithError(err).Warn("Retrying payment result",
			"worker", h.workerID, "attempt", attempt+1, "delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
