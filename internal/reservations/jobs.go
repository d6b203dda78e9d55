package reservations

import (
	"context"
	"sync"
	"time"

	"seatkeep/pkg/logger"
)

// JobProcessor runs the hold sweeper. Expiry is already enforced lazily on
// every read and write path; the sweeper only keeps the table tidy.
type JobProcessor struct {
	service Service
	config  *JobConfig
	done    chan struct{}
	once    sync.Once
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	SweepInterval time.Duration
	BatchSize     int
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		SweepInterval: 1 * time.Minute, // Sweep expired holds every minute
		BatchSize:     500,             // Release at most 500 seats per pass
	}
}

func NewJobProcessor(service Service, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		service: service,
		config:  config,
		done:    make(chan struct{}),
	}
}

// Start launches the sweeper goroutine
func (jp *JobProcessor) Start(ctx context.Context) {
	logger.GetDefault().Info("Starting hold sweeper", "interval", jp.config.SweepInterval.String(), "batch_size", jp.config.BatchSize)
	go jp.startSweeper(ctx)
}

// Stop stops the sweeper; calling it twice is harmless
func (jp *JobProcessor) Stop() {
	jp.once.Do(func() {
		close(jp.done)
		logger.GetDefault().Info("Hold sweeper stopped")
	})
}

func (jp *JobProcessor) startSweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.Sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep drains expired holds batch by batch until a short batch comes back
func (jp *JobProcessor) Sweep(ctx context.Context) int {
	total := 0
	for {
		n, err := jp.service.SweepExpired(ctx, jp.config.BatchSize)
		if err != nil {
			logger.GetDefault().WithError(err).Error("Error sweeping expired holds")
			return total
		}
		total += n
		if n < jp.config.BatchSize || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		logger.GetDefault().Info("Swept expired holds", "seats", total)
	}
	return total
}

// GetJobStatus returns the status of background jobs
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	status := "running"
	select {
	case <-jp.done:
		status = "stopped"
	default:
	}
	return map[string]interface{}{
		"sweep_interval": jp.config.SweepInterval.String(),
		"batch_size":     jp.config.BatchSize,
		"status":         status,
	}
}
