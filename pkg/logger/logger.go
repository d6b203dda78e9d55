package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewWithHandler builds a logger on top of an existing slog handler.
func NewWithHandler(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithEventID adds the event ID to logger context
func (l *Logger) WithEventID(eventID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("event_id", eventID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Inventory logging methods

// LogSeatsGenerated logs a completed seat regeneration
func (l *Logger) LogSeatsGenerated(ctx context.Context, eventID string, deleted, created int) {
	l.Logger.InfoContext(ctx,
		"Seats Generated",
		slog.String("event_id", eventID),
		slog.Int("deleted", deleted),
		slog.Int("created", created),
	)
}

// LogSeatsRenumbered logs a completed relabel pass
func (l *Logger) LogSeatsRenumbered(ctx context.Context, eventID, scheme string, updated int) {
	l.Logger.InfoContext(ctx,
		"Seats Renumbered",
		slog.String("event_id", eventID),
		slog.String("scheme", scheme),
		slog.Int("updated", updated),
	)
}

// Reservation logging methods

// LogSeatsReserved logs a successful hold
func (l *Logger) LogSeatsReserved(ctx context.Context, eventID, ownerRef string, seatCount int, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Seats Reserved",
		slog.String("event_id", eventID),
		slog.String("owner_ref", ownerRef),
		slog.Int("seats", seatCount),
		slog.Time("expires_at", expiresAt),
	)
}

// LogReservationConflict logs a reservation that lost to another buyer
func (l *Logger) LogReservationConflict(ctx context.Context, eventID, ownerRef string, unavailable int) {
	l.Logger.WarnContext(ctx,
		"Reservation Conflict",
		slog.String("event_id", eventID),
		slog.String("owner_ref", ownerRef),
		slog.Int("unavailable_seats", unavailable),
	)
}

// LogReservationCommitted logs a hold turned into a sale
func (l *Logger) LogReservationCommitted(ctx context.Context, ownerRef string, seatCount int, total float64) {
	l.Logger.InfoContext(ctx,
		"Reservation Committed",
		slog.String("owner_ref", ownerRef),
		slog.Int("seats", seatCount),
		slog.Float64("total", total),
	)
}

// LogSeatsReleased logs seats returned to the pool
func (l *Logger) LogSeatsReleased(ctx context.Context, ownerRef, reason string, seatCount int) {
	l.Logger.InfoContext(ctx,
		"Seats Released",
		slog.String("owner_ref", ownerRef),
		slog.String("reason", reason),
		slog.Int("seats", seatCount),
	)
}

// LogCheckinRecorded logs a check-in
func (l *Logger) LogCheckinRecorded(ctx context.Context, eventID, registrationID string, already bool) {
	l.Logger.InfoContext(ctx,
		"Checkin Recorded",
		slog.String("event_id", eventID),
		slog.String("registration_id", registrationID),
		slog.Bool("already_checked_in", already),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.DebugContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
