package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := getLogLevel(tt.in); got != tt.want {
				t.Errorf("getLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDomainLogLinesCarryFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))

	l.WithError(errors.New("boom")).LogReservationConflict(context.Background(), "evt-1", "owner-a", 2)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	want := map[string]interface{}{
		"msg":               "Reservation Conflict",
		"event_id":          "evt-1",
		"owner_ref":         "owner-a",
		"unavailable_seats": float64(2),
		"error":             "boom",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("line[%q] = %v, want %v", k, line[k], v)
		}
	}
}
