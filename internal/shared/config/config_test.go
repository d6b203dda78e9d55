package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Holds.DefaultTTL != 10*time.Minute {
		t.Errorf("Holds.DefaultTTL = %v, want 10m", cfg.Holds.DefaultTTL)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Port != "5432" {
		t.Errorf("Database = %s:%s, want postgres:5432", cfg.Database.Driver, cfg.Database.Port)
	}
	if !strings.Contains(cfg.Database.DSN, "dbname=seatkeep") {
		t.Errorf("DSN = %q, want dbname=seatkeep", cfg.Database.DSN)
	}
	if got := cfg.GetAPIBasePath(); got != "/api/v1" {
		t.Errorf("GetAPIBasePath() = %q, want /api/v1", got)
	}
	if cfg.Messaging.Bus != "none" {
		t.Errorf("Messaging.Bus = %q, want none", cfg.Messaging.Bus)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HOLD_DEFAULT_TTL", "5m")
	t.Setenv("HOLD_MAX_SEATS", "8")
	t.Setenv("HOLD_SWEEPER_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("EVENT_BUS", "Kafka")

	cfg := Load()

	if cfg.Database.Driver != "mysql" || cfg.Database.Port != "3306" {
		t.Errorf("Database = %s:%s, want mysql:3306", cfg.Database.Driver, cfg.Database.Port)
	}
	for _, want := range []string{"tcp(db.internal:3306)", "parseTime=true", "clientFoundRows=true"} {
		if !strings.Contains(cfg.Database.DSN, want) {
			t.Errorf("DSN = %q, missing %q", cfg.Database.DSN, want)
		}
	}
	if cfg.Holds.DefaultTTL != 5*time.Minute || cfg.Holds.MaxSeatsPerHold != 8 || !cfg.Holds.SweeperEnabled {
		t.Errorf("Holds = %+v, want ttl 5m, 8 seats, sweeper on", cfg.Holds)
	}
	if len(cfg.Messaging.KafkaBrokers) != 2 || cfg.Messaging.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers = %v, want [k1:9092 k2:9092]", cfg.Messaging.KafkaBrokers)
	}
	if cfg.Messaging.Bus != "kafka" {
		t.Errorf("Messaging.Bus = %q, want kafka", cfg.Messaging.Bus)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HOLD_MAX_TTL", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()

	if cfg.Holds.MaxTTL != 30*time.Minute {
		t.Errorf("Holds.MaxTTL = %v, want 30m fallback", cfg.Holds.MaxTTL)
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("Redis.DB = %d, want 0 fallback", cfg.Redis.DB)
	}
}
