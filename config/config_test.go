package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "SERVER_ID", "TICK_RATE", "WORLD_SIZE", "FOOD_COUNT",
		"KAFKA_BOOTSTRAP_SERVER", "KAFKA_EVENTS_TOPIC", "KAFKA_BROADCAST_TOPIC",
		"MONGO_URI", "MONGO_DATABASE", "CENTRAL_SERVER_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.TickHz != 60 || cfg.WorldSize != 3000 || cfg.FoodCount != 150 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.KafkaEnabled() || cfg.MongoEnabled() {
		t.Fatalf("integrations should be disabled by default")
	}
	if cfg.KafkaEventsTopic != "arena_events" || cfg.KafkaBroadcastTopic != "central_to_chunk_broadcast" {
		t.Fatalf("unexpected topics %+v", cfg)
	}
	if cfg.ServerID == "" {
		t.Fatalf("server id should default to the hostname")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("WORLD_SIZE", "1500.5")
	t.Setenv("FOOD_COUNT", "0")
	t.Setenv("KAFKA_BOOTSTRAP_SERVER", "kafka:9092")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.TickHz != 30 || cfg.WorldSize != 1500.5 || cfg.FoodCount != 0 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.KafkaEnabled() || !cfg.MongoEnabled() {
		t.Fatalf("integrations should be enabled")
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TICK_RATE", "fast"},
		{"TICK_RATE", "0"},
		{"WORLD_SIZE", "-1"},
		{"FOOD_COUNT", "-3"},
		{"FOOD_COUNT", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestInitConfigReadsDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("FOOD_COUNT=42\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Unsetenv("FOOD_COUNT")

	InitConfig(path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FoodCount != 42 {
		t.Fatalf("FOOD_COUNT = %d, want 42 from env file", cfg.FoodCount)
	}
}
