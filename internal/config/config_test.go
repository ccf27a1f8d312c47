package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Queue.Backend != BackendSQS {
		t.Errorf("Expected backend %q, got %q", BackendSQS, cfg.Queue.Backend)
	}
	if cfg.Queue.SQS.Region != "us-east-2" {
		t.Errorf("Expected region us-east-2, got %q", cfg.Queue.SQS.Region)
	}
	if cfg.Ingest.FailurePolicy != PolicyStop {
		t.Errorf("Expected policy %q, got %q", PolicyStop, cfg.Ingest.FailurePolicy)
	}
}

func TestLoadOverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
queue:
  backend: kafka
  kafka:
    brokers: ["broker-1:9092", "broker-2:9092"]
nasa:
  http_timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Queue.Backend != BackendKafka {
		t.Errorf("Expected backend kafka, got %q", cfg.Queue.Backend)
	}
	if len(cfg.Queue.Kafka.Brokers) != 2 {
		t.Errorf("Expected 2 brokers, got %v", cfg.Queue.Kafka.Brokers)
	}
	if cfg.Queue.Kafka.Topic != "asteroid-belt" {
		t.Errorf("Expected default topic to survive, got %q", cfg.Queue.Kafka.Topic)
	}
	if cfg.NASA.FeedURL != Default().NASA.FeedURL {
		t.Errorf("Expected default feed url, got %q", cfg.NASA.FeedURL)
	}

	timeout, err := cfg.NASA.Timeout()
	if err != nil {
		t.Fatalf("Timeout failed: %v", err)
	}
	if timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", timeout)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("queue:\n  backend: carrier-pigeon\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Ingest.FailurePolicy = PolicySkip

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Ingest.FailurePolicy != PolicySkip {
		t.Errorf("Expected policy skip, got %q", loaded.Ingest.FailurePolicy)
	}
}

func TestLoadAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	if _, err := LoadAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}

	t.Setenv(APIKeyEnv, "  DEMO_KEY  ")
	key, err := LoadAPIKey()
	if err != nil {
		t.Fatalf("LoadAPIKey failed: %v", err)
	}
	if key != "DEMO_KEY" {
		t.Errorf("Expected DEMO_KEY, got %q", key)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("abcdefgh"); got != "abcd******" {
		t.Errorf("Expected abcd******, got %q", got)
	}
	if got := MaskKey("abc"); got != "******" {
		t.Errorf("Expected full mask for short key, got %q", got)
	}
}
