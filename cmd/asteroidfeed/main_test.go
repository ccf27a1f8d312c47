package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
)

func TestRunFeedMissingAPIKeyMakesNoRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.NASA.FeedURL = srv.URL + "/feed"
	cfg.NASA.DetailURL = srv.URL + "/neo"
	cfg.Queue.SQS.QueueURL = srv.URL + "/queue"

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	prev := configPath
	configPath = path
	defer func() { configPath = prev }()

	t.Setenv(config.APIKeyEnv, "")

	err := runFeed(rootCmd, nil)
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no network calls, got %d", hits.Load())
	}
}

func TestRunInitWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asteroidfeed", "config.yaml")

	prev := configPath
	configPath = path
	defer func() { configPath = prev }()

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Failed to load written config: %v", err)
	}
	if cfg.Queue.Backend != config.BackendSQS {
		t.Errorf("Expected sqs backend, got %q", cfg.Queue.Backend)
	}
}
