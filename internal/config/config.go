// Package config provides configuration management for the asteroid feed job.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the NASA API key.
const APIKeyEnv = "NASA_API_KEY"

// ErrMissingAPIKey is returned when no NASA API key is configured.
var ErrMissingAPIKey = errors.New("no api key found: " + APIKeyEnv + " is not set")

// Queue backends.
const (
	BackendSQS   = "sqs"
	BackendKafka = "kafka"
	BackendP2P   = "p2p"
)

// Failure policies.
const (
	PolicyStop = "stop"
	PolicySkip = "skip"
)

// Config represents the job configuration.
type Config struct {
	NASA   NASAConfig   `yaml:"nasa"`
	Queue  QueueConfig  `yaml:"queue"`
	Ingest IngestConfig `yaml:"ingest"`
}

// NASAConfig contains NeoWs endpoint settings.
type NASAConfig struct {
	FeedURL           string  `yaml:"feed_url"`
	DetailURL         string  `yaml:"detail_url"`
	HTTPTimeout       string  `yaml:"http_timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
}

// QueueConfig selects and configures the publish destination.
type QueueConfig struct {
	Backend string      `yaml:"backend"` // "sqs", "kafka" or "p2p"
	SQS     SQSConfig   `yaml:"sqs"`
	Kafka   KafkaConfig `yaml:"kafka"`
	P2P     P2PConfig   `yaml:"p2p"`
}

// SQSConfig contains AWS SQS settings.
type SQSConfig struct {
	QueueURL string `yaml:"queue_url"`
	Region   string `yaml:"region"`
}

// KafkaConfig contains Kafka producer settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// P2PConfig contains libp2p gossipsub settings.
type P2PConfig struct {
	Listen    []string `yaml:"listen"`
	Bootstrap []string `yaml:"bootstrap"`
	Topic     string   `yaml:"topic"`
}

// IngestConfig contains orchestration settings.
type IngestConfig struct {
	FailurePolicy string `yaml:"failure_policy"` // "stop" or "skip"
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		NASA: NASAConfig{
			FeedURL:     "https://api.nasa.gov/neo/rest/v1/feed",
			DetailURL:   "https://api.nasa.gov/neo/rest/v1/neo",
			HTTPTimeout: "30s",
		},
		Queue: QueueConfig{
			Backend: BackendSQS,
			SQS: SQSConfig{
				QueueURL: "https://sqs.us-east-2.amazonaws.com/574070665369/asteroidBelt",
				Region:   "us-east-2",
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "asteroid-belt",
			},
			P2P: P2PConfig{
				Listen: []string{"/ip4/0.0.0.0/tcp/0"},
				Topic:  "asteroid-belt",
			},
		},
		Ingest: IngestConfig{
			FailurePolicy: PolicyStop,
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".asteroidfeed", "config.yaml")
}

// Load loads the configuration from a file. Fields absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves the configuration to a file.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated and duration fields.
func (c *Config) Validate() error {
	switch c.Queue.Backend {
	case BackendSQS, BackendKafka, BackendP2P:
	default:
		return fmt.Errorf("unknown queue.backend %q", c.Queue.Backend)
	}
	switch c.Ingest.FailurePolicy {
	case PolicyStop, PolicySkip:
	default:
		return fmt.Errorf("unknown ingest.failure_policy %q", c.Ingest.FailurePolicy)
	}
	if _, err := c.NASA.Timeout(); err != nil {
		return err
	}
	if c.NASA.RequestsPerSecond < 0 {
		return fmt.Errorf("nasa.requests_per_second must not be negative")
	}
	return nil
}

// Timeout parses HTTPTimeout, falling back to 30s when empty.
func (n NASAConfig) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(n.HTTPTimeout)
	if raw == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid nasa.http_timeout %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("nasa.http_timeout must be positive, got %s", d)
	}
	return d, nil
}

// LoadAPIKey reads the NASA API key from the environment, after loading a
// .env file from the working directory when one exists.
func LoadAPIKey() (string, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("load .env: %w", err)
	}

	key := strings.TrimSpace(os.Getenv(APIKeyEnv))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// MaskKey keeps the first four characters of a credential.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", 6)
	}
	return key[:4] + "******"
}
