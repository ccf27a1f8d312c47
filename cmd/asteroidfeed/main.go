// Package main provides the entry point for the daily asteroid feed job.
// It fetches today's near-earth objects from NASA NeoWs, enriches each with
// its orbital data and publishes one queue message per object.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/ingest"
	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/neo"
	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/queue"
)

var log = logging.Logger("asteroidfeed")

var rootCmd = &cobra.Command{
	Use:   "asteroidfeed",
	Short: "Publish today's near-earth objects to the asteroid queue",
	Long: `asteroidfeed fetches the NASA NeoWs feed for today, looks up the orbital
data of every listed object and publishes one message per object to the
configured queue (SQS by default).`,
	SilenceUsage: true,
	RunE:         runFeed,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runInit,
}

var (
	configPath string
	debug      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug {
			logging.SetAllLoggers(logging.LevelDebug)
		} else {
			logging.SetAllLoggers(logging.LevelInfo)
		}
	}

	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	apiKey, err := config.LoadAPIKey()
	if err != nil {
		return err
	}
	log.Infof("API key found: %s", config.MaskKey(apiKey))

	policy, err := ingest.ParseFailurePolicy(cfg.Ingest.FailurePolicy)
	if err != nil {
		return err
	}
	timeout, err := cfg.NASA.Timeout()
	if err != nil {
		return err
	}

	client, err := neo.NewClient(neo.Config{
		APIKey:            apiKey,
		FeedURL:           cfg.NASA.FeedURL,
		DetailURL:         cfg.NASA.DetailURL,
		HTTPTimeout:       timeout,
		RequestsPerSecond: cfg.NASA.RequestsPerSecond,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	publisher, err := queue.Open(ctx, cfg.Queue)
	if err != nil {
		return fmt.Errorf("failed to open %s publisher: %w", cfg.Queue.Backend, err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("Publisher close error: %v", err)
		}
	}()

	runner, err := ingest.NewRunner(ingest.Config{
		Feed:      client,
		Enricher:  client,
		Publisher: publisher,
		Policy:    policy,
	})
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, time.Now())
	if err != nil {
		return err
	}

	log.Infof("Run %s for %s finished: outcome=%s records=%d", res.RunID, res.Day, res.Outcome, len(res.Records))
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	log.Infof("Initialized asteroidfeed configuration at %s", path)
	return nil
}
