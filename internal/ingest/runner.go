// Package ingest drives the daily near-earth-object fetch, enrich and publish job.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/neo"
	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/queue"
)

var log = logging.Logger("ingest")

// RunIDAttribute is the message attribute carrying the run id.
const RunIDAttribute = "run_id"

// FeedSource returns the objects observed on a day.
type FeedSource interface {
	Feed(ctx context.Context, day time.Time) ([]neo.NearEarthObject, error)
}

// Enricher returns the orbital data for one object id.
type Enricher interface {
	OrbitalData(ctx context.Context, id string) (map[string]any, error)
}

// FailurePolicy decides what a per-object failure does to the run.
type FailurePolicy int

const (
	// StopOnFailure ends the run at the first failed object.
	StopOnFailure FailurePolicy = iota
	// SkipFailed records the failure and moves on to the next object.
	SkipFailed
)

func (p FailurePolicy) String() string {
	switch p {
	case StopOnFailure:
		return "stop"
	case SkipFailed:
		return "skip"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy maps "stop" and "skip" to a policy. Empty means stop.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stop":
		return StopOnFailure, nil
	case "skip":
		return SkipFailed, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q", s)
	}
}

// Stage names a per-object step.
type Stage string

const (
	// StageEnrich is the orbital data lookup.
	StageEnrich Stage = "enrich"
	// StageBuild turns a feed object and its orbital data into a Record.
	StageBuild Stage = "build"
	// StageEncode serializes the record body.
	StageEncode Stage = "encode"
	// StagePublish hands the message to the queue.
	StagePublish Stage = "publish"
)

// StageError is the failure of one step for one object.
type StageError struct {
	Stage    Stage
	ObjectID string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.ObjectID, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Outcome summarizes how a run ended.
type Outcome int

const (
	// Completed means every listed object went through the pipeline.
	Completed Outcome = iota
	// Empty means the feed reported no objects for the day.
	Empty
	// FeedFailed means the feed request failed and nothing was processed.
	FeedFailed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Empty:
		return "empty"
	case FeedFailed:
		return "feed-failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is what a run produced. Records is nil when the feed was empty or
// failed.
type Result struct {
	Day      string
	RunID    string
	Outcome  Outcome
	Records  []Record
	Failures []*StageError
	FeedErr  error
}

// Config wires the runner to its collaborators.
type Config struct {
	Feed      FeedSource
	Enricher  Enricher
	Publisher queue.Publisher
	Policy    FailurePolicy
	RunID     string
}

// Runner executes one fetch-enrich-publish pass.
type Runner struct {
	cfg Config
}

// NewRunner constructs a Runner. A run id is generated when none is given.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Feed == nil {
		return nil, fmt.Errorf("feed source is required")
	}
	if cfg.Enricher == nil {
		return nil, fmt.Errorf("enricher is required")
	}
	if cfg.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &Runner{cfg: cfg}, nil
}

// RunID returns the id attached to every published message.
func (r *Runner) RunID() string {
	return r.cfg.RunID
}

// Run processes every object the feed lists for day, one at a time and in
// feed order.
//
// A failed feed request is logged and reported through Result.Outcome with
// a nil error. Under StopOnFailure the first StageError is returned along
// with the records published before it.
func (r *Runner) Run(ctx context.Context, day time.Time) (*Result, error) {
	res := &Result{
		Day:   day.Format(neo.DayLayout),
		RunID: r.cfg.RunID,
	}

	log.Infof("Fetching near-earth objects for %s (run %s)", res.Day, res.RunID)

	objects, err := r.cfg.Feed.Feed(ctx, day)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if errors.Is(err, neo.ErrDayMissing) {
			return res, err
		}
		log.Errorf("Error: %v", err)
		res.Outcome = FeedFailed
		res.FeedErr = err
		return res, nil
	}

	if len(objects) == 0 {
		log.Info("No asteroids found.")
		res.Outcome = Empty
		return res, nil
	}

	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		rec, err := r.process(ctx, obj)
		if err != nil {
			var stageErr *StageError
			if r.cfg.Policy == SkipFailed && ctx.Err() == nil && errors.As(err, &stageErr) {
				log.Warnf("Skipping %s: %v", obj.ID, err)
				res.Failures = append(res.Failures, stageErr)
				continue
			}
			res.Records = records
			return res, err
		}
		records = append(records, rec)
		log.Infof("Processed: %s", rec.Name)
	}

	res.Records = records
	res.Outcome = Completed
	log.Infof("Run %s complete: published=%d skipped=%d", res.RunID, len(records), len(res.Failures))
	return res, nil
}

func (r *Runner) process(ctx context.Context, obj neo.NearEarthObject) (Record, error) {
	orbital, err := r.cfg.Enricher.OrbitalData(ctx, obj.ID)
	if err != nil {
		return Record{}, &StageError{Stage: StageEnrich, ObjectID: obj.ID, Err: err}
	}

	rec, err := BuildRecord(obj, orbital)
	if err != nil {
		return Record{}, &StageError{Stage: StageBuild, ObjectID: obj.ID, Err: err}
	}

	body, err := rec.Encode()
	if err != nil {
		return Record{}, &StageError{Stage: StageEncode, ObjectID: obj.ID, Err: err}
	}

	msg := queue.Message{
		Key:        rec.ID,
		Body:       body,
		Attributes: map[string]string{RunIDAttribute: r.cfg.RunID},
	}
	if err := r.cfg.Publisher.Publish(ctx, msg); err != nil {
		return Record{}, &StageError{Stage: StagePublish, ObjectID: obj.ID, Err: err}
	}

	return rec, nil
}
