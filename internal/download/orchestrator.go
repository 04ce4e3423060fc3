package download

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/album-downloader/internal/config"
	"github.com/handiism/album-downloader/internal/model"
)

// DefaultConcurrency is the wave width used when none is configured.
const DefaultConcurrency = config.DefaultConcurrency

// Orchestrator runs download tasks in waves.
//
// The task list is split into consecutive chunks of at most width tasks.
// All tasks of a chunk run concurrently and the next chunk starts only
// after every task of the current one has settled. A fatal outcome in a
// wave lets the rest of that wave finish and prevents later waves from
// starting.
type Orchestrator struct {
	writer Writer
	width  int
	logger zerolog.Logger

	onWave    func(wave int, tasks []model.Task)
	onOutcome func(index int, out Outcome)
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// OnWaveStart is called before each wave starts.
func OnWaveStart(fn func(wave int, tasks []model.Task)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onWave = fn
	}
}

// OnOutcome is called once per task as soon as it settles. It may be
// called from several goroutines at once.
func OnOutcome(fn func(index int, out Outcome)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onOutcome = fn
	}
}

// NewOrchestrator returns an Orchestrator running at most width tasks
// at a time.
func NewOrchestrator(writer Writer, width int, logger zerolog.Logger, opts ...OrchestratorOption) (*Orchestrator, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, width)
	}

	o := &Orchestrator{
		writer: writer,
		width:  width,
		logger: logger,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Run downloads tasks wave by wave and returns one outcome per attempted
// task, in task order.
//
// When a wave produces a fatal outcome the outcomes of all waves run so
// far are returned together with a *FatalError for the first fatal task.
// When ctx is cancelled between waves, Run returns the outcomes so far
// and ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, tasks []model.Task) ([]Outcome, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	if err := checkDestinations(tasks); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(tasks))

	for wave, batch := range lo.Chunk(tasks, o.width) {
		if err := ctx.Err(); err != nil {
			o.logger.Warn().Int("wave", wave).Msg("Run cancelled before wave start")
			return outcomes, fmt.Errorf("wave %d not started: %w", wave, err)
		}

		base := wave * o.width
		results := o.runWave(ctx, wave, base, batch)
		outcomes = append(outcomes, results...)

		if fatal := o.firstFatal(base, results); fatal != nil {
			o.logger.
				Error().
				Err(fatal.Err).
				Int("wave", wave).
				Int("index", fatal.Index).
				Msg("Fatal download error. Remaining waves are skipped")
			return outcomes, fatal
		}
	}

	return outcomes, nil
}

func (o *Orchestrator) runWave(ctx context.Context, wave, base int, batch []model.Task) []Outcome {
	logger := o.logger.With().Int("wave", wave).Logger()
	logger.Debug().Int("tasks", len(batch)).Msg("Starting wave")

	if o.onWave != nil {
		o.onWave(wave, batch)
	}

	results := make([]Outcome, len(batch))

	var g errgroup.Group
	for i, task := range batch {
		g.Go(func() error {
			out := o.writer.Write(ctx, task)
			out.Task = task
			results[i] = out

			if o.onOutcome != nil {
				o.onOutcome(base+i, out)
			}
			return nil
		})
	}
	// Tasks report failures through their Outcome, so Wait only joins.
	_ = g.Wait()

	logger.Debug().Dict("outcomes", countKinds(results)).Msg("Wave settled")

	return results
}

func (o *Orchestrator) firstFatal(base int, results []Outcome) *FatalError {
	var fatal *FatalError
	for i, out := range results {
		switch out.Kind {
		case KindFatal:
			if fatal == nil {
				fatal = &FatalError{Index: base + i, Task: out.Task, Err: out.Err}
				continue
			}
			o.logger.Error().Err(out.Err).Int("index", base+i).Str("path", out.Task.Path).Msg("Additional fatal error in wave")
		case KindDownloaded, KindSkippedExisting, KindSkippedNotFound, KindSkippedHTTPError:
		}
	}
	return fatal
}

func checkDestinations(tasks []model.Task) error {
	dups := lo.FindDuplicatesBy(tasks, func(t model.Task) string {
		return filepath.Clean(t.Path)
	})
	if len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateDestination, dups[0].Path)
	}
	return nil
}

func countKinds(outcomes []Outcome) *zerolog.Event {
	counts := lo.CountValuesBy(outcomes, func(out Outcome) Kind { return out.Kind })
	dict := zerolog.Dict()
	for _, kind := range Kinds {
		if n := counts[kind]; n > 0 {
			dict = dict.Int(kind.String(), n)
		}
	}
	return dict
}
