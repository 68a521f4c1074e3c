package filemeta

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/filemeta/internal/workpool"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Strategy selects how a batch of more than one path is fanned out.
type Strategy int

const (
	// StrategyPool runs inspections on a bounded worker pool.
	StrategyPool Strategy = iota
	// StrategySpawn starts one goroutine per path.
	StrategySpawn
)

// Strategies lists the names accepted by ParseStrategy.
//
//nolint:gochecknoglobals // Config constant
var Strategies = []string{StrategyPool.String(), StrategySpawn.String()}

func (s Strategy) String() string {
	switch s {
	case StrategyPool:
		return "pool"
	case StrategySpawn:
		return "spawn"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pool":
		return StrategyPool, nil
	case "spawn":
		return StrategySpawn, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q: must be one of %v", name, Strategies)
	}
}

// Options configures a Run.
type Options struct {
	// Workers bounds the pool size (0 = runtime.NumCPU()).
	Workers int
	// Strategy selects the fan-out for batches of more than one path.
	Strategy Strategy
	// Pool is an optional caller-owned pool reused across batches.
	// When set, Workers is ignored and the pool is left open.
	Pool *workpool.Pool
	// Location is the time zone for creation times (nil = time.Local).
	Location *time.Location
	// Recursive replaces directory inputs by the regular files below them.
	Recursive bool
	// RequireResults makes Run fail with ErrNoResults when paths were given
	// but none produced a line.
	RequireResults bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output (nil = discard).
	Logger logrus.FieldLogger
}

// Progress is a snapshot of a running batch.
type Progress struct {
	// Done is the number of finished inspections, successful or not.
	Done int64
	// Total is the number of paths in the batch.
	Total int64
	// Bytes is the cumulative size of the successfully inspected files.
	Bytes int64
}

// Skipped records a path that produced no line.
type Skipped struct {
	// Path is the input path.
	Path string `json:"path"`
	// Err is the cause, wrapping one of the package sentinel errors.
	Err error `json:"-"`
	// Reason is Err rendered as text.
	Reason string `json:"reason"`
}

// Report is the result of one batch.
type Report struct {
	// Text is the rendered report: sorted lines separated by a blank line, or EmptyReport.
	Text string `json:"report"`
	// Lines holds the distinct rendered lines in order.
	Lines []string `json:"lines"`
	// Total is the number of paths inspected, after directory expansion.
	Total int `json:"total"`
	// Inspected is the number of paths that produced a line, before de-duplication.
	Inspected int `json:"inspected"`
	// Skipped lists the paths that produced no line, sorted by path.
	Skipped []Skipped `json:"skipped"`
	// Strategy is the fan-out used: "inline", "pool" or "spawn".
	Strategy string `json:"strategy"`
	// Workers is the number of goroutines that ran inspections besides the caller.
	Workers int `json:"workers"`
	// Elapsed is the total time taken for the batch.
	Elapsed time.Duration `json:"elapsed"`
}

// Err bundles the skipped paths into one error, or returns nil if none were skipped.
func (r *Report) Err() error {
	var result *multierror.Error

	for _, s := range r.Skipped {
		result = multierror.Append(result, fmt.Errorf("%s: %w", s.Path, s.Err))
	}

	return result.ErrorOrNil()
}

// batch is the state shared by all inspections of one Run.
type batch struct {
	inspector Inspector
	results   *Aggregator
	log       logrus.FieldLogger

	mu      sync.Mutex // Protect skipped
	skipped []Skipped

	inspected atomic.Int64
	done      atomic.Int64
	bytes     atomic.Int64
}

// inspect runs one inspection. The file I/O happens before any lock is taken.
func (b *batch) inspect(path string) {
	defer b.done.Add(1)

	desc, err := b.inspector.Inspect(path)
	if err != nil {
		b.log.WithField("path", path).WithError(err).Debug("skipping file")

		b.mu.Lock()
		b.skipped = append(b.skipped, Skipped{Path: path, Err: err, Reason: err.Error()})
		b.mu.Unlock()

		return
	}

	b.results.Insert(desc.Line())
	b.inspected.Add(1)
	b.bytes.Add(int64(desc.Size)) //nolint:gosec // Sizes come from int64 to begin with.
}

func (b *batch) progress(total int64) Progress {
	return Progress{Done: b.done.Load(), Total: total, Bytes: b.bytes.Load()}
}

// startProgressReporter invokes hook on each tick until the returned stop
// function is called or ctx is done. stop waits for the reporter to exit.
func startProgressReporter(ctx context.Context, b *batch, total int64, hook func(Progress), interval time.Duration) func() {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	exited := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(exited)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(b.progress(total))
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-exited
	}
}

// Run inspects every path and returns the aggregated report.
//
// A single path is inspected on the calling goroutine. For more paths the
// calling goroutine inspects the first one while the rest run on a worker pool
// (StrategyPool) or on one goroutine each (StrategySpawn). Run blocks until
// every inspection has finished and then renders the report exactly once.
//
// A path that cannot be inspected is left out of the report and listed in
// Report.Skipped. Once started, inspections are never cancelled; ctx only
// bounds directory expansion and the progress reporter.
func Run(ctx context.Context, paths []string, opt Options, progressHook func(Progress)) (*Report, error) {
	log := loggerOrDiscard(opt.Logger)
	start := time.Now()

	if opt.Recursive {
		expanded, err := expandDirectories(ctx, paths, log)
		if err != nil {
			return nil, err
		}

		paths = expanded
	}

	b := &batch{
		inspector: Inspector{Location: opt.Location, Logger: log},
		results:   NewAggregator(),
		log:       log,
		skipped:   []Skipped{},
	}

	report := &Report{Total: len(paths), Strategy: "inline"}

	stop := startProgressReporter(ctx, b, int64(len(paths)), progressHook, opt.ProgressInterval)

	switch len(paths) {
	case 0:
	case 1:
		b.inspect(paths[0])
	default:
		report.Strategy = opt.Strategy.String()

		switch opt.Strategy {
		case StrategySpawn:
			report.Workers = b.spawn(paths)
		default:
			report.Workers = b.pooled(paths, opt, log)
		}
	}

	stop()

	log.WithFields(logrus.Fields{
		"paths":    len(paths),
		"strategy": report.Strategy,
		"workers":  report.Workers,
	}).Debug("batch complete")

	report.Text = b.results.Render()
	report.Lines = b.results.Lines()
	report.Inspected = int(b.inspected.Load())
	report.Skipped = b.skipped
	slices.SortStableFunc(report.Skipped, func(x, y Skipped) int {
		return cmp.Compare(x.Path, y.Path)
	})
	report.Elapsed = time.Since(start)

	if opt.RequireResults && len(paths) > 0 && len(report.Lines) == 0 {
		return report, fmt.Errorf("%w: %d of %d paths skipped", ErrNoResults, len(report.Skipped), len(paths))
	}

	return report, nil
}

// pooled submits paths[1:] to a pool and inspects paths[0] meanwhile.
// It returns the pool size.
func (b *batch) pooled(paths []string, opt Options, log logrus.FieldLogger) int {
	pool := opt.Pool
	if pool == nil {
		pool = workpool.New(workerCount(opt.Workers, len(paths)-1), workpool.WithLogger(log))
		defer pool.Close()
	}

	var wg sync.WaitGroup

	for _, path := range paths[1:] {
		wg.Add(1)

		if err := pool.Submit(func() {
			defer wg.Done()
			b.inspect(path)
		}); err != nil {
			log.WithField("path", path).WithError(err).Debug("pool rejected task, inspecting inline")
			wg.Done()
			b.inspect(path)
		}
	}

	b.inspect(paths[0])
	wg.Wait()

	return pool.Size()
}

// spawn starts one goroutine per path in paths[1:] and inspects paths[0]
// meanwhile. It returns the number of goroutines started.
func (b *batch) spawn(paths []string) int {
	var eg errgroup.Group

	for _, path := range paths[1:] {
		eg.Go(func() error {
			b.inspect(path)

			return nil
		})
	}

	b.inspect(paths[0])
	_ = eg.Wait() //nolint:errcheck // Inspections report failures through the batch.

	return len(paths) - 1
}

// workerCount bounds the requested worker count by the number of queued paths.
func workerCount(requested, queued int) int {
	if requested <= 0 {
		requested = runtime.NumCPU()
	}

	return max(1, min(requested, queued))
}
