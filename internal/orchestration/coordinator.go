package orchestration

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/distprimes/internal/config"
	apperrors "github.com/agbru/distprimes/internal/errors"
	"github.com/agbru/distprimes/internal/logging"
	"github.com/agbru/distprimes/internal/partition"
	"github.com/agbru/distprimes/internal/semaphore"
	"github.com/agbru/distprimes/internal/shm"
	"github.com/agbru/distprimes/internal/worker"
)

// MaxProcesses caps the number of workers of a single run.
const MaxProcesses = 1 << 16

const tracerName = "github.com/agbru/distprimes/internal/orchestration"

// Coordinator runs the pipeline. The zero value is not usable: Names and
// Spawner must be set. Other nil fields fall back to no-op implementations.
type Coordinator struct {
	// Names are the system-wide names of the shared resources.
	Names config.Names
	// Spawner starts the workers.
	Spawner Spawner
	// Logger receives phase diagnostics at debug level.
	Logger logging.Logger
	// Recorder receives run metrics.
	Recorder MetricsRecorder
	// Reporter displays collection progress.
	Reporter ProgressReporter
	// WaitTimeout bounds the collection phase. Zero waits forever.
	WaitTimeout time.Duration
	// TracerProvider receives a span for the run and one child span per
	// phase. Nil uses the global provider.
	TracerProvider trace.TracerProvider

	tracer trace.Tracer
	mu     sync.Mutex
	state  State
}

// spawned is a started worker and whether it has been waited for.
type spawned struct {
	slot   int
	proc   Process
	reaped bool
}

// State returns the current state of the coordinator.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.Logger.Debug("state", logging.String("state", s.String()))
}

func (c *Coordinator) applyDefaults() {
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	if c.Recorder == nil {
		c.Recorder = NullMetricsRecorder{}
	}
	if c.Reporter == nil {
		c.Reporter = NullProgressReporter{}
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}
	c.tracer = c.TracerProvider.Tracer(tracerName)
}

// Run writes the first primeCount primes to out, one per line, using
// processCount workers (0 selects min(NumCPU, primeCount)).
//
// Zero primes returns immediately without creating anything. A process count
// larger than the prime count is rejected before any resource is created.
// On every exit path the store and semaphore created by the run are removed
// and workers still running are killed.
//
// Parameters:
//   - ctx: Cancels the run; cancellation abandons collection and kills workers.
//   - primeCount: The number of primes to print.
//   - processCount: The number of workers, or 0 for the default.
//   - out: The writer receiving the primes.
//
// Returns:
//   - error: nil on success, otherwise the first failure of the run.
func (c *Coordinator) Run(ctx context.Context, primeCount, processCount uint64, out io.Writer) (err error) {
	c.applyDefaults()
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "coordinator.run", trace.WithAttributes(
		attribute.Int64("primes", int64(primeCount)),
		attribute.Int64("processes", int64(processCount)),
	))
	defer span.End()

	c.setState(StateInit)
	defer func() {
		outcome := StateDone
		if err != nil {
			outcome = StateFailed
			c.setState(StateFailed)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		c.Recorder.RunFinished(outcome.String(), time.Since(start))
	}()

	if primeCount == 0 {
		c.setState(StateDone)
		return nil
	}
	if processCount == 0 {
		processCount = config.DefaultProcessCount(primeCount)
	}
	if processCount > primeCount {
		return apperrors.ValidationError{
			Field:   "processes",
			Message: "The number of processes must not exceed the number of primes.",
		}
	}
	if processCount > MaxProcesses {
		return apperrors.ValidationError{
			Field:   "processes",
			Message: fmt.Sprintf("The number of processes must not exceed %d.", MaxProcesses),
		}
	}

	ranges, err := c.partition(ctx, primeCount, int(processCount))
	if err != nil {
		return err
	}

	guard := &Guard{}
	defer func() {
		if rerr := guard.Release(); rerr != nil {
			c.Logger.Error("releasing shared resources", rerr)
			err = errors.Join(err, rerr)
		}
	}()

	store, err := c.createStore(ctx, guard, ranges)
	if err != nil {
		return err
	}
	sem, err := c.createSignal(ctx, guard)
	if err != nil {
		return err
	}
	workers, err := c.spawn(ctx, guard, ranges)
	if err != nil {
		return err
	}
	if err := c.collect(ctx, sem, len(workers)); err != nil {
		return err
	}
	if err := c.reap(ctx, workers); err != nil {
		return err
	}
	if err := c.emit(ctx, store, ranges, primeCount, out); err != nil {
		return err
	}

	c.setState(StateDone)
	return nil
}

// startPhase opens a span for a phase and returns a function that ends it and
// records the phase duration.
func (c *Coordinator) startPhase(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, span := c.tracer.Start(ctx, "coordinator."+name)
	begin := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.Recorder.ObservePhase(name, time.Since(begin))
	}
}

func (c *Coordinator) partition(ctx context.Context, primeCount uint64, processCount int) (ranges []partition.Range, err error) {
	_, end := c.startPhase(ctx, "partition")
	defer func() { end(err) }()

	bound := partition.UpperBound(primeCount)
	ranges, err = partition.Split(bound, processCount)
	if err != nil {
		return nil, apperrors.WrapError(err, "partitioning [0, %d)", bound)
	}
	c.Logger.Debug("partitioned",
		logging.Uint64("upper_bound", bound),
		logging.Int("workers", len(ranges)),
	)
	c.Recorder.SetWorkers(len(ranges))
	c.setState(StatePartitioned)
	return ranges, nil
}

func (c *Coordinator) createStore(ctx context.Context, guard *Guard, ranges []partition.Range) (store *shm.Store, err error) {
	_, end := c.startPhase(ctx, "create_store")
	defer func() { end(err) }()

	capacities := make([]uint64, len(ranges))
	for i, r := range ranges {
		capacities[i] = r.Size
	}
	store, err = shm.Create(c.Names.Segment, capacities)
	if err != nil {
		return nil, &apperrors.ResourceError{
			Kind:  apperrors.KindSegment,
			Name:  c.Names.Segment,
			Op:    "create",
			Stale: errors.Is(err, shm.ErrExists),
			Cause: err,
		}
	}
	guard.Track("segment", func() error {
		return errors.Join(store.Close(), shm.Destroy(c.Names.Segment))
	})
	c.Logger.Debug("Shared memory segment size", logging.Uint64("bytes", store.Size()))
	c.Recorder.SetSegmentBytes(store.Size())
	c.setState(StateStoreCreated)

	for i, r := range ranges {
		slot, err := store.Slot(i)
		if err != nil {
			return nil, err
		}
		if err := slot.Assign(int(r.Size), false); err != nil {
			return nil, apperrors.WrapError(err, "sizing slot %d", i)
		}
	}
	return store, nil
}

func (c *Coordinator) createSignal(ctx context.Context, guard *Guard) (sem *semaphore.Semaphore, err error) {
	_, end := c.startPhase(ctx, "create_signal")
	defer func() { end(err) }()

	sem, err = semaphore.Create(c.Names.Semaphore, 0)
	if err != nil {
		return nil, &apperrors.ResourceError{
			Kind:  apperrors.KindSemaphore,
			Name:  c.Names.Semaphore,
			Op:    "create",
			Stale: errors.Is(err, semaphore.ErrExists),
			Cause: err,
		}
	}
	guard.Track("semaphore", func() error {
		return errors.Join(sem.Close(), semaphore.Destroy(c.Names.Semaphore))
	})
	c.setState(StateSignalCreated)
	return sem, nil
}

// spawn starts every worker without waiting for any of them. Workers still
// running when the guard is released are killed and reaped.
func (c *Coordinator) spawn(ctx context.Context, guard *Guard, ranges []partition.Range) (workers []*spawned, err error) {
	ctx, end := c.startPhase(ctx, "spawn")
	defer func() { end(err) }()

	guard.Track("workers", func() error {
		c.killWorkers(workers)
		return nil
	})

	for i, r := range ranges {
		a := worker.Assignment{Slot: i, Range: r}
		c.Logger.Debug("Running worker",
			logging.Int("slot", i),
			logging.String("args", strings.Join(a.Args(), " ")),
		)
		proc, err := c.Spawner.Start(ctx, a)
		if err != nil {
			return workers, &apperrors.WorkerError{Slot: i, ExitCode: -1, Cause: err}
		}
		workers = append(workers, &spawned{slot: i, proc: proc})
	}
	c.setState(StateWorkersSpawned)
	return workers, nil
}

func (c *Coordinator) killWorkers(workers []*spawned) {
	for _, w := range workers {
		if w.reaped {
			continue
		}
		if err := w.proc.Kill(); err != nil {
			c.Logger.Error("killing worker", err, logging.Int("slot", w.slot), logging.Int("pid", w.proc.Pid()))
		}
		_ = w.proc.Wait()
		w.reaped = true
	}
}

// collect waits for one completion per worker.
func (c *Coordinator) collect(ctx context.Context, sem *semaphore.Semaphore, total int) (err error) {
	ctx, end := c.startPhase(ctx, "collect")
	defer func() { end(err) }()
	defer c.Reporter.Finish()
	c.setState(StateCollecting)

	waitCtx := ctx
	if c.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.WaitTimeout)
		defer cancel()
	}

	for done := 1; done <= total; done++ {
		if err := sem.WaitContext(waitCtx); err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return apperrors.TimeoutError{Operation: "waiting for workers", Limit: c.WaitTimeout}
			}
			return apperrors.WrapError(err, "waiting for workers (%d of %d done)", done-1, total)
		}
		c.Recorder.WorkerDone()
		c.Reporter.WorkerDone(done, total)
		c.Logger.Debug("worker done", logging.Int("done", done), logging.Int("total", total))
	}
	return nil
}

type exitCoder interface {
	ExitCode() int
}

// reap waits for every worker to exit and reports the first failure.
func (c *Coordinator) reap(ctx context.Context, workers []*spawned) (err error) {
	_, end := c.startPhase(ctx, "reap")
	defer func() { end(err) }()

	var g errgroup.Group
	for _, w := range workers {
		g.Go(func() error {
			werr := w.proc.Wait()
			w.reaped = true
			if werr == nil {
				return nil
			}
			code := -1
			var ec exitCoder
			if errors.As(werr, &ec) {
				code = ec.ExitCode()
			}
			return &apperrors.WorkerError{Slot: w.slot, PID: w.proc.Pid(), ExitCode: code, Cause: werr}
		})
	}
	return g.Wait()
}

// emit writes the primes slot by slot in partition order, stopping after
// primeCount. Finding fewer primes is not an error.
func (c *Coordinator) emit(ctx context.Context, store *shm.Store, ranges []partition.Range, primeCount uint64, out io.Writer) (err error) {
	_, end := c.startPhase(ctx, "emit")
	defer func() { end(err) }()

	w := bufio.NewWriter(out)
	var (
		emitted  uint64
		buf      []byte
		writeErr error
	)
	for i, r := range ranges {
		if emitted == primeCount {
			break
		}
		slot, err := store.Slot(i)
		if err != nil {
			return err
		}
		slot.Range(func(j int, prime bool) bool {
			if !prime {
				return true
			}
			buf = strconv.AppendUint(buf[:0], r.Offset+uint64(j), 10)
			buf = append(buf, '\n')
			if _, writeErr = w.Write(buf); writeErr != nil {
				return false
			}
			emitted++
			return emitted < primeCount
		})
		if writeErr != nil {
			return apperrors.WrapError(writeErr, "writing primes")
		}
	}
	if err := w.Flush(); err != nil {
		return apperrors.WrapError(err, "writing primes")
	}
	if emitted < primeCount {
		c.Logger.Debug("fewer primes than requested",
			logging.Uint64("requested", primeCount),
			logging.Uint64("found", emitted),
		)
	}
	c.Recorder.AddPrimes(int(emitted))
	return nil
}
