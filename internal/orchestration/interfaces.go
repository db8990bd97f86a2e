package orchestration

import (
	"context"
	"time"

	"github.com/agbru/distprimes/internal/worker"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// Spawner starts worker processes. The coordinator never waits for a worker
// inside Start; every worker is started before collection begins.
type Spawner interface {
	// Start launches a worker for the given assignment and returns without
	// waiting for it to finish.
	Start(ctx context.Context, a worker.Assignment) (Process, error)
}

// Process is a started worker.
type Process interface {
	// Wait blocks until the worker exits. A non-nil error reports a failed
	// exit; errors exposing an ExitCode() int method carry the status.
	Wait() error
	// Kill terminates the worker. Killing an exited worker is not an error.
	Kill() error
	// Pid returns the operating system process id.
	Pid() int
}

// ProgressReporter defines the interface for displaying collection progress.
// This interface decouples the orchestration layer from the presentation
// layer; implementations handle the visual representation (spinners, logs)
// while the coordinator focuses on managing workers.
type ProgressReporter interface {
	// WorkerDone is called each time a completion is collected, with the
	// number of completions so far and the number of workers.
	WorkerDone(done, total int)
	// Finish is called once when collection ends, successfully or not.
	Finish()
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// WorkerDone does nothing.
func (NullProgressReporter) WorkerDone(int, int) {}

// Finish does nothing.
func (NullProgressReporter) Finish() {}

// MetricsRecorder receives measurements of a coordinator run.
type MetricsRecorder interface {
	// ObservePhase records how long a coordinator phase took.
	ObservePhase(phase string, d time.Duration)
	// SetWorkers records the number of workers of the run.
	SetWorkers(n int)
	// SetSegmentBytes records the size of the shared result segment.
	SetSegmentBytes(n uint64)
	// WorkerDone counts one collected completion.
	WorkerDone()
	// AddPrimes counts primes written to the output.
	AddPrimes(n int)
	// RunFinished records the outcome ("done", "failed") and total duration.
	RunFinished(outcome string, d time.Duration)
}

// NullMetricsRecorder discards every measurement.
type NullMetricsRecorder struct{}

// ObservePhase discards the phase duration.
func (NullMetricsRecorder) ObservePhase(string, time.Duration) {}

// SetWorkers discards the worker count.
func (NullMetricsRecorder) SetWorkers(int) {}

// SetSegmentBytes discards the segment size.
func (NullMetricsRecorder) SetSegmentBytes(uint64) {}

// WorkerDone discards the completion.
func (NullMetricsRecorder) WorkerDone() {}

// AddPrimes discards the prime count.
func (NullMetricsRecorder) AddPrimes(int) {}

// RunFinished discards the run outcome.
func (NullMetricsRecorder) RunFinished(string, time.Duration) {}
