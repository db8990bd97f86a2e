package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "distprimes"

// Recorder collects run metrics. It satisfies orchestration.MetricsRecorder.
type Recorder struct {
	registry *prometheus.Registry
	memory   *MemoryCollector

	phaseDuration *prometheus.HistogramVec
	workers       prometheus.Gauge
	workersDone   prometheus.Counter
	segmentBytes  prometheus.Gauge
	primesWritten prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Gauge
	heapBytes     prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry, including the Go
// runtime collector.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		memory:   NewMemoryCollector(),

		phaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of coordinator phases in seconds",
				Buckets:   []float64{.0001, .001, .01, .1, .5, 1, 5, 30, 120},
			},
			[]string{"phase"},
		),
		workers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of worker processes of the run",
		}),
		workersDone: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_completions_total",
			Help:      "Completions collected from the semaphore",
		}),
		segmentBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segment_bytes",
			Help:      "Size of the shared result segment in bytes",
		}),
		primesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "primes_written_total",
			Help:      "Primes written to standard output",
		}),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Coordinator runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run in seconds",
		}),
		heapBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinator_heap_bytes",
			Help:      "Coordinator heap in use at the end of the run",
		}),
	}
}

// Registry returns the registry holding the run metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObservePhase records how long a coordinator phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetWorkers sets the number of spawned workers.
func (r *Recorder) SetWorkers(n int) { r.workers.Set(float64(n)) }

// SetSegmentBytes sets the size of the shared segment.
func (r *Recorder) SetSegmentBytes(n uint64) { r.segmentBytes.Set(float64(n)) }

// WorkerDone counts one collected worker completion.
func (r *Recorder) WorkerDone() { r.workersDone.Inc() }

// AddPrimes counts primes written to the output.
func (r *Recorder) AddPrimes(n int) { r.primesWritten.Add(float64(n)) }

// RunFinished counts the run under its outcome and samples coordinator memory.
func (r *Recorder) RunFinished(outcome string, d time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Set(d.Seconds())
	r.heapBytes.Set(float64(r.memory.Snapshot().HeapAlloc))
}

// WriteFile writes every metric to path in the Prometheus text format. The
// file is replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
