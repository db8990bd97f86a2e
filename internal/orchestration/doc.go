// Package orchestration coordinates one run of the pipeline: it partitions the
// candidate interval, creates the shared result store and completion
// semaphore, spawns one worker process per range, waits for every worker to
// report completion, and prints the primes in ascending order. It decouples
// process management and presentation via the Spawner, ProgressReporter and
// MetricsRecorder interfaces.
package orchestration
