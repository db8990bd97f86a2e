package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/distprimes/internal/orchestration"
)

// SpinnerProgressReporter implements orchestration.ProgressReporter with a
// terminal spinner showing how many workers have reported completion.
type SpinnerProgressReporter struct {
	mu       sync.Mutex
	spinner  Spinner
	started  time.Time
	finished bool
}

// Verify that SpinnerProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = (*SpinnerProgressReporter)(nil)

// NewSpinnerProgressReporter starts a spinner on w. Nothing is written to
// standard output, so the prime list stays machine-readable.
func NewSpinnerProgressReporter(w io.Writer) *SpinnerProgressReporter {
	r := &SpinnerProgressReporter{spinner: newSpinner(w), started: time.Now()}
	r.spinner.UpdateSuffix(" Waiting for workers...")
	r.spinner.Start()
	return r
}

// WorkerDone updates the spinner with the number of completed workers.
func (r *SpinnerProgressReporter) WorkerDone(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished || total <= 0 {
		return
	}
	r.spinner.UpdateSuffix(FormatProgress(done, total, time.Since(r.started)))
}

// Finish stops the spinner. Later calls do nothing.
func (r *SpinnerProgressReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.finished = true
	r.spinner.Stop()
}

// FormatProgress returns the spinner suffix for done of total workers.
func FormatProgress(done, total int, elapsed time.Duration) string {
	return fmt.Sprintf(" [%s] %d/%d workers done (%s)",
		progressBar(float64(done)/float64(total), ProgressBarWidth),
		done, total, FormatExecutionDuration(elapsed))
}
