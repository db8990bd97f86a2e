package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/distprimes/internal/errors"
)

// MockSpinner for testing
type MockSpinner struct {
	started  int
	stopped  int
	suffixes []string
}

func (m *MockSpinner) Start() { m.started++ }

func (m *MockSpinner) Stop() { m.stopped++ }

func (m *MockSpinner) UpdateSuffix(suffix string) { m.suffixes = append(m.suffixes, suffix) }

func withMockSpinner(t *testing.T) *MockSpinner {
	t.Helper()
	mock := &MockSpinner{}
	orig := newSpinner
	newSpinner = func(io.Writer) Spinner { return mock }
	t.Cleanup(func() { newSpinner = orig })
	return mock
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{15 * time.Millisecond, "15ms"},
		{2 * time.Second, "2s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{1.5, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, 4); got != tt.want {
			t.Errorf("progressBar(%v, 4) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestSpinnerProgressReporter(t *testing.T) {
	mock := withMockSpinner(t)

	r := NewSpinnerProgressReporter(&bytes.Buffer{})
	if mock.started != 1 {
		t.Fatalf("spinner started %d times, want 1", mock.started)
	}
	r.WorkerDone(1, 2)
	r.WorkerDone(2, 2)
	r.Finish()
	r.Finish()
	r.WorkerDone(2, 2)

	if mock.stopped != 1 {
		t.Errorf("spinner stopped %d times, want 1", mock.stopped)
	}
	if len(mock.suffixes) != 3 {
		t.Fatalf("suffix updates = %d, want 3: %q", len(mock.suffixes), mock.suffixes)
	}
	if !strings.Contains(mock.suffixes[1], "1/2 workers done") {
		t.Errorf("suffix = %q, want 1/2", mock.suffixes[1])
	}
	if !strings.Contains(mock.suffixes[2], "2/2 workers done") {
		t.Errorf("suffix = %q, want 2/2", mock.suffixes[2])
	}
}

func TestFormatProgress(t *testing.T) {
	t.Parallel()
	got := FormatProgress(1, 4, 3*time.Millisecond)
	want := " [" + progressBar(0.25, ProgressBarWidth) + "] 1/4 workers done (3ms)"
	if got != want {
		t.Errorf("FormatProgress() = %q, want %q", got, want)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", apperrors.NewConfigError("Argument 1 is invalid."), "distprimes: Argument 1 is invalid."},
		{"validation", apperrors.ValidationError{Field: "processes", Message: "too many"}, "distprimes: too many"},
		{"canceled", fmt.Errorf("waiting: %w", context.Canceled), "distprimes: interrupted"},
		{"other", errors.New("boom"), "distprimes: error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatError("distprimes", tt.err); got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayError(&buf, "distprimes", errors.New("boom"))
	if buf.String() != "distprimes: error: boom\n" {
		t.Errorf("DisplayError wrote %q", buf.String())
	}
}
