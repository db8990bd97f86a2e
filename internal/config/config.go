// Package config parses the coordinator's command line and environment into
// an AppConfig and derives the names of the shared resources.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/distprimes/internal/errors"
)

const (
	// EnvPrefix prefixes every environment variable the program reads.
	EnvPrefix = "DISTPRIMES_"

	// DefaultName is the program identifier the shared resource names derive from.
	DefaultName = "distprimes"

	// HelperName is the file name of the worker executable.
	HelperName = "distprimes-helper"

	segmentSuffix   = ".prime-tables"
	semaphoreSuffix = ".helper-count"
)

// ErrUsage marks command-line errors whose diagnostics (flag errors, usage
// text) have already been written by the parser.
var ErrUsage = errors.New("invalid usage")

// AppConfig holds the coordinator configuration.
type AppConfig struct {
	// PrimeCount is the number of primes to print.
	PrimeCount uint64
	// ProcessCount is the number of worker processes; 0 selects a default.
	ProcessCount uint64
	// Name is the prefix of the shared resource names.
	Name string
	// HelperPath is the worker executable; empty means next to the coordinator.
	HelperPath string
	// WaitTimeout bounds the collection phase; 0 waits forever.
	WaitTimeout time.Duration
	// Verbose enables debug logging on stderr.
	Verbose bool
	// Progress shows a spinner on stderr while workers run.
	Progress bool
	// MetricsFile receives Prometheus text metrics after the run, if set.
	MetricsFile string
	// TraceFile receives the run's OpenTelemetry spans as JSON, if set.
	TraceFile string
	// Cleanup removes stale shared resources and exits.
	Cleanup bool
	// Version prints the version and exits.
	Version bool
}

// Names holds the system-wide names of the shared resources of one run.
type Names struct {
	Segment   string
	Semaphore string
}

// NamesFor derives the resource names from a program identifier.
func NamesFor(name string) Names {
	return Names{Segment: name + segmentSuffix, Semaphore: name + semaphoreSuffix}
}

// Names returns the resource names for this configuration.
func (c AppConfig) Names() Names {
	return NamesFor(c.Name)
}

// DefaultProcessCount returns min(available parallelism, primeCount).
func DefaultProcessCount(primeCount uint64) uint64 {
	return min(uint64(max(1, runtime.NumCPU())), primeCount)
}

// ParseConfig parses the coordinator arguments (without the program name).
// Flags come first, followed by exactly two positional arguments, the number
// of primes and the number of processes. Environment variables override
// defaults for flags not set on the command line.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	config := AppConfig{}
	fs.StringVar(&config.Name, "name", DefaultName, "Prefix of the shared memory segment and semaphore names.")
	fs.StringVar(&config.HelperPath, "helper", "", "Path to the "+HelperName+" executable (default: next to this program).")
	fs.DurationVar(&config.WaitTimeout, "wait-timeout", 0, "Give up waiting for workers after this long (0 waits forever).")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Log coordinator phases to standard error.")
	fs.BoolVar(&config.Progress, "progress", false, "Show a spinner on standard error while workers run.")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file.")
	fs.StringVar(&config.TraceFile, "trace-file", "", "Write OpenTelemetry spans for the run to this file.")
	fs.BoolVar(&config.Cleanup, "cleanup", false, "Remove shared resources left by a crashed run and exit.")
	fs.BoolVar(&config.Version, "version", false, "Print the version and exit.")
	fs.Usage = func() { PrintUsage(fs.Output(), programName, fs) }

	flagArgs, tail := splitAtNegative(fs, args)
	if err := fs.Parse(flagArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config, err
		}
		return config, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	applyEnvOverrides(&config, fs)

	if config.Cleanup || config.Version {
		return config, nil
	}

	positional := append(fs.Args(), tail...)
	if len(positional) != 2 {
		fs.Usage()
		return config, fmt.Errorf("%w: expected 2 arguments, got %d", ErrUsage, len(positional))
	}

	var err error
	if config.PrimeCount, err = ParseNonNegative(positional[0], 1); err != nil {
		return config, err
	}
	if config.ProcessCount, err = ParseNonNegative(positional[1], 2); err != nil {
		return config, err
	}
	if err := validateName(config.Name); err != nil {
		return config, err
	}
	return config, nil
}

// splitAtNegative ends flag parsing at the first argument that is a negative
// integer and not the value of a preceding flag, so "-5 2" reaches the
// positional checks instead of failing as an unknown flag.
func splitAtNegative(fs *flag.FlagSet, args []string) (flags, tail []string) {
	for i, arg := range args {
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			break
		}
		if isNegative(arg) && !takesValue(fs, args[:i]) {
			return args[:i], args[i:]
		}
	}
	return args, nil
}

// takesValue reports whether the last of args is a flag whose value is the
// next argument.
func takesValue(fs *flag.FlagSet, args []string) bool {
	if len(args) == 0 {
		return false
	}
	name := strings.TrimLeft(args[len(args)-1], "-")
	if name == "" || strings.Contains(name, "=") {
		return false
	}
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return false
	}
	return true
}

// ParseNonNegative parses a positional argument as a non-negative decimal
// integer. index is the 1-based argument position used in messages.
func ParseNonNegative(s string, index int) (uint64, error) {
	if isNegative(s) {
		return 0, apperrors.NewConfigError("Argument %d must be non-negative.", index)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apperrors.NewConfigError("Argument %d is invalid.", index)
	}
	return v, nil
}

// isNegative reports whether s is a decimal integer below zero, however large.
func isNegative(s string) bool {
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return v < 0
	}
	return errors.Is(err, strconv.ErrRange) && strings.HasPrefix(s, "-")
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return apperrors.ValidationError{Field: "name", Message: fmt.Sprintf("invalid resource name %q", name)}
	}
	return nil
}

// PrintUsage writes the coordinator usage text.
func PrintUsage(w io.Writer, programName string, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] <number of primes> <number of processes>\n", programName)
	fmt.Fprintf(w, "Write the first <number of primes> prime numbers to standard output using\n")
	fmt.Fprintf(w, "<number of processes> worker processes that share results through shared memory.\n\n")
	fmt.Fprintf(w, "If the number of processes is 0, the program uses min(%d, <number of primes>).\n", runtime.NumCPU())
	fmt.Fprintf(w, "Prime numbers are separated by newlines.\n")
	if fs != nil {
		fmt.Fprintf(w, "\nFlags:\n")
		fs.PrintDefaults()
	}
}
