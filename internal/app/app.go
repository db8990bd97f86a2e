package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/distprimes/internal/cli"
	"github.com/agbru/distprimes/internal/config"
	apperrors "github.com/agbru/distprimes/internal/errors"
	"github.com/agbru/distprimes/internal/logging"
	"github.com/agbru/distprimes/internal/metrics"
	"github.com/agbru/distprimes/internal/orchestration"
	"github.com/agbru/distprimes/internal/semaphore"
	"github.com/agbru/distprimes/internal/shm"
)

// terminationSignals cancel a run so that its shared resources are released
// and its workers are killed before the process exits.
var terminationSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// Application represents the distprimes coordinator instance.
type Application struct {
	Config      config.AppConfig
	ProgramName string
	Spawner     orchestration.Spawner
	ErrWriter   io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithSpawner sets the spawner used to start workers instead of the helper
// executable.
func WithSpawner(s orchestration.Spawner) AppOption {
	return func(a *Application) { a.Spawner = s }
}

// New creates a new Application instance by parsing command-line arguments.
// Argument errors are reported on errWriter before New returns.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, ProgramName: config.DefaultName}
	for _, opt := range opts {
		opt(app)
	}

	var cmdArgs []string
	if len(args) > 0 {
		app.ProgramName = filepath.Base(args[0])
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(app.ProgramName, cmdArgs, errWriter)
	if err != nil {
		if !IsHelpError(err) && !errors.Is(err, config.ErrUsage) {
			cli.DisplayError(errWriter, app.ProgramName, err)
		}
		return nil, err
	}

	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	logger := a.newLogger()
	if a.Config.Cleanup {
		return a.runCleanup(logger)
	}

	ctx, stopSignals := signal.NotifyContext(ctx, terminationSignals...)
	defer stopSignals()

	return a.runPrimes(ctx, out, logger)
}

// runPrimes runs the coordinator and writes the primes to out.
func (a *Application) runPrimes(ctx context.Context, out io.Writer, logger logging.Logger) int {
	coordinator := &orchestration.Coordinator{
		Names:       a.Config.Names(),
		Spawner:     a.spawner(logger),
		Logger:      logger,
		WaitTimeout: a.Config.WaitTimeout,
	}

	var recorder *metrics.Recorder
	if a.Config.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		coordinator.Recorder = recorder
	}
	if a.Config.TraceFile != "" {
		tp, shutdown, err := newTraceFileProvider(a.Config.TraceFile)
		if err != nil {
			cli.DisplayError(a.ErrWriter, a.ProgramName, err)
			return apperrors.ExitErrorGeneric
		}
		defer func() {
			if serr := shutdown(context.Background()); serr != nil {
				logger.Error("flushing trace file", serr)
			}
		}()
		coordinator.TracerProvider = tp
	}
	if a.Config.Progress && a.Config.PrimeCount > 0 {
		reporter := cli.NewSpinnerProgressReporter(a.ErrWriter)
		defer reporter.Finish()
		coordinator.Reporter = reporter
	}

	start := time.Now()
	err := coordinator.Run(ctx, a.Config.PrimeCount, a.Config.ProcessCount, out)
	logger.Debug("run finished",
		logging.String("state", coordinator.State().String()),
		logging.String("duration", cli.FormatExecutionDuration(time.Since(start))),
	)

	if recorder != nil {
		if werr := recorder.WriteFile(a.Config.MetricsFile); werr != nil {
			cli.DisplayError(a.ErrWriter, a.ProgramName, werr)
			if err == nil {
				return apperrors.ExitErrorGeneric
			}
		}
	}

	if err != nil {
		cli.DisplayError(a.ErrWriter, a.ProgramName, err)
	}
	return apperrors.ExitCodeFor(err)
}

// runCleanup removes the shared resources a crashed run may have left.
func (a *Application) runCleanup(logger logging.Logger) int {
	names := a.Config.Names()
	removed := 0
	var errs []error

	if shm.Exists(names.Segment) {
		if err := shm.Destroy(names.Segment); err != nil {
			errs = append(errs, &apperrors.ResourceError{Kind: apperrors.KindSegment, Name: names.Segment, Op: "destroy", Cause: err})
		} else {
			removed++
			fmt.Fprintf(a.ErrWriter, "%s: removed %s %q\n", a.ProgramName, apperrors.KindSegment, names.Segment)
		}
	}
	if semaphore.Exists(names.Semaphore) {
		if err := semaphore.Destroy(names.Semaphore); err != nil {
			errs = append(errs, &apperrors.ResourceError{Kind: apperrors.KindSemaphore, Name: names.Semaphore, Op: "destroy", Cause: err})
		} else {
			removed++
			fmt.Fprintf(a.ErrWriter, "%s: removed %s %q\n", a.ProgramName, apperrors.KindSemaphore, names.Semaphore)
		}
	}

	if err := errors.Join(errs...); err != nil {
		cli.DisplayError(a.ErrWriter, a.ProgramName, err)
		return apperrors.ExitErrorGeneric
	}
	if removed == 0 {
		fmt.Fprintf(a.ErrWriter, "%s: nothing to clean up\n", a.ProgramName)
	}
	logger.Debug("cleanup finished", logging.Int("removed", removed))
	return apperrors.ExitSuccess
}

func (a *Application) newLogger() logging.Logger {
	level := zerolog.InfoLevel
	if a.Config.Verbose {
		level = zerolog.DebugLevel
	}
	return logging.NewConsoleLogger(a.ErrWriter, "coordinator", level)
}

// spawner returns the configured spawner or an ExecSpawner for the helper
// executable. Workers inherit the resource name prefix and verbosity.
func (a *Application) spawner(logger logging.Logger) orchestration.Spawner {
	if a.Spawner != nil {
		return a.Spawner
	}
	env := []string{config.EnvPrefix + "NAME=" + a.Config.Name}
	if a.Config.Verbose {
		env = append(env, config.EnvPrefix+"VERBOSE=1")
	}
	path := ResolveHelperPath(a.Config.HelperPath)
	logger.Debug("helper", logging.String("path", path))
	return orchestration.ExecSpawner{Path: path, Env: env, Stderr: a.ErrWriter}
}

// ResolveHelperPath returns the helper executable to run. An explicit path
// wins; otherwise the helper next to the running executable is preferred,
// then one found on PATH. If none is found, the sibling path is returned so
// the start failure names it.
func ResolveHelperPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	sibling := config.HelperName
	if exe, err := os.Executable(); err == nil {
		sibling = filepath.Join(filepath.Dir(exe), config.HelperName)
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			return sibling
		}
	}
	if found, err := exec.LookPath(config.HelperName); err == nil {
		return found
	}
	return sibling
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
