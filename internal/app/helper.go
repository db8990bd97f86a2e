package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agbru/distprimes/internal/config"
	apperrors "github.com/agbru/distprimes/internal/errors"
	"github.com/agbru/distprimes/internal/logging"
	"github.com/agbru/distprimes/internal/primality"
	"github.com/agbru/distprimes/internal/worker"
)

// RunHelper runs the worker helper: "<program> <slot> <offset> <size>". The
// resource names come from DISTPRIMES_NAME. It returns the exit code.
func RunHelper(ctx context.Context, args []string, errWriter io.Writer) int {
	program := config.HelperName
	var cmdArgs []string
	if len(args) > 0 {
		program = filepath.Base(args[0])
		cmdArgs = args[1:]
	}

	if len(cmdArgs) != 3 {
		fmt.Fprintf(errWriter, "Usage: %s <slot> <offset> <size>\n", program)
		fmt.Fprintf(errWriter, "Test <size> integers starting at <offset> for primality and store the\n")
		fmt.Fprintf(errWriter, "results in slot <slot> of the shared segment named by %sNAME.\n", config.EnvPrefix)
		return apperrors.ExitErrorGeneric
	}
	a, err := worker.ParseAssignment(cmdArgs)
	if err != nil {
		fmt.Fprintf(errWriter, "%s: %v\n", program, err)
		return apperrors.ExitErrorGeneric
	}

	level := zerolog.InfoLevel
	if config.VerboseFromEnv() {
		level = zerolog.DebugLevel
	}
	logger := logging.NewConsoleLogger(errWriter, "worker", level).With(logging.Int("slot", a.Slot))

	ctx, stopSignals := signal.NotifyContext(ctx, terminationSignals...)
	defer stopSignals()

	names := config.NamesFor(config.NameFromEnv())
	if err := worker.Run(ctx, names, a, primality.NewOracle(), logger); err != nil {
		fmt.Fprintf(errWriter, "%s: %v\n", program, err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
