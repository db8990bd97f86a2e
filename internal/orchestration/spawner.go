package orchestration

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/agbru/distprimes/internal/worker"
)

// ExecSpawner starts workers as separate processes of the helper executable.
// The assignment is passed as an argument vector; no shell is involved.
type ExecSpawner struct {
	// Path is the helper executable.
	Path string
	// Env is appended to the coordinator's environment for every worker.
	Env []string
	// Stderr receives the workers' standard error; nil means os.Stderr.
	Stderr io.Writer
}

// Start launches the helper with "<slot> <offset> <size>".
func (s ExecSpawner) Start(ctx context.Context, a worker.Assignment) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := exec.Command(s.Path, a.Args()...)
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }
