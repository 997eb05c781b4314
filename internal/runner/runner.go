// Package runner starts external commands with the tool's own standard
// streams and reports how they ended.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/vk/trialrun/internal/ctxlog"
)

// Runner executes a full command line and returns its exit status.
type Runner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// LaunchError reports that a command never started, e.g. because the
// executable is not on PATH. It is never used for a non-zero exit.
type LaunchError struct {
	Program string
	Err     error
}

// Error implements the error interface for LaunchError.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Program, e.Err)
}

// Unwrap exposes the underlying exec error.
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Exec runs commands through os/exec.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Verbose echoes each command line to Stdout before it runs.
	Verbose bool

	// GracePeriod is how long a child may take to exit after it has been
	// sent SIGTERM before it is killed. Zero means DefaultGracePeriod.
	GracePeriod time.Duration
}

// DefaultGracePeriod bounds how long a cancelled child may keep running.
const DefaultGracePeriod = 5 * time.Second

// Run starts argv[0] with argv[1:] and waits for it. When ctx is cancelled
// while the child runs, the child is sent SIGTERM and, if it is still alive
// after GracePeriod, killed. Run then reports the status the child ended
// with; telling an interrupt apart from a failure is left to the caller.
func (e *Exec) Run(ctx context.Context, argv []string) (int, error) {
	logger := ctxlog.FromContext(ctx)
	if len(argv) == 0 {
		return 0, &LaunchError{Program: "", Err: errors.New("empty command line")}
	}

	if e.Verbose {
		fmt.Fprintf(e.Stdout, "+ %s\n", shellquote.Join(argv...))
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		logger.Debug("Executable lookup failed.", "program", argv[0], "error", err)
		return 0, &LaunchError{Program: argv[0], Err: err}
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Cancel = func() error {
		logger.Debug("Forwarding termination to child.", "program", argv[0])
		return terminate(cmd.Process)
	}
	cmd.WaitDelay = e.GracePeriod
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultGracePeriod
	}

	logger.Debug("Starting command.", "path", path, "argv", argv)
	if err := cmd.Start(); err != nil {
		return 0, &LaunchError{Program: argv[0], Err: err}
	}

	err = cmd.Wait()
	code := exitCode(cmd.ProcessState, err)
	logger.Debug("Command finished.", "program", argv[0], "exit_code", code)
	if err != nil && code == 0 && ctx.Err() == nil {
		// Wait failed for a reason other than the child's exit status,
		// e.g. copying one of the non-file streams.
		return 1, fmt.Errorf("waiting for %s: %w", argv[0], err)
	}
	return code, nil
}

// terminate asks the child to stop. Platforms that cannot deliver SIGTERM
// fall back to killing it.
func terminate(p *os.Process) error {
	err := p.Signal(syscall.SIGTERM)
	if err == nil || errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return p.Kill()
}

// exitCode maps a finished process to a shell-style status: the exit code
// when it exited, 128+signal when it was killed.
func exitCode(state *os.ProcessState, waitErr error) int {
	if state == nil {
		if waitErr != nil {
			return 1
		}
		return 0
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
