package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/vk/trialrun/internal/app"
	"github.com/vk/trialrun/internal/cli"
	"github.com/vk/trialrun/internal/hcl"
	"github.com/vk/trialrun/internal/runner"
)

// main is the entrypoint for the trial-run application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	progName := filepath.Base(os.Args[0])
	streams := app.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	// The real main function handles errors; exit codes are decided here.
	err := run(ctx, progName, os.Args[1:], streams)
	stop()
	os.Exit(exitCode(progName, err, os.Stderr))
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, progName string, args []string, streams app.Streams) error {
	appConfig, shouldExit, err := cli.Parse(progName, args, streams.Out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	trialApp, err := app.NewApp(ctx, streams, appConfig, hcl.NewLoader())
	if err != nil {
		return err
	}
	return trialApp.Run(ctx)
}

// exitCode reports err on errW where the user needs to see it and returns
// the process exit status for it.
func exitCode(progName string, err error, errW io.Writer) int {
	var (
		exitErr   *cli.ExitError
		statusErr *app.StatusError
		launchErr *runner.LaunchError
	)

	switch {
	case err == nil:
		return 0
	case errors.As(err, &statusErr):
		// The child already reported its failure.
		return statusErr.Code
	case errors.Is(err, app.ErrInterrupted):
		return 1
	case errors.As(err, &exitErr):
		fmt.Fprintln(errW, exitErr.Message)
		if exitErr.Usage != "" {
			fmt.Fprint(errW, exitErr.Usage)
		}
		return exitErr.Code
	case errors.As(err, &launchErr):
		fmt.Fprintf(errW, "%s: cannot run %v\n", progName, launchErr)
		return 1
	default:
		fmt.Fprintf(errW, "%s: %v\n", progName, err)
		return 1
	}
}
