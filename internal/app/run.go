package app

import (
	"context"
	"errors"

	"github.com/vk/trialrun/internal/ctxlog"
	"github.com/vk/trialrun/internal/prompt"
)

// confirmQuestion is shown after a successful dry run.
const confirmQuestion = "Run for real?"

// Run drives the lifecycle init → dry-run → confirm → real-run. It returns
// nil when the real run succeeded or the user declined, a *StatusError
// when either invocation exited non-zero, a *runner.LaunchError when the
// program could not be started and ErrInterrupted on a signal.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.runPhase(ctx, PhaseDryRun, a.plan.DryRun()); err != nil {
		return err
	}

	a.logger.Debug("Asking for confirmation.", "phase", PhaseConfirm)
	ok, err := a.confirmer.Confirm(ctx, confirmQuestion)
	if errors.Is(err, prompt.ErrInterrupted) || ctx.Err() != nil {
		return ErrInterrupted
	}
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Info("Real run declined.")
		return nil
	}

	if err := a.runPhase(ctx, PhaseRealRun, a.plan.Real()); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// runPhase runs one invocation and turns its outcome into an error.
func (a *App) runPhase(ctx context.Context, phase Phase, argv []string) error {
	a.logger.Debug("Phase started.", "phase", phase, "argv", argv)

	code, err := a.runner.Run(ctx, argv)
	if ctx.Err() != nil {
		a.logger.Debug("Interrupted during command.", "phase", phase, "exit_code", code, "error", err)
		return ErrInterrupted
	}
	if err != nil {
		return err
	}
	if code != 0 {
		a.logger.Info("Command failed.", "phase", phase, "exit_code", code)
		return &StatusError{Phase: phase, Code: code}
	}

	a.logger.Debug("Phase finished.", "phase", phase)
	return nil
}
