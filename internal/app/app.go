package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/trialrun/internal/config"
	"github.com/vk/trialrun/internal/ctxlog"
	"github.com/vk/trialrun/internal/invocation"
	"github.com/vk/trialrun/internal/prompt"
	"github.com/vk/trialrun/internal/runner"
)

// SettingsEnvVar names the environment variable that points at a settings
// file or directory when --config is not given.
const SettingsEnvVar = "TRIAL_RUN_CONFIG"

// Streams are the standard streams the tool and its children share.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Confirmer asks the user whether to go ahead with the real run.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Option customises an App at construction time.
type Option func(*App)

// WithRunner replaces the os/exec runner.
func WithRunner(r runner.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithConfirmer replaces the interactive prompt.
func WithConfirmer(c Confirmer) Option {
	return func(a *App) { a.confirmer = c }
}

// WithGetenv replaces os.Getenv for the settings lookup.
func WithGetenv(getenv func(string) string) Option {
	return func(a *App) { a.getenv = getenv }
}

// App encapsulates a single trial run: its plan, its collaborators and its
// logger.
type App struct {
	streams   Streams
	logger    *slog.Logger
	config    *Config
	plan      invocation.Plan
	verbose   bool
	runner    runner.Runner
	confirmer Confirmer
	getenv    func(string) string
}

// NewApp resolves settings for cfg and returns an App ready to Run. A nil
// loader skips settings files entirely.
func NewApp(ctx context.Context, streams Streams, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	a := &App{
		streams: streams,
		config:  cfg,
		getenv:  os.Getenv,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = newLogger(cfg.ProgName, cfg.LogLevel, cfg.LogFormat, streams.Err)
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Logger configured successfully.", "phase", PhaseInit)

	settings, source, err := a.loadSettings(ctx, loader)
	if err != nil {
		return nil, err
	}

	option, verbose := settings.Resolve(cfg.Command[0])
	switch {
	case cfg.DryRunFlagSet:
		option = cfg.DryRunFlag
	case option != config.DefaultDryRunFlag:
		a.logger.Info("Dry-run option taken from settings.", "program", cfg.Command[0], "option", option, "source", source)
	}
	a.verbose = verbose || cfg.Verbose
	a.plan = invocation.New(cfg.Command, option, cfg.Args)
	a.logger.Debug("Invocation plan resolved.", "program", a.plan.Program(), "dry_run_flag", option, "verbose", a.verbose)

	if a.runner == nil {
		a.runner = &runner.Exec{
			Stdin:   childStdin(streams.In),
			Stdout:  streams.Out,
			Stderr:  streams.Err,
			Verbose: a.verbose,
		}
	}
	if a.confirmer == nil {
		a.confirmer = prompt.New(streams.In, streams.Err)
	}

	return a, nil
}

// childStdin hands a real file, normally the terminal, to the children.
// Any other reader is kept for the prompt: os/exec would otherwise copy it
// into the first child and drain the answers.
func childStdin(in io.Reader) io.Reader {
	if f, ok := in.(*os.File); ok {
		return f
	}
	return nil
}

// Plan returns the resolved invocation plan. This is primarily for testing.
func (a *App) Plan() invocation.Plan {
	return a.plan
}

// loadSettings reads the settings files and returns the location they came
// from. An explicitly named location must exist; the default one is optional.
func (a *App) loadSettings(ctx context.Context, loader config.Loader) (*config.Settings, string, error) {
	if loader == nil {
		return config.NewSettings(), "", nil
	}

	path, explicit := a.settingsPath()
	if path == "" {
		a.logger.Debug("No settings location available.")
		return config.NewSettings(), "", nil
	}
	if explicit {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", fmt.Errorf("settings path %s does not exist", path)
			}
			return nil, "", fmt.Errorf("error accessing settings path %s: %w", path, err)
		}
	}

	a.logger.Debug("Loading settings.", "path", path, "explicit", explicit)
	settings, err := loader.Load(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, path, nil
}

func (a *App) settingsPath() (string, bool) {
	if a.config.SettingsPath != "" {
		return a.config.SettingsPath, true
	}
	if p := a.getenv(SettingsEnvVar); p != "" {
		return p, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "trial-run"), false
}
