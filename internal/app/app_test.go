package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/trialrun/internal/app"
	"github.com/vk/trialrun/internal/hcl"
	"github.com/vk/trialrun/internal/runner"
	"github.com/vk/trialrun/internal/testutil"
)

const settingsHCL = `
defaults {
  verbose = true
}

program "p4" {
  option = "-n"
}
`

func newTestApp(t *testing.T, cfg app.Config, opts ...app.Option) (*app.App, error) {
	t.Helper()

	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	streams := app.Streams{In: strings.NewReader(""), Out: &testutil.SafeBuffer{}, Err: &testutil.SafeBuffer{}}
	opts = append([]app.Option{app.WithGetenv(func(string) string { return "" })}, opts...)
	return app.NewApp(context.Background(), streams, config, hcl.NewLoader(), opts...)
}

func writeSettings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trial-run.hcl")
	require.NoError(t, os.WriteFile(path, []byte(settingsHCL), 0o600))
	return path
}

func TestNewApp_SettingsSupplyDryRunFlag(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeSettings(t)

	// --- Act ---
	a, err := newTestApp(t, app.Config{
		Command:      []string{"p4", "revert"},
		Args:         []string{"//depot/..."},
		SettingsPath: path,
	})

	// --- Assert ---
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"p4", "revert", "-n", "//depot/..."}, a.Plan().DryRun()); diff != "" {
		t.Errorf("dry-run argv mismatch (-want +got):\n%s", diff)
	}
}

func TestNewApp_CommandLineOptionWins(t *testing.T) {
	t.Parallel()

	path := writeSettings(t)

	a, err := newTestApp(t, app.Config{
		Command:       []string{"p4", "revert"},
		DryRunFlag:    "--preview",
		DryRunFlagSet: true,
		SettingsPath:  path,
	})

	require.NoError(t, err)
	require.Equal(t, []string{"p4", "revert", "--preview"}, a.Plan().DryRun())
}

func TestNewApp_SettingsFromEnvironment(t *testing.T) {
	t.Parallel()

	path := writeSettings(t)
	getenv := func(key string) string {
		if key == app.SettingsEnvVar {
			return path
		}
		return ""
	}

	a, err := newTestApp(t, app.Config{Command: []string{"p4"}}, app.WithGetenv(getenv))

	require.NoError(t, err)
	require.Equal(t, "-n", a.Plan().DryRunFlag)
}

func TestNewApp_SettingsVerboseEchoes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeSettings(t)
	config, err := app.NewConfig(app.Config{Command: []string{"trial-run-missing-tool"}, SettingsPath: path})
	require.NoError(t, err)
	out := &testutil.SafeBuffer{}
	streams := app.Streams{In: strings.NewReader("n\n"), Out: out, Err: &testutil.SafeBuffer{}}

	// --- Act ---
	a, err := app.NewApp(context.Background(), streams, config, hcl.NewLoader())
	require.NoError(t, err)
	err = a.Run(context.Background())

	// --- Assert ---
	// The echo is written before the executable lookup fails.
	require.Equal(t, "+ trial-run-missing-tool --dry-run\n", out.String())
	var launchErr *runner.LaunchError
	require.ErrorAs(t, err, &launchErr)
}

func TestNewApp_MissingExplicitSettings(t *testing.T) {
	t.Parallel()

	_, err := newTestApp(t, app.Config{
		Command:      []string{"rsync"},
		SettingsPath: filepath.Join(t.TempDir(), "missing.hcl"),
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestNewApp_InvalidSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("program {"), 0o600))

	_, err := newTestApp(t, app.Config{Command: []string{"rsync"}, SettingsPath: path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load settings")
}

func TestNewApp_NoLoader(t *testing.T) {
	t.Parallel()

	config, err := app.NewConfig(app.Config{Command: []string{"rsync"}})
	require.NoError(t, err)

	a, err := app.NewApp(context.Background(), app.Streams{Err: &testutil.SafeBuffer{}}, config, nil)

	require.NoError(t, err)
	require.Equal(t, "--dry-run", a.Plan().DryRunFlag)
}

func TestNewApp_LogsSettingsSourceOfDryRunFlag(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     app.Config
		wantLog bool
	}{
		{
			name:    "settings override the default",
			cfg:     app.Config{Command: []string{"p4", "revert"}},
			wantLog: true,
		},
		{
			name:    "command line option wins",
			cfg:     app.Config{Command: []string{"p4", "revert"}, DryRunFlag: "--preview", DryRunFlagSet: true},
			wantLog: false,
		},
		{
			name:    "program without settings keeps the default",
			cfg:     app.Config{Command: []string{"make"}},
			wantLog: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			path := writeSettings(t)
			tc.cfg.SettingsPath = path
			tc.cfg.LogLevel = "info"
			config, err := app.NewConfig(tc.cfg)
			require.NoError(t, err)
			logs := &testutil.SafeBuffer{}
			streams := app.Streams{In: strings.NewReader(""), Out: &testutil.SafeBuffer{}, Err: logs}

			// --- Act ---
			_, err = app.NewApp(context.Background(), streams, config, hcl.NewLoader(),
				app.WithGetenv(func(string) string { return "" }))

			// --- Assert ---
			require.NoError(t, err)
			if !tc.wantLog {
				require.NotContains(t, logs.String(), "Dry-run option taken from settings.")
				return
			}
			require.Contains(t, logs.String(), "Dry-run option taken from settings.")
			require.Contains(t, logs.String(), "option=-n")
			require.Contains(t, logs.String(), "source="+path)
		})
	}
}
