package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trialrun/internal/app"
	"github.com/vk/trialrun/internal/cli"
	"github.com/vk/trialrun/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcome of a scripted trial run.
type HarnessResult struct {
	Err       error
	Runner    *FakeRunner
	Confirmer *FakeConfirmer
	Stdout    string
	LogOutput string
}

// RunTrial builds an App from cfg with fake collaborators and runs it to
// completion. Settings files are not consulted.
func RunTrial(t *testing.T, cfg app.Config, r *FakeRunner, c *FakeConfirmer) *HarnessResult {
	t.Helper()

	cfg.LogLevel = "debug"
	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	stdout := &SafeBuffer{}
	logs := &SafeBuffer{}
	streams := app.Streams{In: strings.NewReader(""), Out: stdout, Err: logs}

	ctx := context.Background()
	a, err := app.NewApp(ctx, streams, config, nil, app.WithRunner(r), app.WithConfirmer(c))
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("TRIAL_RUN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return &HarnessResult{
		Err:       a.Run(ctx),
		Runner:    r,
		Confirmer: c,
		Stdout:    stdout.String(),
		LogOutput: logs.String(),
	}
}

// RunIntegrationTest writes files (relative path → content) into a fresh
// settings directory, parses args as the command line with --config
// pointing at that directory, and runs the result with the HCL loader and
// the given fakes.
func RunIntegrationTest(t *testing.T, files map[string]string, args []string, r *FakeRunner, c *FakeConfirmer) *HarnessResult {
	t.Helper()

	settingsDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(settingsDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o600))
	}

	args = append([]string{"--config", settingsDir, "--log-level", "debug"}, args...)
	config, shouldExit, err := cli.Parse("trial-run", args, io.Discard)
	require.NoError(t, err)
	require.False(t, shouldExit)

	stdout := &SafeBuffer{}
	logs := &SafeBuffer{}
	streams := app.Streams{In: strings.NewReader(""), Out: stdout, Err: logs}

	ctx := context.Background()
	a, err := app.NewApp(ctx, streams, config, hcl.NewLoader(), app.WithRunner(r), app.WithConfirmer(c))
	if err != nil {
		return &HarnessResult{Err: err, Runner: r, Confirmer: c, LogOutput: logs.String()}
	}

	return &HarnessResult{
		Err:       a.Run(ctx),
		Runner:    r,
		Confirmer: c,
		Stdout:    stdout.String(),
		LogOutput: logs.String(),
	}
}
