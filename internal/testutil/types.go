package testutil

import (
	"context"
	"sync"
)

// RunResult is one scripted outcome for FakeRunner.
type RunResult struct {
	Code int
	Err  error
}

// FakeRunner records every command line it is asked to run and replays
// scripted results in order. Once the script runs out it reports success.
type FakeRunner struct {
	mu      sync.Mutex
	Results []RunResult
	Calls   [][]string
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(_ context.Context, argv []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, append([]string(nil), argv...))
	if len(f.Results) == 0 {
		return 0, nil
	}
	res := f.Results[0]
	f.Results = f.Results[1:]
	return res.Code, res.Err
}

// FakeConfirmer answers every prompt with Answer and counts how often it
// was asked.
type FakeConfirmer struct {
	Answer bool
	Err    error
	Asked  int
}

// Confirm implements app.Confirmer.
func (f *FakeConfirmer) Confirm(_ context.Context, _ string) (bool, error) {
	f.Asked++
	return f.Answer, f.Err
}
