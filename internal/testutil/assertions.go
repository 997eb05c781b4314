package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// AssertCalls checks the exact sequence of command lines a FakeRunner saw.
func AssertCalls(t *testing.T, result *HarnessResult, want ...[]string) {
	t.Helper()

	if diff := cmp.Diff(want, result.Runner.Calls); diff != "" {
		t.Errorf("runner calls mismatch (-want +got):\n%s", diff)
	}
}
