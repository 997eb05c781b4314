package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw  string
		want Choice
	}{
		{raw: "y", want: Yes},
		{raw: "Y", want: Yes},
		{raw: "ye", want: Yes},
		{raw: "yes", want: Yes},
		{raw: "  YES  ", want: Yes},
		{raw: "n", want: No},
		{raw: "N", want: No},
		{raw: "no", want: No},
		{raw: "No", want: No},
		{raw: "", want: No},
		{raw: "   ", want: No},
		{raw: "maybe", want: Unset},
		{raw: "yess", want: Unset},
		{raw: "nope", want: Unset},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Match(tc.raw, No))
		})
	}
}

func TestMatch_DefaultIsConfigurable(t *testing.T) {
	t.Parallel()

	require.Equal(t, Yes, Match("", Yes))
	require.Equal(t, No, Match("n", Yes))
}

func TestPrompter_Ask(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		input       string
		want        Choice
		wantPrompts int
		wantRetries int
	}{
		{name: "yes", input: "y\n", want: Yes, wantPrompts: 1},
		{name: "no", input: "no\n", want: No, wantPrompts: 1},
		{name: "empty line is the default", input: "\n", want: No, wantPrompts: 1},
		{name: "closed stream is the default", input: "", want: No, wantPrompts: 1},
		{name: "re-prompts on unknown input", input: "maybe\nYES\n", want: Yes, wantPrompts: 2, wantRetries: 1},
		{name: "re-prompts until empty", input: "what\nhuh\n\n", want: No, wantPrompts: 3, wantRetries: 2},
		{name: "answer without trailing newline", input: "yes", want: Yes, wantPrompts: 1},
		{name: "unknown answer then end of input", input: "maybe", want: No, wantPrompts: 1},
		{name: "windows line endings", input: "y\r\n", want: Yes, wantPrompts: 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}
			p := New(strings.NewReader(tc.input), out)

			// --- Act ---
			choice, err := p.Ask(context.Background(), "Run for real?")

			// --- Assert ---
			require.NoError(t, err)
			require.Equal(t, tc.want, choice)
			require.Equal(t, tc.wantPrompts, strings.Count(out.String(), "Run for real? [y/N]"))
			require.Equal(t, tc.wantRetries, strings.Count(out.String(), "Please answer yes or no."))
		})
	}
}

func TestPrompter_Confirm(t *testing.T) {
	t.Parallel()

	ok, err := New(strings.NewReader("Y\n"), io.Discard).Confirm(context.Background(), "Proceed?")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = New(strings.NewReader("\n"), io.Discard).Confirm(context.Background(), "Proceed?")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPrompter_HintFollowsDefault(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	p := New(strings.NewReader("\n"), out)
	p.Default = Yes

	choice, err := p.Ask(context.Background(), "Proceed?")

	require.NoError(t, err)
	require.Equal(t, Yes, choice)
	require.Contains(t, out.String(), "Proceed? [Y/n]")
}

func TestPrompter_Interrupted(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A pipe that never receives data blocks the read until ctx is cancelled.
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	p := New(pr, io.Discard)

	// --- Act ---
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := p.Ask(ctx, "Proceed?")

	// --- Assert ---
	require.True(t, errors.Is(err, ErrInterrupted))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestPrompter_ReadError(t *testing.T) {
	t.Parallel()

	_, err := New(failingReader{}, io.Discard).Ask(context.Background(), "Proceed?")

	require.Error(t, err)
	require.Contains(t, err.Error(), "tty gone")
}

func TestChoice_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "yes", Yes.String())
	require.Equal(t, "no", No.String())
	require.Equal(t, "unset", Unset.String())
}
