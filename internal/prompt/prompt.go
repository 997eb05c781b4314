// Package prompt asks the user a yes/no question on an interactive stream.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vk/trialrun/internal/ctxlog"
)

// ErrInterrupted is returned when ctx is cancelled while waiting for input.
var ErrInterrupted = errors.New("prompt interrupted")

// Choice is the decoded answer to a prompt.
type Choice int

const (
	Unset Choice = iota
	Yes
	No
)

// String implements fmt.Stringer.
func (c Choice) String() string {
	switch c {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unset"
	}
}

// aliases maps the short answers to the words they stand for.
var aliases = map[string]string{
	"y": "yes",
	"n": "no",
}

var words = map[string]Choice{
	"yes": Yes,
	"no":  No,
}

// Match decodes a raw answer. Matching is case-insensitive and accepts any
// non-empty prefix of "yes" or "no". Empty input yields def; anything else
// yields Unset.
func Match(raw string, def Choice) Choice {
	answer := strings.ToLower(strings.TrimSpace(raw))
	if answer == "" {
		return def
	}
	if word, ok := aliases[answer]; ok {
		answer = word
	}
	var match Choice
	for word, choice := range words {
		if !strings.HasPrefix(word, answer) {
			continue
		}
		if match != Unset {
			return Unset
		}
		match = choice
	}
	return match
}

// Prompter reads answers from In and writes questions to Out. The reader is
// buffered once so input typed ahead of a re-prompt is not lost.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	Default Choice
}

// New returns a Prompter whose empty answer means No.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      bufio.NewReader(in),
		out:     out,
		Default: No,
	}
}

// Ask writes question and loops until the answer decodes to Yes or No. Only
// non-empty, unrecognised input re-prompts; an empty line or the end of the
// input stream both return the default.
func (p *Prompter) Ask(ctx context.Context, question string) (Choice, error) {
	logger := ctxlog.FromContext(ctx)
	for {
		fmt.Fprintf(p.out, "%s %s ", question, p.hint())

		line, eof, err := p.readLine(ctx)
		if err != nil {
			return Unset, err
		}
		if eof {
			// Keep the cursor tidy when the stream closes without a newline.
			fmt.Fprintln(p.out)
		}

		choice := Match(line, p.Default)
		logger.Debug("Prompt answered.", "input", line, "choice", choice, "eof", eof)
		switch {
		case choice != Unset:
			return choice, nil
		case eof:
			return p.Default, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}

// Confirm is Ask reduced to a boolean.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	choice, err := p.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	return choice == Yes, nil
}

func (p *Prompter) hint() string {
	if p.Default == Yes {
		return "[Y/n]"
	}
	return "[y/N]"
}

type readResult struct {
	line string
	err  error
}

// readLine reads one line without its terminator. The read happens on a
// helper goroutine so an interrupt can abandon it; the process exits shortly
// after, so the goroutine is not reclaimed.
func (p *Prompter) readLine(ctx context.Context) (string, bool, error) {
	done := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		done <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", false, ErrInterrupted
	case res := <-done:
		line := strings.TrimRight(res.line, "\r\n")
		if errors.Is(res.err, io.EOF) {
			return line, true, nil
		}
		if res.err != nil {
			return "", false, fmt.Errorf("reading answer: %w", res.err)
		}
		return line, false, nil
	}
}
