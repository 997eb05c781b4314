// Package app contains the trial-run lifecycle: it resolves settings into
// an invocation plan, runs the dry-run, asks for confirmation and runs the
// real command. It is decoupled from argument parsing and from the process
// entrypoint so both can be exercised in tests.
package app
