package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
	"github.com/vk/trialrun/internal/app"
	"github.com/vk/trialrun/internal/config"
)

// Version is reported by --version. Release builds override it with
// -ldflags "-X github.com/vk/trialrun/internal/cli.Version=...".
var Version = "0.1.0"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	// Usage is printed after Message when the error came from bad input.
	Usage string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usageText = `
%[1]s - preview a command with its dry-run option, then run it for real.

Usage:
  %[1]s [OPTIONS] [--] COMMAND [ARGUMENT ...]
  %[1]s [OPTIONS] --command=COMMAND [--] [ARGUMENT ...]
  %[1]s --help

COMMAND runs first with the dry-run option placed after it. If that
succeeds you are asked whether to continue, and COMMAND runs again with
the same arguments but without the dry-run option.

Options are only recognised before COMMAND. With --command, put -- in
front of arguments that start with a dash.

Examples:
  %[1]s rsync -aC --delete src/ dst/
  %[1]s --command="p4 revert" --option=-n //depot/...
  %[1]s --command="git clean" --option=-n -- -fdx

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Help and version output go to outW.
func Parse(progName string, args []string, outW io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet(progName, pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)
	flagSet.SortFlags = false

	helpFlag := flagSet.BoolP("help", "h", false, "Show this help and exit.")
	commandFlag := flagSet.StringP("command", "c", "", "Base command, split like a shell would. COMMAND is then not required.")
	optionFlag := flagSet.String("option", config.DefaultDryRunFlag, "Dry-run option passed to the first invocation.")
	verboseFlag := flagSet.BoolP("verbose", "v", false, "Print each command line before running it.")
	versionFlag := flagSet.Bool("version", false, "Print the version and exit.")
	configFlag := flagSet.String("config", "", "Settings file or directory (default $"+app.SettingsEnvVar+" or the user config dir).")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	usage := func() string {
		var b bytes.Buffer
		fmt.Fprintf(&b, usageText, progName)
		b.WriteString(flagSet.FlagUsages())
		return b.String()
	}
	usageErr := func(format string, a ...any) error {
		return &ExitError{Code: 1, Message: progName + ": " + fmt.Sprintf(format, a...), Usage: usage()}
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, false, usageErr("%v", err)
	}
	slog.Debug("Arguments parsed successfully.")

	if *helpFlag {
		fmt.Fprint(outW, usage())
		return nil, true, nil
	}
	if *versionFlag {
		fmt.Fprintf(outW, "%s %s\n", progName, Version)
		return nil, true, nil
	}

	positional := flagSet.Args()
	var command []string
	if flagSet.Changed("command") {
		tokens, err := shellquote.Split(*commandFlag)
		if err != nil {
			return nil, false, usageErr("invalid --command %q: %v", *commandFlag, err)
		}
		if len(tokens) == 0 {
			return nil, false, usageErr("--command must not be empty")
		}
		command = tokens
	} else {
		if len(positional) == 0 {
			return nil, false, usageErr("missing COMMAND")
		}
		command = positional[:1]
		positional = positional[1:]
	}
	slog.Debug("Base command determined.", "command", command, "args", positional)

	cfg, err := app.NewConfig(app.Config{
		ProgName:      progName,
		Command:       command,
		Args:          positional,
		DryRunFlag:    *optionFlag,
		DryRunFlagSet: flagSet.Changed("option"),
		Verbose:       *verboseFlag,
		SettingsPath:  *configFlag,
		LogLevel:      strings.ToLower(*logLevelFlag),
		LogFormat:     strings.ToLower(*logFormatFlag),
	})
	if err != nil {
		return nil, false, usageErr("%v", err)
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
