// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/launchcompose/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("launchcompose", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
launchcompose - A declarative launch description composer.

Usage:
  launchcompose [options] [LAUNCH_FILE]

Arguments:
  LAUNCH_FILE
    Path to the root launch description (.launch.xml).

Options:
`)
		flagSet.PrintDefaults()
	}

	launchFlag := flagSet.String("launch", "", "Path to the root launch description.")
	configFlag := flagSet.String("config", "", "Path to a composer configuration file (.hcl).")
	var packagesFlag stringList
	flagSet.Var(&packagesFlag, "packages", "Package search path for $(find-pkg-share). Repeatable.")
	var argsFlag stringList
	flagSet.Var(&argsFlag, "a", "Argument override as name=value. Repeatable.")
	formatFlag := flagSet.String("format", "text", "Output format for the resolved node set. Options: 'text' or 'json'.")
	runFlag := flagSet.Bool("run", false, "Start the resolved nodes instead of printing them.")
	lenientFlag := flagSet.Bool("lenient-bindings", false, "Warn instead of failing when a binding targets an undeclared argument.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *launchFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Launch path determined.", "path", path)

	if path == "" {
		slog.Debug("No launch path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	overrides := make(map[string]string, len(argsFlag))
	for _, pair := range argsFlag {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid argument override %q: expected name=value", pair)}
		}
		overrides[name] = value
	}

	format := strings.ToLower(*formatFlag)
	if format != "text" && format != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'text' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		LaunchPath:      path,
		ConfigPath:      *configFlag,
		PackagePaths:    packagesFlag,
		Arguments:       overrides,
		Format:          format,
		Run:             *runFlag,
		LenientBindings: *lenientFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
