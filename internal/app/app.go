package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/launchcompose/internal/config"
	"github.com/vk/launchcompose/internal/ctxlog"
)

// settings are the effective values after merging CLI flags over the
// configuration file. Flags win; package paths concatenate with flag paths
// first so they shadow file-configured ones.
type settings struct {
	launchPath   string
	packagePaths []string
	arguments    map[string]string
	strict       bool
	format       string
	run          bool
	logFormat    string
	logLevel     string
}

// App encapsulates the composer's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	settings settings
	environ  map[string]string
}

// NewApp is the constructor for the application. It loads the optional
// configuration file through the provided loader and returns a fully
// initialized App with its own isolated logger. A failure to load
// configuration is a fatal startup error and panics; main recovers it.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	fileModel := &config.Model{}
	if cfg.ConfigPath != "" {
		m, err := loader.Load(context.Background(), cfg.ConfigPath)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		fileModel = m
	}

	s := merge(cfg, fileModel)
	logger := newLogger(s.logLevel, s.logFormat, outW)
	logger.Debug("Logger configured successfully.")
	logger.Debug("Configuration merged.", "package_paths", len(s.packagePaths), "arguments", len(s.arguments), "strict_bindings", s.strict)

	return &App{
		outW:     outW,
		logger:   logger,
		settings: s,
		environ:  environSnapshot(os.Environ()),
	}
}

// SetEnviron replaces the environment snapshot $(env) resolves against.
// This is primarily for testing.
func (a *App) SetEnviron(env map[string]string) {
	if env == nil {
		env = map[string]string{}
	}
	a.environ = env
}

func merge(cfg *Config, fileModel *config.Model) settings {
	s := settings{
		launchPath: cfg.LaunchPath,
		format:     cfg.Format,
		run:        cfg.Run,
		strict:     true,
		logFormat:  cfg.LogFormat,
		logLevel:   cfg.LogLevel,
	}

	s.packagePaths = append(s.packagePaths, cfg.PackagePaths...)
	s.packagePaths = append(s.packagePaths, fileModel.PackagePaths...)

	s.arguments = make(map[string]string, len(cfg.Arguments)+len(fileModel.Arguments))
	for k, v := range fileModel.Arguments {
		s.arguments[k] = v
	}
	for k, v := range cfg.Arguments {
		s.arguments[k] = v
	}

	if fileModel.StrictBindings != nil {
		s.strict = *fileModel.StrictBindings
	}
	if cfg.LenientBindings {
		s.strict = false
	}

	if s.format == "" {
		s.format = "text"
	}
	if s.logFormat == "" {
		s.logFormat = fileModel.LogFormat
	}
	if s.logLevel == "" {
		s.logLevel = fileModel.LogLevel
	}
	return s
}

// environSnapshot converts os.Environ-style "key=value" pairs into a map.
// Taken once at startup so every resolution within a run sees the same
// environment.
func environSnapshot(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if k, v, ok := strings.Cut(pair, "="); ok {
			env[k] = v
		}
	}
	return env
}

// context returns a context carrying the application logger.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
