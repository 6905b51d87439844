// Package cli parses the command line and runs commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/notify"
	"tasksync/internal/orchestrator"
	"tasksync/internal/output"
	"tasksync/internal/service"
	"tasksync/internal/store"
	"tasksync/internal/theme"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	watcher  theme.Watcher
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetWatcher sets the source of the system dark-mode signal.
// By default the terminal background is polled.
func (d *Dispatcher) SetWatcher(w theme.Watcher) {
	d.watcher = w
}

// SetInput makes the shell read commands from r instead of the terminal.
func (d *Dispatcher) SetInput(r io.Reader) {
	d.in = r
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := newFlagSet(cmd)

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "override config directory")
	fs.BoolVar(&quiet, "quiet", false, "suppress informational output")
	fs.BoolVar(&debug, "debug", false, "print debug logs to stderr")

	cmd.RegisterFlags(fs)

	if code, done := parseFlags(fs, cmd, args, out, errOut); done {
		return code
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger := newLogger(errOut, cfg)
	logger.Debug("dispatch", "command", cmd.Name(), "config", cfg.Dir)

	watcher := d.watcher
	if watcher == nil {
		watcher = theme.NewTerminalWatcher(nil, theme.DefaultPollInterval)
	}
	prefs, err := theme.New(theme.NewFileStorage(cfg.PrefsPath()), watcher, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	defer prefs.Close()

	renderer := lipgloss.NewRenderer(out)
	styles := output.NewStyles(renderer, prefs.DarkMode())

	env := &commands.Env{
		Cfg:     cfg,
		Theme:   prefs,
		Printer: output.NewPrinter(out, styles),
		Logger:  logger,
		In:      d.in,
		Out:     out,
		ErrOut:  errOut,
	}

	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no task service configured")
			return exitcode.BackendError
		}
		svc, err := d.factory(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			if errors.Is(err, service.ErrUnauthorized) {
				return exitcode.AuthError
			}
			return exitcode.BackendError
		}

		st := store.New()
		if cfg.Debug {
			defer st.Subscribe(traceTransitions(logger))()
		}
		notifier := notify.NewWriterNotifier(out, errOut, cfg.Quiet, styles.Success, styles.Failure)
		env.Tasks = orchestrator.New(st, svc, notifier, logger)
		env.Exec = func(ctx context.Context, args []string) int {
			return d.execNested(ctx, env, renderer, args)
		}
		defer env.Tasks.Wait()
	}

	return cmd.Run(ctx, env, fs.Args())
}

// execNested runs a command line inside an open session. Common flags are
// not accepted: the session's config stays as it is.
func (d *Dispatcher) execNested(ctx context.Context, base *commands.Env, renderer *lipgloss.Renderer, args []string) int {
	cmd, ok := d.registry.Find(args[0])
	if !ok {
		fmt.Fprintf(base.ErrOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	if cmd.Name() == "shell" {
		fmt.Fprintln(base.ErrOut, "error: already in a shell")
		return exitcode.UserError
	}

	fs := newFlagSet(cmd)
	cmd.RegisterFlags(fs)
	if code, done := parseFlags(fs, cmd, args[1:], base.Out, base.ErrOut); done {
		return code
	}

	// Pick up theme changes made since the session started.
	env := *base
	env.Printer = output.NewPrinter(base.Out, output.NewStyles(renderer, base.Theme.DarkMode()))

	code := cmd.Run(ctx, &env, fs.Args())
	base.Tasks.Wait()
	return code
}

func newFlagSet(cmd commands.Command) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	fs.SortFlags = false
	return fs
}

// parseFlags parses args into fs. done is true when the command must not
// run, with code as the exit code.
func parseFlags(fs *pflag.FlagSet, cmd commands.Command, args []string, out, errOut io.Writer) (code int, done bool) {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return exitcode.Success, false
	case errors.Is(err, pflag.ErrHelp):
		fmt.Fprintf(out, "Usage:\n  %s\n", cmd.Usage())
		if usages := fs.FlagUsages(); usages != "" {
			fmt.Fprintf(out, "\nFlags:\n%s", usages)
		}
		return exitcode.Success, true
	default:
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError, true
	}
}

func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.WarnLevel
	}
	if cfg.Debug {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// traceTransitions logs every change of the task collection or filters.
func traceTransitions(logger *log.Logger) store.Listener {
	return func(prev, next store.State) {
		logger.Debug("state",
			"tasks", len(next.Tasks),
			"loading", next.Loading,
			"error", next.Error,
			"filters", next.Filters.Query(),
			"total", next.Stats.TotalTasks,
		)
	}
}
