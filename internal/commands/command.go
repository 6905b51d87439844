// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/orchestrator"
	"tasksync/internal/output"
	"tasksync/internal/service"
	"tasksync/internal/theme"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsService returns true if the command talks to the task service.
	// Commands like help, version, login, logout, theme return false.
	NeedsService() bool

	// RegisterFlags registers command-specific flags.
	// Called before every run, so flag fields are reset to their defaults.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string) int
}

// Env is everything a command runs against.
type Env struct {
	// Cfg is always provided (config dir, paths, settings).
	Cfg *config.Config

	// Tasks is the session orchestrator. Nil if NeedsService() returns false.
	Tasks *orchestrator.Orchestrator

	// Theme is the dark-mode preference. It may be nil.
	Theme *theme.Store

	Printer *output.Printer
	Logger  *log.Logger

	In     io.Reader // nil means the terminal
	Out    io.Writer
	ErrOut io.Writer

	// Exec runs another command line in the same session. Set while a
	// service session is open.
	Exec func(ctx context.Context, args []string) int
}

// infof prints an informational line unless quiet.
func (e *Env) infof(format string, args ...any) {
	if e.Cfg.Quiet {
		return
	}
	fmt.Fprintf(e.Out, format, args...)
}

// errorf prints an error line.
func (e *Env) errorf(format string, args ...any) {
	fmt.Fprintf(e.ErrOut, "error: "+format+"\n", args...)
}

// exitCodeFor maps an operation error to an exit code.
func exitCodeFor(err error) int {
	var verr *service.ValidationError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &verr):
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized):
		return exitcode.AuthError
	default:
		return exitcode.BackendError
	}
}
