package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string      { return "tasksync done <id...>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string) int {
	ids, err := ParseTaskIDs(args)
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	return setStatus(ctx, env, ids, service.StatusCompleted)
}

// setStatus changes the status of each task in turn, stopping at the
// first failure.
func setStatus(ctx context.Context, env *Env, ids []int64, status service.Status) int {
	for _, id := range ids {
		task, err := env.Tasks.UpdateTaskStatus(ctx, id, status)
		if err != nil {
			return exitCodeFor(err)
		}
		if !env.Cfg.Quiet {
			env.Printer.Task(task)
		}
	}
	return exitcode.Success
}
