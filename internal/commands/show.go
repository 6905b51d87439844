package commands

import (
	"context"
	"errors"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return []string{"get"} }
func (c *ShowCmd) Synopsis() string   { return "Show a task" }
func (c *ShowCmd) Usage() string      { return "tasksync show <id>" }
func (c *ShowCmd) NeedsService() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 1 {
		env.errorf("%v", ErrTaskIDRequired)
		return exitcode.UserError
	}
	id, err := ParseTaskID(args[0])
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}

	task, err := env.Tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			env.errorf("task not found: %d", id)
		} else {
			env.errorf("%v", err)
		}
		return exitCodeFor(err)
	}

	env.Printer.TaskDetail(task)
	return exitcode.Success
}
