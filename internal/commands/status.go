package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return []string{"mv"} }
func (c *StatusCmd) Synopsis() string   { return "Set a task's status" }
func (c *StatusCmd) Usage() string      { return "tasksync status <id> <pending|in_progress|completed>" }
func (c *StatusCmd) NeedsService() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 2 {
		env.errorf("usage: %s", c.Usage())
		return exitcode.UserError
	}
	id, err := ParseTaskID(args[0])
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	status, err := ParseStatus(args[1])
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	return setStatus(ctx, env, []int64{id}, status)
}
