package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete tasks" }
func (c *RmCmd) Usage() string      { return "tasksync rm <id...>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string) int {
	ids, err := ParseTaskIDs(args)
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}

	for _, id := range ids {
		if err := env.Tasks.DeleteTask(ctx, id); err != nil {
			return exitCodeFor(err)
		}
	}
	return exitcode.Success
}
