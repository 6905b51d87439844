package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string       { return "stats" }
func (c *StatsCmd) Aliases() []string  { return nil }
func (c *StatsCmd) Synopsis() string   { return "Show task statistics" }
func (c *StatsCmd) Usage() string      { return "tasksync stats" }
func (c *StatsCmd) NeedsService() bool { return true }

func (c *StatsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, env *Env, args []string) int {
	stats, err := env.Tasks.FetchStats(ctx)
	if err != nil {
		env.errorf("%v", err)
		return exitCodeFor(err)
	}
	env.Printer.Stats(stats)
	return exitcode.Success
}
