package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "tasksync help [command]" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(env.Out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		env.errorf("unknown command: %s", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(env.Out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if fs.HasFlags() {
		fmt.Fprintf(env.Out, "\nFlags:\n%s", fs.FlagUsages())
	}
	return exitcode.Success
}

const helpText = `Usage:
  tasksync                                           List tasks
  tasksync list [common flags] [filters]             List tasks (alias: ls)
  tasksync show [common flags] <id>                  Show a task
  tasksync add [common flags] [fields] <title...>    Create a task (alias: create)
  tasksync edit [common flags] [fields] <id>         Change a task
  tasksync status [common flags] <id> <status>       Set a task's status
  tasksync done [common flags] <id...>               Mark tasks completed
  tasksync rm [common flags] <id...>                 Delete tasks (alias: delete)
  tasksync bulk [common flags] <status> <id...>      Set the status of many tasks
  tasksync stats [common flags]                      Show task statistics
  tasksync theme [dark|light|toggle]                 Show or set the color theme
  tasksync shell [common flags]                      Run commands interactively
  tasksync login [common flags]
  tasksync logout [common flags]
  tasksync help [command]
  tasksync version

Filters:
  -s, --status <s>     pending, in_progress or completed
  -p, --priority <p>   low, medium or high
  -q, --search <text>  match title or description
      --clear          drop all filters first

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
