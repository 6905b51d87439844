package commands

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	priority    string
	status      string
	due         string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasksync add [-d <text>] [-p <priority>] [-s <status>] [--due <YYYY-MM-DD>] <title...>"
}
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "task description")
	fs.StringVarP(&c.priority, "priority", "p", string(service.PriorityMedium), "low, medium or high")
	fs.StringVarP(&c.status, "status", "s", string(service.StatusPending), "pending, in_progress or completed")
	fs.StringVar(&c.due, "due", "", "due date (YYYY-MM-DD)")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	in := service.NewTaskInput(strings.Join(args, " "))
	in.Description = c.description

	var err error
	if in.Priority, err = ParsePriority(c.priority); err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	if in.Status, err = ParseStatus(c.status); err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	if c.due != "" {
		if in.DueDate, err = ParseDueDate(c.due); err != nil {
			env.errorf("%v", err)
			return exitcode.UserError
		}
	}
	if err := in.Validate(); err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}

	task, err := env.Tasks.CreateTask(ctx, in)
	if err != nil {
		return exitCodeFor(err)
	}

	if !env.Cfg.Quiet {
		env.Printer.Task(task)
	}
	return exitcode.Success
}
