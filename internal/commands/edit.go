package commands

import (
	"context"
	"errors"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given fields are sent.
type EditCmd struct {
	fs *pflag.FlagSet

	title       string
	description string
	priority    string
	status      string
	due         string
	noDue       bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tasksync edit [--title <t>] [-d <text>] [-p <priority>] [-s <status>] [--due <YYYY-MM-DD> | --no-due] <id>"
}
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.fs = fs
	fs.StringVarP(&c.title, "title", "t", "", "new title")
	fs.StringVarP(&c.description, "description", "d", "", "new description")
	fs.StringVarP(&c.priority, "priority", "p", "", "low, medium or high")
	fs.StringVarP(&c.status, "status", "s", "", "pending, in_progress or completed")
	fs.StringVar(&c.due, "due", "", "due date (YYYY-MM-DD)")
	fs.BoolVar(&c.noDue, "no-due", false, "clear the due date")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 1 {
		env.errorf("%v", ErrTaskIDRequired)
		return exitcode.UserError
	}
	id, err := ParseTaskID(args[0])
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	if c.noDue && c.changed("due") {
		env.errorf("cannot use both --due and --no-due")
		return exitcode.UserError
	}

	patch, err := c.patch()
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	if patch.Empty() {
		env.errorf("nothing to change for task %d", id)
		return exitcode.UserError
	}

	if _, err := env.Tasks.Get(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			env.errorf("task not found: %d", id)
		} else {
			env.errorf("%v", err)
		}
		return exitCodeFor(err)
	}

	updated, err := env.Tasks.PatchTask(ctx, id, patch)
	if err != nil {
		return exitCodeFor(err)
	}

	if !env.Cfg.Quiet {
		env.Printer.Task(updated)
	}
	return exitcode.Success
}

// patch collects the flags that were given.
func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch
	if c.changed("title") {
		p.Title = &c.title
	}
	if c.changed("description") {
		p.Description = &c.description
	}
	if c.changed("priority") {
		priority, err := ParsePriority(c.priority)
		if err != nil {
			return p, err
		}
		p.Priority = &priority
	}
	if c.changed("status") {
		status, err := ParseStatus(c.status)
		if err != nil {
			return p, err
		}
		p.Status = &status
	}
	if c.changed("due") {
		due, err := ParseDueDate(c.due)
		if err != nil {
			return p, err
		}
		p.DueDate = due
	}
	p.ClearDueDate = c.noDue
	return p, p.Validate()
}

func (c *EditCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}
