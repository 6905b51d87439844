package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasksync` (no args) and `tasksync list [filters]`.
//
// Filters stick for the rest of a shell session; flags only override the
// fields they name.
type ListCmd struct {
	fs *pflag.FlagSet

	status   string
	priority string
	search   string
	clear    bool
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "tasksync list [--status <s>] [--priority <p>] [--search <q>] [--clear]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.fs = fs
	fs.StringVarP(&c.status, "status", "s", "", "only tasks with this status (empty for any)")
	fs.StringVarP(&c.priority, "priority", "p", "", "only tasks with this priority (empty for any)")
	fs.StringVarP(&c.search, "search", "q", "", "only tasks whose title or description contains this text")
	fs.BoolVar(&c.clear, "clear", false, "drop all filters first")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		env.errorf("unexpected argument: %s", args[0])
		return exitcode.UserError
	}

	patch, err := c.patch()
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}

	if !env.Tasks.SetFilters(ctx, patch) {
		env.Tasks.Load(ctx)
	}
	env.Tasks.Wait()

	st := env.Tasks.State()
	env.Logger.Debug("list", "filters", describeFilters(st.Filters), "tasks", len(st.Tasks))
	if st.Error != "" {
		// The failure was already reported by the notifier.
		return exitcode.BackendError
	}

	if len(st.Tasks) == 0 {
		env.infof("no tasks found\n")
		return exitcode.Success
	}
	env.Printer.Tasks(st.Tasks)
	return exitcode.Success
}

// patch builds a filter patch from the flags that were given.
func (c *ListCmd) patch() (store.FilterPatch, error) {
	var p store.FilterPatch
	if c.clear {
		empty := ""
		p.Status = (*service.Status)(&empty)
		p.Priority = (*service.Priority)(&empty)
		p.Search = &empty
	}
	if c.changed("status") {
		st := service.Status("")
		if c.status != "" {
			parsed, err := ParseStatus(c.status)
			if err != nil {
				return p, err
			}
			st = parsed
		}
		p.Status = &st
	}
	if c.changed("priority") {
		pr := service.Priority("")
		if c.priority != "" {
			parsed, err := ParsePriority(c.priority)
			if err != nil {
				return p, err
			}
			pr = parsed
		}
		p.Priority = &pr
	}
	if c.changed("search") {
		q := c.search
		p.Search = &q
	}
	return p, nil
}

func (c *ListCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}

// describeFilters renders the active filters, e.g. "status=pending".
func describeFilters(f service.FilterSet) string {
	s := ""
	add := func(k, v string) {
		if v == "" {
			return
		}
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%s=%s", k, v)
	}
	add("status", string(f.Status))
	add("priority", string(f.Priority))
	add("search", f.Search)
	return s
}
