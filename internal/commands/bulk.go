package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&BulkCmd{})
}

// BulkCmd implements the bulk command: one remote call sets the status of
// many tasks, then the list is reloaded and printed.
type BulkCmd struct{}

func (c *BulkCmd) Name() string       { return "bulk" }
func (c *BulkCmd) Aliases() []string  { return nil }
func (c *BulkCmd) Synopsis() string   { return "Set the status of many tasks" }
func (c *BulkCmd) Usage() string      { return "tasksync bulk <status> <id...>" }
func (c *BulkCmd) NeedsService() bool { return true }

func (c *BulkCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *BulkCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) < 2 {
		env.errorf("usage: %s", c.Usage())
		return exitcode.UserError
	}
	status, err := ParseStatus(args[0])
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}
	ids, err := ParseTaskIDs(args[1:])
	if err != nil {
		env.errorf("%v", err)
		return exitcode.UserError
	}

	res, err := env.Tasks.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		return exitCodeFor(err)
	}
	env.Logger.Debug("bulk update", "updated", res.UpdatedCount, "requested", res.RequestedCount)

	env.Tasks.Wait()
	if st := env.Tasks.State(); st.Error == "" && !env.Cfg.Quiet {
		env.Printer.Tasks(st.Tasks)
	}
	return exitcode.Success
}
