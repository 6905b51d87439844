package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string      { return "tasksync logout [common flags]" }
func (c *LogoutCmd) NeedsService() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string) int {
	if !env.Cfg.HasToken() {
		env.infof("not logged in\n")
		return exitcode.Success
	}

	// The OAuth client and preferences stay; only the token goes.
	if err := env.Cfg.RemoveToken(); err != nil {
		env.errorf("failed to remove token: %v", err)
		return exitcode.AuthError
	}

	env.infof("ok\n")
	return exitcode.Success
}
