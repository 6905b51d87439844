package commands

import (
	"context"

	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&ThemeCmd{})
}

// ThemeCmd implements the theme command.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string       { return "theme" }
func (c *ThemeCmd) Aliases() []string  { return nil }
func (c *ThemeCmd) Synopsis() string   { return "Show or set the color theme" }
func (c *ThemeCmd) Usage() string      { return "tasksync theme [dark|light|toggle]" }
func (c *ThemeCmd) NeedsService() bool { return false }

func (c *ThemeCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, env *Env, args []string) int {
	if env.Theme == nil {
		env.errorf("theme preferences unavailable")
		return exitcode.AuthError
	}
	if len(args) > 1 {
		env.errorf("usage: %s", c.Usage())
		return exitcode.UserError
	}

	if len(args) == 0 {
		env.infof("%s\n", themeName(env.Theme.DarkMode()))
		return exitcode.Success
	}

	var err error
	switch args[0] {
	case "dark":
		err = env.Theme.SetDarkMode(true)
	case "light":
		err = env.Theme.SetDarkMode(false)
	case "toggle":
		_, err = env.Theme.Toggle()
	default:
		env.errorf("unknown theme: %s", args[0])
		return exitcode.UserError
	}
	if err != nil {
		env.errorf("failed to save theme: %v", err)
		return exitcode.AuthError
	}

	env.infof("%s\n", themeName(env.Theme.DarkMode()))
	return exitcode.Success
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
