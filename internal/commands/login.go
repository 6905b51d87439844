package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"tasksync/internal/auth"
	"tasksync/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	port int
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authenticate with the task service" }
func (c *LoginCmd) Usage() string      { return "tasksync login [common flags] [--port <n>]" }
func (c *LoginCmd) NeedsService() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.port, "port", auth.DefaultStartPort, "first local port tried for the OAuth callback (0 for any)")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	cfg := env.Cfg

	oauthConfig, err := auth.LoadOAuthConfig(cfg)
	if errors.Is(err, auth.ErrNoClient) {
		printClientHelp(env)
		return exitcode.AuthError
	}
	if err != nil {
		env.errorf("%v", err)
		return exitcode.AuthError
	}

	// Check if already logged in (token exists and is valid)
	if cfg.HasToken() && auth.TokenValid(ctx, cfg) {
		env.infof("already logged in\n")
		return exitcode.Success
	}

	a := auth.NewAuthorizer(oauthConfig)
	a.StartPort = c.port
	token, err := a.Authorize(ctx, func(url string) {
		fmt.Fprintln(env.ErrOut, "Open this URL in your browser:")
		fmt.Fprintln(env.ErrOut, url)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			env.errorf("cancelled")
		} else {
			env.errorf("%v", err)
		}
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		env.errorf("failed to create config directory: %v", err)
		return exitcode.AuthError
	}
	if err := auth.SaveToken(cfg.TokenPath(), token); err != nil {
		env.errorf("failed to save token: %v", err)
		return exitcode.AuthError
	}

	env.infof("ok\n")
	return exitcode.Success
}

func printClientHelp(env *Env) {
	w := env.ErrOut
	env.errorf("oauth_client.json not found in %s\n", env.Cfg.Dir)
	fmt.Fprintln(w, "To log in, you need OAuth credentials for the task service:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "1. Ask the service administrator for a desktop OAuth client,")
	fmt.Fprintln(w, "   or create one with your identity provider")
	fmt.Fprintln(w, "2. Download the client JSON file")
	fmt.Fprintln(w, "3. Save it as:")
	fmt.Fprintf(w, "   %s\n", env.Cfg.OAuthClientPath())
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "A static bearer token can be set instead with api.token in")
	fmt.Fprintf(w, "%s or the TASKSYNC_API_TOKEN environment variable.\n", env.Cfg.ConfigPath())
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Then run 'tasksync login' again.")
}
