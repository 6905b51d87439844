package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"tasksync/internal/cli"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/testutil"
	"tasksync/internal/theme"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		return svc, nil
	}
}

// newDispatcher returns a dispatcher that never touches the user's config
// or terminal.
func newDispatcher(t *testing.T, factory cli.ServiceFactory) *cli.Dispatcher {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	d := cli.NewDispatcher(commands.DefaultRegistry, factory)
	d.SetWatcher(theme.NewStaticWatcher(true))
	return d
}

func run(d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(d, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(d, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tasksync 0.1.0\n" {
		t.Errorf("expected 'tasksync 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: --unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	svc := testutil.NewFakeService()
	d := newDispatcher(t, testFactory(svc))

	_, stderr, code := run(d, "list", "--status")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: flag needs an argument") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if svc.ListCalls() != 0 {
		t.Error("expected no fetch")
	}
}

func TestDispatcher_FlagHelp(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(d, "add", "--help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "Usage:\n  tasksync add") || !strings.Contains(stdout, "--due") {
		t.Errorf("unexpected usage output: %q", stdout)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.PriorityHigh, service.StatusPending)
	d := newDispatcher(t, testFactory(svc))

	stdout, stderr, code := run(d)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "   1  pending      high    Buy milk\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	// The fetch is followed by a stats refresh that completes before Run returns.
	if svc.StatsCallCount() != 1 {
		t.Errorf("expected one stats refresh, got %d", svc.StatsCallCount())
	}
}

func TestDispatcher_CommonFlagsAfterArgs(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(d, "list", "--quiet")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output, got %q / %q", stdout, stderr)
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("[api]\nbase_url = \"ftp://example.com\"\n"), 0600)
	if err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	svc := testutil.NewFakeService()
	d := newDispatcher(t, testFactory(svc))

	_, stderr, code := run(d, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid configuration: api.base_url") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if svc.ListCalls() != 0 {
		t.Error("expected no fetch")
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: service.ErrUnauthorized, want: exitcode.AuthError},
		{err: errors.New("read token.json: permission denied"), want: exitcode.BackendError},
	}

	for _, tt := range tests {
		d := newDispatcher(t, func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
			return nil, tt.err
		})

		_, stderr, code := run(d, "list")

		if code != tt.want {
			t.Errorf("%v: expected exit code %d, got %d", tt.err, tt.want, code)
		}
		if stderr != "error: "+tt.err.Error()+"\n" {
			t.Errorf("%v: unexpected stderr: %q", tt.err, stderr)
		}
	}
}

func TestDispatcher_ServiceNotNeeded(t *testing.T) {
	called := false
	d := newDispatcher(t, func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		called = true
		return nil, errors.New("unreachable")
	})

	_, _, code := run(d, "theme")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if called {
		t.Error("theme should not create a service")
	}
}

func TestDispatcher_ThemePersists(t *testing.T) {
	dir := t.TempDir()
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	stdout, _, code := run(d, "theme", "--config", dir)
	if code != exitcode.Success || stdout != "dark\n" {
		t.Fatalf("expected the system signal (dark), got %q (code %d)", stdout, code)
	}
	if _, err := os.Stat(filepath.Join(dir, config.PrefsFile)); !os.IsNotExist(err) {
		t.Error("nothing should be persisted before an explicit choice")
	}

	if _, _, code := run(d, "theme", "light", "--config", dir); code != exitcode.Success {
		t.Fatalf("theme light: exit code %d", code)
	}

	stdout, _, _ = run(d, "theme", "--config", dir)
	if stdout != "light\n" {
		t.Errorf("expected persisted light theme, got %q", stdout)
	}
}

func TestDispatcher_Debug(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, "list", "--debug")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "dispatch") || !strings.Contains(stderr, "fetch issued") {
		t.Errorf("expected debug logs on stderr, got %q", stderr)
	}
}

func TestDispatcher_Shell(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.PriorityHigh, service.StatusPending)
	d := newDispatcher(t, testFactory(svc))
	d.SetInput(strings.NewReader("add -p low \"Call mum\"\nlist -p low\nshell\nfrobnicate\nquit\n"))

	stdout, stderr, code := run(d, "shell")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "" +
		"Task created\n" +
		"   2  pending      low     Call mum\n" +
		"   2  pending      low     Call mum\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	expectedErr := "error: already in a shell\nerror: unknown command: frobnicate\n"
	if stderr != expectedErr {
		t.Errorf("expected %q, got %q", expectedErr, stderr)
	}
	if svc.StatsCallCount() != 2 {
		t.Errorf("expected stats refreshes for the create and the fetch, got %d", svc.StatsCallCount())
	}
}

func TestDispatcher_ShellRejectsCommonFlags(t *testing.T) {
	d := newDispatcher(t, testFactory(testutil.NewFakeService()))
	d.SetInput(strings.NewReader("list --quiet\n"))

	_, stderr, code := run(d, "shell")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown flag: --quiet\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
