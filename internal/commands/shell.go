package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"tasksync/internal/exitcode"
)

// HistoryFile is the shell history file name in the config dir.
const HistoryFile = "history"

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command. Every line runs as a command in
// one session, so filters and stats carry over between lines.
type ShellCmd struct{}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return []string{"repl"} }
func (c *ShellCmd) Synopsis() string   { return "Run commands interactively" }
func (c *ShellCmd) Usage() string      { return "tasksync shell [common flags]" }
func (c *ShellCmd) NeedsService() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string) int {
	if env.Exec == nil {
		env.errorf("shell unavailable")
		return exitcode.UserError
	}
	if env.In != nil {
		return c.script(ctx, env, env.In)
	}
	return c.interactive(ctx, env)
}

// script runs one command per line of r, without prompting.
func (c *ShellCmd) script(ctx context.Context, env *Env, r io.Reader) int {
	code := exitcode.Success
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		done, lineCode := c.exec(ctx, env, sc.Text())
		if done {
			break
		}
		if lineCode != exitcode.Success {
			code = lineCode
		}
	}
	if err := sc.Err(); err != nil {
		env.errorf("reading input: %v", err)
		return exitcode.UserError
	}
	return code
}

func (c *ShellCmd) interactive(ctx context.Context, env *Env) int {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completer(DefaultRegistry.Names()))

	historyPath := filepath.Join(env.Cfg.Dir, HistoryFile)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if err := env.Cfg.EnsureDir(); err != nil {
			env.Logger.Debug("history not saved", "err", err)
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for ctx.Err() == nil {
		input, err := line.Prompt("tasksync> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(env.Out)
				break
			}
			env.errorf("reading input: %v", err)
			return exitcode.UserError
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if done, _ := c.exec(ctx, env, input); done {
			break
		}
	}
	return exitcode.Success
}

// exec runs a single input line. It reports whether the shell should end.
func (c *ShellCmd) exec(ctx context.Context, env *Env, input string) (bool, int) {
	args, err := SplitArgs(input)
	if err != nil {
		env.errorf("%v", err)
		return false, exitcode.UserError
	}
	if len(args) == 0 {
		return false, exitcode.Success
	}
	switch args[0] {
	case "exit", "quit", "q":
		return true, exitcode.Success
	}
	return false, env.Exec(ctx, args)
}

func completer(names []string) liner.Completer {
	words := append(append([]string{}, names...), "exit", "quit")
	return func(line string) []string {
		if strings.Contains(line, " ") {
			return nil
		}
		var out []string
		for _, name := range words {
			if strings.HasPrefix(name, line) {
				out = append(out, name)
			}
		}
		return out
	}
}

// SplitArgs splits a line into words. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
