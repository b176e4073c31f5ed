package cli

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
)

// ReplCmd returns the repl command.
func ReplCmd(a *app) *Command {
	return &Command{
		Usage: "repl",
		Short: "Interactive shell over the vault",
		Long: `Start an interactive shell that runs vault commands against one
loaded vault index. Type 'help' for commands and 'exit' to leave.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execRepl(ctx, o, a)
		},
	}
}

// lineReader is satisfied by *liner.State.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// scanLines reads commands from a non-terminal stream.
type scanLines struct {
	sc *bufio.Scanner
}

func (s *scanLines) Prompt(string) (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}

	if err := s.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (s *scanLines) Close() error { return nil }

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".vault_history")
}

func execRepl(ctx context.Context, o *IO, a *app) error {
	var (
		lines lineReader
		state *liner.State
	)

	if o.Stdin() == os.Stdin {
		state = liner.NewLiner()
		state.SetCtrlCAborts(true)
		state.SetCompleter(completeCommand)

		if f, err := os.Open(historyFile()); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}

		lines = state
	} else if o.Stdin() != nil {
		lines = &scanLines{sc: bufio.NewScanner(o.Stdin())}
	} else {
		return errNoInput
	}

	defer func() { _ = lines.Close() }()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := lines.Prompt("vault> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if state != nil {
			state.AppendHistory(line)
		}

		fields := strings.Fields(line)
		name, args := fields[0], fields[1:]

		switch name {
		case "exit", "quit", "q":
			saveHistory(state)

			return nil
		case "help", "?":
			for _, c := range replCommands(a) {
				o.Println(c.HelpLine())
			}

			continue
		}

		cmd := lookup(replCommands(a), name)
		if cmd == nil {
			o.Printf("unknown command: %s (type 'help' for commands)\n", name)

			continue
		}

		// Each line gets its own IO so warnings do not leak between commands.
		code := cmd.Run(ctx, NewIO(nil, o.out, o.errOut), args)
		a.log.Debug("cli: repl command done", "cmd", name, "exit", code)
	}

	saveHistory(state)

	return nil
}

// replCommands are the commands available inside the shell.
func replCommands(a *app) []*Command {
	var out []*Command

	for _, c := range commands(a) {
		if c.Name() != "repl" && c.Name() != "save" {
			out = append(out, c)
		}
	}

	return out
}

func completeCommand(line string) []string {
	var out []string

	for _, c := range replCommands(nil) {
		if strings.HasPrefix(c.Name(), line) {
			out = append(out, c.Name())
		}
	}

	return out
}

func saveHistory(state *liner.State) {
	if state == nil {
		return
	}

	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil { //nolint:gosec // history path is derived from $HOME
			_, _ = state.WriteHistory(f)
			_ = f.Close()
		}
	}
}
