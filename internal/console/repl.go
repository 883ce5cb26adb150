package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// REPL wraps liner for line editing and persistent input history.
type REPL struct {
	line        *liner.State
	historyFile string
}

func NewREPL() *REPL {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	r := &REPL{
		line:        line,
		historyFile: filepath.Join(dir, "tutor", "input_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *REPL) readInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *REPL) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *REPL) Close() {
	r.saveHistory()
	r.line.Close()
}

// Run reads lines until the user quits, presses Ctrl+C or Ctrl+D, or ctx ends.
func (r *REPL) Run(ctx context.Context, c *Console) {
	c.Welcome()
	for ctx.Err() == nil {
		input, err := r.readInput(c.Prompt())
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			return
		}

		if err := c.Handle(ctx, input); err != nil {
			if errors.Is(err, ErrQuit) {
				return
			}
			c.Error(err)
		}
	}
}
