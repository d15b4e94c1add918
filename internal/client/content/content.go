// Package content acquires snippet bodies from the user: through an editor
// on a temporary file when stdin is a terminal, otherwise from stdin.
package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// Source reads snippet content. The zero value is not usable; use New.
type Source struct {
	Editor string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal reports whether stdin is interactive.
	IsTerminal func() bool
	// Run starts the editor and waits for it.
	Run func(cmd *exec.Cmd) error
}

// New returns a Source bound to the process's standard streams.
func New(editor string) *Source {
	return &Source{
		Editor: editor,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		Run: func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

// Interactive reports whether content will come from the editor.
func (s *Source) Interactive() bool {
	return s.IsTerminal != nil && s.IsTerminal()
}

// Read returns the new content. In the editor the file starts out holding
// initial; on stdin initial is ignored.
func (s *Source) Read(ctx context.Context, initial string) (string, error) {
	if s.Interactive() {
		text, err := s.fromEditor(ctx, initial)
		if err != nil {
			return "", fmt.Errorf("get content from editor: %w", err)
		}
		return text, nil
	}

	b, err := io.ReadAll(s.Stdin)
	if err != nil {
		return "", fmt.Errorf("get content from stdin: %w", err)
	}
	return string(b), nil
}

func (s *Source) fromEditor(ctx context.Context, initial string) (string, error) {
	f, err := os.CreateTemp("", "snip-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write temporary file: %w", err)
	}

	// EDITOR may carry arguments, e.g. "code --wait".
	argv := strings.Fields(s.Editor)
	if len(argv) == 0 {
		return "", fmt.Errorf("no editor configured")
	}
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = s.Stdin, s.Stdout, s.Stderr
	if err := s.Run(cmd); err != nil {
		return "", fmt.Errorf("editor exited unexpectedly: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read temporary file: %w", err)
	}
	return string(b), nil
}
