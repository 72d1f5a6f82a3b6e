package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// stderrTail bounds how much diagnostic output a CommandError keeps.
const stderrTail = 512

// Command is one invocation of a poppler or tesseract binary.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandError reports a command that exited unsuccessfully. Stderr holds the end of its
// diagnostic output, which is where poppler and tesseract print the cause.
type CommandError struct {
	Command Command
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command.Name, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Shell executes external commands. Tests substitute a fake that writes the files the real
// binaries would.
type Shell interface {
	Exec(ctx context.Context, cmd Command) ([]byte, error)
}

type execShell struct {
	logger *slog.Logger
}

// NewExecShell returns the Shell backed by os/exec.
func NewExecShell(logger *slog.Logger) Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return execShell{logger: logger}
}

// Exec returns stdout. A cancelled context wins over the kill signal it causes, so callers can
// match context.Canceled.
func (s execShell) Exec(ctx context.Context, cmd Command) ([]byte, error) {
	start := time.Now()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		s.logger.Debug("ocr.exec.ok",
			"cmd", cmd.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"stdout_bytes", stdout.Len(),
		)
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	cerr := &CommandError{Command: cmd, Stderr: tail(strings.TrimSpace(stderr.String()), stderrTail), Err: err}
	s.logger.Error("ocr.exec.failed",
		"cmd", cmd.String(),
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
		"stderr", cerr.Stderr,
	)
	return nil, cerr
}

// tail keeps the last n bytes of s, trimmed forward to a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	for len(s) > 0 && !utf8.RuneStart(s[0]) {
		s = s[1:]
	}
	return "..." + s
}
