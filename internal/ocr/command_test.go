package ocr

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
	}
}

func TestExecShell(t *testing.T) {
	requireSh(t)
	shell := NewExecShell(nil)

	out, err := shell.Exec(context.Background(), Command{Name: "sh", Args: []string{"-c", "printf page-one"}})
	if err != nil || string(out) != "page-one" {
		t.Fatalf("Exec() = %q, %v", out, err)
	}

	_, err = shell.Exec(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo 'Syntax Error: bad xref' >&2; exit 3"}})
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %T %v, want *CommandError", err, err)
	}
	if cerr.Stderr != "Syntax Error: bad xref" || cerr.Command.Name != "sh" {
		t.Errorf("CommandError = %+v", cerr)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("exit status lost: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "sh: exit status 3: Syntax Error") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExecShellCanceled(t *testing.T) {
	requireSh(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecShell(nil).Exec(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestExecShellMissingBinary(t *testing.T) {
	_, err := NewExecShell(nil).Exec(context.Background(), Command{Name: "no-such-pdftoppm-binary"})
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("err = %v, want exec.ErrNotFound", err)
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"0123456789", 4, "...6789"},
		{"prefix é", 1, "..."},
		{"prefix é", 2, "...é"},
	}
	for _, tt := range tests {
		if got := tail(tt.in, tt.n); got != tt.want {
			t.Errorf("tail(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "pdftoppm", Args: []string{"-r", "300", "-png"}}
	if got := c.String(); got != "pdftoppm -r 300 -png" {
		t.Errorf("String() = %q", got)
	}
}
