package prefetch

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	stdout, stderr, err := ExecRunner{Env: []string{"CATUP_TEST=hello"}}.Run(
		context.Background(), "sh", []string{"-c", `echo "$CATUP_TEST"; echo oops >&2; exit 3`})

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Fatalf("Run() error = %v, want exit status 3", err)
	}
	if string(stdout) != "hello\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if string(stderr) != "oops\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExecRunnerMissing(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "catup-definitely-missing-binary", nil)
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Run() error = %v, want exec.ErrNotFound", err)
	}
}
