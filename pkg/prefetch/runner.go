package prefetch

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Runner executes an external command and captures its output.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type Runner interface {
	// Run executes name with args and returns everything the process wrote.
	// A non-zero exit status is reported as an *exec.ExitError alongside the
	// captured output.
	Run(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Env is appended to the parent environment.
	Env []string
}

// Run implements Runner. The process is killed when ctx is done.
func (r ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
