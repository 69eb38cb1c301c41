package prefetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/cache"
)

// Executable names.
const (
	NixPrefetchURL = "nix-prefetch-url"
	NixPrefetchGit = "nix-prefetch-git"
	NurlCommand    = "nurl"
)

// ErrUnexpectedStderr reports a tool that wrote to stderr although it
// exited successfully.
var ErrUnexpectedStderr = errors.New("unexpected output on stderr")

// CommandError describes a failed tool invocation.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, "%s returned exit code %d", e.Name, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "%s: %v", e.Name, e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Prefetcher runs the prefetch tools and memoizes their results.
type Prefetcher struct {
	store  *cache.Store
	runner Runner
	logger *log.Logger
}

// Option configures a Prefetcher.
type Option func(*Prefetcher)

// WithRunner replaces the default ExecRunner.
func WithRunner(r Runner) Option {
	return func(p *Prefetcher) { p.runner = r }
}

// WithLogger sets the logger used for tool diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Prefetcher) { p.logger = l }
}

// New creates a Prefetcher memoizing in store. A nil store disables
// persistence.
func New(store *cache.Store, opts ...Option) *Prefetcher {
	if store == nil {
		store = cache.Open(nil)
	}
	p := &Prefetcher{
		store:  store,
		runner: ExecRunner{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run executes a tool. With strict set any stderr output fails the call,
// otherwise it is logged at debug level.
func (p *Prefetcher) run(ctx context.Context, name string, args []string, strict bool) ([]byte, error) {
	p.logger.Debug("running", "command", name, "args", args)
	stdout, stderr, err := p.runner.Run(ctx, name, args)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			// Not recorded: installing the tool fixes it.
			return nil, cache.Retryable(zerr.With(zerr.Wrap(err, "executable not found"), "command", name))
		}
		cmdErr := &CommandError{Name: name, Args: args, ExitCode: -1, Stdout: string(stdout), Stderr: string(stderr), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return nil, cmdErr
	}
	if len(stderr) > 0 {
		if strict {
			return nil, &CommandError{Name: name, Args: args, Stdout: string(stdout), Stderr: string(stderr), Err: ErrUnexpectedStderr}
		}
		p.logger.Debug("command wrote to stderr", "command", name, "stderr", string(bytes.TrimSpace(stderr)))
	}
	return stdout, nil
}
