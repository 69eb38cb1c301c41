// Package cli implements the catup command-line interface.
//
// catup keeps a catalog of fetched package metadata in sync with a manifest
// of package identifiers. The CLI is built using cobra, configured through
// viper (flags, CATUP_* environment, TOML config file) and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - add: Add entries to the manifest and fetch them into the catalog
//   - update: Refetch all or some catalog entries
//   - cache: Inspect or clear the persistent cache
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --log-level and --verbose (-v). The logger is stored
// in the command context and passed explicitly to every component.
//
// # Example
//
//	import "github.com/matzehuels/catup/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stdout, os.Stderr)
//	    os.Exit(errors.ExitCode(c.Execute(ctx, os.Args[1:])))
//	}
package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/catup/internal/config"
	"github.com/matzehuels/catup/pkg/buildinfo"
	catuperrors "github.com/matzehuels/catup/pkg/errors"
	"github.com/matzehuels/catup/pkg/prefetch"
)

// CLI holds shared state for all commands.
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer

	// Runner executes the prefetch tools. Nil runs real processes.
	Runner prefetch.Runner
	// HTTPClient is used for upstream APIs. Nil uses the default client.
	HTTPClient *http.Client

	cfg    *config.Config
	logger *log.Logger
}

// New creates a CLI writing results to stdout and logs to stderr.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{
		Stdout: stdout,
		Stderr: stderr,
		logger: newLogger(stderr, log.InfoLevel),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "catup",
		Short: "catup keeps a package catalog in sync with upstream",
		Long: `catup maintains a JSON catalog of package metadata for the entries listed in a
manifest file. "add" registers new entries and fetches them; "update"
refetches existing ones. Fetches run concurrently and are cached.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().Load(cmd)
			if err != nil {
				if catuperrors.GetCode(err) == "" {
					err = catuperrors.Wrap(catuperrors.ErrCodeInvalidConfig, err, "load configuration")
				}
				return err
			}
			c.cfg = cfg
			c.logger = newLogger(c.Stderr, cfg.Level())
			cmd.SetContext(withLogger(cmd.Context(), c.logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	config.RegisterFlags(root)

	// Register all subcommands
	root.AddCommand(c.addCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the command line args. Failures are printed to Stderr and
// returned as coded errors; use errors.ExitCode for the process status.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(c.Stdout)
	root.SetErr(c.Stderr)

	err := classify(ctx, root.ExecuteContext(ctx))
	if err != nil {
		printError(c.Stderr, "%s", catuperrors.UserMessage(err))
	}
	return err
}
