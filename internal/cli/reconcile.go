package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/catup/pkg/catalogs/ghrepos"
	"github.com/matzehuels/catup/pkg/observability"
	"github.com/matzehuels/catup/pkg/reconcile"
)

type reconciler = reconcile.Reconciler[ghrepos.Info, ghrepos.Entry]

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>...",
		Short: "Add entries to the manifest and fetch them",
		Long: `Add parses every id (owner/repo, owner/repo@branch or a GitHub URL), fetches
the entries and records them in the manifest and the catalog. Entries that
are already listed are fetched again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.reconcile(cmd, "Added", func(ctx context.Context, r *reconciler) (reconcile.Report, error) {
				return r.Add(ctx, args)
			})
		},
	}
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update [id]...",
		Short: "Refetch catalog entries",
		Long: `Update refetches the named entries, or every manifest entry when no id is
given. Ids are matched against the manifest, so a pinned branch is kept.
Other catalog entries are left as they are, and the manifest is never
modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.reconcile(cmd, "Updated", func(ctx context.Context, r *reconciler) (reconcile.Report, error) {
				return r.Update(ctx, args)
			})
		},
	}
}

// reconcile opens a session, runs op and reports the outcome. The cache is
// flushed even when op fails or the run is interrupted.
func (c *CLI) reconcile(cmd *cobra.Command, verb string, op func(context.Context, *reconciler) (reconcile.Report, error)) (err error) {
	ctx := cmd.Context()
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close(context.WithoutCancel(ctx)))
	}()

	hooks := observability.FetchHooks(observability.LogFetchHooks{Logger: s.logger})
	var view *progressView
	if s.cfg.Progress {
		view = startProgress(ctx, c.Stderr)
		hooks = observability.MultiFetchHooks(hooks, view)
	}

	r := reconcile.New[ghrepos.Info, ghrepos.Entry](s.kind, s.catalog, reconcile.Options{
		Jobs:      s.cfg.Jobs,
		KeepGoing: s.cfg.KeepGoing,
		Logger:    s.logger,
		Hooks:     hooks,
	})

	timer := newStopwatch(s.logger)
	report, err := op(ctx, r)
	view.Stop()

	var partial *reconcile.PartialError
	if err != nil && !errors.As(err, &partial) {
		return err
	}
	printReport(c.Stdout, verb, report)
	printFile(c.Stdout, s.cfg.InputFile)
	if s.cfg.CatalogBackend == "file" {
		printFile(c.Stdout, s.cfg.OutputFile)
	}
	timer.done(verb + " catalog")
	return err
}
