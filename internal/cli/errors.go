package cli

import (
	"context"
	"errors"

	"github.com/matzehuels/catup/pkg/catalog"
	catuperrors "github.com/matzehuels/catup/pkg/errors"
	"github.com/matzehuels/catup/pkg/fetch"
	"github.com/matzehuels/catup/pkg/integrations"
	"github.com/matzehuels/catup/pkg/manifest"
	"github.com/matzehuels/catup/pkg/reconcile"
)

// classify attaches an error code to err unless it already carries one.
func classify(ctx context.Context, err error) error {
	if err == nil || catuperrors.GetCode(err) != "" {
		return err
	}

	var (
		parseErr   *reconcile.ParseError
		partialErr *reconcile.PartialError
		rowErr     *manifest.RowError
		fetchErr   *fetch.Error
	)
	switch {
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return catuperrors.Wrap(catuperrors.ErrCodeCanceled, err, "interrupted")
	case errors.As(err, &parseErr):
		return catuperrors.Wrap(catuperrors.ErrCodeInvalidInput, err, "invalid entry")
	case errors.As(err, &rowErr):
		return catuperrors.Wrap(catuperrors.ErrCodeInvalidManifest, err, "invalid manifest")
	case errors.As(err, &partialErr):
		return catuperrors.Wrap(catuperrors.ErrCodePartial, err, "some entries failed")
	case errors.Is(err, catalog.ErrPersistence):
		return catuperrors.Wrap(catuperrors.ErrCodePersistence, err, "catalog")
	case errors.As(err, &fetchErr):
		if errors.Is(err, integrations.ErrNotFound) {
			return catuperrors.Wrap(catuperrors.ErrCodeNotFound, err, "nothing was written")
		}
		if errors.Is(err, integrations.ErrNetwork) {
			return catuperrors.Wrap(catuperrors.ErrCodeNetwork, err, "nothing was written")
		}
		return catuperrors.Wrap(catuperrors.ErrCodeFetchFailed, err, "nothing was written")
	case errors.Is(err, context.DeadlineExceeded):
		return catuperrors.Wrap(catuperrors.ErrCodeTimeout, err, "timed out")
	default:
		return err
	}
}
