package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/catup/pkg/catalog"
	catuperrors "github.com/matzehuels/catup/pkg/errors"
	"github.com/matzehuels/catup/pkg/integrations"
	"github.com/matzehuels/catup/pkg/manifest"
	"github.com/matzehuels/catup/pkg/reconcile"
)

func TestClassify(t *testing.T) {
	ctx := context.Background()
	canceled, cancel := context.WithCancel(ctx)
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want catuperrors.Code
	}{
		{"canceled", canceled, errors.New("boom"), catuperrors.ErrCodeCanceled},
		{"parse", ctx, errors.Join(&reconcile.ParseError{Raw: "x", Err: errors.New("bad")}), catuperrors.ErrCodeInvalidInput},
		{"manifest", ctx, &manifest.RowError{Row: 2, Err: errors.New("bad")}, catuperrors.ErrCodeInvalidManifest},
		{"partial", ctx, &reconcile.PartialError{Failures: map[string]error{"a": errors.New("x")}, Total: 2}, catuperrors.ErrCodePartial},
		{"persistence", ctx, fmt.Errorf("save: %w", catalog.ErrPersistence), catuperrors.ErrCodePersistence},
		{"timeout", ctx, fmt.Errorf("wait: %w", context.DeadlineExceeded), catuperrors.ErrCodeTimeout},
		{"coded", ctx, catuperrors.New(catuperrors.ErrCodeInvalidConfig, "x"), catuperrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.ctx, tt.err)
			assert.Equal(t, tt.want, catuperrors.GetCode(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, classify(context.Background(), nil))

	err := fmt.Errorf("lookup: %w", integrations.ErrNetwork)
	assert.Equal(t, err, classify(context.Background(), err))
}
