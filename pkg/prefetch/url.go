package prefetch

import (
	"context"
	"errors"
	"strings"

	"github.com/matzehuels/catup/pkg/cache"
)

// URLOptions configures nix-prefetch-url.
type URLOptions struct {
	// Unpack unpacks the archive before hashing.
	Unpack bool `json:"unpack"`
	// Name is the store path name.
	Name string `json:"name,omitempty"`
}

// URLResult is the output of nix-prefetch-url.
type URLResult struct {
	Hash string `json:"hash"`
	Path string `json:"path"`
}

// URL prefetches url into the Nix store.
func (p *Prefetcher) URL(ctx context.Context, url string, opts URLOptions) (URLResult, error) {
	ns := p.store.Namespace(NixPrefetchURL)
	return cache.Memo(ctx, ns, cache.Key("url", url, opts), func(ctx context.Context) (URLResult, error) {
		args := []string{url, "--print-path"}
		if opts.Unpack {
			args = append(args, "--unpack")
		}
		if opts.Name != "" {
			args = append(args, "--name", opts.Name)
		}
		out, err := p.run(ctx, NixPrefetchURL, args, true)
		if err != nil {
			return URLResult{}, err
		}
		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		if len(lines) != 2 {
			return URLResult{}, &CommandError{Name: NixPrefetchURL, Args: args, Stdout: string(out), Err: errors.New("expected hash and path on stdout")}
		}
		return URLResult{Hash: strings.TrimSpace(lines[0]), Path: strings.TrimSpace(lines[1])}, nil
	})
}
