package prefetch

import (
	"context"
	"encoding/json"

	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/cache"
)

// Namespaces used by the nurl wrappers.
const (
	NurlNamespace      = "nurl"
	NurlParseNamespace = "nurl-parse"
)

// NurlOptions configures nurl.
type NurlOptions struct {
	// Revision to pin; empty lets nurl pick the latest.
	Revision string `json:"revision,omitempty"`
	// Submodules fetches git submodules.
	Submodules bool `json:"submodules,omitempty"`
	// Fetcher forces a fetcher such as "fetchFromGitHub".
	Fetcher string `json:"fetcher,omitempty"`
	// Fallback is used when nurl cannot infer a fetcher.
	Fallback string `json:"fallback,omitempty"`
	// Args are passed through verbatim.
	Args []string `json:"args,omitempty"`
}

// NurlResult is a Nix fetcher call: the fetcher name and its arguments.
type NurlResult struct {
	Fetcher string         `json:"fetcher"`
	Args    map[string]any `json:"args"`
}

// Nurl resolves url to a fetcher call including its hash.
func (p *Prefetcher) Nurl(ctx context.Context, url string, opts NurlOptions) (NurlResult, error) {
	return p.nurl(ctx, NurlNamespace, "-j", url, opts)
}

// NurlParse resolves url to a fetcher call without prefetching it.
func (p *Prefetcher) NurlParse(ctx context.Context, url string, opts NurlOptions) (NurlResult, error) {
	return p.nurl(ctx, NurlParseNamespace, "-p", url, opts)
}

func (p *Prefetcher) nurl(ctx context.Context, namespace, mode, url string, opts NurlOptions) (NurlResult, error) {
	ns := p.store.Namespace(namespace)
	return cache.Memo(ctx, ns, cache.Key("nurl", url, opts), func(ctx context.Context) (NurlResult, error) {
		args := nurlArgs(url, opts, mode)
		out, err := p.run(ctx, NurlCommand, args, false)
		if err != nil {
			return NurlResult{}, err
		}
		var res NurlResult
		if err := json.Unmarshal(out, &res); err != nil {
			return NurlResult{}, &CommandError{Name: NurlCommand, Args: args, Stdout: string(out), Err: zerr.Wrap(err, "invalid JSON output")}
		}
		return res, nil
	})
}

func nurlArgs(url string, opts NurlOptions, mode string) []string {
	args := []string{url}
	if opts.Revision != "" {
		args = append(args, opts.Revision)
	}
	if opts.Submodules {
		args = append(args, "--submodules=true")
	}
	if opts.Fetcher != "" {
		args = append(args, "--fetcher", opts.Fetcher)
	}
	if opts.Fallback != "" {
		args = append(args, "--fallback", opts.Fallback)
	}
	args = append(args, opts.Args...)
	return append(args, mode)
}
