package prefetch

import (
	"context"
	"encoding/json"
	"time"

	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/cache"
)

// GitOptions configures nix-prefetch-git.
type GitOptions struct {
	// Revision to fetch; empty fetches the latest commit.
	Revision string `json:"revision,omitempty"`
	// Args are passed through verbatim, one word per element
	// (e.g. "--branch-name", "foo").
	Args []string `json:"args,omitempty"`
}

// GitResult is the output of nix-prefetch-git.
type GitResult struct {
	URL             string    `json:"url"`
	Rev             string    `json:"rev"`
	Date            time.Time `json:"date"`
	Path            string    `json:"path"`
	Hash            string    `json:"hash"`
	FetchLFS        bool      `json:"fetch_lfs"`
	FetchSubmodules bool      `json:"fetch_submodules"`
	DeepClone       bool      `json:"deep_clone"`
	LeaveDotGit     bool      `json:"leave_dot_git"`
}

// gitOutput is the JSON printed by nix-prefetch-git.
type gitOutput struct {
	URL             string    `json:"url"`
	Rev             string    `json:"rev"`
	Date            time.Time `json:"date"`
	Path            string    `json:"path"`
	Hash            string    `json:"hash"`
	FetchLFS        bool      `json:"fetchLFS"`
	FetchSubmodules bool      `json:"fetchSubmodules"`
	DeepClone       bool      `json:"deepClone"`
	LeaveDotGit     bool      `json:"leaveDotGit"`
}

// Git prefetches a git repository.
func (p *Prefetcher) Git(ctx context.Context, url string, opts GitOptions) (GitResult, error) {
	ns := p.store.Namespace(NixPrefetchGit)
	return cache.Memo(ctx, ns, cache.Key("git", url, opts), func(ctx context.Context) (GitResult, error) {
		args := []string{url}
		if opts.Revision != "" {
			args = append(args, opts.Revision)
		}
		args = append(args, "--quiet")
		args = append(args, opts.Args...)

		out, err := p.run(ctx, NixPrefetchGit, args, true)
		if err != nil {
			return GitResult{}, err
		}
		var o gitOutput
		if err := json.Unmarshal(out, &o); err != nil {
			return GitResult{}, &CommandError{Name: NixPrefetchGit, Args: args, Stdout: string(out), Err: zerr.Wrap(err, "invalid JSON output")}
		}
		return GitResult(o), nil
	})
}
