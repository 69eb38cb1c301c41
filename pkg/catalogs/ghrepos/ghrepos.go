package ghrepos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/catup/pkg/integrations/github"
	"github.com/matzehuels/catup/pkg/manifest"
	"github.com/matzehuels/catup/pkg/prefetch"
)

// Columns are the manifest columns.
var Columns = []string{"owner", "repo", "branch"}

// RepoFetcher resolves repositories. *github.Client implements it.
type RepoFetcher interface {
	Fetch(ctx context.Context, owner, repo string) (*github.Repository, error)
	Commit(ctx context.Context, owner, repo, ref string) (string, error)
}

// Nurler produces fetcher calls. *prefetch.Prefetcher implements it.
type Nurler interface {
	Nurl(ctx context.Context, url string, opts prefetch.NurlOptions) (prefetch.NurlResult, error)
}

// fetchers is shared by every Info of one Kind. Infos hold a pointer so
// they stay comparable.
type fetchers struct {
	github RepoFetcher
	nurl   Nurler
}

// Info identifies a repository, optionally pinned to a branch.
type Info struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`

	fetchers *fetchers
}

// ID returns the repository name.
func (i Info) ID() string { return i.Repo }

func (i Info) String() string {
	s := i.Owner + "/" + i.Repo
	if i.Branch != "" {
		s += "@" + i.Branch
	}
	return s
}

// Entry is a fetched repository.
type Entry struct {
	Info    Info                `json:"info"`
	Fetched github.Repository   `json:"fetched"`
	Nurl    prefetch.NurlResult `json:"nurl"`
}

// EntryInfo returns the info the entry was fetched for.
func (e Entry) EntryInfo() Info { return e.Info }

// Fetch resolves the repository and prefetches it at the head of its
// default branch, or of Branch when pinned.
func (i Info) Fetch(ctx context.Context) (Entry, error) {
	if i.fetchers == nil {
		return Entry{}, fmt.Errorf("%s: info was not created by a Kind", i)
	}
	repo, err := i.fetchers.github.Fetch(ctx, i.Owner, i.Repo)
	if err != nil {
		return Entry{}, err
	}
	fetched := *repo
	if i.Branch != "" && i.Branch != fetched.Branch {
		commit, err := i.fetchers.github.Commit(ctx, fetched.Owner, fetched.Repo, i.Branch)
		if err != nil {
			return Entry{}, err
		}
		fetched.Branch = i.Branch
		fetched.Commit = commit
	}
	nurl, err := i.fetchers.nurl.Nurl(ctx, fetched.URL(), prefetch.NurlOptions{Revision: fetched.Commit})
	if err != nil {
		return Entry{}, err
	}
	return Entry{Info: i, Fetched: fetched, Nurl: nurl}, nil
}

// Kind reads and writes the repository manifest.
type Kind struct {
	file     *manifest.File[Info]
	fetchers *fetchers
}

// NewKind returns the catalog type for the manifest at path. The format is
// chosen by extension (.csv or .toml).
func NewKind(path string, gh RepoFetcher, nurl Nurler) *Kind {
	k := &Kind{fetchers: &fetchers{github: gh, nurl: nurl}}
	k.file = manifest.New(path, manifest.Schema[Info]{
		Columns: Columns,
		Encode: func(i Info) map[string]string {
			return map[string]string{"owner": i.Owner, "repo": i.Repo, "branch": i.Branch}
		},
		Decode: func(row map[string]string) (Info, error) {
			return k.newInfo(row["owner"], row["repo"], row["branch"])
		},
	})
	return k
}

// Manifest returns the underlying manifest file.
func (k *Kind) Manifest() *manifest.File[Info] { return k.file }

// AllEntries reads the manifest.
func (k *Kind) AllEntries(ctx context.Context) ([]Info, error) {
	return k.file.Read(ctx)
}

// WriteManifest replaces the manifest with infos.
func (k *Kind) WriteManifest(ctx context.Context, infos []Info) error {
	return k.file.Write(ctx, infos)
}

// ParseID accepts owner/repo, owner/repo@branch or a GitHub URL.
func (k *Kind) ParseID(raw string) (Info, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Info{}, errors.New("empty repository reference")
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "git@") {
		owner, repo, err := github.ParseRepoURL(s)
		if err != nil {
			return Info{}, err
		}
		return k.newInfo(owner, repo, "")
	}
	ref, branch, _ := strings.Cut(s, "@")
	owner, repo, err := github.ParseRepoRef(ref)
	if err != nil {
		return Info{}, err
	}
	if strings.Contains(s, "@") && branch == "" {
		return Info{}, errors.New("empty branch after @")
	}
	return k.newInfo(owner, repo, branch)
}

func (k *Kind) newInfo(owner, repo, branch string) (Info, error) {
	owner, repo, branch = strings.TrimSpace(owner), strings.TrimSpace(repo), strings.TrimSpace(branch)
	if err := github.ValidateRepoRef(owner, repo); err != nil {
		return Info{}, err
	}
	return Info{Owner: owner, Repo: repo, Branch: branch, fetchers: k.fetchers}, nil
}
