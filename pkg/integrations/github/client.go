package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/catup/pkg/cache"
	"github.com/matzehuels/catup/pkg/integrations"
)

const (
	// DefaultBaseURL is the public GitHub API.
	DefaultBaseURL = "https://api.github.com"

	// Namespace is the cache namespace used for GitHub responses.
	Namespace = "github"

	apiVersion = "2022-11-28"
)

// Config configures a Client.
type Config struct {
	// Token authenticates requests and enables the GraphQL API.
	Token string
	// BaseURL overrides DefaultBaseURL (GitHub Enterprise, tests).
	BaseURL string
}

// Client provides access to the GitHub API.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
	token   string
}

// NewClient creates a GitHub API client that memoizes responses in ns.
func NewClient(ns *cache.Namespace, cfg Config, opts ...integrations.ClientOption) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": apiVersion,
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(ns, headers, opts...),
		baseURL: base,
		token:   cfg.Token,
	}
}

// Fetch resolves a repository, using GraphQL when the client has a token and
// REST otherwise.
func (c *Client) Fetch(ctx context.Context, owner, repo string) (*Repository, error) {
	if c.token != "" {
		return c.FetchGraphQL(ctx, owner, repo)
	}
	return c.FetchREST(ctx, owner, repo)
}

// FetchREST resolves a repository through the REST API. The head commit of
// the default branch is looked up with a second request.
func (c *Client) FetchREST(ctx context.Context, owner, repo string) (*Repository, error) {
	var r Repository
	err := c.Cached(ctx, cache.Key("rest", owner, repo), &r, func() error {
		return c.fetchREST(ctx, owner, repo, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) fetchREST(ctx context.Context, owner, repo string, r *Repository) error {
	var data apiRepoResponse
	u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return err
	}
	c.warnRenamed(owner, repo, data.Owner.Login, data.Name)

	commit, err := c.fetchCommit(ctx, data.Owner.Login, data.Name, data.DefaultBranch)
	if err != nil {
		return err
	}

	*r = Repository{
		Owner:  data.Owner.Login,
		Repo:   data.Name,
		Branch: data.DefaultBranch,
		Commit: commit,
		Meta: Meta{
			Description: deref(data.Description),
			Homepage:    deref(data.Homepage),
			Stars:       data.Stars,
			Topics:      sortedTopics(data.Topics),
			Archived:    data.Archived,
		},
	}
	if data.License != nil {
		r.Meta.License = data.License.SPDXID
	}
	// REST has no archive date; the last update is the closest available.
	if data.Archived {
		r.Meta.ArchivedAt = data.UpdatedAt
	}
	return nil
}

// Commit resolves ref (a branch, tag or sha) to a commit sha.
func (c *Client) Commit(ctx context.Context, owner, repo, ref string) (string, error) {
	var sha string
	err := c.Cached(ctx, cache.Key("commit", owner, repo, ref), &sha, func() error {
		var err error
		sha, err = c.fetchCommit(ctx, owner, repo, ref)
		return err
	})
	return sha, err
}

func (c *Client) fetchCommit(ctx context.Context, owner, repo, ref string) (string, error) {
	var data apiCommitResponse
	u := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(ref))
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: github ref %s/%s@%s", err, owner, repo, ref)
		}
		return "", err
	}
	if data.SHA == "" {
		return "", fmt.Errorf("github ref %s/%s@%s: empty commit sha", owner, repo, ref)
	}
	return data.SHA, nil
}

func (c *Client) warnRenamed(owner, repo, newOwner, newRepo string) {
	if !strings.EqualFold(owner, newOwner) {
		c.Logger().Warn("GitHub repository owner has changed", "repo", owner+"/"+repo, "owner", newOwner)
	}
	if !strings.EqualFold(repo, newRepo) {
		c.Logger().Warn("GitHub repository name has changed", "repo", owner+"/"+repo, "name", newRepo)
	}
}
