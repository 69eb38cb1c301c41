package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/catup/pkg/cache"
	"github.com/matzehuels/catup/pkg/integrations"
)

const repositoryQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    name
    isArchived
    archivedAt
    homepageUrl
    stargazerCount
    description
    owner { login }
    licenseInfo { spdxId }
    defaultBranchRef {
      name
      target { oid }
    }
    repositoryTopics(first: 100) {
      nodes { topic { name } }
    }
  }
  rateLimit { cost remaining }
}`

// APIError carries the errors[] of a GraphQL response.
type APIError struct {
	Messages []string
	NotFound bool
}

func (e *APIError) Error() string {
	return "github graphql: " + strings.Join(e.Messages, "; ")
}

// Unwrap lets errors.Is match integrations.ErrNotFound for missing
// repositories.
func (e *APIError) Unwrap() error {
	if e.NotFound {
		return integrations.ErrNotFound
	}
	return nil
}

// FetchGraphQL resolves a repository with one GraphQL query. It requires a
// token.
func (c *Client) FetchGraphQL(ctx context.Context, owner, repo string) (*Repository, error) {
	if c.token == "" {
		return nil, fmt.Errorf("github graphql: a token is required")
	}
	var r Repository
	err := c.Cached(ctx, cache.Key("graphql", owner, repo), &r, func() error {
		return c.fetchGraphQL(ctx, owner, repo, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) fetchGraphQL(ctx context.Context, owner, repo string, r *Repository) error {
	req := graphqlRequest{
		Query:     repositoryQuery,
		Variables: map[string]any{"owner": owner, "name": repo},
	}
	var resp graphqlResponse
	if err := c.PostJSON(ctx, c.baseURL+"/graphql", req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		apiErr := &APIError{}
		for _, e := range resp.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
			if e.Type == "NOT_FOUND" {
				apiErr.NotFound = true
			}
		}
		return apiErr
	}
	data := resp.Data.Repository
	if data == nil {
		return &APIError{Messages: []string{fmt.Sprintf("repository %s/%s not returned", owner, repo)}, NotFound: true}
	}
	c.Logger().Debug("GraphQL query cost", "repo", owner+"/"+repo, "cost", resp.Data.RateLimit.Cost, "remaining", resp.Data.RateLimit.Remaining)
	c.warnRenamed(owner, repo, data.Owner.Login, data.Name)

	topics := make([]string, 0, len(data.RepositoryTopics.Nodes))
	for _, n := range data.RepositoryTopics.Nodes {
		topics = append(topics, n.Topic.Name)
	}

	*r = Repository{
		Owner: data.Owner.Login,
		Repo:  data.Name,
		Meta: Meta{
			Description: deref(data.Description),
			Homepage:    deref(data.HomepageURL),
			Stars:       data.StargazerCount,
			Topics:      sortedTopics(topics),
			Archived:    data.IsArchived,
			ArchivedAt:  data.ArchivedAt,
		},
	}
	if data.DefaultBranchRef != nil {
		r.Branch = data.DefaultBranchRef.Name
		r.Commit = data.DefaultBranchRef.Target.OID
	}
	if data.LicenseInfo != nil {
		r.Meta.License = data.LicenseInfo.SPDXID
	}
	return nil
}
