package github

import (
	"slices"
	"time"
)

// Repository is the resolved state of a GitHub repository.
type Repository struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	Meta   Meta   `json:"meta"`
}

// Meta holds descriptive repository metadata.
type Meta struct {
	Description string     `json:"description"`
	Homepage    string     `json:"homepage"`
	License     string     `json:"license"`
	Stars       int        `json:"stars"`
	Topics      []string   `json:"topics"`
	Archived    bool       `json:"archived"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// URL returns the repository's web URL.
func (r Repository) URL() string {
	return "https://github.com/" + r.Owner + "/" + r.Repo
}

func sortedTopics(topics []string) []string {
	out := slices.Clone(topics)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}

// apiRepoResponse is the REST API repository representation.
type apiRepoResponse struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description   *string    `json:"description"`
	Homepage      *string    `json:"homepage"`
	DefaultBranch string     `json:"default_branch"`
	Stars         int        `json:"stargazers_count"`
	UpdatedAt     *time.Time `json:"updated_at"`
	License       *struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	Topics   []string `json:"topics"`
	Archived bool     `json:"archived"`
}

// apiCommitResponse is the REST API commit representation.
type apiCommitResponse struct {
	SHA string `json:"sha"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Repository *graphqlRepo `json:"repository"`
		RateLimit  struct {
			Cost      int `json:"cost"`
			Remaining int `json:"remaining"`
		} `json:"rateLimit"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphqlRepo struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description    *string    `json:"description"`
	HomepageURL    *string    `json:"homepageUrl"`
	StargazerCount int        `json:"stargazerCount"`
	IsArchived     bool       `json:"isArchived"`
	ArchivedAt     *time.Time `json:"archivedAt"`
	LicenseInfo    *struct {
		SPDXID string `json:"spdxId"`
	} `json:"licenseInfo"`
	DefaultBranchRef *struct {
		Name   string `json:"name"`
		Target struct {
			OID string `json:"oid"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
