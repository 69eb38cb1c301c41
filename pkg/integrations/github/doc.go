// Package github provides an HTTP client for the GitHub API.
//
// # Overview
//
// This package fetches repository information from GitHub
// (https://api.github.com): the canonical owner and name, the default
// branch, its head commit and descriptive metadata.
//
// # Usage
//
//	client := github.NewClient(store.Namespace(github.Namespace), github.Config{Token: token})
//
//	repo, err := client.Fetch(ctx, "acme", "widget")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(repo.Branch, repo.Commit)
//
// # Authentication
//
// A GitHub token is optional. Without one the REST API is used, which is
// limited to 60 requests/hour and needs a second request per repository to
// resolve the head commit. With a token [Client.Fetch] uses a single GraphQL
// query per repository.
//
// # Renamed repositories
//
// GitHub redirects requests for renamed or transferred repositories. The
// returned [Repository] carries the new owner and name, and the client logs
// a warning so the manifest can be corrected.
//
// # Caching
//
// Every call is memoized in the namespace the client was created with.
// Repository metadata changes upstream, so callers that need fresh data on
// every run should pass a namespace from a non-persistent store.
package github
