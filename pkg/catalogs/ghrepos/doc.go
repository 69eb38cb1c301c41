// Package ghrepos is a catalog of GitHub repositories pinned with nurl.
//
// The manifest lists one repository per row (columns owner, repo and an
// optional branch). Fetching an [Info] resolves the repository through the
// GitHub API, then asks nurl for a fetcher call at the resolved commit.
//
// Infos are keyed by repository name, so two owners cannot contribute
// repositories with the same name to one catalog.
package ghrepos
