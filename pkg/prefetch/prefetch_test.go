package prefetch_test

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/matzehuels/catup/pkg/cache"
	"github.com/matzehuels/catup/pkg/prefetch"
	"github.com/matzehuels/catup/pkg/prefetch/mocks"
)

const nurlJSON = `{"args":{"hash":"sha256-oKOqnHaizo209cXHkCbPVFjBjsc9GJ/Og+9rCB8YGfU=","owner":"nix-community","repo":"patsh","rev":"65d3e558"},"fetcher":"fetchFromGitHub"}`

func newPrefetcher(t *testing.T) (*prefetch.Prefetcher, *mocks.MockRunner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	return prefetch.New(cache.Open(nil), prefetch.WithRunner(runner)), runner
}

func TestNurl(t *testing.T) {
	p, runner := newPrefetcher(t)
	ctx := context.Background()

	runner.EXPECT().
		Run(gomock.Any(), "nurl", []string{
			"https://github.com/nix-community/patsh", "65d3e558",
			"--submodules=true", "--fetcher", "fetchFromGitHub", "--fallback", "fetchgit",
			"--json", "-j",
		}).
		Return([]byte(nurlJSON), []byte("some progress output"), nil).
		Times(1)

	opts := prefetch.NurlOptions{
		Revision:   "65d3e558",
		Submodules: true,
		Fetcher:    "fetchFromGitHub",
		Fallback:   "fetchgit",
		Args:       []string{"--json"},
	}
	res, err := p.Nurl(ctx, "https://github.com/nix-community/patsh", opts)
	require.NoError(t, err)
	assert.Equal(t, "fetchFromGitHub", res.Fetcher)
	assert.Equal(t, "patsh", res.Args["repo"])

	// Memoized by arguments.
	again, err := p.Nurl(ctx, "https://github.com/nix-community/patsh", opts)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestNurlMinimalArgs(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().
		Run(gomock.Any(), "nurl", []string{"https://example.com/x", "-p"}).
		Return([]byte(nurlJSON), nil, nil)

	_, err := p.NurlParse(context.Background(), "https://example.com/x", prefetch.NurlOptions{})
	require.NoError(t, err)
}

func TestNurlAndNurlParseAreSeparate(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().Run(gomock.Any(), "nurl", []string{"u", "-j"}).Return([]byte(nurlJSON), nil, nil)
	runner.EXPECT().Run(gomock.Any(), "nurl", []string{"u", "-p"}).Return([]byte(nurlJSON), nil, nil)

	_, err := p.Nurl(context.Background(), "u", prefetch.NurlOptions{})
	require.NoError(t, err)
	_, err = p.NurlParse(context.Background(), "u", prefetch.NurlOptions{})
	require.NoError(t, err)
}

func TestNurlFailureIsRecorded(t *testing.T) {
	p, runner := newPrefetcher(t)
	ctx := context.Background()

	runner.EXPECT().
		Run(gomock.Any(), "nurl", gomock.Any()).
		Return(nil, []byte("error: repository not found"), errors.New("exit status 1")).
		Times(1)

	_, err := p.Nurl(ctx, "https://github.com/acme/missing", prefetch.NurlOptions{})
	var cmdErr *prefetch.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "nurl", cmdErr.Name)
	assert.Contains(t, err.Error(), "repository not found")

	_, err = p.Nurl(ctx, "https://github.com/acme/missing", prefetch.NurlOptions{})
	var rec *cache.RecordedError
	require.ErrorAs(t, err, &rec)
	assert.Contains(t, rec.Msg, "repository not found")
}

func TestNurlInvalidJSON(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().Run(gomock.Any(), "nurl", gomock.Any()).Return([]byte("not json"), nil, nil)

	_, err := p.Nurl(context.Background(), "u", prefetch.NurlOptions{})
	var cmdErr *prefetch.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "not json", cmdErr.Stdout)
}

func TestMissingExecutableIsNotRecorded(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().
		Run(gomock.Any(), "nurl", gomock.Any()).
		Return(nil, nil, exec.ErrNotFound).
		Times(2)

	for range 2 {
		_, err := p.Nurl(context.Background(), "u", prefetch.NurlOptions{})
		require.ErrorIs(t, err, exec.ErrNotFound)
	}
}

func TestCanceledIsNotRecorded(t *testing.T) {
	p, runner := newPrefetcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	runner.EXPECT().
		Run(gomock.Any(), "nurl", gomock.Any()).
		DoAndReturn(func(context.Context, string, []string) ([]byte, []byte, error) {
			cancel()
			return nil, nil, errors.New("signal: killed")
		})

	_, err := p.Nurl(ctx, "u", prefetch.NurlOptions{})
	require.ErrorIs(t, err, context.Canceled)

	runner.EXPECT().Run(gomock.Any(), "nurl", gomock.Any()).Return([]byte(nurlJSON), nil, nil)
	_, err = p.Nurl(context.Background(), "u", prefetch.NurlOptions{})
	require.NoError(t, err)
}

func TestURL(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().
		Run(gomock.Any(), "nix-prefetch-url", []string{"https://example.com/a.tar.gz", "--print-path", "--unpack", "--name", "source"}).
		Return([]byte("0abc\n/nix/store/xyz-source\n"), nil, nil)

	res, err := p.URL(context.Background(), "https://example.com/a.tar.gz", prefetch.URLOptions{Unpack: true, Name: "source"})
	require.NoError(t, err)
	assert.Equal(t, prefetch.URLResult{Hash: "0abc", Path: "/nix/store/xyz-source"}, res)
}

func TestURLStderrIsAnError(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().
		Run(gomock.Any(), "nix-prefetch-url", []string{"u", "--print-path"}).
		Return([]byte("0abc\n/nix/store/x\n"), []byte("warning"), nil)

	_, err := p.URL(context.Background(), "u", prefetch.URLOptions{})
	require.ErrorIs(t, err, prefetch.ErrUnexpectedStderr)
}

func TestURLUnexpectedOutput(t *testing.T) {
	p, runner := newPrefetcher(t)
	runner.EXPECT().Run(gomock.Any(), "nix-prefetch-url", gomock.Any()).Return([]byte("0abc\n"), nil, nil)

	_, err := p.URL(context.Background(), "u", prefetch.URLOptions{})
	var cmdErr *prefetch.CommandError
	require.ErrorAs(t, err, &cmdErr)
}

func TestGit(t *testing.T) {
	p, runner := newPrefetcher(t)
	out := `{
  "url": "https://github.com/acme/widget",
  "rev": "deadbeef",
  "date": "2024-01-02T03:04:05+01:00",
  "path": "/nix/store/abc-widget",
  "hash": "sha256-xyz",
  "fetchLFS": false,
  "fetchSubmodules": true,
  "deepClone": false,
  "leaveDotGit": false
}`
	runner.EXPECT().
		Run(gomock.Any(), "nix-prefetch-git", []string{"https://github.com/acme/widget", "deadbeef", "--quiet", "--fetch-submodules"}).
		Return([]byte(out), nil, nil)

	res, err := p.Git(context.Background(), "https://github.com/acme/widget", prefetch.GitOptions{
		Revision: "deadbeef",
		Args:     []string{"--fetch-submodules"},
	})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", res.Rev)
	assert.Equal(t, "sha256-xyz", res.Hash)
	assert.True(t, res.FetchSubmodules)
	assert.True(t, res.Date.Equal(time.Date(2024, 1, 2, 2, 4, 5, 0, time.UTC)))
}

func TestResultsPersistAcrossStores(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := cache.NewFileBackend(dir)
	require.NoError(t, err)
	store := cache.Open(backend)

	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), "nurl", gomock.Any()).Return([]byte(nurlJSON), nil, nil).Times(1)

	_, err = prefetch.New(store, prefetch.WithRunner(runner)).Nurl(ctx, "u", prefetch.NurlOptions{})
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx))
	assert.FileExists(t, filepath.Join(dir, "nurl.json"))

	backend, err = cache.NewFileBackend(dir)
	require.NoError(t, err)
	reopened := cache.Open(backend)
	defer reopened.Close(ctx)

	// The runner expects exactly one call, so this must come from disk.
	res, err := prefetch.New(reopened, prefetch.WithRunner(runner)).Nurl(ctx, "u", prefetch.NurlOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fetchFromGitHub", res.Fetcher)
}
