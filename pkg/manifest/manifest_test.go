package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoInfo struct {
	Owner  string
	Repo   string
	Branch string
}

func (i repoInfo) ID() string { return i.Repo }

var repoSchema = Schema[repoInfo]{
	Columns: []string{"owner", "repo", "branch"},
	Encode: func(i repoInfo) map[string]string {
		return map[string]string{"owner": i.Owner, "repo": i.Repo, "branch": i.Branch}
	},
	Decode: func(row map[string]string) (repoInfo, error) {
		if row["owner"] == "" || row["repo"] == "" {
			return repoInfo{}, errors.New("owner and repo are required")
		}
		return repoInfo{Owner: row["owner"], Repo: row["repo"], Branch: row["branch"]}, nil
	},
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"catup.csv", CSV},
		{"plugins.TOML", TOML},
		{"manifest.toml", TOML},
		{"no-extension", CSV},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.path), tt.path)
	}
}

func TestMissingManifestIsEmpty(t *testing.T) {
	for _, name := range []string{"catup.csv", "catup.toml"} {
		m := New(filepath.Join(t.TempDir(), name), repoSchema)
		got, err := m.Read(context.Background())
		require.NoError(t, err, name)
		assert.Empty(t, got, name)
	}
}

func TestCSVWriteSortsByID(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catup.csv")
	m := New(path, repoSchema)

	require.NoError(t, m.Write(ctx, []repoInfo{
		{Owner: "acme", Repo: "widget"},
		{Owner: "zed", Repo: "alpha", Branch: "main"},
		{Owner: "quoted", Repo: "beta", Branch: "release,1"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "owner,repo,branch\nzed,alpha,main\nquoted,beta,\"release,1\"\nacme,widget,\n", string(data))

	got, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repoInfo{
		{Owner: "zed", Repo: "alpha", Branch: "main"},
		{Owner: "quoted", Repo: "beta", Branch: "release,1"},
		{Owner: "acme", Repo: "widget"},
	}, got)
}

func TestCSVReadToleratesColumnOrderAndMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catup.csv")
	require.NoError(t, os.WriteFile(path, []byte("repo, owner\nwidget,acme\n"), 0o644))

	got, err := New(path, repoSchema).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []repoInfo{{Owner: "acme", Repo: "widget"}}, got)
}

func TestCSVHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catup.csv")
	require.NoError(t, os.WriteFile(path, []byte("owner,repo,branch\n"), 0o644))

	got, err := New(path, repoSchema).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadReportsBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catup.csv")
	require.NoError(t, os.WriteFile(path, []byte("owner,repo\nacme,widget\n,orphan\n"), 0o644))

	_, err := New(path, repoSchema).Read(context.Background())
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Contains(t, err.Error(), "owner and repo are required")
}

func TestTOMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catup.toml")
	m := New(path, repoSchema)
	in := []repoInfo{
		{Owner: "acme", Repo: "widget"},
		{Owner: "zed", Repo: "alpha", Branch: "dev"},
	}

	require.NoError(t, m.Write(ctx, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 2, strings.Count(text, "[[entry]]"))
	assert.Less(t, strings.Index(text, `"alpha"`), strings.Index(text, `"widget"`))
	assert.NotContains(t, text, "branch = \"\"")

	got, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repoInfo{in[1], in[0]}, got)
}

func TestTOMLReadsScalars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catup.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[entry]]\nowner = \"acme\"\nrepo = \"widget\"\nbranch = 2\n"), 0o644))

	got, err := New(path, repoSchema).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []repoInfo{{Owner: "acme", Repo: "widget", Branch: "2"}}, got)
}

func TestTOMLRejectsTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catup.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[entry]]\nowner = { name = \"acme\" }\nrepo = \"widget\"\n"), 0o644))

	_, err := New(path, repoSchema).Read(context.Background())
	assert.Error(t, err)
}
