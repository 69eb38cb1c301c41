//go:build integration

package github

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/catup/pkg/cache"
	"github.com/matzehuels/catup/pkg/integrations"
)

func TestFetch_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	ns := cache.Open(nil).Namespace(Namespace)
	client := NewClient(ns, Config{Token: token})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := client.Fetch(ctx, "golang", "go")
	if err != nil {
		t.Fatalf("Fetch(golang/go) error: %v", err)
	}
	if repo.Branch == "" || len(repo.Commit) != 40 {
		t.Errorf("Fetch(golang/go) = %+v", repo)
	}

	_, err = client.Fetch(ctx, "nonexistent-owner-12345", "nonexistent-repo")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Fetch(nonexistent) error = %v, want ErrNotFound", err)
	}
}
