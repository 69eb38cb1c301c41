package config

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/catup/pkg/reconcile"
)

// RegisterFlags adds the global flags to cmd as persistent flags.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.String("config", "", "config file (default $XDG_CONFIG_HOME/catup/config.toml)")

	f.StringP("nixpkgs-path", "N", ".", "path to the nixpkgs checkout")
	f.StringP("input-file", "i", "", "manifest file, .csv or .toml (default <nixpkgs>/"+DefaultManifestName+")")
	f.StringP("output-file", "o", "", "catalog file (default <nixpkgs>/"+DefaultCatalogName+")")

	f.IntP("jobs", "j", reconcile.DefaultJobs, "maximum concurrent fetches")
	f.Bool("keep-going", false, "write successful entries even if some fetches fail")
	f.Bool("progress", false, "show an interactive progress view")

	f.String("log-level", DefaultLogLevel, "log level ("+strings.Join(LogLevels, "|")+")")
	f.BoolP("verbose", "v", false, "enable debug logging")

	f.Bool("no-cache", false, "do not read or write the persistent cache")
	f.String("cache-backend", DefaultCacheBackend, "cache backend ("+strings.Join(CacheBackends, "|")+")")
	f.String("cache-dir", "", "cache directory for the file and bolt backends")
	f.String("redis-addr", DefaultRedisAddr, "redis address for the redis cache backend")
	f.Bool("single-flight", false, "share concurrent identical cache misses")

	f.String("catalog-backend", DefaultCatalogBackend, "catalog backend ("+strings.Join(CatalogBackends, "|")+")")
	f.String("mongo-uri", "", "MongoDB connection URI for the mongo catalog backend")
	f.String("mongo-database", DefaultMongoDatabase, "MongoDB database")
	f.String("mongo-collection", DefaultMongoCollection, "MongoDB collection")

	f.String("github-token", "", "GitHub token (default $GITHUB_TOKEN)")
	f.String("github-api-url", "", "GitHub API base URL")
}
