package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/cache"
)

// EnvPrefix prefixes every environment variable (CATUP_JOBS, ...).
const EnvPrefix = "CATUP"

// Loader merges configuration sources. Precedence from highest: flags set on
// the command line, environment, config file, flag defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with its own viper instance.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github-token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	return &Loader{v: v}
}

// setupDefaults sets defaults for keys that have no flag.
func (l *Loader) setupDefaults() {
	l.v.SetDefault("log-level", DefaultLogLevel)
	l.v.SetDefault("cache-backend", DefaultCacheBackend)
	l.v.SetDefault("catalog-backend", DefaultCatalogBackend)
	l.v.SetDefault("redis-addr", DefaultRedisAddr)
	l.v.SetDefault("mongo-database", DefaultMongoDatabase)
	l.v.SetDefault("mongo-collection", DefaultMongoCollection)
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/catup/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cache.AppName, "config.toml"), nil
}

// readConfigFile reads path, or the default config file when path is empty.
// An explicit path must exist; a missing default file is ignored.
func (l *Loader) readConfigFile(path string) error {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "config file"), "path", path)
	}
	l.v.SetConfigFile(path)
	l.v.SetConfigType("toml")
	if err := l.v.ReadInConfig(); err != nil {
		return zerr.With(zerr.Wrap(err, "read config file"), "path", path)
	}
	return nil
}

// Load builds a validated Config for cmd. Flags are read from the command's
// full flag set, including persistent flags inherited from its parents.
func (l *Loader) Load(cmd *cobra.Command) (*Config, error) {
	l.setupDefaults()
	if err := l.v.BindPFlags(cmd.Flags()); err != nil {
		return nil, zerr.Wrap(err, "bind flags")
	}
	if err := l.readConfigFile(l.v.GetString("config")); err != nil {
		return nil, err
	}

	cfg := &Config{
		NixpkgsPath:     l.v.GetString("nixpkgs-path"),
		InputFile:       l.v.GetString("input-file"),
		OutputFile:      l.v.GetString("output-file"),
		Jobs:            l.v.GetInt("jobs"),
		KeepGoing:       l.v.GetBool("keep-going"),
		Progress:        l.v.GetBool("progress"),
		LogLevel:        l.v.GetString("log-level"),
		Verbose:         l.v.GetBool("verbose"),
		NoCache:         l.v.GetBool("no-cache"),
		CacheBackend:    l.v.GetString("cache-backend"),
		CacheDir:        l.v.GetString("cache-dir"),
		RedisAddr:       l.v.GetString("redis-addr"),
		SingleFlight:    l.v.GetBool("single-flight"),
		CatalogBackend:  l.v.GetString("catalog-backend"),
		MongoURI:        l.v.GetString("mongo-uri"),
		MongoDatabase:   l.v.GetString("mongo-database"),
		MongoCollection: l.v.GetString("mongo-collection"),
		GitHubToken:     l.v.GetString("github-token"),
		GitHubAPIURL:    l.v.GetString("github-api-url"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
