// Package config loads catup settings from flags, environment and a TOML
// config file.
package config

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catup/pkg/cache"
	catuperrors "github.com/matzehuels/catup/pkg/errors"
	"github.com/matzehuels/catup/pkg/reconcile"
)

// Default configuration values
const (
	DefaultManifestName    = "catup.csv"
	DefaultCatalogName     = "catup.json"
	DefaultLogLevel        = "info"
	DefaultCacheBackend    = "file"
	DefaultCatalogBackend  = "file"
	DefaultRedisAddr       = "localhost:6379"
	DefaultMongoDatabase   = "catup"
	DefaultMongoCollection = "catalog"
)

// Backend choices.
var (
	CacheBackends   = []string{"file", "bolt", "redis"}
	CatalogBackends = []string{"file", "mongo"}
	LogLevels       = []string{"debug", "info", "warn", "error"}
)

// Config holds the settings for one catup run.
type Config struct {
	// Root of the nixpkgs checkout; relative manifest and catalog paths
	// default into it.
	NixpkgsPath string
	// Manifest file (.csv or .toml)
	InputFile string
	// Catalog JSON file
	OutputFile string

	// Maximum concurrent fetches
	Jobs int
	// Persist partial results when some fetches fail
	KeepGoing bool
	// Show the interactive progress view
	Progress bool

	LogLevel string
	Verbose  bool

	// Disable the persistent cache
	NoCache      bool
	CacheBackend string
	CacheDir     string
	RedisAddr    string
	// Share concurrent identical cache misses
	SingleFlight bool

	CatalogBackend  string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	GitHubToken  string
	GitHubAPIURL string
}

// Level returns the effective log level.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Validate fills derived defaults and checks every field.
func (c *Config) Validate() error {
	if c.NixpkgsPath == "" {
		c.NixpkgsPath = "."
	}
	if abs, err := filepath.Abs(c.NixpkgsPath); err == nil {
		c.NixpkgsPath = abs
	}
	if c.InputFile == "" {
		c.InputFile = filepath.Join(c.NixpkgsPath, DefaultManifestName)
	}
	if c.OutputFile == "" {
		c.OutputFile = filepath.Join(c.NixpkgsPath, DefaultCatalogName)
	}
	for _, p := range []string{c.InputFile, c.OutputFile} {
		if err := catuperrors.ValidatePath(p); err != nil {
			return err
		}
	}

	if c.Jobs <= 0 {
		c.Jobs = reconcile.DefaultJobs
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if err := catuperrors.ValidateChoice("log level", c.LogLevel, LogLevels...); err != nil {
		return err
	}

	if c.CacheBackend == "" {
		c.CacheBackend = DefaultCacheBackend
	}
	if err := catuperrors.ValidateChoice("cache backend", c.CacheBackend, CacheBackends...); err != nil {
		return err
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		return catuperrors.New(catuperrors.ErrCodeInvalidConfig, "redis cache backend requires --redis-addr")
	}

	if c.CatalogBackend == "" {
		c.CatalogBackend = DefaultCatalogBackend
	}
	if err := catuperrors.ValidateChoice("catalog backend", c.CatalogBackend, CatalogBackends...); err != nil {
		return err
	}
	if c.CatalogBackend == "mongo" {
		if err := catuperrors.ValidateURL(c.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return catuperrors.Wrap(catuperrors.ErrCodeInvalidConfig, err, "mongo catalog backend requires --mongo-uri")
		}
		if c.MongoDatabase == "" {
			c.MongoDatabase = DefaultMongoDatabase
		}
		if c.MongoCollection == "" {
			c.MongoCollection = DefaultMongoCollection
		}
	}

	if c.GitHubAPIURL != "" {
		if err := catuperrors.ValidateURL(c.GitHubAPIURL); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedCacheDir returns CacheDir or the default cache directory.
func (c *Config) ResolvedCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return cache.DefaultDir()
}
