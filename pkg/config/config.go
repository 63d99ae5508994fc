// Package config loads canonic's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/canonic/config.toml (see [DefaultPath])
// and every key is optional:
//
//	[search]
//	max_nodes = 100000
//	prune = true
//	descending = false
//	timeout = "30s"
//
//	[cache]
//	backend = "file"        # file, redis or none
//	dir = "/var/cache/canonic"
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	ttl = "720h"
//	scope = "staging:"      # key prefix when deployments share one redis
//
//	[catalog]
//	backend = "badger"      # badger, mongo, memory or none
//	path = "/var/lib/canonic/catalog"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "canonic"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/canonic/pkg/cache"
	"github.com/matzehuels/canonic/pkg/catalog"
	errs "github.com/matzehuels/canonic/pkg/errors"
)

const appName = "canonic"

// Backend names accepted in the [cache] and [catalog] sections.
var (
	CacheBackends   = []string{"file", "redis", "none"}
	CatalogBackends = []string{"badger", "mongo", "memory", "none"}
)

// Config is the parsed configuration file.
type Config struct {
	Search  Search  `toml:"search" json:"search" yaml:"search"`
	Cache   Cache   `toml:"cache" json:"cache" yaml:"cache"`
	Catalog Catalog `toml:"catalog" json:"catalog" yaml:"catalog"`
	Server  Server  `toml:"server" json:"server" yaml:"server"`
}

// Search holds the search defaults applied when a command does not override
// them.
type Search struct {
	MaxNodes   int           `toml:"max_nodes" json:"max_nodes" yaml:"max_nodes"`
	Prune      bool          `toml:"prune" json:"prune" yaml:"prune"`
	Descending bool          `toml:"descending" json:"descending" yaml:"descending"`
	Timeout    time.Duration `toml:"timeout" json:"timeout" yaml:"timeout"`
}

// Cache selects the result cache backend, one of [CacheBackends]. Dir
// applies to "file", the Redis fields to "redis". A non-empty Scope
// prefixes every key.
type Cache struct {
	Backend       string        `toml:"backend" json:"backend" yaml:"backend"`
	Dir           string        `toml:"dir" json:"dir,omitempty" yaml:"dir,omitempty"`
	RedisAddr     string        `toml:"redis_addr" json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string        `toml:"redis_password" json:"-" yaml:"-"`
	RedisDB       int           `toml:"redis_db" json:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `toml:"ttl" json:"ttl" yaml:"ttl"`
	Scope         string        `toml:"scope" json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Catalog selects the isomorphism-class catalog backend, one of
// [CatalogBackends]. Path locates the badger directory; MongoURI is
// required for "mongo".
type Catalog struct {
	Backend       string `toml:"backend" json:"backend" yaml:"backend"`
	Path          string `toml:"path" json:"path,omitempty" yaml:"path,omitempty"`
	MongoURI      string `toml:"mongo_uri" json:"-" yaml:"-"`
	MongoDatabase string `toml:"mongo_database" json:"mongo_database,omitempty" yaml:"mongo_database,omitempty"`
}

// Server configures "canonic serve".
type Server struct {
	Addr            string        `toml:"addr" json:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Search: Search{Prune: true},
		Cache:  Cache{Backend: "file"},
		Catalog: Catalog{
			Backend:       "none",
			MongoDatabase: catalog.DefaultMongoDatabase,
		},
		Server: Server{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/canonic/config.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. An empty path reads [DefaultPath] and
// tolerates its absence; an explicit path must exist. Unknown keys are
// rejected so that typos surface.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and that each selected backend has what it
// needs to connect.
func (c Config) Validate() error {
	if c.Search.MaxNodes < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "search.max_nodes cannot be negative: %d", c.Search.MaxNodes)
	}
	if c.Search.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "search.timeout cannot be negative")
	}
	if !slices.Contains(CacheBackends, c.Cache.Backend) {
		return errs.New(errs.ErrCodeInvalidInput, "cache.backend %q (want one of %s)", c.Cache.Backend, strings.Join(CacheBackends, ", "))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errs.New(errs.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache.ttl cannot be negative")
	}
	if !slices.Contains(CatalogBackends, c.Catalog.Backend) {
		return errs.New(errs.ErrCodeInvalidInput, "catalog.backend %q (want one of %s)", c.Catalog.Backend, strings.Join(CatalogBackends, ", "))
	}
	if c.Catalog.Backend == "mongo" && c.Catalog.MongoURI == "" {
		return errs.New(errs.ErrCodeInvalidInput, "catalog.mongo_uri is required for the mongo backend")
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidInput, "server.addr cannot be empty")
	}
	return nil
}

// Keyer returns the cache keyer for the [cache] section: the default keyer,
// prefixed by scope when one is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Scope)
}

// CatalogOptions converts the [catalog] section for [catalog.Open].
func (c Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		Backend:       c.Catalog.Backend,
		Path:          c.Catalog.Path,
		MongoURI:      c.Catalog.MongoURI,
		MongoDatabase: c.Catalog.MongoDatabase,
	}
}
