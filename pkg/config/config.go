// Package config loads the thicket.toml environment configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Source kinds accepted in the [[sources]] table.
const (
	SourceLocal  = "local"
	SourceNexus2 = "nexus2"
	SourceRemote = "remote"
)

// Cache backend names accepted in the [cache] table.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the top-level thicket.toml document.
type Config struct {
	Sources []SourceConfig `toml:"sources"`
	Cache   CacheConfig    `toml:"cache"`
	Store   StoreConfig    `toml:"store"`
	Server  ServerConfig   `toml:"server"`
}

// SourceConfig describes one repository source, probed in file order.
type SourceConfig struct {
	Kind string `toml:"kind"` // local, nexus2, or remote
	Name string `toml:"name"`
	Path string `toml:"path,omitempty"` // local / nexus2
	URL  string `toml:"url,omitempty"`  // remote
}

// CacheConfig selects the byte-cache backend for remote fetches.
type CacheConfig struct {
	Backend string   `toml:"backend"` // file, redis, or none
	Dir     string   `toml:"dir,omitempty"`
	TTL     Duration `toml:"ttl,omitempty"` // e.g. "24h"

	Redis RedisConfig `toml:"redis"`
}

// Duration is a time.Duration that unmarshals from TOML strings like "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db,omitempty"`
	Prefix   string `toml:"prefix,omitempty"`
}

// StoreConfig configures graph persistence. An empty URI selects the
// in-memory store.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri,omitempty"`
	Database   string `toml:"database,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists: the user's
// local repository tree, Maven Central, and the SciJava mirror, with a file
// cache under the user cache dir.
func Default() Config {
	home, _ := os.UserHomeDir()
	cacheDir, _ := os.UserCacheDir()
	return Config{
		Sources: []SourceConfig{
			{Kind: SourceLocal, Name: "local", Path: filepath.Join(home, ".m2", "repository")},
			{Kind: SourceRemote, Name: "central", URL: "https://repo.maven.apache.org/maven2"},
			{Kind: SourceRemote, Name: "scijava.public", URL: "https://maven.scijava.org/content/groups/public"},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     filepath.Join(cacheDir, "thicket"),
			TTL:     Duration(24 * time.Hour),
		},
		Store: StoreConfig{
			Database:   "thicket",
			Collection: "graphs",
		},
		Server: ServerConfig{
			Addr: ":8764",
		},
	}
}

// Load reads path, falling back to [Default] when path is empty or the file
// does not exist. Partial files are merged over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return merge(cfg, file), nil
}

// DefaultPath returns the conventional config location,
// $XDG_CONFIG_HOME/thicket/thicket.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "thicket.toml"
	}
	return filepath.Join(dir, "thicket", "thicket.toml")
}

func merge(base, file Config) Config {
	if len(file.Sources) > 0 {
		base.Sources = file.Sources
	}
	if file.Cache.Backend != "" {
		base.Cache.Backend = file.Cache.Backend
	}
	if file.Cache.Dir != "" {
		base.Cache.Dir = file.Cache.Dir
	}
	if file.Cache.TTL > 0 {
		base.Cache.TTL = file.Cache.TTL
	}
	if file.Cache.Redis.Addr != "" {
		base.Cache.Redis = file.Cache.Redis
	}
	if file.Store.MongoURI != "" {
		base.Store.MongoURI = file.Store.MongoURI
	}
	if file.Store.Database != "" {
		base.Store.Database = file.Store.Database
	}
	if file.Store.Collection != "" {
		base.Store.Collection = file.Store.Collection
	}
	if file.Server.Addr != "" {
		base.Server.Addr = file.Server.Addr
	}
	return base
}

// Validate checks the source table for the mistakes a hand-edited file is
// likely to contain.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	seen := map[string]bool{}
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: missing name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		switch s.Kind {
		case SourceLocal, SourceNexus2:
			if s.Path == "" {
				return fmt.Errorf("source %q: %s source needs a path", s.Name, s.Kind)
			}
		case SourceRemote:
			if s.URL == "" {
				return fmt.Errorf("source %q: remote source needs a url", s.Name)
			}
		default:
			return fmt.Errorf("source %q: unknown kind %q", s.Name, s.Kind)
		}
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache: redis backend needs an addr")
		}
	default:
		return fmt.Errorf("cache: unknown backend %q", c.Cache.Backend)
	}
	return nil
}
