package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/thicketlab/thicket/pkg/cache"
	"github.com/thicketlab/thicket/pkg/config"
	"github.com/thicketlab/thicket/pkg/maven"
	"github.com/thicketlab/thicket/pkg/repo"
	"github.com/thicketlab/thicket/pkg/resolve"
)

// newEnvironment assembles the resolution environment from configuration:
// byte cache, repository sources in file order, and the model cache on top.
// The returned cleanup closes the byte cache.
func newEnvironment(ctx context.Context, cfg config.Config, logger *log.Logger, noCache bool) (*resolve.Environment, func(), error) {
	byteCache, err := newByteCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, nil, err
	}

	sources := make([]repo.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		switch sc.Kind {
		case config.SourceLocal:
			sources = append(sources, repo.NewLocalSource(sc.Name, sc.Path))
		case config.SourceNexus2:
			sources = append(sources, repo.NewNexus2Source(sc.Name, sc.Path))
		case config.SourceRemote:
			sources = append(sources, repo.NewRemoteSource(sc.Name, sc.URL, byteCache, cfg.Cache.TTL.Std()))
		default:
			_ = byteCache.Close()
			return nil, nil, fmt.Errorf("source %q: unknown kind %q", sc.Name, sc.Kind)
		}
	}

	logf := func(format string, args ...any) { logger.Debugf(format, args...) }
	env := resolve.NewEnvironment(repo.New(sources, logf), resolve.EnvConfig{Logger: logf})
	cleanup := func() { _ = byteCache.Close() }
	return env, cleanup, nil
}

func newByteCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.CacheFile, "":
		return cache.NewFileCache(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// parsePlatforms turns --platform flag values into simulation targets,
// applying the --jdk override to each.
func parsePlatforms(names []string, jdk string) ([]maven.Platform, error) {
	var out []maven.Platform
	for _, name := range names {
		p, err := maven.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		if jdk != "" {
			p.JDK = jdk
		}
		out = append(out, p)
	}
	if len(out) == 0 && jdk != "" {
		p := maven.HostPlatform()
		p.JDK = jdk
		out = append(out, p)
	}
	return out, nil
}
