package repo

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/thicketlab/thicket/pkg/maven"
)

// Repository is a priority-ordered stack of sources with a per-(source,path)
// fetch cache. Negative results and transient failures are cached alongside
// successes, so a path is fetched from a given source at most once per
// Repository lifetime. All methods are safe for concurrent use.
type Repository struct {
	sources []Source
	logf    func(string, ...any)

	flight  singleflight.Group
	mu      sync.Mutex
	results map[string]fetchResult
}

type fetchResult struct {
	data []byte
	err  error
}

// New creates a Repository over the given sources, highest priority first.
// logf receives per-source skip notices; nil discards them.
func New(sources []Source, logf func(string, ...any)) *Repository {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Repository{
		sources: sources,
		logf:    logf,
		results: make(map[string]fetchResult),
	}
}

// Sources returns the configured source names in priority order.
func (r *Repository) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Descriptor returns the raw descriptor bytes for a coordinate, first source
// wins. Fails with UNRESOLVABLE_COORDINATE when no source has it.
func (r *Repository) Descriptor(ctx context.Context, c maven.Coordinate) ([]byte, error) {
	data, _, err := r.bytes(ctx, DescriptorPath(c))
	if err != nil {
		return nil, maven.Wrap(maven.ErrCodeUnresolvableCoordinate, err, "no source has a descriptor for %s", c)
	}
	return data, nil
}

// Artifact returns the main artifact bytes for a coordinate, first source
// wins.
func (r *Repository) Artifact(ctx context.Context, c maven.Coordinate) ([]byte, error) {
	data, _, err := r.bytes(ctx, ArtifactPath(c))
	if err != nil {
		return nil, maven.Wrap(maven.ErrCodeUnresolvableCoordinate, err, "no source has an artifact for %s", c)
	}
	return data, nil
}

// Metadata returns the merged metadata for a group:artifact. Unlike
// descriptor lookups, metadata is collected from every source and merged
// per-field by freshness; version lists are unioned in source priority
// order. Fails with UNRESOLVABLE_COORDINATE when no source has any metadata.
func (r *Repository) Metadata(ctx context.Context, group, artifact string) (*maven.Metadata, error) {
	path := MetadataPath(group, artifact)
	var records []*maven.Metadata
	for _, src := range r.sources {
		data, err := r.fetch(ctx, src, path)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				r.logf("source %s: %v", src.Name(), err)
			}
			continue
		}
		md, err := maven.ParseMetadata(data)
		if err != nil {
			r.logf("source %s: bad metadata for %s:%s: %v", src.Name(), group, artifact, err)
			continue
		}
		records = append(records, md)
	}
	if len(records) == 0 {
		return nil, maven.New(maven.ErrCodeUnresolvableCoordinate, "no source has metadata for %s:%s", group, artifact)
	}
	merged := maven.MergeMetadata(records)
	if merged.Group == "" {
		merged.Group = group
	}
	if merged.Artifact == "" {
		merged.Artifact = artifact
	}
	return merged, nil
}

// bytes walks the sources in priority order and returns the first hit along
// with the winning source's name. Transient source errors are recorded and
// skipped; they only surface when every source fails.
func (r *Repository) bytes(ctx context.Context, path string) ([]byte, string, error) {
	var ioErr error
	for _, src := range r.sources {
		data, err := r.fetch(ctx, src, path)
		if err == nil {
			return data, src.Name(), nil
		}
		if !errors.Is(err, ErrNotFound) {
			r.logf("source %s: %v", src.Name(), err)
			if ioErr == nil {
				ioErr = maven.Wrap(maven.ErrCodeRepositoryIO, err, "source %s failed for %s", src.Name(), path)
			}
		}
	}
	if ioErr != nil {
		return nil, "", ioErr
	}
	return nil, "", ErrNotFound
}

// fetch returns the cached result for (source, path), performing the fetch
// at most once under a single-flight discipline: concurrent requesters of an
// in-progress path wait for and share that result.
func (r *Repository) fetch(ctx context.Context, src Source, path string) ([]byte, error) {
	key := src.Name() + "\x00" + path

	r.mu.Lock()
	if res, ok := r.results[key]; ok {
		r.mu.Unlock()
		return res.data, res.err
	}
	r.mu.Unlock()

	v, err, _ := r.flight.Do(key, func() (any, error) {
		data, err := src.Fetch(ctx, path)
		r.mu.Lock()
		r.results[key] = fetchResult{data: data, err: err}
		r.mu.Unlock()
		return data, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
