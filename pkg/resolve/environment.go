package resolve

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/thicketlab/thicket/pkg/maven"
)

// DescriptorSource supplies raw descriptor and metadata bytes per
// coordinate. *repo.Repository implements it; tests substitute in-memory
// fakes.
type DescriptorSource interface {
	Descriptor(ctx context.Context, c maven.Coordinate) ([]byte, error)
	Metadata(ctx context.Context, group, artifact string) (*maven.Metadata, error)
}

// Environment is an independent cache domain for resolution. Effective
// models are memoized per (coordinate, platform) for its lifetime, failures
// included: a coordinate that failed once fails fast until [Environment.Reset].
// All methods are safe for concurrent use.
type Environment struct {
	source DescriptorSource
	logf   func(string, ...any)
	host   maven.Platform

	flight singleflight.Group
	mu     sync.Mutex
	models map[modelKey]modelResult
}

// EnvConfig configures an Environment.
type EnvConfig struct {
	// Logger receives progress and skip notices; nil discards them.
	Logger func(string, ...any)
	// Host overrides the default simulation target. The zero value means
	// the platform the resolver runs on.
	Host maven.Platform
}

type modelKey struct {
	coord    maven.Coordinate
	platform string
}

type modelResult struct {
	model *EffectiveModel
	err   error
}

// NewEnvironment creates an Environment over the given descriptor source.
func NewEnvironment(source DescriptorSource, cfg EnvConfig) *Environment {
	logf := cfg.Logger
	if logf == nil {
		logf = func(string, ...any) {}
	}
	host := cfg.Host
	if host.IsZero() {
		host = maven.HostPlatform()
	}
	return &Environment{
		source: source,
		logf:   logf,
		host:   host,
		models: make(map[modelKey]modelResult),
	}
}

// Host returns the default platform profile activation is evaluated against.
func (e *Environment) Host() maven.Platform { return e.host }

// Metadata returns the merged repository metadata for a project.
func (e *Environment) Metadata(ctx context.Context, group, artifact string) (*maven.Metadata, error) {
	return e.source.Metadata(ctx, group, artifact)
}

// EffectiveModel returns the memoized effective model of a coordinate,
// evaluated against the host platform.
func (e *Environment) EffectiveModel(ctx context.Context, c maven.Coordinate) (*EffectiveModel, error) {
	return e.EffectiveModelFor(ctx, c, e.host)
}

// EffectiveModelFor returns the memoized effective model of a coordinate,
// with profile activation evaluated against the given platform.
func (e *Environment) EffectiveModelFor(ctx context.Context, c maven.Coordinate, p maven.Platform) (*EffectiveModel, error) {
	return e.modelFor(ctx, c, p, nil)
}

// Reset drops every cached model, successes and failures alike. The
// underlying repository caches are unaffected.
func (e *Environment) Reset() {
	e.mu.Lock()
	e.models = make(map[modelKey]modelResult)
	e.mu.Unlock()
}

// modelFor builds or returns the cached model. chain is the in-progress
// parent lineage leading to this build; revisiting a coordinate on it is a
// cycle. The cycle check runs before the single-flight gate, so a cyclic
// chain can never deadlock on its own in-progress build.
func (e *Environment) modelFor(ctx context.Context, c maven.Coordinate, p maven.Platform, chain []maven.Coordinate) (*EffectiveModel, error) {
	for _, anc := range chain {
		if anc == c {
			return nil, cycleError(chain, c)
		}
	}

	key := modelKey{coord: c, platform: p.ID()}
	e.mu.Lock()
	if res, ok := e.models[key]; ok {
		e.mu.Unlock()
		return res.model, res.err
	}
	e.mu.Unlock()

	flightKey := c.String() + "\x00" + p.ID()
	v, err, _ := e.flight.Do(flightKey, func() (any, error) {
		model, err := e.buildModel(ctx, c, p, append(chain, c))
		e.mu.Lock()
		e.models[key] = modelResult{model: model, err: err}
		e.mu.Unlock()
		return model, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*EffectiveModel), nil
}

func cycleError(chain []maven.Coordinate, repeat maven.Coordinate) error {
	var err error = maven.New(maven.ErrCodeCyclicDependency, "parent chain revisits %s", repeat)
	for i := len(chain) - 1; i >= 0; i-- {
		err = maven.WithPath(err, maven.ErrCodeCyclicDependency, chain[i])
	}
	return err
}
