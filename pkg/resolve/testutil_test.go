package resolve

import (
	"context"
	"sync"

	"github.com/thicketlab/thicket/pkg/maven"
)

// fakeSource is an in-memory DescriptorSource keyed by group:artifact:version.
type fakeSource struct {
	mu    sync.Mutex
	poms  map[string]string
	meta  map[string]*maven.Metadata
	calls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		poms:  make(map[string]string),
		meta:  make(map[string]*maven.Metadata),
		calls: make(map[string]int),
	}
}

func (f *fakeSource) add(gav, pom string) *fakeSource {
	f.poms[gav] = pom
	return f
}

func (f *fakeSource) Descriptor(_ context.Context, c maven.Coordinate) ([]byte, error) {
	key := c.Group + ":" + c.Artifact + ":" + c.Version
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
	if pom, ok := f.poms[key]; ok {
		return []byte(pom), nil
	}
	return nil, maven.New(maven.ErrCodeUnresolvableCoordinate, "no descriptor for %s", key)
}

func (f *fakeSource) Metadata(_ context.Context, group, artifact string) (*maven.Metadata, error) {
	if md, ok := f.meta[group+":"+artifact]; ok {
		return md, nil
	}
	return nil, maven.New(maven.ErrCodeUnresolvableCoordinate, "no metadata for %s:%s", group, artifact)
}

func (f *fakeSource) fetchCount(gav string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[gav]
}

var testPlatform = maven.Platform{OSFamily: maven.FamilyUnix, OSName: "linux", Arch: "amd64", JDK: "11.0.2"}

func testEnv(src *fakeSource) *Environment {
	return NewEnvironment(src, EnvConfig{Host: testPlatform})
}

func coord(gav string) maven.Coordinate {
	c, err := maven.ParseCoordinate(gav)
	if err != nil {
		panic(err)
	}
	return c
}
