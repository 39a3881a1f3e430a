// Package repo implements layered repository access for descriptor and
// metadata lookups.
//
// A [Repository] consults an ordered list of [Source] implementations: a
// local repository tree, a Nexus2-style storage directory, or a remote HTTP
// repository. Descriptor lookups are first-wins in priority order; metadata
// lookups are merged across every source. Every fetch result, including
// negative ones, is cached per (source, path) for the lifetime of the
// Repository, under a single-flight discipline so concurrent requesters of
// the same path share one fetch.
package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/thicketlab/thicket/pkg/maven"
)

// ErrNotFound is returned by a Source when the path definitively does not
// exist there. It is a per-source answer, not a resolution failure; the
// Repository keeps trying lower-priority sources.
var ErrNotFound = errors.New("not found")

// Source produces raw bytes for repository-relative paths.
//
// Fetch returns ErrNotFound for a definitively absent path and any other
// error for transient source failures (which the Repository records and
// skips). Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in diagnostics and cache keys.
	Name() string
	// Fetch retrieves the bytes at a repository-relative path such as
	// "org/scijava/scijava-common/2.94.2/scijava-common-2.94.2.pom".
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// DescriptorPath returns the repository-relative path of a coordinate's
// project descriptor.
func DescriptorPath(c maven.Coordinate) string {
	pom := maven.Coordinate{Group: c.Group, Artifact: c.Artifact, Version: c.Version, Type: "pom"}
	return strings.Join([]string{groupPath(c.Group), c.Artifact, c.Version, pom.Filename()}, "/")
}

// ArtifactPath returns the repository-relative path of a coordinate's main
// artifact file.
func ArtifactPath(c maven.Coordinate) string {
	return strings.Join([]string{groupPath(c.Group), c.Artifact, c.Version, c.Filename()}, "/")
}

// MetadataPath returns the repository-relative path of the project-level
// maven-metadata.xml for a group:artifact.
func MetadataPath(group, artifact string) string {
	return strings.Join([]string{groupPath(group), artifact, "maven-metadata.xml"}, "/")
}

func groupPath(group string) string {
	return strings.ReplaceAll(group, ".", "/")
}
