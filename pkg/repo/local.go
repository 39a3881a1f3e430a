package repo

import (
	"context"
	"os"
	"path/filepath"
	"sort"
)

// LocalSource reads from a local repository cache laid out as a standard
// repository tree, such as ~/.m2/repository.
type LocalSource struct {
	name string
	root string
}

// NewLocalSource creates a source over the repository tree at root.
func NewLocalSource(name, root string) *LocalSource {
	return &LocalSource{name: name, root: root}
}

// Name returns the configured source name.
func (s *LocalSource) Name() string { return s.name }

// Fetch reads the file at the repository-relative path.
func (s *LocalSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

var _ Source = (*LocalSource)(nil)

// Nexus2Source reads directly from a Nexus 2 storage directory, which holds
// one repository tree per hosted/proxied repository:
//
//	<storage>/central/org/scijava/...
//	<storage>/sonatype-s01/org/scijava/...
//
// The repository subdirectories are probed in lexicographic order and the
// first hit wins. Running the resolver on the server that hosts the Nexus
// avoids the HTTP round trip entirely.
type Nexus2Source struct {
	name    string
	storage string
}

// NewNexus2Source creates a source over a Nexus 2 storage directory.
func NewNexus2Source(name, storage string) *Nexus2Source {
	return &Nexus2Source{name: name, storage: storage}
}

// Name returns the configured source name.
func (s *Nexus2Source) Name() string { return s.name }

// Fetch probes each repository subdirectory for the path.
func (s *Nexus2Source) Fetch(ctx context.Context, path string) ([]byte, error) {
	entries, err := os.ReadDir(s.storage)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, repo := range names {
		data, err := os.ReadFile(filepath.Join(s.storage, repo, filepath.FromSlash(path)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, ErrNotFound
}

var _ Source = (*Nexus2Source)(nil)
