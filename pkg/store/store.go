// Package store persists resolved dependency graphs.
//
// Two implementations exist: [MemoryStore] for tests and cache-less serving,
// and [MongoStore] backed by a MongoDB collection keyed by graph ID.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/thicketlab/thicket/pkg/resolve"
)

// ErrNotFound is returned when no graph exists under the requested ID.
var ErrNotFound = errors.New("graph not found")

// GraphSummary is the listing projection of a stored graph.
type GraphSummary struct {
	ID         string `json:"id" bson:"_id"`
	Root       string `json:"root" bson:"root"`
	Platform   string `json:"platform" bson:"platform"`
	NodeCount  int    `json:"node_count" bson:"node_count"`
	ResolvedAt string `json:"resolved_at" bson:"resolved_at"`
}

// Store persists and retrieves resolved graphs.
type Store interface {
	Save(ctx context.Context, g *resolve.Graph) error
	Graph(ctx context.Context, id string) (*resolve.Graph, error)
	List(ctx context.Context, limit int) ([]GraphSummary, error)
	Close(ctx context.Context) error
}

// MemoryStore keeps graphs in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]*resolve.Graph
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]*resolve.Graph)}
}

// Save stores or replaces a graph under its ID.
func (s *MemoryStore) Save(_ context.Context, g *resolve.Graph) error {
	s.mu.Lock()
	s.graphs[g.ID] = g
	s.mu.Unlock()
	return nil
}

// Graph returns the graph stored under id, or [ErrNotFound].
func (s *MemoryStore) Graph(_ context.Context, id string) (*resolve.Graph, error) {
	s.mu.RLock()
	g, ok := s.graphs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// List returns summaries of stored graphs, newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]GraphSummary, error) {
	s.mu.RLock()
	out := make([]GraphSummary, 0, len(s.graphs))
	for _, g := range s.graphs {
		out = append(out, summarize(g))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ResolvedAt > out[j].ResolvedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

func summarize(g *resolve.Graph) GraphSummary {
	return GraphSummary{
		ID:         g.ID,
		Root:       g.Root.String(),
		Platform:   g.Platform,
		NodeCount:  len(g.Nodes),
		ResolvedAt: g.ResolvedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
