package resolve

import (
	"time"

	"github.com/thicketlab/thicket/pkg/maven"
)

// Diagnostic kinds recorded on effective models and resolution graphs.
// Diagnostics are observations, never errors: mediation losses, exclusion
// skips, and key collapses are expected outcomes of resolution.
const (
	// DiagCollapsedKey: two declarations interpolated onto the same GACT;
	// the later one in merge order was dropped.
	DiagCollapsedKey = "collapsed-key"
	// DiagMediated: an occurrence of a GACT lost nearest-wins mediation.
	DiagMediated = "mediated"
	// DiagExcluded: an edge was skipped by an exclusion on its path.
	DiagExcluded = "excluded"
	// DiagOptionalSkipped: an optional dependency was skipped.
	DiagOptionalSkipped = "optional-skipped"
	// DiagScopeFiltered: an edge fell outside the requested scope filter or
	// its scope does not propagate transitively.
	DiagScopeFiltered = "scope-filtered"
	// DiagCycleTrimmed: a dependency edge pointed back into its own path
	// and was not expanded further.
	DiagCycleTrimmed = "cycle-trimmed"
	// DiagDepthLimited: expansion stopped at the configured maximum depth.
	DiagDepthLimited = "depth-limited"
)

// Diagnostic records a non-fatal resolution observation.
type Diagnostic struct {
	Kind       string `json:"kind" bson:"kind"`
	Coordinate string `json:"coordinate" bson:"coordinate"`
	Detail     string `json:"detail,omitempty" bson:"detail,omitempty"`
}

// Graph is an immutable resolved dependency graph for one root coordinate on
// one platform. Nodes and edges are listed in the deterministic pre-order
// the resolver visited them; re-resolving against unchanged repository state
// yields an identical graph.
type Graph struct {
	ID              string            `json:"id" bson:"_id"`
	Root            maven.Coordinate  `json:"root" bson:"root"`
	Platform        string            `json:"platform" bson:"platform"`
	ScopeFilter     string            `json:"scope_filter,omitempty" bson:"scope_filter,omitempty"`
	IncludeOptional bool              `json:"include_optional,omitempty" bson:"include_optional,omitempty"`
	Nodes           []Node            `json:"nodes" bson:"nodes"`
	Edges           []Edge            `json:"edges" bson:"edges"`
	Diagnostics     []Diagnostic      `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
	ResolvedAt      time.Time         `json:"resolved_at" bson:"resolved_at"`
}

// Node is one surviving component in the graph, keyed by its GACT string.
// At most one node exists per GACT.
type Node struct {
	Key        string           `json:"key" bson:"key"`
	Coordinate maven.Coordinate `json:"coordinate" bson:"coordinate"`
	Scope      string           `json:"scope,omitempty" bson:"scope,omitempty"` // effective scope, empty for the root
	Depth      int              `json:"depth" bson:"depth"`
	// Platform is set when the node entered the graph only through a
	// platform-conditional profile, so consumers can emit
	// platform-conditioned entries.
	Platform string `json:"platform,omitempty" bson:"platform,omitempty"`
}

// Edge records a "depends on" relation between two surviving GACTs.
type Edge struct {
	From  string `json:"from" bson:"from"`
	To    string `json:"to" bson:"to"`
	Scope string `json:"scope,omitempty" bson:"scope,omitempty"`
	Depth int    `json:"depth" bson:"depth"` // depth of the child end
}

// Node returns the node with the given GACT key, if present.
func (g *Graph) Node(key string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// Dependencies returns the keys of the nodes the given key points at,
// in edge order.
func (g *Graph) Dependencies(key string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.From == key {
			out = append(out, e.To)
		}
	}
	return out
}
