package resolve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thicketlab/thicket/pkg/maven"
)

// DefaultMaxDepth bounds graph expansion when Options.MaxDepth is zero.
const DefaultMaxDepth = 100

// Options controls graph resolution.
type Options struct {
	// Scope is a classpath-style filter: "compile", "runtime", "test", or
	// empty for everything.
	Scope string

	// IncludeOptional includes the root's own optional dependencies.
	// Optional declarations below the root never propagate either way.
	IncludeOptional bool

	// Platforms to simulate. Empty means the environment's host platform.
	// One graph is produced per platform.
	Platforms []maven.Platform

	// MaxDepth bounds expansion; zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) withDefaults(host maven.Platform) Options {
	if len(o.Platforms) == 0 {
		o.Platforms = []maven.Platform{host}
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Resolve builds one dependency graph per requested platform, concurrently.
// Graphs come back in the order the platforms were requested.
func (e *Environment) Resolve(ctx context.Context, root maven.Coordinate, opts Options) ([]*Graph, error) {
	opts = opts.withDefaults(e.host)
	if !ValidScopeFilter(opts.Scope) {
		return nil, maven.New(maven.ErrCodeUnresolvableCoordinate, "unknown scope filter %q", opts.Scope)
	}
	graphs := make([]*Graph, len(opts.Platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, platform := range opts.Platforms {
		g.Go(func() error {
			graph, err := e.resolveOn(gctx, root, platform, opts)
			if err != nil {
				return err
			}
			graphs[i] = graph
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

// ResolveGraph builds the dependency graph for a single platform: the first
// requested one, or the host.
func (e *Environment) ResolveGraph(ctx context.Context, root maven.Coordinate, opts Options) (*Graph, error) {
	opts = opts.withDefaults(e.host)
	opts.Platforms = opts.Platforms[:1]
	graphs, err := e.Resolve(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return graphs[0], nil
}

func (e *Environment) resolveOn(ctx context.Context, root maven.Coordinate, platform maven.Platform, opts Options) (*Graph, error) {
	b := &treeBuilder{env: e, platform: platform, opts: opts}
	b.addOccurrence(root, root.Key(), 0, "", false, -1, nil)
	if err := b.expand(ctx, 0, nil, []maven.Key{b.occs[0].key}); err != nil {
		return nil, err
	}

	winners := b.selectWinners()
	live := b.settleReachability(winners)

	graph := &Graph{
		ID:              uuid.NewString(),
		Root:            root,
		Platform:        platform.ID(),
		ScopeFilter:     opts.Scope,
		IncludeOptional: opts.IncludeOptional,
		ResolvedAt:      time.Now().UTC(),
	}
	b.emit(graph, winners, live)
	e.logf("resolved %s on %s: %d nodes, %d edges", root, platform.ID(), len(graph.Nodes), len(graph.Edges))
	return graph, nil
}

// occurrence is one appearance of a GACT in the candidate tree, before
// mediation. Index order is preorder visit order.
type occurrence struct {
	coord       maven.Coordinate
	key         maven.Key
	depth       int
	scope       string // effective scope, "" for the root
	conditional bool
	parent      int // -1 for the root
	children    []int
	// excl is the exclusion set active inside this occurrence's subtree:
	// everything accumulated on the path plus the declaring edge's own
	// exclusions. Consulted again at emit time when mediation grafts a
	// winner expanded under weaker exclusions.
	excl []maven.Exclusion
}

type treeBuilder struct {
	env      *Environment
	platform maven.Platform
	opts     Options

	occs  []occurrence
	byKey map[maven.Key][]int
	diags []Diagnostic
}

func (b *treeBuilder) addOccurrence(c maven.Coordinate, k maven.Key, depth int, scope string, conditional bool, parent int, excl []maven.Exclusion) int {
	idx := len(b.occs)
	b.occs = append(b.occs, occurrence{
		coord:       c,
		key:         k,
		depth:       depth,
		scope:       scope,
		conditional: conditional,
		parent:      parent,
		excl:        excl,
	})
	if b.byKey == nil {
		b.byKey = make(map[maven.Key][]int)
	}
	b.byKey[k] = append(b.byKey[k], idx)
	if parent >= 0 {
		b.occs[parent].children = append(b.occs[parent].children, idx)
	}
	return idx
}

func (b *treeBuilder) diag(kind string, c maven.Coordinate, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{
		Kind:       kind,
		Coordinate: c.String(),
		Detail:     fmt.Sprintf(format, args...),
	})
}

// expand grows the candidate subtree under occurrence idx. excl is the
// exclusion set accumulated along the path, path the GACT keys on it.
// Every occurrence is expanded under its own version, so mediation can later
// pick any occurrence and its subtree is already correct for that version.
func (b *treeBuilder) expand(ctx context.Context, idx int, excl []maven.Exclusion, path []maven.Key) error {
	occ := b.occs[idx]
	model, err := b.env.modelFor(ctx, occ.coord, b.platform, nil)
	if err != nil {
		if occ.depth == 0 {
			return err
		}
		return maven.WithPath(err, maven.ErrCodeUnresolvableCoordinate, occ.coord)
	}

	for _, dep := range model.Dependencies {
		key := dep.Key()

		if dep.Optional && !(b.opts.IncludeOptional && occ.depth == 0) {
			b.diag(DiagOptionalSkipped, dep.Coordinate(), "optional, declared by %s", occ.coord)
			continue
		}
		if excluded(excl, key) {
			b.diag(DiagExcluded, dep.Coordinate(), "excluded on the path to %s", occ.coord)
			continue
		}

		scope := dep.Scope
		if occ.depth > 0 {
			scope = propagateScope(occ.scope, dep.Scope)
			if scope == "" {
				b.diag(DiagScopeFiltered, dep.Coordinate(), "%s scope does not propagate past %s", dep.Scope, occ.coord)
				continue
			}
		}
		if !scopeIncluded(b.opts.Scope, scope) {
			b.diag(DiagScopeFiltered, dep.Coordinate(), "%s scope outside the %s filter", scope, b.opts.Scope)
			continue
		}

		coord, err := b.pinVersion(ctx, dep.Dependency)
		if err != nil {
			return maven.WithPath(err, maven.ErrCodeUnresolvableCoordinate, occ.coord)
		}

		if onPath(path, key) {
			b.diag(DiagCycleTrimmed, coord, "already on the path through %s", occ.coord)
			continue
		}
		if occ.depth+1 > b.opts.MaxDepth {
			b.diag(DiagDepthLimited, coord, "expansion stopped at depth %d", b.opts.MaxDepth)
			continue
		}

		childExcl := excl
		if len(dep.Exclusions) > 0 {
			childExcl = make([]maven.Exclusion, 0, len(excl)+len(dep.Exclusions))
			childExcl = append(childExcl, excl...)
			childExcl = append(childExcl, dep.Exclusions...)
		}
		child := b.addOccurrence(coord, key, occ.depth+1, scope, occ.conditional || dep.PlatformConditional, idx, childExcl)
		if err := b.expand(ctx, child, childExcl, append(path, key)); err != nil {
			return err
		}
	}
	return nil
}

// pinVersion turns a declaration into a concrete coordinate, consulting
// repository metadata for floating versions.
func (b *treeBuilder) pinVersion(ctx context.Context, dep maven.Dependency) (maven.Coordinate, error) {
	c := dep.Coordinate()
	switch dep.Version {
	case "", "RELEASE", "LATEST":
	default:
		return c, nil
	}
	meta, err := b.env.Metadata(ctx, dep.Group, dep.Artifact)
	if err != nil {
		return c, maven.Wrap(maven.ErrCodeUnresolvableCoordinate, err,
			"no version declared for %s:%s and metadata lookup failed", dep.Group, dep.Artifact)
	}
	version := meta.LastVersion()
	if dep.Version != "LATEST" && meta.Release != "" {
		version = meta.Release
	}
	if version == "" {
		return c, maven.New(maven.ErrCodeUnresolvableCoordinate,
			"no version declared for %s:%s and metadata lists none", dep.Group, dep.Artifact)
	}
	c.Version = version
	return c, nil
}

// selectWinners picks, per GACT, the occurrence at minimum depth, breaking
// ties by first declaration in preorder.
func (b *treeBuilder) selectWinners() map[maven.Key]int {
	winners := make(map[maven.Key]int, len(b.byKey))
	for key, list := range b.byKey {
		winners[key] = bestOccurrence(b.occs, list)
	}
	return winners
}

func bestOccurrence(occs []occurrence, list []int) int {
	best := list[0]
	for _, idx := range list[1:] {
		if occs[idx].depth < occs[best].depth {
			best = idx
		}
	}
	return best
}

// settleReachability walks the tree descending only into winning occurrences
// and re-elects winners whose occurrence became unreachable after pruning.
// Each round either reaches a fixpoint or moves one key to a strictly later
// candidate, so the loop is bounded by the occurrence count.
func (b *treeBuilder) settleReachability(winners map[maven.Key]int) map[int]bool {
	keys := make([]maven.Key, 0, len(b.byKey))
	for key := range b.byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for {
		live := map[int]bool{}
		b.markLive(0, winners, live)

		changed := false
		for _, key := range keys {
			if live[winners[key]] {
				continue
			}
			// The winner was orphaned by pruning. Re-elect among the
			// occurrences whose parent survived.
			attachable := make([]int, 0, len(b.byKey[key]))
			for _, idx := range b.byKey[key] {
				if live[b.occs[idx].parent] {
					attachable = append(attachable, idx)
				}
			}
			if len(attachable) == 0 {
				continue
			}
			next := bestOccurrence(b.occs, attachable)
			if next != winners[key] {
				winners[key] = next
				changed = true
			}
		}
		if !changed {
			return live
		}
	}
}

func (b *treeBuilder) markLive(idx int, winners map[maven.Key]int, live map[int]bool) {
	live[idx] = true
	for _, child := range b.occs[idx].children {
		if winners[b.occs[child].key] == child {
			b.markLive(child, winners, live)
		}
	}
}

// emit writes the mediated graph: one node per surviving GACT, edges from
// every live occurrence to its surviving children, deduplicated, in preorder.
//
// An edge to a mediated winner is dropped when the winner's surviving
// subtree carries a key the edge's path excludes: the winner was expanded
// under its own, possibly weaker, exclusion set, and grafting it below an
// excluding declarer would put the excluded component under that edge.
func (b *treeBuilder) emit(graph *Graph, winners map[maven.Key]int, live map[int]bool) {
	graph.Diagnostics = b.diags

	type edgeKey struct{ from, to string }
	seenNode := map[maven.Key]bool{}
	seenEdge := map[edgeKey]bool{}
	subtrees := map[int]map[maven.Key]bool{}

	var visit func(idx int)
	visit = func(idx int) {
		occ := b.occs[idx]
		if !seenNode[occ.key] {
			seenNode[occ.key] = true
			node := Node{
				Key:        occ.key.String(),
				Coordinate: occ.coord,
				Scope:      occ.scope,
				Depth:      occ.depth,
			}
			if occ.conditional {
				node.Platform = graph.Platform
			}
			graph.Nodes = append(graph.Nodes, node)
		}
		for _, childIdx := range occ.children {
			child := b.occs[childIdx]
			winner := winners[child.key]
			if !live[winner] {
				continue
			}
			if winner != childIdx {
				if k, hit := exclusionHit(child.excl, b.subtreeKeys(winner, winners, live, subtrees)); hit {
					graph.Diagnostics = append(graph.Diagnostics, Diagnostic{
						Kind:       DiagExcluded,
						Coordinate: child.coord.String(),
						Detail: fmt.Sprintf("edge from %s dropped: mediated subtree carries excluded %s",
							occ.coord, k),
					})
					continue
				}
				if b.occs[winner].coord.Version != child.coord.Version {
					graph.Diagnostics = append(graph.Diagnostics, Diagnostic{
						Kind:       DiagMediated,
						Coordinate: child.coord.String(),
						Detail: fmt.Sprintf("lost to %s at depth %d",
							b.occs[winner].coord, b.occs[winner].depth),
					})
				}
			}
			ek := edgeKey{from: occ.key.String(), to: child.key.String()}
			if !seenEdge[ek] {
				seenEdge[ek] = true
				graph.Edges = append(graph.Edges, Edge{
					From:  ek.from,
					To:    ek.to,
					Scope: child.scope,
					Depth: child.depth,
				})
			}
			if winner == childIdx {
				visit(childIdx)
			}
		}
	}
	visit(0)
}

// subtreeKeys collects the GACT keys of the surviving subtree rooted at the
// winning occurrence idx, the occurrence itself included: its live candidate
// children plus, recursively, the subtrees of their winners. memo doubles as
// the revisit guard; an in-progress entry's remaining keys are accounted for
// by the caller that opened it.
func (b *treeBuilder) subtreeKeys(idx int, winners map[maven.Key]int, live map[int]bool, memo map[int]map[maven.Key]bool) map[maven.Key]bool {
	if s, ok := memo[idx]; ok {
		return s
	}
	s := map[maven.Key]bool{b.occs[idx].key: true}
	memo[idx] = s
	for _, childIdx := range b.occs[idx].children {
		winner := winners[b.occs[childIdx].key]
		if !live[winner] {
			continue
		}
		for k := range b.subtreeKeys(winner, winners, live, memo) {
			s[k] = true
		}
	}
	return s
}

// exclusionHit reports the first key, in sorted order, that the exclusion
// set matches.
func exclusionHit(excl []maven.Exclusion, keys map[maven.Key]bool) (maven.Key, bool) {
	if len(excl) == 0 {
		return maven.Key{}, false
	}
	sorted := make([]maven.Key, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	for _, k := range sorted {
		if excluded(excl, k) {
			return k, true
		}
	}
	return maven.Key{}, false
}

func excluded(excl []maven.Exclusion, k maven.Key) bool {
	for _, ex := range excl {
		if ex.Matches(k) {
			return true
		}
	}
	return false
}

func onPath(path []maven.Key, k maven.Key) bool {
	for _, p := range path {
		if p == k {
			return true
		}
	}
	return false
}
