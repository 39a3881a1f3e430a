package resolve

import (
	"context"
	"reflect"
	"testing"

	"github.com/thicketlab/thicket/pkg/maven"
)

func simplePOM(artifact, version, deps string) string {
	return `<project><groupId>t</groupId><artifactId>` + artifact + `</artifactId><version>` + version + `</version>` +
		`<dependencies>` + deps + `</dependencies></project>`
}

func dep(artifact, version string) string {
	return `<dependency><groupId>t</groupId><artifactId>` + artifact + `</artifactId><version>` + version + `</version></dependency>`
}

func depScoped(artifact, version, scope string) string {
	return `<dependency><groupId>t</groupId><artifactId>` + artifact + `</artifactId><version>` + version + `</version><scope>` + scope + `</scope></dependency>`
}

func resolveOne(t *testing.T, src *fakeSource, root string, opts Options) *Graph {
	t.Helper()
	g, err := testEnv(src).ResolveGraph(context.Background(), coord(root), opts)
	if err != nil {
		t.Fatalf("ResolveGraph(%s): %v", root, err)
	}
	return g
}

func nodeVersions(g *Graph) map[string]string {
	out := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.Coordinate.Artifact] = n.Coordinate.Version
	}
	return out
}

func hasDiag(g *Graph, kind string) bool {
	for _, d := range g.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func TestResolveNearestWins(t *testing.T) {
	// root declares a:1.0 directly and reaches a:2.0 through b at depth 2;
	// the nearer declaration wins.
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("a", "1.0")+dep("b", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", "")).
		add("t:a:2.0", simplePOM("a", "2.0", "")).
		add("t:b:1.0", simplePOM("b", "1.0", dep("a", "2.0")))

	g := resolveOne(t, src, "t:root:1", Options{})

	if got := nodeVersions(g)["a"]; got != "1.0" {
		t.Errorf("a resolved to %q, want 1.0", got)
	}
	if !hasDiag(g, DiagMediated) {
		t.Errorf("diagnostics = %+v, want a %s entry", g.Diagnostics, DiagMediated)
	}
}

func TestResolveEqualDepthFirstDeclarationWins(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("b", "1.0")+dep("c", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("a", "3.0"))).
		add("t:c:1.0", simplePOM("c", "1.0", dep("a", "2.0"))).
		add("t:a:3.0", simplePOM("a", "3.0", "")).
		add("t:a:2.0", simplePOM("a", "2.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})

	if got := nodeVersions(g)["a"]; got != "3.0" {
		t.Errorf("a resolved to %q, want 3.0 (declared first in preorder)", got)
	}
}

func TestResolveLoserSubtreeDiscarded(t *testing.T) {
	// a:2.0 pulls in d, a:1.0 pulls in e. With a:1.0 winning, d must not
	// appear and e must.
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("a", "1.0")+dep("b", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", dep("e", "1.0"))).
		add("t:a:2.0", simplePOM("a", "2.0", dep("d", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("a", "2.0"))).
		add("t:d:1.0", simplePOM("d", "1.0", "")).
		add("t:e:1.0", simplePOM("e", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})
	versions := nodeVersions(g)

	if _, present := versions["d"]; present {
		t.Error("d is reachable only through the mediated-away a:2.0")
	}
	if versions["e"] != "1.0" {
		t.Error("e from the winning a:1.0 subtree is missing")
	}
}

func TestResolveGACTUniqueness(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("a", "1.0")+dep("b", "1.0")+dep("c", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", dep("shared", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("shared", "2.0"))).
		add("t:c:1.0", simplePOM("c", "1.0", dep("shared", "3.0"))).
		add("t:shared:1.0", simplePOM("shared", "1.0", "")).
		add("t:shared:2.0", simplePOM("shared", "2.0", "")).
		add("t:shared:3.0", simplePOM("shared", "3.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})

	seen := map[string]bool{}
	for _, n := range g.Nodes {
		if seen[n.Key] {
			t.Errorf("key %s appears more than once", n.Key)
		}
		seen[n.Key] = true
	}
	for _, e := range g.Edges {
		if !seen[e.From] || !seen[e.To] {
			t.Errorf("edge %s -> %s references a missing node", e.From, e.To)
		}
	}
}

func TestResolveExclusions(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", `<dependency>
  <groupId>t</groupId><artifactId>a</artifactId><version>1.0</version>
  <exclusions><exclusion><groupId>t</groupId><artifactId>c</artifactId></exclusion></exclusions>
</dependency>`)).
		add("t:a:1.0", simplePOM("a", "1.0", dep("b", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("c", "1.0"))).
		add("t:c:1.0", simplePOM("c", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})

	if _, present := nodeVersions(g)["c"]; present {
		t.Error("c is excluded on the only path to it")
	}
	if !hasDiag(g, DiagExcluded) {
		t.Errorf("diagnostics = %+v, want an %s entry", g.Diagnostics, DiagExcluded)
	}
}

func TestResolveExclusionHoldsAcrossMediatedPaths(t *testing.T) {
	// c is reached twice at equal depth: under b without exclusions, and
	// under a with e excluded. The occurrence under b wins, and its subtree
	// carries e; the edge from a must not adopt that subtree.
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1",
			dep("b", "1.0")+`<dependency>
  <groupId>t</groupId><artifactId>a</artifactId><version>1.0</version>
  <exclusions><exclusion><groupId>t</groupId><artifactId>e</artifactId></exclusion></exclusions>
</dependency>`)).
		add("t:a:1.0", simplePOM("a", "1.0", dep("c", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("c", "1.0"))).
		add("t:c:1.0", simplePOM("c", "1.0", dep("e", "1.0"))).
		add("t:e:1.0", simplePOM("e", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})

	// e stays in the graph through the unexcluded path.
	if _, present := nodeVersions(g)["e"]; !present {
		t.Error("e should survive via the path through b")
	}

	hasEdge := func(from, to string) bool {
		for _, e := range g.Edges {
			if e.From == from && e.To == to {
				return true
			}
		}
		return false
	}
	if !hasEdge("t:b", "t:c") {
		t.Error("edge b -> c missing")
	}
	if hasEdge("t:a", "t:c") {
		t.Error("edge a -> c present, but c's surviving subtree carries e, which a excludes")
	}
	if !hasDiag(g, DiagExcluded) {
		t.Errorf("diagnostics = %+v, want an %s entry for the dropped edge", g.Diagnostics, DiagExcluded)
	}
}

func TestResolveTestScopeDoesNotPropagate(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", depScoped("a", "1.0", "compile"))).
		add("t:a:1.0", simplePOM("a", "1.0", depScoped("b", "1.0", "test"))).
		add("t:b:1.0", simplePOM("b", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})

	if _, present := nodeVersions(g)["b"]; present {
		t.Error("test-scoped b must not propagate past its declaring level")
	}
	if !hasDiag(g, DiagScopeFiltered) {
		t.Errorf("diagnostics = %+v, want a %s entry", g.Diagnostics, DiagScopeFiltered)
	}
}

func TestResolveRuntimeChains(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", depScoped("a", "1.0", "runtime"))).
		add("t:a:1.0", simplePOM("a", "1.0", dep("b", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{})
	for _, n := range g.Nodes {
		if n.Depth == 0 {
			continue
		}
		if n.Scope != maven.ScopeRuntime {
			t.Errorf("node %s scope = %q, want runtime", n.Key, n.Scope)
		}
	}

	// The compile filter keeps neither.
	compile := resolveOne(t, src, "t:root:1", Options{Scope: maven.ScopeCompile})
	if len(compile.Nodes) != 1 {
		t.Errorf("compile-filtered nodes = %+v, want root only", compile.Nodes)
	}
}

func TestResolveScopeFilters(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1",
			depScoped("c", "1.0", "compile")+depScoped("r", "1.0", "runtime")+depScoped("p", "1.0", "provided")+depScoped("x", "1.0", "test"))).
		add("t:c:1.0", simplePOM("c", "1.0", "")).
		add("t:r:1.0", simplePOM("r", "1.0", "")).
		add("t:p:1.0", simplePOM("p", "1.0", "")).
		add("t:x:1.0", simplePOM("x", "1.0", ""))

	tests := []struct {
		filter string
		want   []string
	}{
		{maven.ScopeCompile, []string{"root", "c", "p"}},
		{maven.ScopeRuntime, []string{"root", "c", "r"}},
		{maven.ScopeTest, []string{"root", "c", "r", "p", "x"}},
		{"", []string{"root", "c", "r", "p", "x"}},
	}

	for _, tt := range tests {
		t.Run("filter "+tt.filter, func(t *testing.T) {
			g := resolveOne(t, src, "t:root:1", Options{Scope: tt.filter})
			got := nodeVersions(g)
			if len(got) != len(tt.want) {
				t.Fatalf("nodes = %v, want %v", got, tt.want)
			}
			for _, artifact := range tt.want {
				if _, ok := got[artifact]; !ok {
					t.Errorf("missing %s under filter %q", artifact, tt.filter)
				}
			}
		})
	}
}

func TestResolveOptional(t *testing.T) {
	optDep := `<dependency><groupId>t</groupId><artifactId>opt</artifactId><version>1.0</version><optional>true</optional></dependency>`
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", optDep+dep("a", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", `<dependency><groupId>t</groupId><artifactId>transopt</artifactId><version>1.0</version><optional>true</optional></dependency>`)).
		add("t:opt:1.0", simplePOM("opt", "1.0", "")).
		add("t:transopt:1.0", simplePOM("transopt", "1.0", ""))

	plain := resolveOne(t, src, "t:root:1", Options{})
	if _, present := nodeVersions(plain)["opt"]; present {
		t.Error("optional dependency included without the flag")
	}
	if !hasDiag(plain, DiagOptionalSkipped) {
		t.Errorf("diagnostics = %+v, want an %s entry", plain.Diagnostics, DiagOptionalSkipped)
	}

	withOpt := resolveOne(t, src, "t:root:1", Options{IncludeOptional: true})
	versions := nodeVersions(withOpt)
	if _, present := versions["opt"]; !present {
		t.Error("root's own optional dependency missing despite IncludeOptional")
	}
	if _, present := versions["transopt"]; present {
		t.Error("transitive optional dependency must stay excluded")
	}
}

func TestResolvePlatformProfiles(t *testing.T) {
	rootPOM := `<project><groupId>t</groupId><artifactId>root</artifactId><version>1</version>
  <profiles>
    <profile>
      <id>linux-only</id>
      <activation><os><family>unix</family></os></activation>
      <dependencies>` + dep("c", "1.0") + `</dependencies>
    </profile>
  </profiles>
</project>`
	src := newFakeSource().
		add("t:root:1", rootPOM).
		add("t:c:1.0", simplePOM("c", "1.0", ""))

	env := testEnv(src)
	linux := maven.Platform{OSFamily: maven.FamilyUnix, OSName: "linux", Arch: "amd64"}
	windows := maven.Platform{OSFamily: maven.FamilyWindows, OSName: "windows", Arch: "amd64"}

	graphs, err := env.Resolve(context.Background(), coord("t:root:1"), Options{Platforms: []maven.Platform{windows, linux}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(graphs) != 2 {
		t.Fatalf("graphs = %d, want one per platform", len(graphs))
	}

	winGraph, linuxGraph := graphs[0], graphs[1]
	if winGraph.Platform != "windows-amd64" || linuxGraph.Platform != "linux-amd64" {
		t.Fatalf("platform order = %s, %s", winGraph.Platform, linuxGraph.Platform)
	}
	if _, present := nodeVersions(winGraph)["c"]; present {
		t.Error("linux-profile dependency leaked into the windows graph")
	}
	node, ok := linuxGraph.Node(maven.Key{Group: "t", Artifact: "c", Type: "jar"}.String())
	if !ok {
		t.Fatal("c missing from the linux graph")
	}
	if node.Platform != "linux-amd64" {
		t.Errorf("c platform tag = %q, want linux-amd64", node.Platform)
	}
}

func TestResolveDeterministic(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("a", "1.0")+dep("b", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", dep("shared", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("shared", "2.0"))).
		add("t:shared:1.0", simplePOM("shared", "1.0", "")).
		add("t:shared:2.0", simplePOM("shared", "2.0", ""))

	first := resolveOne(t, src, "t:root:1", Options{})
	second := resolveOne(t, src, "t:root:1", Options{})

	if !reflect.DeepEqual(first.Nodes, second.Nodes) {
		t.Errorf("nodes differ between runs:\n%+v\n%+v", first.Nodes, second.Nodes)
	}
	if !reflect.DeepEqual(first.Edges, second.Edges) {
		t.Errorf("edges differ between runs:\n%+v\n%+v", first.Edges, second.Edges)
	}
	if !reflect.DeepEqual(first.Diagnostics, second.Diagnostics) {
		t.Errorf("diagnostics differ between runs")
	}
}

func TestResolveDependencyCycleTrimmed(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("a", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", dep("b", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("a", "1.0")))

	g := resolveOne(t, src, "t:root:1", Options{})

	if len(g.Nodes) != 3 {
		t.Errorf("nodes = %+v, want root, a, b", g.Nodes)
	}
	if !hasDiag(g, DiagCycleTrimmed) {
		t.Errorf("diagnostics = %+v, want a %s entry", g.Diagnostics, DiagCycleTrimmed)
	}
}

func TestResolveMaxDepth(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", dep("a", "1.0"))).
		add("t:a:1.0", simplePOM("a", "1.0", dep("b", "1.0"))).
		add("t:b:1.0", simplePOM("b", "1.0", dep("c", "1.0"))).
		add("t:c:1.0", simplePOM("c", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{MaxDepth: 2})

	versions := nodeVersions(g)
	if _, present := versions["c"]; present {
		t.Error("c lies beyond the depth limit")
	}
	if _, present := versions["b"]; !present {
		t.Error("b within the depth limit is missing")
	}
	if !hasDiag(g, DiagDepthLimited) {
		t.Errorf("diagnostics = %+v, want a %s entry", g.Diagnostics, DiagDepthLimited)
	}
}

func TestResolveFloatingVersionFromMetadata(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", `<project><groupId>t</groupId><artifactId>root</artifactId><version>1</version>
  <dependencies><dependency><groupId>t</groupId><artifactId>a</artifactId><version>RELEASE</version></dependency></dependencies>
</project>`).
		add("t:a:2.1", simplePOM("a", "2.1", ""))
	src.meta["t:a"] = &maven.Metadata{Group: "t", Artifact: "a", Release: "2.1", Versions: []string{"1.0", "2.1"}}

	g := resolveOne(t, src, "t:root:1", Options{})
	if got := nodeVersions(g)["a"]; got != "2.1" {
		t.Errorf("a resolved to %q, want release from metadata", got)
	}
}

func TestResolveRootFailurePropagates(t *testing.T) {
	_, err := testEnv(newFakeSource()).ResolveGraph(context.Background(), coord("t:absent:1"), Options{})
	if !maven.Is(err, maven.ErrCodeUnresolvableCoordinate) {
		t.Fatalf("err = %v, want UNRESOLVABLE_COORDINATE", err)
	}
}

func TestResolveUnknownScopeFilter(t *testing.T) {
	_, err := testEnv(newFakeSource()).Resolve(context.Background(), coord("t:root:1"), Options{Scope: "banana"})
	if err == nil {
		t.Fatal("expected error for unknown scope filter")
	}
}

func TestResolveProvidedDirectKeptChildrenProvided(t *testing.T) {
	src := newFakeSource().
		add("t:root:1", simplePOM("root", "1", depScoped("p", "1.0", "provided"))).
		add("t:p:1.0", simplePOM("p", "1.0", dep("q", "1.0"))).
		add("t:q:1.0", simplePOM("q", "1.0", ""))

	g := resolveOne(t, src, "t:root:1", Options{Scope: maven.ScopeCompile})
	versions := nodeVersions(g)
	if _, ok := versions["p"]; !ok {
		t.Fatal("provided direct dependency missing under the compile filter")
	}
	node, _ := g.Node(maven.Key{Group: "t", Artifact: "q", Type: "jar"}.String())
	if node.Scope != maven.ScopeProvided {
		t.Errorf("q scope = %q, want provided (inherited down the provided chain)", node.Scope)
	}
}
