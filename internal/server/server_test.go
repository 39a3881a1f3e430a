package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thicketlab/thicket/pkg/maven"
	"github.com/thicketlab/thicket/pkg/resolve"
	"github.com/thicketlab/thicket/pkg/store"
)

// fakeSource is an in-memory resolve.DescriptorSource keyed by
// group:artifact:version.
type fakeSource struct {
	poms map[string]string
	meta map[string]*maven.Metadata
}

func (f *fakeSource) Descriptor(_ context.Context, c maven.Coordinate) ([]byte, error) {
	key := c.Group + ":" + c.Artifact + ":" + c.Version
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

func pom(artifact, version, deps string) string {
	return `<project><groupId>t</groupId><artifactId>` + artifact + `</artifactId><version>` + version + `</version>` +
		`<dependencies>` + deps + `</dependencies></project>`
}

func dep(artifact, version string) string {
	return `<dependency><groupId>t</groupId><artifactId>` + artifact + `</artifactId><version>` + version + `</version></dependency>`
}

func testServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	src := &fakeSource{
		poms: map[string]string{
			"t:app:1.0": pom("app", "1.0", dep("lib", "2.0")),
			"t:lib:2.0": pom("lib", "2.0", ""),
		},
		meta: map[string]*maven.Metadata{
			"t:lib": {Group: "t", Artifact: "lib", Release: "2.0", Versions: []string{"1.0", "2.0"}},
		},
	}
	host := maven.Platform{OSFamily: maven.FamilyUnix, OSName: "linux", Arch: "amd64", JDK: "11.0.2"}
	env := resolve.NewEnvironment(src, resolve.EnvConfig{Host: host})
	st := store.NewMemoryStore()
	return New(env, st, nil), st
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMetadata(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/api/v1/metadata/t/lib", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	md := decode[maven.Metadata](t, rec)
	if md.Release != "2.0" || len(md.Versions) != 2 {
		t.Errorf("metadata = %+v", md)
	}
}

func TestMetadataNotFound(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/api/v1/metadata/t/absent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["code"] != string(maven.ErrCodeUnresolvableCoordinate) {
		t.Errorf("code = %q", body["code"])
	}
}

func TestModel(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/api/v1/model/t:app:1.0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	model := decode[resolve.EffectiveModel](t, rec)
	if model.Coordinate.Artifact != "app" || len(model.Dependencies) != 1 {
		t.Errorf("model = %+v", model)
	}
}

func TestModelBadCoordinate(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/api/v1/model/garbage", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestResolveCreatesAndStoresGraph(t *testing.T) {
	s, st := testServer(t)
	router := s.Router()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/graphs",
		map[string]any{"coordinate": "t:app:1.0"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	graphs := decode[[]resolve.Graph](t, rec)
	if len(graphs) != 1 {
		t.Fatalf("graphs = %d", len(graphs))
	}
	g := graphs[0]
	if len(g.Nodes) != 2 {
		t.Errorf("nodes = %d, want root plus one dependency", len(g.Nodes))
	}

	// The graph is retrievable from the store afterwards.
	if _, err := st.Graph(context.Background(), g.ID); err != nil {
		t.Errorf("stored graph: %v", err)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/graphs/"+g.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET graph status = %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/graphs?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[[]store.GraphSummary](t, rec)
	if len(list) != 1 || list[0].ID != g.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestResolveValidation(t *testing.T) {
	s, _ := testServer(t)
	router := s.Router()

	tests := []struct {
		name string
		body any
	}{
		{"bad coordinate", map[string]any{"coordinate": "nope"}},
		{"bad scope", map[string]any{"coordinate": "t:app:1.0", "scope": "banana"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/graphs", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}

	// Unparseable body.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/graphs", strings.NewReader("{{{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", rec.Code)
	}
}

func TestResolveUnknownRoot(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodPost, "/api/v1/graphs",
		map[string]any{"coordinate": "t:ghost:9.9"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
}

func TestGraphNotFound(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/api/v1/graphs/absent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["code"] != "NOT_FOUND" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestGraphDOT(t *testing.T) {
	s, st := testServer(t)
	router := s.Router()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/graphs",
		map[string]any{"coordinate": "t:app:1.0"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("resolve status = %d", rec.Code)
	}
	graphs := decode[[]resolve.Graph](t, rec)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/graphs/"+graphs[0].ID+"/dot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dot status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "digraph deps") {
		t.Errorf("body = %q", rec.Body.String())
	}

	// A summary is listable without re-resolving.
	if _, err := st.Graph(context.Background(), graphs[0].ID); err != nil {
		t.Errorf("stored graph: %v", err)
	}
}

func TestResolveWithPlatformNames(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(t, s.Router(), http.MethodPost, "/api/v1/graphs",
		map[string]any{"coordinate": "t:app:1.0", "platforms": []string{"linux-amd64", "windows-amd64"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	graphs := decode[[]resolve.Graph](t, rec)
	if len(graphs) != 2 {
		t.Fatalf("graphs = %d, want one per platform", len(graphs))
	}
	if graphs[0].Platform == graphs[1].Platform {
		t.Errorf("both graphs report platform %q", graphs[0].Platform)
	}
}

func TestPlatformNamed(t *testing.T) {
	fallback := maven.Platform{OSFamily: maven.FamilyUnix, OSName: "linux", Arch: "amd64", JDK: "11.0.2"}

	p := platformNamed("windows-amd64", fallback)
	if p.OSFamily != maven.FamilyWindows || p.OSName != "windows" || p.Arch != "amd64" {
		t.Errorf("platform = %+v", p)
	}
	if p.JDK != "11.0.2" {
		t.Errorf("JDK = %q, want inherited from fallback", p.JDK)
	}

	if got := platformNamed("", fallback); got.OSName != fallback.OSName || got.Arch != fallback.Arch || got.JDK != fallback.JDK {
		t.Errorf("empty name should fall back, got %+v", got)
	}
}
