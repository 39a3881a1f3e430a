// Package server exposes the resolver over HTTP: repository metadata,
// effective models, graph resolution, and stored-graph retrieval.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thicketlab/thicket/pkg/maven"
	"github.com/thicketlab/thicket/pkg/render"
	"github.com/thicketlab/thicket/pkg/resolve"
	"github.com/thicketlab/thicket/pkg/store"
)

// Server wires an Environment and a Store behind a chi router.
type Server struct {
	env    *resolve.Environment
	store  store.Store
	logger *log.Logger
}

// New creates a Server. A nil logger discards output.
func New(env *resolve.Environment, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(nil)
	}
	return &Server{env: env, store: st, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/metadata/{group}/{artifact}", s.handleMetadata)
		r.Get("/model/{coordinate}", s.handleModel)
		r.Post("/graphs", s.handleResolve)
		r.Get("/graphs", s.handleList)
		r.Get("/graphs/{id}", s.handleGraph)
		r.Get("/graphs/{id}/dot", s.handleDOT)
		r.Get("/graphs/{id}/svg", s.handleSVG)
		r.Get("/graphs/{id}/png", s.handlePNG)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	artifact := chi.URLParam(r, "artifact")
	meta, err := s.env.Metadata(r.Context(), group, artifact)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	coord, err := maven.ParseCoordinate(chi.URLParam(r, "coordinate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("BAD_REQUEST", err.Error()))
		return
	}
	platform := s.env.Host()
	if name := r.URL.Query().Get("platform"); name != "" {
		platform = platformNamed(name, platform)
	}
	model, err := s.env.EffectiveModelFor(r.Context(), coord, platform)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// resolveRequest is the POST /graphs body.
type resolveRequest struct {
	Coordinate      string   `json:"coordinate"`
	Scope           string   `json:"scope,omitempty"`
	IncludeOptional bool     `json:"include_optional,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	MaxDepth        int      `json:"max_depth,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("BAD_REQUEST", "invalid JSON body: "+err.Error()))
		return
	}
	coord, err := maven.ParseCoordinate(req.Coordinate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("BAD_REQUEST", err.Error()))
		return
	}
	if !resolve.ValidScopeFilter(req.Scope) {
		writeJSON(w, http.StatusBadRequest, errorBody("BAD_REQUEST", "unknown scope filter "+strconv.Quote(req.Scope)))
		return
	}

	opts := resolve.Options{
		Scope:           req.Scope,
		IncludeOptional: req.IncludeOptional,
		MaxDepth:        req.MaxDepth,
	}
	for _, name := range req.Platforms {
		opts.Platforms = append(opts.Platforms, platformNamed(name, s.env.Host()))
	}

	graphs, err := s.env.Resolve(r.Context(), coord, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, g := range graphs {
		if err := s.store.Save(r.Context(), g); err != nil {
			s.logger.Error("store graph", "id", g.ID, "err", err)
		}
	}
	writeJSON(w, http.StatusCreated, graphs)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []store.GraphSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Graph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Graph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(render.ToDOT(g, render.Options{Detailed: r.URL.Query().Get("detailed") == "true"})))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.renderImage(w, r, "image/svg+xml", render.RenderSVG)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	s.renderImage(w, r, "image/png", render.RenderPNG)
}

func (s *Server) renderImage(w http.ResponseWriter, r *http.Request, contentType string, renderFn func(ctx context.Context, dot string) ([]byte, error)) {
	g, err := s.store.Graph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	img, err := renderFn(r.Context(), render.ToDOT(g, render.Options{}))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(img)
}

// platformNamed builds a simulation target from "os-arch" or a bare OS name,
// inheriting the JDK and properties of the fallback platform.
func platformNamed(name string, fallback maven.Platform) maven.Platform {
	p, err := maven.ParsePlatform(name)
	if err != nil {
		return fallback
	}
	if p.JDK == "" {
		p.JDK = fallback.JDK
	}
	return p
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "no such graph"))
		return
	}
	code := maven.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case maven.ErrCodeUnresolvableCoordinate:
		status = http.StatusNotFound
	case maven.ErrCodeMalformedModel, maven.ErrCodeUnresolvedProperty,
		maven.ErrCodeCyclicDependency, maven.ErrCodeParentResolutionFailure:
		status = http.StatusUnprocessableEntity
	case maven.ErrCodeRepositoryIO:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody(string(code), maven.UserMessage(err)))
}

func errorBody(code, message string) map[string]string {
	if code == "" {
		code = "INTERNAL"
	}
	return map[string]string{"code": code, "message": message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
