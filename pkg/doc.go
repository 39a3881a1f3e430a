// Package pkg provides the core libraries for thicket dependency resolution.
//
// # Overview
//
// Thicket builds effective project models and transitive dependency graphs
// from layered Maven-style repositories. The pkg directory is organized by
// concern:
//
//  1. [maven] - Coordinates, raw descriptors, metadata, platforms,
//     interpolation, and the resolution error taxonomy
//  2. [repo] - Repository sources (local tree, Nexus 2 storage, remote HTTP)
//     layered behind a single-flight fetch cache
//  3. [resolve] - Environments, effective models, and graph resolution with
//     nearest-wins mediation
//  4. [render] - Graph export as DOT, SVG, and PNG
//  5. [cache], [store], [config] - Fetch caching backends, graph
//     persistence, and TOML configuration
//
// # Architecture
//
// The typical data flow:
//
//	Repository sources (local / nexus2 / remote)
//	         ↓
//	    [repo] package (layered fetch, metadata merge)
//	         ↓
//	    [maven] package (parse descriptors, interpolate)
//	         ↓
//	    [resolve] package (effective models, graph mediation)
//	         ↓
//	    JSON / DOT / SVG / PNG output, [store] persistence
//
// # Quick Start
//
// Resolve a coordinate against Maven Central:
//
//	import (
//	    "context"
//
//	    "github.com/thicketlab/thicket/pkg/cache"
//	    "github.com/thicketlab/thicket/pkg/maven"
//	    "github.com/thicketlab/thicket/pkg/repo"
//	    "github.com/thicketlab/thicket/pkg/resolve"
//	)
//
//	func run(ctx context.Context) error {
//	    src := repo.NewRemoteSource("central", "https://repo.maven.apache.org/maven2", cache.NewNullCache(), 0)
//	    env := resolve.NewEnvironment(repo.New([]repo.Source{src}, nil), resolve.EnvConfig{})
//	    coord, _ := maven.ParseCoordinate("org.scijava:parsington:3.1.0")
//	    graph, err := env.ResolveGraph(ctx, coord, resolve.Options{})
//	    if err != nil {
//	        return err
//	    }
//	    _ = graph
//	    return nil
//	}
//
// [maven]: github.com/thicketlab/thicket/pkg/maven
// [repo]: github.com/thicketlab/thicket/pkg/repo
// [resolve]: github.com/thicketlab/thicket/pkg/resolve
// [render]: github.com/thicketlab/thicket/pkg/render
// [cache]: github.com/thicketlab/thicket/pkg/cache
// [store]: github.com/thicketlab/thicket/pkg/store
// [config]: github.com/thicketlab/thicket/pkg/config
package pkg
