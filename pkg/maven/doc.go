// Package maven defines the immutable data model for Maven-style dependency
// resolution: coordinates, project descriptors, repository metadata, platform
// descriptors, and the property interpolator.
//
// # Coordinates
//
// A [Coordinate] pins a component by group, artifact, version, optional
// classifier, and type (defaulting to "jar"). Identity for version mediation
// deliberately omits the version: the [Key] projection (group, artifact,
// classifier, type) is the unit of uniqueness in a resolved graph.
//
// # Descriptors
//
// [Descriptor] is the raw, pre-interpolation view of a project file: the
// parent reference, property table, dependency-management defaults, declared
// dependencies, and profiles, exactly as parsed from XML. Descriptor fields
// may carry unresolved ${...} expressions; flattening them into an effective
// model is the job of the resolve package.
//
// # Interpolation
//
// [Interpolator] substitutes ${name} expressions against an ordered chain of
// property scopes with cycle detection. Interpolation is defined against a
// snapshot of the merged scopes, so the outcome never depends on the order in
// which sibling expressions are expanded.
package maven
