// Package resolve turns raw project descriptors into effective models and
// transitive dependency graphs.
//
// An [Environment] is the unit of caching: effective models are built lazily
// and memoized per (coordinate, platform) for its lifetime, fetch results are
// cached by the underlying repository, and both caches follow an
// at-most-once single-flight discipline. Two Environments never share state,
// which keeps tests isolated.
//
// # Effective models
//
// [Environment.EffectiveModel] flattens a component's descriptor with its
// entire parent chain and activated profiles: properties merged
// child-over-parent, dependency management merged by GACT key, every field
// interpolated, and management defaults applied to dependencies that omit
// version, scope, exclusions, or the optional flag. GACT keys are computed
// only after interpolation; declarations that collapse onto one key keep the
// earliest in merge order and record a diagnostic.
//
// # Graphs
//
// [Environment.ResolveGraph] walks dependency edges depth-first in
// declaration order, accumulating exclusions along each path, propagating
// scopes through the standard matrix, and mediating version conflicts
// nearest-wins with first-declaration tie-breaks. One graph is produced per
// requested target platform (host if none), with profile-contributed
// dependencies tagged by platform.
package resolve
