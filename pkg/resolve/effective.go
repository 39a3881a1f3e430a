package resolve

import (
	"context"

	"github.com/thicketlab/thicket/pkg/maven"
)

// EffectiveModel is the flattened, fully-interpolated descriptor of one
// coordinate on one platform: parent chain merged, active profiles folded
// in, every property expression resolved, and dependency-management defaults
// applied. It contains no unresolved expressions by construction.
type EffectiveModel struct {
	Coordinate maven.Coordinate
	Packaging  string

	// Properties is the merged, interpolated property table.
	Properties map[string]string

	// DependencyManagement is the merged management table in merge order,
	// one entry per GACT.
	DependencyManagement []maven.Dependency

	// Dependencies are the declared edges in merge order, one per GACT,
	// with management defaults applied.
	Dependencies []ModelDependency

	// ActiveProfiles lists the IDs of the profiles that activated, own
	// profiles first, then inherited ones.
	ActiveProfiles []string

	// Diagnostics records key collapses and similar non-fatal events.
	Diagnostics []Diagnostic

	Name        string
	Description string
	URL         string
}

// ModelDependency is a dependency declaration surviving the effective-model
// merge, annotated with whether it entered through a platform-conditional
// profile.
type ModelDependency struct {
	maven.Dependency
	PlatformConditional bool
}

// ManagedVersion returns the managed version for a key, if the table has one.
func (m *EffectiveModel) ManagedVersion(k maven.Key) (string, bool) {
	for _, d := range m.DependencyManagement {
		if d.Key() == k {
			return d.Version, d.Version != ""
		}
	}
	return "", false
}

// buildModel assembles the effective model for c. chain is the in-progress
// parent lineage including c itself; see Environment.modelFor.
//
// Merge order within the model — own body declarations, then active own
// profiles in declaration order, then inherited — is a first-class rule:
// when interpolation collapses two declarations onto one GACT key, the
// earlier one in this order wins and the later is dropped with a diagnostic.
func (e *Environment) buildModel(ctx context.Context, c maven.Coordinate, p maven.Platform, chain []maven.Coordinate) (*EffectiveModel, error) {
	data, err := e.source.Descriptor(ctx, c)
	if err != nil {
		return nil, maven.WithPath(err, maven.ErrCodeUnresolvableCoordinate, c)
	}
	desc, err := maven.ParseDescriptor(data)
	if err != nil {
		return nil, maven.WithPath(err, maven.ErrCodeMalformedModel, c)
	}

	var parent *EffectiveModel
	if desc.Parent != nil {
		parent, err = e.modelFor(ctx, *desc.Parent, p, chain)
		if err != nil {
			if maven.Is(err, maven.ErrCodeCyclicDependency) {
				return nil, maven.WithPath(err, maven.ErrCodeCyclicDependency, c)
			}
			wrapped := maven.Wrap(maven.ErrCodeParentResolutionFailure, err, "parent %s of %s failed", desc.Parent, c)
			return nil, maven.WithPath(wrapped, maven.ErrCodeParentResolutionFailure, c)
		}
	}

	model := &EffectiveModel{
		Coordinate:  desc.Coordinate(),
		Packaging:   desc.Packaging,
		Name:        desc.Name,
		Description: desc.Description,
		URL:         desc.URL,
	}

	// Profile activation is evaluated against the target platform, not the
	// host, so platform-specific graphs can be simulated anywhere.
	var active []maven.Profile
	for _, prof := range desc.Profiles {
		if prof.Activation.Activated(p) {
			active = append(active, prof)
			model.ActiveProfiles = append(model.ActiveProfiles, prof.ID)
		}
	}
	if parent != nil {
		model.ActiveProfiles = append(model.ActiveProfiles, parent.ActiveProfiles...)
	}

	// Scope chain for interpolation, most specific first: active-profile
	// properties, own properties, built-ins for the component being
	// interpolated, then everything inherited.
	profileProps := map[string]string{}
	for _, prof := range active {
		for k, v := range prof.Properties {
			profileProps[k] = v
		}
	}
	var parentProps map[string]string
	if parent != nil {
		parentProps = parent.Properties
	}
	interp := maven.NewInterpolator(profileProps, desc.Properties, builtinProps(model.Coordinate, desc), parentProps)

	// Merged property table: parent first, shadowed by own, shadowed by
	// profile overrides; every value interpolated against the snapshot.
	merged := map[string]string{}
	for k, v := range parentProps {
		merged[k] = v
	}
	for k, v := range desc.Properties {
		merged[k] = v
	}
	for k, v := range profileProps {
		merged[k] = v
	}
	model.Properties = make(map[string]string, len(merged))
	for k, v := range merged {
		resolved, err := interp.Interpolate(v)
		if err != nil {
			return nil, maven.WithPath(maven.Wrap(maven.ErrCodeUnresolvedProperty, err, "property %q", k), maven.ErrCodeUnresolvedProperty, c)
		}
		model.Properties[k] = resolved
	}

	// Dependency management, in merge order. Parent entries are already
	// interpolated; own and profile entries are interpolated here, then
	// keyed. Key computation strictly follows interpolation.
	var mgmtOrder []maven.Dependency
	mgmtOrder = append(mgmtOrder, desc.DependencyManagement...)
	for _, prof := range active {
		mgmtOrder = append(mgmtOrder, prof.DependencyManagement...)
	}
	interpolated := make([]maven.Dependency, 0, len(mgmtOrder))
	for _, dep := range mgmtOrder {
		idep, err := interpolateDependency(interp, dep)
		if err != nil {
			return nil, maven.WithPath(err, maven.ErrCodeUnresolvedProperty, c)
		}
		interpolated = append(interpolated, idep)
	}
	if parent != nil {
		interpolated = append(interpolated, parent.DependencyManagement...)
	}
	mgmtByKey := make(map[maven.Key]int, len(interpolated))
	for _, dep := range interpolated {
		k := dep.Key()
		if _, exists := mgmtByKey[k]; exists {
			model.Diagnostics = append(model.Diagnostics, Diagnostic{
				Kind:       DiagCollapsedKey,
				Coordinate: dep.Coordinate().String(),
				Detail:     "dependency management entry collapses onto " + k.String(),
			})
			continue
		}
		mgmtByKey[k] = len(model.DependencyManagement)
		model.DependencyManagement = append(model.DependencyManagement, dep)
	}

	// Declared dependencies, same merge order, with management defaults
	// applied after keying.
	type rawDep struct {
		dep         maven.Dependency
		conditional bool
		inherited   bool
	}
	var depOrder []rawDep
	for _, dep := range desc.Dependencies {
		depOrder = append(depOrder, rawDep{dep: dep})
	}
	for _, prof := range active {
		cond := prof.Activation.PlatformConditional()
		for _, dep := range prof.Dependencies {
			depOrder = append(depOrder, rawDep{dep: dep, conditional: cond})
		}
	}
	if parent != nil {
		for _, dep := range parent.Dependencies {
			depOrder = append(depOrder, rawDep{dep: dep.Dependency, conditional: dep.PlatformConditional, inherited: true})
		}
	}

	depByKey := make(map[maven.Key]bool, len(depOrder))
	for _, raw := range depOrder {
		dep := raw.dep
		if !raw.inherited {
			dep, err = interpolateDependency(interp, dep)
			if err != nil {
				return nil, maven.WithPath(err, maven.ErrCodeUnresolvedProperty, c)
			}
		}
		k := dep.Key()
		if depByKey[k] {
			model.Diagnostics = append(model.Diagnostics, Diagnostic{
				Kind:       DiagCollapsedKey,
				Coordinate: dep.Coordinate().String(),
				Detail:     "dependency declaration collapses onto " + k.String(),
			})
			continue
		}
		depByKey[k] = true
		if i, ok := mgmtByKey[k]; ok {
			dep = applyManagement(dep, model.DependencyManagement[i])
		}
		if dep.Scope == "" {
			dep.Scope = maven.ScopeCompile
		}
		model.Dependencies = append(model.Dependencies, ModelDependency{
			Dependency:          dep,
			PlatformConditional: raw.conditional,
		})
	}

	return model, nil
}

// builtinProps exposes the reflective project.* properties of the component
// being interpolated, with the legacy pom.* aliases.
func builtinProps(c maven.Coordinate, desc *maven.Descriptor) map[string]string {
	props := map[string]string{
		"project.groupId":    c.Group,
		"project.artifactId": c.Artifact,
		"project.version":    c.Version,
		"project.packaging":  desc.Packaging,
		"pom.groupId":        c.Group,
		"pom.artifactId":     c.Artifact,
		"pom.version":        c.Version,
	}
	if desc.Parent != nil {
		props["project.parent.groupId"] = desc.Parent.Group
		props["project.parent.artifactId"] = desc.Parent.Artifact
		props["project.parent.version"] = desc.Parent.Version
		props["parent.groupId"] = desc.Parent.Group
		props["parent.artifactId"] = desc.Parent.Artifact
		props["parent.version"] = desc.Parent.Version
	}
	return props
}

// interpolateDependency resolves every expression-capable field of a
// declaration: group, artifact, version, classifier, type, and scope.
func interpolateDependency(interp *maven.Interpolator, dep maven.Dependency) (maven.Dependency, error) {
	fields := []*string{&dep.Group, &dep.Artifact, &dep.Version, &dep.Classifier, &dep.Type, &dep.Scope}
	for _, f := range fields {
		resolved, err := interp.Interpolate(*f)
		if err != nil {
			return maven.Dependency{}, maven.Wrap(maven.ErrCodeUnresolvedProperty, err,
				"dependency %s:%s", dep.Group, dep.Artifact)
		}
		*f = resolved
	}
	exclusions := make([]maven.Exclusion, len(dep.Exclusions))
	copy(exclusions, dep.Exclusions)
	dep.Exclusions = exclusions
	return dep, nil
}

// applyManagement fills fields the declaration omitted from the managed
// entry: version, scope, the optional flag, and exclusions.
func applyManagement(dep, managed maven.Dependency) maven.Dependency {
	if dep.Version == "" {
		dep.Version = managed.Version
	}
	if dep.Scope == "" {
		dep.Scope = managed.Scope
	}
	if !dep.OptionalSet && managed.OptionalSet {
		dep.Optional = managed.Optional
	}
	if len(dep.Exclusions) == 0 && len(managed.Exclusions) > 0 {
		dep.Exclusions = append([]maven.Exclusion(nil), managed.Exclusions...)
	}
	return dep
}
