package maven

// Scope names used in dependency declarations.
const (
	ScopeCompile  = "compile"
	ScopeRuntime  = "runtime"
	ScopeProvided = "provided"
	ScopeTest     = "test"
	ScopeSystem   = "system"
)

// Descriptor is the raw, pre-interpolation view of a project file. Fields may
// carry unresolved ${...} expressions; nothing here is merged with the parent
// chain yet. Descriptors are immutable once parsed.
type Descriptor struct {
	Group     string // may be empty when inherited from the parent
	Artifact  string
	Version   string // may be empty when inherited from the parent
	Packaging string // defaults to "jar"

	Parent *Coordinate // nil for a root descriptor

	Properties           map[string]string
	DependencyManagement []Dependency // declaration order preserved
	Dependencies         []Dependency // declaration order preserved
	Profiles             []Profile    // declaration order preserved

	Name        string
	Description string
	URL         string
}

// Coordinate returns the descriptor's own coordinate, falling back to the
// parent's group and version when the descriptor omits them.
func (d *Descriptor) Coordinate() Coordinate {
	c := Coordinate{Group: d.Group, Artifact: d.Artifact, Version: d.Version, Type: DefaultType}
	if d.Parent != nil {
		if c.Group == "" {
			c.Group = d.Parent.Group
		}
		if c.Version == "" {
			c.Version = d.Parent.Version
		}
	}
	return c
}

// Dependency is a raw dependency declaration. Every coordinate field may be
// an unresolved expression. Scope may be empty, in which case it defaults via
// dependency management or to "compile".
type Dependency struct {
	Group      string      `json:"group" bson:"group"`
	Artifact   string      `json:"artifact" bson:"artifact"`
	Version    string      `json:"version,omitempty" bson:"version,omitempty"`
	Classifier string      `json:"classifier,omitempty" bson:"classifier,omitempty"`
	Type       string      `json:"type,omitempty" bson:"type,omitempty"`
	Scope      string      `json:"scope,omitempty" bson:"scope,omitempty"`
	Optional   bool        `json:"optional,omitempty" bson:"optional,omitempty"`
	Exclusions []Exclusion `json:"exclusions,omitempty" bson:"exclusions,omitempty"`

	// OptionalSet records whether the declaration carried an explicit
	// <optional> element, so dependency management can fill the flag only
	// when it was omitted.
	OptionalSet bool `json:"-" bson:"-"`

	// Profile is the ID of the profile that contributed this declaration,
	// empty for declarations from the descriptor body.
	Profile string `json:"profile,omitempty" bson:"profile,omitempty"`
}

// Key returns the GACT identity of the declaration. Only meaningful once the
// coordinate fields are interpolated; callers must never key a declaration
// that still carries expressions.
func (dep Dependency) Key() Key {
	t := dep.Type
	if t == "" {
		t = DefaultType
	}
	return Key{Group: dep.Group, Artifact: dep.Artifact, Classifier: dep.Classifier, Type: t}
}

// Coordinate returns the declaration's full coordinate.
func (dep Dependency) Coordinate() Coordinate {
	t := dep.Type
	if t == "" {
		t = DefaultType
	}
	return Coordinate{
		Group:      dep.Group,
		Artifact:   dep.Artifact,
		Version:    dep.Version,
		Classifier: dep.Classifier,
		Type:       t,
	}
}

// Profile is a conditionally-activated bundle of property overrides and
// dependency contributions.
type Profile struct {
	ID                   string
	Activation           Activation
	Properties           map[string]string
	Dependencies         []Dependency
	DependencyManagement []Dependency
}

// ActivationKind discriminates the closed set of profile activation variants.
type ActivationKind int

const (
	// ActivationNone means the profile is never activated automatically.
	ActivationNone ActivationKind = iota
	// ActivationAlways marks an activeByDefault profile.
	ActivationAlways
	// ActivationOS activates on OS family, name, or architecture match.
	ActivationOS
	// ActivationJDK activates on a JDK version prefix or range match.
	ActivationJDK
	// ActivationProperty activates on property presence or equality.
	ActivationProperty
)

// Activation is the tagged-variant activation condition of a profile.
// Exactly one of the variant fields is meaningful, selected by Kind.
type Activation struct {
	Kind ActivationKind

	// OS match, for ActivationOS. Each field may be empty (ignored) or
	// prefixed with "!" to negate. Family values follow Maven: "windows",
	// "unix", "mac".
	OSFamily string
	OSName   string
	OSArch   string

	// JDK is a version prefix ("1.8"), a range ("[1.8,11)"), or a negated
	// prefix ("!1.7"), for ActivationJDK.
	JDK string

	// Property match, for ActivationProperty. Name may be prefixed with "!"
	// to require absence. Value, when non-empty, must compare equal.
	Property      string
	PropertyValue string
}
