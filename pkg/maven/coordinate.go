package maven

import (
	"fmt"
	"strings"
)

// DefaultType is the artifact type assumed when a declaration omits one.
const DefaultType = "jar"

// Coordinate identifies a component by group, artifact, version, optional
// classifier, and type (a GAV plus classifier/type). The zero value is not a
// valid coordinate; use [NewCoordinate] or [ParseCoordinate].
type Coordinate struct {
	Group      string `json:"group" bson:"group"`
	Artifact   string `json:"artifact" bson:"artifact"`
	Version    string `json:"version" bson:"version"`
	Classifier string `json:"classifier,omitempty" bson:"classifier,omitempty"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
}

// NewCoordinate creates a coordinate with the type defaulted to "jar".
func NewCoordinate(group, artifact, version string) Coordinate {
	return Coordinate{Group: group, Artifact: artifact, Version: version, Type: DefaultType}
}

// ParseCoordinate parses "group:artifact:version" with optional
// ":classifier" and ":type" segments in the order
// group:artifact:version[:type[:classifier]], matching the common
// command-line form.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q (expected group:artifact:version)", s)
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2], Type: DefaultType}
	if len(parts) > 3 && parts[3] != "" {
		c.Type = parts[3]
	}
	if len(parts) > 4 {
		c.Classifier = parts[4]
	}
	return c, nil
}

// String returns the canonical group:artifact:version[:type[:classifier]] form.
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		return s + ":" + c.typeOrDefault() + ":" + c.Classifier
	}
	if t := c.typeOrDefault(); t != DefaultType {
		s += ":" + t
	}
	return s
}

func (c Coordinate) typeOrDefault() string {
	if c.Type == "" {
		return DefaultType
	}
	return c.Type
}

// Key returns the version-independent identity used for mediation.
func (c Coordinate) Key() Key {
	return Key{Group: c.Group, Artifact: c.Artifact, Classifier: c.Classifier, Type: c.typeOrDefault()}
}

// Filename returns the repository file name for this coordinate,
// artifactId-version[-classifier].type.
func (c Coordinate) Filename() string {
	suffix := ""
	if c.Classifier != "" {
		suffix = "-" + c.Classifier
	}
	return fmt.Sprintf("%s-%s%s.%s", c.Artifact, c.Version, suffix, c.typeOrDefault())
}

// Key is the GACT projection of a coordinate: group, artifact, classifier,
// and type, with the version deliberately omitted. At most one version per
// Key survives mediation in a resolved graph.
type Key struct {
	Group      string
	Artifact   string
	Classifier string
	Type       string
}

// String returns group:artifact[:classifier]:type.
func (k Key) String() string {
	s := k.Group + ":" + k.Artifact
	if k.Classifier != "" {
		s += ":" + k.Classifier
	}
	if k.Type != "" && k.Type != DefaultType {
		s += ":" + k.Type
	}
	return s
}

// Project identifies a group:artifact pair independent of version.
type Project struct {
	Group    string `json:"group" bson:"group"`
	Artifact string `json:"artifact" bson:"artifact"`
}

// String returns group:artifact.
func (p Project) String() string { return p.Group + ":" + p.Artifact }

// Exclusion is a GACT pattern attached to a dependency declaration. Each
// component may be the wildcard "*"; an empty classifier or type also matches
// anything, since descriptor exclusions name only group and artifact.
type Exclusion struct {
	Group      string `json:"group" bson:"group"`
	Artifact   string `json:"artifact" bson:"artifact"`
	Classifier string `json:"classifier,omitempty" bson:"classifier,omitempty"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
}

// Matches reports whether the pattern matches the given key.
func (e Exclusion) Matches(k Key) bool {
	return matchPart(e.Group, k.Group) &&
		matchPart(e.Artifact, k.Artifact) &&
		matchPart(e.Classifier, k.Classifier) &&
		matchPart(e.Type, k.Type)
}

func matchPart(pattern, value string) bool {
	return pattern == "" || pattern == "*" || pattern == value
}

// String returns the pattern in group:artifact form (the only components a
// descriptor can name).
func (e Exclusion) String() string {
	g, a := e.Group, e.Artifact
	if g == "" {
		g = "*"
	}
	if a == "" {
		a = "*"
	}
	return g + ":" + a
}
