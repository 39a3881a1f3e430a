package maven

import (
	"fmt"
	"runtime"
	"strings"

	semver "github.com/Masterminds/semver/v3"
)

// OS family names as used by profile activation.
const (
	FamilyWindows = "windows"
	FamilyUnix    = "unix"
	FamilyMac     = "mac"
)

// Platform describes a resolution target: the OS family, architecture, and
// JDK version profile activation is evaluated against, plus any activation
// properties. The zero value matches nothing; use [HostPlatform] or construct
// explicitly for simulation.
type Platform struct {
	OSFamily string
	OSName   string
	Arch     string
	JDK      string
	// Properties participates in property-based profile activation only; it
	// is not a property scope for interpolation.
	Properties map[string]string
}

// IsZero reports whether no field of p is set. Platform is not comparable
// (Properties is a map), so callers test for the zero value with this.
func (p Platform) IsZero() bool {
	return p.OSFamily == "" && p.OSName == "" && p.Arch == "" && p.JDK == "" && len(p.Properties) == 0
}

// ID returns the platform identifier used to tag platform-conditioned graph
// entries, e.g. "linux-amd64".
func (p Platform) ID() string {
	name := p.OSName
	if name == "" {
		name = p.OSFamily
	}
	if p.Arch == "" {
		return name
	}
	return name + "-" + p.Arch
}

// ParsePlatform parses a platform identifier of the form "os[-arch]", e.g.
// "linux-amd64" or "windows". The OS family is derived from the OS name.
func ParsePlatform(s string) (Platform, error) {
	name, arch, _ := strings.Cut(s, "-")
	if name == "" {
		return Platform{}, fmt.Errorf("invalid platform %q (expected os[-arch])", s)
	}
	family := FamilyUnix
	switch strings.ToLower(name) {
	case "windows":
		family = FamilyWindows
	case "darwin", "mac", "macos", "osx":
		family = FamilyMac
	}
	return Platform{OSFamily: family, OSName: strings.ToLower(name), Arch: strings.ToLower(arch)}, nil
}

// HostPlatform returns the platform of the machine the resolver runs on.
// The JDK version is unknown for a host without one; callers that need JDK
// activation on the host set it explicitly.
func HostPlatform() Platform {
	family := FamilyUnix
	switch runtime.GOOS {
	case "windows":
		family = FamilyWindows
	case "darwin":
		family = FamilyMac
	}
	return Platform{OSFamily: family, OSName: runtime.GOOS, Arch: runtime.GOARCH}
}

// Activated reports whether the activation condition holds on the platform.
// ActivationNone profiles are only activated by explicit request, which is
// outside this predicate.
func (a Activation) Activated(p Platform) bool {
	switch a.Kind {
	case ActivationAlways:
		return true
	case ActivationOS:
		return matchNegatable(a.OSFamily, p.OSFamily) &&
			matchNegatable(a.OSName, p.OSName) &&
			matchNegatable(a.OSArch, p.Arch)
	case ActivationJDK:
		return jdkMatches(a.JDK, p.JDK)
	case ActivationProperty:
		return propertyMatches(a.Property, a.PropertyValue, p.Properties)
	default:
		return false
	}
}

// PlatformConditional reports whether the activation depends on the target
// platform, as opposed to holding (or not) on every platform. Dependencies
// contributed under platform-conditional profiles are tagged with the
// platform ID in resolved graphs.
func (a Activation) PlatformConditional() bool {
	return a.Kind == ActivationOS || a.Kind == ActivationJDK
}

func matchNegatable(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	if neg, ok := strings.CutPrefix(pattern, "!"); ok {
		return !strings.EqualFold(neg, value)
	}
	return strings.EqualFold(pattern, value)
}

func propertyMatches(name, want string, props map[string]string) bool {
	if name == "" {
		return false
	}
	if absent, ok := strings.CutPrefix(name, "!"); ok {
		_, present := props[absent]
		return !present
	}
	got, present := props[name]
	if !present {
		return false
	}
	return want == "" || got == want
}

// jdkMatches evaluates a JDK activation value against a concrete version.
// Three forms exist: a bare prefix ("1.8" matches 1.8.0_252), a negated
// prefix ("!1.7"), and a Maven version range ("[1.8,11)"). An empty platform
// JDK matches nothing.
func jdkMatches(spec, version string) bool {
	if spec == "" || version == "" {
		return false
	}
	if neg, ok := strings.CutPrefix(spec, "!"); ok {
		return !strings.HasPrefix(version, neg)
	}
	if strings.HasPrefix(spec, "[") || strings.HasPrefix(spec, "(") {
		return jdkInRange(spec, version)
	}
	return strings.HasPrefix(version, spec)
}

// jdkInRange translates a Maven version range into a semver constraint and
// evaluates it. Underscore build suffixes (1.8.0_252) are normalized away
// first since they are not valid semver.
func jdkInRange(spec, version string) bool {
	v, err := semver.NewVersion(normalizeJDK(version))
	if err != nil {
		return false
	}
	body := strings.Trim(spec, "[]()")
	parts := strings.SplitN(body, ",", 2)
	lowerOp, upperOp := ">=", "<="
	if strings.HasPrefix(spec, "(") {
		lowerOp = ">"
	}
	if strings.HasSuffix(spec, ")") {
		upperOp = "<"
	}
	var terms []string
	if len(parts) == 1 {
		// Exact bound, e.g. [1.8].
		terms = append(terms, "="+normalizeJDK(parts[0]))
	} else {
		if lo := strings.TrimSpace(parts[0]); lo != "" {
			terms = append(terms, lowerOp+normalizeJDK(lo))
		}
		if hi := strings.TrimSpace(parts[1]); hi != "" {
			terms = append(terms, upperOp+normalizeJDK(hi))
		}
	}
	c, err := semver.NewConstraint(strings.Join(terms, ", "))
	if err != nil {
		return false
	}
	return c.Check(v)
}

func normalizeJDK(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '_'); i >= 0 {
		v = v[:i]
	}
	return v
}
