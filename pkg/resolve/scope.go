package resolve

import "github.com/thicketlab/thicket/pkg/maven"

// propagateScope applies the standard scope-propagation matrix: given the
// effective scope of the declaring node and a transitive dependency's
// declared scope, it returns the dependency's effective scope, or "" when
// the dependency does not propagate at all. Test and provided declarations
// never travel past their declaring edge.
//
// Direct dependencies of the root keep their declared scope; this function
// is only consulted from depth 2 downward.
func propagateScope(parent, declared string) string {
	switch declared {
	case maven.ScopeTest, maven.ScopeProvided, maven.ScopeSystem:
		return ""
	}
	switch parent {
	case maven.ScopeCompile:
		if declared == maven.ScopeRuntime {
			return maven.ScopeRuntime
		}
		return maven.ScopeCompile
	case maven.ScopeRuntime:
		return maven.ScopeRuntime
	case maven.ScopeProvided:
		return maven.ScopeProvided
	case maven.ScopeTest:
		return maven.ScopeTest
	default:
		return declared
	}
}

// scopeIncluded reports whether an effective scope belongs to the requested
// classpath-style filter: "compile" keeps compile and provided, "runtime"
// keeps compile and runtime, "test" and "" keep everything.
func scopeIncluded(filter, scope string) bool {
	switch filter {
	case "", maven.ScopeTest:
		return true
	case maven.ScopeCompile:
		return scope == maven.ScopeCompile || scope == maven.ScopeProvided
	case maven.ScopeRuntime:
		return scope == maven.ScopeCompile || scope == maven.ScopeRuntime
	default:
		return true
	}
}

// ValidScopeFilter reports whether s names a supported scope filter.
func ValidScopeFilter(s string) bool {
	switch s {
	case "", maven.ScopeCompile, maven.ScopeRuntime, maven.ScopeTest:
		return true
	}
	return false
}
