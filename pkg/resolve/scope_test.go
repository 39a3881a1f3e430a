package resolve

import (
	"testing"

	"github.com/thicketlab/thicket/pkg/maven"
)

func TestPropagateScope(t *testing.T) {
	tests := []struct {
		parent   string
		declared string
		want     string
	}{
		// Test, provided, and system declarations never travel.
		{maven.ScopeCompile, maven.ScopeTest, ""},
		{maven.ScopeCompile, maven.ScopeProvided, ""},
		{maven.ScopeCompile, maven.ScopeSystem, ""},
		{maven.ScopeRuntime, maven.ScopeTest, ""},

		// Compile chains as compile, runtime stays runtime.
		{maven.ScopeCompile, maven.ScopeCompile, maven.ScopeCompile},
		{maven.ScopeCompile, maven.ScopeRuntime, maven.ScopeRuntime},
		{maven.ScopeRuntime, maven.ScopeCompile, maven.ScopeRuntime},
		{maven.ScopeRuntime, maven.ScopeRuntime, maven.ScopeRuntime},

		// Provided and test chains inherit the parent's scope downward.
		{maven.ScopeProvided, maven.ScopeCompile, maven.ScopeProvided},
		{maven.ScopeProvided, maven.ScopeRuntime, maven.ScopeProvided},
		{maven.ScopeTest, maven.ScopeCompile, maven.ScopeTest},
		{maven.ScopeTest, maven.ScopeRuntime, maven.ScopeTest},
	}

	for _, tt := range tests {
		if got := propagateScope(tt.parent, tt.declared); got != tt.want {
			t.Errorf("propagateScope(%q, %q) = %q, want %q", tt.parent, tt.declared, got, tt.want)
		}
	}
}

func TestScopeIncluded(t *testing.T) {
	tests := []struct {
		filter string
		scope  string
		want   bool
	}{
		{maven.ScopeCompile, maven.ScopeCompile, true},
		{maven.ScopeCompile, maven.ScopeProvided, true},
		{maven.ScopeCompile, maven.ScopeRuntime, false},
		{maven.ScopeCompile, maven.ScopeTest, false},
		{maven.ScopeRuntime, maven.ScopeCompile, true},
		{maven.ScopeRuntime, maven.ScopeRuntime, true},
		{maven.ScopeRuntime, maven.ScopeProvided, false},
		{maven.ScopeTest, maven.ScopeTest, true},
		{"", maven.ScopeProvided, true},
	}

	for _, tt := range tests {
		if got := scopeIncluded(tt.filter, tt.scope); got != tt.want {
			t.Errorf("scopeIncluded(%q, %q) = %v, want %v", tt.filter, tt.scope, got, tt.want)
		}
	}
}

func TestValidScopeFilter(t *testing.T) {
	for _, valid := range []string{"", maven.ScopeCompile, maven.ScopeRuntime, maven.ScopeTest} {
		if !ValidScopeFilter(valid) {
			t.Errorf("ValidScopeFilter(%q) = false", valid)
		}
	}
	for _, invalid := range []string{maven.ScopeProvided, maven.ScopeSystem, "banana"} {
		if ValidScopeFilter(invalid) {
			t.Errorf("ValidScopeFilter(%q) = true", invalid)
		}
	}
}
