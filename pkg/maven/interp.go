package maven

import (
	"regexp"
	"strings"
)

// DefaultInterpolationBound caps substitution depth per expression. Real
// descriptors nest a handful of levels at most; anything deeper is either a
// cycle (caught explicitly) or pathological.
const DefaultInterpolationBound = 32

var exprRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolator resolves ${name} expressions against an ordered chain of
// property scopes, most specific first. The chain is captured at
// construction, so every expression interpolated through one Interpolator
// sees the same snapshot regardless of substitution order.
type Interpolator struct {
	scopes []map[string]string
	bound  int
}

// NewInterpolator creates an interpolator over the given scope chain. Scopes
// are consulted front to back; the first scope defining a name wins. Nil
// scopes are permitted and skipped.
func NewInterpolator(scopes ...map[string]string) *Interpolator {
	return &Interpolator{scopes: scopes, bound: DefaultInterpolationBound}
}

// Lookup returns the value of name from the first scope that defines it.
func (it *Interpolator) Lookup(name string) (string, bool) {
	for _, scope := range it.scopes {
		if scope == nil {
			continue
		}
		if v, ok := scope[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Interpolate substitutes every ${name} token in s, recursively expanding
// values that themselves contain expressions. A name undefined in every
// scope, a self- or mutually-referential definition, or an expansion
// exceeding the iteration bound fails with ErrCodeUnresolvedProperty.
// A string with no expressions is returned unchanged.
func (it *Interpolator) Interpolate(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	return it.expand(s, make(map[string]bool), 0)
}

// HasExpression reports whether s contains an unresolved ${...} token.
func HasExpression(s string) bool {
	return exprRe.MatchString(s)
}

func (it *Interpolator) expand(s string, inProgress map[string]bool, depth int) (string, error) {
	if depth > it.bound {
		return "", New(ErrCodeUnresolvedProperty, "expression %q exceeds substitution bound %d", s, it.bound)
	}
	var firstErr error
	out := exprRe.ReplaceAllStringFunc(s, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		name := tok[2 : len(tok)-1]
		if inProgress[name] {
			firstErr = New(ErrCodeUnresolvedProperty, "property %q is cyclically defined", name)
			return tok
		}
		value, ok := it.Lookup(name)
		if !ok {
			firstErr = New(ErrCodeUnresolvedProperty, "property %q is not defined in any scope", name)
			return tok
		}
		if strings.Contains(value, "${") {
			inProgress[name] = true
			expanded, err := it.expand(value, inProgress, depth+1)
			delete(inProgress, name)
			if err != nil {
				firstErr = err
				return tok
			}
			return expanded
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
