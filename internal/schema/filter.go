// Package schema evaluates LDAP search filters against directory
// entries, per spec.md §4.3.
package schema

import "github.com/aarys/rldap/internal/directory"

// FilterType identifies the kind of node in a Filter tree.
type FilterType int

const (
	FilterTypeAnd FilterType = iota
	FilterTypeOr
	FilterTypeNot
	FilterTypeEquality
	FilterTypePresent
	FilterTypeSubstrings
	// FilterTypeUnsupported covers GE, LE, Approx, and
	// ExtensibleMatch: spec.md §4.3 requires these be rejected
	// consistently (UnwillingToPerform) rather than silently matching
	// or failing to match.
	FilterTypeUnsupported
)

// Substrings holds the components of a substring filter:
// (attr=initial*any1*any2*final). HasInit/HasFin distinguish "no
// initial/final component" from "an empty-string component", since
// LDAP substring filters can legally omit either end.
type Substrings struct {
	Initial string
	Any     []string
	Final   string
	HasInit bool
	HasFin  bool
}

// Filter is an immutable node in an LDAP filter tree. Evaluation via
// Matches is a pure function: no shared state, no allocation on the
// And/Or/Not/Present/Equality hot path.
type Filter struct {
	Type       FilterType
	Attribute  string
	Value      string
	Substrings Substrings
	Children   []*Filter
}

// Matches reports whether entry satisfies f, per the table in
// spec.md §4.3. Attribute-name comparison is case-insensitive
// (delegated to directory.Entry); value comparison is byte-exact.
func (f *Filter) Matches(entry directory.Entry) bool {
	switch f.Type {
	case FilterTypeAnd:
		for _, child := range f.Children {
			if !child.Matches(entry) {
				return false
			}
		}
		return true

	case FilterTypeOr:
		for _, child := range f.Children {
			if child.Matches(entry) {
				return true
			}
		}
		return false

	case FilterTypeNot:
		if len(f.Children) == 0 {
			return false
		}
		return !f.Children[0].Matches(entry)

	case FilterTypePresent:
		return entry.HasAttribute(f.Attribute)

	case FilterTypeEquality:
		for _, v := range entry.GetValues(f.Attribute) {
			if v == f.Value {
				return true
			}
		}
		return false

	case FilterTypeSubstrings:
		return matchSubstrings(entry, f.Attribute, f.Substrings)

	case FilterTypeUnsupported:
		return false

	default:
		return false
	}
}

// matchSubstrings reports whether some single value of attr matches
// the whole substring filter: the value starts with initial (if
// present), ends with final (if present), and holds every "any" token
// in order in the part left between them, with no overlap. The
// components are not checked against different values of a
// multi-valued attribute, and "any" tokens out of order do not match.
// An all-empty substring filter (no initial, no any tokens, no final)
// matches any entry that has the attribute at all.
func matchSubstrings(entry directory.Entry, attr string, s Substrings) bool {
	if !s.HasInit && !s.HasFin && len(s.Any) == 0 {
		return entry.HasAttribute(attr)
	}

	for _, v := range entry.GetValues(attr) {
		if matchOneSubstring(v, s) {
			return true
		}
	}
	return false
}

func matchOneSubstring(value string, s Substrings) bool {
	remaining := value

	if s.HasInit {
		if len(remaining) < len(s.Initial) || remaining[:len(s.Initial)] != s.Initial {
			return false
		}
		remaining = remaining[len(s.Initial):]
	}

	if s.HasFin {
		if len(remaining) < len(s.Final) || remaining[len(remaining)-len(s.Final):] != s.Final {
			return false
		}
		remaining = remaining[:len(remaining)-len(s.Final)]
	}

	for _, token := range s.Any {
		idx := indexOf(remaining, token)
		if idx < 0 {
			return false
		}
		remaining = remaining[idx+len(token):]
	}

	return true
}

func indexOf(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
