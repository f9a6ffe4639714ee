package directory

import "strings"

// Attribute is a single LDAP attribute type and its (possibly
// multi-valued) set of values. Type comparison is case-insensitive;
// value comparison is always byte-exact.
type Attribute struct {
	Type   string
	Values []string
}

// attributeSet is an ordered list of attribute records. Duplicate
// types are permitted on input (callers building templates may add
// the same type twice); lookups merge them by concatenating values in
// the order they were added.
type attributeSet []Attribute

func (s attributeSet) has(name string) bool {
	for _, a := range s {
		if strings.EqualFold(a.Type, name) {
			return true
		}
	}
	return false
}

func (s attributeSet) values(name string) []string {
	var out []string
	for _, a := range s {
		if strings.EqualFold(a.Type, name) {
			out = append(out, a.Values...)
		}
	}
	return out
}

// project returns the subset of attributes selected by requested,
// merging duplicate types. An empty list or a list containing "*"
// selects everything, per spec.
func (s attributeSet) project(requested []string) []Attribute {
	if wantsAll(requested) {
		return mergeDuplicates(s)
	}

	selected := attributeSet{}
	for _, want := range requested {
		for _, a := range s {
			if strings.EqualFold(a.Type, want) {
				selected = append(selected, a)
			}
		}
	}
	return mergeDuplicates(selected)
}

func wantsAll(requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, r := range requested {
		if r == "*" {
			return true
		}
	}
	return false
}

// mergeDuplicates folds repeated attribute types (case-insensitively)
// into a single record per type, preserving first-seen order.
func mergeDuplicates(s attributeSet) []Attribute {
	order := []string{}
	merged := map[string]*Attribute{}

	for _, a := range s {
		key := strings.ToLower(a.Type)
		existing, ok := merged[key]
		if !ok {
			cp := Attribute{Type: a.Type, Values: append([]string(nil), a.Values...)}
			merged[key] = &cp
			order = append(order, key)
			continue
		}
		existing.Values = append(existing.Values, a.Values...)
	}

	out := make([]Attribute, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	return out
}
