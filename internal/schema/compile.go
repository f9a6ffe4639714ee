package schema

import (
	"fmt"

	"github.com/lor00x/goldap/message"
)

// Compile converts an already-decoded goldap filter value — the form
// ldapserver hands to search handlers — into a *Filter tree ready for
// Matches. This replaces string-based filter parsing entirely: rldap
// never sees a raw filter string, only the BER-decoded message.Filter
// the out-of-scope wire codec already produced. The type-switch shape
// mirrors the teacher's internal/server/ldap.go serializeFilter.
func Compile(f message.Filter) (*Filter, error) {
	if f == nil {
		return &Filter{Type: FilterTypeAnd}, nil
	}

	switch v := f.(type) {
	case message.FilterAnd:
		children, err := compileAll(v)
		if err != nil {
			return nil, err
		}
		return &Filter{Type: FilterTypeAnd, Children: children}, nil

	case message.FilterOr:
		children, err := compileAll(v)
		if err != nil {
			return nil, err
		}
		return &Filter{Type: FilterTypeOr, Children: children}, nil

	case message.FilterNot:
		child, err := Compile(v.Filter)
		if err != nil {
			return nil, err
		}
		return &Filter{Type: FilterTypeNot, Children: []*Filter{child}}, nil

	case message.FilterPresent:
		return &Filter{Type: FilterTypePresent, Attribute: string(v)}, nil

	case message.FilterEqualityMatch:
		return &Filter{
			Type:      FilterTypeEquality,
			Attribute: string(v.AttributeDesc()),
			Value:     string(v.AssertionValue()),
		}, nil

	case message.FilterSubstrings:
		return compileSubstrings(v)

	case message.FilterGreaterOrEqual, message.FilterLessOrEqual,
		message.FilterApproxMatch, message.FilterExtensibleMatch:
		// spec.md §4.3: GE/LE/Approx/ExtensibleMatch must be rejected
		// consistently, never silently matched.
		return &Filter{Type: FilterTypeUnsupported}, nil

	default:
		return nil, fmt.Errorf("schema: unrecognized filter node %T", f)
	}
}

func compileAll(filters []message.Filter) ([]*Filter, error) {
	out := make([]*Filter, 0, len(filters))
	for _, sub := range filters {
		compiled, err := Compile(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled)
	}
	return out, nil
}

func compileSubstrings(v message.FilterSubstrings) (*Filter, error) {
	s := Substrings{}
	for _, sub := range v.Substrings() {
		switch part := sub.(type) {
		case message.SubstringInitial:
			s.Initial = string(part)
			s.HasInit = true
		case message.SubstringAny:
			s.Any = append(s.Any, string(part))
		case message.SubstringFinal:
			s.Final = string(part)
			s.HasFin = true
		default:
			return nil, fmt.Errorf("schema: unrecognized substring component %T", sub)
		}
	}

	return &Filter{
		Type:       FilterTypeSubstrings,
		Attribute:  string(v.Type_()),
		Substrings: s,
	}, nil
}

// IsUnsupported reports whether f (or any descendant) uses a filter
// feature spec.md §4.3 requires be answered with UnwillingToPerform.
func IsUnsupported(f *Filter) bool {
	if f == nil {
		return false
	}
	if f.Type == FilterTypeUnsupported {
		return true
	}
	for _, child := range f.Children {
		if IsUnsupported(child) {
			return true
		}
	}
	return false
}
