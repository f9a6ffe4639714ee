package directory

import "strings"

// dnEquals reports whether two DNs are the same string. LDAP DN
// comparison is, strictly speaking, attribute-type aware, but spec.md
// scopes DN handling to exact string match plus the boundary suffix
// test below — no per-RDN attribute normalization is required.
func dnEquals(a, b string) bool {
	return a == b
}

// dnUnder reports whether dn belongs to base: either dn equals base,
// or dn ends with base on an RDN boundary (i.e. preceded by a comma).
// An empty base (the root) contains every DN. This is the corrected replacement for the original source's
// `dn.contains(base)` test, which over-matches: a base of "users"
// would spuriously match "cn=alice,ou=users" under plain substring
// containment. See spec.md §9.
func dnUnder(dn, base string) bool {
	if base == "" {
		return true
	}
	if dnEquals(dn, base) {
		return true
	}
	suffix := "," + base
	return strings.HasSuffix(dn, suffix)
}

// parentDN returns the DN with its leading RDN stripped, or "" if dn
// has no comma (i.e. is itself a top-level RDN or empty).
func parentDN(dn string) string {
	idx := strings.IndexByte(dn, ',')
	if idx < 0 {
		return ""
	}
	return dn[idx+1:]
}

// firstRDNValue returns the value half of the first RDN in dn, e.g.
// "aarys" from "dc=aarys,dc=fr". Used to derive the domain entry's
// `dc` attribute from the naming context.
func firstRDNValue(dn string) string {
	rdn := dn
	if idx := strings.IndexByte(dn, ','); idx >= 0 {
		rdn = dn[:idx]
	}
	if idx := strings.IndexByte(rdn, '='); idx >= 0 {
		return rdn[idx+1:]
	}
	return rdn
}
