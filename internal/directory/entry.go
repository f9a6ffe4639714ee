package directory

// Entry is the uniform, read-only capability every directory object
// exposes to the search dispatcher and filter engine, regardless of
// whether it is a static entry (root DSE, domain, OU) or synthesized
// on demand from a User record. Neither implementation ever mutates;
// search never writes. See spec.md §9's design note: a tagged variant
// behind one interface, not an inheritance hierarchy.
type Entry interface {
	// DN returns the entry's exact distinguished name.
	DN() string

	// HasAttribute reports presence of an attribute type,
	// case-insensitively.
	HasAttribute(name string) bool

	// GetValues returns the concatenated values of every attribute
	// record matching name (case-insensitively), or nil if absent.
	GetValues(name string) []string

	// Project returns the attributes selected by requested. An empty
	// slice or a slice containing "*" selects every attribute.
	Project(requested []string) []Attribute
}

// staticEntry is a fixed, pre-built directory object: the root DSE,
// the domain entry, or the organizational unit entry.
type staticEntry struct {
	dn    string
	attrs attributeSet
}

func newStaticEntry(dn string, attrs attributeSet) *staticEntry {
	return &staticEntry{dn: dn, attrs: attrs}
}

func (e *staticEntry) DN() string { return e.dn }

func (e *staticEntry) HasAttribute(name string) bool { return e.attrs.has(name) }

func (e *staticEntry) GetValues(name string) []string { return e.attrs.values(name) }

func (e *staticEntry) Project(requested []string) []Attribute { return e.attrs.project(requested) }

// dynamicEntry synthesizes an Entry from a User record on every call;
// synthesis is pure and deterministic, so there is nothing to cache.
type dynamicEntry struct {
	user  *User
	attrs attributeSet
}

func newDynamicEntry(u *User) *dynamicEntry {
	return &dynamicEntry{
		user:  u,
		attrs: u.attributes(),
	}
}

func (e *dynamicEntry) DN() string { return e.user.DN() }

func (e *dynamicEntry) HasAttribute(name string) bool { return e.attrs.has(name) }

func (e *dynamicEntry) GetValues(name string) []string { return e.attrs.values(name) }

func (e *dynamicEntry) Project(requested []string) []Attribute { return e.attrs.project(requested) }

// User backing the synthesized entry, for callers (the bind handler)
// that need the underlying record rather than the Entry view.
func (e *dynamicEntry) User() *User { return e.user }

// AsUser extracts the backing User record from an Entry, if it is a
// dynamic (user) entry.
func AsUser(e Entry) (*User, bool) {
	d, ok := e.(*dynamicEntry)
	if !ok {
		return nil, false
	}
	return d.user, true
}
