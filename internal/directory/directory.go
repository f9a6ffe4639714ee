package directory

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Directory owns the naming context for one running server: the
// naming context dn, the single organizational unit ou, the derived
// usersDN, the static-entry templates, and the user table loaded from
// the whitelist. It is immutable after Load returns — spec.md §3
// "Lifecycle": no entry is ever mutated, and search never writes.
type Directory struct {
	dn      string
	ou      string
	usersDN string

	root   *staticEntry
	domain *staticEntry
	unit   *staticEntry

	users []*User
}

// Load reads the whitelist file (UTF-8, one username per line, a
// trailing empty line dropped) and builds a Directory rooted at dn
// with organizational unit ou. Each line's 0-based index becomes that
// user's uid. A whitelist that cannot be read is a fatal
// initialization error, per spec.md §4.2.
func Load(whitelistPath, dn, ou string, version string) (*Directory, error) {
	usersDN := fmt.Sprintf("ou=%s,%s", ou, dn)

	users, err := loadWhitelist(whitelistPath, usersDN)
	if err != nil {
		return nil, fmt.Errorf("load whitelist %q: %w", whitelistPath, err)
	}

	d := &Directory{
		dn:      dn,
		ou:      ou,
		usersDN: usersDN,
		users:   users,
		root:    newStaticEntry("", rootDSEAttributes(dn, version)),
		domain:  newStaticEntry(dn, domainAttributes(dn)),
		unit:    newStaticEntry(usersDN, organizationalUnitAttributes(ou)),
	}

	return d, nil
}

// loadWhitelist reads one username per line. Blank lines are not
// special — they become users with an empty cn, per spec.md §6.
func loadWhitelist(path, usersDN string) ([]*User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var users []*User
	scanner := bufio.NewScanner(f)
	idx := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		users = append(users, &User{
			Username: strings.TrimSpace(line),
			UID:      idx,
			usersDN:  usersDN,
		})
		idx++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// DN returns the naming context this directory is authoritative for.
func (d *Directory) DN() string { return d.dn }

// OU returns the configured organizational unit name.
func (d *Directory) OU() string { return d.ou }

// UsersDN returns "ou=<ou>,<dn>", per spec.md invariant I2.
func (d *Directory) UsersDN() string { return d.usersDN }

// RootDSE returns the synthesized root DSE entry (dn="").
func (d *Directory) RootDSE() Entry { return d.root }

// DomainEntry returns the synthesized domain entry (dn=<dn>).
func (d *Directory) DomainEntry() Entry { return d.domain }

// OUEntry returns the synthesized organizational unit entry
// (dn=<usersDN>).
func (d *Directory) OUEntry() Entry { return d.unit }

// StaticEntries returns the three synthesized static entries in
// root DSE, domain, OU order, per spec.md §4.2.
func (d *Directory) StaticEntries() []Entry {
	return []Entry{d.root, d.domain, d.unit}
}

// UserEntries returns a materialized dynamic entry for every
// whitelisted user.
func (d *Directory) UserEntries() []Entry {
	out := make([]Entry, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, newDynamicEntry(u))
	}
	return out
}

// FindByDN returns the first entry (static or dynamic) whose DN
// exactly matches dn, per spec.md §4.2.
func (d *Directory) FindByDN(dn string) (Entry, bool) {
	for _, e := range d.StaticEntries() {
		if dnEquals(e.DN(), dn) {
			return e, true
		}
	}
	for _, u := range d.users {
		if dnEquals(u.DN(), dn) {
			return newDynamicEntry(u), true
		}
	}
	return nil, false
}

// Under reports whether dn belongs to base under the RDN-boundary
// suffix rule of spec.md §3/§9.
func Under(dn, base string) bool { return dnUnder(dn, base) }

func rootDSEAttributes(dn, version string) attributeSet {
	return attributeSet{
		{Type: "objectClass", Values: []string{"RutheniumLDAPRootDSE", "top"}},
		{Type: "namingContexts", Values: []string{dn}},
		{Type: "entryDN", Values: []string{""}},
		{Type: "subschemaSubentry", Values: []string{"cn=Subschema"}},
		{Type: "structuralObjectClass", Values: []string{"RutheniumLDAPRootDSE"}},
		{Type: "supportedLDAPVersion", Values: []string{"3"}},
		{Type: "vendorName", Values: []string{"github.com/aarys/rldap"}},
		{Type: "vendorVersion", Values: []string{version}},
	}
}

func domainAttributes(dn string) attributeSet {
	first := firstRDNValue(dn)
	return attributeSet{
		{Type: "objectClass", Values: []string{"dcObject", "top", "organization"}},
		{Type: "dc", Values: []string{first}},
		{Type: "o", Values: []string{first}},
	}
}

func organizationalUnitAttributes(ou string) attributeSet {
	return attributeSet{
		{Type: "objectClass", Values: []string{"organizationalUnit"}},
		{Type: "ou", Values: []string{ou}},
	}
}
