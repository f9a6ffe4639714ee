package directory

import "fmt"

// User is a leaf account derived from the whitelist file. uid is the
// 0-based line index the user's username occupied in the file; it
// doubles as uidNumber and gidNumber on the synthesized entry, per
// spec.md §3.
type User struct {
	Username string
	UID      int
	usersDN  string
}

// DN returns "cn=<username>,<usersDN>", per spec.md invariant I1.
func (u *User) DN() string {
	return fmt.Sprintf("cn=%s,%s", u.Username, u.usersDN)
}

// attributes synthesizes the inetOrgPerson/posixAccount attribute set
// for this user. Synthesis is pure and deterministic: calling this
// twice for the same User yields identical results.
func (u *User) attributes() attributeSet {
	uid := fmt.Sprintf("%d", u.UID)
	return attributeSet{
		{Type: "objectClass", Values: []string{"inetOrgPerson", "posixAccount"}},
		{Type: "cn", Values: []string{u.Username}},
		{Type: "uid", Values: []string{u.Username}},
		{Type: "uidNumber", Values: []string{uid}},
		{Type: "gidNumber", Values: []string{uid}},
	}
}
