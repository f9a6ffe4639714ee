package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarys/rldap/internal/directory"
)

// testEntry returns the synthesized entry for "alice" (attributes
// objectClass=inetOrgPerson/posixAccount, cn=alice, uid=alice,
// uidNumber/gidNumber=0), which gives Matches real string content to
// exercise without needing an exported entry constructor.
func testEntry(t *testing.T) directory.Entry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist")
	require.NoError(t, os.WriteFile(path, []byte("alice\nbob\n"), 0o600))
	d, err := directory.Load(path, "dc=aarys,dc=fr", "users", "test")
	require.NoError(t, err)

	e, ok := d.FindByDN("cn=alice,ou=users,dc=aarys,dc=fr")
	require.True(t, ok)
	return e
}

func TestMatchesEquality(t *testing.T) {
	entry := testEntry(t)

	assert.True(t, (&Filter{Type: FilterTypeEquality, Attribute: "uid", Value: "alice"}).Matches(entry))
	assert.False(t, (&Filter{Type: FilterTypeEquality, Attribute: "uid", Value: "bob"}).Matches(entry))
}

func TestMatchesEqualityAttributeCaseInsensitive(t *testing.T) {
	entry := testEntry(t)

	assert.True(t, (&Filter{Type: FilterTypeEquality, Attribute: "UID", Value: "alice"}).Matches(entry))
	assert.True(t, (&Filter{Type: FilterTypeEquality, Attribute: "Cn", Value: "alice"}).Matches(entry))
}

func TestMatchesEqualityValueIsCaseSensitive(t *testing.T) {
	entry := testEntry(t)

	assert.False(t, (&Filter{Type: FilterTypeEquality, Attribute: "uid", Value: "Alice"}).Matches(entry))
}

func TestMatchesPresent(t *testing.T) {
	entry := testEntry(t)

	assert.True(t, (&Filter{Type: FilterTypePresent, Attribute: "uid"}).Matches(entry))
	assert.False(t, (&Filter{Type: FilterTypePresent, Attribute: "mail"}).Matches(entry))
}

func TestMatchesAndOrNot(t *testing.T) {
	entry := testEntry(t)

	uidAlice := &Filter{Type: FilterTypeEquality, Attribute: "uid", Value: "alice"}
	uidBob := &Filter{Type: FilterTypeEquality, Attribute: "uid", Value: "bob"}

	and := &Filter{Type: FilterTypeAnd, Children: []*Filter{uidAlice, uidAlice}}
	assert.True(t, and.Matches(entry))

	andFail := &Filter{Type: FilterTypeAnd, Children: []*Filter{uidAlice, uidBob}}
	assert.False(t, andFail.Matches(entry))

	or := &Filter{Type: FilterTypeOr, Children: []*Filter{uidBob, uidAlice}}
	assert.True(t, or.Matches(entry))

	orFail := &Filter{Type: FilterTypeOr, Children: []*Filter{uidBob}}
	assert.False(t, orFail.Matches(entry))

	not := &Filter{Type: FilterTypeNot, Children: []*Filter{uidBob}}
	assert.True(t, not.Matches(entry))

	notFail := &Filter{Type: FilterTypeNot, Children: []*Filter{uidAlice}}
	assert.False(t, notFail.Matches(entry))
}

func TestMatchesAndEmptyChildrenIsVacuouslyTrue(t *testing.T) {
	entry := testEntry(t)
	assert.True(t, (&Filter{Type: FilterTypeAnd}).Matches(entry))
}

func TestMatchesOrEmptyChildrenIsFalse(t *testing.T) {
	entry := testEntry(t)
	assert.False(t, (&Filter{Type: FilterTypeOr}).Matches(entry))
}

func TestMatchesNotWithNoChildIsFalse(t *testing.T) {
	entry := testEntry(t)
	assert.False(t, (&Filter{Type: FilterTypeNot}).Matches(entry))
}

func TestMatchesSubstringsInitial(t *testing.T) {
	entry := testEntry(t)
	f := &Filter{
		Type:      FilterTypeSubstrings,
		Attribute: "uid",
		Substrings: Substrings{
			HasInit: true,
			Initial: "al",
		},
	}
	assert.True(t, f.Matches(entry))

	f.Substrings.Initial = "bo"
	assert.False(t, f.Matches(entry))
}

func TestMatchesSubstringsFinal(t *testing.T) {
	entry := testEntry(t)
	f := &Filter{
		Type:      FilterTypeSubstrings,
		Attribute: "uid",
		Substrings: Substrings{
			HasFin: true,
			Final:  "ice",
		},
	}
	assert.True(t, f.Matches(entry))

	f.Substrings.Final = "ob"
	assert.False(t, f.Matches(entry))
}

func TestMatchesSubstringsAny(t *testing.T) {
	entry := testEntry(t)
	f := &Filter{
		Type:      FilterTypeSubstrings,
		Attribute: "uid",
		Substrings: Substrings{
			Any: []string{"li"},
		},
	}
	assert.True(t, f.Matches(entry))

	f.Substrings.Any = []string{"zz"}
	assert.False(t, f.Matches(entry))
}

func TestMatchesSubstringsInitialAnyFinalCombined(t *testing.T) {
	entry := testEntry(t)
	// (uid=a*i*e) against "alice": initial "a", any "i", final "e".
	f := &Filter{
		Type:      FilterTypeSubstrings,
		Attribute: "uid",
		Substrings: Substrings{
			HasInit: true,
			Initial: "a",
			Any:     []string{"i"},
			HasFin:  true,
			Final:   "e",
		},
	}
	assert.True(t, f.Matches(entry))

	// Any tokens must appear in order after the initial/final are consumed.
	f.Substrings.Any = []string{"e", "i"}
	assert.False(t, f.Matches(entry))
}

func TestMatchesSubstringsAllEmptyRequiresAttributePresence(t *testing.T) {
	entry := testEntry(t)

	assert.True(t, (&Filter{Type: FilterTypeSubstrings, Attribute: "uid"}).Matches(entry))
	assert.False(t, (&Filter{Type: FilterTypeSubstrings, Attribute: "nonexistent"}).Matches(entry))
}

func TestMatchesUnsupportedAlwaysFalse(t *testing.T) {
	entry := testEntry(t)

	// An unsupported filter type (GE/LE/Approx/ExtensibleMatch) must
	// never match, regardless of how the attribute/value fields are
	// populated - the dispatcher rejects these before evaluation ever
	// runs, but Matches itself must stay safe if called directly.
	f := &Filter{Type: FilterTypeUnsupported, Attribute: "uid", Value: "alice"}
	assert.False(t, f.Matches(entry))
}

func TestIndexOfEmptyNeedleMatchesAtStart(t *testing.T) {
	assert.Equal(t, 0, indexOf("anything", ""))
}

func TestIndexOfNoMatch(t *testing.T) {
	assert.Equal(t, -1, indexOf("alice", "zz"))
}
