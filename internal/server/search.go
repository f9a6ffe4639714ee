package server

import (
	"strings"

	"github.com/lor00x/goldap/message"
	"github.com/vjeantet/ldapserver"

	"github.com/aarys/rldap/internal/directory"
	"github.com/aarys/rldap/internal/schema"
)

// baseClass is the classification spec.md §4.4 Step A assigns to a
// search request's base DN.
type baseClass int

const (
	classRoot baseClass = iota
	classSubschema
	classDomain
	classOU
	classUser
	classUnderDomain
	classUnknown
)

const subschemaDN = "cn=Subschema"

func classifyBase(dir *directory.Directory, base string) baseClass {
	switch {
	case base == "":
		return classRoot
	case strings.EqualFold(base, subschemaDN):
		return classSubschema
	case base == dir.DN():
		return classDomain
	case base == dir.UsersDN():
		return classOU
	}

	if _, ok := dir.FindByDN(base); ok {
		return classUser
	}
	if directory.Under(base, dir.DN()) {
		return classUnderDomain
	}
	return classUnknown
}

// baseEntry resolves the single entry spec.md §4.4's Base scope
// returns for class, if any.
func baseEntry(dir *directory.Directory, base string, class baseClass) (directory.Entry, bool) {
	switch class {
	case classRoot:
		return dir.RootDSE(), true
	case classDomain:
		return dir.DomainEntry(), true
	case classOU:
		return dir.OUEntry(), true
	case classUser:
		return dir.FindByDN(base)
	default:
		return nil, false
	}
}

// oneLevelChildren resolves the immediate children spec.md §4.4's
// OneLevel scope returns for class. ROOT descends one level into the
// naming context by being treated as DOMAIN, per spec.md §9's
// recommended rewrite.
func oneLevelChildren(dir *directory.Directory, class baseClass) []directory.Entry {
	switch class {
	case classRoot, classDomain:
		return []directory.Entry{dir.OUEntry()}
	case classOU:
		return dir.UserEntries()
	default:
		return nil
	}
}

// subtreeEntries performs the bounded-depth iterative expansion
// spec.md §9 recommends in place of recursion: enqueue the base
// entry, then repeatedly drain one level of children until the depth
// cap is reached or the queue empties.
func subtreeEntries(dir *directory.Directory, base string, class baseClass, maxDepth int) []directory.Entry {
	type node struct {
		entry directory.Entry
		class baseClass
		depth int
	}

	var out []directory.Entry
	var queue []node

	if seed, ok := baseEntry(dir, base, class); ok {
		out = append(out, seed)
		queue = append(queue, node{entry: seed, class: class, depth: 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, child := range oneLevelChildren(dir, cur.class) {
			out = append(out, child)
			childClass := classifyBase(dir, child.DN())
			queue = append(queue, node{entry: child, class: childClass, depth: cur.depth + 1})
		}
	}

	return out
}

// dispatchSearch implements the five-step state machine of spec.md
// §4.4 and writes the resulting (entries…, done) message sequence.
func dispatchSearch(w ldapserver.ResponseWriter, dir *directory.Directory, searchReq message.SearchRequest, maxSubtreeDepth int) {
	base := string(searchReq.BaseObject())
	scope := int(searchReq.Scope())
	attrs := requestedAttributes(searchReq)

	filter, err := schema.Compile(searchReq.Filter())
	if err != nil {
		writeSearchDone(w, ldapserver.LDAPResultOperationsError)
		return
	}
	if schema.IsUnsupported(filter) {
		writeSearchDone(w, ldapserver.LDAPResultUnwillingToPerform)
		return
	}

	class := classifyBase(dir, base)

	if class == classSubschema {
		writeSearchDone(w, ldapserver.LDAPResultSuccess)
		return
	}

	var candidates []directory.Entry
	var knownBase bool

	switch scope {
	case 0: // Base
		entry, ok := baseEntry(dir, base, class)
		if !ok {
			writeSearchDone(w, ldapserver.LDAPResultNoSuchObject)
			return
		}
		candidates = []directory.Entry{entry}
		knownBase = true

	case 1: // OneLevel
		if class == classUnknown {
			writeSearchDone(w, ldapserver.LDAPResultNoSuchObject)
			return
		}
		candidates = oneLevelChildren(dir, class)
		knownBase = true

	default: // Subtree
		if class == classUnknown {
			writeSearchDone(w, ldapserver.LDAPResultNoSuchObject)
			return
		}
		candidates = subtreeEntries(dir, base, class, maxSubtreeDepth)
		if len(candidates) == 0 {
			writeSearchDone(w, ldapserver.LDAPResultNoSuchObject)
			return
		}
		knownBase = true
	}

	if !knownBase {
		writeSearchDone(w, ldapserver.LDAPResultNoSuchObject)
		return
	}

	for _, entry := range candidates {
		if !filter.Matches(entry) {
			continue
		}
		writeEntry(w, entry, attrs)
	}

	writeSearchDone(w, ldapserver.LDAPResultSuccess)
}
