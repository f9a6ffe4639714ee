package server

import (
	"github.com/lor00x/goldap/message"
	"github.com/vjeantet/ldapserver"

	"github.com/aarys/rldap/internal/directory"
)

// writeEntry builds an ldapserver SearchResultEntry from a projected
// directory.Entry and writes it, grounded on the teacher's handleSearch
// attribute-conversion loop.
func writeEntry(w ldapserver.ResponseWriter, entry directory.Entry, requested []string) {
	result := ldapserver.NewSearchResultEntry(entry.DN())

	for _, attr := range entry.Project(requested) {
		values := make([]message.AttributeValue, len(attr.Values))
		for i, v := range attr.Values {
			values[i] = message.AttributeValue(v)
		}
		result.AddAttribute(message.AttributeDescription(attr.Type), values...)
	}

	w.Write(result)
}

func writeSearchDone(w ldapserver.ResponseWriter, resultCode int) {
	w.Write(ldapserver.NewSearchResultDoneResponse(resultCode))
}

func requestedAttributes(searchReq message.SearchRequest) []string {
	attrs := searchReq.Attributes()
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, string(a))
	}
	return out
}
