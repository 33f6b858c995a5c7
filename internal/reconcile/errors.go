package reconcile

import (
	"fmt"
	"strings"

	"github.com/yungbote/daybook/internal/types"
)

// AmbiguousReferenceError reports a name that matches more than one live
// entity and carries no disambiguator. The caller must pick a candidate
// by supplying one.
type AmbiguousReferenceError struct {
	Kind       types.EntityKind
	Name       string
	Candidates []string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("ambiguous %s reference %q: candidates [%s], disambiguator required",
		e.Kind, e.Name, strings.Join(e.Candidates, ", "))
}

// InvalidAssociationError reports a malformed or unsatisfiable declared
// spec (a reference without a source, a scene without a title, ...).
type InvalidAssociationError struct {
	Kind       types.EntityKind
	Descriptor string
	Reason     string
}

func (e *InvalidAssociationError) Error() string {
	return fmt.Sprintf("invalid %s association %q: %s", e.Kind, e.Descriptor, e.Reason)
}

// OrderingViolationError reports a thread/arc insertion whose declared
// part contradicts the chronological order of member entries. The entry
// is not added and the member list is left unchanged.
type OrderingViolationError struct {
	Kind         types.EntityKind
	SpanName     string
	EntryDate    string
	DeclaredPart int
	ExpectedPart int
}

func (e *OrderingViolationError) Error() string {
	return fmt.Sprintf("%s %q: entry %s declared part %d but chronological order places it at part %d",
		e.Kind, e.SpanName, e.EntryDate, e.DeclaredPart, e.ExpectedPart)
}
