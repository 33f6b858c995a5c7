package reconcile

import "github.com/yungbote/daybook/internal/types"

// baseOrder lists the 14 relationship kinds in declaration order; it is
// the deterministic tie-break for the topological sort below.
var baseOrder = []types.EntityKind{
	types.KindPerson,
	types.KindCity,
	types.KindTag,
	types.KindTheme,
	types.KindNarratedDate,
	types.KindEvent,
	types.KindLocation,
	types.KindPoem,
	types.KindReferenceSource,
	types.KindReference,
	types.KindScene,
	types.KindThread,
	types.KindArc,
	types.KindMotif,
}

// prerequisites declares which kinds must be reconciled before a kind's
// processor runs. Locations need their city resolved; references need
// their source; scenes link locations, events, people and narrated
// dates; threads and arcs rank entries so they come last with motifs.
var prerequisites = map[types.EntityKind][]types.EntityKind{
	types.KindLocation:  {types.KindCity},
	types.KindReference: {types.KindReferenceSource},
	types.KindScene: {
		types.KindPerson,
		types.KindNarratedDate,
		types.KindEvent,
		types.KindLocation,
	},
}

// processingOrder is baseOrder topologically sorted by prerequisites,
// computed once at init; a cycle in the table is a programming error.
var processingOrder = sortKinds()

func sortKinds() []types.EntityKind {
	done := make(map[types.EntityKind]bool, len(baseOrder))
	var out []types.EntityKind
	var visit func(kind types.EntityKind, seen map[types.EntityKind]bool)
	visit = func(kind types.EntityKind, seen map[types.EntityKind]bool) {
		if done[kind] {
			return
		}
		if seen[kind] {
			panic("reconcile: cycle in kind prerequisites at " + string(kind))
		}
		seen[kind] = true
		for _, pre := range prerequisites[kind] {
			visit(pre, seen)
		}
		done[kind] = true
		out = append(out, kind)
	}
	for _, kind := range baseOrder {
		visit(kind, map[types.EntityKind]bool{})
	}
	return out
}

// ProcessingOrder exposes the dependency-aware kind order.
func ProcessingOrder() []types.EntityKind {
	out := make([]types.EntityKind, len(processingOrder))
	copy(out, processingOrder)
	return out
}
