package logic

import (
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Internalize translates a UUID-addressed expression into the nid-addressed
// form. The result is a fresh graph with the same indices and children; the
// input is not modified. Unknown UUIDs fail with ids.ErrUnknownIdentifier.
func Internalize(e *Expression[uuid.UUID], lookup ids.Lookup) (*Expression[ids.Nid], error) {
	if lookup == nil {
		return nil, errMissingLookup
	}
	return translate(e, func(u uuid.UUID) (ids.Nid, error) {
		return lookup.NidForUUIDs(u)
	})
}

// Externalize translates a nid-addressed expression into the portable
// UUID-addressed form, using each nid's primordial UUID.
func Externalize(e *Expression[ids.Nid], lookup ids.Lookup) (*Expression[uuid.UUID], error) {
	if lookup == nil {
		return nil, errMissingLookup
	}
	return translate(e, lookup.PrimordialUUID)
}

func translate[A, B Ref](e *Expression[A], f func(A) (B, error)) (*Expression[B], error) {
	out := New[B]()
	for _, n := range e.nodes {
		p, err := mapPayload(n.payload, f)
		if err != nil {
			return nil, errs.Wrapf(err, "translate %s node [%d]", n.semantic, n.index)
		}
		if c, ok := p.(*Concept[B]); ok {
			if err := checkConceptRef(c.Concept); err != nil {
				return nil, errs.Wrapf(err, "translate node [%d]", n.index)
			}
		}
		out.addNode(n.semantic, p)
	}
	for i, n := range e.nodes {
		out.nodes[i].children = slices.Clone(n.children)
	}
	return out, nil
}

// convertPayload returns n's payload addressed for target, translating
// identifiers through lookup when the node's own form differs.
func convertPayload[R Ref](n *Node[R], target Target, lookup ids.Lookup) (Payload, error) {
	if target == targetOf[R]() {
		return n.payload, nil
	}
	if lookup == nil {
		return nil, errMissingLookup
	}
	switch target {
	case Internal:
		return mapPayload(n.payload, func(u uuid.UUID) (ids.Nid, error) {
			return lookup.NidForUUIDs(u)
		})
	case External:
		return mapPayload(n.payload, lookup.PrimordialUUID)
	}
	return nil, errs.Unsupportedf("unsupported serialization target %s", target)
}
