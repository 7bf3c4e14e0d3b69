package logic

import (
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/canonical"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

const nodeIdentityDomain = "termstore/logic-node/v1"

var errMissingLookup = errs.Invariantf("nid-addressed expression requires an identifier lookup")

// UUID returns the node's deterministic identity: a name-based UUID in the
// node semantic's namespace, seeded with the canonical form of its fields and
// its children's identities. References are resolved to UUIDs first, so a
// node and its translated counterpart share an identity. lookup may be nil for
// UUID-addressed nodes.
//
// The result is cached on the node until the graph's structure changes.
func (n *Node[R]) UUID(lookup ids.Lookup) (uuid.UUID, error) {
	if cached := n.id.Load(); cached != nil {
		return *cached, nil
	}
	content, err := n.identityContent(lookup)
	if err != nil {
		return uuid.Nil, err
	}
	seed, err := canonical.Seed(nodeIdentityDomain, content)
	if err != nil {
		return uuid.Nil, errs.Wrapf(err, "node [%d] identity", n.index)
	}
	id := uuid.NewSHA1(n.semantic.Namespace(), seed)
	n.id.Store(&id)
	return id, nil
}

func (n *Node[R]) identityContent(lookup ids.Lookup) (canonical.Object, error) {
	ref := func(r R) (canonical.Value, error) {
		u, err := refUUID(r, lookup)
		if err != nil {
			return nil, err
		}
		return canonical.String(u.String()), nil
	}

	switch p := n.payload.(type) {
	case Connector:
		children, err := n.childUUIDs(lookup, true)
		if err != nil {
			return nil, err
		}
		return canonical.Obj(canonical.O("children", children)), nil
	case *Concept[R]:
		c, err := ref(p.Concept)
		if err != nil {
			return nil, err
		}
		return canonical.Obj(canonical.O("concept", c)), nil
	case *Role[R]:
		t, err := ref(p.Type)
		if err != nil {
			return nil, err
		}
		children, err := n.childUUIDs(lookup, false)
		if err != nil {
			return nil, err
		}
		return canonical.Obj(canonical.O("type", t), canonical.O("children", children)), nil
	case *Feature[R]:
		t, err := ref(p.Type)
		if err != nil {
			return nil, err
		}
		m, err := ref(p.Measure)
		if err != nil {
			return nil, err
		}
		children, err := n.childUUIDs(lookup, false)
		if err != nil {
			return nil, err
		}
		return canonical.Obj(
			canonical.O("type", t),
			canonical.O("operator", canonical.String(p.Operator.String())),
			canonical.O("measure", m),
			canonical.O("children", children),
		), nil
	case *Template[R]:
		t, err := ref(p.Template)
		if err != nil {
			return nil, err
		}
		a, err := ref(p.Assemblage)
		if err != nil {
			return nil, err
		}
		return canonical.Obj(canonical.O("template", t), canonical.O("assemblage", a)), nil
	case *PropertyPatternImplication[R]:
		pattern := make(canonical.Array, len(p.Pattern))
		for i, r := range p.Pattern {
			v, err := ref(r)
			if err != nil {
				return nil, err
			}
			pattern[i] = v
		}
		impl, err := ref(p.Implication)
		if err != nil {
			return nil, err
		}
		return canonical.Obj(canonical.O("pattern", pattern), canonical.O("implication", impl)), nil
	case LiteralBoolean:
		return canonical.Obj(canonical.O("value", canonical.Bool(p.Value))), nil
	case LiteralFloat:
		// Floats are not canonical JSON numbers; the shortest round-trip
		// decimal is.
		return canonical.Obj(canonical.O("value",
			canonical.String(strconv.FormatFloat(float64(p.Value), 'g', -1, 32)))), nil
	case LiteralInstant:
		return canonical.Obj(canonical.O("value", canonical.Int(p.Value.UnixMilli()))), nil
	case LiteralInteger:
		return canonical.Obj(canonical.O("value", canonical.Int(p.Value))), nil
	case LiteralString:
		return canonical.Obj(canonical.O("value", canonical.String(p.Value))), nil
	case Substitution:
		return canonical.Obj(canonical.O("field", canonical.String(p.Field))), nil
	}
	return nil, errs.Unsupportedf("node [%d] has unknown payload %T", n.index, n.payload)
}

// childUUIDs returns the children's identities; sorted for unordered sets.
func (n *Node[R]) childUUIDs(lookup ids.Lookup, sorted bool) (canonical.Array, error) {
	out := make([]string, len(n.children))
	for i, c := range n.Children() {
		u, err := c.UUID(lookup)
		if err != nil {
			return nil, err
		}
		out[i] = u.String()
	}
	if sorted {
		slices.Sort(out)
	}
	return canonical.Strings(out...), nil
}

// UUID returns the expression's identity: the identity of its single root,
// or for a multi-root graph a name-based UUID over the sorted root identities.
func (e *Expression[R]) UUID(lookup ids.Lookup) (uuid.UUID, error) {
	roots := e.Roots()
	if len(roots) == 0 {
		return uuid.Nil, errs.Invariantf("empty expression has no identity")
	}
	if len(roots) == 1 {
		return roots[0].UUID(lookup)
	}
	rootIDs := make([]string, len(roots))
	for i, r := range roots {
		u, err := r.UUID(lookup)
		if err != nil {
			return uuid.Nil, err
		}
		rootIDs[i] = u.String()
	}
	slices.Sort(rootIDs)
	seed, err := canonical.Seed(nodeIdentityDomain, canonical.Obj(canonical.O("roots", canonical.Strings(rootIDs...))))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.NewSHA1(namespaceRoot, seed), nil
}
