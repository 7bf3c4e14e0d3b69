package logic

import (
	"cmp"
	"slices"
)

// Compare orders n against other: by semantic ordinal first, then by the
// variant's fields. Nodes may belong to different expressions. The result is
// zero exactly when both nodes are structurally equal, so Compare doubles as
// the equality used by set semantics and by Equal.
func (n *Node[R]) Compare(other *Node[R]) int {
	if c := cmp.Compare(n.semantic, other.semantic); c != 0 {
		return c
	}
	return compareFields(n, other)
}

// CompareFields compares the variant fields of two nodes of the same
// semantic: identifier fields in a fixed priority (for FEATURE the measure,
// then the operator, then the type), then children. Nodes of different
// semantics order by semantic.
func (n *Node[R]) CompareFields(other *Node[R]) int {
	if n.semantic != other.semantic {
		return cmp.Compare(n.semantic, other.semantic)
	}
	return compareFields(n, other)
}

func compareFields[R Ref](a, b *Node[R]) int {
	switch pa := a.payload.(type) {
	case Connector:
		return compareChildSets(a, b)
	case *Concept[R]:
		return compareRef(pa.Concept, b.payload.(*Concept[R]).Concept)
	case *Role[R]:
		return compareTypedNodeFields(a, b, pa.Type, b.payload.(*Role[R]).Type)
	case *Feature[R]:
		pb := b.payload.(*Feature[R])
		if c := compareRef(pa.Measure, pb.Measure); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.Operator, pb.Operator); c != 0 {
			return c
		}
		return compareTypedNodeFields(a, b, pa.Type, pb.Type)
	case *Template[R]:
		pb := b.payload.(*Template[R])
		if c := compareRef(pa.Template, pb.Template); c != 0 {
			return c
		}
		return compareRef(pa.Assemblage, pb.Assemblage)
	case *PropertyPatternImplication[R]:
		pb := b.payload.(*PropertyPatternImplication[R])
		if c := compareRef(pa.Implication, pb.Implication); c != 0 {
			return c
		}
		return compareRefs(pa.Pattern, pb.Pattern)
	case LiteralBoolean:
		pb := b.payload.(LiteralBoolean)
		return compareBool(pa.Value, pb.Value)
	case LiteralFloat:
		return cmp.Compare(pa.Value, b.payload.(LiteralFloat).Value)
	case LiteralInstant:
		return pa.Value.Compare(b.payload.(LiteralInstant).Value)
	case LiteralInteger:
		return cmp.Compare(pa.Value, b.payload.(LiteralInteger).Value)
	case LiteralString:
		return cmp.Compare(pa.Value, b.payload.(LiteralString).Value)
	case Substitution:
		return cmp.Compare(pa.Field, b.payload.(Substitution).Field)
	}
	return 0
}

// compareTypedNodeFields compares the type concept, then the single child.
func compareTypedNodeFields[R Ref](a, b *Node[R], ta, tb R) int {
	if c := compareRef(ta, tb); c != 0 {
		return c
	}
	return compareNodeLists(a.Children(), b.Children())
}

// compareChildSets compares connector children as unordered multisets.
func compareChildSets[R Ref](a, b *Node[R]) int {
	return compareNodeLists(sortedNodes(a.Children()), sortedNodes(b.Children()))
}

func compareNodeLists[R Ref](a, b []*Node[R]) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	for i := range a {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedNodes[R Ref](nodes []*Node[R]) []*Node[R] {
	slices.SortStableFunc(nodes, (*Node[R]).Compare)
	return nodes
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Equal reports whether two expressions are structurally equal: their roots,
// compared as a multiset, match node for node. Node indices do not matter.
func Equal[R Ref](a, b *Expression[R]) bool {
	return compareNodeLists(sortedNodes(a.Roots()), sortedNodes(b.Roots())) == 0
}
