package logic

import (
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Node is one node of a logical expression: a header (semantic, index,
// child indices, cached identity) plus a variant payload.
//
// Nodes are owned by exactly one Expression, which assigns their index.
// Indices are local to that expression and are not portable across graphs.
type Node[R Ref] struct {
	owner    *Expression[R]
	index    int
	semantic NodeSemantic
	payload  Payload
	children []int
	id       atomic.Pointer[uuid.UUID]
}

// Index returns the node's position in its owning expression.
func (n *Node[R]) Index() int { return n.index }

// Semantic returns the node's discriminator.
func (n *Node[R]) Semantic() NodeSemantic { return n.semantic }

// Payload returns the node's variant content. Identifier-carrying payloads
// are pointers to generic types, e.g. *Concept[ids.Nid].
func (n *Node[R]) Payload() Payload { return n.payload }

// ChildIndices returns the indices of the node's children, in order.
func (n *Node[R]) ChildIndices() []int { return slices.Clone(n.children) }

// Children returns the node's children, in order.
func (n *Node[R]) Children() []*Node[R] {
	out := make([]*Node[R], len(n.children))
	for i, c := range n.children {
		out[i] = n.owner.nodes[c]
	}
	return out
}

// AddChildren appends children to the node.
//
// Leaf semantics (CONCEPT, TEMPLATE, PROPERTY_PATTERN_IMPLICATION, literals,
// substitutions) never have children and reject the call. Typed connectors
// (ROLE_SOME, ROLE_ALL, FEATURE) accept exactly one child over their lifetime,
// and ROLE_SOME rejects an OR child.
func (n *Node[R]) AddChildren(children ...*Node[R]) error {
	switch n.semantic.arity() {
	case arityLeaf:
		return errs.Invariantf("%s node [%d] cannot have children", n.semantic, n.index)
	case arityOne:
		if len(n.children)+len(children) != 1 {
			return errs.Invariantf("%s node [%d] requires exactly one child, got %d",
				n.semantic, n.index, len(n.children)+len(children))
		}
	}

	for _, c := range children {
		if c == nil || c.owner != n.owner {
			return errs.Invariantf("%s node [%d]: child belongs to a different expression", n.semantic, n.index)
		}
		if c == n {
			return errs.Invariantf("%s node [%d] cannot be its own child", n.semantic, n.index)
		}
		if c.reaches(n.index) {
			return errs.Invariantf("%s node [%d]: child [%d] would create a cycle", n.semantic, n.index, c.index)
		}
		if err := checkRoleSomeChild(n.semantic, c.semantic); err != nil {
			return err
		}
	}

	for _, c := range children {
		n.children = append(n.children, c.index)
	}
	n.owner.invalidateIdentities()
	return nil
}

// reaches reports whether target is n or one of its descendants.
func (n *Node[R]) reaches(target int) bool {
	seen := make(map[int]bool)
	stack := []int{n.index}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i == target {
			return true
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		stack = append(stack, n.owner.nodes[i].children...)
	}
	return false
}

// AddConceptsReferenced adds every identifier this node references (concept,
// role and feature types, measures, templates, property patterns) to set.
func (n *Node[R]) AddConceptsReferenced(set RefSet[R]) {
	set.Add(payloadRefs[R](n.payload)...)
}

// ConceptRef returns the referenced concept of a CONCEPT node.
func (n *Node[R]) ConceptRef() (R, bool) {
	if p, ok := n.payload.(*Concept[R]); ok {
		return p.Concept, true
	}
	var zero R
	return zero, false
}

// TypeRef returns the type concept of a ROLE_* or FEATURE node.
func (n *Node[R]) TypeRef() (R, bool) {
	switch p := n.payload.(type) {
	case *Role[R]:
		return p.Type, true
	case *Feature[R]:
		return p.Type, true
	}
	var zero R
	return zero, false
}

func checkRoleSomeChild(parent, child NodeSemantic) error {
	if parent == RoleSome && child == Or {
		return errs.Invariantf("ROLE_SOME cannot have an OR child")
	}
	return nil
}

// checkConceptRef enforces the negative-nid invariant of INTERNAL concept nodes.
func checkConceptRef[R Ref](c R) error {
	if nid, ok := any(c).(ids.Nid); ok && nid >= 0 {
		return errs.Invariantf("concept nid %d must be negative", nid)
	}
	return nil
}
