package logic

import (
	"slices"
	"time"

	"github.com/roach88/termstore/internal/errs"
)

// Expression is an ordered collection of logic nodes forming a DAG with one
// or more roots. Node indices are dense: node i is at position i.
//
// An Expression is built by one goroutine and then shared read-only.
// Concurrent readers may traverse it, compare it, derive identities and
// serialize it; AddChildren must not be called after publication.
type Expression[R Ref] struct {
	nodes []*Node[R]
}

// New creates an empty expression.
func New[R Ref]() *Expression[R] {
	return &Expression[R]{}
}

// Len returns the number of nodes.
func (e *Expression[R]) Len() int { return len(e.nodes) }

// Node returns the node at index i, or nil if out of range.
func (e *Expression[R]) Node(i int) *Node[R] {
	if i < 0 || i >= len(e.nodes) {
		return nil
	}
	return e.nodes[i]
}

// Nodes returns the nodes in index order.
func (e *Expression[R]) Nodes() []*Node[R] { return slices.Clone(e.nodes) }

// Roots returns the nodes no other node points at, in index order.
func (e *Expression[R]) Roots() []*Node[R] {
	referenced := make([]bool, len(e.nodes))
	for _, n := range e.nodes {
		for _, c := range n.children {
			if c >= 0 && c < len(referenced) {
				referenced[c] = true
			}
		}
	}
	var roots []*Node[R]
	for i, n := range e.nodes {
		if !referenced[i] {
			roots = append(roots, n)
		}
	}
	return roots
}

// Root returns the first root, or nil for an empty expression.
func (e *Expression[R]) Root() *Node[R] {
	roots := e.Roots()
	if len(roots) == 0 {
		return nil
	}
	return roots[0]
}

// AddConceptsReferenced adds every identifier referenced anywhere in the
// graph to set. Used to index which concepts participate in which graphs.
func (e *Expression[R]) AddConceptsReferenced(set RefSet[R]) {
	for _, n := range e.nodes {
		n.AddConceptsReferenced(set)
	}
}

// ConceptsReferenced returns the referenced identifiers as a new set.
func (e *Expression[R]) ConceptsReferenced() RefSet[R] {
	set := make(RefSet[R])
	e.AddConceptsReferenced(set)
	return set
}

// addNode appends a node and assigns its index. Callers enforce payload rules.
func (e *Expression[R]) addNode(semantic NodeSemantic, p Payload) *Node[R] {
	n := &Node[R]{
		owner:    e,
		index:    len(e.nodes),
		semantic: semantic,
		payload:  p,
	}
	e.nodes = append(e.nodes, n)
	return n
}

func (e *Expression[R]) connector(semantic NodeSemantic, children []*Node[R]) (*Node[R], error) {
	n := e.addNode(semantic, Connector{})
	if err := n.AddChildren(children...); err != nil {
		e.nodes = e.nodes[:len(e.nodes)-1]
		return nil, err
	}
	return n, nil
}

func (e *Expression[R]) typed(semantic NodeSemantic, p Payload, child *Node[R]) (*Node[R], error) {
	n := e.addNode(semantic, p)
	if err := n.AddChildren(child); err != nil {
		e.nodes = e.nodes[:len(e.nodes)-1]
		return nil, err
	}
	return n, nil
}

// DefinitionRoot adds the DEFINITION_ROOT node. It may start without children.
func (e *Expression[R]) DefinitionRoot(children ...*Node[R]) (*Node[R], error) {
	return e.connector(DefinitionRoot, children)
}

func (e *Expression[R]) NecessarySet(children ...*Node[R]) (*Node[R], error) {
	return e.connector(NecessarySet, children)
}

func (e *Expression[R]) SufficientSet(children ...*Node[R]) (*Node[R], error) {
	return e.connector(SufficientSet, children)
}

func (e *Expression[R]) PropertySet(children ...*Node[R]) (*Node[R], error) {
	return e.connector(PropertySet, children)
}

func (e *Expression[R]) And(children ...*Node[R]) (*Node[R], error) {
	return e.connector(And, children)
}

func (e *Expression[R]) Or(children ...*Node[R]) (*Node[R], error) {
	return e.connector(Or, children)
}

func (e *Expression[R]) DisjointWith(children ...*Node[R]) (*Node[R], error) {
	return e.connector(DisjointWith, children)
}

// Concept adds a CONCEPT leaf. In the INTERNAL form the nid must be negative.
func (e *Expression[R]) Concept(concept R) (*Node[R], error) {
	if err := checkConceptRef(concept); err != nil {
		return nil, err
	}
	return e.addNode(ConceptSemantic, &Concept[R]{Concept: concept}), nil
}

// SomeRole adds a ROLE_SOME node. The child must not be an OR.
func (e *Expression[R]) SomeRole(roleType R, child *Node[R]) (*Node[R], error) {
	return e.typed(RoleSome, &Role[R]{Type: roleType}, child)
}

// AllRole adds a ROLE_ALL node.
func (e *Expression[R]) AllRole(roleType R, child *Node[R]) (*Node[R], error) {
	return e.typed(RoleAll, &Role[R]{Type: roleType}, child)
}

// Feature adds a FEATURE node whose child is the constrained literal.
func (e *Expression[R]) Feature(featureType R, op ConcreteDomainOperator, measure R, child *Node[R]) (*Node[R], error) {
	if !op.Valid() {
		return nil, errs.Unsupportedf("unknown concrete domain operator %d", uint8(op))
	}
	return e.typed(FeatureSemantic, &Feature[R]{Type: featureType, Operator: op, Measure: measure}, child)
}

// Template adds a TEMPLATE leaf.
func (e *Expression[R]) Template(template, assemblage R) (*Node[R], error) {
	return e.addNode(TemplateSemantic, &Template[R]{Template: template, Assemblage: assemblage}), nil
}

// PropertyPatternImplication adds a PROPERTY_PATTERN_IMPLICATION leaf. The
// pattern is copied.
func (e *Expression[R]) PropertyPatternImplication(pattern []R, implication R) (*Node[R], error) {
	p := &PropertyPatternImplication[R]{Pattern: slices.Clone(pattern), Implication: implication}
	return e.addNode(PropertyPatternImplicationSemantic, p), nil
}

func (e *Expression[R]) BooleanLiteral(v bool) (*Node[R], error) {
	return e.addNode(LiteralBooleanSemantic, LiteralBoolean{Value: v}), nil
}

func (e *Expression[R]) FloatLiteral(v float32) (*Node[R], error) {
	return e.addNode(LiteralFloatSemantic, newLiteralFloat(v)), nil
}

// InstantLiteral adds a LITERAL_INSTANT leaf, truncated to milliseconds in UTC.
func (e *Expression[R]) InstantLiteral(v time.Time) (*Node[R], error) {
	return e.addNode(LiteralInstantSemantic, LiteralInstant{Value: time.UnixMilli(v.UnixMilli()).UTC()}), nil
}

func (e *Expression[R]) IntegerLiteral(v int32) (*Node[R], error) {
	return e.addNode(LiteralIntegerSemantic, LiteralInteger{Value: v}), nil
}

func (e *Expression[R]) StringLiteral(v string) (*Node[R], error) {
	return e.addNode(LiteralStringSemantic, LiteralString{Value: v}), nil
}

// Substitution adds a SUBSTITUTION_* leaf.
func (e *Expression[R]) Substitution(semantic NodeSemantic, field string) (*Node[R], error) {
	if !semantic.IsSubstitution() {
		return nil, errs.Unsupportedf("%s is not a substitution semantic", semantic)
	}
	return e.addNode(semantic, Substitution{Field: field}), nil
}

// Validate checks the structural invariants of the whole graph: dense
// indices, child indices in range, arity per semantic, the ROLE_SOME guard,
// negative concept nids, and acyclicity.
func (e *Expression[R]) Validate() error {
	for i, n := range e.nodes {
		if n.index != i || n.owner != e {
			return errs.Invariantf("node at position %d has index %d", i, n.index)
		}
		if !n.semantic.Valid() {
			return errs.Unsupportedf("node [%d] has unknown semantic %d", i, uint8(n.semantic))
		}
		switch n.semantic.arity() {
		case arityLeaf:
			if len(n.children) != 0 {
				return errs.Invariantf("%s node [%d] cannot have children", n.semantic, i)
			}
		case arityOne:
			if len(n.children) != 1 {
				return errs.Invariantf("%s node [%d] requires exactly one child, got %d", n.semantic, i, len(n.children))
			}
		case arityMany:
			if len(n.children) == 0 && n.semantic != DefinitionRoot {
				return errs.Invariantf("%s node [%d] requires at least one child", n.semantic, i)
			}
		}
		for _, c := range n.children {
			if c < 0 || c >= len(e.nodes) || c == i {
				return errs.Invariantf("%s node [%d] has invalid child index %d", n.semantic, i, c)
			}
			if err := checkRoleSomeChild(n.semantic, e.nodes[c].semantic); err != nil {
				return errs.Wrapf(err, "node [%d]", i)
			}
		}
		if c, ok := n.payload.(*Concept[R]); ok {
			if err := checkConceptRef(c.Concept); err != nil {
				return errs.Wrapf(err, "node [%d]", i)
			}
		}
	}
	return e.checkAcyclic()
}

func (e *Expression[R]) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, len(e.nodes))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visiting:
			return errs.Invariantf("cycle through node [%d]", i)
		case done:
			return nil
		}
		state[i] = visiting
		for _, c := range e.nodes[i].children {
			if err := visit(c); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}

	for i := range e.nodes {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// invalidateIdentities drops cached node UUIDs after a structural change.
func (e *Expression[R]) invalidateIdentities() {
	for _, n := range e.nodes {
		n.id.Store(nil)
	}
}
