package logic

import (
	"time"
)

// Builder builds an expression from nested calls, deferring error handling
// to Build:
//
//	b := logic.NewBuilder[uuid.UUID]()
//	b.DefinitionRoot(b.NecessarySet(b.And(b.Concept(bleeding))))
//	expr, err := b.Build()
//
// The first construction error is kept; later calls still run but their
// result is discarded by Build.
type Builder[R Ref] struct {
	expr *Expression[R]
	err  error
}

// NewBuilder creates a builder over a fresh expression.
func NewBuilder[R Ref]() *Builder[R] {
	return &Builder[R]{expr: New[R]()}
}

// Build validates and returns the expression, or the first error seen.
func (b *Builder[R]) Build() (*Expression[R], error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.expr.Validate(); err != nil {
		return nil, err
	}
	return b.expr, nil
}

// Err returns the first error recorded so far.
func (b *Builder[R]) Err() error { return b.err }

func (b *Builder[R]) record(n *Node[R], err error) *Node[R] {
	if err != nil && b.err == nil {
		b.err = err
	}
	return n
}

func (b *Builder[R]) DefinitionRoot(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.DefinitionRoot(children...))
}

func (b *Builder[R]) NecessarySet(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.NecessarySet(children...))
}

func (b *Builder[R]) SufficientSet(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.SufficientSet(children...))
}

func (b *Builder[R]) PropertySet(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.PropertySet(children...))
}

func (b *Builder[R]) And(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.And(children...))
}

func (b *Builder[R]) Or(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.Or(children...))
}

func (b *Builder[R]) DisjointWith(children ...*Node[R]) *Node[R] {
	return b.record(b.expr.DisjointWith(children...))
}

func (b *Builder[R]) Concept(concept R) *Node[R] {
	return b.record(b.expr.Concept(concept))
}

func (b *Builder[R]) SomeRole(roleType R, child *Node[R]) *Node[R] {
	return b.record(b.expr.SomeRole(roleType, child))
}

func (b *Builder[R]) AllRole(roleType R, child *Node[R]) *Node[R] {
	return b.record(b.expr.AllRole(roleType, child))
}

func (b *Builder[R]) Feature(featureType R, op ConcreteDomainOperator, measure R, child *Node[R]) *Node[R] {
	return b.record(b.expr.Feature(featureType, op, measure, child))
}

func (b *Builder[R]) Template(template, assemblage R) *Node[R] {
	return b.record(b.expr.Template(template, assemblage))
}

func (b *Builder[R]) PropertyPatternImplication(pattern []R, implication R) *Node[R] {
	return b.record(b.expr.PropertyPatternImplication(pattern, implication))
}

func (b *Builder[R]) BooleanLiteral(v bool) *Node[R] {
	return b.record(b.expr.BooleanLiteral(v))
}

func (b *Builder[R]) FloatLiteral(v float32) *Node[R] {
	return b.record(b.expr.FloatLiteral(v))
}

func (b *Builder[R]) InstantLiteral(v time.Time) *Node[R] {
	return b.record(b.expr.InstantLiteral(v))
}

func (b *Builder[R]) IntegerLiteral(v int32) *Node[R] {
	return b.record(b.expr.IntegerLiteral(v))
}

func (b *Builder[R]) StringLiteral(v string) *Node[R] {
	return b.record(b.expr.StringLiteral(v))
}

func (b *Builder[R]) Substitution(semantic NodeSemantic, field string) *Node[R] {
	return b.record(b.expr.Substitution(semantic, field))
}
