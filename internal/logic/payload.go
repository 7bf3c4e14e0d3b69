package logic

import (
	"math"
	"time"
)

// Payload is the variant-specific content of a node. It is a closed set:
// only the types in this file implement it. Identifier-carrying variants are
// generic over the graph's Ref type; the rest carry plain values.
type Payload interface {
	payload() // marker restricting implementations to this package
}

// Connector is the payload of set operators (DEFINITION_ROOT, NECESSARY_SET,
// SUFFICIENT_SET, PROPERTY_SET, AND, OR, DISJOINT_WITH). It has no fields;
// the operator's content is its children.
type Connector struct{}

// Concept references a single concept.
type Concept[R Ref] struct {
	Concept R
}

// Role is a typed connector restricting its single child through the role
// type concept (ROLE_SOME, ROLE_ALL).
type Role[R Ref] struct {
	Type R
}

// Feature is a typed connector constraining a concrete-domain value: its
// single child is the literal, Measure names the units.
type Feature[R Ref] struct {
	Type     R
	Operator ConcreteDomainOperator
	Measure  R
}

// Template references a template-defining concept and the assemblage that
// supplies substitution values.
type Template[R Ref] struct {
	Template   R
	Assemblage R
}

// PropertyPatternImplication models "if X P1 Y and Y P2 Z then X Implication Z".
type PropertyPatternImplication[R Ref] struct {
	Pattern     []R
	Implication R
}

// LiteralBoolean is a boolean literal value.
type LiteralBoolean struct{ Value bool }

// LiteralFloat is a float literal value.
type LiteralFloat struct{ Value float32 }

// newLiteralFloat folds -0 into +0 and every NaN into one NaN, so literals
// that compare equal also encode and identify identically.
func newLiteralFloat(v float32) LiteralFloat {
	switch {
	case math.IsNaN(float64(v)):
		return LiteralFloat{Value: float32(math.NaN())}
	case v == 0:
		return LiteralFloat{Value: 0}
	}
	return LiteralFloat{Value: v}
}

// LiteralInstant is a point in time, kept at millisecond precision.
type LiteralInstant struct{ Value time.Time }

// LiteralInteger is an integer literal value.
type LiteralInteger struct{ Value int32 }

// LiteralString is a string literal value.
type LiteralString struct{ Value string }

// Substitution is a placeholder filled from a template's assemblage. Field
// names the substitution field spec.
type Substitution struct{ Field string }

func (Connector) payload()                      {}
func (*Concept[R]) payload()                    {}
func (*Role[R]) payload()                       {}
func (*Feature[R]) payload()                    {}
func (*Template[R]) payload()                   {}
func (*PropertyPatternImplication[R]) payload() {}
func (LiteralBoolean) payload()                 {}
func (LiteralFloat) payload()                   {}
func (LiteralInstant) payload()                 {}
func (LiteralInteger) payload()                 {}
func (LiteralString) payload()                  {}
func (Substitution) payload()                   {}

// payloadRefs returns the identifiers a payload references, in declared field
// order.
func payloadRefs[R Ref](p Payload) []R {
	switch v := p.(type) {
	case *Concept[R]:
		return []R{v.Concept}
	case *Role[R]:
		return []R{v.Type}
	case *Feature[R]:
		return []R{v.Type, v.Measure}
	case *Template[R]:
		return []R{v.Template, v.Assemblage}
	case *PropertyPatternImplication[R]:
		out := make([]R, 0, len(v.Pattern)+1)
		out = append(out, v.Pattern...)
		return append(out, v.Implication)
	}
	return nil
}

// mapPayload rebuilds p with every identifier translated by f. Value-only
// payloads are returned unchanged.
func mapPayload[A, B Ref](p Payload, f func(A) (B, error)) (Payload, error) {
	switch v := p.(type) {
	case *Concept[A]:
		c, err := f(v.Concept)
		if err != nil {
			return nil, err
		}
		return &Concept[B]{Concept: c}, nil
	case *Role[A]:
		t, err := f(v.Type)
		if err != nil {
			return nil, err
		}
		return &Role[B]{Type: t}, nil
	case *Feature[A]:
		t, err := f(v.Type)
		if err != nil {
			return nil, err
		}
		m, err := f(v.Measure)
		if err != nil {
			return nil, err
		}
		return &Feature[B]{Type: t, Operator: v.Operator, Measure: m}, nil
	case *Template[A]:
		t, err := f(v.Template)
		if err != nil {
			return nil, err
		}
		a, err := f(v.Assemblage)
		if err != nil {
			return nil, err
		}
		return &Template[B]{Template: t, Assemblage: a}, nil
	case *PropertyPatternImplication[A]:
		pattern := make([]B, len(v.Pattern))
		for i, r := range v.Pattern {
			mapped, err := f(r)
			if err != nil {
				return nil, err
			}
			pattern[i] = mapped
		}
		impl, err := f(v.Implication)
		if err != nil {
			return nil, err
		}
		return &PropertyPatternImplication[B]{Pattern: pattern, Implication: impl}, nil
	}
	return p, nil
}
