package logic

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
)

// NodeSemantic is the discriminator of a logic node. The ordinal is the
// serialized byte, so new semantics are only ever appended.
type NodeSemantic uint8

const (
	DefinitionRoot NodeSemantic = iota
	NecessarySet
	SufficientSet
	PropertySet
	And
	Or
	DisjointWith
	RoleAll
	RoleSome
	ConceptSemantic
	FeatureSemantic
	LiteralBooleanSemantic
	LiteralFloatSemantic
	LiteralInstantSemantic
	LiteralIntegerSemantic
	LiteralStringSemantic
	TemplateSemantic
	SubstitutionConcept
	SubstitutionBoolean
	SubstitutionFloat
	SubstitutionInstant
	SubstitutionInteger
	SubstitutionString
	PropertyPatternImplicationSemantic

	semanticCount
)

var semanticNames = [semanticCount]string{
	DefinitionRoot:                     "DEFINITION_ROOT",
	NecessarySet:                       "NECESSARY_SET",
	SufficientSet:                      "SUFFICIENT_SET",
	PropertySet:                        "PROPERTY_SET",
	And:                                "AND",
	Or:                                 "OR",
	DisjointWith:                       "DISJOINT_WITH",
	RoleAll:                            "ROLE_ALL",
	RoleSome:                           "ROLE_SOME",
	ConceptSemantic:                    "CONCEPT",
	FeatureSemantic:                    "FEATURE",
	LiteralBooleanSemantic:             "LITERAL_BOOLEAN",
	LiteralFloatSemantic:               "LITERAL_FLOAT",
	LiteralInstantSemantic:             "LITERAL_INSTANT",
	LiteralIntegerSemantic:             "LITERAL_INTEGER",
	LiteralStringSemantic:              "LITERAL_STRING",
	TemplateSemantic:                   "TEMPLATE",
	SubstitutionConcept:                "SUBSTITUTION_CONCEPT",
	SubstitutionBoolean:                "SUBSTITUTION_BOOLEAN",
	SubstitutionFloat:                  "SUBSTITUTION_FLOAT",
	SubstitutionInstant:                "SUBSTITUTION_INSTANT",
	SubstitutionInteger:                "SUBSTITUTION_INTEGER",
	SubstitutionString:                 "SUBSTITUTION_STRING",
	PropertyPatternImplicationSemantic: "PROPERTY_PATTERN_IMPLICATION",
}

// namespaceRoot anchors the per-semantic namespaces used for node UUIDs.
var namespaceRoot = uuid.NewSHA1(uuid.NameSpaceOID, []byte("termstore.logic.node-semantic"))

var semanticNamespaces = func() [semanticCount]uuid.UUID {
	var out [semanticCount]uuid.UUID
	for i, name := range semanticNames {
		out[i] = uuid.NewSHA1(namespaceRoot, []byte(name))
	}
	return out
}()

func (s NodeSemantic) String() string {
	if s < semanticCount {
		return semanticNames[s]
	}
	return fmt.Sprintf("NodeSemantic(%d)", s)
}

// Valid reports whether s is a known semantic.
func (s NodeSemantic) Valid() bool { return s < semanticCount }

// Namespace returns the fixed namespace UUID node identities of this semantic
// are derived in.
func (s NodeSemantic) Namespace() uuid.UUID {
	if s < semanticCount {
		return semanticNamespaces[s]
	}
	return uuid.Nil
}

// ParseNodeSemantic parses a semantic name such as "ROLE_SOME".
func ParseNodeSemantic(name string) (NodeSemantic, error) {
	for i, n := range semanticNames {
		if n == name {
			return NodeSemantic(i), nil
		}
	}
	return 0, errs.Unsupportedf("unknown node semantic %q", name)
}

// arity classifies how many children a semantic allows.
type arity uint8

const (
	arityLeaf arity = iota
	arityOne
	arityMany
)

func (s NodeSemantic) arity() arity {
	switch s {
	case DefinitionRoot, NecessarySet, SufficientSet, PropertySet, And, Or, DisjointWith:
		return arityMany
	case RoleAll, RoleSome, FeatureSemantic:
		return arityOne
	case ConceptSemantic, TemplateSemantic, PropertyPatternImplicationSemantic,
		LiteralBooleanSemantic, LiteralFloatSemantic, LiteralInstantSemantic,
		LiteralIntegerSemantic, LiteralStringSemantic,
		SubstitutionConcept, SubstitutionBoolean, SubstitutionFloat,
		SubstitutionInstant, SubstitutionInteger, SubstitutionString:
		return arityLeaf
	}
	return arityLeaf
}

// IsLeaf reports whether nodes of this semantic never have children.
func (s NodeSemantic) IsLeaf() bool { return s.arity() == arityLeaf }

// IsConnector reports whether s is a multi-child set operator.
func (s NodeSemantic) IsConnector() bool { return s.arity() == arityMany }

// IsSubstitution reports whether s is one of the SUBSTITUTION_* semantics.
func (s NodeSemantic) IsSubstitution() bool {
	return s >= SubstitutionConcept && s <= SubstitutionString
}

// ConcreteDomainOperator is the comparison carried by a feature node.
// The ordinal is the serialized byte.
type ConcreteDomainOperator uint8

const (
	Equals ConcreteDomainOperator = iota
	LessThan
	LessThanEquals
	GreaterThan
	GreaterThanEquals

	operatorCount
)

var operatorNames = [operatorCount]string{
	Equals:            "EQUALS",
	LessThan:          "LESS_THAN",
	LessThanEquals:    "LESS_THAN_EQUALS",
	GreaterThan:       "GREATER_THAN",
	GreaterThanEquals: "GREATER_THAN_EQUALS",
}

// operatorIdents are the Go identifiers used by the simple renderer.
var operatorIdents = [operatorCount]string{
	Equals:            "Equals",
	LessThan:          "LessThan",
	LessThanEquals:    "LessThanEquals",
	GreaterThan:       "GreaterThan",
	GreaterThanEquals: "GreaterThanEquals",
}

func (o ConcreteDomainOperator) String() string {
	if o < operatorCount {
		return operatorNames[o]
	}
	return fmt.Sprintf("ConcreteDomainOperator(%d)", o)
}

// Valid reports whether o is a known operator.
func (o ConcreteDomainOperator) Valid() bool { return o < operatorCount }

// ParseOperator parses an operator name such as "GREATER_THAN".
func ParseOperator(name string) (ConcreteDomainOperator, error) {
	for i, n := range operatorNames {
		if n == name {
			return ConcreteDomainOperator(i), nil
		}
	}
	return 0, errs.Unsupportedf("unknown concrete domain operator %q", name)
}

// Target selects the identifier representation of a serialized expression.
type Target uint8

const (
	// Internal is nid-addressed; valid only within one identifier context.
	Internal Target = iota
	// External is UUID-addressed and portable between stores.
	External
)

func (t Target) String() string {
	switch t {
	case Internal:
		return "INTERNAL"
	case External:
		return "EXTERNAL"
	}
	return fmt.Sprintf("Target(%d)", t)
}
