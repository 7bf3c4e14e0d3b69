package logic

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/termstore/internal/errs"
)

// yamlExpression is the document form of an EXTERNAL expression. Nodes keep
// their indices; children refer to positions in the node list.
type yamlExpression struct {
	Nodes []yamlNode `yaml:"nodes"`
}

type yamlNode struct {
	Semantic    string   `yaml:"semantic"`
	Children    []int    `yaml:"children,omitempty,flow"`
	Concept     string   `yaml:"concept,omitempty"`
	Type        string   `yaml:"type,omitempty"`
	Operator    string   `yaml:"operator,omitempty"`
	Measure     string   `yaml:"measure,omitempty"`
	Template    string   `yaml:"template,omitempty"`
	Assemblage  string   `yaml:"assemblage,omitempty"`
	Pattern     []string `yaml:"pattern,omitempty"`
	Implication string   `yaml:"implication,omitempty"`
	Value       string   `yaml:"value,omitempty"`
	Field       string   `yaml:"field,omitempty"`
}

// EncodeYAML writes a UUID-addressed expression as YAML.
func EncodeYAML(e *Expression[uuid.UUID]) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	doc := yamlExpression{Nodes: make([]yamlNode, len(e.nodes))}
	for i, n := range e.nodes {
		yn := yamlNode{Semantic: n.semantic.String(), Children: n.ChildIndices()}
		switch p := n.payload.(type) {
		case *Concept[uuid.UUID]:
			yn.Concept = p.Concept.String()
		case *Role[uuid.UUID]:
			yn.Type = p.Type.String()
		case *Feature[uuid.UUID]:
			yn.Type = p.Type.String()
			yn.Operator = p.Operator.String()
			yn.Measure = p.Measure.String()
		case *Template[uuid.UUID]:
			yn.Template = p.Template.String()
			yn.Assemblage = p.Assemblage.String()
		case *PropertyPatternImplication[uuid.UUID]:
			for _, r := range p.Pattern {
				yn.Pattern = append(yn.Pattern, r.String())
			}
			yn.Implication = p.Implication.String()
		case LiteralBoolean:
			yn.Value = strconv.FormatBool(p.Value)
		case LiteralFloat:
			yn.Value = strconv.FormatFloat(float64(p.Value), 'g', -1, 32)
		case LiteralInstant:
			yn.Value = formatInstant(p.Value)
		case LiteralInteger:
			yn.Value = strconv.FormatInt(int64(p.Value), 10)
		case LiteralString:
			yn.Value = p.Value
		case Substitution:
			yn.Field = p.Field
		}
		doc.Nodes[i] = yn
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errs.Wrap(err, "marshal expression yaml")
	}
	return out, nil
}

// DecodeYAML reads the document written by EncodeYAML and validates the
// resulting graph.
func DecodeYAML(data []byte) (*Expression[uuid.UUID], error) {
	var doc yamlExpression
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(err, "unmarshal expression yaml")
	}
	e := New[uuid.UUID]()
	for i, yn := range doc.Nodes {
		semantic, err := ParseNodeSemantic(yn.Semantic)
		if err != nil {
			return nil, errs.Wrapf(err, "node [%d]", i)
		}
		p, err := yn.payload(semantic)
		if err != nil {
			return nil, errs.Wrapf(err, "%s node [%d]", semantic, i)
		}
		e.addNode(semantic, p)
	}
	for i, yn := range doc.Nodes {
		e.nodes[i].children = append([]int(nil), yn.Children...)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (yn yamlNode) payload(semantic NodeSemantic) (Payload, error) {
	switch semantic {
	case DefinitionRoot, NecessarySet, SufficientSet, PropertySet, And, Or, DisjointWith:
		return Connector{}, nil
	case ConceptSemantic:
		c, err := parseYAMLRef("concept", yn.Concept)
		if err != nil {
			return nil, err
		}
		return &Concept[uuid.UUID]{Concept: c}, nil
	case RoleAll, RoleSome:
		t, err := parseYAMLRef("type", yn.Type)
		if err != nil {
			return nil, err
		}
		return &Role[uuid.UUID]{Type: t}, nil
	case FeatureSemantic:
		t, err := parseYAMLRef("type", yn.Type)
		if err != nil {
			return nil, err
		}
		op, err := ParseOperator(yn.Operator)
		if err != nil {
			return nil, err
		}
		m, err := parseYAMLRef("measure", yn.Measure)
		if err != nil {
			return nil, err
		}
		return &Feature[uuid.UUID]{Type: t, Operator: op, Measure: m}, nil
	case TemplateSemantic:
		t, err := parseYAMLRef("template", yn.Template)
		if err != nil {
			return nil, err
		}
		a, err := parseYAMLRef("assemblage", yn.Assemblage)
		if err != nil {
			return nil, err
		}
		return &Template[uuid.UUID]{Template: t, Assemblage: a}, nil
	case PropertyPatternImplicationSemantic:
		pattern := make([]uuid.UUID, len(yn.Pattern))
		for i, s := range yn.Pattern {
			u, err := parseYAMLRef("pattern", s)
			if err != nil {
				return nil, err
			}
			pattern[i] = u
		}
		impl, err := parseYAMLRef("implication", yn.Implication)
		if err != nil {
			return nil, err
		}
		return &PropertyPatternImplication[uuid.UUID]{Pattern: pattern, Implication: impl}, nil
	case LiteralBooleanSemantic:
		v, err := strconv.ParseBool(yn.valueOr("false"))
		if err != nil {
			return nil, errs.Wrap(err, "boolean value")
		}
		return LiteralBoolean{Value: v}, nil
	case LiteralFloatSemantic:
		v, err := strconv.ParseFloat(yn.valueOr("0"), 32)
		if err != nil {
			return nil, errs.Wrap(err, "float value")
		}
		return newLiteralFloat(float32(v)), nil
	case LiteralInstantSemantic:
		v, err := time.Parse(time.RFC3339Nano, yn.Value)
		if err != nil {
			return nil, errs.Wrap(err, "instant value")
		}
		return LiteralInstant{Value: time.UnixMilli(v.UnixMilli()).UTC()}, nil
	case LiteralIntegerSemantic:
		v, err := strconv.ParseInt(yn.valueOr("0"), 10, 32)
		if err != nil {
			return nil, errs.Wrap(err, "integer value")
		}
		return LiteralInteger{Value: int32(v)}, nil
	case LiteralStringSemantic:
		return LiteralString{Value: yn.Value}, nil
	case SubstitutionConcept, SubstitutionBoolean, SubstitutionFloat,
		SubstitutionInstant, SubstitutionInteger, SubstitutionString:
		return Substitution{Field: yn.Field}, nil
	}
	return nil, errs.Unsupportedf("unknown node semantic %s", semantic)
}

func (yn yamlNode) valueOr(def string) string {
	if yn.Value == "" {
		return def
	}
	return yn.Value
}

func parseYAMLRef(field, s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errs.Wrapf(err, "%s %q", field, s)
	}
	return u, nil
}
