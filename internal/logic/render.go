package logic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const instantLayout = "2006-01-02T15:04:05.000Z"

// String renders the verbose diagnostic form: a header line, then each root's
// subtree with node indices, indented two spaces per level. Shared subgraphs
// are rendered under every parent. The output is stable for a given graph.
func (e *Expression[R]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Expression %s (%d nodes)\n", targetOf[R](), len(e.nodes))
	for _, root := range e.Roots() {
		renderVerbose(&sb, root, 0)
	}
	return sb.String()
}

func renderVerbose[R Ref](sb *strings.Builder, n *Node[R], depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "[%d] %s%s\n", n.index, n.semantic, verboseDetail[R](n.payload))
	for _, c := range n.Children() {
		renderVerbose(sb, c, depth+1)
	}
}

func verboseDetail[R Ref](p Payload) string {
	switch v := p.(type) {
	case *Concept[R]:
		return " " + refLabel(v.Concept)
	case *Role[R]:
		return " type=" + refLabel(v.Type)
	case *Feature[R]:
		return fmt.Sprintf(" type=%s %s measure=%s", refLabel(v.Type), v.Operator, refLabel(v.Measure))
	case *Template[R]:
		return fmt.Sprintf(" template=%s assemblage=%s", refLabel(v.Template), refLabel(v.Assemblage))
	case *PropertyPatternImplication[R]:
		labels := make([]string, len(v.Pattern))
		for i, r := range v.Pattern {
			labels[i] = refLabel(r)
		}
		return fmt.Sprintf(" pattern=[%s] implication=%s", strings.Join(labels, ", "), refLabel(v.Implication))
	case LiteralBoolean:
		return " " + strconv.FormatBool(v.Value)
	case LiteralFloat:
		return " " + strconv.FormatFloat(float64(v.Value), 'g', -1, 32)
	case LiteralInstant:
		return " " + v.Value.UTC().Format(instantLayout)
	case LiteralInteger:
		return " " + strconv.FormatInt(int64(v.Value), 10)
	case LiteralString:
		return " " + strconv.Quote(v.Value)
	case Substitution:
		return " field=" + strconv.Quote(v.Field)
	}
	return ""
}

// SimpleString renders the expression as Go source for a Builder named b,
// one statement per root. Feeding the output back through a Builder of the
// same Ref type reconstructs an equal expression.
func (e *Expression[R]) SimpleString() string {
	var sb strings.Builder
	for _, root := range e.Roots() {
		renderSimple(&sb, root, 0)
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderSimple[R Ref](sb *strings.Builder, n *Node[R], depth int) {
	sb.WriteString("b.")
	sb.WriteString(builderMethod(n.semantic))
	sb.WriteString("(")
	sb.WriteString(simpleArgs[R](n))

	children := n.Children()
	if len(children) == 0 {
		sb.WriteString(")")
		return
	}
	if !n.semantic.IsConnector() {
		sb.WriteString(",")
	}
	sb.WriteString("\n")
	indent := strings.Repeat("\t", depth+1)
	for _, c := range children {
		sb.WriteString(indent)
		renderSimple(sb, c, depth+1)
		sb.WriteString(",\n")
	}
	sb.WriteString(strings.Repeat("\t", depth))
	sb.WriteString(")")
}

func builderMethod(s NodeSemantic) string {
	switch s {
	case ConceptSemantic:
		return "Concept"
	case RoleSome:
		return "SomeRole"
	case RoleAll:
		return "AllRole"
	case FeatureSemantic:
		return "Feature"
	case TemplateSemantic:
		return "Template"
	case PropertyPatternImplicationSemantic:
		return "PropertyPatternImplication"
	case LiteralBooleanSemantic:
		return "BooleanLiteral"
	case LiteralFloatSemantic:
		return "FloatLiteral"
	case LiteralInstantSemantic:
		return "InstantLiteral"
	case LiteralIntegerSemantic:
		return "IntegerLiteral"
	case LiteralStringSemantic:
		return "StringLiteral"
	}
	if s.IsSubstitution() {
		return "Substitution"
	}
	return goIdent(s.String())
}

// goIdent turns an UPPER_SNAKE name into its CamelCase Go identifier.
func goIdent(name string) string {
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		sb.WriteString(part[:1])
		sb.WriteString(strings.ToLower(part[1:]))
	}
	return sb.String()
}

func simpleArgs[R Ref](n *Node[R]) string {
	switch v := n.payload.(type) {
	case *Concept[R]:
		return simpleRef(v.Concept)
	case *Role[R]:
		return simpleRef(v.Type)
	case *Feature[R]:
		return fmt.Sprintf("%s, logic.%s, %s", simpleRef(v.Type), operatorIdents[v.Operator], simpleRef(v.Measure))
	case *Template[R]:
		return simpleRef(v.Template) + ", " + simpleRef(v.Assemblage)
	case *PropertyPatternImplication[R]:
		refs := make([]string, len(v.Pattern))
		for i, r := range v.Pattern {
			refs[i] = simpleRef(r)
		}
		return fmt.Sprintf("[]%s{%s}, %s", refTypeName[R](), strings.Join(refs, ", "), simpleRef(v.Implication))
	case LiteralBoolean:
		return strconv.FormatBool(v.Value)
	case LiteralFloat:
		return simpleFloat(v.Value)
	case LiteralInstant:
		return fmt.Sprintf("time.UnixMilli(%d)", v.Value.UnixMilli())
	case LiteralInteger:
		return strconv.FormatInt(int64(v.Value), 10)
	case LiteralString:
		return strconv.Quote(v.Value)
	case Substitution:
		return fmt.Sprintf("logic.%s, %s", goIdent(n.semantic.String()), strconv.Quote(v.Field))
	}
	return ""
}

func simpleRef[R Ref](r R) string {
	if u, ok := any(r).(uuid.UUID); ok {
		return fmt.Sprintf("uuid.MustParse(%q)", u.String())
	}
	return refLabel(r)
}

func refTypeName[R Ref]() string {
	if targetOf[R]() == External {
		return "uuid.UUID"
	}
	return "ids.Nid"
}

func simpleFloat(v float32) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "float32(math.NaN())"
	case math.IsInf(f, 1):
		return "float32(math.Inf(1))"
	case math.IsInf(f, -1):
		return "float32(math.Inf(-1))"
	}
	return strconv.FormatFloat(f, 'g', -1, 32)
}

// formatInstant is shared by the YAML form.
func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}
