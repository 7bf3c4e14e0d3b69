package logic

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/wire"
)

// formatVersion is the leading byte of every encoded expression.
const formatVersion byte = 1

// Encode serializes the expression for target:
//
//	byte formatVersion, byte target, int32 nodeCount,
//	then per node: byte semantic, int32 childCount, int32[] children, node data.
//
// Node data references are int32 nids for INTERNAL and 16-byte UUIDs for
// EXTERNAL. When target differs from the graph's own form, references are
// translated through lookup on the fly.
func (e *Expression[R]) Encode(target Target, lookup ids.Lookup) ([]byte, error) {
	if target != Internal && target != External {
		return nil, errs.Unsupportedf("unsupported serialization target %s", target)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	w := wire.NewWriter(6 + 32*len(e.nodes))
	w.PutByte(formatVersion)
	w.PutByte(byte(target))
	w.PutInt32(int32(len(e.nodes)))
	for _, n := range e.nodes {
		w.PutByte(byte(n.semantic))
		w.PutInt32(int32(len(n.children)))
		for _, c := range n.children {
			w.PutInt32(int32(c))
		}
		if err := n.WriteNodeData(w, target, lookup); err != nil {
			return nil, errs.Wrapf(err, "encode %s node [%d]", n.semantic, n.index)
		}
	}
	return w.Bytes(), nil
}

// WriteNodeData writes the node's variant fields (not its header) for target.
// An unknown target fails with an unsupported-operation error.
func (n *Node[R]) WriteNodeData(w *wire.Writer, target Target, lookup ids.Lookup) error {
	p, err := convertPayload(n, target, lookup)
	if err != nil {
		return err
	}
	switch target {
	case Internal:
		return writePayload[ids.Nid](w, p)
	case External:
		return writePayload[uuid.UUID](w, p)
	}
	return errs.Unsupportedf("unsupported serialization target %s", target)
}

func writePayload[R Ref](w *wire.Writer, p Payload) error {
	switch v := p.(type) {
	case Connector:
	case *Concept[R]:
		putRef(w, v.Concept)
	case *Role[R]:
		putRef(w, v.Type)
	case *Feature[R]:
		putRef(w, v.Type)
		w.PutByte(byte(v.Operator))
		putRef(w, v.Measure)
	case *Template[R]:
		putRef(w, v.Template)
		putRef(w, v.Assemblage)
	case *PropertyPatternImplication[R]:
		w.PutInt32(int32(len(v.Pattern)))
		for _, r := range v.Pattern {
			putRef(w, r)
		}
		putRef(w, v.Implication)
	case LiteralBoolean:
		w.PutBool(v.Value)
	case LiteralFloat:
		w.PutFloat32(v.Value)
	case LiteralInstant:
		w.PutInt64(v.Value.UnixMilli())
	case LiteralInteger:
		w.PutInt32(v.Value)
	case LiteralString:
		w.PutString(v.Value)
	case Substitution:
		w.PutString(v.Field)
	default:
		return errs.Unsupportedf("cannot encode payload %T", p)
	}
	return nil
}

// DecodeInternal decodes a nid-addressed expression.
func DecodeInternal(data []byte) (*Expression[ids.Nid], error) {
	return decode[ids.Nid](data)
}

// DecodeExternal decodes a UUID-addressed expression.
func DecodeExternal(data []byte) (*Expression[uuid.UUID], error) {
	return decode[uuid.UUID](data)
}

func decode[R Ref](data []byte) (*Expression[R], error) {
	r := wire.NewReader(data)
	version := r.Byte()
	target := Target(r.Byte())
	count := r.Count()
	if err := r.Err(); err != nil {
		return nil, errs.Wrap(err, "read expression header")
	}
	if version != formatVersion {
		return nil, errs.Unsupportedf("unsupported expression format version %d", version)
	}
	if target != targetOf[R]() {
		return nil, errs.Unsupportedf("expression encoded for %s, decoding as %s", target, targetOf[R]())
	}
	// Every node takes at least five header bytes.
	if count > r.Remaining()/5 {
		return nil, errs.Invariantf("node count %d exceeds payload", count)
	}

	e := New[R]()
	childLists := make([][]int, count)
	for i := 0; i < count; i++ {
		semantic := NodeSemantic(r.Byte())
		if r.Err() == nil && !semantic.Valid() {
			return nil, errs.Unsupportedf("node [%d] has unknown semantic %d", i, uint8(semantic))
		}
		nc := r.Count()
		if nc > r.Remaining()/4 {
			return nil, errs.Invariantf("node [%d] child count %d exceeds payload", i, nc)
		}
		children := make([]int, nc)
		for j := range children {
			children[j] = int(r.Int32())
		}
		p, err := readNodeData[R](r, semantic)
		if err != nil {
			return nil, errs.Wrapf(err, "node [%d]", i)
		}
		if err := r.Err(); err != nil {
			return nil, errs.Wrapf(err, "read node [%d]", i)
		}
		e.addNode(semantic, p)
		childLists[i] = children
	}
	if r.Remaining() != 0 {
		return nil, errs.Invariantf("%d trailing bytes after expression", r.Remaining())
	}
	for i, children := range childLists {
		e.nodes[i].children = children
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func readNodeData[R Ref](r *wire.Reader, semantic NodeSemantic) (Payload, error) {
	switch semantic {
	case DefinitionRoot, NecessarySet, SufficientSet, PropertySet, And, Or, DisjointWith:
		return Connector{}, nil
	case ConceptSemantic:
		return &Concept[R]{Concept: getRef[R](r)}, nil
	case RoleAll, RoleSome:
		return &Role[R]{Type: getRef[R](r)}, nil
	case FeatureSemantic:
		t := getRef[R](r)
		op := ConcreteDomainOperator(r.Byte())
		m := getRef[R](r)
		if r.Err() == nil && !op.Valid() {
			return nil, errs.Unsupportedf("unknown concrete domain operator %d", uint8(op))
		}
		return &Feature[R]{Type: t, Operator: op, Measure: m}, nil
	case TemplateSemantic:
		t := getRef[R](r)
		return &Template[R]{Template: t, Assemblage: getRef[R](r)}, nil
	case PropertyPatternImplicationSemantic:
		n := r.Count()
		if n > r.Remaining() {
			return nil, errs.Invariantf("pattern length %d exceeds payload", n)
		}
		pattern := make([]R, n)
		for i := range pattern {
			pattern[i] = getRef[R](r)
		}
		return &PropertyPatternImplication[R]{Pattern: pattern, Implication: getRef[R](r)}, nil
	case LiteralBooleanSemantic:
		return LiteralBoolean{Value: r.Bool()}, nil
	case LiteralFloatSemantic:
		return newLiteralFloat(r.Float32()), nil
	case LiteralInstantSemantic:
		return LiteralInstant{Value: time.UnixMilli(r.Int64()).UTC()}, nil
	case LiteralIntegerSemantic:
		return LiteralInteger{Value: r.Int32()}, nil
	case LiteralStringSemantic:
		return LiteralString{Value: r.String()}, nil
	case SubstitutionConcept, SubstitutionBoolean, SubstitutionFloat,
		SubstitutionInstant, SubstitutionInteger, SubstitutionString:
		return Substitution{Field: r.String()}, nil
	}
	return nil, errs.Unsupportedf("unknown node semantic %d", uint8(semantic))
}
