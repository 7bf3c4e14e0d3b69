package chronology

import (
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/logic"
	"github.com/roach88/termstore/internal/wire"
)

const formatVersion byte = 1

// Encode serializes the chronology with every version:
//
//	byte formatVersion, byte versionType, uuid primordial, int32 nid,
//	int32 assemblage, int32 referencedComponent, int32 versionCount,
//	then per version: int32 stampSequence, payload.
//
// Logic graphs are embedded in their INTERNAL binary form. Stamps are not
// included; they live in the StampRegistry.
func Encode(c *SemanticChronology) ([]byte, error) {
	versions := c.Versions()
	w := wire.NewWriter(64 + 32*len(versions))
	w.PutByte(formatVersion)
	w.PutByte(byte(c.versionType))
	w.PutUUID(c.primordial)
	w.PutInt32(int32(c.nid))
	w.PutInt32(int32(c.assemblage))
	w.PutInt32(int32(c.referencedComponent))
	w.PutInt32(int32(len(versions)))
	for i, v := range versions {
		w.PutInt32(v.StampSequence)
		if err := writePayload(w, v.Payload); err != nil {
			return nil, errs.Wrapf(err, "encode version %d", i)
		}
	}
	return w.Bytes(), nil
}

func writePayload(w *wire.Writer, p Payload) error {
	switch v := p.(type) {
	case *MemberVersion:
	case *ComponentNidVersion:
		w.PutInt32(int32(v.Component))
	case *LongVersion:
		w.PutInt64(v.Value)
	case *StringVersion:
		w.PutString(v.Value)
	case *LogicGraphVersion:
		data, err := v.Expression.Encode(logic.Internal, nil)
		if err != nil {
			return err
		}
		w.PutBytes(data)
	case *ImageVersion:
		w.PutBytes(v.Data)
	case *DynamicVersion:
		data, err := dyndata.EncodeRow(v.Data)
		if err != nil {
			return err
		}
		w.PutBytes(data)
	case *DescriptionVersion:
		w.PutInt32(int32(v.CaseSignificance))
		w.PutInt32(int32(v.Language))
		w.PutInt32(int32(v.DescriptionType))
		w.PutString(v.Text)
	case *RF2RelationshipVersion:
		w.PutInt32(int32(v.Destination))
		w.PutInt32(int32(v.RelationshipType))
		w.PutInt32(v.Group)
		w.PutInt32(int32(v.CharacteristicType))
		w.PutInt32(int32(v.ModifierType))
	case *BrittleVersion:
		if err := checkPayload(v); err != nil {
			return err
		}
		for _, f := range v.Fields {
			switch fv := f.(type) {
			case dyndata.Nid:
				w.PutInt32(int32(fv))
			case dyndata.Integer:
				w.PutInt32(int32(fv))
			case dyndata.String:
				w.PutString(string(fv))
			}
		}
	default:
		return errs.Unsupportedf("can't handle version payload %T", p)
	}
	return nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (*SemanticChronology, error) {
	r := wire.NewReader(data)
	version := r.Byte()
	vt := VersionType(r.Byte())
	primordial := r.UUID()
	nid := ids.Nid(r.Int32())
	assemblage := ids.Nid(r.Int32())
	referenced := ids.Nid(r.Int32())
	count := r.Count()
	if err := r.Err(); err != nil {
		return nil, errs.Wrap(err, "read chronology header")
	}
	if version != formatVersion {
		return nil, errs.Unsupportedf("unsupported chronology format version %d", version)
	}
	c, err := New(vt, primordial, nid, assemblage, referenced)
	if err != nil {
		return nil, err
	}
	if count > r.Remaining()/4 {
		return nil, errs.Invariantf("version count %d exceeds payload", count)
	}
	for i := 0; i < count; i++ {
		stampSeq := r.Int32()
		p, err := readPayload(r, vt)
		if err != nil {
			return nil, errs.Wrapf(err, "decode version %d", i)
		}
		if err := r.Err(); err != nil {
			return nil, errs.Wrapf(err, "read version %d", i)
		}
		if _, err := c.CreateMutableVersion(stampSeq, p, nil); err != nil {
			return nil, errs.Wrapf(err, "decode version %d", i)
		}
	}
	if r.Remaining() != 0 {
		return nil, errs.Invariantf("%d trailing bytes after chronology", r.Remaining())
	}
	return c, nil
}

func readPayload(r *wire.Reader, vt VersionType) (Payload, error) {
	p, err := NewPayload(vt)
	if err != nil {
		return nil, err
	}
	switch v := p.(type) {
	case *MemberVersion:
	case *ComponentNidVersion:
		v.Component = ids.Nid(r.Int32())
	case *LongVersion:
		v.Value = r.Int64()
	case *StringVersion:
		v.Value = r.String()
	case *LogicGraphVersion:
		data := r.Bytes()
		if r.Err() != nil {
			return nil, r.Err()
		}
		expr, err := logic.DecodeInternal(data)
		if err != nil {
			return nil, err
		}
		v.Expression = expr
	case *ImageVersion:
		v.Data = r.Bytes()
	case *DynamicVersion:
		data := r.Bytes()
		if r.Err() != nil {
			return nil, r.Err()
		}
		row, err := dyndata.DecodeRow(data)
		if err != nil {
			return nil, err
		}
		v.Data = row
	case *DescriptionVersion:
		v.CaseSignificance = ids.Nid(r.Int32())
		v.Language = ids.Nid(r.Int32())
		v.DescriptionType = ids.Nid(r.Int32())
		v.Text = r.String()
	case *RF2RelationshipVersion:
		v.Destination = ids.Nid(r.Int32())
		v.RelationshipType = ids.Nid(r.Int32())
		v.Group = r.Int32()
		v.CharacteristicType = ids.Nid(r.Int32())
		v.ModifierType = ids.Nid(r.Int32())
	case *BrittleVersion:
		for i, t := range brittleLayouts[vt] {
			switch t {
			case dyndata.TypeNid:
				v.Fields[i] = dyndata.Nid(r.Int32())
			case dyndata.TypeInteger:
				v.Fields[i] = dyndata.Integer(r.Int32())
			case dyndata.TypeString:
				v.Fields[i] = dyndata.String(r.String())
			}
		}
	}
	return p, nil
}
