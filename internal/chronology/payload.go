package chronology

import (
	"reflect"

	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/logic"
)

// Payload is the type-specific content of one version. Only the types in
// this file implement it.
type Payload interface {
	VersionType() VersionType
	versionPayload()
}

// MemberVersion records membership only.
type MemberVersion struct{}

type ComponentNidVersion struct {
	Component ids.Nid
}

type LongVersion struct {
	Value int64
}

type StringVersion struct {
	Value string
}

// LogicGraphVersion carries a nid-addressed logic expression.
type LogicGraphVersion struct {
	Expression *logic.Expression[ids.Nid]
}

type ImageVersion struct {
	Data []byte
}

// DynamicVersion carries one row whose columns are described by the
// assemblage's usage description.
type DynamicVersion struct {
	Data []dyndata.Data
}

type DescriptionVersion struct {
	CaseSignificance ids.Nid
	Language         ids.Nid
	DescriptionType  ids.Nid
	Text             string
}

type RF2RelationshipVersion struct {
	Destination        ids.Nid
	RelationshipType   ids.Nid
	Group              int32
	CharacteristicType ids.Nid
	ModifierType       ids.Nid
}

// BrittleVersion is the payload of the fixed-shape NidN/IntN/StrN types:
// Fields follow the layout of Type, with dyndata.Nid, Integer and String
// values.
type BrittleVersion struct {
	Type   VersionType
	Fields []dyndata.Data
}

func (*MemberVersion) VersionType() VersionType          { return Member }
func (*ComponentNidVersion) VersionType() VersionType    { return ComponentNid }
func (*LongVersion) VersionType() VersionType            { return Long }
func (*StringVersion) VersionType() VersionType          { return String }
func (*LogicGraphVersion) VersionType() VersionType      { return LogicGraph }
func (*ImageVersion) VersionType() VersionType           { return Image }
func (*DynamicVersion) VersionType() VersionType         { return Dynamic }
func (*DescriptionVersion) VersionType() VersionType     { return Description }
func (*RF2RelationshipVersion) VersionType() VersionType { return RF2Relationship }
func (b *BrittleVersion) VersionType() VersionType {
	if b == nil {
		return Unknown
	}
	return b.Type
}

func (*MemberVersion) versionPayload()          {}
func (*ComponentNidVersion) versionPayload()    {}
func (*LongVersion) versionPayload()            {}
func (*StringVersion) versionPayload()          {}
func (*LogicGraphVersion) versionPayload()      {}
func (*ImageVersion) versionPayload()           {}
func (*DynamicVersion) versionPayload()         {}
func (*DescriptionVersion) versionPayload()     {}
func (*RF2RelationshipVersion) versionPayload() {}
func (*BrittleVersion) versionPayload()         {}

// NewPayload returns an empty payload for vt. Brittle payloads come with
// zero-valued fields in layout order. Any type outside the closed set is
// unsupported.
func NewPayload(vt VersionType) (Payload, error) {
	switch vt {
	case Member:
		return &MemberVersion{}, nil
	case ComponentNid:
		return &ComponentNidVersion{}, nil
	case Long:
		return &LongVersion{}, nil
	case String:
		return &StringVersion{}, nil
	case LogicGraph:
		return &LogicGraphVersion{Expression: logic.New[ids.Nid]()}, nil
	case Image:
		return &ImageVersion{}, nil
	case Dynamic:
		return &DynamicVersion{}, nil
	case Description:
		return &DescriptionVersion{}, nil
	case RF2Relationship:
		return &RF2RelationshipVersion{}, nil
	case Nid1, Int1, Str1, Nid1Int2, Nid1Nid2, Nid1Str2, Nid1Nid2Int3, Nid1Nid2Str3,
		Str1Str2, Str1Nid2Nid3Nid4, Str1Str2Nid3Nid4, Str1Str2Nid3Nid4Nid5,
		Nid1Int2Str3Str4Nid5Nid6, Int1Int2Str3Str4Str5Nid6Nid7, Str1Str2Str3Str4Str5Str6Str7:
		layout := brittleLayouts[vt]
		fields := make([]dyndata.Data, len(layout))
		for i, t := range layout {
			fields[i] = zeroField(t)
		}
		return &BrittleVersion{Type: vt, Fields: fields}, nil
	}
	return nil, errs.Unsupportedf("can't handle version type %s", vt)
}

func zeroField(t dyndata.DataType) dyndata.Data {
	switch t {
	case dyndata.TypeNid:
		return dyndata.Nid(0)
	case dyndata.TypeInteger:
		return dyndata.Integer(0)
	}
	return dyndata.String("")
}

// checkPayload verifies a payload is well-formed for its declared type.
func checkPayload(p Payload) error {
	if p == nil {
		return errs.Invariantf("nil version payload")
	}
	if rv := reflect.ValueOf(p); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return errs.Invariantf("nil %T version payload", p)
	}
	switch v := p.(type) {
	case *LogicGraphVersion:
		if v.Expression == nil {
			return errs.Invariantf("logic graph version without an expression")
		}
	case *BrittleVersion:
		layout, ok := brittleLayouts[v.Type]
		if !ok {
			return errs.Unsupportedf("can't handle version type %s", v.Type)
		}
		if len(v.Fields) != len(layout) {
			return errs.Invariantf("%s version has %d fields, want %d", v.Type, len(v.Fields), len(layout))
		}
		for i, t := range layout {
			if got := dyndata.TypeOf(v.Fields[i]); got != t {
				return errs.Invariantf("%s field %d is %s, want %s", v.Type, i+1, got, t)
			}
		}
	}
	return nil
}
