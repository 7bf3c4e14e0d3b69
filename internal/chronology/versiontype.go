package chronology

import (
	"fmt"

	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
)

// VersionType discriminates the payload shape of every version in a
// chronology. The set is closed; the ordinal is the serialized byte.
type VersionType uint8

const (
	Member VersionType = iota
	ComponentNid
	Long
	LogicGraph
	Image
	Dynamic
	String
	Description
	RF2Relationship

	// Brittle fixed-shape types. The name spells the field layout.
	Nid1
	Int1
	Str1
	Nid1Int2
	Nid1Nid2
	Nid1Str2
	Nid1Nid2Int3
	Nid1Nid2Str3
	Str1Str2
	Str1Nid2Nid3Nid4
	Str1Str2Nid3Nid4
	Str1Str2Nid3Nid4Nid5
	Nid1Int2Str3Str4Nid5Nid6
	Int1Int2Str3Str4Str5Nid6Nid7
	Str1Str2Str3Str4Str5Str6Str7

	Unknown

	versionTypeCount
)

var versionTypeNames = [versionTypeCount]string{
	Member:                       "MEMBER",
	ComponentNid:                 "COMPONENT_NID",
	Long:                         "LONG",
	LogicGraph:                   "LOGIC_GRAPH",
	Image:                        "IMAGE",
	Dynamic:                      "DYNAMIC",
	String:                       "STRING",
	Description:                  "DESCRIPTION",
	RF2Relationship:              "RF2_RELATIONSHIP",
	Nid1:                         "Nid1",
	Int1:                         "Int1",
	Str1:                         "Str1",
	Nid1Int2:                     "Nid1_Int2",
	Nid1Nid2:                     "Nid1_Nid2",
	Nid1Str2:                     "Nid1_Str2",
	Nid1Nid2Int3:                 "Nid1_Nid2_Int3",
	Nid1Nid2Str3:                 "Nid1_Nid2_Str3",
	Str1Str2:                     "Str1_Str2",
	Str1Nid2Nid3Nid4:             "Str1_Nid2_Nid3_Nid4",
	Str1Str2Nid3Nid4:             "Str1_Str2_Nid3_Nid4",
	Str1Str2Nid3Nid4Nid5:         "Str1_Str2_Nid3_Nid4_Nid5",
	Nid1Int2Str3Str4Nid5Nid6:     "Nid1_Int2_Str3_Str4_Nid5_Nid6",
	Int1Int2Str3Str4Str5Nid6Nid7: "Int1_Int2_Str3_Str4_Str5_Nid6_Nid7",
	Str1Str2Str3Str4Str5Str6Str7: "Str1_Str2_Str3_Str4_Str5_Str6_Str7",
	Unknown:                      "UNKNOWN",
}

const (
	fn = dyndata.TypeNid
	fi = dyndata.TypeInteger
	fs = dyndata.TypeString
)

// brittleLayouts lists the field types of each brittle version type.
var brittleLayouts = map[VersionType][]dyndata.DataType{
	Nid1:                         {fn},
	Int1:                         {fi},
	Str1:                         {fs},
	Nid1Int2:                     {fn, fi},
	Nid1Nid2:                     {fn, fn},
	Nid1Str2:                     {fn, fs},
	Nid1Nid2Int3:                 {fn, fn, fi},
	Nid1Nid2Str3:                 {fn, fn, fs},
	Str1Str2:                     {fs, fs},
	Str1Nid2Nid3Nid4:             {fs, fn, fn, fn},
	Str1Str2Nid3Nid4:             {fs, fs, fn, fn},
	Str1Str2Nid3Nid4Nid5:         {fs, fs, fn, fn, fn},
	Nid1Int2Str3Str4Nid5Nid6:     {fn, fi, fs, fs, fn, fn},
	Int1Int2Str3Str4Str5Nid6Nid7: {fi, fi, fs, fs, fs, fn, fn},
	Str1Str2Str3Str4Str5Str6Str7: {fs, fs, fs, fs, fs, fs, fs},
}

func (v VersionType) String() string {
	if v < versionTypeCount {
		return versionTypeNames[v]
	}
	return fmt.Sprintf("VersionType(%d)", v)
}

// Valid reports whether v is a known version type other than UNKNOWN.
func (v VersionType) Valid() bool { return v < Unknown }

// IsBrittle reports whether v is one of the fixed-shape NidN/IntN/StrN types.
func (v VersionType) IsBrittle() bool {
	_, ok := brittleLayouts[v]
	return ok
}

// BrittleLayout returns the field types of a brittle version type.
func (v VersionType) BrittleLayout() ([]dyndata.DataType, bool) {
	layout, ok := brittleLayouts[v]
	if !ok {
		return nil, false
	}
	return append([]dyndata.DataType(nil), layout...), true
}

// ParseVersionType maps a name such as "Nid1_Str2" or "DESCRIPTION" to its
// VersionType.
func ParseVersionType(name string) (VersionType, error) {
	for i, n := range versionTypeNames {
		if n == name {
			return VersionType(i), nil
		}
	}
	return Unknown, errs.Unsupportedf("unknown version type %q", name)
}
