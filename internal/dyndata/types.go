// Package dyndata holds the typed values carried by dynamic semantics: the
// closed set of data types, one value type per concrete data type, their
// binary codec, and the column validators.
package dyndata

import (
	"fmt"

	"github.com/roach88/termstore/internal/errs"
)

// DataType is the declared type of a dynamic column or value. The ordinal is
// the serialized tag byte.
type DataType uint8

const (
	TypeString DataType = iota
	TypeInteger
	TypeLong
	TypeFloat
	TypeDouble
	TypeBoolean
	TypeUUID
	TypeNid
	TypeByteArray
	TypeArray
	TypePolymorphic
	TypeUnknown

	dataTypeCount
)

var dataTypeNames = [dataTypeCount]string{
	TypeString:      "STRING",
	TypeInteger:     "INTEGER",
	TypeLong:        "LONG",
	TypeFloat:       "FLOAT",
	TypeDouble:      "DOUBLE",
	TypeBoolean:     "BOOLEAN",
	TypeUUID:        "UUID",
	TypeNid:         "NID",
	TypeByteArray:   "BYTEARRAY",
	TypeArray:       "ARRAY",
	TypePolymorphic: "POLYMORPHIC",
	TypeUnknown:     "UNKNOWN",
}

func (t DataType) String() string {
	if t < dataTypeCount {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", t)
}

// Valid reports whether t is a known data type.
func (t DataType) Valid() bool { return t < dataTypeCount }

// ParseDataType maps an enum name such as "STRING" to its DataType. Unknown
// names are unsupported, never coerced to TypeUnknown.
func ParseDataType(name string) (DataType, error) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), nil
		}
	}
	return TypeUnknown, errs.Unsupportedf("unknown dynamic data type %q", name)
}

// Accepts reports whether a value of type v may be stored in a column of
// type t. POLYMORPHIC columns accept any concrete value.
func (t DataType) Accepts(v DataType) bool {
	if t == TypePolymorphic {
		return v != TypePolymorphic && v != TypeUnknown
	}
	return t == v
}
