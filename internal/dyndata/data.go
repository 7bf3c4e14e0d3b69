package dyndata

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Data is a sealed interface over dynamic values. Only the types in this file
// implement it. POLYMORPHIC and UNKNOWN are column types, never value types.
// A nil Data is an absent value.
type Data interface {
	DataType() DataType
	dynamicData()
}

type String string

type Integer int32

type Long int64

type Float float32

type Double float64

type Boolean bool

type UUID uuid.UUID

type Nid ids.Nid

type ByteArray []byte

// Array is an ordered list of values. Elements may be of mixed types.
type Array []Data

func (String) DataType() DataType    { return TypeString }
func (Integer) DataType() DataType   { return TypeInteger }
func (Long) DataType() DataType      { return TypeLong }
func (Float) DataType() DataType     { return TypeFloat }
func (Double) DataType() DataType    { return TypeDouble }
func (Boolean) DataType() DataType   { return TypeBoolean }
func (UUID) DataType() DataType      { return TypeUUID }
func (Nid) DataType() DataType       { return TypeNid }
func (ByteArray) DataType() DataType { return TypeByteArray }
func (Array) DataType() DataType     { return TypeArray }

func (String) dynamicData()    {}
func (Integer) dynamicData()   {}
func (Long) dynamicData()      {}
func (Float) dynamicData()     {}
func (Double) dynamicData()    {}
func (Boolean) dynamicData()   {}
func (UUID) dynamicData()      {}
func (Nid) dynamicData()       {}
func (ByteArray) dynamicData() {}
func (Array) dynamicData()     {}

// Strings builds an Array of String values.
func Strings(values ...string) Array {
	out := make(Array, len(values))
	for i, v := range values {
		out[i] = String(v)
	}
	return out
}

// UUIDs builds an Array of UUID values.
func UUIDs(values ...uuid.UUID) Array {
	out := make(Array, len(values))
	for i, v := range values {
		out[i] = UUID(v)
	}
	return out
}

// TypeOf returns d's data type, TypeUnknown for an absent value.
func TypeOf(d Data) DataType {
	if d == nil {
		return TypeUnknown
	}
	return d.DataType()
}

// Equal reports whether two values have the same type and content. Two
// absent values are equal.
func Equal(a, b Data) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case ByteArray:
		bv, ok := b.(ByteArray)
		return ok && bytes.Equal(av, bv)
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Float:
		bv, ok := b.(Float)
		return ok && math.Float32bits(float32(av)) == math.Float32bits(float32(bv))
	case Double:
		bv, ok := b.(Double)
		return ok && math.Float64bits(float64(av)) == math.Float64bits(float64(bv))
	}
	return a == b
}

// Format renders d for display. Absent values render as "null".
func Format(d Data) string {
	switch v := d.(type) {
	case nil:
		return "null"
	case String:
		return string(v)
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case Long:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case Double:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case Boolean:
		return strconv.FormatBool(bool(v))
	case UUID:
		return uuid.UUID(v).String()
	case Nid:
		return strconv.FormatInt(int64(v), 10)
	case ByteArray:
		return base64.StdEncoding.EncodeToString(v)
	case Array:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// Parse reads the textual form of a scalar value of type t, as written by
// Format. ARRAY, POLYMORPHIC and UNKNOWN have no textual scalar form.
func Parse(t DataType, s string) (Data, error) {
	var (
		d   Data
		err error
	)
	switch t {
	case TypeString:
		return String(s), nil
	case TypeInteger:
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		d = Integer(n)
	case TypeLong:
		var n int64
		n, err = strconv.ParseInt(s, 10, 64)
		d = Long(n)
	case TypeFloat:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		d = Float(f)
	case TypeDouble:
		var f float64
		f, err = strconv.ParseFloat(s, 64)
		d = Double(f)
	case TypeBoolean:
		var b bool
		b, err = strconv.ParseBool(s)
		d = Boolean(b)
	case TypeUUID:
		var u uuid.UUID
		u, err = uuid.Parse(s)
		d = UUID(u)
	case TypeNid:
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		d = Nid(n)
	case TypeByteArray:
		var b []byte
		b, err = base64.StdEncoding.DecodeString(s)
		d = ByteArray(b)
	default:
		return nil, errs.Unsupportedf("no textual form for %s values", t)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "parse %s value %q", t, s)
	}
	return d, nil
}

// MarshalJSON renders d as JSON: numbers, strings and booleans natively,
// UUIDs as strings, byte arrays as base64, arrays as arrays, absent as null.
func MarshalJSON(d Data) ([]byte, error) {
	switch v := d.(type) {
	case nil:
		return []byte("null"), nil
	case Array:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalJSON(e)
			if err != nil {
				return nil, errs.Wrapf(err, "array[%d]", i)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case UUID:
		return json.Marshal(uuid.UUID(v).String())
	case ByteArray:
		return json.Marshal([]byte(v))
	case Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return json.Marshal(Format(v))
		}
		return json.Marshal(float32(v))
	case Double:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return json.Marshal(Format(v))
		}
		return json.Marshal(float64(v))
	case String:
		return json.Marshal(string(v))
	case Integer:
		return json.Marshal(int32(v))
	case Long:
		return json.Marshal(int64(v))
	case Boolean:
		return json.Marshal(bool(v))
	case Nid:
		return json.Marshal(int32(v))
	}
	return nil, errs.Unsupportedf("cannot marshal %T", d)
}
