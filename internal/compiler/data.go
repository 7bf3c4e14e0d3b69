package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/termstore/internal/dyndata"
)

// cueData converts a concrete CUE value to dynamic data of type want.
// Strings for non-string types go through dyndata.Parse, so UUIDs and
// base64 byte arrays can be written as CUE strings.
func cueData(v cue.Value, want dyndata.DataType) (dyndata.Data, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch want {
		case dyndata.TypeString, dyndata.TypePolymorphic, dyndata.TypeUnknown:
			return dyndata.String(s), nil
		}
		d, err := dyndata.Parse(want, s)
		if err != nil {
			return nil, &CompileError{Field: "data", Message: err.Error(), Pos: v.Pos()}
		}
		return d, nil

	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch want {
		case dyndata.TypeInteger:
			if int64(int32(n)) != n {
				return nil, &CompileError{Field: "data", Message: fmt.Sprintf("%d overflows INTEGER", n), Pos: v.Pos()}
			}
			return dyndata.Integer(n), nil
		case dyndata.TypeFloat:
			return dyndata.Float(n), nil
		case dyndata.TypeDouble:
			return dyndata.Double(n), nil
		}
		return dyndata.Long(n), nil

	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if want == dyndata.TypeFloat {
			return dyndata.Float(f), nil
		}
		return dyndata.Double(f), nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return dyndata.Boolean(b), nil

	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return dyndata.ByteArray(b), nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := dyndata.Array{}
		for iter.Next() {
			e, err := cueData(iter.Value(), dyndata.TypeUnknown)
			if err != nil {
				return nil, err
			}
			arr = append(arr, e)
		}
		return arr, nil
	}

	return nil, &CompileError{
		Field:   "data",
		Message: fmt.Sprintf("value of kind %v is not concrete dynamic data", v.Kind()),
		Pos:     v.Pos(),
	}
}
