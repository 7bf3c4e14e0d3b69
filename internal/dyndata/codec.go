package dyndata

import (
	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/wire"
)

// absentTag marks a nil value in a serialized row or array.
const absentTag byte = 0xFF

// Write appends d as [type tag][payload]. Arrays are [tag][int32 n][elements].
func Write(w *wire.Writer, d Data) error {
	if d == nil {
		w.PutByte(absentTag)
		return nil
	}
	w.PutByte(byte(d.DataType()))
	switch v := d.(type) {
	case String:
		w.PutString(string(v))
	case Integer:
		w.PutInt32(int32(v))
	case Long:
		w.PutInt64(int64(v))
	case Float:
		w.PutFloat32(float32(v))
	case Double:
		w.PutFloat64(float64(v))
	case Boolean:
		w.PutBool(bool(v))
	case UUID:
		w.PutUUID(uuid.UUID(v))
	case Nid:
		w.PutInt32(int32(v))
	case ByteArray:
		w.PutBytes(v)
	case Array:
		w.PutInt32(int32(len(v)))
		for i, e := range v {
			if err := Write(w, e); err != nil {
				return errs.Wrapf(err, "array[%d]", i)
			}
		}
	default:
		return errs.Unsupportedf("cannot encode dynamic value %T", d)
	}
	return nil
}

// Read decodes one value written by Write.
func Read(r *wire.Reader) (Data, error) {
	tag := r.Byte()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if tag == absentTag {
		return nil, nil
	}
	var d Data
	switch DataType(tag) {
	case TypeString:
		d = String(r.String())
	case TypeInteger:
		d = Integer(r.Int32())
	case TypeLong:
		d = Long(r.Int64())
	case TypeFloat:
		d = Float(r.Float32())
	case TypeDouble:
		d = Double(r.Float64())
	case TypeBoolean:
		d = Boolean(r.Bool())
	case TypeUUID:
		d = UUID(r.UUID())
	case TypeNid:
		d = Nid(ids.Nid(r.Int32()))
	case TypeByteArray:
		d = ByteArray(r.Bytes())
	case TypeArray:
		n := r.Count()
		if n > r.Remaining() {
			return nil, errs.Invariantf("array length %d exceeds payload", n)
		}
		arr := make(Array, n)
		for i := range arr {
			e, err := Read(r)
			if err != nil {
				return nil, errs.Wrapf(err, "array[%d]", i)
			}
			arr[i] = e
		}
		d = arr
	default:
		return nil, errs.Unsupportedf("unknown dynamic data tag %d", tag)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// EncodeRow serializes a row of column values: [int32 n][values].
func EncodeRow(row []Data) ([]byte, error) {
	w := wire.NewWriter(8 + 16*len(row))
	w.PutInt32(int32(len(row)))
	for i, d := range row {
		if err := Write(w, d); err != nil {
			return nil, errs.Wrapf(err, "column %d", i)
		}
	}
	return w.Bytes(), nil
}

// DecodeRow is the inverse of EncodeRow.
func DecodeRow(data []byte) ([]Data, error) {
	r := wire.NewReader(data)
	n := r.Count()
	if err := r.Err(); err != nil {
		return nil, errs.Wrap(err, "read row header")
	}
	if n > r.Remaining() {
		return nil, errs.Invariantf("row length %d exceeds payload", n)
	}
	row := make([]Data, n)
	for i := range row {
		d, err := Read(r)
		if err != nil {
			return nil, errs.Wrapf(err, "column %d", i)
		}
		row[i] = d
	}
	if r.Remaining() != 0 {
		return nil, errs.Invariantf("%d trailing bytes after row", r.Remaining())
	}
	return row, nil
}
