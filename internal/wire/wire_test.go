package wire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReader_AllTypes(t *testing.T) {
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	w := NewWriter(64)
	w.PutByte(7)
	w.PutBool(true)
	w.PutInt32(-2147483647)
	w.PutInt64(1 << 40)
	w.PutFloat32(1.5)
	w.PutFloat64(-2.25)
	w.PutUUID(u)
	w.PutBytes([]byte{1, 2, 3})
	w.PutString("héllo")

	r := NewReader(w.Bytes())
	assert.Equal(t, byte(7), r.Byte())
	assert.True(t, r.Bool())
	assert.Equal(t, int32(-2147483647), r.Int32())
	assert.Equal(t, int64(1<<40), r.Int64())
	assert.Equal(t, float32(1.5), r.Float32())
	assert.Equal(t, -2.25, r.Float64())
	assert.Equal(t, u, r.UUID())
	assert.Equal(t, []byte{1, 2, 3}, r.Bytes())
	assert.Equal(t, "héllo", r.String())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestWriter_BigEndianLayout(t *testing.T) {
	w := NewWriter(4)
	w.PutInt32(-1)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, w.Bytes())

	w = NewWriter(4)
	w.PutInt32(258)
	assert.Equal(t, []byte{0, 0, 1, 2}, w.Bytes())
}

func TestReader_ShortBufferIsSticky(t *testing.T) {
	r := NewReader([]byte{0, 0})

	assert.Equal(t, int32(0), r.Int32())
	require.Error(t, r.Err())

	// Further reads keep returning zero values without panicking.
	assert.Equal(t, byte(0), r.Byte())
	assert.Equal(t, "", r.String())
	assert.Contains(t, r.Err().Error(), "need 4 bytes")
}

func TestReader_NegativeLength(t *testing.T) {
	w := NewWriter(4)
	w.PutInt32(-5)

	r := NewReader(w.Bytes())
	assert.Nil(t, r.Bytes())
	require.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "negative length")
}
