package bytesutil_test

import (
	"bytes"
	"testing"

	"github.com/courtwatch/courtwatch/encoding/bytesutil"
	"github.com/stretchr/testify/assert"
)

func TestUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 255, 256, 1 << 32, 1<<63 + 12345} {
		b := bytesutil.Uint64ToBytesBigEndian(v)
		assert.Len(t, b, 8)
		assert.Equal(t, v, bytesutil.BytesToUint64BigEndian(b))
	}
}

func TestBigEndianKeysSortNumerically(t *testing.T) {
	prev := bytesutil.Uint64ToBytesBigEndian(0)
	for _, v := range []uint64{1, 2, 100, 1000, 1 << 20, 1 << 40} {
		cur := bytesutil.Uint64ToBytesBigEndian(v)
		assert.True(t, bytes.Compare(prev, cur) < 0, "keys must sort in value order")
		prev = cur
	}
}

func TestBytesToUint64BigEndianWrongLength(t *testing.T) {
	assert.Equal(t, uint64(0), bytesutil.BytesToUint64BigEndian([]byte{1, 2, 3}))
}

func TestInt64NegativeClamps(t *testing.T) {
	assert.Equal(t, bytesutil.Uint64ToBytesBigEndian(0), bytesutil.Int64ToBytesBigEndian(-5))
}
