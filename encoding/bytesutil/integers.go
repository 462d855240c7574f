// Package bytesutil defines helper methods for converting integers to byte
// slices with fixed ordering, used for lexicographically sortable store keys.
package bytesutil

import (
	"encoding/binary"
)

// Uint64ToBytesBigEndian conversion.
func Uint64ToBytesBigEndian(i uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, i)
	return buf
}

// BytesToUint64BigEndian conversion. Returns 0 if input is not 8 bytes.
func BytesToUint64BigEndian(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Int64ToBytesBigEndian conversion for non-negative values. Negative inputs
// clamp to zero so keys never sort ahead of the epoch.
func Int64ToBytesBigEndian(i int64) []byte {
	if i < 0 {
		i = 0
	}
	return Uint64ToBytesBigEndian(uint64(i))
}
