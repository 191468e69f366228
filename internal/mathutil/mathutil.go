package mathutil

import (
	"unsafe"
)

// TestBit reports whether the bit at offset is set.
func TestBit(value uint32, offset uint) bool {
	return value&(1<<offset) != 0
}

// SetBit returns value with the bit at offset set to 1.
func SetBit(value uint32, offset uint) uint32 {
	return value | 1<<offset
}

// ClearBit returns value with the bit at offset set to 0.
func ClearBit(value uint32, offset uint) uint32 {
	return value &^ (1 << offset)
}

// Field returns width bits of value starting at offset.
func Field(value uint32, offset, width uint) uint32 {
	return value >> offset & (1<<width - 1)
}

func AbsInt(val int) int {
	mask := val >> (unsafe.Sizeof(int(0))*8 - 1)
	return (val + mask) ^ mask
}
