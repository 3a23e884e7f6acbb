//go:build debug_buddy

package pool

import "unsafe"

// DebugMargin is the number of bytes of debug data that WriteDebugMargin
// stamps and CheckCorruption verifies when the debug_buddy build tag is
// present, used to detect writes that overrun a live allocation. Allocate
// neither reserves these bytes in a block nor stamps them itself.
const DebugMargin int = 16

const corruptionMagic uint32 = 0x7F84E666

// writeMagic stamps DebugMargin bytes at data+offset with an
// easy-to-identify marker. Consumers are responsible for choosing offset
// such that the margin lands in the block's unused slack, typically
// requestedSize bytes past the start of the user region.
func writeMagic(data unsafe.Pointer, offset int) {
	dest := unsafe.Add(data, offset)
	words := DebugMargin / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < words; i++ {
		*(*uint32)(dest) = corruptionMagic
		dest = unsafe.Add(dest, unsafe.Sizeof(uint32(0)))
	}
}

// checkMagic verifies the marker written by writeMagic is still intact. It
// no-ops (always true) unless the debug_buddy build tag is present.
func checkMagic(data unsafe.Pointer, offset int) bool {
	src := unsafe.Add(data, offset)
	words := DebugMargin / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < words; i++ {
		if *(*uint32)(src) != corruptionMagic {
			return false
		}
		src = unsafe.Add(src, unsafe.Sizeof(uint32(0)))
	}
	return true
}
