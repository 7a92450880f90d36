package netfile

import (
	"encoding/binary"
	"math/bits"
)

// CacheLineSize is the alignment of every output-layer variant block.
const CacheLineSize = 64

// CeilToMultiple rounds n up to be a multiple of base.
func CeilToMultiple(n, base int) int {
	return (n + base - 1) / base * base
}

// readInt16 decodes the little-endian int16 at off.
func readInt16(data []byte, off int) (int16, error) {
	if off < 0 || off+2 > len(data) {
		return 0, &FormatError{Kind: ErrOutOfRange, Offset: off, Length: len(data)}
	}
	return int16(binary.LittleEndian.Uint16(data[off:])), nil
}

// sizeCalc evaluates byte counts in uint64 and remembers whether any step
// overflowed or saw a negative operand.
type sizeCalc struct {
	overflow bool
}

func (c *sizeCalc) u(n int) uint64 {
	if n < 0 {
		c.overflow = true
		return 0
	}
	return uint64(n)
}

func (c *sizeCalc) mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		c.overflow = true
	}
	return lo
}

func (c *sizeCalc) add(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		c.overflow = true
	}
	return sum
}
