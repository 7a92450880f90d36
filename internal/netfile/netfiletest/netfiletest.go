// Package netfiletest builds synthetic network files for tests.
package netfiletest

import (
	"bytes"
	"encoding/binary"
)

const (
	headerSize    = 64
	legacyMagic   = 0x1
	currentMagic  = 0x43534E4E
	featuresPerKB = 12 * 64
)

// WeightFunc returns the weight stored at an input row, accumulator
// column and king bucket.
type WeightFunc func(row, col, bucket int) int16

// Zero is a WeightFunc for all-zero weights.
func Zero(row, col, bucket int) int16 { return 0 }

// Legacy describes a version 1 file. Magic defaults to 0x1.
type Legacy struct {
	Magic  uint32
	Inputs int // layerSize0
	Width  int // layerSize1
	Weight WeightFunc
	Bias   func(col int) int16
	Output func(col int) int16
}

// Bytes serializes the file.
func (l Legacy) Bytes() []byte {
	magic := l.Magic
	if magic == 0 {
		magic = legacyMagic
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{magic, 1, uint32(l.Inputs), uint32(l.Width)})
	pad(&buf, headerSize)

	for row := 0; row < l.Inputs; row++ {
		for col := 0; col < l.Width; col++ {
			binary.Write(&buf, binary.LittleEndian, call(l.Weight, row, col, 0))
		}
	}
	for col := 0; col < l.Width; col++ {
		binary.Write(&buf, binary.LittleEndian, call1(l.Bias, col))
	}
	for col := 0; col < l.Width; col++ {
		binary.Write(&buf, binary.LittleEndian, call1(l.Output, col))
	}
	return buf.Bytes()
}

// KingBucket describes a king-bucket file. Magic defaults to 'CSNN' and
// Version to 12.
type KingBucket struct {
	Magic       uint32
	Version     uint32
	Accumulator int // layerSize1 / 2
	Buckets     int
	Variants    int
	Weight      WeightFunc
	Bias        func(col int) int16
	// Output returns the output weight of column col in a variant.
	Output func(variant, col int) int16
}

// VariantStride is the padded byte size of one output variant.
func (k KingBucket) VariantStride() int {
	n := 2 * (2*k.Accumulator + 1)
	return (n + 63) / 64 * 64
}

// Bytes serializes the file.
func (k KingBucket) Bytes() []byte {
	magic := k.Magic
	if magic == 0 {
		magic = currentMagic
	}
	version := k.Version
	if version == 0 {
		version = 12
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{
		magic, version,
		uint32(k.Buckets * featuresPerKB), uint32(2 * k.Accumulator), 1, 0,
		1, uint32(k.Variants), 0, 0,
	})
	pad(&buf, headerSize)

	for b := 0; b < k.Buckets; b++ {
		for row := 0; row < featuresPerKB; row++ {
			for col := 0; col < k.Accumulator; col++ {
				binary.Write(&buf, binary.LittleEndian, call(k.Weight, row, col, b))
			}
		}
	}
	for col := 0; col < k.Accumulator; col++ {
		binary.Write(&buf, binary.LittleEndian, call1(k.Bias, col))
	}
	for v := 0; v < k.Variants; v++ {
		start := buf.Len()
		for col := 0; col < 2*k.Accumulator; col++ {
			var w int16
			if k.Output != nil {
				w = k.Output(v, col)
			}
			binary.Write(&buf, binary.LittleEndian, w)
		}
		pad(&buf, start+k.VariantStride())
	}
	return buf.Bytes()
}

func pad(buf *bytes.Buffer, size int) {
	for buf.Len() < size {
		buf.WriteByte(0)
	}
}

func call(f WeightFunc, row, col, bucket int) int16 {
	if f == nil {
		return 0
	}
	return f(row, col, bucket)
}

func call1(f func(int) int16, col int) int16 {
	if f == nil {
		return 0
	}
	return f(col)
}
