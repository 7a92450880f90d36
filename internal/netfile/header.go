// Package netfile decodes packed evaluation network files.
//
// Two layouts exist. The legacy layout (version 1) stores a single
// input-to-accumulator matrix followed by its biases and one output
// vector. The king-bucket layout (every later version) stores one input
// matrix per king bucket, the accumulator biases, and one cache-line
// aligned output vector per variant.
//
// File format (little-endian):
//   - Header: Magic, Version, LayerSizes[4], LayerVariants[4], padding,
//     HeaderSize bytes in total (legacy files only fill LayerSizes[0:2])
//   - Accumulator weights: int16, row-major, one block per king bucket
//   - Accumulator biases: int16
//   - Output weights: int16, padded to CacheLineSize per variant
package netfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// File format constants.
const (
	// MagicNumber is the multi-character constant 'CSNN'.
	MagicNumber   = 0x43534E4E
	LegacyVersion = 1

	// DefaultHeaderSize is the size of the padded header block.
	DefaultHeaderSize = 64
	// DefaultKingBuckets is the bucket count of current king-bucket nets.
	DefaultKingBuckets = 11

	legacyPrefixSize     = 16
	kingBucketPrefixSize = 40
)

// LayoutKind identifies the weight layout of a file.
type LayoutKind uint8

const (
	Legacy LayoutKind = iota
	KingBucket
)

// String returns the layout name.
func (k LayoutKind) String() string {
	switch k {
	case Legacy:
		return "legacy"
	case KingBucket:
		return "king-bucket"
	default:
		return "unknown"
	}
}

// KindForVersion returns the layout used by a file version.
func KindForVersion(version uint32) LayoutKind {
	if version == LegacyVersion {
		return Legacy
	}
	return KingBucket
}

func (k LayoutKind) prefixSize() int {
	if k == Legacy {
		return legacyPrefixSize
	}
	return kingBucketPrefixSize
}

// Header is the fixed prefix of a network file.
type Header struct {
	Magic         uint32
	Version       uint32
	LayerSizes    [4]uint32
	LayerVariants [4]uint32
}

// Kind returns the layout selected by the header version.
func (h Header) Kind() LayoutKind {
	return KindForVersion(h.Version)
}

type legacyPrefix struct {
	Magic      uint32
	Version    uint32
	LayerSizes [2]uint32
}

type kingBucketPrefix struct {
	Magic         uint32
	Version       uint32
	LayerSizes    [4]uint32
	LayerVariants [4]uint32
}

// ReadHeader decodes the header at the start of data. The magic number must
// equal magic.
func ReadHeader(data []byte, magic uint32) (Header, error) {
	if len(data) < 8 {
		return Header{}, formatErrorf(ErrTruncated, len(data), "need 8 bytes for magic and version, got %d", len(data))
	}
	var h Header
	h.Magic = binary.LittleEndian.Uint32(data[0:])
	h.Version = binary.LittleEndian.Uint32(data[4:])

	if h.Magic != magic {
		return Header{}, formatErrorf(ErrBadMagic, len(data), "expected %x, got %x", magic, h.Magic)
	}
	if h.Version == 0 {
		return Header{}, formatErrorf(ErrUnsupportedVersion, len(data), "version %d", h.Version)
	}

	kind := h.Kind()
	if len(data) < kind.prefixSize() {
		return Header{}, formatErrorf(ErrTruncated, len(data), "%s header needs %d bytes, got %d", kind, kind.prefixSize(), len(data))
	}

	r := bytes.NewReader(data)
	switch kind {
	case Legacy:
		var p legacyPrefix
		if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
			return Header{}, fmt.Errorf("failed to read header: %w", err)
		}
		copy(h.LayerSizes[:], p.LayerSizes[:])
	default:
		var p kingBucketPrefix
		if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
			return Header{}, fmt.Errorf("failed to read header: %w", err)
		}
		h.LayerSizes = p.LayerSizes
		h.LayerVariants = p.LayerVariants
	}
	return h, nil
}
