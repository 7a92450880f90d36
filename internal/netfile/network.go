package netfile

import (
	"fmt"
	"math"
	"os"
)

// Options configure how a network file is decoded.
type Options struct {
	Magic          uint32
	HeaderSize     int
	NumKingBuckets int
}

// DefaultOptions returns the options matching current network files.
func DefaultOptions() Options {
	return Options{
		Magic:          MagicNumber,
		HeaderSize:     DefaultHeaderSize,
		NumKingBuckets: DefaultKingBuckets,
	}
}

// Network is a decoded header plus the raw file bytes. Weights are read on
// demand by offset and never copied out.
type Network struct {
	Header Header
	Layout Layout
	data   []byte
}

// Open reads the whole file at path and decodes its header.
func Open(path string, opts Options) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}
	return NewNetwork(data, opts)
}

// NewNetwork decodes the header of data and selects its layout.
func NewNetwork(data []byte, opts Options) (*Network, error) {
	h, err := ReadHeader(data, opts.Magic)
	if err != nil {
		return nil, err
	}
	if opts.HeaderSize < h.Kind().prefixSize() {
		return nil, formatErrorf(ErrBadDimensions, len(data), "header size %d smaller than %s prefix", opts.HeaderSize, h.Kind())
	}

	n := &Network{Header: h, data: data}
	switch h.Kind() {
	case Legacy:
		if h.LayerSizes[0] == 0 || h.LayerSizes[1] == 0 {
			return nil, formatErrorf(ErrBadDimensions, len(data), "layer sizes %d x %d", h.LayerSizes[0], h.LayerSizes[1])
		}
		n.Layout = LegacyLayout{
			HeaderSize: opts.HeaderSize,
			Inputs:     int(h.LayerSizes[0]),
			Width:      int(h.LayerSizes[1]),
		}
	default:
		if h.LayerSizes[1] == 0 || h.LayerSizes[1]%2 != 0 {
			return nil, formatErrorf(ErrBadDimensions, len(data), "accumulator size %d is not a positive even number", h.LayerSizes[1])
		}
		if opts.NumKingBuckets < 1 {
			return nil, formatErrorf(ErrBadDimensions, len(data), "%d king buckets", opts.NumKingBuckets)
		}
		variants := int(h.LayerVariants[1])
		if variants == 0 {
			variants = 1
		}
		n.Layout = KingBucketLayout{
			HeaderSize:     opts.HeaderSize,
			Accumulator:    int(h.LayerSizes[1]) / 2,
			NumKingBuckets: opts.NumKingBuckets,
			NumVariants:    variants,
		}
	}
	return n, nil
}

// Len returns the file size in bytes.
func (n *Network) Len() int {
	return len(n.data)
}

// Validate checks that every weight the layout addresses lies inside the
// file and that each input row has a place in the board view.
func (n *Network) Validate() error {
	size, ok := n.Layout.span()
	if !ok || size > math.MaxInt {
		return formatErrorf(ErrOutOfRange, len(n.data), "%s layout dimensions overflow", n.Layout.Kind())
	}
	if size > uint64(len(n.data)) {
		return &FormatError{
			Kind:   ErrOutOfRange,
			Offset: int(size),
			Length: len(n.data),
			Detail: fmt.Sprintf("%s layout needs %d bytes", n.Layout.Kind(), size),
		}
	}
	if rows, limit := n.Layout.Rows(), n.Layout.FeatureSet().Size(); rows > limit {
		return formatErrorf(ErrBadDimensions, len(n.data), "%d input features, %s feature set has %d", rows, n.Layout.FeatureSet(), limit)
	}
	return nil
}

// WeightAt returns the input weight connecting feature row to accumulator
// column col within a king bucket.
func (n *Network) WeightAt(row, col, bucket int) (int16, error) {
	l := n.Layout
	if row < 0 || row >= l.Rows() || col < 0 || col >= l.Columns() || bucket < 0 || bucket >= l.Buckets() {
		return 0, formatErrorf(ErrOutOfRange, len(n.data), "weight (%d, %d) bucket %d outside %d x %d x %d", row, col, bucket, l.Rows(), l.Columns(), l.Buckets())
	}
	return readInt16(n.data, l.WeightOffset(row, col, bucket))
}

// BiasAt returns the accumulator bias of column col.
func (n *Network) BiasAt(col int) (int16, error) {
	if col < 0 || col >= n.Layout.Columns() {
		return 0, formatErrorf(ErrOutOfRange, len(n.data), "bias %d outside %d", col, n.Layout.Columns())
	}
	return readInt16(n.data, n.Layout.BiasOffset(col))
}

// OutputWeightAt returns the output-layer weight of column col in a variant.
func (n *Network) OutputWeightAt(variant, col int) (int16, error) {
	l := n.Layout
	if variant < 0 || variant >= l.Variants() || col < 0 || col >= l.Columns() {
		return 0, formatErrorf(ErrOutOfRange, len(n.data), "output weight %d variant %d outside %d x %d", col, variant, l.Columns(), l.Variants())
	}
	return readInt16(n.data, l.OutputOffset(variant, col))
}
