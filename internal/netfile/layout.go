package netfile

import (
	"github.com/hailam/netview/internal/board"
	"github.com/hailam/netview/internal/palette"
)

// numPieceSquares is the size of one king bucket's input block.
const numPieceSquares = board.NumPieces * 64

// Layout computes byte offsets of weights within a network file.
type Layout interface {
	Kind() LayoutKind
	// Rows is the number of input features rendered per bucket.
	Rows() int
	// Columns is the accumulator width rendered per feature.
	Columns() int
	// Buckets is the number of independent input weight blocks.
	Buckets() int
	// Variants is the number of output-layer weight sets.
	Variants() int

	WeightOffset(row, col, bucket int) int
	BiasOffset(col int) int
	OutputOffset(variant, col int) int
	// Size is the number of bytes the layout needs, header included. It is
	// only meaningful once Network.Validate has accepted the layout.
	Size() int
	// span is Size computed without int overflow; ok is false when the
	// dimensions do not fit in 64 bits.
	span() (n uint64, ok bool)

	FeatureSet() board.FeatureSet
	Curve() palette.Curve
}

// LegacyLayout is the single-matrix layout of version 1 files. Row
// layerSize0 of the matrix holds the biases; the output weights follow.
type LegacyLayout struct {
	HeaderSize int
	Inputs     int // layerSize0
	Width      int // layerSize1
}

func (l LegacyLayout) Kind() LayoutKind { return Legacy }
func (l LegacyLayout) Rows() int        { return l.Inputs }
func (l LegacyLayout) Columns() int     { return l.Width }
func (l LegacyLayout) Buckets() int     { return 1 }
func (l LegacyLayout) Variants() int    { return 1 }

func (l LegacyLayout) WeightOffset(row, col, bucket int) int {
	return l.HeaderSize + 2*(l.Width*row+col)
}

func (l LegacyLayout) BiasOffset(col int) int {
	return l.WeightOffset(l.Inputs, col, 0)
}

func (l LegacyLayout) OutputOffset(variant, col int) int {
	return l.HeaderSize + 2*l.Width*(l.Inputs+1) + 2*col
}

func (l LegacyLayout) Size() int {
	return l.OutputOffset(0, l.Width)
}

// span is HeaderSize + 2*Width*(Inputs+2): the matrix, the bias row and
// the output row.
func (l LegacyLayout) span() (uint64, bool) {
	var c sizeCalc
	rows := c.add(c.u(l.Inputs), 2)
	n := c.add(c.u(l.HeaderSize), c.mul(c.mul(2, c.u(l.Width)), rows))
	return n, !c.overflow
}

func (l LegacyLayout) FeatureSet() board.FeatureSet { return board.PrunedFeatures }
func (l LegacyLayout) Curve() palette.Curve         { return palette.LinearSaturating }

// KingBucketLayout stores one 768-row input block per king bucket. The
// accumulator is paired (one half per perspective), so each block is only
// layerSize1/2 wide.
type KingBucketLayout struct {
	HeaderSize     int
	Accumulator    int // layerSize1 / 2
	NumKingBuckets int
	NumVariants    int
}

func (l KingBucketLayout) Kind() LayoutKind { return KingBucket }
func (l KingBucketLayout) Rows() int        { return numPieceSquares }
func (l KingBucketLayout) Columns() int     { return l.Accumulator }
func (l KingBucketLayout) Buckets() int     { return l.NumKingBuckets }
func (l KingBucketLayout) Variants() int    { return l.NumVariants }

func (l KingBucketLayout) WeightOffset(row, col, bucket int) int {
	return l.HeaderSize + 2*(l.Accumulator*row+col) + 2*numPieceSquares*l.Accumulator*bucket
}

func (l KingBucketLayout) BiasOffset(col int) int {
	return l.HeaderSize + 2*l.Accumulator*numPieceSquares*l.NumKingBuckets + 2*col
}

// VariantStride is the padded size of one output variant: layerSize1
// weights plus the bias slot, rounded up to a cache line.
func (l KingBucketLayout) VariantStride() int {
	return CeilToMultiple(2*(2*l.Accumulator+1), CacheLineSize)
}

func (l KingBucketLayout) OutputOffset(variant, col int) int {
	base := l.HeaderSize + 2*l.Accumulator*(numPieceSquares*l.NumKingBuckets+1)
	return base + l.VariantStride()*variant + 2*col
}

func (l KingBucketLayout) Size() int {
	return l.OutputOffset(l.NumVariants, 0)
}

func (l KingBucketLayout) span() (uint64, bool) {
	var c sizeCalc
	acc := c.u(l.Accumulator)
	blocks := c.add(c.mul(uint64(numPieceSquares), c.u(l.NumKingBuckets)), 1)
	base := c.add(c.u(l.HeaderSize), c.mul(c.mul(2, acc), blocks))
	stride := c.mul(2, c.add(c.mul(2, acc), 1))
	stride = c.mul(c.add(stride, CacheLineSize-1)/CacheLineSize, CacheLineSize)
	n := c.add(base, c.mul(stride, c.u(l.NumVariants)))
	return n, !c.overflow
}

func (l KingBucketLayout) FeatureSet() board.FeatureSet { return board.FullFeatures }
func (l KingBucketLayout) Curve() palette.Curve         { return palette.SqrtSaturating }
