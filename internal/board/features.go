package board

import (
	"errors"
	"fmt"
)

// TileSize is the edge length of one piece tile in the board view.
const TileSize = 8

// ErrFeatureIndex is returned for an input index outside the feature set.
var ErrFeatureIndex = errors.New("feature index out of range")

// FeatureSet identifies how a network numbers its per-piece input features.
type FeatureSet uint8

const (
	// PrunedFeatures omits squares a piece can never stand on: pawns skip
	// the first and last rank (48 entries) and the white king only uses
	// files a-d (32 entries). The black king keeps all 64 squares, 704
	// features in total.
	PrunedFeatures FeatureSet = iota
	// FullFeatures gives every piece all 64 squares, 768 features in total.
	FullFeatures
)

// String returns the feature set name.
func (fs FeatureSet) String() string {
	switch fs {
	case PrunedFeatures:
		return "pruned"
	case FullFeatures:
		return "full"
	default:
		return "unknown"
	}
}

// segment describes how one piece's features are laid out inside its tile.
type segment struct {
	size      int // number of feature indices
	width     int // entries per tile row
	rowOffset int // first populated tile row
}

func (fs FeatureSet) segment(p Piece) segment {
	if fs == PrunedFeatures {
		switch {
		case p.Type() == Pawn:
			return segment{size: 48, width: 8, rowOffset: 1}
		case p.Type() == King && p.Color() == White:
			return segment{size: 32, width: 4}
		}
	}
	return segment{size: 64, width: 8}
}

// Size returns the number of input features in the set.
func (fs FeatureSet) Size() int {
	n := 0
	for p := Piece(0); p < NoPiece; p++ {
		n += fs.segment(p).size
	}
	return n
}

// Mapper places input feature indices into the board view. Each piece gets
// its own 8x8 tile; tiles are separated by Margin pixels.
type Mapper struct {
	Set    FeatureSet
	Margin int
}

// locate resolves a flat feature index into its piece segment and the
// index within that segment.
func (m Mapper) locate(index int) (Piece, segment, int, error) {
	if index < 0 {
		return NoPiece, segment{}, 0, fmt.Errorf("%w: %d", ErrFeatureIndex, index)
	}
	i := index
	for p := Piece(0); p < NoPiece; p++ {
		seg := m.Set.segment(p)
		if i < seg.size {
			return p, seg, i, nil
		}
		i -= seg.size
	}
	return NoPiece, segment{}, 0, fmt.Errorf("%w: %d (%s set has %d)", ErrFeatureIndex, index, m.Set, m.Set.Size())
}

// Coord returns the board view position of a feature, relative to the
// top-left corner of the tile area (the outer margin is not included).
func (m Mapper) Coord(index int) (x, y int, err error) {
	p, seg, i, err := m.locate(index)
	if err != nil {
		return 0, 0, err
	}
	x = int(p)*(TileSize+m.Margin) + i%seg.width
	y = seg.rowOffset + i/seg.width
	return x, y, nil
}

// Segment returns the piece and board square a feature index encodes.
func (m Mapper) Segment(index int) (Piece, Square, error) {
	p, seg, i, err := m.locate(index)
	if err != nil {
		return NoPiece, NoSquare, err
	}
	return p, NewSquare(i%seg.width, seg.rowOffset+i/seg.width), nil
}
