// Package render draws network weights as a raw heatmap and as a board view.
package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/hailam/netview/internal/board"
	"github.com/hailam/netview/internal/netfile"
	"github.com/hailam/netview/internal/palette"
)

// Options control how a network is composed into images.
type Options struct {
	Margin int // pixels between tiles and around the board view
	Bucket int // king bucket to render
	Curve  palette.Curve
}

// DefaultOptions returns options for a layout: 1 pixel margins, bucket 0
// and the layout's native color curve.
func DefaultOptions(l netfile.Layout) Options {
	return Options{Margin: 1, Curve: l.Curve()}
}

// Images holds the rendered views.
type Images struct {
	// Raw has one pixel per weight: x is the accumulator column, y the
	// input feature.
	Raw *image.RGBA
	// Board arranges each accumulator column's input weights on piece
	// tiles, one tile row per column, followed by output-weight tiles.
	Board *image.RGBA
	// Labeled is Board with a tile caption strip, nil unless requested.
	Labeled *image.RGBA
}

// BoardSize returns the board view dimensions for a layout.
func BoardSize(l netfile.Layout, margin int) image.Point {
	tile := board.TileSize + margin
	return image.Pt((board.NumPieces+l.Variants())*tile+margin, l.Columns()*tile+margin)
}

// Compose renders both views. The file is validated first so that a
// short or inconsistent file fails before any pixel is produced.
func Compose(net *netfile.Network, opts Options) (*Images, error) {
	l := net.Layout
	if err := net.Validate(); err != nil {
		return nil, err
	}
	if opts.Margin < 0 {
		return nil, fmt.Errorf("negative margin %d", opts.Margin)
	}
	if opts.Bucket < 0 || opts.Bucket >= l.Buckets() {
		return nil, fmt.Errorf("king bucket %d out of range [0, %d)", opts.Bucket, l.Buckets())
	}

	rows, cols := l.Rows(), l.Columns()
	tile := board.TileSize + opts.Margin
	mapper := board.Mapper{Set: l.FeatureSet(), Margin: opts.Margin}

	raw := image.NewRGBA(image.Rect(0, 0, cols, rows))
	bv := image.NewRGBA(image.Rectangle{Max: BoardSize(l, opts.Margin)})
	draw.Draw(bv, bv.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)

	for row := 0; row < rows; row++ {
		x, y, err := mapper.Coord(row)
		if err != nil {
			return nil, fmt.Errorf("input row %d: %w", row, err)
		}
		for col := 0; col < cols; col++ {
			w, err := net.WeightAt(row, col, opts.Bucket)
			if err != nil {
				return nil, err
			}
			c := palette.WeightToColor(w, opts.Curve)
			raw.SetRGBA(col, row, c)
			bv.SetRGBA(opts.Margin+x, opts.Margin+col*tile+y, c)
		}
	}

	for v := 0; v < l.Variants(); v++ {
		x0 := opts.Margin + (board.NumPieces+v)*tile
		for col := 0; col < cols; col++ {
			w, err := net.OutputWeightAt(v, col)
			if err != nil {
				return nil, err
			}
			y0 := opts.Margin + col*tile
			r := image.Rect(x0, y0, x0+board.TileSize, y0+board.TileSize)
			draw.Draw(bv, r, image.NewUniform(palette.WeightToColor(w, opts.Curve)), image.Point{}, draw.Src)
		}
	}

	return &Images{Raw: raw, Board: bv}, nil
}
