package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/netview/internal/board"
)

// captionColor is the text color of the caption strip.
var captionColor = color.RGBA{230, 230, 230, 255}

// Annotate returns a copy of a board view with a caption strip on top
// naming every tile column: FEN letters for the piece tiles and the variant
// number for output tiles.
func Annotate(bv *image.RGBA, variants, margin int) *image.RGBA {
	face := inconsolata.Regular8x16
	strip := face.Metrics().Height.Ceil()

	b := bv.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+strip))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, strip, b.Dx(), b.Dy()+strip), bv, b.Min, draw.Src)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(captionColor),
		Face: face,
	}
	tile := board.TileSize + margin
	baseline := face.Metrics().Ascent.Ceil()
	for i := 0; i < board.NumPieces+variants; i++ {
		label := fmt.Sprint(i - board.NumPieces)
		if i < board.NumPieces {
			label = board.Piece(i).String()
		}
		d.Dot = fixed.P(margin+i*tile, baseline)
		d.DrawString(label)
	}
	return dst
}
