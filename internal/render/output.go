package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Output file names.
const (
	RawViewFile     = "rawView.png"
	BoardViewFile   = "boardView.png"
	LabeledViewFile = "boardViewLabeled.png"
)

// Scale enlarges img by an integer factor with nearest-neighbour sampling
// so every weight stays a crisp block.
func Scale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WriteImages encodes every view as PNG and writes them to dir. All images
// are encoded before the first file is written, so an encoding failure
// leaves dir untouched.
func WriteImages(imgs *Images, dir string, scale int) error {
	type output struct {
		name string
		img  *image.RGBA
	}
	outputs := []output{
		{RawViewFile, imgs.Raw},
		{BoardViewFile, imgs.Board},
	}
	if imgs.Labeled != nil {
		outputs = append(outputs, output{LabeledViewFile, imgs.Labeled})
	}

	encoded := make([][]byte, len(outputs))
	for i, o := range outputs {
		var buf bytes.Buffer
		if err := png.Encode(&buf, Scale(o.img, scale)); err != nil {
			return fmt.Errorf("failed to encode %s: %w", o.name, err)
		}
		encoded[i] = buf.Bytes()
	}

	for i, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := os.WriteFile(path, encoded[i], 0644); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
	}
	return nil
}
