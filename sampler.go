package texremap

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) RGBA color with every component in
// [0,1].
type Color struct {
	colorful.Color
	A float64
}

// Channel returns the component selected by ch. It panics on an invalid
// channel; rules are validated before any pixel is read.
func (c Color) Channel(ch Channel) float64 {
	switch ch {
	case Red:
		return c.R
	case Green:
		return c.G
	case Blue:
		return c.B
	case Alpha:
		return c.A
	}
	panic(fmt.Sprintf("texremap: invalid channel %d", ch))
}

// ColorAt reads the pixel at (x, y) of img as a straight RGBA color. The
// stored values of NRGBA and NRGBA64 images are returned as is, so color
// channels survive any alpha, including zero. Other image types go through
// color.NRGBA64Model.
func ColorAt(img image.Image, x, y int) Color {
	var c Color
	switch m := img.(type) {
	case *image.NRGBA:
		if !image.Pt(x, y).In(m.Rect) {
			return c
		}
		p := m.Pix[m.PixOffset(x, y):]
		c.R = float64(p[0]) / 0xff
		c.G = float64(p[1]) / 0xff
		c.B = float64(p[2]) / 0xff
		c.A = float64(p[3]) / 0xff
	case *image.NRGBA64:
		if !image.Pt(x, y).In(m.Rect) {
			return c
		}
		p := m.Pix[m.PixOffset(x, y):]
		c.R = float64(uint16(p[0])<<8|uint16(p[1])) / 0xffff
		c.G = float64(uint16(p[2])<<8|uint16(p[3])) / 0xffff
		c.B = float64(uint16(p[4])<<8|uint16(p[5])) / 0xffff
		c.A = float64(uint16(p[6])<<8|uint16(p[7])) / 0xffff
	default:
		n := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
		c.R = float64(n.R) / 0xffff
		c.G = float64(n.G) / 0xffff
		c.B = float64(n.B) / 0xffff
		c.A = float64(n.A) / 0xffff
	}
	return c
}

// Sample returns the color of src seen by output pixel (outX, outY) on an
// outW x outH canvas. Coordinates are normalized over the canvas and floored
// onto the source grid (nearest sampling, no interpolation):
//
//	u = outX / (outW-1)          (0 when outW == 1)
//	srcX = floor(u * (srcW-1))
//
// Rows are mapped the same way but counted from the bottom edge, so when a
// shorter source is stretched the repeated rows sit at the top.
func Sample(src image.Image, outX, outY, outW, outH int) (Color, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Color{}, ErrEmptySource
	}
	sx := sourceIndex(outX, outW, b.Dx())
	sy := rowIndex(outY, outH, b.Dy())
	return ColorAt(src, b.Min.X+sx, b.Min.Y+sy), nil
}

// sourceIndex maps an output coordinate to a source coordinate along one axis.
func sourceIndex(out, outSize, srcSize int) int {
	if outSize <= 1 {
		return 0
	}
	u := float64(out) / float64(outSize-1)
	return int(math.Floor(u * float64(srcSize-1)))
}

// rowIndex is sourceIndex with both row axes flipped: y = 0 is the top row
// of the image but the normalized coordinate runs from the bottom.
func rowIndex(out, outSize, srcSize int) int {
	return srcSize - 1 - sourceIndex(outSize-1-out, outSize, srcSize)
}

// sampler is the per-pass form of Sample: the axis lookups are computed once
// per source and canvas size instead of once per pixel.
type sampler struct {
	src  image.Image
	min  image.Point
	cols []int
	rows []int
}

func newSampler(src image.Image, outW, outH int) (*sampler, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptySource
	}
	s := &sampler{
		src:  src,
		min:  b.Min,
		cols: make([]int, outW),
		rows: make([]int, outH),
	}
	for x := 0; x < outW; x++ {
		s.cols[x] = sourceIndex(x, outW, b.Dx())
	}
	for y := 0; y < outH; y++ {
		s.rows[y] = rowIndex(y, outH, b.Dy())
	}
	return s, nil
}

func (s *sampler) at(x, y int) Color {
	return ColorAt(s.src, s.min.X+s.cols[x], s.min.Y+s.rows[y])
}
