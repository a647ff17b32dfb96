package texremap

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Canvas is the output buffer of a remap. Each channel is stored as its own
// height x width plane of straight values in [0,1].
type Canvas struct {
	w, h   int
	planes [4]*mat.Dense
}

// NewCanvas returns a w x h canvas filled with opaque black (0,0,0,1).
// w and h must be positive.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{w: w, h: h}
	for _, ch := range []Channel{Red, Green, Blue} {
		c.planes[ch] = mat.NewDense(h, w, nil)
	}
	ones := make([]float64, w*h)
	for i := range ones {
		ones[i] = 1
	}
	c.planes[Alpha] = mat.NewDense(h, w, ones)
	return c
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

// Channel returns the value of channel ch at (x, y).
func (c *Canvas) Channel(ch Channel, x, y int) float64 {
	return c.planes[ch].At(y, x)
}

// SetChannel overwrites channel ch at (x, y), leaving the other channels
// untouched.
func (c *Canvas) SetChannel(ch Channel, x, y int, v float64) {
	c.planes[ch].Set(y, x, v)
}

// Color returns all four channels at (x, y).
func (c *Canvas) Color(x, y int) Color {
	var col Color
	col.R = c.planes[Red].At(y, x)
	col.G = c.planes[Green].At(y, x)
	col.B = c.planes[Blue].At(y, x)
	col.A = c.planes[Alpha].At(y, x)
	return col
}

// Plane exposes channel ch as a read-only height x width matrix.
func (c *Canvas) Plane(ch Channel) mat.Matrix {
	return c.planes[ch]
}

// row returns the backing slice of row y of channel ch.
func (c *Canvas) row(ch Channel, y int) []float64 {
	return c.planes[ch].RawRowView(y)
}

// Equal reports whether both canvases have the same size and identical
// channel values.
func (c *Canvas) Equal(o *Canvas) bool {
	if c.w != o.w || c.h != o.h {
		return false
	}
	for ch := range c.planes {
		if !mat.Equal(c.planes[ch], o.planes[ch]) {
			return false
		}
	}
	return true
}

func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.w, c.h)
}

func (c *Canvas) ColorModel() color.Model {
	return color.NRGBA64Model
}

func (c *Canvas) At(x, y int) color.Color {
	if !image.Pt(x, y).In(c.Bounds()) {
		return color.NRGBA64{}
	}
	col := c.Color(x, y)
	return color.NRGBA64{
		R: quantize16(col.R),
		G: quantize16(col.G),
		B: quantize16(col.B),
		A: quantize16(col.A),
	}
}

// NRGBA converts the canvas to an 8-bit straight alpha image, ready for
// encoding.
func (c *Canvas) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(c.Bounds())
	for y := 0; y < c.h; y++ {
		r := c.row(Red, y)
		g := c.row(Green, y)
		b := c.row(Blue, y)
		a := c.row(Alpha, y)
		for x := 0; x < c.w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: quantize8(r[x]),
				G: quantize8(g[x]),
				B: quantize8(b[x]),
				A: quantize8(a[x]),
			})
		}
	}
	return img
}

func quantize8(v float64) uint8 {
	return uint8(math.Round(max(0, min(1, v)) * 0xff))
}

func quantize16(v float64) uint16 {
	return uint16(math.Round(max(0, min(1, v)) * 0xffff))
}
