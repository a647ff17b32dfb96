package utils

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/setanarut/texremap"
)

// ChannelStat summarizes one channel of an image. Values are straight
// (non-premultiplied) and in [0,1].
type ChannelStat struct {
	Channel      texremap.Channel
	Min, Max     float64
	Mean, StdDev float64
}

func (s ChannelStat) String() string {
	return fmt.Sprintf("%v: min %.4f max %.4f mean %.4f stddev %.4f", s.Channel, s.Min, s.Max, s.Mean, s.StdDev)
}

// ChannelStats computes per-channel statistics of img. A *texremap.Canvas is
// read directly from its planes.
func ChannelStats(img image.Image) [4]ChannelStat {
	var out [4]ChannelStat
	var values [4][]float64
	if c, ok := img.(*texremap.Canvas); ok {
		for _, ch := range texremap.Channels {
			values[ch] = planeValues(c.Plane(ch))
		}
	} else {
		b := img.Bounds()
		n := b.Dx() * b.Dy()
		for _, ch := range texremap.Channels {
			values[ch] = make([]float64, 0, n)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				col := texremap.ColorAt(img, x, y)
				for _, ch := range texremap.Channels {
					values[ch] = append(values[ch], col.Channel(ch))
				}
			}
		}
	}
	for _, ch := range texremap.Channels {
		out[ch] = summarize(ch, values[ch])
	}
	return out
}

func planeValues(m mat.Matrix) []float64 {
	r, c := m.Dims()
	v := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v = append(v, m.At(i, j))
		}
	}
	return v
}

func summarize(ch texremap.Channel, v []float64) ChannelStat {
	s := ChannelStat{Channel: ch}
	if len(v) == 0 {
		return s
	}
	s.Min = floats.Min(v)
	s.Max = floats.Max(v)
	s.Mean, s.StdDev = stat.PopMeanStdDev(v, nil)
	return s
}
