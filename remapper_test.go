package texremap

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradient returns an image whose red channel encodes x and green encodes y.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255})
		}
	}
	return img
}

func checkAll(t *testing.T, c *Canvas, want [4]float64) {
	t.Helper()
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			for _, ch := range Channels {
				if got := c.Channel(ch, x, y); got != want[ch] {
					t.Fatalf("pixel (%d,%d) channel %v = %v, want %v", x, y, ch, got, want[ch])
				}
			}
		}
	}
}

func sequential() *Remapper {
	return New(Options{Workers: 1})
}

func TestOutputSize(t *testing.T) {
	job := Job{Sources: []SourceMapping{
		{Image: solid(4, 4, color.NRGBA{A: 255})},
		{Image: nil},
		{Image: solid(8, 2, color.NRGBA{A: 255})},
	}}
	w, h, err := OutputSize(job)
	if err != nil {
		t.Fatal(err)
	}
	if w != 8 || h != 4 {
		t.Errorf("OutputSize = %dx%d, want 8x4", w, h)
	}

	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width() != 8 || c.Height() != 4 {
		t.Errorf("canvas = %dx%d, want 8x4", c.Width(), c.Height())
	}
}

func TestDefaultFill(t *testing.T) {
	job := Job{Sources: []SourceMapping{{Image: solid(3, 5, color.NRGBA{R: 255, G: 255, B: 255, A: 0})}}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width() != 3 || c.Height() != 5 {
		t.Fatalf("canvas = %dx%d, want 3x5", c.Width(), c.Height())
	}
	checkAll(t, c, [4]float64{0, 0, 0, 1})
}

func TestSingleChannelCopy(t *testing.T) {
	job := Job{Sources: []SourceMapping{{
		Image: solid(2, 2, color.NRGBA{R: 255, A: 255}),
		Rules: []ChannelRule{{Input: Red, Output: Red}},
	}}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{1, 0, 0, 1})
}

func TestInversion(t *testing.T) {
	job := Job{Sources: []SourceMapping{{
		Image: solid(2, 2, color.NRGBA{R: 255, A: 255}),
		Rules: []ChannelRule{{Input: Red, Invert: true, Output: Green}},
	}}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{0, 0, 0, 1})

	job.Sources[0].Rules = []ChannelRule{{Input: Green, Invert: true, Output: Blue}}
	c, err = sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{0, 0, 1, 1})
}

func TestOverwriteOrder(t *testing.T) {
	// 51/255 = 0.2, 204/255 = 0.8
	src := solid(2, 2, color.NRGBA{R: 51, G: 204, A: 255})
	job := Job{Sources: []SourceMapping{{
		Image: src,
		Rules: []ChannelRule{
			{Input: Red, Output: Red},
			{Input: Green, Output: Red},
		},
	}}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{204.0 / 255, 0, 0, 1})

	// The same holds across sources.
	job = Job{Sources: []SourceMapping{
		{Image: src, Rules: []ChannelRule{{Input: Green, Output: Red}}},
		{Image: src, Rules: []ChannelRule{{Input: Red, Output: Red}}},
	}}
	c, err = sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{51.0 / 255, 0, 0, 1})
}

func TestNearestUpscale(t *testing.T) {
	one := solid(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	big := solid(4, 4, color.NRGBA{A: 255})
	job := Job{Sources: []SourceMapping{
		{Image: big},
		{Image: one, Rules: []ChannelRule{{Input: Alpha, Output: Green}}},
	}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{0, 40.0 / 255, 0, 1})
}

func TestLargestSourceMapsOneToOne(t *testing.T) {
	// The 5x1 gradient sets the canvas width, so each column reads its own
	// source pixel; the canvas is 2 rows high and both rows read source row 0.
	src := gradient(5, 1)
	job := Job{Sources: []SourceMapping{
		{Image: solid(3, 2, color.NRGBA{A: 255})},
		{Image: src, Rules: []ChannelRule{{Input: Red, Output: Blue}}},
	}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width() != 5 || c.Height() != 2 {
		t.Fatalf("canvas = %dx%d, want 5x2", c.Width(), c.Height())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 5; x++ {
			if got, want := c.Channel(Blue, x, y), float64(x*10)/255; got != want {
				t.Errorf("blue at (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestStretchSmallerSource(t *testing.T) {
	// 2x2 source stretched to 3x3: output index 1 maps to u=0.5 -> floor(0.5) = 0.
	// Columns count from the left, rows from the bottom.
	small := gradient(2, 2)
	job := Job{Sources: []SourceMapping{
		{Image: solid(3, 3, color.NRGBA{A: 255})},
		{Image: small, Rules: []ChannelRule{{Input: Red, Output: Red}, {Input: Green, Output: Green}}},
	}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	wantCol := []int{0, 0, 1}
	wantRow := []int{0, 1, 1}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got, want := c.Channel(Red, x, y), float64(wantCol[x]*10)/255; got != want {
				t.Errorf("red at (%d,%d) = %v, want %v", x, y, got, want)
			}
			if got, want := c.Channel(Green, x, y), float64(wantRow[y]*10)/255; got != want {
				t.Errorf("green at (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestShortSourceStretchesFromBottom(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{A: 255})
	job := Job{Sources: []SourceMapping{
		{Image: solid(1, 4, color.NRGBA{A: 255})},
		{Image: src, Rules: []ChannelRule{{Input: Red, Output: Red}}},
	}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	for y, want := range []float64{1, 0, 0, 0} {
		if got := c.Channel(Red, 0, y); got != want {
			t.Errorf("red at row %d = %v, want %v", y, got, want)
		}
	}
}

func TestTransparentSourceKeepsColor(t *testing.T) {
	src := solid(2, 2, color.NRGBA{R: 255, G: 128, B: 7, A: 0})
	job := Job{Sources: []SourceMapping{{
		Image: src,
		Rules: []ChannelRule{{Input: Red, Output: Red}, {Input: Green, Output: Green}},
	}}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{1, 128.0 / 255, 0, 1})
}

func TestTypedNilImageIsAbsent(t *testing.T) {
	var missing *image.NRGBA
	job := Job{Name: "x", Sources: []SourceMapping{NewSourceMapping(missing)}}
	if _, err := sequential().Run(job); !errors.Is(err, ErrNoValidSource) {
		t.Errorf("Run err = %v, want ErrNoValidSource", err)
	}
	if err := job.Ready(); !errors.Is(err, ErrMissingImage) {
		t.Errorf("Ready err = %v, want ErrMissingImage", err)
	}

	job.Sources = append(job.Sources, NewSourceMapping(solid(2, 3, color.NRGBA{R: 255, A: 255})))
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width() != 2 || c.Height() != 3 {
		t.Errorf("canvas = %dx%d, want 2x3", c.Width(), c.Height())
	}
}

func TestMultiSourceComposite(t *testing.T) {
	a := solid(2, 2, color.NRGBA{R: 255, G: 0, A: 255})
	b := solid(2, 2, color.NRGBA{R: 0, G: 255, A: 255})
	job := Job{Sources: []SourceMapping{
		{Image: a, Rules: []ChannelRule{{Input: Red, Output: Red}}},
		{Image: b, Rules: []ChannelRule{{Input: Green, Output: Green}}},
	}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{1, 1, 0, 1})
}

func TestSourceWithOffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 12, 22))
	img.SetNRGBA(10, 20, color.NRGBA{R: 255, A: 255})
	job := Job{Sources: []SourceMapping{{Image: img, Rules: []ChannelRule{{Input: Red, Output: Red}}}}}
	c, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Channel(Red, 0, 0); got != 1 {
		t.Errorf("red at origin = %v, want 1", got)
	}
	if got := c.Channel(Red, 1, 1); got != 0 {
		t.Errorf("red at (1,1) = %v, want 0", got)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want error
	}{
		{"no sources", Job{}, ErrNoValidSource},
		{"all absent", Job{Sources: []SourceMapping{{}, {Rules: []ChannelRule{DefaultRule}}}}, ErrNoValidSource},
		{"empty source", Job{Sources: []SourceMapping{
			{Image: solid(2, 2, color.NRGBA{})},
			{Image: image.NewNRGBA(image.Rect(0, 0, 0, 3)), Rules: []ChannelRule{DefaultRule}},
		}}, ErrEmptySource},
		{"invalid input", Job{Sources: []SourceMapping{
			{Image: solid(2, 2, color.NRGBA{}), Rules: []ChannelRule{{Input: 4, Output: Red}}},
		}}, ErrInvalidChannel},
		{"invalid output on absent source", Job{Sources: []SourceMapping{
			{Image: solid(2, 2, color.NRGBA{})},
			{Rules: []ChannelRule{{Input: Red, Output: 9}}},
		}}, ErrInvalidChannel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := sequential().Run(tc.job)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if c != nil {
				t.Error("canvas returned alongside error")
			}
		})
	}
}

func TestDeterministicAndParallel(t *testing.T) {
	job := Job{Sources: []SourceMapping{
		{Image: gradient(17, 9), Rules: []ChannelRule{{Input: Red, Output: Red}, {Input: Green, Invert: true, Output: Alpha}}},
		{Image: gradient(5, 23), Rules: []ChannelRule{{Input: Green, Output: Blue}, {Input: Red, Output: Red}}},
	}}
	want, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	again, err := sequential().Run(job)
	if err != nil {
		t.Fatal(err)
	}
	if !want.Equal(again) {
		t.Error("repeated sequential runs differ")
	}
	for _, workers := range []int{2, 3, 8, 64} {
		got, err := New(Options{Workers: workers}).Run(job)
		if err != nil {
			t.Fatal(err)
		}
		if !want.Equal(got) {
			t.Errorf("workers=%d: result differs from sequential run", workers)
		}
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewJob("x", solid(4, 4, color.NRGBA{A: 255}))
	for _, workers := range []int{1, 4} {
		c, err := New(Options{Workers: workers}).RunContext(ctx, job)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: err = %v, want context.Canceled", workers, err)
		}
		if c != nil {
			t.Errorf("workers=%d: canvas returned after cancel", workers)
		}
	}
}

func TestRemapDefaultOptions(t *testing.T) {
	job := NewJob("copy", solid(3, 2, color.NRGBA{R: 255, G: 128, A: 255}))
	c, err := Remap(job)
	if err != nil {
		t.Fatal(err)
	}
	checkAll(t, c, [4]float64{1, 0, 0, 1})
}
