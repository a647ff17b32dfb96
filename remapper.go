// Package texremap composes one RGBA image out of channels taken from several
// source images.
//
// A Job lists source mappings in order. Each mapping names a source image and
// a list of channel rules; a rule copies one channel of the source, optionally
// inverted, into one channel of the output. The output is as large as the
// largest source along each axis and starts as opaque black. Sources smaller
// than the output are stretched with nearest (floor) sampling. Rules are
// applied one after another, so a later rule that writes the same output
// channel replaces what an earlier one wrote.
//
//	job := texremap.Job{
//		Name: "mask",
//		Sources: []texremap.SourceMapping{
//			{Image: metal, Rules: []texremap.ChannelRule{{Input: texremap.Red, Output: texremap.Red}}},
//			{Image: rough, Rules: []texremap.ChannelRule{{Input: texremap.Red, Invert: true, Output: texremap.Alpha}}},
//		},
//	}
//	canvas, err := texremap.Remap(job)
package texremap

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Number of goroutines filling rows during a single rule pass.
	// Values <= 1 run every pass on the calling goroutine.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Remapper runs jobs. It holds no state between runs and is safe for
// concurrent use.
type Remapper struct {
	opt Options
}

func New(opt Options) *Remapper {
	return &Remapper{opt: opt}
}

// Remap runs job with DefaultOptions.
func Remap(job Job) (*Canvas, error) {
	return New(DefaultOptions()).Run(job)
}

func (r *Remapper) Run(job Job) (*Canvas, error) {
	return r.RunContext(context.Background(), job)
}

// RunContext validates job and renders it. Either the whole canvas is
// returned or an error and no canvas. ctx is checked between rows; a
// cancelled run returns ctx.Err().
func (r *Remapper) RunContext(ctx context.Context, job Job) (*Canvas, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	w, h, err := OutputSize(job)
	if err != nil {
		return nil, err
	}

	samplers := make([]*sampler, len(job.Sources))
	for i, m := range job.Sources {
		if !m.present() {
			continue
		}
		if samplers[i], err = newSampler(m.Image, w, h); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}

	canvas := NewCanvas(w, h)
	for i, m := range job.Sources {
		if samplers[i] == nil {
			continue
		}
		for _, rule := range m.Rules {
			if err := r.pass(ctx, canvas, samplers[i], rule); err != nil {
				return nil, err
			}
		}
	}
	return canvas, nil
}

// pass applies a single rule to every pixel of the canvas. Rows are
// independent, so they are split into contiguous bands filled concurrently.
func (r *Remapper) pass(ctx context.Context, c *Canvas, s *sampler, rule ChannelRule) error {
	workers := min(r.opt.Workers, c.h)
	if workers <= 1 {
		return fillRows(ctx, c, s, rule, 0, c.h)
	}

	band := (c.h + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < c.h; y0 += band {
		y0 := y0
		y1 := min(y0+band, c.h)
		g.Go(func() error {
			return fillRows(gctx, c, s, rule, y0, y1)
		})
	}
	return g.Wait()
}

func fillRows(ctx context.Context, c *Canvas, s *sampler, rule ChannelRule, y0, y1 int) error {
	for y := y0; y < y1; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := c.row(rule.Output, y)
		for x := range dst {
			dst[x] = rule.apply(s.at(x, y))
		}
	}
	return nil
}

// OutputSize returns the canvas size for job: the largest width and the
// largest height over all mappings that carry an image.
func OutputSize(job Job) (w, h int, err error) {
	if _, ok := job.first(); !ok {
		return 0, 0, ErrNoValidSource
	}
	for i, m := range job.Sources {
		if !m.present() {
			continue
		}
		b := m.Image.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			return 0, 0, fmt.Errorf("source %d: %w", i, ErrEmptySource)
		}
		w = max(w, b.Dx())
		h = max(h, b.Dy())
	}
	return w, h, nil
}
