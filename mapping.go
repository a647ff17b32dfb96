package texremap

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrNoValidSource is returned when a job has no mapping with an image.
	ErrNoValidSource = errors.New("no source mapping with an image")
	// ErrEmptySource is returned when a source image has zero width or height.
	ErrEmptySource = errors.New("source image has zero width or height")
	// ErrInvalidChannel is returned for channel ordinals outside R, G, B, A.
	ErrInvalidChannel = errors.New("invalid channel")

	ErrEmptyName    = errors.New("output name is empty")
	ErrMissingImage = errors.New("source mapping has no image")
	ErrNoRules      = errors.New("source mapping has no channel rules")
)

// ChannelRule copies one channel of a source into one channel of the output,
// optionally inverted (1 - v).
type ChannelRule struct {
	Input  Channel `json:"from"`
	Invert bool    `json:"invert,omitempty"`
	Output Channel `json:"to"`
}

// DefaultRule is the mapping given to a freshly added source.
var DefaultRule = ChannelRule{Input: Red, Output: Red}

func (r ChannelRule) Validate() error {
	if !r.Input.Valid() {
		return fmt.Errorf("input %w: %d", ErrInvalidChannel, r.Input)
	}
	if !r.Output.Valid() {
		return fmt.Errorf("output %w: %d", ErrInvalidChannel, r.Output)
	}
	return nil
}

// apply maps a sampled color to the scalar written into r.Output.
func (r ChannelRule) apply(c Color) float64 {
	v := c.Channel(r.Input)
	if r.Invert {
		v = 1 - v
	}
	return v
}

// String formats the rule as "[!]IN>OUT", e.g. "R>G" or "!A>B".
func (r ChannelRule) String() string {
	var sb strings.Builder
	if r.Invert {
		sb.WriteByte('!')
	}
	sb.WriteString(r.Input.String())
	sb.WriteByte('>')
	sb.WriteString(r.Output.String())
	return sb.String()
}

// ParseRule parses the "[!]IN>OUT" form produced by ChannelRule.String.
// Channels may be given in any form accepted by ParseChannel.
func ParseRule(s string) (ChannelRule, error) {
	var r ChannelRule
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		r.Invert = true
		s = rest
	}
	in, out, ok := strings.Cut(s, ">")
	if !ok {
		return ChannelRule{}, fmt.Errorf("rule %q: missing '>'", s)
	}
	var err error
	if r.Input, err = ParseChannel(in); err != nil {
		return ChannelRule{}, fmt.Errorf("rule %q: %w", s, err)
	}
	if r.Output, err = ParseChannel(out); err != nil {
		return ChannelRule{}, fmt.Errorf("rule %q: %w", s, err)
	}
	return r, nil
}

// ParseRules parses a comma separated list of rules.
func ParseRules(s string) ([]ChannelRule, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	rules := make([]ChannelRule, 0, len(parts))
	for _, p := range parts {
		r, err := ParseRule(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// SourceMapping pairs a source image with the rules applied from it, in order.
// A mapping without an image is skipped by the remapper. A typed nil of a
// standard image type is treated as no image; for other image types a nil
// pointer is the caller's responsibility.
type SourceMapping struct {
	Image image.Image
	Rules []ChannelRule
}

// NewSourceMapping returns a mapping for img seeded with DefaultRule.
func NewSourceMapping(img image.Image) SourceMapping {
	return SourceMapping{
		Image: img,
		Rules: []ChannelRule{DefaultRule},
	}
}

// present reports whether m carries an image. Typed nil pointers of the
// standard image types count as absent.
func (m SourceMapping) present() bool {
	switch img := m.Image.(type) {
	case nil:
		return false
	case *image.NRGBA:
		return img != nil
	case *image.NRGBA64:
		return img != nil
	case *image.RGBA:
		return img != nil
	case *image.RGBA64:
		return img != nil
	case *image.Gray:
		return img != nil
	case *image.Gray16:
		return img != nil
	case *image.Alpha:
		return img != nil
	case *image.Alpha16:
		return img != nil
	case *image.CMYK:
		return img != nil
	case *image.Paletted:
		return img != nil
	case *image.YCbCr:
		return img != nil
	case *image.NYCbCrA:
		return img != nil
	case *image.Uniform:
		return img != nil
	}
	return true
}

// Job is one remap request: an ordered list of source mappings and the name
// of the image it produces.
type Job struct {
	Name    string
	Sources []SourceMapping
}

// NewJob builds a job with one default mapping per image.
func NewJob(name string, images ...image.Image) Job {
	j := Job{Name: name, Sources: make([]SourceMapping, 0, len(images))}
	for _, img := range images {
		j.Sources = append(j.Sources, NewSourceMapping(img))
	}
	return j
}

// Validate checks every rule for valid channels and requires at least one
// mapping with an image. Mappings without an image or without rules are
// allowed; they contribute nothing.
func (j Job) Validate() error {
	for i, m := range j.Sources {
		for k, r := range m.Rules {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("source %d rule %d: %w", i, k, err)
			}
		}
	}
	if _, ok := j.first(); !ok {
		return ErrNoValidSource
	}
	return nil
}

// Ready is the stricter check run before a job is accepted from a user: a
// name is required and every mapping must carry an image and at least one
// rule.
func (j Job) Ready() error {
	if strings.TrimSpace(j.Name) == "" {
		return ErrEmptyName
	}
	if len(j.Sources) == 0 {
		return ErrNoValidSource
	}
	for i, m := range j.Sources {
		if !m.present() {
			return fmt.Errorf("source %d: %w", i, ErrMissingImage)
		}
		if len(m.Rules) == 0 {
			return fmt.Errorf("source %d: %w", i, ErrNoRules)
		}
	}
	return j.Validate()
}

// first returns the index of the first mapping with an image.
func (j Job) first() (int, bool) {
	for i, m := range j.Sources {
		if m.present() {
			return i, true
		}
	}
	return -1, false
}
