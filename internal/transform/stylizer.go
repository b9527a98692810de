package transform

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp" // webp uploads are allowed alongside png/jpeg

	"stylizer/internal/domain"
)

// Stylizer is the built-in Transformer. It re-renders the source image with a
// deterministic tone mapping derived from the selected style profile and
// seed. It stands in for an external diffusion pipeline and keeps the whole
// submit/poll/result path exercisable without one.
type Stylizer struct{}

// NewStylizer returns a ready-to-use Stylizer.
func NewStylizer() *Stylizer {
	return &Stylizer{}
}

// Transform decodes the source image, applies the profile tone mapping pass
// by pass, and returns the result encoded as PNG. Cancellation is checked
// between rows so a deadline can interrupt mid-render.
func (s *Stylizer) Transform(ctx context.Context, params domain.StylizeParams) (Artifact, error) {
	src, _, err := image.Decode(bytes.NewReader(params.Image))
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	width, height := params.Width, params.Height
	if width <= 0 || height <= 0 {
		b := src.Bounds()
		width, height = b.Dx(), b.Dy()
	}

	tone := toneFor(params)
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	srcBounds := src.Bounds()
	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		srcY := srcBounds.Min.Y + y*srcBounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := srcBounds.Min.X + x*srcBounds.Dx()/width
			out.Set(x, y, tone.apply(src.At(srcX, srcY)))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return Artifact{}, fmt.Errorf("encode result: %w", err)
	}
	return Artifact{Data: buf.Bytes(), MIME: "image/png"}, nil
}

// toneMap is a per-channel affine transform blended with the source pixel.
type toneMap struct {
	r, g, b  float64
	strength float64
}

// toneFor derives a stable tone from the profile, prompt, and seed, scaled by
// the guidance setting. The same inputs always yield the same output.
func toneFor(params domain.StylizeParams) toneMap {
	h := fnv.New64a()
	h.Write([]byte(params.ProfileID))
	h.Write([]byte(params.Prompt))
	var seed [8]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(uint64(params.Seed) >> (8 * i))
	}
	h.Write(seed[:])
	sum := h.Sum64()

	strength := params.GuidanceScale / 10
	if strength <= 0 {
		strength = 0.25
	}
	if strength > 1 {
		strength = 1
	}
	return toneMap{
		r:        0.6 + float64(sum&0xff)/640,
		g:        0.6 + float64((sum>>8)&0xff)/640,
		b:        0.6 + float64((sum>>16)&0xff)/640,
		strength: strength,
	}
}

func (t toneMap) apply(c color.Color) color.Color {
	r, g, b, a := c.RGBA()
	luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	blend := func(orig float64, factor float64) uint16 {
		styled := luma * factor
		v := orig*(1-t.strength) + styled*t.strength
		return uint16(math.Min(v, 0xffff))
	}
	return color.RGBA64{
		R: blend(float64(r), t.r),
		G: blend(float64(g), t.g),
		B: blend(float64(b), t.b),
		A: uint16(a),
	}
}

// DecodeCheck verifies that data holds a decodable image, without rendering
// anything. The API layer uses it to reject corrupt uploads at submit time.
func DecodeCheck(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	return nil
}
