package transform

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"stylizer/internal/domain"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(40 * y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestTransformProducesPNG(t *testing.T) {
	s := NewStylizer()
	artifact, err := s.Transform(context.Background(), domain.StylizeParams{
		ProfileID:     "noir",
		GuidanceScale: 2.5,
		Seed:          42,
		Image:         encodePNG(t, 6, 4),
	})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if artifact.MIME != "image/png" {
		t.Fatalf("MIME = %q", artifact.MIME)
	}
	out, err := png.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Fatalf("output size %dx%d, want source size 6x4", b.Dx(), b.Dy())
	}
}

func TestTransformResizesToRequestedDimensions(t *testing.T) {
	s := NewStylizer()
	artifact, err := s.Transform(context.Background(), domain.StylizeParams{
		Width:  3,
		Height: 5,
		Seed:   1,
		Image:  encodePNG(t, 8, 8),
	})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	out, err := png.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 3 || b.Dy() != 5 {
		t.Fatalf("output size %dx%d, want 3x5", b.Dx(), b.Dy())
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	s := NewStylizer()
	params := domain.StylizeParams{ProfileID: "sepia", Prompt: "warm dusk", Seed: 7, Image: encodePNG(t, 4, 4)}

	a, err := s.Transform(context.Background(), params)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := s.Transform(context.Background(), params)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !bytes.Equal(a.Data, b.Data) {
		t.Fatal("same params produced different artifacts")
	}

	params.Seed = 8
	c, err := s.Transform(context.Background(), params)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if bytes.Equal(a.Data, c.Data) {
		t.Fatal("different seeds produced identical artifacts")
	}
}

func TestTransformHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStylizer().Transform(ctx, domain.StylizeParams{Seed: 1, Image: encodePNG(t, 4, 4)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestTransformRejectsCorruptImage(t *testing.T) {
	_, err := NewStylizer().Transform(context.Background(), domain.StylizeParams{Image: []byte("not an image")})
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("got %v, want ErrInvalidImage", err)
	}
}

func TestDecodeCheck(t *testing.T) {
	if err := DecodeCheck(encodePNG(t, 2, 2)); err != nil {
		t.Fatalf("valid image rejected: %v", err)
	}
	if err := DecodeCheck([]byte("garbage")); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("got %v, want ErrInvalidImage", err)
	}
}
