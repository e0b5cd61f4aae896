package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageProcessorPrepare(t *testing.T) {
	p := NewImageProcessor(64)

	t.Run("small png passes through", func(t *testing.T) {
		data := pngBytes(t, 32, 16)
		img, err := p.Prepare(data)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if img.Ext != ".png" || img.ContentType != "image/png" {
			t.Errorf("got ext %q type %q", img.Ext, img.ContentType)
		}
		if !bytes.Equal(img.Data, data) {
			t.Error("small image should be stored unchanged")
		}
	})

	t.Run("large png is downscaled", func(t *testing.T) {
		img, err := p.Prepare(pngBytes(t, 256, 128))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if img.Width != 64 || img.Height != 32 {
			t.Errorf("got %dx%d; want 64x32", img.Width, img.Height)
		}
	})

	t.Run("text is rejected", func(t *testing.T) {
		_, err := p.Prepare([]byte("definitely not an image"))
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("err = %v; want ErrNotImage", err)
		}
	})

	t.Run("truncated png is rejected", func(t *testing.T) {
		data := pngBytes(t, 32, 32)
		_, err := p.Prepare(data[:40])
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("err = %v; want ErrNotImage", err)
		}
	})

	t.Run("over the size limit", func(t *testing.T) {
		small := &ImageProcessor{MaxBytes: 10}
		_, err := small.Prepare(pngBytes(t, 8, 8))
		if !errors.Is(err, ErrImageTooLarge) {
			t.Errorf("err = %v; want ErrImageTooLarge", err)
		}
	})
}
