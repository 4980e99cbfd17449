package models

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func makePNG(t *testing.T, width int, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageNormaliserResizes(t *testing.T) {
	n := ImageNormaliser{MaxWidth: 100, MaxHeight: 100}
	if !n.Enabled() {
		t.Fatal("Enabled() should be true with bounds set")
	}

	out, mimeType := n.Normalise(makePNG(t, 300, 200), "application/octet-stream")
	if mimeType != ImagePngMimeType {
		t.Errorf("mime type = %q should be %q", mimeType, ImagePngMimeType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("normalised image does not decode: %+v", err)
	}
	if format != "png" {
		t.Errorf("format = %q should be png", format)
	}
	if cfg.Width != 100 || cfg.Height > 100 || cfg.Height < 60 {
		t.Errorf("normalised size = %dx%d should be 100x~67", cfg.Width, cfg.Height)
	}

	// Portrait images are bounded by height
	out, _ = n.Normalise(makePNG(t, 100, 400), ImagePngMimeType)
	cfg, _, err = image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != 100 || cfg.Width > 100 {
		t.Errorf("normalised size = %dx%d should be ~25x100", cfg.Width, cfg.Height)
	}
}

func TestImageNormaliserLeavesSmallImages(t *testing.T) {
	n := ImageNormaliser{MaxWidth: 100, MaxHeight: 100}
	in := makePNG(t, 80, 80)

	out, mimeType := n.Normalise(in, "")
	if !bytes.Equal(in, out) {
		t.Error("an image within bounds should not be re-encoded")
	}
	if mimeType != ImagePngMimeType {
		t.Errorf("mime type = %q should be detected as %q", mimeType, ImagePngMimeType)
	}
}

func TestImageNormaliserLeavesNonImages(t *testing.T) {
	n := ImageNormaliser{MaxWidth: 10}
	in := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)

	out, mimeType := n.Normalise(in, "image/svg+xml")
	if !bytes.Equal(in, out) || mimeType != "image/svg+xml" {
		t.Errorf("Normalise(svg) = %q, %q should be unchanged", out, mimeType)
	}

	if (ImageNormaliser{}).Enabled() {
		t.Error("a zero normaliser should be disabled")
	}
}

func TestImageNormaliserFit(t *testing.T) {
	n := ImageNormaliser{MaxWidth: 100, MaxHeight: 50}
	message := "fit(%d, %d) = %d, %d should be %d, %d"

	cases := []struct {
		width, height, w, h int
	}{
		{80, 40, 0, 0},
		{300, 40, 100, 0},
		{80, 200, 0, 50},
		{300, 290, 0, 50},
		{400, 100, 100, 0},
	}

	for _, c := range cases {
		w, h := n.fit(c.width, c.height)
		if w != c.w || h != c.h {
			t.Errorf(message, c.width, c.height, w, h, c.w, c.h)
		}
	}
}
