package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 12), 90, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"png", FormatPNG, false},
		{"JPG", FormatJPEG, false},
		{" jpeg ", FormatJPEG, false},
		{"pdf", FormatPDF, false},
		{"gif", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if tc.err {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("%q: expected ErrUnknownFormat, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("%q: got %q, %v", tc.in, got, err)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("out/shot.PDF", FormatPNG); got != FormatPDF {
		t.Fatalf("got %q", got)
	}
	if got := FormatForPath("noext", FormatJPEG); got != FormatJPEG {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeRoundTripsDimensions(t *testing.T) {
	img := sample()
	var buf bytes.Buffer
	if err := Encode(&buf, img, FormatPNG, Options{}); err != nil {
		t.Fatalf("png: %v", err)
	}
	got, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("png bounds %v", got.Bounds())
	}

	buf.Reset()
	if err := Encode(&buf, img, FormatJPEG, Options{JPEGQuality: 500}); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Fatalf("jpeg size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestPDFHasSinglePage(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, sample()); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("missing header: %q", out[:min(len(out), 16)])
	}
	if !strings.Contains(out, "/Type /Page") {
		t.Fatal("no page object")
	}
	if err := PDF(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestDataURL(t *testing.T) {
	url, err := DataURL(sample())
	if err != nil {
		t.Fatalf("data url: %v", err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("prefix: %q", url[:min(len(url), 32)])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("payload is not png: %v", err)
	}
}

func TestWriteFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	if err := WriteFile(path, sample(), FormatPNG, Options{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("stat: %v", err)
	}
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		existing []byte
	}{
		{"new file", nil},
		{"existing file", []byte("previous export")},
	}
	for _, tc := range tests {
		path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "-")+".out")
		if tc.existing != nil {
			if err := os.WriteFile(path, tc.existing, 0o644); err != nil {
				t.Fatal(err)
			}
		}
		err := WriteFile(path, sample(), Format("gif"), Options{})
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("%s: err = %v", tc.name, err)
		}
		data, err := os.ReadFile(path)
		switch {
		case tc.existing == nil && !os.IsNotExist(err):
			t.Errorf("%s: partial output left behind: %v", tc.name, err)
		case tc.existing != nil && string(data) != string(tc.existing):
			t.Errorf("%s: existing output changed to %q", tc.name, data)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}
