package render

import (
	"image"
	"image/color"
	"testing"
)

func TestApplyShadowKeepsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 1, Offset: image.Pt(4, 3), Opacity: 1}
	out := ApplyShadow(img, opts)
	if !out.Bounds().Eq(img.Bounds()) {
		t.Fatalf("bounds changed: %v vs %v", out.Bounds(), img.Bounds())
	}
	if got := out.RGBAAt(5, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("subject pixel altered: %+v", got)
	}
	if out.RGBAAt(9, 8).A == 0 {
		t.Fatal("expected shadow alpha at the offset pixel")
	}
	if out.RGBAAt(10, 8).A == 0 {
		t.Fatal("expected blur to reach a neighbour of the offset pixel")
	}
	if out.RGBAAt(0, 19).A != 0 {
		t.Fatal("shadow leaked far from the subject")
	}
}

func TestApplyShadowNoShadowWhenOpacityZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	out := ApplyShadow(img, ShadowOptions{Radius: 3, Offset: image.Pt(2, 1), Opacity: 0})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := out.RGBAAt(x, y); got != fill {
				t.Fatalf("pixel mismatch at (%d,%d): got %+v want %+v", x, y, got, fill)
			}
		}
	}
	out.Set(0, 0, color.RGBA{})
	if img.RGBAAt(0, 0) != fill {
		t.Fatal("result shares pixels with the input")
	}
}

func TestApplyShadowOffsetOutsideBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	out := ApplyShadow(img, ShadowOptions{Radius: 0, Offset: image.Pt(10, 10), Opacity: 1})
	if out.RGBAAt(1, 1).G != 255 {
		t.Fatal("subject lost when the shadow is clipped away")
	}
	if ApplyShadow(nil, DefaultShadowOptions()) != nil {
		t.Fatal("nil layer produced an image")
	}
}

func TestBlurLineAverages(t *testing.T) {
	v := []uint8{0, 0, 90, 0, 0}
	blurLine(v, make([]int, len(v)+1), 1)
	want := []uint8{0, 30, 30, 30, 0}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("blurLine = %v want %v", v, want)
		}
	}
}
