package geometry

import (
	"errors"
	"image"
	"testing"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name           string
		w, h, viewport int
		want           Viewport
	}{
		{"downscale", 1600, 900, 800, Viewport{Width: 800, Height: 450, Scale: 0.5}},
		{"upscale", 400, 300, 800, Viewport{Width: 800, Height: 600, Scale: 2}},
		{"identity", 640, 480, 640, Viewport{Width: 640, Height: 480, Scale: 1}},
		{"rounds height", 3, 2, 4, Viewport{Width: 4, Height: 3, Scale: 4.0 / 3.0}},
	}
	for _, tc := range tests {
		got, err := Fit(tc.w, tc.h, tc.viewport)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %+v want %+v", tc.name, got, tc.want)
		}
	}
}

func TestFitNotReady(t *testing.T) {
	for _, dims := range [][3]int{{0, 10, 10}, {10, 0, 10}, {10, 10, 0}, {-1, 10, 10}} {
		if _, err := Fit(dims[0], dims[1], dims[2]); !errors.Is(err, ErrNotReady) {
			t.Errorf("Fit%v: expected ErrNotReady, got %v", dims, err)
		}
	}
	if _, err := FitImage(nil, 100); !errors.Is(err, ErrNotReady) {
		t.Errorf("FitImage(nil): expected ErrNotReady, got %v", err)
	}
}

func TestFitImageAndHelpers(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 210, 110))
	vp, err := FitImage(img, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !vp.Rect().Eq(image.Rect(0, 0, 100, 50)) || !vp.Ready() {
		t.Fatalf("unexpected viewport %+v", vp)
	}
	x, y := vp.ToNatural(50, 25)
	if x != 100 || y != 50 {
		t.Fatalf("ToNatural = %v,%v", x, y)
	}
	if (Viewport{}).Ready() {
		t.Fatal("zero viewport reported ready")
	}
}
