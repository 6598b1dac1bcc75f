// Package geometry maps a background image into the available viewport.
//
// Annotation coordinates live in display space. A later resize does not
// renormalise existing annotations; callers keep the coordinates they have.
package geometry

import (
	"errors"
	"image"
	"math"
)

// ErrNotReady reports missing image or viewport dimensions.
var ErrNotReady = errors.New("geometry: image or viewport not ready")

// Viewport describes how the background is displayed.
type Viewport struct {
	// Width and Height are the display dimensions in pixels.
	Width  int
	Height int
	// Scale is display pixels per natural image pixel.
	Scale float64
}

// Fit scales an image of natural size naturalW x naturalH to fill
// viewportW, keeping the aspect ratio.
func Fit(naturalW, naturalH, viewportW int) (Viewport, error) {
	if naturalW <= 0 || naturalH <= 0 || viewportW <= 0 {
		return Viewport{}, ErrNotReady
	}
	scale := float64(viewportW) / float64(naturalW)
	h := int(math.Round(float64(naturalH) * scale))
	if h < 1 {
		h = 1
	}
	return Viewport{Width: viewportW, Height: h, Scale: scale}, nil
}

// FitImage is Fit for the bounds of img.
func FitImage(img image.Image, viewportW int) (Viewport, error) {
	if img == nil {
		return Viewport{}, ErrNotReady
	}
	b := img.Bounds()
	return Fit(b.Dx(), b.Dy(), viewportW)
}

// Rect returns the zero-origin display rectangle.
func (v Viewport) Rect() image.Rectangle { return image.Rect(0, 0, v.Width, v.Height) }

// Ready reports whether v has usable dimensions.
func (v Viewport) Ready() bool { return v.Width > 0 && v.Height > 0 }

// ToNatural converts a display-space coordinate to natural image pixels.
func (v Viewport) ToNatural(x, y float64) (float64, float64) {
	if v.Scale == 0 {
		return x, y
	}
	return x / v.Scale, y / v.Scale
}
