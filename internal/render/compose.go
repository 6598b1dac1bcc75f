// Package render flattens a scene over its background image.
package render

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/example/inkboard/internal/geometry"
	"github.com/example/inkboard/internal/scene"
)

// DefaultTension is the stroke smoothing used by the editor.
const DefaultTension = 0.5

// Options tune how a scene is drawn.
type Options struct {
	// Tension smooths strokes through their points; 0 draws straight
	// segments.
	Tension float64
	// TextShadow, when set, casts a shadow beneath every text.
	TextShadow *ShadowOptions
}

// DefaultOptions returns the options used for on-screen and exported
// images.
func DefaultOptions() Options {
	return Options{Tension: DefaultTension}
}

// Compose draws bg scaled to the viewport, then the stroke ink, then texts.
// A nil bg leaves the base transparent.
func Compose(bg image.Image, sc scene.Scene, vp geometry.Viewport, opts Options) *image.RGBA {
	out := ScaleBackground(bg, vp)
	Overlay(out, sc, opts)
	return out
}

// ScaleBackground resamples bg into a fresh image the size of vp.
func ScaleBackground(bg image.Image, vp geometry.Viewport) *image.RGBA {
	out := image.NewRGBA(vp.Rect())
	if bg != nil && !out.Bounds().Empty() {
		draw.CatmullRom.Scale(out, out.Bounds(), bg, bg.Bounds(), draw.Src, nil)
	}
	return out
}

// Overlay draws the scene onto dst, which already holds the background.
func Overlay(dst *image.RGBA, sc scene.Scene, opts Options) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	if len(sc.Strokes) > 0 {
		ink := paintInk(b, sc.Strokes, opts.Tension)
		draw.Draw(dst, b, ink, b.Min, draw.Over)
	}
	if len(sc.Texts) == 0 {
		return
	}
	target := dst
	if opts.TextShadow != nil {
		target = image.NewRGBA(b)
	}
	for _, t := range sc.Texts {
		if err := DrawText(target, t.Position.X, t.Position.Y, t.Content, t.Color, t.FontSize); err != nil {
			logger().Warn("draw text", "id", t.ID, "err", err)
		}
	}
	if opts.TextShadow != nil {
		draw.Draw(dst, b, ApplyShadow(target, *opts.TextShadow), b.Min, draw.Over)
	}
}
