package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ShadowOptions configures the drop shadow cast by annotation text.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns a small, soft shadow that keeps light text
// readable on bright backgrounds.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  2,
		Offset:  image.Pt(1, 2),
		Opacity: 0.6,
	}
}

// ApplyShadow returns a copy of layer with a blurred shadow of its opaque
// pixels composited beneath them. The result keeps the bounds of layer;
// shadow falling outside them is clipped.
func ApplyShadow(layer *image.RGBA, opts ShadowOptions) *image.RGBA {
	if layer == nil {
		return nil
	}
	b := layer.Bounds()
	out := image.NewRGBA(b)
	if b.Empty() {
		return out
	}
	opacity := min(opts.Opacity, 1)
	if opacity <= 0 {
		draw.Draw(out, b, layer, b.Min, draw.Src)
		return out
	}

	mask := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if a := layer.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x, y, color.Gray{Y: a})
			}
		}
	}
	blurred := boxBlur(mask, max(opts.Radius, 0))

	shade := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	r := b.Add(opts.Offset).Intersect(b)
	if !r.Empty() {
		draw.DrawMask(out, r, shade, image.Point{}, blurred, r.Min.Sub(opts.Offset), draw.Over)
	}
	draw.Draw(out, b, layer, b.Min, draw.Over)
	return out
}

// boxBlur runs a horizontal then a vertical running-mean pass.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	copy(out.Pix, src.Pix)
	if radius == 0 {
		return out
	}
	w, h := b.Dx(), b.Dy()
	line := make([]uint8, max(w, h))
	sums := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			line[x] = out.Pix[y*out.Stride+x]
		}
		blurLine(line[:w], sums, radius)
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = line[x]
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			line[y] = out.Pix[y*out.Stride+x]
		}
		blurLine(line[:h], sums, radius)
		for y := 0; y < h; y++ {
			out.Pix[y*out.Stride+x] = line[y]
		}
	}
	return out
}

func blurLine(v []uint8, sums []int, radius int) {
	n := len(v)
	sums[0] = 0
	for i, p := range v {
		sums[i+1] = sums[i] + int(p)
	}
	for i := range v {
		lo := max(i-radius, 0)
		hi := min(i+radius, n-1)
		v[i] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
	}
}
