package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const defaultFontSize = 20

var (
	fontOnce  sync.Once
	textFont  *opentype.Font
	fontErr   error
	textFaces sync.Map // map[float64]font.Face
)

func parsedFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		textFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return textFont, fontErr
}

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 || math.IsNaN(size) {
		size = defaultFontSize
	}
	if face, ok := textFaces.Load(size); ok {
		return face.(font.Face), nil
	}
	f, err := parsedFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := textFaces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// MeasureText returns the bounding box of text rendered at size. baseline
// is the offset from the top of the box to the text baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return
}

// DrawText renders text with its top-left corner at (x, y).
func DrawText(dst draw.Image, x, y float64, text string, col color.Color, size float64) error {
	face, err := faceForSize(size)
	if err != nil {
		return err
	}
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y*64) + face.Metrics().Ascent},
	}
	drawer.DrawString(text)
	return nil
}

// Metrics measures text annotations for hit testing.
type Metrics struct{}

// TextSize implements scene.Measurer.
func (Metrics) TextSize(content string, fontSize float64) (float64, float64) {
	w, h, _, err := MeasureText(content, fontSize)
	if err != nil {
		logger().Warn("measure text", "err", err)
		return 0, 0
	}
	return float64(w), float64(h)
}
