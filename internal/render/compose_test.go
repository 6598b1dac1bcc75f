package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/inkboard/internal/geometry"
	"github.com/example/inkboard/internal/scene"
)

var (
	navy = color.RGBA{0, 0, 128, 255}
	red  = color.RGBA{255, 0, 0, 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { return abs(int(x)-int(y)) <= tol }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func viewport(t *testing.T, bg image.Image, w int) geometry.Viewport {
	t.Helper()
	vp, err := geometry.FitImage(bg, w)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	return vp
}

func TestComposeEmptySceneIsScaledBackground(t *testing.T) {
	bg := solid(200, 100, navy)
	vp := viewport(t, bg, 100)
	out := Compose(bg, scene.Scene{}, vp, DefaultOptions())
	if got := out.Bounds(); got != image.Rect(0, 0, 100, 50) {
		t.Fatalf("bounds %v", got)
	}
	for _, p := range []image.Point{{0, 0}, {50, 25}, {99, 49}} {
		if got := out.RGBAAt(p.X, p.Y); !near(got, navy, 2) {
			t.Fatalf("pixel %v = %+v want %+v", p, got, navy)
		}
	}
}

func TestComposeBrushAndEraser(t *testing.T) {
	bg := solid(100, 60, navy)
	vp := viewport(t, bg, 100)

	var sc scene.Scene
	pen := sc.BeginStroke(scene.ToolBrush, red, 10, scene.Pt(10, 30))
	pen.Append(scene.Pt(50, 30))
	pen.Append(scene.Pt(90, 30))
	pen.Close()

	out := Compose(bg, sc, vp, DefaultOptions())
	if got := out.RGBAAt(30, 30); !near(got, red, 8) {
		t.Fatalf("brush pixel = %+v", got)
	}
	if got := out.RGBAAt(30, 5); !near(got, navy, 2) {
		t.Fatalf("pixel away from the stroke = %+v", got)
	}

	eraser := sc.BeginStroke(scene.ToolEraser, red, 20, scene.Pt(20, 30))
	eraser.Append(scene.Pt(40, 30))
	eraser.Close()

	out = Compose(bg, sc, vp, DefaultOptions())
	if got := out.RGBAAt(30, 30); !near(got, navy, 8) {
		t.Fatalf("erased pixel should show the background, got %+v", got)
	}
	if got := out.RGBAAt(70, 30); !near(got, red, 8) {
		t.Fatalf("ink outside the eraser was removed: %+v", got)
	}
}

func TestComposeSinglePointIsDot(t *testing.T) {
	bg := solid(40, 40, navy)
	vp := viewport(t, bg, 40)
	var sc scene.Scene
	sc.BeginStroke(scene.ToolBrush, red, 12, scene.Pt(20, 20)).Close()
	out := Compose(bg, sc, vp, DefaultOptions())
	if got := out.RGBAAt(20, 20); !near(got, red, 8) {
		t.Fatalf("dot centre = %+v", got)
	}
	if got := out.RGBAAt(20, 35); !near(got, navy, 2) {
		t.Fatalf("dot too large: %+v", got)
	}
}

func TestComposeTextOnTop(t *testing.T) {
	bg := solid(200, 60, navy)
	vp := viewport(t, bg, 200)
	var sc scene.Scene
	sc.AddText(scene.Pt(5, 5), "New Text", color.RGBA{255, 255, 255, 255}, 20)

	shadow := DefaultShadowOptions()
	for _, opts := range []Options{DefaultOptions(), {Tension: DefaultTension, TextShadow: &shadow}} {
		out := Compose(bg, sc, vp, opts)
		w, h, _, err := MeasureText("New Text", 20)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		changed := false
		for y := 5; y < 5+h && !changed; y++ {
			for x := 5; x < 5+w; x++ {
				if !near(out.RGBAAt(x, y), navy, 2) {
					changed = true
					break
				}
			}
		}
		if !changed {
			t.Fatalf("text left the background untouched (shadow=%v)", opts.TextShadow != nil)
		}
		if got := out.RGBAAt(190, 55); !near(got, navy, 2) {
			t.Fatalf("pixel outside text changed: %+v", got)
		}
	}
}

func TestComposeNilBackground(t *testing.T) {
	out := Compose(nil, scene.Scene{}, geometry.Viewport{Width: 8, Height: 4, Scale: 1}, DefaultOptions())
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 4 {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if out.RGBAAt(3, 3).A != 0 {
		t.Fatal("nil background should stay transparent")
	}
}

func TestMetricsGrowWithFontSize(t *testing.T) {
	var m Metrics
	w1, h1 := m.TextSize("Hello", 12)
	w2, h2 := m.TextSize("Hello", 24)
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("non-positive size %vx%v", w1, h1)
	}
	if w2 <= w1 || h2 <= h1 {
		t.Fatalf("larger font not larger: %vx%v vs %vx%v", w1, h1, w2, h2)
	}
}
