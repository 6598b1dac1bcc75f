package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/example/inkboard/internal/scene"
)

// strokeMask rasterises st into a w by h coverage mask. The mask is nil when
// the stroke covers nothing.
func strokeMask(st scene.Stroke, w, h int, tension float64) (image.Image, error) {
	if len(st.Points) == 0 || st.Width <= 0 {
		return nil, nil
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.SetRasterizerMode(gg.RasterizerAnalytic)
	dc.SetColor(color.White)

	if len(st.Points) == 1 {
		p := st.Points[0]
		dc.DrawCircle(p.X, p.Y, st.Width/2)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
		return dc.Image(), nil
	}

	dc.SetStroke(gg.DefaultStroke().WithWidth(st.Width).WithCap(gg.LineCapRound).WithJoin(gg.LineJoinRound))
	tracePath(dc, st.Points, tension)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// tracePath adds pts to the current path. A positive tension smooths the
// polyline into a cardinal spline through every point.
func tracePath(dc *gg.Context, pts []scene.Point, tension float64) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	if tension <= 0 || len(pts) < 3 {
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		return
	}
	k := tension / 3
	last := len(pts) - 1
	for i := 0; i < last; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, last)]
		c1 := scene.Pt(p1.X+(p2.X-p0.X)*k, p1.Y+(p2.Y-p0.Y)*k)
		c2 := scene.Pt(p2.X-(p3.X-p1.X)*k, p2.Y-(p3.Y-p1.Y)*k)
		dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p2.X, p2.Y)
	}
}

// paintInk draws strokes in order onto a transparent ink layer the size of
// bounds. Brush strokes paint over earlier ink; eraser strokes clear it.
func paintInk(bounds image.Rectangle, strokes []scene.Stroke, tension float64) *image.RGBA {
	ink := image.NewRGBA(bounds)
	w, h := bounds.Dx(), bounds.Dy()
	for _, st := range strokes {
		mask, err := strokeMask(st, w, h, tension)
		if err != nil {
			logger().Warn("rasterise stroke", "id", st.ID, "err", err)
			continue
		}
		if mask == nil {
			continue
		}
		if st.Tool == scene.ToolEraser {
			draw.DrawMask(ink, bounds, image.Transparent, image.Point{}, mask, mask.Bounds().Min, draw.Src)
			continue
		}
		draw.DrawMask(ink, bounds, image.NewUniform(st.Color), image.Point{}, mask, mask.Bounds().Min, draw.Over)
	}
	return ink
}
