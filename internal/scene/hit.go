package scene

import "math"

// Measurer reports the rendered size of text at a font size.
type Measurer interface {
	TextSize(content string, fontSize float64) (width, height float64)
}

// TextAt returns the topmost text whose rendered box contains p.
func (s Scene) TextAt(p Point, m Measurer) (TextAnnotation, bool) {
	for i := len(s.Texts) - 1; i >= 0; i-- {
		t := s.Texts[i]
		w, h := m.TextSize(t.Content, t.FontSize)
		if p.X >= t.Position.X && p.X <= t.Position.X+w && p.Y >= t.Position.Y && p.Y <= t.Position.Y+h {
			return t, true
		}
	}
	return TextAnnotation{}, false
}

// StrokeAt returns the topmost brush stroke passing within half its width
// plus slop of p. Eraser strokes are never hit.
func (s Scene) StrokeAt(p Point, slop float64) (Stroke, bool) {
	for i := len(s.Strokes) - 1; i >= 0; i-- {
		st := s.Strokes[i]
		if st.Tool == ToolEraser || len(st.Points) == 0 {
			continue
		}
		reach := st.Width/2 + slop
		if len(st.Points) == 1 {
			if dist(p, st.Points[0]) <= reach {
				return st, true
			}
			continue
		}
		for j := 1; j < len(st.Points); j++ {
			if segmentDist(p, st.Points[j-1], st.Points[j]) <= reach {
				return st, true
			}
		}
	}
	return Stroke{}, false
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func segmentDist(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return dist(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
