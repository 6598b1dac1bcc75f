// Package scene holds the annotation model drawn over a background image:
// freehand strokes beneath positioned text labels.
package scene

import (
	"image/color"
	"slices"

	"github.com/google/uuid"
)

// Tool tags how a stroke composites onto the ink layer.
type Tool string

const (
	// ToolBrush paints the stroke colour over existing ink.
	ToolBrush Tool = "brush"
	// ToolEraser removes ink under the stroke (destination-out).
	ToolEraser Tool = "eraser"
)

// Point is a position in display space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Stroke is one continuous pointer-down-to-pointer-up drag.
type Stroke struct {
	ID     string     `json:"id"`
	Tool   Tool       `json:"tool"`
	Color  color.RGBA `json:"color"`
	Width  float64    `json:"width"`
	Points []Point    `json:"points"`
}

// TextAnnotation is a positioned, editable label. Position is the top-left
// corner of the rendered text.
type TextAnnotation struct {
	ID       string     `json:"id"`
	Position Point      `json:"position"`
	Content  string     `json:"content"`
	Color    color.RGBA `json:"color"`
	FontSize float64    `json:"font_size"`
}

// Scene is the full set of annotations at one moment. Strokes always render
// beneath texts; within each list insertion order is z-order.
type Scene struct {
	Strokes []Stroke         `json:"strokes"`
	Texts   []TextAnnotation `json:"texts"`
}

var newID = func(prefix string) string { return prefix + "-" + uuid.NewString() }

// SetIDGeneratorForTests swaps the element id generator and returns a
// function restoring the previous one.
func SetIDGeneratorForTests(fn func(prefix string) string) func() {
	prev := newID
	newID = fn
	return func() { newID = prev }
}

// Clone returns a deep copy sharing no memory with s.
func (s Scene) Clone() Scene {
	out := Scene{
		Strokes: make([]Stroke, len(s.Strokes)),
		Texts:   make([]TextAnnotation, len(s.Texts)),
	}
	for i, st := range s.Strokes {
		st.Points = slices.Clone(st.Points)
		if st.Points == nil {
			st.Points = []Point{}
		}
		out.Strokes[i] = st
	}
	copy(out.Texts, s.Texts)
	return out
}

// Equal reports whether a and b hold the same elements in the same order.
// Nil and empty collections compare equal.
func Equal(a, b Scene) bool {
	if len(a.Strokes) != len(b.Strokes) || len(a.Texts) != len(b.Texts) {
		return false
	}
	for i := range a.Strokes {
		x, y := a.Strokes[i], b.Strokes[i]
		if x.ID != y.ID || x.Tool != y.Tool || x.Color != y.Color || x.Width != y.Width {
			return false
		}
		if !slices.Equal(x.Points, y.Points) {
			return false
		}
	}
	return slices.Equal(a.Texts, b.Texts)
}

// Empty reports whether the scene has no elements.
func (s Scene) Empty() bool { return len(s.Strokes) == 0 && len(s.Texts) == 0 }

// BeginStroke appends a one-point stroke and returns the pen that owns it.
// Points can only be added to the stroke through that pen.
func (s *Scene) BeginStroke(tool Tool, col color.RGBA, width float64, p Point) *Pen {
	if tool != ToolEraser {
		tool = ToolBrush
	}
	id := newID("stroke")
	s.Strokes = append(s.Strokes, Stroke{
		ID:     id,
		Tool:   tool,
		Color:  col,
		Width:  width,
		Points: []Point{p},
	})
	return &Pen{scene: s, id: id}
}

// appendStrokePoint extends the most recent stroke only.
func (s *Scene) appendStrokePoint(id string, p Point) bool {
	n := len(s.Strokes)
	if n == 0 || s.Strokes[n-1].ID != id {
		return false
	}
	s.Strokes[n-1].Points = append(s.Strokes[n-1].Points, p)
	return true
}

// AddText appends a text annotation and returns its id.
func (s *Scene) AddText(p Point, content string, col color.RGBA, fontSize float64) string {
	id := newID("text")
	s.Texts = append(s.Texts, TextAnnotation{
		ID:       id,
		Position: p,
		Content:  content,
		Color:    col,
		FontSize: fontSize,
	})
	return id
}

// UpdateText replaces the content of the text with id. Unknown ids are
// ignored.
func (s *Scene) UpdateText(id, content string) bool {
	i := s.textIndex(id)
	if i < 0 {
		return false
	}
	s.Texts[i].Content = content
	return true
}

// MoveText repositions the text with id.
func (s *Scene) MoveText(id string, pos Point) bool {
	i := s.textIndex(id)
	if i < 0 {
		return false
	}
	s.Texts[i].Position = pos
	return true
}

// MoveStroke translates every point of the stroke with id by delta.
func (s *Scene) MoveStroke(id string, delta Point) bool {
	i := s.strokeIndex(id)
	if i < 0 {
		return false
	}
	moved := make([]Point, len(s.Strokes[i].Points))
	for j, p := range s.Strokes[i].Points {
		moved[j] = p.Add(delta)
	}
	s.Strokes[i].Points = moved
	return true
}

// RemoveText deletes the text with id.
func (s *Scene) RemoveText(id string) bool {
	i := s.textIndex(id)
	if i < 0 {
		return false
	}
	s.Texts = slices.Delete(slices.Clone(s.Texts), i, i+1)
	return true
}

// Clear empties both collections.
func (s *Scene) Clear() {
	s.Strokes = []Stroke{}
	s.Texts = []TextAnnotation{}
}

// Stroke returns a copy of the stroke with id.
func (s Scene) Stroke(id string) (Stroke, bool) {
	i := s.strokeIndex(id)
	if i < 0 {
		return Stroke{}, false
	}
	st := s.Strokes[i]
	st.Points = slices.Clone(st.Points)
	return st, true
}

// Text returns the text annotation with id.
func (s Scene) Text(id string) (TextAnnotation, bool) {
	i := s.textIndex(id)
	if i < 0 {
		return TextAnnotation{}, false
	}
	return s.Texts[i], true
}

func (s Scene) strokeIndex(id string) int {
	return slices.IndexFunc(s.Strokes, func(st Stroke) bool { return st.ID == id })
}

func (s Scene) textIndex(id string) int {
	return slices.IndexFunc(s.Texts, func(t TextAnnotation) bool { return t.ID == id })
}

// Pen is the handle for the single stroke currently being drawn.
type Pen struct {
	scene  *Scene
	id     string
	closed bool
}

// ID returns the id of the stroke the pen draws.
func (p *Pen) ID() string {
	if p == nil {
		return ""
	}
	return p.id
}

// Append adds a point to the pen's stroke. It reports false once the pen is
// closed or the stroke is no longer the most recent one.
func (p *Pen) Append(pt Point) bool {
	if p == nil || p.closed || p.scene == nil {
		return false
	}
	return p.scene.appendStrokePoint(p.id, pt)
}

// Close ends the stroke; later appends are rejected.
func (p *Pen) Close() {
	if p != nil {
		p.closed = true
	}
}
