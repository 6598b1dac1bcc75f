// Package canvas drives annotation editing: pointer input is interpreted
// against the active tool, applied to the working scene, and committed to the
// undo log when an action completes.
//
// An Editor is not safe for concurrent use. Hosts deliver events from a single
// goroutine.
package canvas

import (
	"bytes"
	"image"
	"image/color"

	"github.com/example/inkboard/internal/export"
	"github.com/example/inkboard/internal/geometry"
	"github.com/example/inkboard/internal/history"
	"github.com/example/inkboard/internal/render"
	"github.com/example/inkboard/internal/scene"
)

// ErrNotReady is returned by exports before a background and viewport with
// positive dimensions are set.
var ErrNotReady = geometry.ErrNotReady

// State is the editing mode.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateEditingText
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateEditingText:
		return "editing-text"
	}
	return "unknown"
}

// Editor owns the working scene, the undo log and the tool state machine.
type Editor struct {
	settings Settings
	state    State
	working  scene.Scene
	hist     *history.History
	pen      *scene.Pen
	editing  string

	bg       image.Image
	width    int
	viewport geometry.Viewport
	scaledBG *image.RGBA

	measurer   scene.Measurer
	onSelect   func(id, content string)
	onDeselect func()
	onChange   func()
}

// Option configures an Editor.
type Option func(*Editor)

// WithOnSelect is called when a text enters editing.
func WithOnSelect(fn func(id, content string)) Option {
	return func(e *Editor) { e.onSelect = fn }
}

// WithOnDeselect is called when editing ends or the empty canvas is pressed.
func WithOnDeselect(fn func()) Option {
	return func(e *Editor) { e.onDeselect = fn }
}

// WithOnChange is called after every visible change to the scene.
func WithOnChange(fn func()) Option {
	return func(e *Editor) { e.onChange = fn }
}

// WithSettings sets the initial tool configuration.
func WithSettings(s Settings) Option {
	return func(e *Editor) { e.settings = s }
}

// WithBackground sets the image being annotated.
func WithBackground(img image.Image) Option {
	return func(e *Editor) { e.bg = img }
}

// WithViewportWidth sets the display width the background is fitted to.
func WithViewportWidth(w int) Option {
	return func(e *Editor) { e.width = w }
}

// WithBundle restores previously saved state.
func WithBundle(b *Bundle) Option {
	return func(e *Editor) { e.load(b) }
}

// WithMeasurer overrides how text boxes are sized for hit testing.
func WithMeasurer(m scene.Measurer) Option {
	return func(e *Editor) { e.measurer = m }
}

// New returns an idle editor with an empty scene.
func New(opts ...Option) *Editor {
	e := &Editor{
		settings: DefaultSettings(),
		hist:     history.New(scene.Scene{}),
		working:  scene.Scene{Strokes: []scene.Stroke{}, Texts: []scene.TextAnnotation{}},
		measurer: render.Metrics{},
	}
	for _, o := range opts {
		o(e)
	}
	e.refit()
	return e
}

// PointerDown starts the active tool's action at p. onEmpty reports that the
// press landed on bare canvas rather than an element. Presses are ignored
// while a stroke is in progress or a text is being edited.
func (e *Editor) PointerDown(p scene.Point, onEmpty bool) {
	if e.state != StateIdle {
		logger().Debug("pointer down suppressed", "state", e.state)
		return
	}
	if onEmpty {
		e.deselect()
	}
	switch e.settings.Tool {
	case ToolText:
		id := e.working.AddText(p, e.settings.TextContent, e.settings.Color, e.settings.fontSize())
		e.commit("add text")
		e.state = StateEditingText
		e.editing = id
		if e.onSelect != nil {
			e.onSelect(id, e.settings.TextContent)
		}
	default:
		tool := scene.ToolBrush
		if e.settings.Tool == ToolEraser {
			tool = scene.ToolEraser
		}
		e.pen = e.working.BeginStroke(tool, e.settings.Color, e.settings.Width, p)
		e.state = StateDrawing
	}
	e.changed()
}

// PointerMove extends the stroke in progress.
func (e *Editor) PointerMove(p scene.Point) {
	if e.state != StateDrawing {
		return
	}
	if e.pen.Append(p) {
		e.changed()
	}
}

// PointerUp completes the stroke in progress.
func (e *Editor) PointerUp() {
	if e.state != StateDrawing {
		return
	}
	e.finishStroke()
	e.changed()
}

func (e *Editor) finishStroke() {
	e.pen.Close()
	e.pen = nil
	e.state = StateIdle
	e.commit("stroke")
}

// DoubleClick starts editing the text with id. Unknown ids are ignored.
func (e *Editor) DoubleClick(id string) {
	t, ok := e.working.Text(id)
	if !ok {
		return
	}
	if e.state == StateDrawing {
		e.finishStroke()
	}
	e.state = StateEditingText
	e.editing = id
	if e.onSelect != nil {
		e.onSelect(id, t.Content)
	}
	e.changed()
}

// UpdateText replaces the content of a text without recording history. The
// change becomes permanent with FinalizeTextEdit or the next commit.
func (e *Editor) UpdateText(id, content string) {
	if e.working.UpdateText(id, content) {
		e.changed()
	}
}

// FinalizeTextEdit confirms the text being edited and leaves editing.
func (e *Editor) FinalizeTextEdit() {
	if e.state != StateEditingText {
		return
	}
	e.commit("edit text")
	e.leaveEditing()
	e.changed()
}

// RemoveText deletes a text. Removing the text being edited ends editing.
// It is ignored mid-stroke.
func (e *Editor) RemoveText(id string) {
	if e.state == StateDrawing || !e.working.RemoveText(id) {
		return
	}
	e.commit("remove text")
	if e.state == StateEditingText && e.editing == id {
		e.leaveEditing()
	}
	e.changed()
}

// DragTextEnd moves a text to pos once a drag is released.
func (e *Editor) DragTextEnd(id string, pos scene.Point) {
	if e.state == StateDrawing || !e.working.MoveText(id, pos) {
		return
	}
	e.commit("move text")
	e.changed()
}

// DragStrokeEnd translates a stroke by delta once a drag is released.
func (e *Editor) DragStrokeEnd(id string, delta scene.Point) {
	if e.state == StateDrawing || !e.working.MoveStroke(id, delta) {
		return
	}
	e.commit("move stroke")
	e.changed()
}

// Clear removes every element as one undoable action.
func (e *Editor) Clear() {
	switch e.state {
	case StateDrawing:
		e.pen.Close()
		e.pen = nil
	case StateEditingText:
		e.leaveEditing()
	}
	e.state = StateIdle
	e.working.Clear()
	e.commit("clear")
	e.changed()
}

// Undo steps back one action. It is ignored mid-stroke; while editing text it
// discards unconfirmed edits first.
func (e *Editor) Undo() bool {
	return e.step(e.hist.Undo)
}

// Redo steps forward one action under the same rules as Undo.
func (e *Editor) Redo() bool {
	return e.step(e.hist.Redo)
}

func (e *Editor) step(move func() (scene.Scene, bool)) bool {
	switch e.state {
	case StateDrawing:
		return false
	case StateEditingText:
		e.leaveEditing()
		e.working = e.hist.Current()
		e.changed()
	}
	s, ok := move()
	if !ok {
		return false
	}
	e.working = s
	logger().Debug("history step", "index", e.hist.Index(), "len", e.hist.Len())
	e.changed()
	return true
}

func (e *Editor) CanUndo() bool { return e.state != StateDrawing && e.hist.CanUndo() }

func (e *Editor) CanRedo() bool { return e.state != StateDrawing && e.hist.CanRedo() }

// SetTool switches tools. A stroke in progress is completed first.
func (e *Editor) SetTool(t Tool) {
	if e.state == StateDrawing {
		e.finishStroke()
		e.changed()
	}
	e.settings.Tool = t
}

// SetColor sets the colour of new strokes and texts.
func (e *Editor) SetColor(c color.RGBA) {
	e.settings.Color = c
}

// SetWidth sets the brush width. Non-positive widths are ignored.
func (e *Editor) SetWidth(w float64) {
	if w > 0 {
		e.settings.Width = w
	}
}

// SetTextShadow toggles the shadow drawn under texts.
func (e *Editor) SetTextShadow(on bool) {
	e.settings.TextShadow = on
	e.changed()
}

func (e *Editor) Settings() Settings { return e.settings }

func (e *Editor) State() State { return e.state }

// Editing returns the id of the text being edited, if any.
func (e *Editor) Editing() string {
	if e.state != StateEditingText {
		return ""
	}
	return e.editing
}

// Scene returns a copy of the working scene.
func (e *Editor) Scene() scene.Scene { return e.working.Clone() }

// HistoryLen and HistoryIndex describe the undo log.
func (e *Editor) HistoryLen() int   { return e.hist.Len() }
func (e *Editor) HistoryIndex() int { return e.hist.Index() }

// TextAt returns the id of the topmost text under p.
func (e *Editor) TextAt(p scene.Point) (string, bool) {
	t, ok := e.working.TextAt(p, e.measurer)
	return t.ID, ok
}

// StrokeAt returns the id of the topmost brush stroke under p.
func (e *Editor) StrokeAt(p scene.Point) (string, bool) {
	st, ok := e.working.StrokeAt(p, 2)
	return st.ID, ok
}

// GetState returns a copy of the scene and undo log.
func (e *Editor) GetState() *Bundle {
	return &Bundle{
		Scene:   e.working.Clone(),
		History: e.hist.Snapshots(),
		Index:   e.hist.Index(),
	}
}

// SetState replaces the scene and undo log. Nil starts fresh; a bundle that
// fails validation is discarded with a warning and also starts fresh.
func (e *Editor) SetState(b *Bundle) {
	if e.state == StateEditingText {
		e.leaveEditing()
	}
	e.pen = nil
	e.state = StateIdle
	e.load(b)
	e.changed()
}

func (e *Editor) load(b *Bundle) {
	fresh := func() {
		e.hist = history.New(scene.Scene{})
		e.working = e.hist.Current()
	}
	if b == nil {
		fresh()
		return
	}
	h, err := history.Restore(b.History, b.Index)
	if err != nil {
		logger().Warn("discarding malformed state", "err", err)
		fresh()
		return
	}
	e.hist = h
	e.working = b.Scene.Clone()
}

// SetBackground replaces the background image and refits the viewport. The
// scene is left untouched.
func (e *Editor) SetBackground(img image.Image) {
	e.bg = img
	e.refit()
	e.changed()
}

// SetViewportWidth refits the background to w display pixels. Existing
// annotation coordinates are not rescaled.
func (e *Editor) SetViewportWidth(w int) {
	if w == e.width {
		return
	}
	e.width = w
	e.refit()
	e.changed()
}

// Viewport returns the display geometry; it is zero until ready.
func (e *Editor) Viewport() geometry.Viewport { return e.viewport }

func (e *Editor) refit() {
	e.scaledBG = nil
	vp, err := geometry.FitImage(e.bg, e.width)
	if err != nil {
		e.viewport = geometry.Viewport{}
		return
	}
	e.viewport = vp
}

// Snapshot flattens the background and scene at viewport size.
func (e *Editor) Snapshot() (*image.RGBA, error) {
	if !e.viewport.Ready() {
		return nil, ErrNotReady
	}
	if e.scaledBG == nil {
		e.scaledBG = render.ScaleBackground(e.bg, e.viewport)
	}
	out := image.NewRGBA(e.scaledBG.Bounds())
	copy(out.Pix, e.scaledBG.Pix)
	render.Overlay(out, e.working, e.renderOptions())
	return out, nil
}

// ExportSnapshot returns the flattened image as PNG. It never mutates the
// editor.
func (e *Editor) ExportSnapshot() ([]byte, error) {
	img, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.PNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Editor) renderOptions() render.Options {
	opts := render.DefaultOptions()
	if e.settings.TextShadow {
		s := render.DefaultShadowOptions()
		opts.TextShadow = &s
	}
	return opts
}

func (e *Editor) commit(action string) {
	e.hist.Commit(e.working)
	logger().Debug("commit", "action", action, "index", e.hist.Index(), "len", e.hist.Len())
}

func (e *Editor) leaveEditing() {
	e.state = StateIdle
	e.editing = ""
	if e.onDeselect != nil {
		e.onDeselect()
	}
}

func (e *Editor) deselect() {
	if e.onDeselect != nil {
		e.onDeselect()
	}
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
