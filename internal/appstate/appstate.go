package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"strings"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/render"
	"github.com/example/inkboard/internal/theme"
)

const (
	titleHeight  = 24
	bottomHeight = 24
	buttonHeight = 24
	swatchSize   = 16
	swatchStep   = 18
	widthHeight  = 16
	messageSize  = 28
)

var toolbarWidth = 48

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// PaletteColor is a named swatch in the toolbar.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"Black", color.RGBA{0, 0, 0, 255}},
	{"White", color.RGBA{255, 255, 255, 255}},
	{"Red", color.RGBA{255, 0, 0, 255}},
	{"Lime", color.RGBA{0, 255, 0, 255}},
	{"Blue", color.RGBA{0, 0, 255, 255}},
	{"Yellow", color.RGBA{255, 255, 0, 255}},
	{"Cyan", color.RGBA{0, 255, 255, 255}},
	{"Magenta", color.RGBA{255, 0, 255, 255}},
	{"Maroon", color.RGBA{128, 0, 0, 255}},
	{"Green", color.RGBA{0, 128, 0, 255}},
	{"Navy", color.RGBA{0, 0, 128, 255}},
	{"Olive", color.RGBA{128, 128, 0, 255}},
	{"Teal", color.RGBA{0, 128, 128, 255}},
	{"Purple", color.RGBA{128, 0, 128, 255}},
	{"Silver", color.RGBA{192, 192, 192, 255}},
	{"Gray", color.RGBA{128, 128, 128, 255}},
}

var widths = []float64{1, 2, 5, 8, 12}

// Palette returns a copy of the toolbar swatches.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// LookupColor returns the swatch named name, ignoring case.
func LookupColor(name string) (color.RGBA, bool) {
	for _, p := range palette {
		if strings.EqualFold(p.Name, name) {
			return p.Color, true
		}
	}
	return color.RGBA{}, false
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// keymap maps shortcuts to action names.
type keymap map[KeyShortcut]string

func (m keymap) bind(name string, keys KeyboardShortcuts) {
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		m[sc] = name
	}
}

// lookup matches a key press. Letters are compared lower case so shift and
// caps lock do not change the binding.
func (m keymap) lookup(e key.Event) (string, bool) {
	r := e.Rune
	if r < 0 {
		r = 0
	}
	if 'A' <= r && r <= 'Z' {
		r += 'a' - 'A'
	}
	mods := e.Modifiers &^ key.ModShift
	if e.Modifiers&key.ModControl != 0 && r > 0 && r < 27 {
		// some drivers deliver control letters as C0 codes
		r += 'a' - 1
	}
	name, ok := m[KeyShortcut{Rune: r, Code: e.Code, Modifiers: mods}]
	if !ok && r > 0 {
		name, ok = m[KeyShortcut{Rune: r, Modifiers: mods}]
	}
	return name, ok
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// Shortcut is a clickable label in the bottom bar naming a registered action.
type Shortcut struct {
	label  string
	action string
	rect   image.Rectangle
	th     *theme.Theme
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	drawButton(dst, s.rect, s.label, s.th, state, 14)
	drawRect(dst, s.rect, s.th.ButtonBorder, 1)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

// ToolButton selects an editor tool.
type ToolButton struct {
	label    string
	tool     canvas.Tool
	rect     image.Rectangle
	th       *theme.Theme
	onSelect func(canvas.Tool)
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	drawButton(dst, tb.rect, tb.label, tb.th, state, 16)
}

func (tb *ToolButton) Rect() image.Rectangle     { return tb.rect }
func (tb *ToolButton) SetRect(r image.Rectangle) { tb.rect = r }

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect(tb.tool)
	}
}

func drawButton(dst *image.RGBA, r image.Rectangle, label string, th *theme.Theme, state ButtonState, baseline int) {
	c := th.ButtonBackground
	switch state {
	case StateHover:
		c = th.ButtonBackgroundHover
	case StatePressed:
		c = th.ButtonActive
	}
	draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(r.Min.X+4, r.Min.Y+baseline)}
	d.DrawString(label)
}

// toolbarLayout holds the hit rectangles of the left toolbar.
type toolbarLayout struct {
	tools   []image.Rectangle
	palette []image.Rectangle
	widths  []image.Rectangle
}

func layoutToolbar(tools int) toolbarLayout {
	var l toolbarLayout
	y := titleHeight
	for i := 0; i < tools; i++ {
		l.tools = append(l.tools, image.Rect(0, y, toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	y += 4
	x := 4
	for range palette {
		l.palette = append(l.palette, image.Rect(x, y, x+swatchSize, y+swatchSize))
		x += swatchStep
		if x+swatchSize > toolbarWidth {
			x = 4
			y += swatchStep
		}
	}
	if x != 4 {
		y += swatchStep
	}
	y += 4
	for range widths {
		l.widths = append(l.widths, image.Rect(0, y, toolbarWidth, y+widthHeight))
		y += widthHeight
	}
	return l
}

type hitKind int

const (
	hitNone hitKind = iota
	hitTool
	hitPalette
	hitWidth
)

func (l toolbarLayout) hit(p image.Point) (hitKind, int) {
	for i, r := range l.tools {
		if p.In(r) {
			return hitTool, i
		}
	}
	for i, r := range l.palette {
		if p.In(r) {
			return hitPalette, i
		}
	}
	for i, r := range l.widths {
		if p.In(r) {
			return hitWidth, i
		}
	}
	return hitNone, -1
}

// canvasOrigin is where the editor viewport is drawn in the window.
func canvasOrigin() image.Point { return image.Pt(toolbarWidth, titleHeight) }

// viewportWidthFor returns the viewport width available in a window.
func viewportWidthFor(winW int) int {
	if w := winW - toolbarWidth; w > 0 {
		return w
	}
	return 0
}

func paletteIndex(c color.RGBA) int {
	for i, p := range palette {
		if p.Color == c {
			return i
		}
	}
	return -1
}

func widthIndex(w float64) int {
	for i, v := range widths {
		if v == w {
			return i
		}
	}
	return -1
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA, th *theme.Theme) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, b, 8, th.CheckerLight, th.CheckerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func drawTitle(dst *image.RGBA, width int, st paintState) {
	draw.Draw(dst, image.Rect(0, 0, width, titleHeight), &image.Uniform{st.theme.ToolbarBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.Foreground), Face: basicfont.Face7x13, Dot: fixed.P(4, 16)}
	d.DrawString(fmt.Sprintf("inkboard  %s  [%s]  %d/%d", st.title, st.state, st.histIndex+1, st.histLen))
}

func drawToolbar(dst *image.RGBA, st paintState) {
	th := st.theme
	draw.Draw(dst, image.Rect(0, titleHeight, toolbarWidth, st.height-bottomHeight), &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	l := layoutToolbar(len(st.tools))
	for i, cb := range st.tools {
		cb.SetRect(l.tools[i])
		state := StateDefault
		if cb.Button.(*ToolButton).tool == st.settings.Tool {
			state = StatePressed
		} else if st.hover.kind == hitTool && st.hover.idx == i {
			state = StateHover
		}
		cb.Draw(dst, state)
	}
	for i, r := range l.palette {
		draw.Draw(dst, r, &image.Uniform{palette[i].Color}, image.Point{}, draw.Src)
		if st.hover.kind == hitPalette && st.hover.idx == i {
			draw.Draw(dst, r, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		if palette[i].Color == st.settings.Color {
			drawRect(dst, r, th.Selection, 1)
		}
	}
	for i, r := range l.widths {
		c := th.ButtonBackground
		if widths[i] == st.settings.Width {
			c = th.ButtonActive
		} else if st.hover.kind == hitWidth && st.hover.idx == i {
			c = th.ButtonBackgroundHover
		}
		draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13, Dot: fixed.P(4, r.Min.Y+12)}
		d.DrawString(fmt.Sprintf("%g", widths[i]))
		drawLine(dst, 24, r.Min.Y+8, toolbarWidth-4, r.Min.Y+8, st.settings.Color, int(math.Min(widths[i], float64(widthHeight-4))))
	}
}

// shortcutLabels returns the bottom bar for the current state.
func shortcutLabels(editing bool) []Shortcut {
	if editing {
		return []Shortcut{
			{label: "Enter:done", action: "finalize"},
			{label: "Del:remove", action: "remove"},
			{label: "^Z:undo", action: "undo"},
		}
	}
	return []Shortcut{
		{label: "^Z:undo", action: "undo"},
		{label: "^Y:redo", action: "redo"},
		{label: "^S:export", action: "export"},
		{label: "^C:copy", action: "copy"},
		{label: "^V:paste bg", action: "paste"},
		{label: "^L:clear", action: "clear"},
		{label: "Q:quit", action: "quit"},
	}
}

// layoutShortcuts positions the bottom bar labels for a window height.
func layoutShortcuts(scs []Shortcut, height int) []Shortcut {
	out := make([]Shortcut, len(scs))
	copy(out, scs)
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	for i := range out {
		w := meas.MeasureString(out[i].label).Ceil()
		out[i].rect = image.Rect(x-2, y-14, x+w+2, y+4)
		x = out[i].rect.Max.X + 8
	}
	return out
}

func drawShortcuts(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, rect, &image.Uniform{st.theme.ToolbarBackground}, image.Point{}, draw.Src)
	for i := range st.shortcuts {
		sc := st.shortcuts[i]
		sc.th = st.theme
		state := StateDefault
		if st.hover.kind == hitNone && st.hover.shortcut == i {
			state = StateHover
		}
		sc.Draw(dst, state)
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := int(math.Abs(float64(x1 - x0)))
	dy := -int(math.Abs(float64(y1 - y0)))
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if p := image.Pt(x+dx, y+dy); p.In(img.Bounds()) {
				img.Set(p.X, p.Y, col)
			}
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

type hoverState struct {
	kind     hitKind
	idx      int
	shortcut int
}

type paintState struct {
	width, height int
	theme         *theme.Theme
	title         string
	state         canvas.State
	histIndex     int
	histLen       int
	settings      canvas.Settings
	tools         []*CacheButton
	shortcuts     []Shortcut
	hover         hoverState
	canvas        *image.RGBA
	selection     image.Rectangle
	ghost         image.Rectangle
	message       string
	messageUntil  time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	drawBackdrop(dst, st.theme)
	if ctx.Err() != nil {
		return
	}

	origin := canvasOrigin()
	if st.canvas != nil {
		r := st.canvas.Bounds().Add(origin)
		draw.Draw(dst, r, st.canvas, image.Point{}, draw.Over)
	}
	if !st.selection.Empty() {
		drawRect(dst, st.selection.Add(origin).Inset(-2), st.theme.Selection, 1)
	}
	if !st.ghost.Empty() {
		drawRect(dst, st.ghost.Add(origin).Inset(-2), st.theme.Selection, 1)
	}
	if ctx.Err() != nil {
		return
	}

	drawTitle(dst, st.width, st)
	drawToolbar(dst, st)
	drawShortcuts(dst, st)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, st)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawMessage(dst *image.RGBA, st paintState) {
	mw, mh, _, err := render.MeasureText(st.message, messageSize)
	if err != nil {
		log.Printf("message: %v", err)
		return
	}
	px := (st.width - mw) / 2
	py := (st.height - mh) / 2
	rect := image.Rect(px-8, py-8, px+mw+8, py+mh+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRect(dst, rect, color.Black, 2)
	if err := render.DrawText(dst, float64(px), float64(py), st.message, color.Black, messageSize); err != nil {
		log.Printf("message: %v", err)
	}
}
