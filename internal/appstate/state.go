package appstate

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/clipboard"
	"github.com/example/inkboard/internal/export"
	"github.com/example/inkboard/internal/notify"
	"github.com/example/inkboard/internal/render"
	"github.com/example/inkboard/internal/scene"
	"github.com/example/inkboard/internal/theme"
)

const (
	defaultWindowWidth  = 800
	defaultWindowHeight = 600
	messageDuration     = 2 * time.Second
)

// AppState hosts an editor in a desktop window.
type AppState struct {
	Title         string
	Output        string
	Format        export.Format
	ExportOptions export.Options
	Theme         *theme.Theme

	editor     *canvas.Editor
	editorOpts []canvas.Option
	notifier   *notify.Notifier
	onSave     func(*canvas.Editor) error
	onPaste    func()

	updateCh chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTitle sets the window title, usually the image path.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithOutput sets the file written by the export shortcut.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithFormat sets the export format used when the output has no known extension.
func WithFormat(f export.Format) Option { return func(a *AppState) { a.Format = f } }

func WithExportOptions(o export.Options) Option { return func(a *AppState) { a.ExportOptions = o } }

func WithTheme(th *theme.Theme) Option { return func(a *AppState) { a.Theme = th } }

// WithEditorOptions configures the editor the window drives.
func WithEditorOptions(opts ...canvas.Option) Option {
	return func(a *AppState) { a.editorOpts = append(a.editorOpts, opts...) }
}

func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithOnSave is called after every successful export, typically to persist
// the session next to the image.
func WithOnSave(fn func(*canvas.Editor) error) Option { return func(a *AppState) { a.onSave = fn } }

// WithOnPaste is called after a pasted image replaced the background and
// the annotations were reset. Hosts use it to detach per-image state.
func WithOnPaste(fn func()) Option { return func(a *AppState) { a.onPaste = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState and its editor.
func New(opts ...Option) *AppState {
	a := &AppState{
		Format:        export.FormatPNG,
		ExportOptions: export.Options{JPEGQuality: export.DefaultJPEGQuality},
		Theme:         theme.Default(),
		updateCh:      make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	eo := append([]canvas.Option{}, a.editorOpts...)
	eo = append(eo,
		canvas.WithOnChange(a.NotifyChanged),
		canvas.WithOnSelect(func(id, content string) {
			log.Printf("editing text %s: %q", id, content)
		}),
	)
	a.editor = canvas.New(eo...)
	return a
}

// Editor returns the editor driven by the window.
func (a *AppState) Editor() *canvas.Editor { return a.editor }

// NotifyChanged requests a repaint.
func (a *AppState) NotifyChanged() {
	if a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Export flattens the canvas into the output file, runs the save hook and
// announces the file.
func (a *AppState) Export() (string, error) {
	if a.Output == "" {
		return "", fmt.Errorf("export: no output path")
	}
	img, err := a.editor.Snapshot()
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	f := export.FormatForPath(a.Output, a.Format)
	if err := export.WriteFile(a.Output, img, f, a.ExportOptions); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if a.onSave != nil {
		if err := a.onSave(a.editor); err != nil {
			return "", fmt.Errorf("save session: %w", err)
		}
	}
	a.notifier.Export(a.Output, img)
	return a.Output, nil
}

// Copy places the flattened canvas on the clipboard.
func (a *AppState) Copy() error {
	img, err := a.editor.Snapshot()
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := clipboard.WriteImage(img); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	a.notifier.Copy("annotated image")
	return nil
}

// readClipboardImage is swapped in tests.
var readClipboardImage = clipboard.ReadImage

// Paste replaces the background with the clipboard image. A new background
// starts a fresh scene and history.
func (a *AppState) Paste() error {
	img, err := readClipboardImage()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	a.editor.SetBackground(img)
	a.editor.SetState(nil)
	a.Title = "clipboard"
	if a.onPaste != nil {
		a.onPaste()
	}
	return nil
}

func (a *AppState) Main(s screen.Screen) {
	ed := a.editor
	th := a.Theme

	// Ensure the toolbar fits every tool label.
	toolButtons := []*CacheButton{
		{Button: &ToolButton{label: "B:Brush", tool: canvas.ToolBrush, th: th}},
		{Button: &ToolButton{label: "E:Eraser", tool: canvas.ToolEraser, th: th}},
		{Button: &ToolButton{label: "T:Text", tool: canvas.ToolText, th: th}},
	}
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, cb := range toolButtons {
		if w := d.MeasureString(cb.Button.(*ToolButton).label).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
		cb.Button.(*ToolButton).onSelect = ed.SetTool
	}

	width, height := defaultWindowWidth, defaultWindowHeight
	if vp := ed.Viewport(); vp.Ready() {
		width = vp.Width + toolbarWidth
		height = vp.Height + titleHeight + bottomHeight
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "inkboard " + a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	var message string
	var messageUntil time.Time
	say := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
		log.Print(message)
		messageUntil = time.Now().Add(messageDuration)
	}

	quit := false
	keys := keymap{}
	actions := map[string]func(){}
	register := func(name string, sc KeyboardShortcuts, fn func()) {
		actions[name] = fn
		keys.bind(name, sc)
	}
	register("undo", shortcutList{{Rune: 'z', Modifiers: key.ModControl}}, func() {
		if !ed.Undo() {
			say("nothing to undo")
		}
	})
	register("redo", shortcutList{{Rune: 'y', Modifiers: key.ModControl}}, func() {
		if !ed.Redo() {
			say("nothing to redo")
		}
	})
	register("export", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		path, err := a.Export()
		if err != nil {
			say("%v", err)
			return
		}
		say("saved %s", path)
	})
	register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if err := a.Copy(); err != nil {
			say("%v", err)
			return
		}
		say("image copied to clipboard")
	})
	register("paste", shortcutList{{Rune: 'v', Modifiers: key.ModControl}}, func() {
		if err := a.Paste(); err != nil {
			say("%v", err)
			return
		}
		say("background replaced")
	})
	register("clear", shortcutList{{Rune: 'l', Modifiers: key.ModControl}}, ed.Clear)
	register("finalize", nil, ed.FinalizeTextEdit)
	register("remove", nil, func() {
		if id := ed.Editing(); id != "" {
			ed.RemoveText(id)
		}
	})
	register("quit", shortcutList{{Rune: 'q'}}, func() { quit = true })
	for i, r := range []rune{'b', 'e', 't'} {
		tb := toolButtons[i]
		register("tool:"+string(r), shortcutList{{Rune: r}}, tb.Activate)
	}

	run := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	hover := hoverState{idx: -1, shortcut: -1}
	var drag *dragState
	var clicks clickTracker

	for {
		if quit {
			stopPaint()
			return
		}
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			ed.SetViewportWidth(viewportWidthFor(width))
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:        width,
				height:       height,
				theme:        th,
				title:        a.Title,
				state:        ed.State(),
				histIndex:    ed.HistoryIndex(),
				histLen:      ed.HistoryLen(),
				settings:     ed.Settings(),
				tools:        toolButtons,
				shortcuts:    layoutShortcuts(shortcutLabels(ed.Editing() != ""), height),
				hover:        hover,
				message:      message,
				messageUntil: messageUntil,
			}
			if img, err := ed.Snapshot(); err == nil {
				st.canvas = img
			}
			sc := ed.Scene()
			if id := ed.Editing(); id != "" {
				if t, ok := sc.Text(id); ok {
					st.selection = textBounds(t, scene.Point{})
				}
			}
			if drag != nil {
				st.ghost = drag.bounds(sc)
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
			}
			inChrome := drag == nil && ed.State() != canvas.StateDrawing
			if inChrome && p.X < toolbarWidth && p.Y >= titleHeight && p.Y < height-bottomHeight {
				kind, idx := layoutToolbar(len(toolButtons)).hit(p)
				hover = hoverState{kind: kind, idx: idx, shortcut: -1}
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					switch kind {
					case hitTool:
						toolButtons[idx].Activate()
					case hitPalette:
						ed.SetColor(palette[idx].Color)
					case hitWidth:
						ed.SetWidth(widths[idx])
					}
				}
				w.Send(paint.Event{})
				continue
			}
			if inChrome && p.Y >= height-bottomHeight {
				scs := layoutShortcuts(shortcutLabels(ed.Editing() != ""), height)
				hover = hoverState{idx: -1, shortcut: -1}
				for i, sc := range scs {
					if p.In(sc.Rect()) {
						hover.shortcut = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							run(sc.action)
						}
						break
					}
				}
				w.Send(paint.Event{})
				continue
			}
			if hover.idx != -1 || hover.shortcut != -1 {
				hover = hoverState{idx: -1, shortcut: -1}
				w.Send(paint.Event{})
			}

			origin := canvasOrigin()
			cp := scene.Pt(float64(p.X-origin.X), float64(p.Y-origin.Y))
			switch {
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				if clicks.press(time.Now(), p) {
					if id, ok := ed.TextAt(cp); ok {
						drag = nil
						ed.DoubleClick(id)
						continue
					}
				}
				if ed.State() == canvas.StateEditingText {
					if _, ok := ed.TextAt(cp); !ok {
						ed.FinalizeTextEdit()
					}
					continue
				}
				if ed.State() != canvas.StateIdle {
					continue
				}
				if drag = pressDrag(ed, cp, e.Modifiers&key.ModShift != 0); drag != nil {
					continue
				}
				_, onStroke := ed.StrokeAt(cp)
				_, onText := ed.TextAt(cp)
				ed.PointerDown(cp, !onStroke && !onText)
			case e.Direction == mouse.DirNone:
				if drag != nil {
					drag.cur = cp
					w.Send(paint.Event{})
				} else if ed.State() == canvas.StateDrawing {
					ed.PointerMove(cp)
				}
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				if drag != nil {
					drag.cur = cp
					drag.finish(ed)
					drag = nil
					w.Send(paint.Event{})
					continue
				}
				ed.PointerUp()
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if id := ed.Editing(); id != "" {
				t, _ := ed.Scene().Text(id)
				content, res := editKey(t.Content, e)
				switch res {
				case editChanged:
					ed.UpdateText(id, content)
					continue
				case editDone:
					run("finalize")
					continue
				case editRemove:
					run("remove")
					continue
				}
			}
			if action, ok := keys.lookup(e); ok {
				run(action)
			}
		}
	}
}

// dragState tracks a text or stroke being moved by the pointer. The scene is
// only changed when the drag ends.
type dragState struct {
	text       bool
	id         string
	start, cur scene.Point
}

// pressDrag returns the drag a press at p starts, or nil when the press
// belongs to the active tool. Texts move only with the text tool; strokes
// move with shift held.
func pressDrag(ed *canvas.Editor, p scene.Point, shift bool) *dragState {
	if ed.Settings().Tool == canvas.ToolText {
		if id, ok := ed.TextAt(p); ok {
			return &dragState{text: true, id: id, start: p, cur: p}
		}
	}
	if shift {
		if id, ok := ed.StrokeAt(p); ok {
			return &dragState{id: id, start: p, cur: p}
		}
	}
	return nil
}

func (d *dragState) delta() scene.Point { return d.cur.Sub(d.start) }

func (d *dragState) finish(ed *canvas.Editor) {
	delta := d.delta()
	if delta == (scene.Point{}) {
		return
	}
	if d.text {
		t, ok := ed.Scene().Text(d.id)
		if !ok {
			return
		}
		ed.DragTextEnd(d.id, t.Position.Add(delta))
		return
	}
	ed.DragStrokeEnd(d.id, delta)
}

// bounds returns the outline of the dragged element at its current offset.
func (d *dragState) bounds(sc scene.Scene) image.Rectangle {
	if d.text {
		t, ok := sc.Text(d.id)
		if !ok {
			return image.Rectangle{}
		}
		return textBounds(t, d.delta())
	}
	st, ok := sc.Stroke(d.id)
	if !ok {
		return image.Rectangle{}
	}
	return strokeBounds(st, d.delta())
}

func textBounds(t scene.TextAnnotation, off scene.Point) image.Rectangle {
	w, h := render.Metrics{}.TextSize(t.Content, t.FontSize)
	x, y := t.Position.X+off.X, t.Position.Y+off.Y
	return image.Rect(int(x), int(y), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
}

func strokeBounds(st scene.Stroke, off scene.Point) image.Rectangle {
	if len(st.Points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range st.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	r := st.Width / 2
	return image.Rect(
		int(math.Floor(minX-r+off.X)), int(math.Floor(minY-r+off.Y)),
		int(math.Ceil(maxX+r+off.X)), int(math.Ceil(maxY+r+off.Y)),
	)
}

type editResult int

const (
	editIgnored editResult = iota
	editChanged
	editDone
	editRemove
)

// editKey applies a key press to the content of the text being edited.
// Presses with control or meta held are left for the shortcut table.
func editKey(content string, e key.Event) (string, editResult) {
	if e.Modifiers&(key.ModControl|key.ModMeta) != 0 {
		return content, editIgnored
	}
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter, key.CodeEscape:
		return content, editDone
	case key.CodeDeleteForward:
		return content, editRemove
	case key.CodeDeleteBackspace:
		if content == "" {
			return content, editIgnored
		}
		_, n := utf8.DecodeLastRuneInString(content)
		return content[:len(content)-n], editChanged
	}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		return content + string(e.Rune), editChanged
	}
	return content, editIgnored
}

const (
	doubleClickInterval = 400 * time.Millisecond
	doubleClickSlop     = 4
)

// clickTracker recognises two presses close in time and space.
type clickTracker struct {
	at  time.Time
	pos image.Point
}

func (c *clickTracker) press(now time.Time, p image.Point) bool {
	d := p.Sub(c.pos)
	dbl := !c.at.IsZero() && now.Sub(c.at) <= doubleClickInterval &&
		abs(d.X) <= doubleClickSlop && abs(d.Y) <= doubleClickSlop
	if dbl {
		c.at = time.Time{}
		return true
	}
	c.at, c.pos = now, p
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
