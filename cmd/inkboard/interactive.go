package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/clipboard"
	"github.com/example/inkboard/internal/export"
	"github.com/example/inkboard/internal/scene"
	"github.com/example/inkboard/internal/theme"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

// writeClipboardText is swapped in tests.
var writeClipboardText = clipboard.WriteText

// interactiveCmd drives an editor from text commands, one per line.
type interactiveCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	sessionPath   string
	width         int
	fromClipboard bool
	execs         commandList

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	ws *workspace
	ed *canvas.Editor
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *interactiveCmd) Program() string {
	return i.subProgram("interactive")
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(i)
	fs.StringVar(&i.file, "file", "", "image file to annotate")
	fs.StringVar(&i.sessionPath, "session", "", "session file (default next to the image)")
	fs.IntVar(&i.width, "width", 0, "viewport width in pixels")
	fs.BoolVar(&i.fromClipboard, "from-clipboard", false, "use the clipboard image as the background")
	fs.Var(&i.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if i.file != "" && i.fromClipboard {
		return nil, usageErrorf(i, "-file and -from-clipboard cannot be combined")
	}
	return i, nil
}

func (i *interactiveCmd) open() error {
	cfg := i.cfg()
	ws, err := openWorkspace(workspaceOptions{
		file:          i.file,
		sessionPath:   i.sessionPath,
		width:         i.width,
		fromClipboard: i.fromClipboard,
	}, cfg)
	if err != nil {
		return err
	}
	i.ws = ws
	opts := append(ws.editorOptions(cfg),
		canvas.WithOnSelect(func(id, content string) {
			_ = writef(i.stdout, "editing %s %q\n", id, content)
		}),
	)
	i.ed = canvas.New(opts...)
	return nil
}

func (i *interactiveCmd) Run() error {
	if err := i.open(); err != nil {
		return err
	}
	if len(i.execs) > 0 {
		for _, cmd := range i.execs {
			done, err := i.executeLine(cmd)
			if err != nil {
				return fmt.Errorf("%s: %w", cmd, err)
			}
			if done {
				break
			}
		}
		return nil
	}

	_ = writeln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		_ = writef(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			_ = writef(i.stderr, "error: %v\n", err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

var errArgs = errors.New("wrong number of arguments")

const interactiveHelp = `commands:
  down X Y | move X Y | up      pointer input in viewport pixels
  stroke X Y X Y...             draw a whole stroke
  tool brush|eraser|text        select the tool
  color NAME|#RRGGBB            select the colour
  width N                       select the stroke width
  shadow on|off                 toggle the text shadow
  text X Y [CONTENT...]         place a text and edit it
  type CONTENT...               replace the content of the edited text
  update ID CONTENT...          replace the content of any text
  finalize                      finish editing
  dblclick ID                   edit an existing text
  remove ID                     delete a text
  drag-text ID X Y              move a text
  drag-stroke ID DX DY          translate a stroke
  undo | redo | clear
  viewport N                    refit to N pixels wide
  list | state
  export PATH | dataurl [copy] | copy
  save                          write the session file
  exit`

func (i *interactiveCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false, nil
	}
	ed := i.ed
	name, rest := args[0], args[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		return false, writeln(i.stdout, interactiveHelp)
	case "down":
		p, err := pointArgs(rest, 2)
		if err != nil {
			return false, err
		}
		ed.PointerDown(p, i.onEmpty(p))
	case "move":
		p, err := pointArgs(rest, 2)
		if err != nil {
			return false, err
		}
		ed.PointerMove(p)
	case "up":
		ed.PointerUp()
	case "stroke":
		if len(rest) < 2 || len(rest)%2 != 0 {
			return false, errArgs
		}
		var pts []scene.Point
		for j := 0; j < len(rest); j += 2 {
			p, err := pointArgs(rest[j:j+2], 2)
			if err != nil {
				return false, err
			}
			pts = append(pts, p)
		}
		if ed.State() != canvas.StateIdle {
			return false, fmt.Errorf("cannot start a stroke while %s", ed.State())
		}
		if ed.Settings().Tool == canvas.ToolText {
			return false, errors.New("stroke needs the brush or eraser tool")
		}
		ed.PointerDown(pts[0], i.onEmpty(pts[0]))
		for _, p := range pts[1:] {
			ed.PointerMove(p)
		}
		ed.PointerUp()
		if id := i.lastStroke(); id != "" {
			_ = writef(i.stdout, "stroke %s\n", id)
		}
	case "tool":
		if len(rest) != 1 {
			return false, errArgs
		}
		t, err := canvas.ParseTool(rest[0])
		if err != nil {
			return false, err
		}
		ed.SetTool(t)
	case "color", "colour":
		if len(rest) != 1 {
			return false, errArgs
		}
		c, err := theme.ParseColor(rest[0])
		if err != nil {
			return false, err
		}
		ed.SetColor(c)
	case "width":
		if len(rest) != 1 {
			return false, errArgs
		}
		w, err := strconv.ParseFloat(rest[0], 64)
		if err != nil || w <= 0 {
			return false, fmt.Errorf("invalid width %q", rest[0])
		}
		ed.SetWidth(w)
	case "shadow":
		if len(rest) != 1 {
			return false, errArgs
		}
		on, err := parseOnOff(rest[0])
		if err != nil {
			return false, err
		}
		ed.SetTextShadow(on)
	case "text":
		if len(rest) < 2 {
			return false, errArgs
		}
		p, err := pointArgs(rest[:2], 2)
		if err != nil {
			return false, err
		}
		if ed.State() != canvas.StateIdle {
			return false, fmt.Errorf("cannot place text while %s", ed.State())
		}
		prev := ed.Settings().Tool
		ed.SetTool(canvas.ToolText)
		ed.PointerDown(p, i.onEmpty(p))
		ed.SetTool(prev)
		if len(rest) > 2 {
			ed.UpdateText(ed.Editing(), strings.Join(rest[2:], " "))
		}
	case "type":
		id := ed.Editing()
		if id == "" {
			return false, errors.New("no text is being edited")
		}
		ed.UpdateText(id, strings.Join(rest, " "))
	case "update":
		if len(rest) < 1 {
			return false, errArgs
		}
		ed.UpdateText(rest[0], strings.Join(rest[1:], " "))
	case "finalize":
		ed.FinalizeTextEdit()
	case "dblclick":
		if len(rest) != 1 {
			return false, errArgs
		}
		ed.DoubleClick(rest[0])
	case "remove":
		if len(rest) != 1 {
			return false, errArgs
		}
		ed.RemoveText(rest[0])
	case "drag-text":
		if len(rest) != 3 {
			return false, errArgs
		}
		p, err := pointArgs(rest[1:], 2)
		if err != nil {
			return false, err
		}
		ed.DragTextEnd(rest[0], p)
	case "drag-stroke":
		if len(rest) != 3 {
			return false, errArgs
		}
		d, err := pointArgs(rest[1:], 2)
		if err != nil {
			return false, err
		}
		ed.DragStrokeEnd(rest[0], d)
	case "undo":
		if !ed.Undo() {
			return false, writeln(i.stdout, "nothing to undo")
		}
	case "redo":
		if !ed.Redo() {
			return false, writeln(i.stdout, "nothing to redo")
		}
	case "clear":
		ed.Clear()
	case "viewport":
		if len(rest) != 1 {
			return false, errArgs
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return false, fmt.Errorf("invalid width %q", rest[0])
		}
		i.ws.width = n
		ed.SetViewportWidth(n)
	case "list":
		return false, i.list()
	case "state":
		vp := ed.Viewport()
		return false, writef(i.stdout, "state %s history %d/%d viewport %dx%d tool %s\n",
			ed.State(), ed.HistoryIndex()+1, ed.HistoryLen(), vp.Width, vp.Height, ed.Settings().Tool)
	case "export":
		if len(rest) != 1 {
			return false, errArgs
		}
		return false, i.export(rest[0])
	case "dataurl":
		return false, i.dataURL(len(rest) == 1 && rest[0] == "copy")
	case "copy":
		img, err := ed.Snapshot()
		if err != nil {
			return false, err
		}
		if err := clipboard.WriteImage(img); err != nil {
			return false, err
		}
		i.notifier.Copy("annotated image")
	case "save":
		if err := i.ws.save(ed); err != nil {
			return false, err
		}
		return false, writef(i.stdout, "saved %s\n", i.ws.sessionPath)
	default:
		return false, fmt.Errorf("unknown command %q", name)
	}
	return false, nil
}

// onEmpty reports whether p misses every text and brush stroke.
func (i *interactiveCmd) onEmpty(p scene.Point) bool {
	if _, ok := i.ed.TextAt(p); ok {
		return false
	}
	_, ok := i.ed.StrokeAt(p)
	return !ok
}

func (i *interactiveCmd) lastStroke() string {
	sc := i.ed.Scene()
	if len(sc.Strokes) == 0 {
		return ""
	}
	return sc.Strokes[len(sc.Strokes)-1].ID
}

func (i *interactiveCmd) list() error {
	sc := i.ed.Scene()
	for _, st := range sc.Strokes {
		if err := writef(i.stdout, "stroke %s %s %s width %g points %d\n",
			st.ID, st.Tool, theme.Hex(st.Color), st.Width, len(st.Points)); err != nil {
			return err
		}
	}
	texts := append([]scene.TextAnnotation(nil), sc.Texts...)
	sort.SliceStable(texts, func(a, b int) bool { return texts[a].Position.Y < texts[b].Position.Y })
	for _, t := range texts {
		if err := writef(i.stdout, "text %s at %g,%g size %g %q\n",
			t.ID, t.Position.X, t.Position.Y, t.FontSize, t.Content); err != nil {
			return err
		}
	}
	return nil
}

func (i *interactiveCmd) export(path string) error {
	img, err := i.ed.Snapshot()
	if err != nil {
		return err
	}
	cfg := i.cfg()
	f := export.FormatForPath(path, cfg.Export.Format)
	if err := export.WriteFile(path, img, f, cfg.ExportOptions()); err != nil {
		return err
	}
	i.notifier.Export(path, img)
	return writef(i.stdout, "exported %s\n", path)
}

func (i *interactiveCmd) dataURL(toClipboard bool) error {
	img, err := i.ed.Snapshot()
	if err != nil {
		return err
	}
	url, err := export.DataURL(img)
	if err != nil {
		return err
	}
	if toClipboard {
		if err := writeClipboardText(url); err != nil {
			return err
		}
		i.notifier.Copy("data URL")
		return nil
	}
	return writeln(i.stdout, url)
}

func pointArgs(args []string, n int) (scene.Point, error) {
	if len(args) != n {
		return scene.Point{}, errArgs
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return scene.Point{}, fmt.Errorf("invalid coordinate %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return scene.Point{}, fmt.Errorf("invalid coordinate %q", args[1])
	}
	return scene.Pt(x, y), nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
