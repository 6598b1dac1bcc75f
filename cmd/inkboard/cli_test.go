package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/config"
	"github.com/example/inkboard/internal/scene"
	"github.com/example/inkboard/internal/session"
)

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func writeBackground(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 40
	}
	path := filepath.Join(dir, "shot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseErrors(t *testing.T) {
	r := &root{program: "inkboard"}
	tests := []struct {
		name  string
		parse func() error
		want  string
	}{
		{"annotate without source", func() error { _, err := parseAnnotateCmd(nil, r); return err }, "needs -file or -from-clipboard"},
		{"annotate both sources", func() error {
			_, err := parseAnnotateCmd([]string{"-file", "a.png", "-from-clipboard"}, r)
			return err
		}, "cannot be combined"},
		{"export nothing to do", func() error { _, err := parseExportCmd([]string{"-file", "a.png"}, r); return err }, "nothing to do"},
		{"export bad format", func() error {
			_, err := parseExportCmd([]string{"-file", "a.png", "-output", "x", "-format", "gif"}, r)
			return err
		}, "unknown export format"},
		{"export without input", func() error { _, err := parseExportCmd([]string{"-data-url"}, r); return err }, "needs -file or -session"},
	}
	for _, tc := range tests {
		err := tc.parse()
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Errorf("%s: expected usage error, got %v", tc.name, err)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: expected %q in %v", tc.name, tc.want, err)
		}
	}
}

func TestUsageRendersFlags(t *testing.T) {
	r := newRoot()
	msg := (&UsageError{of: r}).Error()
	if !containsAll(msg, []string{"Usage: inkboard", "annotate", "interactive", "-theme", "-verbose"}) {
		t.Fatalf("unexpected root help:\n%s", msg)
	}
	cmd, err := parseAnnotateCmd([]string{"-file", "x.png"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if msg := (&UsageError{of: cmd}).Error(); !containsAll(msg, []string{"inkboard annotate", "-session", "-width"}) {
		t.Fatalf("unexpected annotate help:\n%s", msg)
	}
}

func TestAnnotateOpenError(t *testing.T) {
	cmd := &annotateCmd{file: "missing.png", root: &root{}}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "open missing.png") {
		t.Fatalf("expected open error context, got %v", err)
	}
}

func TestConfigUnknownSubcommand(t *testing.T) {
	c, err := parseConfigCmd([]string{"frobnicate"}, &root{program: "inkboard"})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(); err == nil || !strings.Contains(err.Error(), "unknown config command") {
		t.Fatalf("got %v", err)
	}
}

func TestConfigPrint(t *testing.T) {
	var out bytes.Buffer
	c, err := parseConfigCmd([]string{"print"}, &root{program: "inkboard"})
	if err != nil {
		t.Fatal(err)
	}
	c.stdout = &out
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if !containsAll(out.String(), []string{"[brush]", "viewport_width = 800"}) {
		t.Fatalf("unexpected config:\n%s", out.String())
	}
}

func newInteractive(t *testing.T, file string, execs ...string) (*interactiveCmd, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &interactiveCmd{
		root:   &root{program: "inkboard"},
		file:   file,
		width:  100,
		execs:  execs,
		stdout: &out,
		stderr: &out,
	}, &out
}

func TestInteractiveSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 200, 100)
	out := filepath.Join(dir, "out", "annotated.png")

	cmd, buf := newInteractive(t, bg,
		"color red",
		"stroke 10 10 40 40 60 20",
		"text 30 30 Hello",
		"finalize",
		"state",
		"save",
		"export "+out,
	)
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v\n%s", err, buf.String())
	}
	if !containsAll(buf.String(), []string{"state idle history 4/4 viewport 100x50", "saved ", "exported "}) {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}

	f, err := session.Load(session.PathFor(bg))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if f.Bundle == nil || len(f.Bundle.History) != 4 || f.Bundle.Index != 3 {
		t.Fatalf("unexpected bundle %+v", f.Bundle)
	}
	if len(f.Bundle.Scene.Strokes) != 1 || len(f.Bundle.Scene.Texts) != 1 || f.Bundle.Scene.Texts[0].Content != "Hello" {
		t.Fatalf("unexpected scene %+v", f.Bundle.Scene)
	}
	if f.Bundle.Scene.Strokes[0].Color != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("stroke colour %v", f.Bundle.Scene.Strokes[0].Color)
	}

	of, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer of.Close()
	img, err := png.Decode(of)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Fatalf("export size %v", img.Bounds())
	}

	// A second run resumes from the session and can undo into it.
	again, buf2 := newInteractive(t, bg, "undo", "undo", "state")
	if err := again.Run(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !strings.Contains(buf2.String(), "history 2/4") {
		t.Fatalf("resume did not restore history:\n%s", buf2.String())
	}
}

func TestInteractiveCommandErrors(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 20, 20)
	tests := []struct {
		line string
		want string
	}{
		{"bogus", "unknown command"},
		{"down 1", "wrong number of arguments"},
		{"down x 1", "invalid coordinate"},
		{"tool pencil", "unknown tool"},
		{"width -3", "invalid width"},
		{"shadow maybe", "expected on or off"},
		{"type hi", "no text is being edited"},
	}
	for _, tc := range tests {
		cmd, _ := newInteractive(t, bg, tc.line)
		err := cmd.Run()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%q: expected %q, got %v", tc.line, tc.want, err)
		}
	}
}

func TestInteractiveFromClipboard(t *testing.T) {
	orig := readClipboardImage
	readClipboardImage = func() (image.Image, error) { return image.NewRGBA(image.Rect(0, 0, 50, 50)), nil }
	t.Cleanup(func() { readClipboardImage = orig })

	cmd, buf := newInteractive(t, "", "state", "save")
	cmd.fromClipboard = true
	err := cmd.Run()
	if !errors.Is(err, errNoSession) {
		t.Fatalf("save without session path: %v", err)
	}
	if !strings.Contains(buf.String(), "viewport 100x100") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestExportFromSession(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 80, 40)
	prep, _ := newInteractive(t, bg, "stroke 5 5 30 30", "save")
	if err := prep.Run(); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	e := &exportCmd{root: &root{}, sessionPath: session.PathFor(bg), dataURL: true, stdout: &out}
	if err := e.Run(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out.String(), "data:image/png;base64,") {
		t.Fatalf("unexpected data url %q", out.String())
	}

	var copied image.Image
	orig := writeClipboardImage
	writeClipboardImage = func(img image.Image) error { copied = img; return nil }
	t.Cleanup(func() { writeClipboardImage = orig })

	pdf := filepath.Join(dir, "out.pdf")
	e = &exportCmd{root: &root{}, file: bg, output: pdf, toClipboard: true, stdout: &out}
	if err := e.Run(); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	data, err := os.ReadFile(pdf)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("pdf not written: %v", err)
	}
	if copied == nil || copied.Bounds().Dx() != 100 {
		t.Fatalf("clipboard got %v", copied)
	}
}

func TestExportDiscardsMalformedSession(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 10, 10)
	path := filepath.Join(dir, "broken.inkboard.json")
	f := session.New(bg, 10, &canvas.Bundle{Index: 5})
	if err := session.Save(path, f); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	e := &exportCmd{root: &root{}, file: bg, sessionPath: path, dataURL: true, stdout: &out}
	if err := e.Run(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("no output")
	}
}

func TestWorkspaceDetachStopsSaving(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 40, 20)
	ws, err := openWorkspace(workspaceOptions{file: bg, width: 40}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ed := canvas.New(ws.editorOptions(config.New())...)
	ed.PointerDown(scene.Pt(1, 1), true)
	ed.PointerUp()

	ws.detach()
	if err := ws.save(ed); !errors.Is(err, errNoSession) {
		t.Fatalf("save after detach: %v", err)
	}
	if _, err := os.Stat(session.PathFor(bg)); !os.IsNotExist(err) {
		t.Fatalf("session written for replaced image: %v", err)
	}
}

func TestInteractiveTextKeepsTool(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 200, 100)
	cmd, buf := newInteractive(t, bg,
		"text 5 5 Note",
		"finalize",
		"down 60 30",
		"move 80 40",
		"up",
		"state",
		"list",
	)
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v\n%s", err, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "tool brush") {
		t.Fatalf("tool changed by text command:\n%s", out)
	}
	if strings.Count(out, "\nstroke ") != 1 || strings.Count(out, "\ntext ") != 1 {
		t.Fatalf("unexpected scene:\n%s", out)
	}
}
