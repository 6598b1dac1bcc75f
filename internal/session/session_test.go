package session

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/scene"
)

func TestPathFor(t *testing.T) {
	tests := map[string]string{
		"shot.png":           "shot" + Suffix,
		"/tmp/a/b.photo.jpg": "/tmp/a/b.photo" + Suffix,
		"noext":              "noext" + Suffix,
	}
	for in, want := range tests {
		if got := PathFor(in); got != want {
			t.Errorf("PathFor(%q) = %q want %q", in, got, want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	e := canvas.New()
	e.SetColor(color.RGBA{10, 20, 30, 255})
	e.PointerDown(scene.Pt(1, 2), true)
	e.PointerMove(scene.Pt(3, 4))
	e.PointerUp()
	e.SetTool(canvas.ToolText)
	e.PointerDown(scene.Pt(5, 6), false)
	e.UpdateText(e.Editing(), "hello")
	e.FinalizeTextEdit()
	e.Undo()

	path := filepath.Join(t.TempDir(), "nested", "shot"+Suffix)
	f := New("shot.png", 640, e.GetState())
	if err := Save(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != f.ID || got.Image != "shot.png" || got.ViewportWidth != 640 {
		t.Fatalf("header mismatch: %+v", got)
	}
	if err := got.Bundle.Validate(); err != nil {
		t.Fatalf("bundle invalid: %v", err)
	}

	restored := canvas.New(canvas.WithBundle(got.Bundle))
	want := e.GetState()
	if restored.HistoryLen() != len(want.History) || restored.HistoryIndex() != want.Index {
		t.Fatalf("history len=%d index=%d", restored.HistoryLen(), restored.HistoryIndex())
	}
	if !scene.Equal(restored.Scene(), want.Scene) {
		t.Fatalf("scene mismatch:\n%+v\n%+v", restored.Scene(), want.Scene)
	}
	restored.Redo()
	e.Redo()
	if !scene.Equal(restored.Scene(), e.Scene()) {
		t.Fatal("redo diverged after reload")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected parse error")
	}

	future := filepath.Join(dir, "future.json")
	if err := os.WriteFile(future, []byte(`{"version":9}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(future); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("version: %v", err)
	}
}

func TestLoadOrNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	f, err := LoadOrNew(path, "img.png", 800)
	if err != nil {
		t.Fatalf("load or new: %v", err)
	}
	if f.Bundle != nil || f.ID == "" || f.Image != "img.png" {
		t.Fatalf("unexpected new session %+v", f)
	}
}
