package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/clipboard"
	"github.com/example/inkboard/internal/config"
	"github.com/example/inkboard/internal/session"
)

// readClipboardImage is swapped in tests.
var readClipboardImage = clipboard.ReadImage

// loadBackground decodes a PNG, JPEG, BMP or WebP file.
func loadBackground(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// workspace is an image, its session file and the editor options that
// restore them.
type workspace struct {
	image       string
	sessionPath string
	session     *session.File
	background  image.Image
	width       int
}

type workspaceOptions struct {
	file          string
	sessionPath   string
	width         int
	fromClipboard bool
}

func openWorkspace(o workspaceOptions, cfg *config.Config) (*workspace, error) {
	if cfg == nil {
		cfg = config.New()
	}
	w := &workspace{image: o.file, sessionPath: o.sessionPath, width: o.width}
	var err error
	switch {
	case o.fromClipboard:
		w.background, err = readClipboardImage()
		if err != nil {
			return nil, fmt.Errorf("read clipboard image: %w", err)
		}
	case o.file != "":
		w.background, err = loadBackground(o.file)
		if err != nil {
			return nil, err
		}
	}
	if w.sessionPath == "" && o.file != "" {
		w.sessionPath = session.PathFor(o.file)
	}
	if w.sessionPath != "" {
		w.session, err = session.LoadOrNew(w.sessionPath, o.file, w.width)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
	} else {
		w.session = session.New(o.file, w.width, nil)
	}
	if w.width <= 0 {
		w.width = w.session.ViewportWidth
	}
	if w.width <= 0 {
		w.width = cfg.ViewportWidth
	}
	if w.width <= 0 {
		w.width = config.DefaultViewportWidth
	}
	if w.background == nil && w.session.Image != "" && w.session.Image != o.file {
		w.background, err = loadBackground(w.session.Image)
		if err != nil {
			return nil, err
		}
		w.image = w.session.Image
	}
	return w, nil
}

// editorOptions restores the saved bundle. A bundle that fails validation is
// reported and dropped so the editor starts fresh.
func (w *workspace) editorOptions(cfg *config.Config) []canvas.Option {
	opts := []canvas.Option{
		canvas.WithSettings(cfg.Settings()),
		canvas.WithBackground(w.background),
		canvas.WithViewportWidth(w.width),
	}
	if b := w.session.Bundle; b != nil {
		if err := b.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring saved state in %s: %v\n", w.sessionPath, err)
		} else {
			opts = append(opts, canvas.WithBundle(b))
		}
	}
	return opts
}

var errNoSession = errors.New("no session path")

// detach stops saving into the session of the original image once the
// background has been replaced.
func (w *workspace) detach() {
	w.image = ""
	w.sessionPath = ""
	w.session = session.New("", w.width, nil)
}

// save persists the editor state into the session file.
func (w *workspace) save(ed *canvas.Editor) error {
	if w.sessionPath == "" {
		return errNoSession
	}
	w.session.Bundle = ed.GetState()
	w.session.ViewportWidth = w.width
	if w.session.Image == "" {
		w.session.Image = w.image
	}
	return session.Save(w.sessionPath, w.session)
}
