package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/clipboard"
	"github.com/example/inkboard/internal/export"
)

// writeClipboardImage is swapped in tests.
var writeClipboardImage = clipboard.WriteImage

// exportCmd flattens a saved session without opening a window.
type exportCmd struct {
	*root
	fs          *flag.FlagSet
	file        string
	sessionPath string
	output      string
	format      string
	width       int
	dataURL     bool
	toClipboard bool
	stdout      io.Writer
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *exportCmd) Program() string {
	return e.subProgram("export")
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	e := &exportCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "background image")
	fs.StringVar(&e.sessionPath, "session", "", "session file (default next to the image)")
	fs.StringVar(&e.output, "output", "", "file to write")
	fs.StringVar(&e.format, "format", "", "png, jpeg or pdf (default from the output extension)")
	fs.IntVar(&e.width, "width", 0, "viewport width in pixels (default from the session)")
	fs.BoolVar(&e.dataURL, "data-url", false, "print a base64 PNG data URL")
	fs.BoolVar(&e.toClipboard, "to-clipboard", false, "copy the image, or the data URL with -data-url, to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && e.sessionPath == "" {
		return nil, usageErrorf(e, "export needs -file or -session")
	}
	if e.output == "" && !e.dataURL && !e.toClipboard {
		return nil, usageErrorf(e, "nothing to do: give -output, -data-url or -to-clipboard")
	}
	if e.format != "" {
		if _, err := export.ParseFormat(e.format); err != nil {
			return nil, usageErrorf(e, "%v", err)
		}
	}
	return e, nil
}

func (e *exportCmd) Run() error {
	cfg := e.cfg()
	ws, err := openWorkspace(workspaceOptions{file: e.file, sessionPath: e.sessionPath, width: e.width}, cfg)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	ed := canvas.New(ws.editorOptions(cfg)...)
	img, err := ed.Snapshot()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if e.output != "" {
		f := export.FormatForPath(e.output, cfg.Export.Format)
		if e.format != "" {
			f, _ = export.ParseFormat(e.format)
		}
		if err := export.WriteFile(e.output, img, f, cfg.ExportOptions()); err != nil {
			return fmt.Errorf("export %s: %w", e.output, err)
		}
		e.notifier.Export(e.output, img)
		fmt.Fprintf(os.Stderr, "exported %s\n", e.output)
	}

	switch {
	case e.dataURL:
		url, err := export.DataURL(img)
		if err != nil {
			return fmt.Errorf("export data url: %w", err)
		}
		if e.toClipboard {
			if err := writeClipboardText(url); err != nil {
				return fmt.Errorf("copy data url: %w", err)
			}
			e.notifier.Copy("data URL")
			return nil
		}
		return writeln(e.stdout, url)
	case e.toClipboard:
		if err := writeClipboardImage(img); err != nil {
			return fmt.Errorf("copy image: %w", err)
		}
		e.notifier.Copy("annotated image")
	}
	return nil
}
