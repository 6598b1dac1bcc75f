package main

import (
	"flag"
	"log"

	"github.com/example/inkboard/internal/appstate"
	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/session"
)

// annotateCmd opens the annotation window.
type annotateCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	sessionPath   string
	output        string
	width         int
	fromClipboard bool
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func (a *annotateCmd) Program() string {
	return a.subProgram("annotate")
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.StringVar(&a.sessionPath, "session", "", "session file (default IMAGE"+session.Suffix+")")
	fs.StringVar(&a.output, "output", "", "file written by Ctrl+S (default from config, else annotated.png)")
	fs.IntVar(&a.width, "width", 0, "viewport width in pixels")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "use the clipboard image as the background")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && !a.fromClipboard {
		return nil, usageErrorf(a, "annotate needs -file or -from-clipboard")
	}
	if a.file != "" && a.fromClipboard {
		return nil, usageErrorf(a, "-file and -from-clipboard cannot be combined")
	}
	return a, nil
}

func (a *annotateCmd) outputPath() string {
	switch {
	case a.output != "":
		return a.output
	case a.cfg().Output != "":
		return a.cfg().Output
	}
	return "annotated.png"
}

func (a *annotateCmd) Run() error {
	cfg := a.cfg()
	ws, err := openWorkspace(workspaceOptions{
		file:          a.file,
		sessionPath:   a.sessionPath,
		width:         a.width,
		fromClipboard: a.fromClipboard,
	}, cfg)
	if err != nil {
		return err
	}
	title := ws.image
	if title == "" {
		title = "clipboard"
	}
	save := func(ed *canvas.Editor) error {
		if ws.sessionPath == "" {
			return nil
		}
		return ws.save(ed)
	}
	var st *appstate.AppState
	st = appstate.New(
		appstate.WithTitle(title),
		appstate.WithOutput(a.outputPath()),
		appstate.WithFormat(cfg.Export.Format),
		appstate.WithExportOptions(cfg.ExportOptions()),
		appstate.WithTheme(a.theme()),
		appstate.WithNotifier(a.notifier),
		appstate.WithEditorOptions(ws.editorOptions(cfg)...),
		appstate.WithOnSave(save),
		appstate.WithOnPaste(ws.detach),
		appstate.WithOnClose(func() {
			if err := save(st.Editor()); err != nil {
				log.Printf("save session: %v", err)
			}
		}),
	)
	st.Run()
	return nil
}
