package notify

import (
	"image"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/example/inkboard/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	prev := send
	send = func(title, body string, opts platform.Options) error {
		_, err := os.Stat(opts.IconPath)
		got = append(got, sent{title, body, opts, opts.IconPath != "" && err == nil})
		return nil
	}
	t.Cleanup(func() { send = prev })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Export("out.png", nil)
	n.Copy("")
	var nilNotifier *Notifier
	nilNotifier.Copy("x")
	nilNotifier.Enable(EventCopy, true)
	if len(*got) != 0 {
		t.Fatalf("unexpected notifications %+v", *got)
	}
}

func TestCopyAndExport(t *testing.T) {
	got := capture(t)
	prefs := DefaultPreferences()
	prefs.Timeout = time.Second
	n := New(prefs)
	n.Enable(EventCopy, true)
	n.Enable(EventExport, true)

	n.Copy("")
	n.Export("shot.pdf", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	n.Export("shot.png", nil)

	if len(*got) != 3 {
		t.Fatalf("got %d notifications", len(*got))
	}
	if c := (*got)[0]; c.title != "inkboard" || c.body != "Copied image to clipboard" || c.opts.Timeout != time.Second {
		t.Fatalf("copy notification %+v", c)
	}
	pdf := (*got)[1]
	if !strings.HasPrefix(pdf.body, "Exported ") || !strings.HasSuffix(pdf.body, "shot.pdf") {
		t.Fatalf("export body %q", pdf.body)
	}
	if !pdf.iconExisted {
		t.Fatal("pdf export should carry a rendered preview icon")
	}
	if _, err := os.Stat(pdf.opts.IconPath); !os.IsNotExist(err) {
		t.Fatal("preview icon not cleaned up")
	}
	if png := (*got)[2]; !strings.HasSuffix(png.opts.IconPath, "shot.png") {
		t.Fatalf("png export icon %q", png.opts.IconPath)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("INKBOARD_NOTIFY_TITLE", "Board")
	t.Setenv("INKBOARD_NOTIFY_TIMEOUT", "2s")
	t.Setenv("INKBOARD_NOTIFY_COPY_TEXT", "Clipboard ready")
	t.Setenv("INKBOARD_NOTIFY_EXPORT_TEXT", "")
	p := LoadPreferences()
	if p.Title != "Board" || p.Timeout != 2*time.Second {
		t.Fatalf("prefs %+v", p)
	}
	if p.Events[EventCopy].Template != "Clipboard ready" || p.Events[EventExport].Template != "Exported %s" {
		t.Fatalf("templates %+v", p.Events)
	}

	got := capture(t)
	n := New(p)
	n.Enable(EventCopy, true)
	n.Copy("x")
	if (*got)[0].body != "Clipboard ready" {
		t.Fatalf("body %q", (*got)[0].body)
	}
}
