package canvas

import (
	"log/slog"
	"sync/atomic"

	"github.com/example/inkboard/internal/render"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger routes editor and renderer diagnostics to l. Nil silences them.
func SetLogger(l *slog.Logger) {
	render.SetLogger(l)
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger { return loggerPtr.Load() }
