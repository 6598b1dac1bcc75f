//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import "golang.design/x/clipboard"

const needsDisplay = true

type designBackend struct{}

func newBackend() (backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return designBackend{}, nil
}

func (designBackend) kind(f format) clipboard.Format {
	if f == formatImage {
		return clipboard.FmtImage
	}
	return clipboard.FmtText
}

func (b designBackend) write(f format, data []byte) error {
	clipboard.Write(b.kind(f), data)
	return nil
}

func (b designBackend) read(f format) ([]byte, error) {
	return clipboard.Read(b.kind(f)), nil
}
