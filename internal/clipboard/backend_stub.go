//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

const needsDisplay = false

func newBackend() (backend, error) {
	return nil, errUnsupported
}
