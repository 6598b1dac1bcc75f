package canvas

import (
	"fmt"

	"github.com/example/inkboard/internal/history"
	"github.com/example/inkboard/internal/scene"
)

// Bundle is the persistent editor state for one background image: the
// working scene and its undo log. Hosts keep it across image switches.
type Bundle struct {
	Scene   scene.Scene   `json:"scene"`
	History []scene.Scene `json:"history"`
	Index   int           `json:"index"`
}

// Validate reports whether b can be restored.
func (b *Bundle) Validate() error {
	if b == nil {
		return fmt.Errorf("bundle: %w", history.ErrEmpty)
	}
	if _, err := history.Restore(b.History, b.Index); err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	c := &Bundle{Scene: b.Scene.Clone(), Index: b.Index}
	if b.History != nil {
		c.History = make([]scene.Scene, len(b.History))
		for i, s := range b.History {
			c.History[i] = s.Clone()
		}
	}
	return c
}
