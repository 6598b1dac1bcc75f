// Package history implements a linear undo/redo log of scene snapshots.
// Committing after an undo prunes the redo branch.
package history

import (
	"errors"

	"github.com/example/inkboard/internal/scene"
)

var (
	// ErrEmpty reports a log without its initial snapshot.
	ErrEmpty = errors.New("history: no snapshots")
	// ErrIndexOutOfRange reports a cursor outside the snapshot list.
	ErrIndexOutOfRange = errors.New("history: index out of range")
)

// History is an ordered list of snapshots with a cursor. Snapshots are deep
// copies; nothing outside the log can alter them.
type History struct {
	snapshots []scene.Scene
	index     int
}

// New starts a log whose only snapshot is a copy of initial.
func New(initial scene.Scene) *History {
	return &History{snapshots: []scene.Scene{initial.Clone()}}
}

// Restore rebuilds a log from persisted snapshots.
func Restore(snapshots []scene.Scene, index int) (*History, error) {
	if len(snapshots) == 0 {
		return nil, ErrEmpty
	}
	if index < 0 || index >= len(snapshots) {
		return nil, ErrIndexOutOfRange
	}
	h := &History{snapshots: make([]scene.Scene, len(snapshots)), index: index}
	for i, s := range snapshots {
		h.snapshots[i] = s.Clone()
	}
	return h, nil
}

// Commit drops every snapshot after the cursor, appends a copy of s and
// moves the cursor onto it.
func (h *History) Commit(s scene.Scene) {
	h.snapshots = append(h.snapshots[:h.index+1:h.index+1], s.Clone())
	h.index = len(h.snapshots) - 1
}

// Undo steps the cursor back and returns that snapshot. At the first
// snapshot it does nothing and reports false.
func (h *History) Undo() (scene.Scene, bool) {
	if !h.CanUndo() {
		return scene.Scene{}, false
	}
	h.index--
	return h.snapshots[h.index].Clone(), true
}

// Redo steps the cursor forward and returns that snapshot. At the last
// snapshot it does nothing and reports false.
func (h *History) Redo() (scene.Scene, bool) {
	if !h.CanRedo() {
		return scene.Scene{}, false
	}
	h.index++
	return h.snapshots[h.index].Clone(), true
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool { return h.index < len(h.snapshots)-1 }

// Len returns the number of snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Index returns the cursor position.
func (h *History) Index() int { return h.index }

// Current returns a copy of the snapshot under the cursor.
func (h *History) Current() scene.Scene { return h.snapshots[h.index].Clone() }

// Snapshots returns copies of every snapshot, oldest first.
func (h *History) Snapshots() []scene.Scene {
	out := make([]scene.Scene, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns an independent copy of the log.
func (h *History) Clone() *History {
	c, _ := Restore(h.snapshots, h.index)
	return c
}
