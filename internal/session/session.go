// Package session persists editor state next to the image it annotates.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/inkboard/internal/canvas"
)

// Version is the file format written by Save.
const Version = 1

// Suffix is appended to an image path to name its default session file.
const Suffix = ".inkboard.json"

var ErrUnsupportedVersion = errors.New("session: unsupported version")

// File is the on-disk session document.
type File struct {
	Version       int            `json:"version"`
	ID            string         `json:"id"`
	Image         string         `json:"image"`
	ViewportWidth int            `json:"viewport_width,omitempty"`
	Saved         time.Time      `json:"saved"`
	Bundle        *canvas.Bundle `json:"bundle"`
}

// New returns a session for image with a fresh id.
func New(image string, viewportWidth int, b *canvas.Bundle) *File {
	return &File{
		Version:       Version,
		ID:            uuid.NewString(),
		Image:         image,
		ViewportWidth: viewportWidth,
		Bundle:        b,
	}
}

// PathFor returns the default session path for an image.
func PathFor(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + Suffix
}

// Load reads a session file. A missing file is reported with an error
// matching os.ErrNotExist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("session %s: %w", path, err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	return &f, nil
}

// LoadOrNew loads path, or starts a new session for image when the file
// does not exist yet.
func LoadOrNew(path, image string, viewportWidth int) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(image, viewportWidth, nil), nil
	}
	return f, err
}

// Save writes f to path through a temporary file so a crash never leaves a
// truncated session behind.
func Save(path string, f *File) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.Version = Version
	f.Saved = time.Now().UTC()
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
