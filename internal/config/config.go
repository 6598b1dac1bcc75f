// Package config reads and writes the inkboard rc file.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/inkboard/internal/canvas"
	"github.com/example/inkboard/internal/export"
	"github.com/example/inkboard/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
}

// Brush holds the starting brush.
type Brush struct {
	Color color.RGBA
	Width float64
}

// Text holds defaults for new text annotations.
type Text struct {
	Content    string
	SizeFactor float64
	Shadow     bool
}

// Export holds output defaults.
type Export struct {
	Format      export.Format
	JPEGQuality int
}

// Config holds the application configuration.
type Config struct {
	Theme         string
	Output        string
	ViewportWidth int
	Brush         Brush
	Text          Text
	Export        Export
	Notify        Notify
	Themes        map[string]*theme.Theme
}

// DefaultViewportWidth matches the default canvas width.
const DefaultViewportWidth = 800

// New creates a new Config with defaults.
func New() *Config {
	s := canvas.DefaultSettings()
	return &Config{
		Theme:         "", // empty falls back to env, then the built-in default
		ViewportWidth: DefaultViewportWidth,
		Brush:         Brush{Color: s.Color, Width: s.Width},
		Text:          Text{Content: s.TextContent, SizeFactor: s.TextSizeFactor},
		Export:        Export{Format: export.FormatPNG, JPEGQuality: export.DefaultJPEGQuality},
		Themes:        make(map[string]*theme.Theme),
	}
}

// Settings converts the configured defaults into editor settings.
func (c *Config) Settings() canvas.Settings {
	s := canvas.DefaultSettings()
	s.Color = c.Brush.Color
	if c.Brush.Width > 0 {
		s.Width = c.Brush.Width
	}
	if c.Text.Content != "" {
		s.TextContent = c.Text.Content
	}
	if c.Text.SizeFactor > 0 {
		s.TextSizeFactor = c.Text.SizeFactor
	}
	s.TextShadow = c.Text.Shadow
	return s
}

// ExportOptions returns encoder options.
func (c *Config) ExportOptions() export.Options {
	return export.Options{JPEGQuality: c.Export.JPEGQuality}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.Output != "" {
		fmt.Fprintf(&sb, "output = %s\n", c.Output)
	}
	fmt.Fprintf(&sb, "viewport_width = %d\n", c.ViewportWidth)
	sb.WriteString("\n")

	sb.WriteString("[brush]\n")
	fmt.Fprintf(&sb, "color = %s\n", theme.Hex(c.Brush.Color))
	fmt.Fprintf(&sb, "width = %g\n", c.Brush.Width)
	sb.WriteString("\n")

	sb.WriteString("[text]\n")
	fmt.Fprintf(&sb, "content = %q\n", c.Text.Content)
	fmt.Fprintf(&sb, "size_factor = %g\n", c.Text.SizeFactor)
	fmt.Fprintf(&sb, "shadow = %v\n", c.Text.Shadow)
	sb.WriteString("\n")

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "format = %s\n", c.Export.Format)
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.Export.JPEGQuality)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	themeNames := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)
	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
