package canvas

import (
	"fmt"
	"image/color"
)

// Tool selects what a pointer press does.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
	ToolText   Tool = "text"
)

// ParseTool accepts the names used by the CLI and config files.
func ParseTool(s string) (Tool, error) {
	switch Tool(s) {
	case ToolBrush, ToolEraser, ToolText:
		return Tool(s), nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// Settings is the active tool configuration. It is never recorded in
// history.
type Settings struct {
	Tool  Tool
	Color color.RGBA
	// Width is the brush diameter in display pixels.
	Width float64
	// TextSizeFactor scales Width into the font size of new texts.
	TextSizeFactor float64
	// TextContent is the placeholder given to new texts.
	TextContent string
	// TextShadow draws a soft shadow under texts.
	TextShadow bool
}

const (
	DefaultWidth          = 5
	DefaultTextSizeFactor = 4
	DefaultTextContent    = "New Text"
)

// DefaultSettings is a white five pixel brush.
func DefaultSettings() Settings {
	return Settings{
		Tool:           ToolBrush,
		Color:          color.RGBA{255, 255, 255, 255},
		Width:          DefaultWidth,
		TextSizeFactor: DefaultTextSizeFactor,
		TextContent:    DefaultTextContent,
	}
}

func (s Settings) fontSize() float64 {
	f := s.TextSizeFactor
	if f <= 0 {
		f = DefaultTextSizeFactor
	}
	return s.Width * f
}
