package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/inkboard/internal/export"
	"github.com/example/inkboard/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				// Start with defaults so missing keys are fine
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		// Key = Value or Key: Value
		var key, value string
		var ok bool
		if key, value, ok = strings.Cut(line, "="); !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if unq, err := strconv.Unquote(value); err == nil && strings.HasPrefix(value, "\"") {
			value = unq
		}

		var err error
		switch {
		case current != nil:
			err = current.Set(key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "brush":
			err = setBrushField(&cfg.Brush, key, value)
		case section == "text":
			err = setTextField(&cfg.Text, key, value)
		case section == "export":
			err = setExportField(&cfg.Export, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "output":
		cfg.Output = value
	case "viewport_width":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid viewport_width %q", value)
		}
		cfg.ViewportWidth = n
	}
	return nil
}

func setBrushField(b *Brush, key, value string) error {
	switch key {
	case "color":
		c, err := theme.ParseColor(value)
		if err != nil {
			return err
		}
		b.Color = c
	case "width":
		w, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		b.Width = w
	}
	return nil
}

func setTextField(t *Text, key, value string) error {
	switch key {
	case "content":
		t.Content = value
	case "size_factor":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		t.SizeFactor = f
	case "shadow":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		t.Shadow = b
	}
	return nil
}

func setExportField(e *Export, key, value string) error {
	switch key {
	case "format":
		f, err := export.ParseFormat(value)
		if err != nil {
			return err
		}
		e.Format = f
	case "jpeg_quality":
		q, err := strconv.Atoi(value)
		if err != nil || q < 1 || q > 100 {
			return fmt.Errorf("invalid jpeg_quality %q", value)
		}
		e.JPEGQuality = q
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func parsePositive(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, value)
	}
	return f, nil
}
