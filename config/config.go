// Package config loads selectionkit settings from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/layout"
)

type SelectionOptions struct {
	NonDirectionalIsDirectional bool          `toml:"non-directional-is-directional"`
	ExtendByBoundaryGrows       bool          `toml:"extend-by-boundary-grows"`
	SelectTrailingWhitespace    bool          `toml:"select-trailing-whitespace"`
	SnapExtendToAtomic          bool          `toml:"snap-extend-to-atomic"`
	FrameFullSelection          bool          `toml:"frame-full-selection"`
	CaretBlinkInterval          time.Duration `toml:"caret-blink-interval"`
	MultiClickInterval          time.Duration `toml:"multi-click-interval"`
	MultiClickSlop              int           `toml:"multi-click-slop"`
}

type LayoutOptions struct {
	Width      int `toml:"width"`
	LineHeight int `toml:"line-height"`
	CharWidth  int `toml:"char-width"`
}

type LogOptions struct {
	Debug bool   `toml:"debug"`
	Path  string `toml:"path"`
}

type Config struct {
	Selection SelectionOptions `toml:"selection"`
	Layout    LayoutOptions    `toml:"layout"`
	Log       LogOptions       `toml:"log"`
}

func Default() Config {
	b := editing.DefaultBehavior()
	l := layout.DefaultOptions()
	return Config{
		Selection: SelectionOptions{
			NonDirectionalIsDirectional: b.NonDirectionalSelectionIsDirectional,
			ExtendByBoundaryGrows:       b.ExtendByBoundaryGrows,
			SelectTrailingWhitespace:    b.SelectTrailingWhitespace,
			SnapExtendToAtomic:          b.SnapExtendToAtomicRegions,
			FrameFullSelection:          b.FrameFullSelection,
			CaretBlinkInterval:          b.CaretBlinkInterval,
			MultiClickInterval:          b.MultiClickInterval,
			MultiClickSlop:              b.MultiClickSlop,
		},
		Layout: LayoutOptions{
			Width:      l.Width,
			LineHeight: l.LineHeight,
			CharWidth:  l.CharWidth,
		},
	}
}

// Parse decodes data over the defaults. Keys it does not know are an error.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Default(), fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Selection.CaretBlinkInterval < 0:
		return fmt.Errorf("config: selection.caret-blink-interval must not be negative")
	case c.Selection.MultiClickInterval < 0:
		return fmt.Errorf("config: selection.multi-click-interval must not be negative")
	case c.Selection.MultiClickSlop < 0:
		return fmt.Errorf("config: selection.multi-click-slop must not be negative")
	case c.Layout.Width <= 0 || c.Layout.LineHeight <= 0 || c.Layout.CharWidth <= 0:
		return fmt.Errorf("config: layout sizes must be positive")
	}
	return nil
}

// Load reads the file at path. An empty path means ConfigPath; a missing
// file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Default(), err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Behavior returns the engine switches.
func (c Config) Behavior() editing.Behavior {
	return editing.Behavior{
		NonDirectionalSelectionIsDirectional: c.Selection.NonDirectionalIsDirectional,
		ExtendByBoundaryGrows:                c.Selection.ExtendByBoundaryGrows,
		SelectTrailingWhitespace:             c.Selection.SelectTrailingWhitespace,
		SnapExtendToAtomicRegions:            c.Selection.SnapExtendToAtomic,
		FrameFullSelection:                   c.Selection.FrameFullSelection,
		CaretBlinkInterval:                   c.Selection.CaretBlinkInterval,
		MultiClickInterval:                   c.Selection.MultiClickInterval,
		MultiClickSlop:                       c.Selection.MultiClickSlop,
	}
}

func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Width:      c.Layout.Width,
		LineHeight: c.Layout.LineHeight,
		CharWidth:  c.Layout.CharWidth,
	}
}

func ConfigDir() (string, error) {
	if v := os.Getenv("SELECTIONKIT_CONFIG_HOME"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "selectionkit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "selectionkit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
