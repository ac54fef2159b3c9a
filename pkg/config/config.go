// Package config holds the thresholds that drive the gesture state machine
// and the stroke recorder, and loads them from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Preset names.
const (
	PresetDefault = "default"
	PresetLegacy  = "legacy"
)

// Settings names every threshold the pen uses.
type Settings struct {
	Preset string `mapstructure:"preset" yaml:"preset"`
	Anchor string `mapstructure:"anchor" yaml:"anchor"`

	// MaxDistance is the hover threshold (distance to field).
	MaxDistance float64 `mapstructure:"max_distance" yaml:"max_distance"`

	// Thickness is the base line thickness.
	Thickness float64      `mapstructure:"thickness" yaml:"thickness"`
	Color     domain.Color `mapstructure:"color" yaml:"color"`

	// MoveResolution is the minimum motion epsilon. Zero disables the filter.
	MoveResolution float64 `mapstructure:"move_resolution" yaml:"move_resolution"`

	// SegmentCeiling is the maximum number of points per stroke.
	SegmentCeiling int `mapstructure:"segment_ceiling" yaml:"segment_ceiling"`

	// SmoothingThreshold is the lazy-brush radius. Zero disables smoothing.
	SmoothingThreshold float64 `mapstructure:"smoothing_threshold" yaml:"smoothing_threshold"`

	GrabDebounceWindow time.Duration `mapstructure:"grab_debounce_window" yaml:"grab_debounce_window"`
	GrabThreshold      float64       `mapstructure:"grab_threshold" yaml:"grab_threshold"`

	DrawPinchDistance   float64 `mapstructure:"draw_pinch_distance" yaml:"draw_pinch_distance"`
	DrawSelectThreshold float64 `mapstructure:"draw_select_threshold" yaml:"draw_select_threshold"`

	TouchDistance float64 `mapstructure:"touch_distance" yaml:"touch_distance"`
	OpenDistance  float64 `mapstructure:"open_distance" yaml:"open_distance"`
	SelectCurve   bool    `mapstructure:"select_curve" yaml:"select_curve"`
}

// Default returns the settings of the default preset.
func Default() Settings {
	return Settings{
		Preset:              PresetDefault,
		Anchor:              domain.DefaultAnchor,
		MaxDistance:         0.05,
		Thickness:           domain.DefaultThickness,
		Color:               domain.White,
		MoveResolution:      0.001,
		SegmentCeiling:      350,
		SmoothingThreshold:  0.008,
		GrabDebounceWindow:  time.Second / 30,
		GrabThreshold:       0.90,
		DrawPinchDistance:   0.03,
		DrawSelectThreshold: 0.01,
		TouchDistance:       0.01,
		OpenDistance:        0.03,
		SelectCurve:         true,
	}
}

// Legacy returns the settings of the first pen iteration: short segments,
// every sample kept, no smoothing.
func Legacy() Settings {
	s := Default()
	s.Preset = PresetLegacy
	s.SegmentCeiling = 128
	s.MoveResolution = 0
	s.SmoothingThreshold = 0
	return s
}

// Preset returns the named preset.
func Preset(name string) (Settings, error) {
	switch name {
	case "", PresetDefault:
		return Default(), nil
	case PresetLegacy:
		return Legacy(), nil
	}
	return Settings{}, fmt.Errorf("unknown preset %q", name)
}

// Validate checks the invariants the state machine relies on.
func (s Settings) Validate() error {
	var errs []error
	if s.Thickness < 0 {
		errs = append(errs, errors.New("thickness must not be negative"))
	}
	if s.SegmentCeiling < 2 {
		errs = append(errs, errors.New("segment_ceiling must be at least 2"))
	}
	if s.MoveResolution < 0 || s.SmoothingThreshold < 0 {
		errs = append(errs, errors.New("move_resolution and smoothing_threshold must not be negative"))
	}
	if s.OpenDistance <= s.TouchDistance {
		errs = append(errs, errors.New("open_distance must be greater than touch_distance"))
	}
	if s.GrabDebounceWindow < 0 {
		errs = append(errs, errors.New("grab_debounce_window must not be negative"))
	}
	if s.Anchor == "" {
		errs = append(errs, errors.New("anchor must not be empty"))
	}
	return errors.Join(errs...)
}

// Load reads a YAML settings file. Keys not present keep the value of the
// selected preset. A missing file yields the default preset.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings on top of the preset they name.
func Parse(data []byte) (Settings, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return Decode(raw)
}

// Decode applies a generic key/value map on top of the preset it names.
func Decode(raw map[string]any) (Settings, error) {
	name, _ := raw["preset"].(string)
	s, err := Preset(name)
	if err != nil {
		return Settings{}, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			secondsToDurationHook,
			colorHook,
		),
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// secondsToDurationHook lets durations be written as float seconds (0.0333).
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	}
	return data, nil
}

// colorHook accepts [r, g, b] or [r, g, b, a] lists.
func colorHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(domain.Color{}) {
		return data, nil
	}
	list, ok := data.([]any)
	if !ok {
		return data, nil
	}
	if len(list) != 3 && len(list) != 4 {
		return nil, fmt.Errorf("color needs 3 or 4 components, got %d", len(list))
	}
	c := [4]float64{1, 1, 1, 1}
	for i, item := range list {
		switch n := item.(type) {
		case float64:
			c[i] = n
		case int:
			c[i] = float64(n)
		default:
			return nil, fmt.Errorf("color component %d is not a number", i)
		}
	}
	return domain.Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
