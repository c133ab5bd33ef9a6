package drawpool

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// LayerConfig configures the frame buffer of one layer.
type LayerConfig struct {
	// Disabled turns the layer off; its draw calls are dropped.
	Disabled bool `toml:"disabled"`
	// MinUpdateMillis throttles redraws to at most one per interval.
	MinUpdateMillis int `toml:"min_update_ms"`
	// AlphaWriting keeps the clear color's alpha. Without it the canvas is
	// cleared opaque.
	AlphaWriting bool `toml:"alpha_writing"`
	// ClearColor is the non-premultiplied RGBA the canvas is cleared to.
	ClearColor [4]float64 `toml:"clear_color"`
	// Smooth selects linear filtering when the canvas is sampled.
	Smooth bool `toml:"smooth"`
}

func (c LayerConfig) clearColor() Color {
	return Color{c.ClearColor[0], c.ClearColor[1], c.ClearColor[2], c.ClearColor[3]}
}

// LayersConfig holds one LayerConfig per LayerType.
type LayersConfig struct {
	Map                 LayerConfig `toml:"map"`
	Light               LayerConfig `toml:"light"`
	CreatureInformation LayerConfig `toml:"creature_information"`
	StaticText          LayerConfig `toml:"static_text"`
	DynamicText         LayerConfig `toml:"dynamic_text"`
	Foreground          LayerConfig `toml:"foreground"`
}

func (c *LayersConfig) get(l LayerType) LayerConfig {
	if p := c.ptr(l); p != nil {
		return *p
	}
	return LayerConfig{}
}

func (c *LayersConfig) ptr(l LayerType) *LayerConfig {
	switch l {
	case LayerMap:
		return &c.Map
	case LayerLight:
		return &c.Light
	case LayerCreatureInformation:
		return &c.CreatureInformation
	case LayerStaticText:
		return &c.StaticText
	case LayerDynamicText:
		return &c.DynamicText
	case LayerForeground:
		return &c.Foreground
	}
	return nil
}

// Config configures a DrawPool.
type Config struct {
	// Debug enables per-frame stats logging and draw object assertions.
	Debug  bool         `toml:"debug"`
	Layers LayersConfig `toml:"layers"`
}

// DefaultConfig returns the settings the game client ships with.
func DefaultConfig() Config {
	overlay := LayerConfig{AlphaWriting: true, Smooth: true}
	dynamic := overlay
	dynamic.MinUpdateMillis = 50
	return Config{
		Layers: LayersConfig{
			Map:                 LayerConfig{ClearColor: [4]float64{0, 0, 0, 1}, Smooth: true},
			Light:               LayerConfig{ClearColor: [4]float64{0, 0, 0, 1}, Smooth: true},
			CreatureInformation: overlay,
			StaticText:          overlay,
			DynamicText:         dynamic,
			Foreground:          overlay,
		},
	}
}

// LoadConfig decodes TOML data over DefaultConfig. Unknown keys are errors.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("drawpool: failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	for l := LayerMap; l < LayerLast; l++ {
		lc := c.Layers.get(l)
		if lc.MinUpdateMillis < 0 {
			errs = append(errs, fmt.Errorf("layer %s: min_update_ms must not be negative, got %d", l, lc.MinUpdateMillis))
		}
		for _, v := range lc.ClearColor {
			if v < 0 || v > 1 {
				errs = append(errs, fmt.Errorf("layer %s: clear_color components must be in [0, 1], got %v", l, lc.ClearColor))
				break
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("drawpool: invalid config: %w", err)
	}
	return nil
}
