package drawpool

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Layers.Map.AlphaWriting {
		t.Error("map layer should clear opaque")
	}
	if !cfg.Layers.Foreground.AlphaWriting {
		t.Error("foreground layer should keep alpha")
	}
	if cfg.Layers.DynamicText.MinUpdateMillis != 50 {
		t.Errorf("dynamic text interval = %d, want 50", cfg.Layers.DynamicText.MinUpdateMillis)
	}
}

func TestLoadConfig(t *testing.T) {
	data := `
debug = true

[layers.light]
clear_color = [0.1, 0.2, 0.3, 1.0]
smooth = false

[layers.static_text]
disabled = true
min_update_ms = 250
`
	cfg, err := LoadConfig([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if got := cfg.Layers.Light.clearColor(); got != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("light clear color = %v", got)
	}
	if cfg.Layers.Light.Smooth {
		t.Error("light Smooth = true, want false")
	}
	if !cfg.Layers.StaticText.Disabled || cfg.Layers.StaticText.MinUpdateMillis != 250 {
		t.Errorf("static text = %+v", cfg.Layers.StaticText)
	}
	// untouched tables keep their defaults
	if cfg.Layers.DynamicText != DefaultConfig().Layers.DynamicText {
		t.Errorf("dynamic text = %+v, want defaults", cfg.Layers.DynamicText)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "[layers.map]\nblend = true\n", "failed to parse config"},
		{"unknown layer", "[layers.minimap]\ndisabled = true\n", "failed to parse config"},
		{"syntax", "debug = \n", "failed to parse config"},
		{"negative interval", "[layers.foreground]\nmin_update_ms = -5\n", "min_update_ms"},
		{"color range", "[layers.map]\nclear_color = [0.0, 0.0, 2.0, 1.0]\n", "clear_color"},
	}
	for _, tt := range tests {
		_, err := LoadConfig([]byte(tt.data))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layers.Map.MinUpdateMillis = -1
	cfg.Layers.Light.ClearColor[0] = -0.5
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"layer map", "layer light"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
