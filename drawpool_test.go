package drawpool

import (
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestCompositionModeEbitenBlend(t *testing.T) {
	modes := []struct {
		mode   CompositionMode
		expect ebiten.Blend
	}{
		{CompositionNormal, ebiten.BlendSourceOver},
		{CompositionAdd, ebiten.BlendLighter},
		{CompositionReplace, ebiten.BlendCopy},
		{CompositionErase, ebiten.BlendDestinationOut},
	}
	for _, tt := range modes {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.EbitenBlend(); got != tt.expect {
				t.Errorf("%s.EbitenBlend() = %v, want %v", tt.mode, got, tt.expect)
			}
		})
	}

	zero := ebiten.Blend{}
	for _, m := range []CompositionMode{CompositionMultiply, CompositionDestBlending, CompositionLight, CompositionScreen} {
		if m.EbitenBlend() == zero {
			t.Errorf("%s.EbitenBlend() returned zero blend", m)
		}
	}
}

func TestCompositionLightScalesDestination(t *testing.T) {
	b := CompositionLight.EbitenBlend()
	if b.BlendFactorSourceRGB != ebiten.BlendFactorZero || b.BlendFactorDestinationRGB != ebiten.BlendFactorSourceColor {
		t.Errorf("light blend = %+v, want dst * src color", b)
	}
}

func TestEnumValues(t *testing.T) {
	if LayerMap != 0 {
		t.Errorf("LayerMap = %d, want 0", LayerMap)
	}
	if LayerForeground != 5 || LayerLast != 6 {
		t.Errorf("LayerForeground, LayerLast = %d, %d, want 5, 6", LayerForeground, LayerLast)
	}
	if DrawNone != 0 {
		t.Errorf("DrawNone = %d, want 0", DrawNone)
	}
	if CompositionNormal != 0 {
		t.Errorf("CompositionNormal = %d, want 0", CompositionNormal)
	}
}

func TestLayerTypeString(t *testing.T) {
	want := []string{"map", "light", "creature_information", "static_text", "dynamic_text", "foreground"}
	for l := LayerMap; l < LayerLast; l++ {
		if got := l.String(); got != want[l] {
			t.Errorf("LayerType(%d).String() = %q, want %q", l, got, want[l])
		}
	}
	if LayerLast.String() != "unknown" {
		t.Errorf("LayerLast.String() = %q", LayerLast.String())
	}
}

func TestColorFrom8bit(t *testing.T) {
	tests := []struct {
		in   uint8
		want Color
	}{
		{0, ColorBlack},
		{215, ColorWhite},
		{36, ColorFromRGBA8(51, 0, 0, 255)},
		{6, ColorFromRGBA8(0, 51, 0, 255)},
		{1, ColorFromRGBA8(0, 0, 51, 255)},
		{210, ColorFromRGBA8(255, 255, 0, 255)},
		{216, ColorBlack},
		{255, ColorBlack},
	}
	for _, tt := range tests {
		if got := ColorFrom8bit(tt.in); got != tt.want {
			t.Errorf("ColorFrom8bit(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorToRGBAPremultiplies(t *testing.T) {
	got := Color{1, 0, 0, 0.5}.toRGBA()
	want := color.RGBA{R: 128, A: 128}
	if got != want {
		t.Errorf("toRGBA = %v, want %v", got, want)
	}
}

func TestColorScale(t *testing.T) {
	got := Color{0.5, 0.8, 1, 0.25}.Scale(2)
	if got != (Color{1, 1, 1, 0.25}) {
		t.Errorf("Scale = %v, want clamped RGB with alpha kept", got)
	}
}
