package mapview

import (
	"image"
	"testing"

	"github.com/phanxgames/drawpool"
)

func TestLightView_MergeSamePosition(t *testing.T) {
	lv := NewLightView(newTexture(8, 8))
	at := image.Pt(16, 16)

	lv.AddLightSource(at, Light{Intensity: 2, Color: 215})
	lv.AddLightSource(at, Light{Intensity: 5, Color: 215})
	lv.AddLightSource(at, Light{Intensity: 1, Color: 215})

	src := lv.Sources()
	if len(src) != 1 {
		t.Fatalf("sources = %d, want 1", len(src))
	}
	if src[0].Radius != 5*SpriteSize {
		t.Errorf("radius = %d, want %d", src[0].Radius, 5*SpriteSize)
	}
}

func TestLightView_NoMergeOnDifferentColorOrPosition(t *testing.T) {
	lv := NewLightView(newTexture(8, 8))
	lv.AddLightSource(image.Pt(0, 0), Light{Intensity: 2, Color: 215})
	lv.AddLightSource(image.Pt(0, 0), Light{Intensity: 2, Color: 30})
	lv.AddLightSource(image.Pt(32, 0), Light{Intensity: 2, Color: 30})

	if n := len(lv.Sources()); n != 3 {
		t.Errorf("sources = %d, want 3", n)
	}
}

func TestLightView_IsDark(t *testing.T) {
	tests := []struct {
		intensity uint8
		want      bool
	}{
		{0, true},
		{249, true},
		{250, false},
		{255, false},
	}
	lv := NewLightView(nil)
	for _, tt := range tests {
		lv.SetGlobalLight(Light{Intensity: tt.intensity, Color: 215})
		if got := lv.IsDark(); got != tt.want {
			t.Errorf("IsDark(%d) = %v, want %v", tt.intensity, got, tt.want)
		}
	}
}

func TestLightView_AmbientColor(t *testing.T) {
	lv := NewLightView(nil)
	lv.SetGlobalLight(Light{Intensity: 51, Color: 215})
	got := lv.AmbientColor()
	want := drawpool.Color{R: 0.2, G: 0.2, B: 0.2, A: 1}
	if !colorNear(got, want) {
		t.Errorf("AmbientColor = %v, want %v", got, want)
	}
}

func TestLightView_EmitSortsAndClears(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerLight)

	tex := newTexture(8, 8)
	lv := NewLightView(tex)
	lv.SetGlobalLight(Light{Intensity: 40, Color: 215})
	lv.AddLightSource(image.Pt(100, 100), Light{Intensity: 1, Color: 30})
	lv.AddLightSource(image.Pt(200, 100), Light{Intensity: 1, Color: 5, Brightness: 0.5})
	lv.AddLightSource(image.Pt(300, 100), Light{Intensity: 1, Color: 10})

	lv.EmitDrawIntents(dp, &DrawContext{TileSize: 32})

	if got, want := dp.Current().ColorClear(), lv.AmbientColor(); got != want {
		t.Errorf("clear color = %v, want %v", got, want)
	}
	got := methods(dp.Current())
	if len(got) != 3 {
		t.Fatalf("methods = %d, want 3", len(got))
	}
	// dimmest first, then by color
	wantCenters := []image.Point{{200, 100}, {300, 100}, {100, 100}}
	for i, d := range got {
		r := d.dest()
		if c := r.Min.Add(r.Size().Div(2)); c != wantCenters[i] {
			t.Errorf("light %d center = %v, want %v", i, c, wantCenters[i])
		}
		if d.state.Composition != drawpool.CompositionAdd {
			t.Errorf("light %d composition = %v, want add", i, d.state.Composition)
		}
		if d.texture() != tex {
			t.Errorf("light %d not drawn with the light texture", i)
		}
	}
	if r := got[1].dest(); r != image.Rect(268, 68, 332, 132) {
		t.Errorf("light rect = %v, want (268,68)-(332,132)", r)
	}
	if n := len(lv.Sources()); n != 0 {
		t.Errorf("sources after emit = %d, want 0", n)
	}
	if dp.Painter().CompositionMode() != drawpool.CompositionNormal {
		t.Error("composition not reset")
	}
}

func TestLightView_NotDarkDrawsNothing(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerLight)

	lv := NewLightView(newTexture(8, 8))
	lv.AddLightSource(image.Pt(100, 100), Light{Intensity: 1, Color: 215})
	lv.EmitDrawIntents(dp, &DrawContext{TileSize: 32})

	if n := len(methods(dp.Current())); n != 0 {
		t.Errorf("methods = %d, want 0", n)
	}
	if got := dp.Current().ColorClear(); got != drawpool.ColorWhite {
		t.Errorf("clear color = %v, want white", got)
	}
}

func TestLightImage_Falloff(t *testing.T) {
	img := LightImage(64)
	if b := img.Bounds(); b != image.Rect(0, 0, 128, 128) {
		t.Fatalf("bounds = %v, want 128x128", b)
	}
	if a := img.NRGBAAt(64, 64).A; a != 255 {
		t.Errorf("center alpha = %d, want 255", a)
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if a := img.NRGBAAt(64, 0).A; a != 0 {
		t.Errorf("edge alpha = %d, want 0", a)
	}
	// intensity about 0.5 halfway out: 0.25 * 1.3 * 255
	if a := img.NRGBAAt(96, 64).A; a < 75 || a > 88 {
		t.Errorf("midway alpha = %d, want about 80", a)
	}
	if c := img.NRGBAAt(96, 64); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("color = %v, want white", c)
	}
}

func colorNear(a, b drawpool.Color) bool {
	const eps = 1e-6
	near := func(x, y float64) bool { return x-y < eps && y-x < eps }
	return near(a.R, b.R) && near(a.G, b.G) && near(a.B, b.B) && near(a.A, b.A)
}
