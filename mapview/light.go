package mapview

import (
	"image"
	"math"
	"slices"

	"github.com/phanxgames/drawpool"
)

// darkThreshold is the global light intensity below which light sources are
// drawn.
const darkThreshold = 250

// defaultLightRadius is the radius of the light texture built by
// NewDefaultLightView.
const defaultLightRadius = 256

// LightSource is one light collected while the map is drawn.
type LightSource struct {
	Center     image.Point
	Radius     int
	Color      uint8
	Brightness float64
}

func (s LightSource) brightness() float64 {
	if s.Brightness == 0 {
		return 1
	}
	return s.Brightness
}

// LightView collects the light sources of a frame and draws them into the
// light layer. The layer is cleared to the ambient color of the global light
// and every source adds a radial gradient on top.
type LightView struct {
	global   Light
	sources  []LightSource
	texture  drawpool.Texture
	tileSize int
}

// NewLightView returns a view that draws every source with tex stretched
// over its radius.
func NewLightView(tex drawpool.Texture) *LightView {
	return &LightView{
		global:   Light{Intensity: 255, Color: 215},
		texture:  tex,
		tileSize: SpriteSize,
	}
}

// NewDefaultLightView returns a view using a generated gradient texture.
func NewDefaultLightView() *LightView {
	return NewLightView(drawpool.NewImageTexture(LightImage(defaultLightRadius)))
}

// SetTileSize sets the drawn edge of one tile. Source radii are given in
// tiles.
func (v *LightView) SetTileSize(size int) { v.tileSize = size }

// SetGlobalLight sets the ambient light of the map.
func (v *LightView) SetGlobalLight(l Light) { v.global = l }

// GlobalLight returns the ambient light of the map.
func (v *LightView) GlobalLight() Light { return v.global }

// IsDark reports whether light sources are visible under the global light.
func (v *LightView) IsDark() bool { return v.global.Intensity < darkThreshold }

// AmbientColor returns the light layer clear color.
func (v *LightView) AmbientColor() drawpool.Color {
	return drawpool.ColorFrom8bit(v.global.Color).Scale(float64(v.global.Intensity) / 255)
}

// AddLightSource registers a light at center. A source with the same center
// and color as the previous one is merged into it, keeping the larger
// radius.
func (v *LightView) AddLightSource(center image.Point, l Light) {
	radius := int(l.Intensity) * v.tileSize
	if n := len(v.sources); n > 0 {
		last := &v.sources[n-1]
		if last.Center == center && last.Color == l.Color {
			last.Radius = max(last.Radius, radius)
			return
		}
	}
	v.sources = append(v.sources, LightSource{
		Center:     center,
		Radius:     radius,
		Color:      l.Color,
		Brightness: l.Brightness,
	})
}

// Sources returns the lights collected since the last draw.
func (v *LightView) Sources() []LightSource { return v.sources }

// Reset drops the collected lights.
func (v *LightView) Reset() { v.sources = v.sources[:0] }

// EmitDrawIntents sets the clear color of the open layer to the ambient
// color and draws the collected sources, dimmest first. The sources are
// dropped afterwards.
func (v *LightView) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	defer v.Reset()

	if fb := dp.Current(); fb != nil {
		fb.SetColorClear(v.AmbientColor())
	}
	if !v.IsDark() || v.texture == nil || len(v.sources) == 0 {
		return
	}

	slices.SortStableFunc(v.sources, func(a, b LightSource) int {
		if a.brightness() != b.brightness() {
			if a.brightness() < b.brightness() {
				return -1
			}
			return 1
		}
		return int(a.Color) - int(b.Color)
	})

	p := dp.Painter()
	p.SetCompositionMode(drawpool.CompositionAdd)
	src := image.Rectangle{Max: v.texture.Size()}
	for _, s := range v.sources {
		if s.Radius <= 0 {
			continue
		}
		p.SetColor(drawpool.ColorFrom8bit(s.Color).Scale(s.brightness()))
		dest := image.Rect(s.Center.X-s.Radius, s.Center.Y-s.Radius, s.Center.X+s.Radius, s.Center.Y+s.Radius)
		dp.AddTexturedRect(dest, v.texture, src)
	}
	p.ResetColor()
	p.ResetCompositionMode()
}

// LightImage generates a white radial gradient of the given radius. The
// alpha falls off quadratically from the center and saturates near it.
func LightImage(radius int) *image.NRGBA {
	radius = max(radius, 1)
	size := radius * 2
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(radius)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x-radius) + 0.5
			dy := float64(y-radius) + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)

			intensity := max(0, min((r-dist)/r, 1))
			a := min(intensity*intensity*1.3*255, 255)

			off := img.PixOffset(x, y)
			img.Pix[off+0] = 0xFF
			img.Pix[off+1] = 0xFF
			img.Pix[off+2] = 0xFF
			img.Pix[off+3] = uint8(a)
		}
	}
	return img
}
