package drawpool

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorWhite is the default tint (no color modification).
	ColorWhite = Color{1, 1, 1, 1}
	// ColorBlack is opaque black.
	ColorBlack = Color{0, 0, 0, 1}
	// ColorTransparent is fully transparent black.
	ColorTransparent = Color{}
)

// ColorFromRGBA8 builds a Color from 8-bit channels.
func ColorFromRGBA8(r, g, b, a uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, float64(a) / 255}
}

// ColorFrom8bit decodes the 6x6x6 palette index used by the game protocol for
// light and outfit colors. Indices >= 216 decode to black.
func ColorFrom8bit(c uint8) Color {
	if c >= 216 {
		return ColorBlack
	}
	r := int(c/36) % 6 * 51
	g := int(c/6) % 6 * 51
	b := int(c) % 6 * 51
	return ColorFromRGBA8(uint8(r), uint8(g), uint8(b), 255)
}

// Scale returns c with its RGB channels multiplied by f. Alpha is kept.
func (c Color) Scale(f float64) Color {
	return Color{clamp01(c.R * f), clamp01(c.G * f), clamp01(c.B * f), c.A}
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: to8(c.R * c.A),
		G: to8(c.G * c.A),
		B: to8(c.B * c.A),
		A: to8(c.A),
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CompositionMode selects how a draw call is combined with the target.
// Each maps to a specific ebiten.Blend value.
type CompositionMode uint8

const (
	CompositionNormal       CompositionMode = iota // source-over alpha blending
	CompositionMultiply                            // source * destination
	CompositionAdd                                 // additive / lighter
	CompositionReplace                             // opaque copy, no blending
	CompositionDestBlending                        // keep destination where the source is opaque
	CompositionLight                               // destination scaled by source color
	CompositionScreen                              // 1 - (1-src)*(1-dst)
	CompositionErase                               // destination-out
)

// EbitenBlend returns the ebiten.Blend value corresponding to this mode.
func (m CompositionMode) EbitenBlend() ebiten.Blend {
	switch m {
	case CompositionNormal:
		return ebiten.BlendSourceOver
	case CompositionMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case CompositionAdd:
		return ebiten.BlendLighter
	case CompositionReplace:
		return ebiten.BlendCopy
	case CompositionDestBlending:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOneMinusDestinationAlpha,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOneMinusDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case CompositionLight:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorZero,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case CompositionScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case CompositionErase:
		return ebiten.BlendDestinationOut
	default:
		return ebiten.BlendSourceOver
	}
}

// String returns the mode name.
func (m CompositionMode) String() string {
	switch m {
	case CompositionNormal:
		return "normal"
	case CompositionMultiply:
		return "multiply"
	case CompositionAdd:
		return "add"
	case CompositionReplace:
		return "replace"
	case CompositionDestBlending:
		return "dest-blending"
	case CompositionLight:
		return "light"
	case CompositionScreen:
		return "screen"
	case CompositionErase:
		return "erase"
	default:
		return "unknown"
	}
}

// DrawMode is the primitive topology of a draw call.
type DrawMode uint8

const (
	DrawNone          DrawMode = iota // no geometry (capability-only objects)
	DrawTriangles                     // independent triangles, 3 vertices each
	DrawTriangleStrip                 // strip, each vertex after the second adds a triangle
)

// LayerType identifies one of the pool's cached render layers. Layers are
// composited in declaration order.
type LayerType uint8

const (
	LayerMap LayerType = iota
	LayerLight
	LayerCreatureInformation
	LayerStaticText
	LayerDynamicText
	LayerForeground
	LayerLast
)

// String returns the layer name used in config files and logs.
func (l LayerType) String() string {
	switch l {
	case LayerMap:
		return "map"
	case LayerLight:
		return "light"
	case LayerCreatureInformation:
		return "creature_information"
	case LayerStaticText:
		return "static_text"
	case LayerDynamicText:
		return "dynamic_text"
	case LayerForeground:
		return "foreground"
	default:
		return "unknown"
	}
}

// CapabilityBlend is the capability id understood by EbitenDevice for
// toggling blending. Other ids are passed through untouched.
const CapabilityBlend = 0x0BE2
