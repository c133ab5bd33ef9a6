package mapview

import (
	"image"
	"time"

	"github.com/phanxgames/drawpool"
)

// SpriteSize is the edge of one map tile in source pixels.
const SpriteSize = 32

// MaxElevation caps the elevation a tile accumulates from stacked items.
const MaxElevation = 24

// Position is a map coordinate. Lower Z values are higher floors.
type Position struct {
	X, Y, Z int
}

// Translated returns p moved by the given deltas.
func (p Position) Translated(dx, dy, dz int) Position {
	return Position{p.X + dx, p.Y + dy, p.Z + dz}
}

// Light describes light emitted by a thing, or the global light of a map.
type Light struct {
	// Intensity is the radius in tiles for light sources, and the brightness
	// in [0, 255] for the global light.
	Intensity uint8
	// Color is an index into the 6x6x6 palette decoded by
	// drawpool.ColorFrom8bit.
	Color uint8
	// Brightness scales the light color. Zero means full brightness.
	Brightness float64
}

// Drawable is anything that submits draw intents to the open layer of a
// pool.
type Drawable interface {
	EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext)
}

// DrawContext carries per-draw parameters down the producer tree.
type DrawContext struct {
	// Dest is the top-left corner of the tile being drawn, in layer pixels.
	Dest image.Point
	// TileSize is the drawn edge of one tile. Sprites are scaled by
	// TileSize/SpriteSize.
	TileSize int
	// Light collects light sources while the map is drawn. Nil disables
	// light collection.
	Light *LightView
	// Now is the frame time.
	Now time.Time
	// Bounds is the layer area. Texts and information bars are kept inside
	// it.
	Bounds image.Rectangle
	// Font draws names and texts. Nil skips text.
	Font *BitmapFont
}

func (ctx *DrawContext) scale(v int) int {
	if ctx.TileSize <= 0 {
		return v
	}
	return v * ctx.TileSize / SpriteSize
}

func (ctx *DrawContext) scalePoint(p image.Point) image.Point {
	return image.Pt(ctx.scale(p.X), ctx.scale(p.Y))
}

// spriteRect returns the destination of a sprite of the given size whose
// bottom-right corner is aligned with the bottom-right corner of the tile at
// dest.
func (ctx *DrawContext) spriteRect(dest, size image.Point) image.Rectangle {
	s := ctx.scalePoint(size)
	tile := ctx.scale(SpriteSize)
	origin := dest.Add(image.Pt(tile, tile)).Sub(s)
	return image.Rectangle{Min: origin, Max: origin.Add(s)}
}

// bindRect moves r inside b without resizing it. An empty b leaves r as is.
func bindRect(r, b image.Rectangle) image.Rectangle {
	if b.Empty() {
		return r
	}
	if r.Min.X < b.Min.X {
		r = r.Add(image.Pt(b.Min.X-r.Min.X, 0))
	} else if r.Max.X > b.Max.X {
		r = r.Sub(image.Pt(r.Max.X-b.Max.X, 0))
	}
	if r.Min.Y < b.Min.Y {
		r = r.Add(image.Pt(0, b.Min.Y-r.Min.Y))
	} else if r.Max.Y > b.Max.Y {
		r = r.Sub(image.Pt(0, r.Max.Y-b.Max.Y))
	}
	return r
}
