package mapview

import (
	"image"
	"slices"

	"github.com/phanxgames/drawpool"
)

// ItemKind selects the draw pass an item belongs to.
type ItemKind uint8

const (
	ItemGround ItemKind = iota // ground and borders, drawn first
	ItemBottom                 // walls and other always-on-bottom items
	ItemCommon                 // stackable items, drawn newest first
	ItemTop                    // drawn last, above creatures, without elevation
)

// Item is a static map thing.
type Item struct {
	Sprite Sprite
	Kind   ItemKind
	// Elevation raises everything stacked on top of the item, in source pixels.
	Elevation int
	// Tint multiplies the sprite. The zero value draws it untinted.
	Tint  drawpool.Color
	Light Light
}

// EmitDrawIntents draws the item sprite at ctx.Dest and registers its light.
func (it *Item) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	if !it.Sprite.Empty() {
		p := dp.Painter()
		tinted := it.Tint != (drawpool.Color{})
		if tinted {
			p.SetColor(it.Tint)
		}
		dp.AddTexturedRect(ctx.spriteRect(ctx.Dest, it.Sprite.Size()), it.Sprite.Texture, it.Sprite.src())
		if tinted {
			p.ResetColor()
		}
	}
	if ctx.Light != nil && it.Light.Intensity > 0 {
		half := ctx.scale(SpriteSize / 2)
		ctx.Light.AddLightSource(ctx.Dest.Add(image.Pt(half, half)), it.Light)
	}
}

// Tile is one map cell holding items, creatures and effects.
type Tile struct {
	Position Position

	items     []*Item
	creatures []*Creature
	effects   []*Effect

	drawElevation int
}

// NewTile returns an empty tile at pos.
func NewTile(pos Position) *Tile {
	return &Tile{Position: pos}
}

// AddItem appends it to the tile stack.
func (t *Tile) AddItem(it *Item) {
	t.items = append(t.items, it)
}

// RemoveItem removes it and reports whether it was on the tile.
func (t *Tile) RemoveItem(it *Item) bool {
	i := slices.Index(t.items, it)
	if i < 0 {
		return false
	}
	t.items = slices.Delete(t.items, i, i+1)
	return true
}

// AddCreature places c on the tile.
func (t *Tile) AddCreature(c *Creature) {
	if !slices.Contains(t.creatures, c) {
		t.creatures = append(t.creatures, c)
	}
}

// RemoveCreature removes c and reports whether it was on the tile.
func (t *Tile) RemoveCreature(c *Creature) bool {
	i := slices.Index(t.creatures, c)
	if i < 0 {
		return false
	}
	t.creatures = slices.Delete(t.creatures, i, i+1)
	return true
}

// AddEffect appends e to the tile effects.
func (t *Tile) AddEffect(e *Effect) {
	t.effects = append(t.effects, e)
}

// RemoveEffect removes e and reports whether it was on the tile.
func (t *Tile) RemoveEffect(e *Effect) bool {
	i := slices.Index(t.effects, e)
	if i < 0 {
		return false
	}
	t.effects = slices.Delete(t.effects, i, i+1)
	return true
}

// Effects returns the effects in insertion order.
func (t *Tile) Effects() []*Effect { return t.effects }

// Items returns the item stack in insertion order.
func (t *Tile) Items() []*Item { return t.items }

// Creatures returns the creatures standing on the tile.
func (t *Tile) Creatures() []*Creature { return t.creatures }

// IsEmpty reports whether the tile holds nothing.
func (t *Tile) IsEmpty() bool {
	return len(t.items) == 0 && len(t.creatures) == 0 && len(t.effects) == 0
}

// HasLight reports whether anything on the tile emits light.
func (t *Tile) HasLight() bool {
	for _, it := range t.items {
		if it.Light.Intensity > 0 {
			return true
		}
	}
	for _, c := range t.creatures {
		if c.Light.Intensity > 0 {
			return true
		}
	}
	return false
}

// Elevation returns the elevation reached by the last draw.
func (t *Tile) Elevation() int { return t.drawElevation }

// EmitDrawIntents draws ground, bottom items, common items (newest first),
// creatures, effects and top items, in that order. Everything but the top
// items is raised by the elevation accumulated so far.
func (t *Tile) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	t.drawElevation = 0

	for _, it := range t.items {
		if it.Kind == ItemGround {
			t.drawItem(dp, ctx, it)
		}
	}
	for _, it := range t.items {
		if it.Kind == ItemBottom {
			t.drawItem(dp, ctx, it)
		}
	}
	for i := len(t.items) - 1; i >= 0; i-- {
		if it := t.items[i]; it.Kind == ItemCommon {
			t.drawItem(dp, ctx, it)
		}
	}

	sub := *ctx
	sub.Dest = t.elevated(ctx)
	for _, c := range t.creatures {
		c.EmitDrawIntents(dp, &sub)
	}
	for _, e := range t.effects {
		e.EmitDrawIntents(dp, &sub)
	}

	for _, it := range t.items {
		if it.Kind == ItemTop {
			it.EmitDrawIntents(dp, ctx)
		}
	}
}

func (t *Tile) elevated(ctx *DrawContext) image.Point {
	e := ctx.scale(t.drawElevation)
	return ctx.Dest.Sub(image.Pt(e, e))
}

func (t *Tile) drawItem(dp *drawpool.DrawPool, ctx *DrawContext, it *Item) {
	sub := *ctx
	sub.Dest = t.elevated(ctx)
	it.EmitDrawIntents(dp, &sub)
	t.drawElevation = min(t.drawElevation+it.Elevation, MaxElevation)
}
