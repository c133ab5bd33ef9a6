package mapview

import (
	"image"
	"time"

	"github.com/phanxgames/drawpool"
)

// OutfitLayer is a grayscale mask drawn over the outfit base with its color
// multiplied in.
type OutfitLayer struct {
	Sprite Sprite
	Color  drawpool.Color
}

// Outfit is the look of a creature.
type Outfit struct {
	Sprite Sprite
	Layers []OutfitLayer
}

// Creature is a moving map thing with an outfit, squares and an information
// bar.
type Creature struct {
	ID       uint32
	Name     string
	Position Position
	Outfit   Outfit
	// OutfitColor tints the whole outfit. The zero value draws it untinted.
	OutfitColor drawpool.Color
	// OutfitShader, when set, draws the outfit through a shader program.
	OutfitShader drawpool.ShaderProgram
	// WalkOffset is the displacement from Position while walking, in source
	// pixels.
	WalkOffset image.Point
	Light      Light

	healthPercent int
	infoColor     drawpool.Color

	staticSquare     drawpool.Color
	showStaticSquare bool

	timedSquare      drawpool.Color
	timedSquareUntil time.Time
}

// NewCreature returns a creature at full health.
func NewCreature(id uint32, name string) *Creature {
	c := &Creature{ID: id, Name: name}
	c.SetHealthPercent(100)
	return c
}

// SetHealthPercent sets the health and updates the information color.
func (c *Creature) SetHealthPercent(p int) {
	c.healthPercent = max(0, min(p, 100))
	c.infoColor = healthColor(c.healthPercent)
}

// HealthPercent returns the health in [0, 100].
func (c *Creature) HealthPercent() int { return c.healthPercent }

// InformationColor returns the color of the health bar and name.
func (c *Creature) InformationColor() drawpool.Color { return c.infoColor }

// IsDead reports whether the creature has no health left.
func (c *Creature) IsDead() bool { return c.healthPercent <= 0 }

func healthColor(p int) drawpool.Color {
	switch {
	case p > 92:
		return drawpool.ColorFromRGBA8(0x00, 0xBC, 0x00, 0xFF)
	case p > 60:
		return drawpool.ColorFromRGBA8(0x50, 0xA1, 0x50, 0xFF)
	case p > 30:
		return drawpool.ColorFromRGBA8(0xA1, 0xA1, 0x00, 0xFF)
	case p > 8:
		return drawpool.ColorFromRGBA8(0xBF, 0x0A, 0x0A, 0xFF)
	case p > 3:
		return drawpool.ColorFromRGBA8(0x91, 0x0F, 0x0F, 0xFF)
	default:
		return drawpool.ColorFromRGBA8(0x85, 0x0C, 0x0C, 0xFF)
	}
}

// ShowStaticSquare draws a border of col around the creature until hidden.
func (c *Creature) ShowStaticSquare(col drawpool.Color) {
	c.staticSquare = col
	c.showStaticSquare = true
}

// HideStaticSquare removes the static square.
func (c *Creature) HideStaticSquare() { c.showStaticSquare = false }

// TimedSquareDuration is how long a timed square stays visible.
const TimedSquareDuration = time.Second

// ShowTimedSquare draws an inner border of col for TimedSquareDuration from
// now.
func (c *Creature) ShowTimedSquare(col drawpool.Color, now time.Time) {
	c.timedSquare = col
	c.timedSquareUntil = now.Add(TimedSquareDuration)
}

func (c *Creature) timedSquareVisible(now time.Time) bool {
	return now.Before(c.timedSquareUntil)
}

// EmitDrawIntents draws the squares and the outfit at ctx.Dest plus the walk
// offset, and registers the creature light.
func (c *Creature) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	p := dp.Painter()
	dest := ctx.Dest.Add(ctx.scalePoint(c.WalkOffset))
	width := max(ctx.scale(2), 1)

	if c.timedSquareVisible(ctx.Now) {
		inset := ctx.scale(2)
		at := dest.Add(image.Pt(inset, inset))
		size := ctx.scale(SpriteSize - 4)
		p.SetColor(c.timedSquare)
		dp.AddBoundingRect(image.Rectangle{Min: at, Max: at.Add(image.Pt(size, size))}, width)
		p.ResetColor()
	}
	if c.showStaticSquare {
		size := ctx.scale(SpriteSize)
		p.SetColor(c.staticSquare)
		dp.AddBoundingRect(image.Rectangle{Min: dest, Max: dest.Add(image.Pt(size, size))}, width)
		p.ResetColor()
	}

	c.drawOutfit(dp, ctx, dest)

	if ctx.Light != nil && c.Light.Intensity > 0 {
		center := dest.Add(ctx.scalePoint(image.Pt(SpriteSize*10/18, SpriteSize*10/18)))
		ctx.Light.AddLightSource(center, c.Light)
	}
}

func (c *Creature) drawOutfit(dp *drawpool.DrawPool, ctx *DrawContext, dest image.Point) {
	base := c.Outfit.Sprite
	if base.Empty() {
		return
	}
	p := dp.Painter()
	tinted := c.OutfitColor != (drawpool.Color{})
	if tinted {
		p.SetColor(c.OutfitColor)
	}
	if c.OutfitShader != nil {
		p.SetShaderProgram(c.OutfitShader)
		defer p.ResetShaderProgram()
	}
	dp.AddTexturedRect(ctx.spriteRect(dest, base.Size()), base.Texture, base.src())

	if len(c.Outfit.Layers) > 0 {
		oldColor := p.Color()
		oldComposition := p.CompositionMode()
		p.SetCompositionMode(drawpool.CompositionMultiply)
		for _, l := range c.Outfit.Layers {
			if l.Sprite.Empty() {
				continue
			}
			p.SetColor(l.Color)
			dp.AddTexturedRect(ctx.spriteRect(dest, l.Sprite.Size()), l.Sprite.Texture, l.Sprite.src())
		}
		p.SetColor(oldColor)
		p.SetCompositionMode(oldComposition)
	}

	if tinted {
		p.ResetColor()
	}
}

// Information bar geometry, in layer pixels.
const (
	infoBarWidth  = 27
	infoBarHeight = 4
	infoNameGap   = 12
)

// EmitInformation draws the health bar and name above the creature. Dest is
// the creature tile as for EmitDrawIntents; both rects are kept inside
// ctx.Bounds.
func (c *Creature) EmitInformation(dp *drawpool.DrawPool, ctx *DrawContext, names, bars bool) {
	if c.IsDead() || (!names && !bars) {
		return
	}
	p := dp.Painter()
	anchor := ctx.Dest.Add(ctx.scalePoint(c.WalkOffset)).Add(ctx.scalePoint(image.Pt(SpriteSize/2, -2)))

	background := image.Rect(anchor.X-infoBarWidth/2, anchor.Y, anchor.X-infoBarWidth/2+infoBarWidth, anchor.Y+infoBarHeight)
	background = bindRect(background, ctx.Bounds)

	var textSize image.Point
	if ctx.Font != nil {
		textSize = ctx.Font.Measure(c.Name)
	}
	text := image.Rectangle{Min: image.Pt(anchor.X-textSize.X/2, anchor.Y-infoNameGap)}
	text.Max = text.Min.Add(textSize)
	text = bindRect(text, ctx.Bounds)

	if !ctx.Bounds.Empty() {
		if text.Min.Y == ctx.Bounds.Min.Y {
			background = background.Add(image.Pt(0, text.Min.Y+infoNameGap-background.Min.Y))
		}
		if background.Max.Y == ctx.Bounds.Max.Y {
			text = text.Add(image.Pt(0, background.Min.Y-infoNameGap-text.Min.Y))
		}
	}

	if bars {
		health := background.Inset(1)
		health.Max.X = health.Min.X + c.healthPercent*(infoBarWidth-2)/100
		p.SetColor(drawpool.ColorBlack)
		dp.AddFilledRect(background)
		p.SetColor(c.infoColor)
		dp.AddFilledRect(health)
	}
	if names && ctx.Font != nil {
		p.SetColor(c.infoColor)
		ctx.Font.DrawText(dp, c.Name, text.Min)
	}
	p.ResetColor()
}
