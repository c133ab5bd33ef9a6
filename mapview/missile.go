package mapview

import (
	"image"
	"math"
	"time"

	"github.com/phanxgames/drawpool"
)

// MissileTicksPerFrame paces missile flight. A missile crossing d tiles
// flies for 2*MissileTicksPerFrame*sqrt(d).
const MissileTicksPerFrame = 75 * time.Millisecond

// Missile is a sprite flying between two tiles of one floor. It is drawn on
// the map layer after the tiles of its floor.
type Missile struct {
	Sprite   Sprite
	From, To Position
	Duration time.Duration

	start time.Time
}

// NewMissile returns a missile leaving from at now. It returns nil when the
// path is empty or crosses floors.
func NewMissile(s Sprite, from, to Position, now time.Time) *Missile {
	if from == to || from.Z != to.Z {
		return nil
	}
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	length := math.Hypot(dx, dy)
	return &Missile{
		Sprite:   s,
		From:     from,
		To:       to,
		Duration: time.Duration(float64(2*MissileTicksPerFrame) * math.Sqrt(length)),
		start:    now,
	}
}

// Fraction returns the traveled part of the path at now, in [0, 1].
func (m *Missile) Fraction(now time.Time) float64 {
	if m.Duration <= 0 {
		return 1
	}
	f := float64(now.Sub(m.start)) / float64(m.Duration)
	return max(0, min(f, 1))
}

// Done reports whether the missile has arrived.
func (m *Missile) Done(now time.Time) bool {
	return now.Sub(m.start) >= m.Duration
}

// EmitDrawIntents draws the sprite along the path. ctx.Dest is the origin
// tile.
func (m *Missile) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	if m.Sprite.Empty() {
		return
	}
	f := m.Fraction(ctx.Now)
	delta := image.Pt(
		int(float64((m.To.X-m.From.X)*SpriteSize)*f),
		int(float64((m.To.Y-m.From.Y)*SpriteSize)*f),
	)
	dest := ctx.Dest.Add(ctx.scalePoint(delta))
	dp.AddTexturedRect(ctx.spriteRect(dest, m.Sprite.Size()), m.Sprite.Texture, m.Sprite.src())
}
