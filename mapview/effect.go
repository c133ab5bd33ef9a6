package mapview

import (
	"time"

	"github.com/phanxgames/drawpool"
)

// DefaultEffectDuration is the lifetime of an effect created without one.
const DefaultEffectDuration = 600 * time.Millisecond

// Effect is a timed sprite on a tile, drawn above creatures and below top
// items.
type Effect struct {
	Sprite Sprite
	// Duration is the lifetime counted from the start, delay included.
	Duration time.Duration
	// Delay holds the effect back after the start, so chained effects
	// appear one after another.
	Delay time.Duration

	start time.Time
}

// NewEffect returns an effect starting at now.
func NewEffect(s Sprite, duration time.Duration, now time.Time) *Effect {
	if duration <= 0 {
		duration = DefaultEffectDuration
	}
	return &Effect{Sprite: s, Duration: duration, start: now}
}

// WaitFor delays e until first is about to end.
func (e *Effect) WaitFor(first *Effect) {
	end := first.start.Add(first.Duration * 3 / 4)
	if d := end.Sub(e.start); d > 0 {
		e.Delay = d
	}
}

// Visible reports whether the effect draws at now.
func (e *Effect) Visible(now time.Time) bool {
	elapsed := now.Sub(e.start)
	return elapsed >= e.Delay && elapsed < e.Duration
}

// Expired reports whether the effect has run its course.
func (e *Effect) Expired(now time.Time) bool {
	return now.Sub(e.start) >= e.Duration
}

// EmitDrawIntents draws the sprite at ctx.Dest once the delay has passed.
func (e *Effect) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	if e.Sprite.Empty() || !e.Visible(ctx.Now) {
		return
	}
	dp.AddTexturedRect(ctx.spriteRect(ctx.Dest, e.Sprite.Size()), e.Sprite.Texture, e.Sprite.src())
}
