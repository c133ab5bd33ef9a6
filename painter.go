package drawpool

import (
	"errors"
	"image"
)

// ErrCanvasAllocation is wrapped by errors returned when a render target
// cannot be allocated.
var ErrCanvasAllocation = errors.New("drawpool: canvas allocation failed")

// Device is the GPU capability the core draws through. EbitenDevice is the
// production implementation; tests substitute recording fakes.
type Device interface {
	// DrawCoords issues one draw call of buf with the given state.
	DrawCoords(state PainterState, buf *CoordsBuffer, mode DrawMode)
	// ClearArea clears r on the bound target to transparent.
	ClearArea(r image.Rectangle)
	// SetCapability toggles an opaque capability id.
	SetCapability(id int, enabled bool)
	// NewCanvas allocates an off-screen render target.
	NewCanvas(size image.Point, smooth bool) (Canvas, error)
	// BindCanvas redirects draws to c until the matching ReleaseCanvas.
	// Binds nest.
	BindCanvas(c Canvas)
	ReleaseCanvas()
}

// Canvas is the backing surface of a FrameBuffer. It can be sampled as a
// texture once released.
type Canvas interface {
	Texture
	Clear(c Color)
	Dispose()
}

// Painter tracks the current pipeline state on top of a Device and provides
// immediate-mode drawing for action callbacks.
type Painter struct {
	device Device
	state  PainterState
	saved  []PainterState
	coords CoordsBuffer
}

// NewPainter returns a painter in the default state.
func NewPainter(d Device) *Painter {
	return &Painter{device: d, state: DefaultPainterState()}
}

// Device returns the underlying device.
func (p *Painter) Device() Device { return p.device }

// CurrentState returns a copy of the current state.
func (p *Painter) CurrentState() PainterState { return p.state }

// ExecuteState makes s the current state.
func (p *Painter) ExecuteState(s PainterState) { p.state = s }

// SaveAndResetState pushes the current state and resets to the default.
func (p *Painter) SaveAndResetState() {
	p.saved = append(p.saved, p.state)
	p.state = DefaultPainterState()
}

// RestoreSavedState pops the last saved state. It is a no-op when nothing is
// saved.
func (p *Painter) RestoreSavedState() {
	if len(p.saved) == 0 {
		return
	}
	p.state = p.saved[len(p.saved)-1]
	p.saved = p.saved[:len(p.saved)-1]
}

// SetColor sets the tint multiplied into every draw.
func (p *Painter) SetColor(c Color) { p.state.Color = c }

// ResetColor sets the tint back to white.
func (p *Painter) ResetColor() { p.state.Color = ColorWhite }

// Color returns the current tint.
func (p *Painter) Color() Color { return p.state.Color }

// SetOpacity sets the opacity, clamped to [0, 1].
func (p *Painter) SetOpacity(o float64) { p.state.Opacity = clamp01(o) }

// ResetOpacity makes draws fully opaque.
func (p *Painter) ResetOpacity() { p.state.Opacity = 1 }

// Opacity returns the current opacity.
func (p *Painter) Opacity() float64 { return p.state.Opacity }

// SetCompositionMode sets how draws blend with the target.
func (p *Painter) SetCompositionMode(m CompositionMode) { p.state.Composition = m }

// ResetCompositionMode restores CompositionNormal.
func (p *Painter) ResetCompositionMode() { p.state.Composition = CompositionNormal }

// CompositionMode returns the current composition mode.
func (p *Painter) CompositionMode() CompositionMode { return p.state.Composition }

// SetShaderProgram draws subsequent geometry through s.
func (p *Painter) SetShaderProgram(s ShaderProgram) { p.state.Shader = s }

// ResetShaderProgram removes the shader.
func (p *Painter) ResetShaderProgram() { p.state.Shader = nil }

// SetClipRect restricts drawing to r. The zero rectangle disables clipping.
func (p *Painter) SetClipRect(r image.Rectangle) { p.state.ClipRect = r }

// ResetClipRect disables clipping.
func (p *Painter) ResetClipRect() { p.state.ClipRect = image.Rectangle{} }

// ClipRect returns the clip rectangle.
func (p *Painter) ClipRect() image.Rectangle { return p.state.ClipRect }

// DrawCoords draws buf with the current state.
func (p *Painter) DrawCoords(buf *CoordsBuffer, mode DrawMode) {
	if buf == nil || buf.Empty() {
		return
	}
	p.device.DrawCoords(p.state, buf, mode)
}

// DrawTexturedRect draws src of tex into dest immediately. An empty src
// samples the whole texture.
func (p *Painter) DrawTexturedRect(dest image.Rectangle, tex Texture, src image.Rectangle) {
	if tex == nil || tex.IsEmpty() || dest.Empty() {
		return
	}
	if src.Empty() {
		src = image.Rectangle{Max: tex.Size()}
	}
	p.coords.Clear()
	p.coords.AddQuad(dest, src)
	state := p.state
	state.Texture = tex
	p.device.DrawCoords(state, &p.coords, DrawTriangleStrip)
	p.coords.Clear()
}

// DrawFilledRect fills dest with the current color immediately.
func (p *Painter) DrawFilledRect(dest image.Rectangle) {
	if dest.Empty() {
		return
	}
	p.coords.Clear()
	p.coords.AddFilledQuad(dest)
	state := p.state
	state.Texture = nil
	p.device.DrawCoords(state, &p.coords, DrawTriangleStrip)
	p.coords.Clear()
}

// ClearArea clears r on the bound target.
func (p *Painter) ClearArea(r image.Rectangle) {
	if r.Empty() {
		return
	}
	p.device.ClearArea(r)
}

func (p *Painter) Enable(id int)  { p.device.SetCapability(id, true) }
func (p *Painter) Disable(id int) { p.device.SetCapability(id, false) }
