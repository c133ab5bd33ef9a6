package drawpool

import (
	"fmt"
	"image"
	"math"
	"slices"
	"time"
)

// ScheduledAction is one entry of a FrameBuffer's playback queue: either an
// ActionFunc or a *DrawObject.
type ScheduledAction interface {
	scheduledAction()
}

// ActionFunc is a side-effecting callback replayed in queue order. It runs
// while the owning FrameBuffer is bound and may draw through the Painter
// directly.
type ActionFunc func()

func (ActionFunc) scheduledAction() {}

// DrawObject is a batch of draw methods sharing one PainterState. It carries
// either Coords (caller-supplied geometry) or methods, never both. Objects
// are owned by their FrameBuffer and reused once the layer is drawn.
type DrawObject struct {
	State  PainterState
	Coords *CoordsBuffer
	Mode   DrawMode

	methods []method
}

func (*DrawObject) scheduledAction() {}

// Methods returns a copy of the queued methods.
func (o *DrawObject) Methods() []DrawMethod {
	out := make([]DrawMethod, len(o.methods))
	for i, m := range o.methods {
		out[i] = m.public()
	}
	return out
}

// MethodCount returns the number of queued methods.
func (o *DrawObject) MethodCount() int { return len(o.methods) }

// statusInvalid is never produced by a reset hash, so a buffer holding it
// always reports a modification.
const statusInvalid uint64 = math.MaxUint64

// destEntry records the most recent draw at a destination rectangle.
type destEntry struct {
	obj    *DrawObject
	method method
	// opaque is set for state-opaque textured rects, the only draws that may
	// be replaced by a later covering draw.
	opaque  bool
	texID   uint32
	texSize image.Point
	src     image.Rectangle
	clip    image.Rectangle
	comp    CompositionMode
}

// FrameBuffer is an off-screen render target with a queue of scheduled
// actions and hash-based dirty tracking. FrameBuffers are created by a
// FrameBufferManager.
type FrameBuffer struct {
	manager *FrameBufferManager
	canvas  Canvas
	size    image.Point

	useAlphaWriting bool
	smooth          bool
	drawable        bool
	disableBlend    bool
	colorClear      Color
	composition     CompositionMode

	minTimeUpdate time.Duration
	lastRendered  time.Time
	forceUpdate   bool

	statusHash  uint64
	currentHash uint64
	actionSeq   uint64

	actions   []ScheduledAction
	free      []*DrawObject
	destIndex map[image.Rectangle]destEntry

	temporary bool
}

func newFrameBuffer(m *FrameBufferManager, useAlphaWriting bool, minTimeUpdate time.Duration) *FrameBuffer {
	fb := &FrameBuffer{
		manager:         m,
		useAlphaWriting: useAlphaWriting,
		smooth:          true,
		drawable:        true,
		minTimeUpdate:   minTimeUpdate,
		forceUpdate:     true,
		statusHash:      statusInvalid,
		destIndex:       make(map[image.Rectangle]destEntry),
	}
	if useAlphaWriting {
		fb.colorClear = ColorTransparent
	} else {
		fb.colorClear = ColorBlack
	}
	return fb
}

// Size returns the canvas size. It is zero until the first Resize.
func (fb *FrameBuffer) Size() image.Point { return fb.size }

// Texture returns the backing canvas, or nil before the first Resize.
func (fb *FrameBuffer) Texture() Texture {
	if fb.canvas == nil {
		return nil
	}
	return fb.canvas
}

// SetDrawable enables or disables the buffer administratively. Draw calls
// against a disabled buffer are dropped.
func (fb *FrameBuffer) SetDrawable(v bool) { fb.drawable = v }

// Drawable reports whether the buffer accepts draw calls.
func (fb *FrameBuffer) Drawable() bool { return fb.drawable }

// SetColorClear sets the color the canvas is cleared to on bind. A different
// color invalidates the cached content.
func (fb *FrameBuffer) SetColorClear(c Color) {
	if fb.colorClear == c {
		return
	}
	fb.colorClear = c
	fb.statusHash = statusInvalid
}

// ColorClear returns the bind clear color.
func (fb *FrameBuffer) ColorClear() Color { return fb.colorClear }

// SetCompositionMode sets the mode used when blitting the buffer.
func (fb *FrameBuffer) SetCompositionMode(m CompositionMode) { fb.composition = m }

// SetSmooth selects linear filtering for canvases allocated after the call.
func (fb *FrameBuffer) SetSmooth(v bool) { fb.smooth = v }

// DisableBlend makes the blit overwrite the destination.
func (fb *FrameBuffer) DisableBlend() { fb.disableBlend = true }

// SetMinTimeUpdate changes the throttle interval.
func (fb *FrameBuffer) SetMinTimeUpdate(d time.Duration) { fb.minTimeUpdate = d }

// Resize reallocates the canvas. Sizes with a non-positive dimension are
// ignored. Allocation failures are returned wrapped around
// ErrCanvasAllocation.
func (fb *FrameBuffer) Resize(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	if fb.canvas != nil && fb.size == size {
		return nil
	}
	c, err := fb.manager.painter.Device().NewCanvas(size, fb.smooth)
	if err != nil {
		Logger().Error("frame buffer resize failed", "size", size, "err", err)
		return fmt.Errorf("drawpool: failed to resize frame buffer to %v: %w", size, err)
	}
	if fb.canvas != nil {
		fb.canvas.Dispose()
	}
	fb.canvas = c
	fb.size = size
	fb.statusHash = statusInvalid
	fb.forceUpdate = true
	Logger().Debug("frame buffer resized", "size", size, "alpha", fb.useAlphaWriting)
	return nil
}

// CanUpdate reports whether the buffer may be redrawn this frame.
func (fb *FrameBuffer) CanUpdate() bool {
	if fb.forceUpdate || fb.minTimeUpdate <= 0 {
		return true
	}
	return fb.manager.now().Sub(fb.lastRendered) >= fb.minTimeUpdate
}

// Update forces the next CanUpdate to succeed.
func (fb *FrameBuffer) Update() { fb.forceUpdate = true }

// HasModification reports whether the content submitted since the layer was
// opened differs from what the canvas holds.
func (fb *FrameBuffer) HasModification() bool {
	return fb.currentHash != fb.statusHash
}

func (fb *FrameBuffer) resetStatus() { fb.currentHash = 0 }

func (fb *FrameBuffer) updateStatus() { fb.statusHash = fb.currentHash }

func (fb *FrameBuffer) updateHash(state PainterState, m method) {
	fb.currentHash = hashMethod(hashState(fb.currentHash, state), m)
}

// commit records a completed GPU update.
func (fb *FrameBuffer) commit() {
	fb.lastRendered = fb.manager.now()
	fb.forceUpdate = false
}

// Bind redirects device output to the canvas, clearing it first when
// autoClear is set.
func (fb *FrameBuffer) Bind(autoClear bool) {
	if fb.canvas == nil {
		return
	}
	fb.manager.painter.Device().BindCanvas(fb.canvas)
	if autoClear {
		c := fb.colorClear
		if !fb.useAlphaWriting {
			c.A = 1
		}
		fb.canvas.Clear(c)
	}
}

// Release restores the previously bound target.
func (fb *FrameBuffer) Release() {
	if fb.canvas == nil {
		return
	}
	fb.manager.painter.Device().ReleaseCanvas()
}

// Draw blits src of the canvas into dest on the bound target, using the
// painter's color and opacity. An empty dest draws at native size at the
// origin; an empty src samples the whole canvas.
func (fb *FrameBuffer) Draw(dest, src image.Rectangle) {
	if fb.canvas == nil {
		return
	}
	if dest.Empty() {
		dest = image.Rectangle{Max: fb.size}
	}
	if src.Empty() {
		src = image.Rectangle{Max: fb.size}
	}
	p := fb.manager.painter
	saved := p.CurrentState()
	if fb.disableBlend {
		p.SetCompositionMode(CompositionReplace)
	} else {
		p.SetCompositionMode(fb.composition)
	}
	p.DrawTexturedRect(dest, fb.canvas, src)
	p.ExecuteState(saved)
}

// ScheduledActions exposes the playback queue. The slice is owned by the
// buffer and is cleared after the layer is drawn.
func (fb *FrameBuffer) ScheduledActions() []ScheduledAction { return fb.actions }

// clearActions empties the queue and recycles its objects.
func (fb *FrameBuffer) clearActions() {
	for _, a := range fb.actions {
		if obj, ok := a.(*DrawObject); ok {
			obj.State = PainterState{}
			obj.Coords = nil
			obj.methods = obj.methods[:0]
			fb.free = append(fb.free, obj)
		}
	}
	clear(fb.actions)
	fb.actions = fb.actions[:0]
	clear(fb.destIndex)
}

func (fb *FrameBuffer) newObject(state PainterState, mode DrawMode) *DrawObject {
	var obj *DrawObject
	if n := len(fb.free); n > 0 {
		obj = fb.free[n-1]
		fb.free[n-1] = nil
		fb.free = fb.free[:n-1]
	} else {
		obj = &DrawObject{}
	}
	obj.State = state
	obj.Mode = mode
	fb.actions = append(fb.actions, obj)
	return obj
}

func (fb *FrameBuffer) lastDrawObject() *DrawObject {
	if len(fb.actions) == 0 {
		return nil
	}
	obj, _ := fb.actions[len(fb.actions)-1].(*DrawObject)
	return obj
}

// scheduleAction appends a callback. The sequence number makes every layer
// carrying a callback report a modification.
func (fb *FrameBuffer) scheduleAction(fn ActionFunc) {
	fb.actionSeq++
	fb.currentHash = hashCombine(hashCombine(fb.currentHash, tagAction), fb.actionSeq)
	fb.actions = append(fb.actions, fn)
	clear(fb.destIndex)
}

// scheduleCoords appends caller-supplied geometry as its own object.
func (fb *FrameBuffer) scheduleCoords(state PainterState, coords *CoordsBuffer, mode DrawMode) {
	fb.newObject(state, mode).Coords = coords
	clear(fb.destIndex)
}

// scheduleMethod appends a non-geometry method onto the last object without
// comparing state.
func (fb *FrameBuffer) scheduleMethod(state PainterState, m method) {
	if m.tag == tagCapability {
		clear(fb.destIndex)
	}
	obj := fb.lastDrawObject()
	if obj == nil || obj.Coords != nil {
		obj = fb.newObject(state, DrawNone)
	}
	obj.methods = append(obj.methods, m)
	if dest, ok := m.destination(); ok {
		fb.destIndex[dest] = destEntry{method: m}
	}
}

// scheduleDrawing appends a geometry method, merging it into the last object
// when the states are equal. An earlier opaque draw at the same destination
// may be removed first.
func (fb *FrameBuffer) scheduleDrawing(state PainterState, m method) {
	dest, hasDest := m.destination()
	entry := destEntry{method: m, clip: state.ClipRect, comp: state.Composition}
	if m.tag == tagTexturedRect && state.Texture != nil && state.opaqueCover() {
		entry.opaque = true
		entry.texID = state.Texture.ID()
		entry.texSize = state.Texture.Size()
		entry.src = m.src
		if prev, found := fb.destIndex[dest]; found && covers(prev, entry, state.Texture) {
			fb.removeMethod(prev)
		}
	}

	obj := fb.lastDrawObject()
	if obj != nil && obj.Coords == nil && obj.State.Equal(state) {
		obj.Mode = DrawTriangles
	} else {
		mode := DrawTriangles
		if m.canStrip() {
			mode = DrawTriangleStrip
		}
		obj = fb.newObject(state, mode)
	}
	obj.methods = append(obj.methods, m)

	if hasDest {
		entry.obj = obj
		fb.destIndex[dest] = entry
	}
}

// covers reports whether the draw described by next, with texture tex, fully
// hides the earlier draw prev.
func covers(prev, next destEntry, tex Texture) bool {
	if !prev.opaque || prev.obj == nil || prev.clip != next.clip {
		return false
	}
	// Same texels only hide the earlier draw when blended the same way.
	if prev.texID == next.texID && prev.src == next.src && prev.comp == next.comp {
		return true
	}
	return tex.IsOpaque() &&
		next.texSize.X >= prev.texSize.X && next.texSize.Y >= prev.texSize.Y
}

// removeMethod deletes the last occurrence of e.method from e.obj.
func (fb *FrameBuffer) removeMethod(e destEntry) {
	ms := e.obj.methods
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i] == e.method {
			e.obj.methods = slices.Delete(ms, i, i+1)
			return
		}
	}
}
