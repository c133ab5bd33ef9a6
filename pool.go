package drawpool

import (
	"fmt"
	"image"
	"time"
)

// layer binds a LayerType to its frame buffer and the rectangles it is
// blitted with.
type layer struct {
	fb        *FrameBuffer
	dest, src image.Rectangle
}

// DrawPool is the single funnel for draw intents. Producers open a layer,
// submit draw calls, and the pool replays them into the layer's frame
// buffer when the layer is drawn.
//
// A DrawPool is not safe for concurrent use. All calls must come from the
// render thread.
type DrawPool struct {
	painter *Painter
	manager *FrameBufferManager
	layers  [LayerLast]layer
	current *FrameBuffer
	debug   bool

	// scratch geometry for replay, cleared after every draw call
	coords CoordsBuffer
	stats  FrameStats
}

// New creates a pool with one frame buffer per layer, configured from cfg.
// Canvases are allocated on the first Begin or Resize.
func New(painter *Painter, manager *FrameBufferManager, cfg Config) *DrawPool {
	dp := &DrawPool{painter: painter, manager: manager, debug: cfg.Debug}
	for l := LayerMap; l < LayerLast; l++ {
		lc := cfg.Layers.get(l)
		fb := manager.CreateFrameBuffer(lc.AlphaWriting, time.Duration(lc.MinUpdateMillis)*time.Millisecond)
		fb.SetDrawable(!lc.Disabled)
		fb.SetSmooth(lc.Smooth)
		fb.SetColorClear(lc.clearColor())
		switch l {
		case LayerMap:
			fb.DisableBlend()
		case LayerLight:
			fb.SetCompositionMode(CompositionLight)
		}
		dp.layers[l].fb = fb
	}
	return dp
}

// Painter returns the painter replay draws through.
func (dp *DrawPool) Painter() *Painter { return dp.painter }

// Manager returns the frame buffer manager.
func (dp *DrawPool) Manager() *FrameBufferManager { return dp.manager }

// FrameBuffer returns the buffer bound to layer.
func (dp *DrawPool) FrameBuffer(l LayerType) *FrameBuffer {
	if l >= LayerLast {
		return nil
	}
	return dp.layers[l].fb
}

// Resize reallocates the canvas of a layer.
func (dp *DrawPool) Resize(l LayerType, size image.Point) error {
	fb := dp.FrameBuffer(l)
	if fb == nil {
		return fmt.Errorf("drawpool: unknown layer %d", l)
	}
	if err := fb.Resize(size); err != nil {
		return fmt.Errorf("drawpool: layer %s: %w", l, err)
	}
	return nil
}

// Begin opens layer for drawing. The layer's canvas is resized to size when
// it differs (a zero size keeps the current one), and dest/src are stored
// for DrawLayers. It reports false when the layer is throttled or disabled;
// draw calls made until the next Begin are then dropped.
func (dp *DrawPool) Begin(l LayerType, size image.Point, dest, src image.Rectangle) (bool, error) {
	dp.current = nil
	if err := dp.Resize(l, size); err != nil {
		return false, err
	}
	d := &dp.layers[l]
	d.dest, d.src = dest, src
	if !d.fb.Drawable() {
		return false, nil
	}
	return dp.CanFill(d.fb), nil
}

// CanFill opens fb when it may update this frame.
func (dp *DrawPool) CanFill(fb *FrameBuffer) bool {
	if !fb.CanUpdate() {
		dp.current = nil
		return false
	}
	dp.SetFrameBuffer(fb)
	return true
}

// SetFrameBuffer makes fb the receiver of subsequent draw calls. Anything
// left in its queue from an unfinished layer is discarded.
func (dp *DrawPool) SetFrameBuffer(fb *FrameBuffer) {
	dp.current = fb
	if fb == nil {
		return
	}
	fb.clearActions()
	fb.resetStatus()
}

// Current returns the open buffer, or nil.
func (dp *DrawPool) Current() *FrameBuffer { return dp.current }

func (dp *DrawPool) accepting() *FrameBuffer {
	fb := dp.current
	if fb == nil || !fb.Drawable() {
		return nil
	}
	return fb
}

// add is the funnel for all pure draw methods.
func (dp *DrawPool) add(tex Texture, m method) {
	fb := dp.accepting()
	if fb == nil {
		return
	}
	state := dp.painter.CurrentState()
	state.Texture = tex
	fb.updateHash(state, m)
	fb.scheduleDrawing(state, m)
}

func usableTexture(tex Texture) bool {
	return tex != nil && !tex.IsEmpty()
}

// AddTexturedRect draws src of tex into dest. An empty src samples the whole
// texture.
func (dp *DrawPool) AddTexturedRect(dest image.Rectangle, tex Texture, src image.Rectangle) {
	if dest.Empty() || !usableTexture(tex) {
		return
	}
	if src.Empty() {
		src = image.Rectangle{Max: tex.Size()}
	}
	dp.add(tex, method{tag: tagTexturedRect, dest: dest, src: src})
}

// AddUpsideDownTexturedRect draws src of tex flipped vertically into dest.
func (dp *DrawPool) AddUpsideDownTexturedRect(dest image.Rectangle, tex Texture, src image.Rectangle) {
	if dest.Empty() || src.Empty() || !usableTexture(tex) {
		return
	}
	dp.add(tex, method{tag: tagUpsideDownRect, dest: dest, src: src})
}

// AddRepeatedTexturedRect tiles src of tex across dest.
func (dp *DrawPool) AddRepeatedTexturedRect(dest image.Rectangle, tex Texture, src image.Rectangle) {
	if dest.Empty() || src.Empty() || !usableTexture(tex) {
		return
	}
	dp.add(tex, method{tag: tagRepeatedRect, dest: dest, src: src})
}

// AddFilledRect fills dest with the painter color.
func (dp *DrawPool) AddFilledRect(dest image.Rectangle) {
	if dest.Empty() {
		return
	}
	dp.add(nil, method{tag: tagFilledRect, dest: dest})
}

// AddFilledTriangle fills the triangle abc with the painter color.
func (dp *DrawPool) AddFilledTriangle(a, b, c image.Point) {
	if a == b || b == c || a == c {
		return
	}
	dp.add(nil, method{tag: tagFilledTriangle, tri: [3]image.Point{a, b, c}})
}

// AddBoundingRect draws an unfilled border inside dest. A width below 1 is
// treated as 1.
func (dp *DrawPool) AddBoundingRect(dest image.Rectangle, width int) {
	if dest.Empty() {
		return
	}
	dp.add(nil, method{tag: tagBoundingRect, dest: dest, arg: uint64(max(width, 1))})
}

// AddClearArea clears dest on the layer canvas to transparent.
func (dp *DrawPool) AddClearArea(dest image.Rectangle) {
	if dest.Empty() {
		return
	}
	dp.addMethod(method{tag: tagClearArea, dest: dest})
}

// AddFillCoords draws caller-built untextured geometry as triangles. The
// buffer is copied.
func (dp *DrawPool) AddFillCoords(buf *CoordsBuffer) {
	dp.addCoords(buf, nil, DrawTriangles)
}

// AddTextureCoords draws caller-built textured geometry. The buffer is
// copied.
func (dp *DrawPool) AddTextureCoords(buf *CoordsBuffer, tex Texture, mode DrawMode) {
	if !usableTexture(tex) {
		return
	}
	dp.addCoords(buf, tex, mode)
}

func (dp *DrawPool) addCoords(buf *CoordsBuffer, tex Texture, mode DrawMode) {
	fb := dp.accepting()
	if fb == nil || buf == nil || buf.Empty() {
		return
	}
	state := dp.painter.CurrentState()
	state.Texture = tex
	m := method{tag: tagFillCoords, arg: buf.VertexHash()}
	if tex != nil {
		m.tag = tagTextureCoords
	}
	fb.updateHash(state, m)
	fb.scheduleCoords(state, buf.Clone(), mode)
}

// AddAction schedules fn to run, in submission order, while the layer is
// being replayed.
func (dp *DrawPool) AddAction(fn func()) {
	fb := dp.accepting()
	if fb == nil || fn == nil {
		return
	}
	fb.scheduleAction(fn)
}

// EnableGL schedules enabling a device capability.
func (dp *DrawPool) EnableGL(id int) {
	dp.addMethod(method{tag: tagCapability, arg: uint64(id), on: true})
}

// DisableGL schedules disabling a device capability.
func (dp *DrawPool) DisableGL(id int) {
	dp.addMethod(method{tag: tagCapability, arg: uint64(id)})
}

func (dp *DrawPool) addMethod(m method) {
	fb := dp.accepting()
	if fb == nil {
		return
	}
	state := dp.painter.CurrentState()
	fb.updateHash(state, m)
	fb.scheduleMethod(state, m)
}

// Draw closes fb and composites it. When its content changed, the queue is
// replayed into the canvas first. The cached canvas is always blitted to
// dest, sampling src. The queue is cleared afterwards.
func (dp *DrawPool) Draw(fb *FrameBuffer, dest, src image.Rectangle) {
	if dp.current == fb {
		dp.current = nil
	}
	if fb.canvas != nil && fb.HasModification() {
		fb.updateStatus()
		dp.painter.SaveAndResetState()
		fb.Bind(true)
		for _, a := range fb.actions {
			dp.drawObject(a)
		}
		fb.Release()
		dp.painter.RestoreSavedState()
		fb.commit()
		dp.stats.Rendered++
	} else {
		dp.stats.Cached++
	}
	fb.Draw(dest, src)
	dp.stats.DrawCalls++
	fb.clearActions()
}

// DrawLayers composites every layer in LayerType order using the rectangles
// stored by Begin. Blits start from the default painter state; the caller's
// state is restored afterwards.
func (dp *DrawPool) DrawLayers() {
	dp.current = nil
	dp.painter.SaveAndResetState()
	defer dp.painter.RestoreSavedState()
	for l := LayerMap; l < LayerLast; l++ {
		d := &dp.layers[l]
		if d.fb.canvas == nil || !d.fb.Drawable() {
			continue
		}
		dp.Draw(d.fb, d.dest, d.src)
	}
	if dp.debug {
		dp.debugLog()
	}
	dp.ResetStats()
}

// Update forces every layer to redraw on its next Begin.
func (dp *DrawPool) Update() {
	for l := range dp.layers {
		dp.layers[l].fb.Update()
	}
}

func (dp *DrawPool) drawObject(a ScheduledAction) {
	switch a := a.(type) {
	case ActionFunc:
		dp.stats.Actions++
		a()
	case *DrawObject:
		if dp.debug {
			debugCheckDrawObject(a)
		}
		if a.Coords != nil {
			dp.painter.ExecuteState(a.State)
			dp.drawCoords(a.Coords, a.Mode)
			return
		}
		if len(a.methods) == 0 {
			return
		}
		dp.painter.ExecuteState(a.State)
		for _, m := range a.methods {
			if m.isGeometry() {
				dp.addToScratch(m, a.Mode == DrawTriangleStrip)
				continue
			}
			dp.flush(a.Mode)
			switch m.tag {
			case tagCapability:
				if m.on {
					dp.painter.Enable(int(m.arg))
				} else {
					dp.painter.Disable(int(m.arg))
				}
			case tagClearArea:
				dp.painter.ClearArea(m.dest)
			}
		}
		dp.flush(a.Mode)
	}
}

// addToScratch rasterizes m into the scratch buffer. strip is only set for
// objects holding a single strip-capable method.
func (dp *DrawPool) addToScratch(m method, strip bool) {
	b := &dp.coords
	switch m.tag {
	case tagTexturedRect:
		if strip {
			b.AddQuad(m.dest, m.src)
		} else {
			b.AddRectSrc(m.dest, m.src)
		}
	case tagUpsideDownRect:
		if strip {
			b.AddUpsideDownQuad(m.dest, m.src)
		} else {
			b.AddUpsideDownRect(m.dest, m.src)
		}
	case tagRepeatedRect:
		b.AddRepeatedRects(m.dest, m.src)
	case tagFilledRect:
		if strip {
			b.AddFilledQuad(m.dest)
		} else {
			b.AddRect(m.dest)
		}
	case tagFilledTriangle:
		b.AddTriangle(m.tri[0], m.tri[1], m.tri[2])
	case tagBoundingRect:
		b.AddBoundingRect(m.dest, int(m.arg))
	}
}

func (dp *DrawPool) flush(mode DrawMode) {
	if dp.coords.Empty() {
		return
	}
	dp.drawCoords(&dp.coords, mode)
	dp.coords.Clear()
}

func (dp *DrawPool) drawCoords(buf *CoordsBuffer, mode DrawMode) {
	if mode == DrawNone {
		mode = DrawTriangles
	}
	dp.painter.DrawCoords(buf, mode)
	dp.stats.DrawCalls++
	dp.stats.Vertices += buf.VertexCount()
}
