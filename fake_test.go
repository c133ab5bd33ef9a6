package drawpool

import (
	"fmt"
	"image"
	"time"
)

// --- Test doubles ---

type fakeTexture struct {
	id     uint32
	size   image.Point
	opaque bool
}

func newTexture(w, h int, opaque bool) *fakeTexture {
	return &fakeTexture{id: NewTextureID(), size: image.Pt(w, h), opaque: opaque}
}

func (t *fakeTexture) ID() uint32        { return t.id }
func (t *fakeTexture) Size() image.Point { return t.size }
func (t *fakeTexture) IsEmpty() bool     { return t.size.X <= 0 || t.size.Y <= 0 }
func (t *fakeTexture) IsOpaque() bool    { return t.opaque }

type fakeCanvas struct {
	fakeTexture
	clears   []Color
	disposed bool
}

func (c *fakeCanvas) Clear(col Color) { c.clears = append(c.clears, col) }
func (c *fakeCanvas) Dispose()        { c.disposed = true }

// event is one recorded device call, in order.
type event struct {
	kind     string // "draw", "clear", "cap", "bind", "release"
	state    PainterState
	verts    []float32
	tex      []float32
	mode     DrawMode
	target   Canvas
	rect     image.Rectangle
	capID    int
	capState bool
}

type fakeDevice struct {
	events    []event
	stack     []Canvas
	canvases  []*fakeCanvas
	failAlloc bool
}

func (d *fakeDevice) top() Canvas {
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

func (d *fakeDevice) DrawCoords(state PainterState, buf *CoordsBuffer, mode DrawMode) {
	d.events = append(d.events, event{
		kind:   "draw",
		state:  state,
		verts:  append([]float32(nil), buf.Vertices()...),
		tex:    append([]float32(nil), buf.TexCoords()...),
		mode:   mode,
		target: d.top(),
	})
}

func (d *fakeDevice) ClearArea(r image.Rectangle) {
	d.events = append(d.events, event{kind: "clear", rect: r, target: d.top()})
}

func (d *fakeDevice) SetCapability(id int, enabled bool) {
	d.events = append(d.events, event{kind: "cap", capID: id, capState: enabled, target: d.top()})
}

func (d *fakeDevice) NewCanvas(size image.Point, smooth bool) (Canvas, error) {
	if d.failAlloc {
		return nil, fmt.Errorf("%w: out of memory", ErrCanvasAllocation)
	}
	c := &fakeCanvas{fakeTexture: fakeTexture{id: NewTextureID(), size: size}}
	d.canvases = append(d.canvases, c)
	return c, nil
}

func (d *fakeDevice) BindCanvas(c Canvas) {
	d.stack = append(d.stack, c)
	d.events = append(d.events, event{kind: "bind", target: c})
}

func (d *fakeDevice) ReleaseCanvas() {
	d.events = append(d.events, event{kind: "release", target: d.top()})
	d.stack = d.stack[:len(d.stack)-1]
}

func (d *fakeDevice) reset() { d.events = nil }

func (d *fakeDevice) count(kind string) int {
	n := 0
	for _, e := range d.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// drawsInto returns the draw events issued while target was bound.
func (d *fakeDevice) drawsInto(target Canvas) []event {
	var out []event
	for _, e := range d.events {
		if e.kind == "draw" && e.target == target {
			out = append(out, e)
		}
	}
	return out
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestPool returns a pool over a recording device with a manual clock.
// Every layer is sized 320x240.
func newTestPool() (*DrawPool, *fakeDevice, *fakeClock) {
	dev := &fakeDevice{}
	painter := NewPainter(dev)
	manager := NewFrameBufferManager(painter)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	manager.SetClock(clock.now)
	dp := New(painter, manager, DefaultConfig())
	for l := LayerMap; l < LayerLast; l++ {
		if err := dp.Resize(l, image.Pt(320, 240)); err != nil {
			panic(err)
		}
	}
	return dp, dev, clock
}

func tile(x, y int) image.Rectangle {
	return image.Rect(x*32, y*32, x*32+32, y*32+32)
}

func objects(fb *FrameBuffer) []*DrawObject {
	var out []*DrawObject
	for _, a := range fb.ScheduledActions() {
		if obj, ok := a.(*DrawObject); ok {
			out = append(out, obj)
		}
	}
	return out
}
