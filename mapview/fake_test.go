package mapview

import (
	"image"
	"time"

	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/drawpool"
)

type fakeTexture struct {
	id   uint32
	size image.Point
}

func newTexture(w, h int) *fakeTexture {
	return &fakeTexture{id: drawpool.NewTextureID(), size: image.Pt(w, h)}
}

func (t *fakeTexture) ID() uint32        { return t.id }
func (t *fakeTexture) Size() image.Point { return t.size }
func (t *fakeTexture) IsEmpty() bool     { return t.size.X <= 0 || t.size.Y <= 0 }
func (t *fakeTexture) IsOpaque() bool    { return false }

type fakeCanvas struct {
	fakeTexture
	clears []drawpool.Color
}

func (c *fakeCanvas) Clear(col drawpool.Color) { c.clears = append(c.clears, col) }
func (c *fakeCanvas) Dispose()                 {}

type fakeDevice struct {
	canvases []*fakeCanvas
	draws    int
}

func (d *fakeDevice) DrawCoords(drawpool.PainterState, *drawpool.CoordsBuffer, drawpool.DrawMode) {
	d.draws++
}
func (d *fakeDevice) ClearArea(image.Rectangle)  {}
func (d *fakeDevice) SetCapability(int, bool)    {}
func (d *fakeDevice) BindCanvas(drawpool.Canvas) {}
func (d *fakeDevice) ReleaseCanvas()             {}

func (d *fakeDevice) NewCanvas(size image.Point, _ bool) (drawpool.Canvas, error) {
	c := &fakeCanvas{fakeTexture: fakeTexture{id: drawpool.NewTextureID(), size: size}}
	d.canvases = append(d.canvases, c)
	return c, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPool() (*drawpool.DrawPool, *fakeDevice, *fakeClock) {
	dev := &fakeDevice{}
	painter := drawpool.NewPainter(dev)
	manager := drawpool.NewFrameBufferManager(painter)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	manager.SetClock(clock.now)
	return drawpool.New(painter, manager, drawpool.DefaultConfig()), dev, clock
}

// openLayer opens l on a 640x480 canvas.
func openLayer(dp *drawpool.DrawPool, l drawpool.LayerType) {
	r := image.Rect(0, 0, 640, 480)
	ok, err := dp.Begin(l, r.Size(), r, r)
	if err != nil || !ok {
		panic("layer refused")
	}
}

// testFont is basicfont.Face7x13 over a fake atlas texture.
func testFont() *BitmapFont {
	f, img := rasterizeFace(basicfont.Face7x13)
	b := img.Bounds().Size()
	f.texture = newTexture(b.X, b.Y)
	return f
}

// drawn is one submitted method with the state it was batched under.
type drawn struct {
	state  drawpool.PainterState
	method drawpool.DrawMethod
}

func (d drawn) texture() drawpool.Texture { return d.state.Texture }

func (d drawn) dest() image.Rectangle {
	switch m := d.method.(type) {
	case drawpool.TexturedRect:
		return m.Dest
	case drawpool.FilledRect:
		return m.Dest
	case drawpool.BoundingRect:
		return m.Dest
	}
	return image.Rectangle{}
}

func methods(fb *drawpool.FrameBuffer) []drawn {
	var out []drawn
	for _, a := range fb.ScheduledActions() {
		obj, ok := a.(*drawpool.DrawObject)
		if !ok {
			continue
		}
		for _, m := range obj.Methods() {
			out = append(out, drawn{state: obj.State, method: m})
		}
	}
	return out
}

func ofKind[T drawpool.DrawMethod](ds []drawn) []drawn {
	var out []drawn
	for _, d := range ds {
		if _, ok := d.method.(T); ok {
			out = append(out, d)
		}
	}
	return out
}

func sprite(tex drawpool.Texture) Sprite { return Sprite{Texture: tex} }
