package drawpool

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

func init() {
	whiteImage = ebiten.NewImage(3, 3)
	whiteImage.Fill(color.White)
	// Sampling the center of a 3x3 image avoids bleeding at the edges.
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// maxShaderVertices is the largest vertex run addressable by the uint16
// indices of DrawTrianglesShader. It is a multiple of 3.
const maxShaderVertices = 65535

// EbitenDevice implements Device on top of Ebitengine. Call SetScreen at the
// start of every Draw so that unbound drawing lands on the screen.
type EbitenDevice struct {
	screen  *ebiten.Image
	targets []*ebiten.Image

	blendDisabled bool

	verts  []ebiten.Vertex
	flat   []ebiten.Vertex
	inds   []uint32
	inds16 []uint16
}

// NewEbitenDevice returns a device without a screen.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

// SetScreen sets the bottom of the target stack and drops any target left
// bound by an unbalanced bind.
func (d *EbitenDevice) SetScreen(screen *ebiten.Image) {
	d.screen = screen
	d.targets = d.targets[:0]
}

func (d *EbitenDevice) target() *ebiten.Image {
	if n := len(d.targets); n > 0 {
		return d.targets[n-1]
	}
	return d.screen
}

// BindCanvas pushes c onto the target stack.
func (d *EbitenDevice) BindCanvas(c Canvas) {
	img, _, ok := ebitenImage(c)
	if !ok {
		return
	}
	d.targets = append(d.targets, img)
}

// ReleaseCanvas pops the target stack.
func (d *EbitenDevice) ReleaseCanvas() {
	if n := len(d.targets); n > 0 {
		d.targets[n-1] = nil
		d.targets = d.targets[:n-1]
	}
}

// SetCapability understands CapabilityBlend. Other ids are ignored.
func (d *EbitenDevice) SetCapability(id int, enabled bool) {
	if id == CapabilityBlend {
		d.blendDisabled = !enabled
	}
}

// ClearArea clears r of the bound target.
func (d *EbitenDevice) ClearArea(r image.Rectangle) {
	dst := d.target()
	if dst == nil {
		return
	}
	dst.SubImage(r).(*ebiten.Image).Clear()
}

// NewCanvas allocates an unmanaged render target. Ebitengine panics on
// impossible sizes; the panic is returned as an error wrapping
// ErrCanvasAllocation.
func (d *EbitenDevice) NewCanvas(size image.Point, smooth bool) (c Canvas, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("%w: %dx%d: %v", ErrCanvasAllocation, size.X, size.Y, r)
		}
	}()
	img := ebiten.NewImageWithOptions(
		image.Rectangle{Max: size},
		&ebiten.NewImageOptions{Unmanaged: true},
	)
	return &ebitenCanvas{id: NewTextureID(), img: img, size: size, smooth: smooth}, nil
}

// DrawCoords submits buf as a single DrawTriangles32 call, or as
// DrawTrianglesShader calls when the state carries a *KageShader.
func (d *EbitenDevice) DrawCoords(state PainterState, buf *CoordsBuffer, mode DrawMode) {
	dst := d.target()
	if dst == nil || buf.Empty() {
		return
	}
	if !state.ClipRect.Empty() {
		dst = dst.SubImage(state.ClipRect).(*ebiten.Image)
	}

	src, filter := whiteSubImage, ebiten.FilterNearest
	textured := state.Texture != nil
	if textured {
		img, f, ok := ebitenImage(state.Texture)
		if !ok {
			return
		}
		src, filter = img, f
	}

	// Premultiplied RGBA, opacity folded into alpha.
	ca := float32(state.Color.A * state.Opacity)
	cr := float32(state.Color.R) * ca
	cg := float32(state.Color.G) * ca
	cb := float32(state.Color.B) * ca

	pos := buf.Vertices()
	uv := buf.TexCoords()
	n := len(pos) / 2
	d.verts = d.verts[:0]
	for i := 0; i < n; i++ {
		v := ebiten.Vertex{
			DstX:   pos[2*i],
			DstY:   pos[2*i+1],
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
		if textured && 2*i+1 < len(uv) {
			v.SrcX = uv[2*i]
			v.SrcY = uv[2*i+1]
		}
		d.verts = append(d.verts, v)
	}
	d.inds = appendIndices(d.inds[:0], n, mode)
	if len(d.inds) == 0 {
		return
	}

	blend := state.Composition.EbitenBlend()
	if d.blendDisabled {
		blend = ebiten.BlendCopy
	}

	if ks, ok := state.Shader.(*KageShader); ok && ks.shader != nil {
		d.drawShader(dst, src, ks, blend)
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = blend
	triOp.Filter = filter
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	dst.DrawTriangles32(d.verts, d.inds, src, &triOp)
}

// drawShader expands the indexed geometry into independent triangles so it
// can be split on uint16 index boundaries.
func (d *EbitenDevice) drawShader(dst, src *ebiten.Image, s *KageShader, blend ebiten.Blend) {
	d.flat = d.flat[:0]
	for _, i := range d.inds {
		d.flat = append(d.flat, d.verts[i])
	}
	var op ebiten.DrawTrianglesShaderOptions
	op.Blend = blend
	op.Uniforms = s.Uniforms
	op.Images[0] = src
	for start := 0; start < len(d.flat); start += maxShaderVertices {
		chunk := d.flat[start:min(start+maxShaderVertices, len(d.flat))]
		d.inds16 = d.inds16[:0]
		for i := range chunk {
			d.inds16 = append(d.inds16, uint16(i))
		}
		dst.DrawTrianglesShader(chunk, d.inds16, s.shader, &op)
	}
}

// appendIndices appends the triangle list indices for n vertices laid out
// with the given topology.
func appendIndices(dst []uint32, n int, mode DrawMode) []uint32 {
	switch mode {
	case DrawTriangleStrip:
		for i := 0; i+2 < n; i++ {
			base := uint32(i)
			if i%2 == 0 {
				dst = append(dst, base, base+1, base+2)
			} else {
				dst = append(dst, base+1, base, base+2)
			}
		}
	default:
		for i := 0; i+2 < n; i += 3 {
			base := uint32(i)
			dst = append(dst, base, base+1, base+2)
		}
	}
	return dst
}

// ebitenImage resolves the ebiten image behind a texture.
func ebitenImage(t Texture) (*ebiten.Image, ebiten.Filter, bool) {
	switch t := t.(type) {
	case *ImageTexture:
		return t.img, ebiten.FilterNearest, t.img != nil
	case *ebitenCanvas:
		f := ebiten.FilterNearest
		if t.smooth {
			f = ebiten.FilterLinear
		}
		return t.img, f, t.img != nil
	case interface{ Image() *ebiten.Image }:
		img := t.Image()
		return img, ebiten.FilterNearest, img != nil
	}
	return nil, ebiten.FilterNearest, false
}

// ebitenCanvas is the Canvas created by EbitenDevice.
type ebitenCanvas struct {
	id     uint32
	img    *ebiten.Image
	size   image.Point
	smooth bool
}

func (c *ebitenCanvas) ID() uint32        { return c.id }
func (c *ebitenCanvas) Size() image.Point { return c.size }
func (c *ebitenCanvas) IsEmpty() bool     { return c.img == nil }
func (c *ebitenCanvas) IsOpaque() bool    { return false }

// Image returns the backing render target.
func (c *ebitenCanvas) Image() *ebiten.Image { return c.img }

func (c *ebitenCanvas) Clear(col Color) {
	if c.img == nil {
		return
	}
	if col.A <= 0 {
		c.img.Clear()
		return
	}
	c.img.Fill(col.toRGBA())
}

func (c *ebitenCanvas) Dispose() {
	if c.img != nil {
		c.img.Deallocate()
		c.img = nil
	}
}
