package drawpool

import (
	"image"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// Texture is an immutable image resource referenced by draw calls. The pool
// holds textures by reference and never mutates them.
type Texture interface {
	// ID is a stable identity used for state comparison and hashing.
	// Zero is reserved for "no texture".
	ID() uint32
	Size() image.Point
	IsEmpty() bool
	// IsOpaque reports that every texel has full alpha.
	IsOpaque() bool
}

var lastTextureID atomic.Uint32

// NewTextureID allocates a process-unique texture id. Custom Texture
// implementations should take their ids from here.
func NewTextureID() uint32 {
	return lastTextureID.Add(1)
}

func textureID(t Texture) uint32 {
	if t == nil {
		return 0
	}
	return t.ID()
}

// ImageTexture is a Texture backed by an ebiten.Image.
type ImageTexture struct {
	id     uint32
	img    *ebiten.Image
	size   image.Point
	opaque bool
}

// NewImageTexture uploads img and scans its opacity once.
func NewImageTexture(img image.Image) *ImageTexture {
	return &ImageTexture{
		id:     NewTextureID(),
		img:    ebiten.NewImageFromImage(img),
		size:   img.Bounds().Size(),
		opaque: imageOpaque(img),
	}
}

// WrapImage wraps an existing ebiten.Image. The caller states whether the
// image is opaque since ebiten images cannot be read back before the game
// loop starts.
func WrapImage(img *ebiten.Image, opaque bool) *ImageTexture {
	return &ImageTexture{
		id:     NewTextureID(),
		img:    img,
		size:   img.Bounds().Size(),
		opaque: opaque,
	}
}

func (t *ImageTexture) ID() uint32 { return t.id }

func (t *ImageTexture) Size() image.Point { return t.size }

func (t *ImageTexture) IsEmpty() bool { return t.img == nil || t.size.X <= 0 || t.size.Y <= 0 }

func (t *ImageTexture) IsOpaque() bool { return t.opaque }

// Image returns the backing ebiten image.
func (t *ImageTexture) Image() *ebiten.Image { return t.img }

// Bounds returns the full source rectangle of the texture.
func (t *ImageTexture) Bounds() image.Rectangle { return image.Rectangle{Max: t.size} }

// Dispose releases the GPU image.
func (t *ImageTexture) Dispose() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}

func imageOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
