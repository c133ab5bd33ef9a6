package drawpool

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"math"
)

// CoordsBuffer accumulates vertex and texture coordinate pairs for a single
// draw call. Texture coordinates are in source pixels.
//
// A buffer is not safe for concurrent use.
type CoordsBuffer struct {
	vertices  []float32
	texCoords []float32

	hash      uint64
	hashValid bool
}

// Clear removes all coordinates, keeping the allocated capacity.
func (b *CoordsBuffer) Clear() {
	b.vertices = b.vertices[:0]
	b.texCoords = b.texCoords[:0]
	b.hashValid = false
}

// VertexCount returns the number of vertices in the buffer.
func (b *CoordsBuffer) VertexCount() int { return len(b.vertices) / 2 }

// Empty reports whether the buffer holds no vertices.
func (b *CoordsBuffer) Empty() bool { return len(b.vertices) == 0 }

// Vertices returns the x,y pairs. The slice is owned by the buffer.
func (b *CoordsBuffer) Vertices() []float32 { return b.vertices }

// TexCoords returns the u,v pairs. It is empty for untextured geometry.
func (b *CoordsBuffer) TexCoords() []float32 { return b.texCoords }

// Clone returns a deep copy.
func (b *CoordsBuffer) Clone() *CoordsBuffer {
	return &CoordsBuffer{
		vertices:  append([]float32(nil), b.vertices...),
		texCoords: append([]float32(nil), b.texCoords...),
		hash:      b.hash,
		hashValid: b.hashValid,
	}
}

func (b *CoordsBuffer) addVertex(x, y int) {
	b.vertices = append(b.vertices, float32(x), float32(y))
}

func (b *CoordsBuffer) addTexCoord(u, v int) {
	b.texCoords = append(b.texCoords, float32(u), float32(v))
}

// AddRect appends two triangles covering dest.
func (b *CoordsBuffer) AddRect(dest image.Rectangle) {
	if dest.Empty() {
		return
	}
	l, t, r, bt := dest.Min.X, dest.Min.Y, dest.Max.X, dest.Max.Y
	b.addVertex(l, t)
	b.addVertex(r, t)
	b.addVertex(l, bt)
	b.addVertex(l, bt)
	b.addVertex(r, t)
	b.addVertex(r, bt)
	b.hashValid = false
}

// AddRectSrc appends two triangles covering dest, sampling src.
func (b *CoordsBuffer) AddRectSrc(dest, src image.Rectangle) {
	if dest.Empty() || src.Empty() {
		return
	}
	b.AddRect(dest)
	b.addRectTex(src, false)
}

// AddUpsideDownRect is AddRectSrc with src flipped vertically.
func (b *CoordsBuffer) AddUpsideDownRect(dest, src image.Rectangle) {
	if dest.Empty() || src.Empty() {
		return
	}
	b.AddRect(dest)
	b.addRectTex(src, true)
}

func (b *CoordsBuffer) addRectTex(src image.Rectangle, flip bool) {
	l, t, r, bt := src.Min.X, src.Min.Y, src.Max.X, src.Max.Y
	if flip {
		t, bt = bt, t
	}
	b.addTexCoord(l, t)
	b.addTexCoord(r, t)
	b.addTexCoord(l, bt)
	b.addTexCoord(l, bt)
	b.addTexCoord(r, t)
	b.addTexCoord(r, bt)
}

// AddQuad appends a 4-vertex triangle strip covering dest, sampling src.
// The result is only meaningful when drawn alone with DrawTriangleStrip.
func (b *CoordsBuffer) AddQuad(dest, src image.Rectangle) {
	b.addQuad(dest, src, false)
}

// AddUpsideDownQuad is AddQuad with src flipped vertically.
func (b *CoordsBuffer) AddUpsideDownQuad(dest, src image.Rectangle) {
	b.addQuad(dest, src, true)
}

// AddFilledQuad appends a 4-vertex untextured strip covering dest.
func (b *CoordsBuffer) AddFilledQuad(dest image.Rectangle) {
	if dest.Empty() {
		return
	}
	l, t, r, bt := dest.Min.X, dest.Min.Y, dest.Max.X, dest.Max.Y
	b.addVertex(l, t)
	b.addVertex(r, t)
	b.addVertex(l, bt)
	b.addVertex(r, bt)
	b.hashValid = false
}

func (b *CoordsBuffer) addQuad(dest, src image.Rectangle, flip bool) {
	if dest.Empty() || src.Empty() {
		return
	}
	b.AddFilledQuad(dest)
	l, t, r, bt := src.Min.X, src.Min.Y, src.Max.X, src.Max.Y
	if flip {
		t, bt = bt, t
	}
	b.addTexCoord(l, t)
	b.addTexCoord(r, t)
	b.addTexCoord(l, bt)
	b.addTexCoord(r, bt)
}

// AddRepeatedRects tiles src across dest. Tiles on the right and bottom edges
// are cropped to fit. An empty src appends a single untextured rect.
func (b *CoordsBuffer) AddRepeatedRects(dest, src image.Rectangle) {
	if dest.Empty() {
		return
	}
	if src.Empty() {
		b.AddRect(dest)
		return
	}
	tw, th := src.Dx(), src.Dy()
	for y := dest.Min.Y; y < dest.Max.Y; y += th {
		ph := min(th, dest.Max.Y-y)
		for x := dest.Min.X; x < dest.Max.X; x += tw {
			pw := min(tw, dest.Max.X-x)
			b.AddRectSrc(
				image.Rect(x, y, x+pw, y+ph),
				image.Rect(src.Min.X, src.Min.Y, src.Min.X+pw, src.Min.Y+ph),
			)
		}
	}
}

// AddTriangle appends one untextured triangle. Coincident or collinear points
// are ignored.
func (b *CoordsBuffer) AddTriangle(p0, p1, p2 image.Point) {
	cross := (p1.X-p0.X)*(p2.Y-p0.Y) - (p1.Y-p0.Y)*(p2.X-p0.X)
	if cross == 0 {
		return
	}
	b.addVertex(p0.X, p0.Y)
	b.addVertex(p1.X, p1.Y)
	b.addVertex(p2.X, p2.Y)
	b.hashValid = false
}

// AddBoundingRect appends four rects forming an unfilled border of the given
// inner line width around dest.
func (b *CoordsBuffer) AddBoundingRect(dest image.Rectangle, width int) {
	if dest.Empty() || width <= 0 {
		return
	}
	w := min(width, dest.Dx()/2, dest.Dy()/2)
	if w <= 0 {
		b.AddRect(dest)
		return
	}
	l, t, r, bt := dest.Min.X, dest.Min.Y, dest.Max.X, dest.Max.Y
	b.AddRect(image.Rect(l, t, r, t+w))      // top
	b.AddRect(image.Rect(r-w, t+w, r, bt-w)) // right
	b.AddRect(image.Rect(l, bt-w, r, bt))    // bottom
	b.AddRect(image.Rect(l, t+w, l+w, bt-w)) // left
}

// VertexHash returns an FNV-1a hash of the buffer contents. Identical
// sequences of additions hash equal.
func (b *CoordsBuffer) VertexHash() uint64 {
	if b.hashValid {
		return b.hash
	}
	h := fnv.New64a()
	var scratch [4]byte
	write := func(vs []float32) {
		for _, v := range vs {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
			_, _ = h.Write(scratch[:])
		}
	}
	write(b.vertices)
	// separator so moving a pair between the two slices changes the hash
	_, _ = h.Write([]byte{0xff})
	write(b.texCoords)
	b.hash = h.Sum64()
	b.hashValid = true
	return b.hash
}
