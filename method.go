package drawpool

import (
	"image"
	"math"
)

// DrawMethod is one declarative draw intent. The concrete types below form a
// closed set.
type DrawMethod interface {
	drawMethod()
}

// TexturedRect draws Src of the state texture into Dest.
type TexturedRect struct{ Dest, Src image.Rectangle }

// UpsideDownTexturedRect is a TexturedRect with Src flipped vertically.
type UpsideDownTexturedRect struct{ Dest, Src image.Rectangle }

// RepeatedTexturedRect tiles Src across Dest.
type RepeatedTexturedRect struct{ Dest, Src image.Rectangle }

// FilledRect fills Dest with the state color.
type FilledRect struct{ Dest image.Rectangle }

// FilledTriangle fills the triangle ABC with the state color.
type FilledTriangle struct{ A, B, C image.Point }

// BoundingRect draws an unfilled border of Width pixels inside Dest.
type BoundingRect struct {
	Dest  image.Rectangle
	Width int
}

// ClearArea clears Dest to transparent.
type ClearArea struct{ Dest image.Rectangle }

// FillCoords marks an object drawn from a caller-supplied untextured buffer.
// Hash is the buffer's vertex hash.
type FillCoords struct{ Hash uint64 }

// TextureCoords marks an object drawn from a caller-supplied textured buffer.
type TextureCoords struct{ Hash uint64 }

// Capability toggles an opaque device capability.
type Capability struct {
	ID      int
	Enabled bool
}

func (TexturedRect) drawMethod()           {}
func (UpsideDownTexturedRect) drawMethod() {}
func (RepeatedTexturedRect) drawMethod()   {}
func (FilledRect) drawMethod()             {}
func (FilledTriangle) drawMethod()         {}
func (BoundingRect) drawMethod()           {}
func (ClearArea) drawMethod()              {}
func (FillCoords) drawMethod()             {}
func (TextureCoords) drawMethod()          {}
func (Capability) drawMethod()             {}

// method is the queued form of a DrawMethod. Objects hold methods by value,
// so scheduling a draw does not allocate once the queue has warmed up.
type method struct {
	tag  uint64
	dest image.Rectangle
	src  image.Rectangle
	tri  [3]image.Point
	// arg is the border width, the coords hash or the capability id.
	arg uint64
	on  bool
}

// methodOf converts the exported form to the queued one.
func methodOf(m DrawMethod) method {
	switch m := m.(type) {
	case TexturedRect:
		return method{tag: tagTexturedRect, dest: m.Dest, src: m.Src}
	case UpsideDownTexturedRect:
		return method{tag: tagUpsideDownRect, dest: m.Dest, src: m.Src}
	case RepeatedTexturedRect:
		return method{tag: tagRepeatedRect, dest: m.Dest, src: m.Src}
	case FilledRect:
		return method{tag: tagFilledRect, dest: m.Dest}
	case FilledTriangle:
		return method{tag: tagFilledTriangle, tri: [3]image.Point{m.A, m.B, m.C}}
	case BoundingRect:
		return method{tag: tagBoundingRect, dest: m.Dest, arg: uint64(m.Width)}
	case ClearArea:
		return method{tag: tagClearArea, dest: m.Dest}
	case FillCoords:
		return method{tag: tagFillCoords, arg: m.Hash}
	case TextureCoords:
		return method{tag: tagTextureCoords, arg: m.Hash}
	case Capability:
		return method{tag: tagCapability, arg: uint64(m.ID), on: m.Enabled}
	}
	return method{}
}

// public converts back to the exported form.
func (m method) public() DrawMethod {
	switch m.tag {
	case tagTexturedRect:
		return TexturedRect{Dest: m.dest, Src: m.src}
	case tagUpsideDownRect:
		return UpsideDownTexturedRect{Dest: m.dest, Src: m.src}
	case tagRepeatedRect:
		return RepeatedTexturedRect{Dest: m.dest, Src: m.src}
	case tagFilledRect:
		return FilledRect{Dest: m.dest}
	case tagFilledTriangle:
		return FilledTriangle{A: m.tri[0], B: m.tri[1], C: m.tri[2]}
	case tagBoundingRect:
		return BoundingRect{Dest: m.dest, Width: int(m.arg)}
	case tagClearArea:
		return ClearArea{Dest: m.dest}
	case tagFillCoords:
		return FillCoords{Hash: m.arg}
	case tagTextureCoords:
		return TextureCoords{Hash: m.arg}
	case tagCapability:
		return Capability{ID: int(m.arg), Enabled: m.on}
	}
	return nil
}

// destination returns the destination rectangle of rect-based methods.
func (m method) destination() (image.Rectangle, bool) {
	switch m.tag {
	case tagTexturedRect, tagUpsideDownRect, tagRepeatedRect,
		tagFilledRect, tagBoundingRect, tagClearArea:
		return m.dest, true
	}
	return image.Rectangle{}, false
}

// canStrip reports whether m drawn alone may use a 4-vertex strip.
func (m method) canStrip() bool {
	switch m.tag {
	case tagTexturedRect, tagUpsideDownRect, tagFilledRect:
		return true
	}
	return false
}

// isGeometry reports whether m contributes vertices on replay.
func (m method) isGeometry() bool {
	return m.tag != tagCapability && m.tag != tagClearArea
}

// Method tags folded into the status hash.
const (
	tagTexturedRect uint64 = iota + 1
	tagUpsideDownRect
	tagRepeatedRect
	tagFilledRect
	tagFilledTriangle
	tagBoundingRect
	tagClearArea
	tagFillCoords
	tagTextureCoords
	tagCapability
	tagAction
)

// hashCombine folds v into seed, boost style.
func hashCombine(seed, v uint64) uint64 {
	return seed ^ (mix64(v) + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2))
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func packPoint(p image.Point) uint64 {
	return uint64(uint32(int32(p.X)))<<32 | uint64(uint32(int32(p.Y)))
}

func hashRect(h uint64, r image.Rectangle) uint64 {
	h = hashCombine(h, packPoint(r.Min))
	return hashCombine(h, packPoint(r.Max))
}

// hashState folds the fields of s that affect output.
func hashState(h uint64, s PainterState) uint64 {
	h = hashCombine(h, uint64(textureID(s.Texture)))
	h = hashCombine(h, math.Float64bits(s.Color.R))
	h = hashCombine(h, math.Float64bits(s.Color.G))
	h = hashCombine(h, math.Float64bits(s.Color.B))
	h = hashCombine(h, math.Float64bits(s.Color.A))
	h = hashCombine(h, math.Float64bits(s.Opacity))
	h = hashCombine(h, uint64(s.Composition))
	h = hashCombine(h, uint64(shaderID(s.Shader)))
	return hashRect(h, s.ClipRect)
}

// hashMethod folds the tag and payload of m.
func hashMethod(h uint64, m method) uint64 {
	h = hashCombine(h, m.tag)
	switch m.tag {
	case tagTexturedRect, tagUpsideDownRect, tagRepeatedRect:
		return hashRect(hashRect(h, m.dest), m.src)
	case tagFilledRect, tagClearArea:
		return hashRect(h, m.dest)
	case tagFilledTriangle:
		h = hashCombine(h, packPoint(m.tri[0]))
		h = hashCombine(h, packPoint(m.tri[1]))
		return hashCombine(h, packPoint(m.tri[2]))
	case tagBoundingRect:
		return hashCombine(hashRect(h, m.dest), m.arg)
	case tagFillCoords, tagTextureCoords:
		return hashCombine(h, m.arg)
	case tagCapability:
		h = hashCombine(h, m.arg)
		if m.on {
			return hashCombine(h, 1)
		}
		return hashCombine(h, 0)
	}
	return h
}
