package drawpool

import "image"

// ShaderProgram is a compiled shader bound through PainterState.
type ShaderProgram interface {
	// ProgramID is a stable identity. Zero is reserved for "no shader".
	ProgramID() uint32
}

func shaderID(s ShaderProgram) uint32 {
	if s == nil {
		return 0
	}
	return s.ProgramID()
}

// PainterState is a snapshot of everything in the pipeline that affects the
// output of a draw call.
type PainterState struct {
	Texture     Texture
	Color       Color
	Opacity     float64
	Composition CompositionMode
	Shader      ShaderProgram
	// ClipRect restricts drawing. The zero rectangle means no clip.
	ClipRect image.Rectangle
}

// DefaultPainterState is white, fully opaque, normal composition, no clip.
func DefaultPainterState() PainterState {
	return PainterState{Color: ColorWhite, Opacity: 1}
}

// Equal reports whether two states are interchangeable for batching.
// Textures and shaders compare by identity.
func (s PainterState) Equal(o PainterState) bool {
	return textureID(s.Texture) == textureID(o.Texture) &&
		s.Color == o.Color &&
		s.Opacity == o.Opacity &&
		s.Composition == o.Composition &&
		shaderID(s.Shader) == shaderID(o.Shader) &&
		s.ClipRect == o.ClipRect
}

// opaqueCover reports whether a textured rect drawn with this state fully
// replaces what it covers, assuming the texture itself is opaque.
func (s PainterState) opaqueCover() bool {
	return s.Opacity == 1 && s.Color.A == 1 && s.Shader == nil &&
		(s.Composition == CompositionNormal || s.Composition == CompositionReplace)
}
