package drawpool

import (
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

var lastShaderID atomic.Uint32

// KageShader is a ShaderProgram compiled from Kage source. Geometry drawn
// with it samples the state texture as imageSrc0. All shaders must use
// //kage:unit pixels.
type KageShader struct {
	id     uint32
	shader *ebiten.Shader
	// Uniforms are passed to every draw call made with the shader.
	Uniforms map[string]any
}

// NewKageShader compiles src.
func NewKageShader(src []byte) (*KageShader, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("drawpool: failed to compile shader: %w", err)
	}
	return &KageShader{id: lastShaderID.Add(1), shader: s}, nil
}

// ProgramID implements ShaderProgram.
func (s *KageShader) ProgramID() uint32 { return s.id }

// Dispose releases the compiled shader.
func (s *KageShader) Dispose() {
	if s.shader != nil {
		s.shader.Deallocate()
		s.shader = nil
	}
}

const grayscaleShaderSrc = `//kage:unit pixels
package main

var Amount float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src) * color
	if c.a == 0 {
		return c
	}
	// Un-premultiply, mix toward luminance, re-premultiply.
	rgb := c.rgb / c.a
	l := dot(rgb, vec3(0.299, 0.587, 0.114))
	rgb = mix(rgb, vec3(l), clamp(Amount, 0, 1))
	return vec4(rgb*c.a, c.a)
}
`

// NewGrayscaleShader returns a shader that desaturates by amount in [0, 1].
func NewGrayscaleShader(amount float64) (*KageShader, error) {
	s, err := NewKageShader([]byte(grayscaleShaderSrc))
	if err != nil {
		return nil, err
	}
	s.Uniforms = map[string]any{"Amount": float32(amount)}
	return s, nil
}
