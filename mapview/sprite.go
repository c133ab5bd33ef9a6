package mapview

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	"github.com/phanxgames/drawpool"
)

// Sprite is a sub-rectangle of a texture.
type Sprite struct {
	Texture drawpool.Texture
	// Src is the region in texture pixels. An empty Src is the whole texture.
	Src image.Rectangle
}

// Empty reports whether the sprite has nothing to draw.
func (s Sprite) Empty() bool {
	return s.Texture == nil || s.Texture.IsEmpty()
}

// Size returns the source size of the sprite.
func (s Sprite) Size() image.Point {
	if s.Src.Empty() {
		if s.Texture == nil {
			return image.Point{}
		}
		return s.Texture.Size()
	}
	return s.Src.Size()
}

func (s Sprite) src() image.Rectangle {
	if s.Src.Empty() && s.Texture != nil {
		return image.Rectangle{Max: s.Texture.Size()}
	}
	return s.Src
}

// SpriteSheet holds one or more page textures and a map of named sprites.
type SpriteSheet struct {
	// Pages contains the page textures indexed by page number.
	Pages   []drawpool.Texture
	sprites map[string]Sprite
}

// Sprite returns the named sprite. A missing name logs a warning and returns
// a 1x1 magenta placeholder.
func (s *SpriteSheet) Sprite(name string) Sprite {
	if sp, ok := s.sprites[name]; ok {
		return sp
	}
	drawpool.Logger().Warn("sprite not found, using magenta placeholder", "name", name)
	return magentaSprite()
}

// Has reports whether the sheet defines name.
func (s *SpriteSheet) Has(name string) bool {
	_, ok := s.sprites[name]
	return ok
}

// Len returns the number of sprites in the sheet.
func (s *SpriteSheet) Len() int { return len(s.sprites) }

// magenta placeholder singleton (single render thread)
var magentaTexture *drawpool.ImageTexture

func magentaSprite() Sprite {
	if magentaTexture == nil {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.Set(0, 0, color.RGBA{R: 255, B: 255, A: 255})
		magentaTexture = drawpool.NewImageTexture(img)
	}
	return Sprite{Texture: magentaTexture, Src: image.Rect(0, 0, 1, 1)}
}

// LoadSpriteSheet parses TexturePacker JSON data and associates the given
// page textures. Both the hash format (single "frames" object) and the array
// format ("textures" array with per-page frame lists) are supported. Rotated
// frames are rejected.
func LoadSpriteSheet(jsonData []byte, pages []drawpool.Texture) (*SpriteSheet, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("mapview: failed to parse sprite sheet JSON: %w", err)
	}

	sheet := &SpriteSheet{
		Pages:   pages,
		sprites: make(map[string]Sprite),
	}

	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("mapview: failed to parse sprite sheet textures array: %w", err)
		}
		for i, tex := range textures {
			if err := sheet.addFrames(tex.Frames, i); err != nil {
				return nil, err
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("mapview: failed to parse sprite sheet frames: %w", err)
		}
		if err := sheet.addFrames(frames, 0); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("mapview: sprite sheet JSON has neither \"frames\" nor \"textures\" key")
	}
	return sheet, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame   jsonRect `json:"frame"`
	Rotated bool     `json:"rotated"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func (s *SpriteSheet) addFrames(frames map[string]jsonFrame, page int) error {
	if page >= len(s.Pages) {
		return fmt.Errorf("mapview: sprite sheet references page %d, have %d", page, len(s.Pages))
	}
	for name, f := range frames {
		if f.Rotated {
			return fmt.Errorf("mapview: sprite %q is rotated, which is not supported", name)
		}
		r := image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H)
		s.sprites[name] = Sprite{Texture: s.Pages[page], Src: r}
	}
	return nil
}
