package mapview

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/phanxgames/drawpool"
)

const (
	asciiGlyphCount = 128

	firstFaceGlyph = 32
	lastFaceGlyph  = 126
	atlasColumns   = 16
)

type glyph struct {
	src      image.Rectangle // empty for glyphs without ink
	offset   image.Point
	xAdvance int
}

// BitmapFont draws text as textured rects sampled from a single glyph
// atlas texture.
type BitmapFont struct {
	texture    drawpool.Texture
	lineHeight int

	asciiGlyphs [asciiGlyphCount]glyph
	asciiSet    [asciiGlyphCount]bool
	extGlyphs   map[rune]*glyph

	kernings map[[2]rune]int
}

// NewBitmapFont rasterizes the printable ASCII range of face into a glyph
// atlas.
func NewBitmapFont(face font.Face) *BitmapFont {
	f, img := rasterizeFace(face)
	f.texture = drawpool.NewImageTexture(img)
	return f
}

// DefaultFont returns a font built from basicfont.Face7x13.
func DefaultFont() *BitmapFont {
	return NewBitmapFont(basicfont.Face7x13)
}

// rasterizeFace lays the glyphs out on a grid of fixed cells, one line high
// and one maximum advance wide.
func rasterizeFace(face font.Face) (*BitmapFont, *image.RGBA) {
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	lineHeight := max(m.Height.Ceil(), ascent+m.Descent.Ceil())

	cellW := 1
	for r := rune(firstFaceGlyph); r <= lastFaceGlyph; r++ {
		if adv, ok := face.GlyphAdvance(r); ok {
			cellW = max(cellW, adv.Ceil())
		}
	}

	n := lastFaceGlyph - firstFaceGlyph + 1
	rows := (n + atlasColumns - 1) / atlasColumns
	img := image.NewRGBA(image.Rect(0, 0, atlasColumns*cellW, rows*lineHeight))
	f := &BitmapFont{lineHeight: lineHeight}

	for i := 0; i < n; i++ {
		r := rune(firstFaceGlyph + i)
		col, row := i%atlasColumns, i/atlasColumns
		cell := image.Rect(col*cellW, row*lineHeight, col*cellW+cellW, row*lineHeight+lineHeight)

		dot := fixed.P(cell.Min.X, cell.Min.Y+ascent)
		dr, mask, maskp, adv, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		g := glyph{xAdvance: adv.Round()}
		clipped := dr.Intersect(cell)
		if !clipped.Empty() {
			draw.DrawMask(img, clipped, image.White, image.Point{}, mask, maskp.Add(clipped.Min.Sub(dr.Min)), draw.Over)
			if hasInk(img, clipped) {
				g.src = cell
			}
		}
		f.setGlyph(r, g)
	}
	return f, img
}

func hasInk(img *image.RGBA, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] != 0 {
				return true
			}
		}
	}
	return false
}

func (f *BitmapFont) setGlyph(r rune, g glyph) {
	if r >= 0 && r < asciiGlyphCount {
		f.asciiGlyphs[r] = g
		f.asciiSet[r] = true
		return
	}
	if f.extGlyphs == nil {
		f.extGlyphs = make(map[rune]*glyph)
	}
	f.extGlyphs[r] = &g
}

// glyph returns the glyph for the given rune, or nil if not found.
func (f *BitmapFont) glyph(r rune) *glyph {
	if r >= 0 && r < asciiGlyphCount {
		if f.asciiSet[r] {
			return &f.asciiGlyphs[r]
		}
		return nil
	}
	return f.extGlyphs[r]
}

func (f *BitmapFont) kern(first, second rune) int {
	if f.kernings == nil {
		return 0
	}
	return f.kernings[[2]rune{first, second}]
}

// Texture returns the glyph atlas.
func (f *BitmapFont) Texture() drawpool.Texture { return f.texture }

// LineHeight returns the vertical distance between lines.
func (f *BitmapFont) LineHeight() int { return f.lineHeight }

// Measure returns the size of the rendered text. Lines are separated by
// '\n'.
func (f *BitmapFont) Measure(s string) image.Point {
	var maxW, cursorX int
	var prev rune
	hasPrev := false
	lines := 1

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r == '\n' {
			maxW = max(maxW, cursorX)
			cursorX = 0
			lines++
			hasPrev = false
			continue
		}
		g := f.glyph(r)
		if g == nil {
			hasPrev = false
			continue
		}
		if hasPrev {
			cursorX += f.kern(prev, r)
		}
		cursorX += g.xAdvance
		prev = r
		hasPrev = true
	}
	return image.Pt(max(maxW, cursorX), lines*f.lineHeight)
}

// DrawText submits one textured rect per inked glyph, with the top-left of
// the first line at origin. The painter color tints the text.
func (f *BitmapFont) DrawText(dp *drawpool.DrawPool, s string, origin image.Point) {
	if f.texture == nil {
		return
	}
	x, y := origin.X, origin.Y
	var prev rune
	hasPrev := false

	for _, r := range s {
		if r == '\n' {
			x = origin.X
			y += f.lineHeight
			hasPrev = false
			continue
		}
		g := f.glyph(r)
		if g == nil {
			hasPrev = false
			continue
		}
		if hasPrev {
			x += f.kern(prev, r)
		}
		if !g.src.Empty() {
			at := image.Pt(x, y).Add(g.offset)
			dp.AddTexturedRect(image.Rectangle{Min: at, Max: at.Add(g.src.Size())}, f.texture, g.src)
		}
		x += g.xAdvance
		prev = r
		hasPrev = true
	}
}

// LoadBitmapFont parses BMFont .fnt text-format data whose glyphs all live
// on page.
func LoadBitmapFont(fntData []byte, page drawpool.Texture) (*BitmapFont, error) {
	f := &BitmapFont{texture: page}

	scanner := bufio.NewScanner(bytes.NewReader(fntData))
	var charCount int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tag, rest := splitTag(line)
		fields := parseFields(rest)

		switch tag {
		case "common":
			f.lineHeight = atoi(fields["lineHeight"])
		case "char":
			charCount++
			x, y := atoi(fields["x"]), atoi(fields["y"])
			g := glyph{
				offset:   image.Pt(atoi(fields["xoffset"]), atoi(fields["yoffset"])),
				xAdvance: atoi(fields["xadvance"]),
			}
			if w, h := atoi(fields["width"]), atoi(fields["height"]); w > 0 && h > 0 {
				g.src = image.Rect(x, y, x+w, y+h)
			}
			f.setGlyph(rune(atoi(fields["id"])), g)
		case "kerning":
			if f.kernings == nil {
				f.kernings = make(map[[2]rune]int)
			}
			pair := [2]rune{rune(atoi(fields["first"])), rune(atoi(fields["second"]))}
			f.kernings[pair] = atoi(fields["amount"])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mapview: error reading .fnt data: %w", err)
	}
	if f.lineHeight == 0 {
		return nil, fmt.Errorf("mapview: .fnt data missing common lineHeight")
	}
	if charCount == 0 {
		return nil, fmt.Errorf("mapview: .fnt data has no char definitions")
	}
	return f, nil
}

// atoi returns 0 for missing or malformed values.
func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// splitTag splits a BMFont line into its tag and the rest of the line.
func splitTag(line string) (string, string) {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

// parseFields parses "key=value key=value ..." into a map.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Fields(s) {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		// Strip quotes from values like face="Arial"
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		fields[key] = val
	}
	return fields
}
