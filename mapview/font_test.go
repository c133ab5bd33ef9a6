package mapview

import (
	"image"
	"testing"

	"github.com/phanxgames/drawpool"
)

// Minimal BMFont .fnt text data with glyphs for "ABCD" + space.
const testFntData = `info face="TestFont" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=0,0
common lineHeight=40 base=30 scaleW=256 scaleH=256 pages=1 packed=0
page id=0 file="test.png"
chars count=5
char id=32  x=0   y=0   width=0   height=0   xoffset=0   yoffset=0   xadvance=10  page=0
char id=65  x=0   y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=66  x=20  y=0   width=18  height=30  xoffset=1   yoffset=2   xadvance=20  page=0
char id=67  x=38  y=0   width=19  height=30  xoffset=1   yoffset=2   xadvance=21  page=0
char id=68  x=57  y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
kernings count=2
kerning first=65 second=66 amount=-2
kerning first=65 second=67 amount=-1
`

const testFntDataNoLineHeight = `info face="Bad" size=32
page id=0 file="test.png"
chars count=1
char id=65 x=0 y=0 width=10 height=10 xoffset=0 yoffset=0 xadvance=12 page=0
`

const testFntDataNoChars = `info face="Bad" size=32
common lineHeight=40 base=30 scaleW=256 scaleH=256 pages=1 packed=0
page id=0 file="test.png"
`

func loadTestFont(t *testing.T) *BitmapFont {
	t.Helper()
	f, err := LoadBitmapFont([]byte(testFntData), newTexture(256, 256))
	if err != nil {
		t.Fatalf("LoadBitmapFont: %v", err)
	}
	return f
}

func TestLoadBitmapFont_Glyphs(t *testing.T) {
	f := loadTestFont(t)
	count := 0
	for i := range f.asciiSet {
		if f.asciiSet[i] {
			count++
		}
	}
	if count != 5 {
		t.Errorf("glyph count = %d, want 5", count)
	}
	if f.LineHeight() != 40 {
		t.Errorf("LineHeight = %d, want 40", f.LineHeight())
	}
}

func TestLoadBitmapFont_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid", "not valid fnt data at all"},
		{"missing line height", testFntDataNoLineHeight},
		{"no chars", testFntDataNoChars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadBitmapFont([]byte(tt.data), newTexture(8, 8)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestBitmapFont_Measure(t *testing.T) {
	f := loadTestFont(t)
	tests := []struct {
		text string
		want image.Point
	}{
		{"", image.Pt(0, 40)},
		{"AB", image.Pt(40, 40)}, // 22 - 2 + 20
		{"AC", image.Pt(42, 40)}, // 22 - 1 + 21
		{"CD", image.Pt(43, 40)},
		{"A\nB", image.Pt(22, 80)},
		{"A?B", image.Pt(42, 40)}, // unknown glyphs break kerning
	}
	for _, tt := range tests {
		if got := f.Measure(tt.text); got != tt.want {
			t.Errorf("Measure(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBitmapFont_DrawText(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerStaticText)

	f := loadTestFont(t)
	f.DrawText(dp, "A B\nC", image.Pt(100, 50))

	got := methods(dp.Current())
	if len(got) != 3 {
		t.Fatalf("glyphs = %d, want 3", len(got))
	}
	want := []struct{ dest, src image.Rectangle }{
		{image.Rect(101, 52, 121, 82), image.Rect(0, 0, 20, 30)},
		{image.Rect(133, 52, 151, 82), image.Rect(20, 0, 38, 30)},
		{image.Rect(101, 92, 120, 122), image.Rect(38, 0, 57, 30)},
	}
	for i, w := range want {
		m := got[i].method.(drawpool.TexturedRect)
		if m.Dest != w.dest || m.Src != w.src {
			t.Errorf("glyph %d = %v from %v, want %v from %v", i, m.Dest, m.Src, w.dest, w.src)
		}
		if got[i].texture() != f.Texture() {
			t.Errorf("glyph %d not drawn from the font page", i)
		}
	}
}

func TestBitmapFont_FromFace(t *testing.T) {
	f := testFont()
	if f.LineHeight() != 13 {
		t.Errorf("LineHeight = %d, want 13", f.LineHeight())
	}
	if got := f.Measure("hello"); got != image.Pt(35, 13) {
		t.Errorf("Measure(hello) = %v, want (35,13)", got)
	}
	if g := f.glyph(' '); g == nil || !g.src.Empty() {
		t.Error("space should be a glyph without ink")
	}
	if g := f.glyph('A'); g == nil || g.src.Empty() {
		t.Error("A should have ink")
	}
	if f.glyph('é') != nil {
		t.Error("non-ASCII glyph present")
	}
}
