package mapview

import (
	"image"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/drawpool"
)

const (
	// AnimatedTextDuration is the lifetime of a floating text.
	AnimatedTextDuration = time.Second

	staticDurationPerChar = 60 * time.Millisecond
	minStaticTextDuration = 3 * time.Second

	animatedTextStartY = 8
	animatedTextRise   = 48
	animatedTextFadeAt = 1 / 1.2
)

// drawCentered draws every line of s centered inside a box as wide as the
// widest line, with the top-left of the box at origin.
func drawCentered(dp *drawpool.DrawPool, f *BitmapFont, s string, origin image.Point) {
	width := f.Measure(s).X
	y := origin.Y
	for line := range strings.SplitSeq(s, "\n") {
		w := f.Measure(line).X
		f.DrawText(dp, line, image.Pt(origin.X+(width-w)/2, y))
		y += f.LineHeight()
	}
}

type staticMessage struct {
	text    string
	expires time.Time
}

// StaticText is the speech bubble above a speaking creature. Each message
// stays for a time proportional to its length; the text expires with its
// last message.
type StaticText struct {
	Name     string
	Position Position
	Color    drawpool.Color

	messages []staticMessage
}

// NewStaticText returns an empty text spoken by name at pos.
func NewStaticText(name string, pos Position, col drawpool.Color) *StaticText {
	return &StaticText{Name: name, Position: pos, Color: col}
}

func messageDuration(text string) time.Duration {
	return max(time.Duration(utf8.RuneCountInString(text))*staticDurationPerChar, minStaticTextDuration)
}

// AddMessage queues text, expiring relative to now.
func (s *StaticText) AddMessage(text string, now time.Time) {
	s.messages = append(s.messages, staticMessage{text: text, expires: now.Add(messageDuration(text))})
}

// Update drops the messages expired at now.
func (s *StaticText) Update(now time.Time) {
	live := s.messages[:0]
	for _, m := range s.messages {
		if now.Before(m.expires) {
			live = append(live, m)
		}
	}
	clear(s.messages[len(live):])
	s.messages = live
}

// Expired reports whether no message is left.
func (s *StaticText) Expired() bool { return len(s.messages) == 0 }

// Text returns the rendered text, the speaker line followed by one line per
// message.
func (s *StaticText) Text() string {
	if len(s.messages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(" says:")
	for _, m := range s.messages {
		b.WriteByte('\n')
		b.WriteString(m.text)
	}
	return b.String()
}

// EmitDrawIntents draws the text centered above the tile at ctx.Dest, kept
// inside ctx.Bounds.
func (s *StaticText) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	if ctx.Font == nil || s.Expired() {
		return
	}
	text := s.Text()
	size := ctx.Font.Measure(text)
	at := ctx.Dest.Sub(image.Pt(size.X/2, size.Y)).Add(ctx.scalePoint(image.Pt(20, 5)))
	r := bindRect(image.Rectangle{Min: at, Max: at.Add(size)}, ctx.Bounds)

	p := dp.Painter()
	p.SetColor(s.Color)
	drawCentered(dp, ctx.Font, text, r.Min)
	p.ResetColor()
}

// AnimatedText is a short floating text, like a damage number, that rises
// from its tile and fades out.
type AnimatedText struct {
	Position Position
	Color    drawpool.Color

	text     string
	elapsed  float32
	duration float32

	offsetY float32
	alpha   float32
	rise    *gween.Tween
	fade    *gween.Tween
	done    bool
}

// NewAnimatedText returns a text starting its animation now.
func NewAnimatedText(text string, pos Position, col drawpool.Color) *AnimatedText {
	d := float32(AnimatedTextDuration.Seconds())
	fadeStart := d * animatedTextFadeAt
	return &AnimatedText{
		Position: pos,
		Color:    col,
		text:     text,
		duration: d,
		offsetY:  animatedTextStartY,
		alpha:    1,
		rise:     gween.New(animatedTextStartY, animatedTextStartY-animatedTextRise, d, ease.Linear),
		fade:     gween.New(1, 0, d-fadeStart, ease.Linear),
	}
}

// Text returns the displayed text.
func (t *AnimatedText) Text() string { return t.text }

// Done reports whether the animation has finished.
func (t *AnimatedText) Done() bool { return t.done }

// Elapsed returns the animation time in seconds.
func (t *AnimatedText) Elapsed() float32 { return t.elapsed }

// Update advances the animation by dt seconds.
func (t *AnimatedText) Update(dt float32) {
	if t.done || dt <= 0 {
		return
	}
	fadeStart := t.duration * animatedTextFadeAt
	t.elapsed += dt

	t.offsetY, t.done = t.rise.Update(dt)
	if t.elapsed > fadeStart {
		t.alpha, _ = t.fade.Update(min(dt, t.elapsed-fadeStart))
	}
}

// Merge folds other into t when both show numbers of the same color and t
// is still young. The numbers are summed.
func (t *AnimatedText) Merge(other *AnimatedText) bool {
	if t.Color != other.Color || t.elapsed > t.duration/2.5 {
		return false
	}
	a, err := strconv.Atoi(t.text)
	if err != nil {
		return false
	}
	b, err := strconv.Atoi(other.text)
	if err != nil {
		return false
	}
	t.text = strconv.Itoa(a + b)
	return true
}

// EmitDrawIntents draws the text above the tile at ctx.Dest. Texts that
// would leave ctx.Bounds are skipped.
func (t *AnimatedText) EmitDrawIntents(dp *drawpool.DrawPool, ctx *DrawContext) {
	if ctx.Font == nil || t.done {
		return
	}
	size := ctx.Font.Measure(t.text)
	at := ctx.Dest.Add(image.Pt(ctx.scale(24)-size.X/2, ctx.scale(int(t.offsetY))))
	r := image.Rectangle{Min: at, Max: at.Add(size)}
	if !ctx.Bounds.Empty() && !r.In(ctx.Bounds) {
		return
	}

	c := t.Color
	c.A *= float64(t.alpha)
	p := dp.Painter()
	p.SetColor(c)
	ctx.Font.DrawText(dp, t.text, r.Min)
	p.ResetColor()
}
