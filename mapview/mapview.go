package mapview

import (
	"fmt"
	"image"
	"time"

	"github.com/phanxgames/drawpool"
)

// DefaultVisibleDimension is the visible area in tiles.
var DefaultVisibleDimension = image.Pt(15, 11)

// extraTiles are drawn around the visible area so sprites that overflow
// their tile scroll in without popping.
const extraTiles = 3

// MapView draws a tile map around a camera into the layers of a pool.
//
// Map content and the foreground are drawn into canvases covering the whole
// draw area; the visible part is blitted to the screen rect. Creature
// information and texts are drawn in screen space, into canvases as large as
// the screen rect.
type MapView struct {
	pool  *drawpool.DrawPool
	font  *BitmapFont
	light *LightView
	now   func() time.Time

	tiles     map[Position]*Tile
	creatures map[uint32]*Creature
	statics   []*StaticText
	animated  []*AnimatedText
	effects   []placedEffect
	missiles  []*Missile

	camera      Position
	visible     image.Point
	tileSize    int
	floorsAbove int

	drawLights     bool
	drawNames      bool
	drawHealthBars bool
	drawHighlight  bool

	mouse     Position
	hasMouse  bool
	crosshair Sprite
	highlight drawpool.Color

	// scratch, reused every frame
	visibleCreatures []*Creature
}

// New returns a view drawing into pool. A nil font skips names and texts; a
// nil light view disables lights.
func New(pool *drawpool.DrawPool, font *BitmapFont, light *LightView) *MapView {
	return &MapView{
		pool:           pool,
		font:           font,
		light:          light,
		now:            time.Now,
		tiles:          make(map[Position]*Tile),
		creatures:      make(map[uint32]*Creature),
		visible:        DefaultVisibleDimension,
		tileSize:       SpriteSize,
		drawLights:     light != nil,
		drawNames:      true,
		drawHealthBars: true,
		drawHighlight:  true,
		highlight:      drawpool.ColorFromRGBA8(255, 255, 255, 255),
	}
}

// SetClock replaces the time source used for squares and texts.
func (m *MapView) SetClock(now func() time.Time) { m.now = now }

// --- Map content ---

// SetTile stores t at its position, replacing any previous tile.
func (m *MapView) SetTile(t *Tile) {
	m.tiles[t.Position] = t
}

// Tile returns the tile at pos, or nil.
func (m *MapView) Tile(pos Position) *Tile { return m.tiles[pos] }

func (m *MapView) tileAt(pos Position) *Tile {
	t := m.tiles[pos]
	if t == nil {
		t = NewTile(pos)
		m.tiles[pos] = t
	}
	return t
}

// AddThing puts it on top of the tile at pos, creating the tile if needed.
func (m *MapView) AddThing(pos Position, it *Item) {
	m.tileAt(pos).AddItem(it)
}

// RemoveThing removes it from the tile at pos. Emptied tiles are dropped.
func (m *MapView) RemoveThing(pos Position, it *Item) bool {
	t := m.tiles[pos]
	if t == nil || !t.RemoveItem(it) {
		return false
	}
	if t.IsEmpty() {
		delete(m.tiles, pos)
	}
	return true
}

// AddCreature places c on the tile at its position.
func (m *MapView) AddCreature(c *Creature) {
	if old, ok := m.creatures[c.ID]; ok && old != c {
		m.RemoveCreature(old.ID)
	}
	m.creatures[c.ID] = c
	m.tileAt(c.Position).AddCreature(c)
}

// Creature returns the creature with id, or nil.
func (m *MapView) Creature(id uint32) *Creature { return m.creatures[id] }

// MoveCreature moves the creature with id to pos. It reports false for an
// unknown id.
func (m *MapView) MoveCreature(id uint32, pos Position) bool {
	c := m.creatures[id]
	if c == nil {
		return false
	}
	if t := m.tiles[c.Position]; t != nil {
		t.RemoveCreature(c)
		if t.IsEmpty() {
			delete(m.tiles, c.Position)
		}
	}
	c.Position = pos
	m.tileAt(pos).AddCreature(c)
	return true
}

// RemoveCreature removes the creature with id from the map.
func (m *MapView) RemoveCreature(id uint32) bool {
	c := m.creatures[id]
	if c == nil {
		return false
	}
	delete(m.creatures, id)
	if t := m.tiles[c.Position]; t != nil {
		t.RemoveCreature(c)
		if t.IsEmpty() {
			delete(m.tiles, c.Position)
		}
	}
	return true
}

type placedEffect struct {
	pos    Position
	effect *Effect
}

// AddEffect starts e on the tile at pos. An effect without a start time
// starts now.
func (m *MapView) AddEffect(pos Position, e *Effect) {
	if e.start.IsZero() {
		e.start = m.now()
	}
	if e.Duration <= 0 {
		e.Duration = DefaultEffectDuration
	}
	m.tileAt(pos).AddEffect(e)
	m.effects = append(m.effects, placedEffect{pos: pos, effect: e})
}

// AddMissile launches a missile from one tile to another. It reports false
// for an empty or cross-floor path.
func (m *MapView) AddMissile(s Sprite, from, to Position) (*Missile, bool) {
	ms := NewMissile(s, from, to, m.now())
	if ms == nil {
		return nil, false
	}
	m.missiles = append(m.missiles, ms)
	return ms, true
}

// Missiles returns the missiles in flight.
func (m *MapView) Missiles() []*Missile { return m.missiles }

// AddStaticText adds a message spoken by name at pos. Messages of the same
// speaker at the same position are queued in one text.
func (m *MapView) AddStaticText(name string, pos Position, col drawpool.Color, message string) *StaticText {
	now := m.now()
	for _, s := range m.statics {
		if s.Name == name && s.Position == pos {
			s.AddMessage(message, now)
			return s
		}
	}
	s := NewStaticText(name, pos, col)
	s.AddMessage(message, now)
	m.statics = append(m.statics, s)
	return s
}

// StaticTexts returns the live static texts.
func (m *MapView) StaticTexts() []*StaticText { return m.statics }

// AddAnimatedText adds a floating text at pos. Numbers are merged into the
// newest text on the same tile when possible.
func (m *MapView) AddAnimatedText(text string, pos Position, col drawpool.Color) *AnimatedText {
	t := NewAnimatedText(text, pos, col)
	for i := len(m.animated) - 1; i >= 0; i-- {
		prev := m.animated[i]
		if prev.Position != pos {
			continue
		}
		if prev.Merge(t) {
			return prev
		}
		break
	}
	m.animated = append(m.animated, t)
	return t
}

// AnimatedTexts returns the running animated texts.
func (m *MapView) AnimatedTexts() []*AnimatedText { return m.animated }

// --- Camera and input ---

// SetCamera centers the view on pos. Moving the camera forces every layer
// to redraw.
func (m *MapView) SetCamera(pos Position) {
	if pos == m.camera {
		return
	}
	if m.hasMouse {
		if pos.Z == m.camera.Z {
			m.mouse = m.mouse.Translated(pos.X-m.camera.X, pos.Y-m.camera.Y, 0)
		} else {
			m.mouse.Z += pos.Z - m.camera.Z
		}
	}
	m.camera = pos
	m.pool.Update()
}

// Camera returns the camera position.
func (m *MapView) Camera() Position { return m.camera }

// SetVisibleDimension sets the visible area in tiles.
func (m *MapView) SetVisibleDimension(d image.Point) {
	m.visible = image.Pt(max(d.X, 1), max(d.Y, 1))
}

// SetTileSize sets the drawn edge of one tile in canvas pixels.
func (m *MapView) SetTileSize(size int) {
	m.tileSize = max(size, 1)
	if m.light != nil {
		m.light.SetTileSize(m.tileSize)
	}
}

// SetFloorsAbove sets how many floors above the camera are drawn.
func (m *MapView) SetFloorsAbove(n int) { m.floorsAbove = max(n, 0) }

// SetMouseTile sets the tile under the mouse, used by the crosshair and the
// highlight.
func (m *MapView) SetMouseTile(pos Position) {
	m.mouse = pos
	m.hasMouse = true
}

// ClearMouseTile removes the crosshair and the highlight.
func (m *MapView) ClearMouseTile() { m.hasMouse = false }

// --- Settings ---

// SetDrawLights toggles the light layer. Enabling requires a light view.
func (m *MapView) SetDrawLights(v bool) { m.drawLights = v && m.light != nil }

// SetDrawNames toggles creature names.
func (m *MapView) SetDrawNames(v bool) { m.drawNames = v }

// SetDrawHealthBars toggles creature health bars.
func (m *MapView) SetDrawHealthBars(v bool) { m.drawHealthBars = v }

// SetDrawHighlight toggles the border around the tile under the mouse.
func (m *MapView) SetDrawHighlight(v bool) { m.drawHighlight = v }

// SetCrosshair sets the sprite drawn over the tile under the mouse. An
// empty sprite disables it.
func (m *MapView) SetCrosshair(s Sprite) { m.crosshair = s }

// SetGlobalLight sets the ambient light.
func (m *MapView) SetGlobalLight(l Light) {
	if m.light != nil {
		m.light.SetGlobalLight(l)
	}
}

// --- Frame ---

// Update advances texts by dt and drops the finished texts, effects and
// missiles.
func (m *MapView) Update(dt time.Duration) {
	now := m.now()

	effects := m.effects[:0]
	for _, pe := range m.effects {
		if !pe.effect.Expired(now) {
			effects = append(effects, pe)
			continue
		}
		if t := m.tiles[pe.pos]; t != nil {
			t.RemoveEffect(pe.effect)
			if t.IsEmpty() {
				delete(m.tiles, pe.pos)
			}
		}
	}
	clear(m.effects[len(effects):])
	m.effects = effects

	missiles := m.missiles[:0]
	for _, ms := range m.missiles {
		if !ms.Done(now) {
			missiles = append(missiles, ms)
		}
	}
	clear(m.missiles[len(missiles):])
	m.missiles = missiles

	statics := m.statics[:0]
	for _, s := range m.statics {
		s.Update(now)
		if !s.Expired() {
			statics = append(statics, s)
		}
	}
	clear(m.statics[len(statics):])
	m.statics = statics

	animated := m.animated[:0]
	for _, t := range m.animated {
		t.Update(float32(dt.Seconds()))
		if !t.Done() {
			animated = append(animated, t)
		}
	}
	clear(m.animated[len(animated):])
	m.animated = animated
}

func (m *MapView) drawDimension() image.Point {
	return m.visible.Add(image.Pt(extraTiles, extraTiles))
}

func (m *MapView) virtualCenter() image.Point {
	return m.drawDimension().Div(2).Sub(image.Pt(1, 1))
}

// bufferRect is the canvas area of the map and foreground layers.
func (m *MapView) bufferRect() image.Rectangle {
	return image.Rectangle{Max: m.drawDimension().Mul(m.tileSize)}
}

// sourceRect is the visible part of the map canvas.
func (m *MapView) sourceRect() image.Rectangle {
	origin := m.virtualCenter().Sub(m.visible.Div(2)).Mul(m.tileSize)
	return image.Rectangle{Min: origin, Max: origin.Add(m.visible.Mul(m.tileSize))}
}

// TransformPosition returns the top-left corner of pos in map canvas pixels.
// Upper floors are shifted up-left by one tile per floor.
func (m *MapView) TransformPosition(pos Position) image.Point {
	vc := m.virtualCenter()
	dz := m.camera.Z - pos.Z
	return image.Pt(
		(vc.X+pos.X-m.camera.X-dz)*m.tileSize,
		(vc.Y+pos.Y-m.camera.Y-dz)*m.tileSize,
	)
}

// PositionAt returns the camera-floor tile under the screen point p when the
// view is drawn into rect.
func (m *MapView) PositionAt(p image.Point, rect image.Rectangle) (Position, bool) {
	if rect.Empty() || !p.In(rect) {
		return Position{}, false
	}
	src := m.sourceRect()
	rel := p.Sub(rect.Min)
	q := image.Pt(
		src.Min.X+rel.X*src.Dx()/rect.Dx(),
		src.Min.Y+rel.Y*src.Dy()/rect.Dy(),
	)
	tile := q.Div(m.tileSize).Sub(m.virtualCenter())
	return m.camera.Translated(tile.X, tile.Y, 0), true
}

// screenMapper converts map canvas points to a screen-sized canvas.
type screenMapper struct {
	src                image.Rectangle
	stretchX, stretchY float64
}

func newScreenMapper(src image.Rectangle, screen image.Point) screenMapper {
	return screenMapper{
		src:      src,
		stretchX: float64(screen.X) / float64(src.Dx()),
		stretchY: float64(screen.Y) / float64(src.Dy()),
	}
}

func (s screenMapper) point(p image.Point) image.Point {
	p = p.Sub(s.src.Min)
	return image.Pt(int(float64(p.X)*s.stretchX), int(float64(p.Y)*s.stretchY))
}

func (s screenMapper) tileSize(ts int) int {
	return max(int(float64(ts)*s.stretchX), 1)
}

// Draw opens every layer in composition order and submits its content. The
// visible map area is composited into rect by the next
// drawpool.DrawPool.DrawLayers call.
func (m *MapView) Draw(rect image.Rectangle) error {
	if rect.Empty() {
		return nil
	}
	now := m.now()
	buffer := m.bufferRect()
	src := m.sourceRect()

	if err := m.drawMap(buffer, rect, src, now); err != nil {
		return err
	}
	if err := m.drawLight(buffer, rect, src); err != nil {
		return err
	}

	screen := image.Rectangle{Max: rect.Size()}
	mapper := newScreenMapper(src, rect.Size())
	if err := m.drawCreatureInformation(rect, screen, mapper, now); err != nil {
		return err
	}
	if err := m.drawStaticTexts(rect, screen, mapper, now); err != nil {
		return err
	}
	if err := m.drawAnimatedTexts(rect, screen, mapper, now); err != nil {
		return err
	}
	return m.drawForeground(buffer, rect, src, now)
}

func (m *MapView) begin(l drawpool.LayerType, size image.Point, dest, src image.Rectangle) (bool, error) {
	ok, err := m.pool.Begin(l, size, dest, src)
	if err != nil {
		return false, fmt.Errorf("mapview: %w", err)
	}
	return ok, nil
}

func (m *MapView) collectLights() bool {
	return m.drawLights && m.light.IsDark()
}

// drawMap walks the floors from the camera floor up and every floor along
// its diagonals, top-left first, followed by the missiles of the floor.
// Tiles are visited even when the map layer is throttled, so lights and
// visible creatures are always collected.
func (m *MapView) drawMap(buffer, rect, src image.Rectangle, now time.Time) error {
	if _, err := m.begin(drawpool.LayerMap, buffer.Size(), rect, src); err != nil {
		return err
	}

	ctx := DrawContext{TileSize: m.tileSize, Now: now, Bounds: buffer, Font: m.font}
	if m.collectLights() {
		ctx.Light = m.light
	}
	m.visibleCreatures = m.visibleCreatures[:0]

	dim := m.drawDimension()
	vc := m.virtualCenter()
	diagonals := dim.X + dim.Y - 1
	for z := m.camera.Z; z >= m.camera.Z-m.floorsAbove; z-- {
		dz := m.camera.Z - z
		for d := 0; d < diagonals; d++ {
			advance := max(d-dim.Y+1, 0)
			for iy, ix := d-advance, advance; iy >= 0 && ix < dim.X; iy, ix = iy-1, ix+1 {
				pos := m.camera.Translated(ix-vc.X+dz, iy-vc.Y+dz, -dz)
				t := m.tiles[pos]
				if t == nil || t.IsEmpty() {
					continue
				}
				ctx.Dest = m.TransformPosition(pos)
				t.EmitDrawIntents(m.pool, &ctx)
				if z == m.camera.Z {
					m.visibleCreatures = append(m.visibleCreatures, t.Creatures()...)
				}
			}
		}
		for _, ms := range m.missiles {
			if ms.From.Z != z {
				continue
			}
			ctx.Dest = m.TransformPosition(ms.From)
			ms.EmitDrawIntents(m.pool, &ctx)
		}
	}
	return nil
}

// drawLight fills the light layer. With lights off the layer is cleared to
// white, which leaves the map untouched when blitted.
func (m *MapView) drawLight(buffer, rect, src image.Rectangle) error {
	ok, err := m.begin(drawpool.LayerLight, buffer.Size(), rect, src)
	if err != nil {
		return err
	}
	if !ok {
		if m.light != nil {
			m.light.Reset()
		}
		return nil
	}
	if !m.drawLights {
		m.pool.Current().SetColorClear(drawpool.ColorWhite)
		if m.light != nil {
			m.light.Reset()
		}
		return nil
	}
	ctx := DrawContext{TileSize: m.tileSize, Light: m.light, Bounds: buffer}
	m.light.EmitDrawIntents(m.pool, &ctx)
	return nil
}

func (m *MapView) drawCreatureInformation(rect, screen image.Rectangle, mapper screenMapper, now time.Time) error {
	ok, err := m.begin(drawpool.LayerCreatureInformation, screen.Size(), rect, screen)
	if err != nil || !ok {
		return err
	}
	if !m.drawNames && !m.drawHealthBars {
		return nil
	}
	ctx := DrawContext{TileSize: mapper.tileSize(m.tileSize), Now: now, Bounds: screen, Font: m.font}
	for _, c := range m.visibleCreatures {
		ctx.Dest = mapper.point(m.TransformPosition(c.Position))
		c.EmitInformation(m.pool, &ctx, m.drawNames, m.drawHealthBars)
	}
	return nil
}

func (m *MapView) drawStaticTexts(rect, screen image.Rectangle, mapper screenMapper, now time.Time) error {
	ok, err := m.begin(drawpool.LayerStaticText, screen.Size(), rect, screen)
	if err != nil || !ok {
		return err
	}
	ctx := DrawContext{TileSize: mapper.tileSize(m.tileSize), Now: now, Bounds: screen, Font: m.font}
	for _, s := range m.statics {
		if s.Position.Z != m.camera.Z {
			continue
		}
		ctx.Dest = mapper.point(m.TransformPosition(s.Position))
		s.EmitDrawIntents(m.pool, &ctx)
	}
	return nil
}

func (m *MapView) drawAnimatedTexts(rect, screen image.Rectangle, mapper screenMapper, now time.Time) error {
	ok, err := m.begin(drawpool.LayerDynamicText, screen.Size(), rect, screen)
	if err != nil || !ok {
		return err
	}
	ctx := DrawContext{TileSize: mapper.tileSize(m.tileSize), Now: now, Bounds: screen, Font: m.font}
	for _, t := range m.animated {
		if t.Position.Z != m.camera.Z {
			continue
		}
		ctx.Dest = mapper.point(m.TransformPosition(t.Position))
		t.EmitDrawIntents(m.pool, &ctx)
	}
	return nil
}

// drawForeground draws the highlight and the crosshair over the tile under
// the mouse.
func (m *MapView) drawForeground(buffer, rect, src image.Rectangle, now time.Time) error {
	ok, err := m.begin(drawpool.LayerForeground, buffer.Size(), rect, src)
	if err != nil || !ok || !m.hasMouse {
		return err
	}
	at := m.TransformPosition(m.mouse)
	tile := image.Rectangle{Min: at, Max: at.Add(image.Pt(m.tileSize, m.tileSize))}
	ctx := DrawContext{TileSize: m.tileSize, Now: now, Bounds: buffer}
	p := m.pool.Painter()

	if m.drawHighlight {
		p.SetColor(m.highlight)
		m.pool.AddBoundingRect(tile, max(ctx.scale(1), 1))
		p.ResetColor()
	}
	if !m.crosshair.Empty() {
		m.pool.AddTexturedRect(tile, m.crosshair.Texture, m.crosshair.src())
	}
	return nil
}
