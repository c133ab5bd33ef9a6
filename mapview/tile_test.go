package mapview

import (
	"image"
	"testing"

	"github.com/phanxgames/drawpool"
)

func TestTile_DrawOrder(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)

	ground := newTexture(32, 32)
	wall := newTexture(32, 32)
	coin := newTexture(32, 32)
	sword := newTexture(32, 32)
	roof := newTexture(32, 32)
	outfit := newTexture(32, 32)

	tile := NewTile(Position{})
	// insertion order differs from draw order on purpose
	tile.AddItem(&Item{Sprite: sprite(roof), Kind: ItemTop})
	tile.AddItem(&Item{Sprite: sprite(coin), Kind: ItemCommon})
	tile.AddItem(&Item{Sprite: sprite(wall), Kind: ItemBottom})
	tile.AddItem(&Item{Sprite: sprite(sword), Kind: ItemCommon})
	tile.AddItem(&Item{Sprite: sprite(ground), Kind: ItemGround})
	c := NewCreature(1, "rat")
	c.Outfit.Sprite = sprite(outfit)
	tile.AddCreature(c)

	ctx := &DrawContext{Dest: image.Pt(64, 64), TileSize: 32}
	tile.EmitDrawIntents(dp, ctx)

	got := methods(dp.Current())
	want := []drawpool.Texture{ground, wall, sword, coin, outfit, roof}
	if len(got) != len(want) {
		t.Fatalf("methods = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].texture() != w {
			t.Errorf("draw %d texture id = %d, want %d", i, got[i].texture().ID(), w.ID())
		}
	}
}

func TestTile_Elevation(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)

	table := newTexture(32, 32)
	cup := newTexture(32, 32)

	tile := NewTile(Position{})
	tile.AddItem(&Item{Sprite: sprite(table), Kind: ItemBottom, Elevation: 8})
	tile.AddItem(&Item{Sprite: sprite(cup), Kind: ItemCommon})

	ctx := &DrawContext{Dest: image.Pt(64, 64), TileSize: 32}
	tile.EmitDrawIntents(dp, ctx)

	got := methods(dp.Current())
	if len(got) != 2 {
		t.Fatalf("methods = %d, want 2", len(got))
	}
	if r := got[0].dest(); r != image.Rect(64, 64, 96, 96) {
		t.Errorf("table dest = %v, want (64,64)-(96,96)", r)
	}
	if r := got[1].dest(); r != image.Rect(56, 56, 88, 88) {
		t.Errorf("cup dest = %v, want (56,56)-(88,88)", r)
	}
	if tile.Elevation() != 8 {
		t.Errorf("Elevation = %d, want 8", tile.Elevation())
	}
}

func TestTile_ElevationClamped(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)

	tile := NewTile(Position{})
	for i := 0; i < 4; i++ {
		tile.AddItem(&Item{Sprite: sprite(newTexture(32, 32)), Kind: ItemBottom, Elevation: 10})
	}
	tile.EmitDrawIntents(dp, &DrawContext{TileSize: 32})

	if tile.Elevation() != MaxElevation {
		t.Errorf("Elevation = %d, want %d", tile.Elevation(), MaxElevation)
	}
}

func TestTile_ElevationScaled(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)

	tile := NewTile(Position{})
	tile.AddItem(&Item{Sprite: sprite(newTexture(32, 32)), Kind: ItemBottom, Elevation: 8})
	tile.AddItem(&Item{Sprite: sprite(newTexture(32, 32)), Kind: ItemCommon})
	tile.EmitDrawIntents(dp, &DrawContext{TileSize: 64})

	got := methods(dp.Current())
	if r := got[1].dest(); r != image.Rect(-16, -16, 48, 48) {
		t.Errorf("stacked dest = %v, want (-16,-16)-(48,48)", r)
	}
}

func TestTile_TopItemsIgnoreElevation(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)

	roof := newTexture(32, 32)
	tile := NewTile(Position{})
	tile.AddItem(&Item{Sprite: sprite(newTexture(32, 32)), Kind: ItemBottom, Elevation: 16})
	tile.AddItem(&Item{Sprite: sprite(roof), Kind: ItemTop})
	tile.EmitDrawIntents(dp, &DrawContext{TileSize: 32})

	got := methods(dp.Current())
	last := got[len(got)-1]
	if last.texture() != roof {
		t.Fatal("top item not drawn last")
	}
	if r := last.dest(); r != image.Rect(0, 0, 32, 32) {
		t.Errorf("top dest = %v, want (0,0)-(32,32)", r)
	}
}

func TestItem_LargeSpriteAnchoredBottomRight(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)

	it := &Item{Sprite: sprite(newTexture(64, 64))}
	it.EmitDrawIntents(dp, &DrawContext{Dest: image.Pt(64, 64), TileSize: 32})

	got := methods(dp.Current())
	if r := got[0].dest(); r != image.Rect(32, 32, 96, 96) {
		t.Errorf("dest = %v, want (32,32)-(96,96)", r)
	}
}

func TestItem_Tint(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)
	tint := drawpool.Color{R: 1, G: 0.5, B: 0.5, A: 1}

	(&Item{Sprite: sprite(newTexture(32, 32)), Tint: tint}).EmitDrawIntents(dp, &DrawContext{TileSize: 32})
	(&Item{Sprite: sprite(newTexture(32, 32))}).EmitDrawIntents(dp, &DrawContext{TileSize: 32})

	got := methods(dp.Current())
	if got[0].state.Color != tint {
		t.Errorf("tinted color = %v, want %v", got[0].state.Color, tint)
	}
	if got[1].state.Color != drawpool.ColorWhite {
		t.Errorf("untinted color = %v, want white", got[1].state.Color)
	}
}

func TestItem_LightCollected(t *testing.T) {
	dp, _, _ := newTestPool()
	openLayer(dp, drawpool.LayerMap)
	lv := NewLightView(newTexture(8, 8))

	it := &Item{Sprite: sprite(newTexture(32, 32)), Light: Light{Intensity: 3, Color: 215}}
	it.EmitDrawIntents(dp, &DrawContext{Dest: image.Pt(32, 64), TileSize: 32, Light: lv})

	src := lv.Sources()
	if len(src) != 1 {
		t.Fatalf("sources = %d, want 1", len(src))
	}
	if src[0].Center != image.Pt(48, 80) {
		t.Errorf("center = %v, want (48,80)", src[0].Center)
	}
	if src[0].Radius != 96 {
		t.Errorf("radius = %d, want 96", src[0].Radius)
	}
}

func TestTile_AddRemove(t *testing.T) {
	tile := NewTile(Position{X: 1})
	if !tile.IsEmpty() {
		t.Fatal("new tile not empty")
	}
	it := &Item{}
	c := NewCreature(7, "orc")

	tile.AddItem(it)
	tile.AddCreature(c)
	tile.AddCreature(c)
	if n := len(tile.Creatures()); n != 1 {
		t.Errorf("creatures = %d, want 1", n)
	}
	if !tile.RemoveItem(it) {
		t.Error("RemoveItem = false")
	}
	if tile.RemoveItem(it) {
		t.Error("second RemoveItem = true")
	}
	if !tile.RemoveCreature(c) {
		t.Error("RemoveCreature = false")
	}
	if !tile.IsEmpty() {
		t.Error("tile not empty after removals")
	}
}

func TestTile_HasLight(t *testing.T) {
	tile := NewTile(Position{})
	tile.AddItem(&Item{})
	if tile.HasLight() {
		t.Error("HasLight = true without lights")
	}
	c := NewCreature(1, "torch bearer")
	c.Light = Light{Intensity: 2}
	tile.AddCreature(c)
	if !tile.HasLight() {
		t.Error("HasLight = false with a lit creature")
	}
}
