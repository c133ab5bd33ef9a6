// Package mapview contains the layer producers of a tile-game client: the
// map tiles with their items and creatures, the light view, speech and
// damage texts, and the MapView that feeds them to a [drawpool.DrawPool]
// once per frame.
//
// Producers never talk to the GPU. They submit draw intents to whichever
// layer the pool has open, and the pool decides whether the layer's cached
// canvas needs to be replayed.
//
//	pool := drawpool.New(painter, manager, drawpool.DefaultConfig())
//	view := mapview.New(pool, font, mapview.NewDefaultLightView())
//	view.SetCamera(mapview.Position{X: 100, Y: 100, Z: 7})
//
//	// in Draw
//	device.SetScreen(screen)
//	if err := view.Draw(screenRect); err != nil {
//		return err
//	}
//	pool.DrawLayers()
//
// Sprites come from a [SpriteSheet] (TexturePacker JSON) and text is drawn
// with a [BitmapFont], either built from a [golang.org/x/image/font.Face] or
// loaded from BMFont .fnt data.
package mapview
