// Package drawpool is the draw-batching core of a 2D tile-game client built on
// [Ebitengine].
//
// Producers (map tiles, creatures, lights, text) submit declarative draw
// intents each frame. The pool batches consecutive intents that share one
// [PainterState], drops opaque draws that a later draw fully covers, and
// caches each layer in an off-screen [FrameBuffer] that is only re-rendered
// when the layer's rolling content hash changes.
//
// # Wiring
//
// Everything is constructed explicitly; there are no globals beyond the
// logger:
//
//	device := drawpool.NewEbitenDevice()
//	painter := drawpool.NewPainter(device)
//	manager := drawpool.NewFrameBufferManager(painter)
//	pool := drawpool.New(painter, manager, drawpool.DefaultConfig())
//
// In the game's Draw:
//
//	device.SetScreen(screen)
//	if ok, err := pool.Begin(drawpool.LayerMap, size, screen.Bounds(), image.Rectangle{}); err != nil {
//		// canvas allocation failed
//	} else if ok {
//		pool.AddTexturedRect(dest, tex, src)
//	}
//	pool.DrawLayers()
//
// # Layers
//
// Each [LayerType] owns one frame buffer for the lifetime of the pool.
// At most one layer is open at a time; [DrawPool.Begin] on a throttled or
// disabled layer returns false and the producer's calls are dropped until the
// next Begin. [DrawPool.DrawLayers] composites the layers in declaration
// order: map, light, creature information, static text, dynamic text,
// foreground. A layer that was not redrawn this frame still blits its cached
// canvas.
//
// # Batching
//
// A draw call merges into the layer's last [DrawObject] when the painter state
// is equal. Non-adjacent calls never merge, so paint order is preserved.
// Raw geometry ([DrawPool.AddFillCoords], [DrawPool.AddTextureCoords]) and
// callbacks ([DrawPool.AddAction]) always start their own entry.
//
// An opaque [TexturedRect] removes an earlier opaque textured rect at the
// exact same destination when it is the same sprite, or an opaque texture at
// least as large. Any other draw at that destination in between blocks the
// removal.
//
// # Backends
//
// The core talks to the GPU through [Device]. [EbitenDevice] is the
// Ebitengine implementation; tests use recording fakes.
//
// # Logging
//
// The package is silent by default. See [SetLogger].
//
// [Ebitengine]: https://ebitengine.org
package drawpool
