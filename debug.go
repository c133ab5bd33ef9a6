package drawpool

import "fmt"

// FrameStats counts the work done by a pool since the last reset.
// DrawLayers resets it after logging.
type FrameStats struct {
	Rendered  int // layers whose queue was replayed
	Cached    int // layers blitted from an unchanged canvas
	Actions   int // callbacks executed
	DrawCalls int // device draw calls, blits included
	Vertices  int // vertices submitted by replay
}

// Stats returns the counters accumulated since the last reset.
func (dp *DrawPool) Stats() FrameStats { return dp.stats }

// ResetStats zeroes the counters.
func (dp *DrawPool) ResetStats() { dp.stats = FrameStats{} }

func (dp *DrawPool) debugLog() {
	s := dp.stats
	Logger().Debug("drawpool frame",
		"rendered", s.Rendered,
		"cached", s.Cached,
		"actions", s.Actions,
		"draw_calls", s.DrawCalls,
		"vertices", s.Vertices)
}

// debugCheckDrawObject panics when an object carries both a caller buffer
// and a method list. That is a producer bug, not a runtime condition.
func debugCheckDrawObject(obj *DrawObject) {
	if obj.Coords != nil && len(obj.methods) > 0 {
		panic(fmt.Sprintf("drawpool debug: draw object has both coords (%d vertices) and %d methods",
			obj.Coords.VertexCount(), len(obj.methods)))
	}
}

// countMethods returns the number of methods queued in actions, for tests
// and diagnostics.
func countMethods(actions []ScheduledAction) int {
	n := 0
	for _, a := range actions {
		if obj, ok := a.(*DrawObject); ok {
			n += len(obj.methods)
		}
	}
	return n
}
