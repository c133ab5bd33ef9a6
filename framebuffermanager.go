package drawpool

import (
	"image"
	"math"
	"time"
)

// FrameBufferManager creates frame buffers and recycles temporary scratch
// buffers.
type FrameBufferManager struct {
	painter *Painter
	now     func() time.Time
	buffers []*FrameBuffer

	// temporary buffers keyed by power-of-two dimensions
	buckets map[uint64][]*FrameBuffer
}

// NewFrameBufferManager returns a manager drawing through p.
func NewFrameBufferManager(p *Painter) *FrameBufferManager {
	return &FrameBufferManager{painter: p, now: time.Now}
}

// SetClock replaces the time source used for update throttling.
func (m *FrameBufferManager) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Painter returns the painter the buffers draw through.
func (m *FrameBufferManager) Painter() *Painter { return m.painter }

// CreateFrameBuffer returns a new buffer without a canvas. The canvas is
// allocated by the first Resize. A positive minTimeUpdate throttles how
// often the buffer may be redrawn.
func (m *FrameBufferManager) CreateFrameBuffer(useAlphaWriting bool, minTimeUpdate time.Duration) *FrameBuffer {
	fb := newFrameBuffer(m, useAlphaWriting, minTimeUpdate)
	m.buffers = append(m.buffers, fb)
	return fb
}

// FrameBuffers returns every buffer created by this manager, excluding
// temporaries.
func (m *FrameBufferManager) FrameBuffers() []*FrameBuffer { return m.buffers }

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// AcquireTemporary returns a scratch buffer with at least size pixels.
// Dimensions are rounded up to the next power of two. The buffer's canvas is
// cleared when it is next bound.
func (m *FrameBufferManager) AcquireTemporary(size image.Point) (*FrameBuffer, error) {
	pw := nextPowerOfTwo(size.X)
	ph := nextPowerOfTwo(size.Y)
	key := poolKey(pw, ph)

	if stack := m.buckets[key]; len(stack) > 0 {
		fb := stack[len(stack)-1]
		m.buckets[key] = stack[:len(stack)-1]
		return fb, nil
	}

	fb := newFrameBuffer(m, true, 0)
	fb.temporary = true
	if err := fb.Resize(image.Pt(pw, ph)); err != nil {
		return nil, err
	}
	return fb, nil
}

// ReleaseTemporary returns a buffer obtained from AcquireTemporary.
func (m *FrameBufferManager) ReleaseTemporary(fb *FrameBuffer) {
	if fb == nil || !fb.temporary {
		return
	}
	fb.clearActions()
	if m.buckets == nil {
		m.buckets = make(map[uint64][]*FrameBuffer)
	}
	key := poolKey(fb.size.X, fb.size.Y)
	m.buckets[key] = append(m.buckets[key], fb)
}

// Terminate disposes every canvas owned by the manager.
func (m *FrameBufferManager) Terminate() {
	for _, fb := range m.buffers {
		disposeCanvas(fb)
	}
	for _, stack := range m.buckets {
		for _, fb := range stack {
			disposeCanvas(fb)
		}
	}
	m.buffers = nil
	m.buckets = nil
}

func disposeCanvas(fb *FrameBuffer) {
	if fb.canvas != nil {
		fb.canvas.Dispose()
		fb.canvas = nil
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
