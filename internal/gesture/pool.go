package gesture

// Point is one reusable trace coordinate. While idle it is owned by the
// pool; while in-flight it is owned by exactly one gesture path.
type Point struct {
	X float64
	Y float64
}

const defaultPoolCapacity = 500

// PointPool recycles Point storage across touch-move samples to reduce
// allocation churn. It performs no locking: the producer is a single
// event-handling goroutine by caller contract.
type PointPool struct {
	free     []*Point
	capacity int
}

// NewPointPool creates a pool retaining at most capacity idle points.
// A non-positive capacity selects the default of 500.
func NewPointPool(capacity int) *PointPool {
	if capacity <= 0 {
		capacity = defaultPoolCapacity
	}
	return &PointPool{
		free:     make([]*Point, 0, capacity),
		capacity: capacity,
	}
}

// Obtain returns a point initialized to (x, y), recycled from internal
// storage when available, freshly allocated otherwise.
func (p *PointPool) Obtain(x, y float64) *Point {
	if n := len(p.free); n > 0 {
		pt := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		pt.X = x
		pt.Y = y
		return pt
	}
	return &Point{X: x, Y: y}
}

// Recycle returns as many of the given points as fit under capacity back
// into internal storage. Excess points are abandoned for normal memory
// reclamation; exhaustion is never an error.
func (p *PointPool) Recycle(points []*Point) {
	for _, pt := range points {
		if pt == nil {
			continue
		}
		if len(p.free) >= p.capacity {
			return
		}
		p.free = append(p.free, pt)
	}
}

// Cleanup empties the pool.
func (p *PointPool) Cleanup() {
	for i := range p.free {
		p.free[i] = nil
	}
	p.free = p.free[:0]
}

// Idle reports how many points are currently retained.
func (p *PointPool) Idle() int {
	return len(p.free)
}
