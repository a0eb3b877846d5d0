package gesture

import (
	"math"
	"sync"

	"gemkey/internal/domain"
)

// SwipeThreshold is the net displacement, in surface pixels, beyond which
// a gesture is a swipe rather than a trace.
const SwipeThreshold = 50.0

// minCrossingKeys is the number of distinct-in-succession keys a trace
// must exceed before it is worth decoding. Counted in keys, not bytes,
// so multi-byte key values on non-Latin layouts gate the same way.
const minCrossingKeys = 2

// Tracker accumulates one continuous touch contact and classifies it on
// release.
//
// States: idle -> tracing -> (resolved). A resolution recycles the path
// into the pool; swipes always win over trace decoding.
type Tracker struct {
	mu sync.Mutex

	pool   *PointPool
	layout *KeyLayout

	tracing     bool
	startX      float64
	startY      float64
	path        []*Point
	crossing    []byte
	keysCrossed int
	lastKey     string
}

// NewTracker creates a tracker drawing point storage from pool and key
// identity from layout. Both are required collaborators.
func NewTracker(pool *PointPool, layout *KeyLayout) *Tracker {
	return &Tracker{
		pool:     pool,
		layout:   layout,
		path:     make([]*Point, 0, 128),
		crossing: make([]byte, 0, 32),
	}
}

// Start begins tracking a new contact. Any leftover path from an
// interrupted gesture is recycled defensively first.
func (t *Tracker) Start(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.releasePathLocked()
	t.tracing = true
	t.startX = x
	t.startY = y
	t.crossing = t.crossing[:0]
	t.keysCrossed = 0
	t.lastKey = ""
	t.path = append(t.path, t.pool.Obtain(x, y))
	t.appendCrossingLocked(x, y)
}

// Move records one touch-move sample. The rendering path always grows;
// the crossing string grows only when the sample lands on a key that
// differs from the last appended one, so a key held under the finger
// across several samples contributes a single character.
func (t *Tracker) Move(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracing {
		return
	}
	t.path = append(t.path, t.pool.Obtain(x, y))
	t.appendCrossingLocked(x, y)
}

// End classifies the finished contact and releases the path.
func (t *Tracker) End(x, y float64) domain.Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracing {
		return domain.Resolution{Kind: domain.ResolutionNone}
	}
	t.tracing = false

	dx := x - t.startX
	dy := y - t.startY
	crossing := string(t.crossing)
	t.releasePathLocked()

	if math.Max(math.Abs(dx), math.Abs(dy)) > SwipeThreshold {
		// A long swipe is never sent to the decoder, even when it
		// crossed several keys. Upward swipes carry no action.
		if dir, ok := classifySwipe(dx, dy); ok {
			return domain.Resolution{Kind: domain.ResolutionSwipe, Swipe: dir}
		}
		return domain.Resolution{Kind: domain.ResolutionNone}
	}
	if t.keysCrossed > minCrossingKeys {
		return domain.Resolution{Kind: domain.ResolutionTrace, Crossing: crossing}
	}
	return domain.Resolution{Kind: domain.ResolutionNone}
}

// Cancel abandons an active trace without classification. Used when a
// second finger lands and the contact becomes a pinch-resize gesture; the
// path is recycled rather than silently dropped.
func (t *Tracker) Cancel() domain.Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracing {
		return domain.Resolution{Kind: domain.ResolutionNone}
	}
	t.tracing = false
	t.releasePathLocked()
	return domain.Resolution{Kind: domain.ResolutionCancelled}
}

// Tracing reports whether a contact is currently being tracked.
func (t *Tracker) Tracing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracing
}

// Snapshot appends a copy of the current path to dst and returns it,
// along with whether a trace is active. The copy keeps the renderer from
// observing a half-updated path mid-event.
func (t *Tracker) Snapshot(dst []domain.TracePoint) ([]domain.TracePoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracing {
		return dst, false
	}
	for _, pt := range t.path {
		dst = append(dst, domain.TracePoint{X: pt.X, Y: pt.Y})
	}
	return dst, true
}

func (t *Tracker) appendCrossingLocked(x, y float64) {
	key := t.layout.KeyAt(x, y)
	if key == "" || key == t.lastKey {
		return
	}
	t.lastKey = key
	t.keysCrossed++
	t.crossing = append(t.crossing, key...)
}

func (t *Tracker) releasePathLocked() {
	if len(t.path) == 0 {
		return
	}
	t.pool.Recycle(t.path)
	for i := range t.path {
		t.path[i] = nil
	}
	t.path = t.path[:0]
}

func classifySwipe(dx, dy float64) (domain.SwipeDirection, bool) {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return domain.SwipeRight, true
		}
		return domain.SwipeLeft, true
	}
	if dy > 0 {
		return domain.SwipeDown, true
	}
	return "", false
}
