package gesture

import (
	"sync"

	"gemkey/internal/domain"
)

// KeyLayout is a precomputed table of key hit rectangles registered by the
// frontend whenever the keyboard geometry changes (resize, split layout,
// one-handed mode, per-key scaling). It replaces per-sample DOM hit
// testing so the classifier works without a rendering surface.
type KeyLayout struct {
	mu   sync.RWMutex
	keys []domain.KeyBounds
}

func NewKeyLayout() *KeyLayout {
	return &KeyLayout{}
}

// Replace installs a new bounds table, discarding the previous one.
func (l *KeyLayout) Replace(keys []domain.KeyBounds) {
	copied := make([]domain.KeyBounds, len(keys))
	copy(copied, keys)

	l.mu.Lock()
	l.keys = copied
	l.mu.Unlock()
}

// KeyAt returns the key value whose rectangle contains (x, y). When
// rectangles overlap, the last registered key wins, matching the z-order
// of a layered layout. The empty string means no key.
func (l *KeyLayout) KeyAt(x, y float64) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.keys) - 1; i >= 0; i-- {
		k := l.keys[i]
		if x >= k.X && x < k.X+k.W && y >= k.Y && y < k.Y+k.H {
			return k.Value
		}
	}
	return ""
}

// Len reports how many key rectangles are registered.
func (l *KeyLayout) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keys)
}
