// Package history maintains the clipboard history: every copy made from
// the keyboard is recorded (outside privacy modes), pinned entries
// survive pruning, and entries can be pasted back through the system
// clipboard.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gemkey/internal/domain"
	"gemkey/internal/ports"
)

var ErrClipNotFound = errors.New("clipboard entry not found")

// Manager is the clipboard history usecase.
type Manager struct {
	store     ports.HistoryStore
	clipboard ports.Clipboard
	capacity  int
}

// NewManager creates a history manager keeping at most capacity unpinned
// entries.
func NewManager(store ports.HistoryStore, clipboard ports.Clipboard, capacity int) *Manager {
	if capacity <= 0 {
		capacity = 50
	}
	return &Manager{store: store, clipboard: clipboard, capacity: capacity}
}

// Record stores copied text unless privacy mode is active or the text is
// identical to the most recent entry. Older unpinned entries beyond
// capacity are pruned.
func (m *Manager) Record(text string, private bool) error {
	text = strings.TrimSpace(text)
	if text == "" || private {
		return nil
	}

	if latest, ok, err := m.store.LatestClip(); err != nil {
		return err
	} else if ok && latest.Text == text {
		return nil
	}

	entry := domain.ClipEntry{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := m.store.InsertClip(entry); err != nil {
		return err
	}
	return m.store.TrimClips(m.capacity)
}

// List returns all entries, pinned first.
func (m *Manager) List() ([]domain.ClipEntry, error) {
	return m.store.ListClips()
}

// Pin updates an entry's pinned flag.
func (m *Manager) Pin(id string, pinned bool) error {
	return m.store.SetClipPinned(id, pinned)
}

// Delete removes one entry.
func (m *Manager) Delete(id string) error {
	return m.store.DeleteClip(id)
}

// Clear removes every unpinned entry.
func (m *Manager) Clear() error {
	return m.store.DeleteUnpinnedClips()
}

// Paste writes the identified entry back into the system clipboard.
func (m *Manager) Paste(ctx context.Context, id string) (domain.ClipEntry, error) {
	entries, err := m.store.ListClips()
	if err != nil {
		return domain.ClipEntry{}, err
	}
	entry, found := lo.Find(entries, func(e domain.ClipEntry) bool { return e.ID == id })
	if !found {
		return domain.ClipEntry{}, ErrClipNotFound
	}
	if err := m.clipboard.SetText(ctx, entry.Text); err != nil {
		return domain.ClipEntry{}, err
	}
	return entry, nil
}
