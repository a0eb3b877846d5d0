package editor

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Buffer is the text being composed. All mutation goes through it so the
// gesture, dictation, and writing paths observe a single source of truth.
type Buffer struct {
	mu   sync.Mutex
	text string
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Text returns the current buffer contents.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// SetText replaces the buffer contents.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.SetText("")
}

// Insert appends raw text without spacing adjustments.
func (b *Buffer) Insert(text string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text += text
	return b.text
}

// AppendWord appends a decoded or dictated word with automatic spacing:
// a leading space only when the buffer is non-empty and does not already
// end in whitespace, and always a trailing space.
func (b *Buffer) AppendWord(word string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if word == "" {
		return b.text
	}
	if b.text != "" && !endsInSpace(b.text) {
		b.text += " "
	}
	b.text += word + " "
	return b.text
}

// Backspace removes the last rune.
func (b *Buffer) Backspace() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.text == "" {
		return b.text
	}
	_, size := utf8.DecodeLastRuneInString(b.text)
	b.text = b.text[:len(b.text)-size]
	return b.text
}

// DeleteLastWord removes the last whitespace-delimited word, preserving
// the whitespace before it: "the quick fox " becomes "the quick ".
func (b *Buffer) DeleteLastWord() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	trimmed := strings.TrimRightFunc(b.text, unicode.IsSpace)
	if trimmed == "" {
		b.text = ""
		return b.text
	}
	idx := strings.LastIndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		b.text = ""
		return b.text
	}
	_, size := utf8.DecodeRuneInString(trimmed[idx:])
	b.text = trimmed[:idx+size]
	return b.text
}

// Context returns up to maxRunes of trailing buffer text for the decoder.
func (b *Buffer) Context(maxRunes int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(b.text)
	if len(runes) <= maxRunes {
		return b.text
	}
	return string(runes[len(runes)-maxRunes:])
}

func endsInSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
