// Package learner is the word-frequency learner feeding the predictive
// suggestion bar. It only ever sees finalized words; privacy modes are
// enforced by the caller skipping Record entirely.
package learner

import (
	"strings"
	"time"

	"gemkey/internal/domain"
)

// WordStore is the persistence slice the learner needs.
type WordStore interface {
	RecordWord(word, language string, usedAt time.Time) error
	SuggestWords(prefix, language string, limit int) ([]domain.Suggestion, error)
}

// Learner records word usage and produces ranked suggestions.
type Learner struct {
	store WordStore
}

func New(store WordStore) *Learner {
	return &Learner{store: store}
}

// Record notes one use of word in the given language. Words are
// normalized to lower case; empty and single-rune words are ignored.
func (l *Learner) Record(word, language string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if len([]rune(word)) < 2 {
		return nil
	}
	if language == "" {
		language = "en"
	}
	return l.store.RecordWord(word, language, time.Now())
}

// Suggest returns up to limit learned words starting with prefix, ranked
// by frequency then recency.
func (l *Learner) Suggest(prefix, language string, limit int) ([]domain.Suggestion, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}
	if language == "" {
		language = "en"
	}
	return l.store.SuggestWords(prefix, language, limit)
}
