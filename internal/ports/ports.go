package ports

import (
	"context"
	"io"

	"gemkey/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic dictation streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	Language       string
	InterimResults bool
}

// StreamingSession is an active provider websocket session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.DictationEvent
	Wait() error
	Close() error
}

// DictationProvider starts streaming transcription sessions.
type DictationProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// WordDecoder turns a key-crossing string into the intended word.
//
// Context may be empty when a privacy mode suppresses it. Implementations
// return an error only when no word could be produced; the caller applies
// its own deterministic fallback.
type WordDecoder interface {
	Decode(ctx context.Context, crossing, textContext, language string) (string, error)
}

// WritingAssistant exposes AI-assisted writing operations.
type WritingAssistant interface {
	Complete(ctx context.Context, text, language string) (string, error)
	FixGrammar(ctx context.Context, text, language string) (string, error)
	ChangeTone(ctx context.Context, text, tone string) (string, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	ExtractText(ctx context.Context, imageBase64, mediaType string) (string, error)
}

// FrequencyLearner records finalized words and produces ranked suggestions.
type FrequencyLearner interface {
	Record(word, language string) error
	Suggest(prefix, language string, limit int) ([]domain.Suggestion, error)
}

// HistoryStore persists clipboard history entries.
type HistoryStore interface {
	InsertClip(entry domain.ClipEntry) error
	ListClips() ([]domain.ClipEntry, error)
	SetClipPinned(id string, pinned bool) error
	DeleteClip(id string) error
	DeleteUnpinnedClips() error
	TrimClips(keep int) error
	LatestClip() (domain.ClipEntry, bool, error)
}

// Replacements transforms finalized text using deterministic rules.
type Replacements interface {
	Apply(text string) (string, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	BufferChanged(text string)
	WordDecoded(word domain.DecodedWord)
	SwipeDetected(direction domain.SwipeDirection, haptic bool)
	HideKeyboard()
	DictationStateChanged(state domain.DictationState, reason domain.DictationReason)
	PartialTranscript(text string)
	BackendError(code domain.ErrorCode, detail string)
}
