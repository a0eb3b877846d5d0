package domain

import "time"

// SwipeDirection identifies a directional swipe resolved from a gesture.
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
	SwipeDown  SwipeDirection = "down"
)

// ResolutionKind identifies how a completed gesture was classified.
type ResolutionKind string

const (
	ResolutionNone      ResolutionKind = "none"
	ResolutionSwipe     ResolutionKind = "swipe"
	ResolutionTrace     ResolutionKind = "trace"
	ResolutionCancelled ResolutionKind = "cancelled"
)

// Resolution is the outcome of a finished or abandoned gesture.
type Resolution struct {
	Kind     ResolutionKind `json:"kind"`
	Swipe    SwipeDirection `json:"swipe,omitempty"`
	Crossing string         `json:"crossing,omitempty"`
}

// KeyBounds is one key's hit rectangle in drawing-surface coordinates.
type KeyBounds struct {
	Value string  `json:"value"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

// TracePoint is one point of the rendered trace polyline.
type TracePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TraceFrame is one animation-frame snapshot of the active trace.
type TraceFrame struct {
	Active      bool         `json:"active"`
	Points      []TracePoint `json:"points"`
	StrokeColor string       `json:"strokeColor"`
	StrokeWidth float64      `json:"strokeWidth"`
}

// DictationState models the voice dictation lifecycle.
type DictationState string

const (
	DictationStateIdle      DictationState = "idle"
	DictationStateRecording DictationState = "recording"
	DictationStateStopping  DictationState = "stopping"
	DictationStateError     DictationState = "error"
)

// DictationReason provides a structured reason for state transitions.
type DictationReason string

const (
	DictationReasonReady              DictationReason = "ready"
	DictationReasonRecordingStarted   DictationReason = "recording_started"
	DictationReasonRecordingRestarted DictationReason = "recording_restarted"
	DictationReasonTranscribing       DictationReason = "transcribing"
	DictationReasonTranscriptInserted DictationReason = "transcript_inserted"
	DictationReasonRecordingDiscarded DictationReason = "recording_discarded"
	DictationReasonNoTranscript       DictationReason = "no_transcript"
	DictationReasonTranscriptFailed   DictationReason = "transcript_failed"
	DictationReasonReplacementsFailed DictationReason = "replacements_failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeAudioStop   ErrorCode = "audio_stop"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeDictation   ErrorCode = "dictation"
	ErrorCodeDecode      ErrorCode = "decode"
	ErrorCodeWriting     ErrorCode = "writing"
	ErrorCodeClipboard   ErrorCode = "clipboard"
	ErrorCodeHistory     ErrorCode = "history"
	ErrorCodeSettings    ErrorCode = "settings"
)

// DictationEventKind identifies whether a stream event is partial or final text.
type DictationEventKind string

const (
	DictationPartial DictationEventKind = "partial"
	DictationFinal   DictationEventKind = "final"
)

// DictationEvent is incremental transcription output from a provider.
type DictationEvent struct {
	Kind        DictationEventKind `json:"kind"`
	Text        string             `json:"text"`
	Confidence  float64            `json:"confidence"`
	EndOfSpeech bool               `json:"endOfSpeech"`
}

// DictationResult is returned once recording stops and text is inserted.
type DictationResult struct {
	RawTranscript string `json:"rawTranscript"`
	InsertedText  string `json:"insertedText"`
	Inserted      bool   `json:"inserted"`
}

// DictationStatus summarizes the dictation backend status.
type DictationStatus struct {
	State   DictationState `json:"state"`
	Active  bool           `json:"active"`
	Message string         `json:"message,omitempty"`
}

// DecodedWord is the outcome of one trace decode.
type DecodedWord struct {
	Word       string `json:"word"`
	Crossing   string `json:"crossing"`
	Fallback   bool   `json:"fallback"`
	Generation uint64 `json:"generation"`
}

// ClipEntry is one clipboard history item.
type ClipEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
}

// Suggestion is one predictive-bar candidate from the frequency learner.
type Suggestion struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}
