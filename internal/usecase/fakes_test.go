package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"gemkey/internal/config"
	"gemkey/internal/domain"
	"gemkey/internal/ports"
)

type fakeSettings struct {
	mu  sync.Mutex
	cfg config.Config
}

func (f *fakeSettings) Config() config.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

type fakeDecoder struct {
	mu       sync.Mutex
	calls    []decodeCall
	decodeFn func(crossing string) (string, error)
}

type decodeCall struct {
	crossing    string
	textContext string
	language    string
}

func (f *fakeDecoder) Decode(_ context.Context, crossing, textContext, language string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, decodeCall{crossing: crossing, textContext: textContext, language: language})
	fn := f.decodeFn
	f.mu.Unlock()

	if fn != nil {
		return fn(crossing)
	}
	return crossing, nil
}

func (f *fakeDecoder) snapshotCalls() []decodeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]decodeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeLearner struct {
	mu       sync.Mutex
	recorded []string
}

func (f *fakeLearner) Record(word, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, word)
	return nil
}

func (f *fakeLearner) Suggest(_, _ string, _ int) ([]domain.Suggestion, error) {
	return nil, nil
}

func (f *fakeLearner) snapshotRecorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.recorded))
	copy(out, f.recorded)
	return out
}

type fakeRules struct {
	transform string
	err       error
}

func (f *fakeRules) Apply(text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.transform != "" {
		return f.transform, nil
	}
	return text, nil
}

type swipeEvent struct {
	direction domain.SwipeDirection
	haptic    bool
}

type stateEvent struct {
	state  domain.DictationState
	reason domain.DictationReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeEventSink struct {
	mu sync.Mutex

	buffers   []string
	words     []domain.DecodedWord
	swipes    []swipeEvent
	hideCalls int
	states    []stateEvent
	partials  []string
	errors    []errEvent

	wordCh chan domain.DecodedWord
}

func newFakeEventSink() *fakeEventSink {
	return &fakeEventSink{wordCh: make(chan domain.DecodedWord, 16)}
}

func (f *fakeEventSink) BufferChanged(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffers = append(f.buffers, text)
}

func (f *fakeEventSink) WordDecoded(word domain.DecodedWord) {
	f.mu.Lock()
	f.words = append(f.words, word)
	ch := f.wordCh
	f.mu.Unlock()
	if ch != nil {
		select {
		case ch <- word:
		default:
		}
	}
}

func (f *fakeEventSink) SwipeDetected(direction domain.SwipeDirection, haptic bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swipes = append(f.swipes, swipeEvent{direction: direction, haptic: haptic})
}

func (f *fakeEventSink) HideKeyboard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hideCalls++
}

func (f *fakeEventSink) DictationStateChanged(state domain.DictationState, reason domain.DictationReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) PartialTranscript(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partials = append(f.partials, text)
}

func (f *fakeEventSink) BackendError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) waitForWord(timeout time.Duration) (domain.DecodedWord, bool) {
	select {
	case word := <-f.wordCh:
		return word, true
	case <-time.After(timeout):
		return domain.DecodedWord{}, false
	}
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *fakeEventSink) snapshotSwipes() []swipeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]swipeEvent, len(f.swipes))
	copy(out, f.swipes)
	return out
}

type fakeAudioCapture struct {
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no audio session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	stopCalls int
	stopErr   error
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index >= len(f.chunks) {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[f.index])
	f.index++
	return n, nil
}

func (f *fakeAudioSession) Close() error { return nil }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return f.stopErr
}

type fakeProvider struct {
	sessions []ports.StreamingSession
	err      error
	calls    int
}

func (f *fakeProvider) StartStreaming(_ context.Context, _ ports.StreamingConfig) (ports.StreamingSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no stream session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeStreamingSession struct {
	events     chan domain.DictationEvent
	waitErr    error
	closeSend  int
	closeCalls int
	closed     bool
	mu         sync.Mutex
}

func newFakeStreamingSession() *fakeStreamingSession {
	return &fakeStreamingSession{events: make(chan domain.DictationEvent, 16)}
}

func (f *fakeStreamingSession) SendAudio(_ []byte) error { return nil }

func (f *fakeStreamingSession) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeSend++
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}

func (f *fakeStreamingSession) Events() <-chan domain.DictationEvent { return f.events }

func (f *fakeStreamingSession) Wait() error {
	time.Sleep(5 * time.Millisecond)
	return f.waitErr
}

func (f *fakeStreamingSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}
