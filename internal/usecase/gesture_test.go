package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gemkey/internal/config"
	"gemkey/internal/domain"
	"gemkey/internal/editor"
	"gemkey/internal/gesture"
)

func gestureTestConfig() config.Config {
	return config.Config{
		Keyboard: config.KeyboardConfig{
			TraceTyping:    true,
			HapticFeedback: true,
			Language:       "en",
		},
		Gesture: config.GestureConfig{ContextRunes: 200},
	}
}

// heloLayout is a single row: h [0,40), e [40,80), l [80,120), o [120,160).
func heloLayout() *gesture.KeyLayout {
	layout := gesture.NewKeyLayout()
	layout.Replace([]domain.KeyBounds{
		{Value: "h", X: 0, Y: 0, W: 40, H: 50},
		{Value: "e", X: 40, Y: 0, W: 40, H: 50},
		{Value: "l", X: 80, Y: 0, W: 40, H: 50},
		{Value: "o", X: 120, Y: 0, W: 40, H: 50},
	})
	return layout
}

type gestureHarness struct {
	controller *GestureController
	buffer     *editor.Buffer
	decoder    *fakeDecoder
	learner    *fakeLearner
	events     *fakeEventSink
	settings   *fakeSettings
	rules      *fakeRules
}

func newGestureHarness(cfg config.Config) *gestureHarness {
	h := &gestureHarness{
		buffer:   editor.NewBuffer(),
		decoder:  &fakeDecoder{},
		learner:  &fakeLearner{},
		events:   newFakeEventSink(),
		settings: &fakeSettings{cfg: cfg},
		rules:    &fakeRules{},
	}
	pool := gesture.NewPointPool(100)
	tracker := gesture.NewTracker(pool, heloLayout())
	h.controller = NewGestureController(
		tracker, h.buffer, h.decoder, h.learner, h.rules, h.events, h.settings, zerolog.Nop(),
	)
	return h
}

// traceHelo drags across all four keys and releases near the start, so
// the gesture classifies as a trace with crossing "helo".
func traceHelo(c *GestureController) domain.Resolution {
	c.TouchStart(20, 25)
	c.TouchMove(60, 25)
	c.TouchMove(100, 25)
	c.TouchMove(140, 25)
	return c.TouchEnd(context.Background(), 24, 26)
}

func TestGestureTraceDecodesAndAppendsWord(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())
	h.buffer.SetText("hi there ")
	h.decoder.decodeFn = func(string) (string, error) { return "hello", nil }

	res := traceHelo(h.controller)
	if res.Kind != domain.ResolutionTrace || res.Crossing != "helo" {
		t.Fatalf("unexpected resolution: %+v", res)
	}

	word, ok := h.events.waitForWord(2 * time.Second)
	if !ok {
		t.Fatalf("timed out waiting for decoded word")
	}
	if word.Word != "hello" || word.Crossing != "helo" || word.Fallback {
		t.Fatalf("unexpected decoded word: %+v", word)
	}

	if got := h.buffer.Text(); got != "hi there hello " {
		t.Fatalf("unexpected buffer: %q", got)
	}

	calls := h.decoder.snapshotCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 decode call, got %d", len(calls))
	}
	if calls[0].textContext != "hi there " || calls[0].language != "en" {
		t.Fatalf("unexpected decode call: %+v", calls[0])
	}

	if recorded := h.learner.snapshotRecorded(); len(recorded) != 1 || recorded[0] != "hello" {
		t.Fatalf("expected decoded word recorded to learner, got %v", recorded)
	}
}

func TestGestureTapDoesNotDecode(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())

	h.controller.TouchStart(20, 25)
	res := h.controller.TouchEnd(context.Background(), 22, 26)

	if res.Kind != domain.ResolutionNone {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if calls := h.decoder.snapshotCalls(); len(calls) != 0 {
		t.Fatalf("tap must not reach the decoder, got %d calls", len(calls))
	}
}

func TestGestureTraceTypingDisabled(t *testing.T) {
	t.Parallel()

	cfg := gestureTestConfig()
	cfg.Keyboard.TraceTyping = false
	h := newGestureHarness(cfg)

	res := traceHelo(h.controller)
	if res.Kind != domain.ResolutionNone {
		t.Fatalf("expected no tracking with trace typing off, got %+v", res)
	}
	if calls := h.decoder.snapshotCalls(); len(calls) != 0 {
		t.Fatalf("decoder must stay untouched, got %d calls", len(calls))
	}
}

func TestGestureSwipeLeftDeletesLastWord(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())
	h.buffer.SetText("the quick fox ")

	h.controller.TouchStart(100, 100)
	res := h.controller.TouchEnd(context.Background(), 20, 100)

	if res.Kind != domain.ResolutionSwipe || res.Swipe != domain.SwipeLeft {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if got := h.buffer.Text(); got != "the quick " {
		t.Fatalf("unexpected buffer after left swipe: %q", got)
	}

	swipes := h.events.snapshotSwipes()
	if len(swipes) != 1 || swipes[0].direction != domain.SwipeLeft || !swipes[0].haptic {
		t.Fatalf("unexpected swipe events: %+v", swipes)
	}
}

func TestGestureSwipeRightInsertsSpace(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())
	h.buffer.SetText("abc")

	h.controller.TouchStart(100, 100)
	h.controller.TouchEnd(context.Background(), 180, 100)

	if got := h.buffer.Text(); got != "abc " {
		t.Fatalf("unexpected buffer after right swipe: %q", got)
	}
}

func TestGestureSwipeDownHidesKeyboard(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())

	h.controller.TouchStart(100, 100)
	h.controller.TouchEnd(context.Background(), 100, 180)

	if h.events.hideCalls != 1 {
		t.Fatalf("expected one hide-keyboard event, got %d", h.events.hideCalls)
	}
}

func TestGestureDecodeFailureFallsBackToCrossing(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())
	h.decoder.decodeFn = func(string) (string, error) { return "", errors.New("model down") }

	traceHelo(h.controller)

	word, ok := h.events.waitForWord(2 * time.Second)
	if !ok {
		t.Fatalf("timed out waiting for fallback word")
	}
	if word.Word != "helo" || !word.Fallback {
		t.Fatalf("expected crossing fallback, got %+v", word)
	}
	if got := h.buffer.Text(); got != "helo " {
		t.Fatalf("unexpected buffer: %q", got)
	}
	if recorded := h.learner.snapshotRecorded(); len(recorded) != 0 {
		t.Fatalf("fallback words must not train the learner, got %v", recorded)
	}
}

func TestGesturePrivacySuppressesContextAndLearning(t *testing.T) {
	t.Parallel()

	cfg := gestureTestConfig()
	cfg.Privacy.IncognitoMode = true
	h := newGestureHarness(cfg)
	h.buffer.SetText("sensitive text ")
	h.decoder.decodeFn = func(string) (string, error) { return "hello", nil }

	traceHelo(h.controller)

	if _, ok := h.events.waitForWord(2 * time.Second); !ok {
		t.Fatalf("timed out waiting for decoded word")
	}

	calls := h.decoder.snapshotCalls()
	if len(calls) != 1 || calls[0].textContext != "" {
		t.Fatalf("privacy mode must suppress decoder context: %+v", calls)
	}
	if recorded := h.learner.snapshotRecorded(); len(recorded) != 0 {
		t.Fatalf("privacy mode must suppress learning, got %v", recorded)
	}
}

func TestGestureStaleDecodeIsDropped(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())
	release := make(chan struct{})
	h.decoder.decodeFn = func(crossing string) (string, error) {
		if crossing == "helo" {
			<-release
			return "stale", nil
		}
		return "fresh", nil
	}

	traceHelo(h.controller)

	// A second trace before the first decode returns supersedes it.
	h.controller.TouchStart(20, 25)
	h.controller.TouchMove(60, 25)
	h.controller.TouchMove(100, 25)
	res := h.controller.TouchEnd(context.Background(), 24, 24)
	if res.Kind != domain.ResolutionTrace || res.Crossing != "hel" {
		t.Fatalf("unexpected second resolution: %+v", res)
	}

	word, ok := h.events.waitForWord(2 * time.Second)
	if !ok {
		t.Fatalf("timed out waiting for fresh word")
	}
	if word.Word != "fresh" {
		t.Fatalf("expected fresh decode to apply, got %+v", word)
	}

	close(release)

	if late, ok := h.events.waitForWord(150 * time.Millisecond); ok {
		t.Fatalf("stale decode must be dropped, got %+v", late)
	}
	if got := h.buffer.Text(); got != "fresh " {
		t.Fatalf("stale decode leaked into the buffer: %q", got)
	}
}

func TestGestureCancelAbandonsTrace(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())

	h.controller.TouchStart(20, 25)
	h.controller.TouchMove(60, 25)
	h.controller.TouchMove(100, 25)
	h.controller.TouchCancel()
	res := h.controller.TouchEnd(context.Background(), 140, 25)

	if res.Kind != domain.ResolutionNone {
		t.Fatalf("expected no resolution after cancel, got %+v", res)
	}
	if calls := h.decoder.snapshotCalls(); len(calls) != 0 {
		t.Fatalf("cancelled trace must not decode, got %d calls", len(calls))
	}
}

func TestGestureReplacementsApplyToDecodedWord(t *testing.T) {
	t.Parallel()

	h := newGestureHarness(gestureTestConfig())
	h.rules.transform = "olleh"
	h.decoder.decodeFn = func(string) (string, error) { return "hello", nil }

	traceHelo(h.controller)

	word, ok := h.events.waitForWord(2 * time.Second)
	if !ok {
		t.Fatalf("timed out waiting for decoded word")
	}
	if word.Word != "olleh" {
		t.Fatalf("replacements not applied: %+v", word)
	}
	if got := h.buffer.Text(); got != "olleh " {
		t.Fatalf("unexpected buffer: %q", got)
	}
}
