package usecase

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"gemkey/internal/config"
	"gemkey/internal/domain"
	"gemkey/internal/editor"
	"gemkey/internal/gesture"
	"gemkey/internal/ports"
)

// SettingsSource provides the current settings snapshot; reads happen
// once per gesture so a hot reload never changes behavior mid-contact.
type SettingsSource interface {
	Config() config.Config
}

// GestureController owns the trace-typing pipeline: it feeds touch
// samples to the tracker, dispatches resolutions, and applies decoded
// words to the text buffer.
//
// Competing input modes (button editing, keyboard resize) are filtered in
// the frontend; only plain single-contact samples reach this controller.
type GestureController struct {
	tracker      *gesture.Tracker
	buffer       *editor.Buffer
	decoder      ports.WordDecoder
	learner      ports.FrequencyLearner
	replacements ports.Replacements
	events       ports.EventSink
	settings     SettingsSource
	log          zerolog.Logger

	// generation invalidates in-flight decodes: a response is applied
	// only when its generation is still the newest one dispatched.
	generation atomic.Uint64
}

func NewGestureController(
	tracker *gesture.Tracker,
	buffer *editor.Buffer,
	decoder ports.WordDecoder,
	learner ports.FrequencyLearner,
	replacements ports.Replacements,
	events ports.EventSink,
	settings SettingsSource,
	log zerolog.Logger,
) *GestureController {
	return &GestureController{
		tracker:      tracker,
		buffer:       buffer,
		decoder:      decoder,
		learner:      learner,
		replacements: replacements,
		events:       events,
		settings:     settings,
		log:          log.With().Str("component", "gesture").Logger(),
	}
}

// TouchStart begins a trace when trace typing is enabled.
func (c *GestureController) TouchStart(x, y float64) {
	if !c.settings.Config().Keyboard.TraceTyping {
		return
	}
	c.tracker.Start(x, y)
}

// TouchMove records one movement sample of the active contact.
func (c *GestureController) TouchMove(x, y float64) {
	c.tracker.Move(x, y)
}

// TouchCancel abandons the active trace. Called when a second finger
// lands and the contact becomes a pinch-resize gesture.
func (c *GestureController) TouchCancel() {
	c.tracker.Cancel()
}

// TouchEnd classifies the finished contact and dispatches the result.
func (c *GestureController) TouchEnd(ctx context.Context, x, y float64) domain.Resolution {
	res := c.tracker.End(x, y)
	cfg := c.settings.Config()

	switch res.Kind {
	case domain.ResolutionSwipe:
		c.applySwipe(res.Swipe, cfg)
	case domain.ResolutionTrace:
		c.dispatchDecode(ctx, res.Crossing, cfg)
	}
	return res
}

func (c *GestureController) applySwipe(dir domain.SwipeDirection, cfg config.Config) {
	switch dir {
	case domain.SwipeLeft:
		c.events.BufferChanged(c.buffer.DeleteLastWord())
	case domain.SwipeRight:
		c.events.BufferChanged(c.buffer.Insert(" "))
	case domain.SwipeDown:
		c.events.HideKeyboard()
	}
	c.events.SwipeDetected(dir, cfg.Keyboard.HapticFeedback)
}

func (c *GestureController) dispatchDecode(ctx context.Context, crossing string, cfg config.Config) {
	gen := c.generation.Add(1)

	textContext := ""
	if !cfg.Privacy.Private() {
		textContext = c.buffer.Context(cfg.Gesture.ContextRunes)
	}
	language := cfg.Keyboard.Language

	go func() {
		word, err := c.decoder.Decode(ctx, crossing, textContext, language)
		fallback := false
		if err != nil {
			// Degraded but non-blocking: the crossing string already has
			// consecutive duplicates collapsed, so it stands in for the word.
			c.log.Debug().Err(err).Str("crossing", crossing).Msg("decode failed, using fallback")
			word = crossing
			fallback = true
		}

		if gen != c.generation.Load() {
			c.log.Debug().Uint64("generation", gen).Msg("dropping stale decode result")
			return
		}

		c.applyWord(word, crossing, fallback, gen, cfg)
	}()
}

func (c *GestureController) applyWord(word, crossing string, fallback bool, gen uint64, cfg config.Config) {
	if applied, err := c.replacements.Apply(word); err == nil {
		word = applied
	}

	text := c.buffer.AppendWord(word)
	c.events.WordDecoded(domain.DecodedWord{
		Word:       word,
		Crossing:   crossing,
		Fallback:   fallback,
		Generation: gen,
	})
	c.events.BufferChanged(text)

	if cfg.Privacy.Private() || fallback {
		return
	}
	if err := c.learner.Record(word, cfg.Keyboard.Language); err != nil {
		c.log.Warn().Err(err).Msg("failed to record word frequency")
	}
}
