// Package bootstrap assembles the backend dependency graph. Everything is
// explicitly constructed and injected here; no package keeps singleton
// state, so tests and multi-instance scenarios stay possible.
package bootstrap

import (
	"github.com/rs/zerolog"

	"gemkey/internal/audio"
	"gemkey/internal/config"
	"gemkey/internal/decoder"
	"gemkey/internal/editor"
	"gemkey/internal/gesture"
	"gemkey/internal/history"
	"gemkey/internal/learner"
	"gemkey/internal/ports"
	"gemkey/internal/providers/anthropic"
	"gemkey/internal/providers/deepgram"
	"gemkey/internal/rules"
	"gemkey/internal/store"
	"gemkey/internal/theme"
	"gemkey/internal/usecase"
	"gemkey/internal/writing"
)

// Services is the assembled runtime graph.
type Services struct {
	Settings  *config.Loader
	Store     *store.Store
	Buffer    *editor.Buffer
	Layout    *gesture.KeyLayout
	Renderer  *gesture.Renderer
	Gestures  *usecase.GestureController
	Dictation *usecase.DictationController
	Assistant *writing.Assistant
	History   *history.Manager
	Learner   *learner.Learner
}

// Build wires all backend dependencies for the current runtime.
func Build(events ports.EventSink, clipboard ports.Clipboard, log zerolog.Logger) (Services, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return Services{}, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return Services{}, err
	}

	db, err := store.Open(cfg.History.DBPath)
	if err != nil {
		return Services{}, err
	}

	replacements, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		db.Close()
		return Services{}, err
	}

	buffer := editor.NewBuffer()
	pool := gesture.NewPointPool(cfg.Gesture.PoolCapacity)
	layout := gesture.NewKeyLayout()
	tracker := gesture.NewTracker(pool, layout)
	renderer := gesture.NewRenderer(tracker, theme.NewTable())

	llm := anthropic.NewClient(anthropic.Config{
		APIKey:     cfg.Anthropic.APIKey,
		APIBaseURL: cfg.Anthropic.APIBaseURL,
		Model:      cfg.Anthropic.Model,
	})

	wordLearner := learner.New(db)

	gestures := usecase.NewGestureController(
		tracker,
		buffer,
		decoder.NewTrace(llm, cfg.Gesture.DecodeTimeout.Std()),
		wordLearner,
		replacements,
		events,
		loader,
		log,
	)

	dictation := usecase.NewDictationController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			SmartFormat: cfg.Deepgram.SmartFormat,
		}),
		buffer,
		replacements,
		events,
		usecase.DictationConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				Language:       cfg.Keyboard.Language,
				InterimResults: true,
			},
			ChunkSize:      cfg.Audio.ChunkSize,
			StreamingGrace: cfg.Audio.StreamingGrace.Std(),
		},
		log,
	)

	return Services{
		Settings:  loader,
		Store:     db,
		Buffer:    buffer,
		Layout:    layout,
		Renderer:  renderer,
		Gestures:  gestures,
		Dictation: dictation,
		Assistant: writing.NewAssistant(llm, 0),
		History:   history.NewManager(db, clipboard, cfg.History.Capacity),
		Learner:   wordLearner,
	}, nil
}

// Close releases long-lived resources.
func (s Services) Close() error {
	var firstErr error
	if s.Settings != nil {
		if err := s.Settings.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
