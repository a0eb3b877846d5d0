package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gemkey/internal/domain"
	"gemkey/internal/editor"
	"gemkey/internal/ports"
)

var ErrNoActiveDictation = errors.New("no active dictation session")

// DictationConfig controls dictation capture behavior.
type DictationConfig struct {
	Audio          ports.AudioConfig
	Streaming      ports.StreamingConfig
	ChunkSize      int
	StreamingGrace time.Duration
}

// DictationController orchestrates voice input: microphone capture,
// streaming transcription, and insertion of the final transcript into the
// text buffer.
type DictationController struct {
	audio        ports.AudioCapture
	provider     ports.DictationProvider
	buffer       *editor.Buffer
	replacements ports.Replacements
	events       ports.EventSink
	cfg          DictationConfig
	log          zerolog.Logger

	mu      sync.Mutex
	current *dictationSession
}

func NewDictationController(
	audio ports.AudioCapture,
	provider ports.DictationProvider,
	buffer *editor.Buffer,
	replacements ports.Replacements,
	events ports.EventSink,
	cfg DictationConfig,
	log zerolog.Logger,
) *DictationController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	return &DictationController{
		audio:        audio,
		provider:     provider,
		buffer:       buffer,
		replacements: replacements,
		events:       events,
		cfg:          cfg,
		log:          log.With().Str("component", "dictation").Logger(),
	}
}

// Start begins a new capture/transcription session, discarding any
// session already in flight.
func (c *DictationController) Start(ctx context.Context) error {
	var previous *dictationSession

	c.mu.Lock()
	if c.current != nil {
		previous = c.current
		c.current = nil
	}
	c.mu.Unlock()

	if previous != nil {
		c.stopSession(previous)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := c.provider.StartStreaming(sessionCtx, c.cfg.Streaming)
	if err != nil {
		cancel()
		return err
	}

	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return err
	}

	active := &dictationSession{
		cancel:     cancel,
		audio:      audioSession,
		stream:     stream,
		state:      domain.DictationStateRecording,
		aggregator: newTranscriptAggregator(),
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
	}

	c.mu.Lock()
	c.current = active
	c.mu.Unlock()

	go consumeDictationEvents(active.stream, active.aggregator, c.events, active.eventsDone)
	go pumpAudioChunks(active.audio, active.stream, c.cfg.ChunkSize, c.events, active.audioDone)

	reason := domain.DictationReasonRecordingStarted
	if previous != nil {
		reason = domain.DictationReasonRecordingRestarted
	}
	c.events.DictationStateChanged(domain.DictationStateRecording, reason)
	return nil
}

// Stop ends an active session, inserts the transcript into the buffer,
// and returns the result.
func (c *DictationController) Stop(ctx context.Context) (domain.DictationResult, error) {
	active, err := c.getCurrent()
	if err != nil {
		return domain.DictationResult{}, err
	}

	active.setState(domain.DictationStateStopping)
	c.events.DictationStateChanged(domain.DictationStateStopping, domain.DictationReasonTranscribing)

	if err := active.audio.Stop(); err != nil {
		c.events.BackendError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	if c.cfg.StreamingGrace > 0 {
		timer := time.NewTimer(c.cfg.StreamingGrace)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	_ = active.stream.CloseSend()
	streamErr := waitForStream(active.stream, 4*time.Second)
	<-active.eventsDone
	<-active.audioDone

	raw := active.aggregator.Raw()
	if raw == "" && streamErr != nil {
		c.events.BackendError(domain.ErrorCodeDictation, streamErr.Error())
		c.finishSession(active, domain.DictationStateError, domain.DictationReasonTranscriptFailed)
		return domain.DictationResult{}, streamErr
	}
	if raw == "" {
		c.finishSession(active, domain.DictationStateIdle, domain.DictationReasonNoTranscript)
		return domain.DictationResult{}, errors.New("no transcript captured")
	}

	transformed, err := c.replacements.Apply(raw)
	if err != nil {
		c.events.BackendError(domain.ErrorCodeDictation, err.Error())
		c.finishSession(active, domain.DictationStateError, domain.DictationReasonReplacementsFailed)
		return domain.DictationResult{}, err
	}

	text := c.buffer.AppendWord(transformed)
	c.events.BufferChanged(text)

	result := domain.DictationResult{
		RawTranscript: raw,
		InsertedText:  transformed,
		Inserted:      true,
	}
	c.finishSession(active, domain.DictationStateIdle, domain.DictationReasonTranscriptInserted)
	return result, nil
}

// Abort cancels and discards an active session without transcription.
func (c *DictationController) Abort() error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}

	c.stopSession(active)
	c.finishSession(active, domain.DictationStateIdle, domain.DictationReasonRecordingDiscarded)
	return nil
}

// Status returns the current dictation status.
func (c *DictationController) Status() domain.DictationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.DictationStatus{State: domain.DictationStateIdle, Active: false}
	}
	state := c.current.getState()
	return domain.DictationStatus{State: state, Active: state != domain.DictationStateIdle}
}

func (c *DictationController) getCurrent() (*dictationSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoActiveDictation
	}
	return c.current, nil
}

func (c *DictationController) stopSession(active *dictationSession) {
	active.cancel()
	_ = active.audio.Stop()
	_ = active.stream.Close()
	<-active.eventsDone
	<-active.audioDone
}

func (c *DictationController) finishSession(active *dictationSession, state domain.DictationState, reason domain.DictationReason) {
	active.cancel()
	active.setState(state)

	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	c.mu.Unlock()

	c.events.DictationStateChanged(state, reason)
}

type dictationSession struct {
	cancel func()
	audio  ports.AudioSession
	stream ports.StreamingSession

	stateMu sync.Mutex
	state   domain.DictationState

	aggregator *transcriptAggregator
	eventsDone chan struct{}
	audioDone  chan struct{}
}

func (s *dictationSession) setState(state domain.DictationState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *dictationSession) getState() domain.DictationState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}
