package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"gemkey/internal/bootstrap"
	"gemkey/internal/config"
	"gemkey/internal/domain"
	"gemkey/internal/usecase"
)

const (
	eventBuffer    = "gemkey:buffer"
	eventWord      = "gemkey:word"
	eventSwipe     = "gemkey:swipe"
	eventHide      = "gemkey:hide"
	eventDictation = "gemkey:dictation"
	eventPartial   = "gemkey:partial"
	eventSettings  = "gemkey:settings"
	eventError     = "gemkey:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services bootstrap.Services
	log      zerolog.Logger
	bootErr  error
}

func NewApp(log zerolog.Logger) *App {
	return &App{log: log}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{}, a.log)
	if err != nil {
		a.bootErr = err
		a.BackendError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.services = services

	services.Settings.OnChange(func(cfg config.Config) {
		runtime.EventsEmit(a.ctx, eventSettings, cfg)
	})
	if err := services.Settings.Watch(); err != nil {
		a.log.Warn().Err(err).Msg("settings hot reload unavailable")
	}

	a.DictationStateChanged(domain.DictationStateIdle, domain.DictationReasonReady)
}

func (a *App) shutdown(_ context.Context) {
	if a.bootErr != nil {
		return
	}
	if err := a.services.Close(); err != nil {
		a.log.Warn().Err(err).Msg("shutdown cleanup failed")
	}
}

// --- gesture pipeline ---

// SetKeyLayout registers the keyboard's key hit rectangles. The frontend
// calls it whenever geometry changes (resize, split, one-handed mode).
func (a *App) SetKeyLayout(keys []domain.KeyBounds) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Layout.Replace(keys)
	return nil
}

// TouchStart begins tracking a single-finger contact.
func (a *App) TouchStart(x, y float64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Gestures.TouchStart(x, y)
	return nil
}

// TouchMove records one movement sample of the active contact.
func (a *App) TouchMove(x, y float64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Gestures.TouchMove(x, y)
	return nil
}

// TouchEnd finishes the contact and dispatches swipe or decode handling.
func (a *App) TouchEnd(x, y float64) (domain.Resolution, error) {
	if err := a.requireReady(); err != nil {
		return domain.Resolution{}, err
	}
	return a.services.Gestures.TouchEnd(a.ctx, x, y), nil
}

// TouchCancel abandons the contact (second finger down, focus loss).
func (a *App) TouchCancel() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Gestures.TouchCancel()
	return nil
}

// TraceFrame returns the trace polyline for the current animation frame.
func (a *App) TraceFrame() (domain.TraceFrame, error) {
	if err := a.requireReady(); err != nil {
		return domain.TraceFrame{}, err
	}
	theme := a.services.Settings.Config().Keyboard.Theme
	return a.services.Renderer.Frame(theme), nil
}

// --- editor ---

// KeyPress inserts the tapped key's value.
func (a *App) KeyPress(value string) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	text := a.services.Buffer.Insert(value)
	a.BufferChanged(text)
	return text, nil
}

// Backspace removes the last rune.
func (a *App) Backspace() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	text := a.services.Buffer.Backspace()
	a.BufferChanged(text)
	return text, nil
}

// GetText returns the buffer contents.
func (a *App) GetText() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	return a.services.Buffer.Text(), nil
}

// SetText replaces the buffer contents.
func (a *App) SetText(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Buffer.SetText(text)
	a.BufferChanged(text)
	return nil
}

// Suggestions returns predictive-bar candidates for the given prefix.
func (a *App) Suggestions(prefix string, limit int) ([]domain.Suggestion, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	cfg := a.services.Settings.Config()
	if cfg.Privacy.Private() {
		return nil, nil
	}
	return a.services.Learner.Suggest(prefix, cfg.Keyboard.Language, limit)
}

// --- AI writing ---

// CompleteText continues the buffer text.
func (a *App) CompleteText() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	cfg := a.services.Settings.Config()
	continuation, err := a.services.Assistant.Complete(a.ctx, a.services.Buffer.Text(), cfg.Keyboard.Language)
	if err != nil {
		a.BackendError(domain.ErrorCodeWriting, err.Error())
		return "", err
	}
	text := a.services.Buffer.Insert(continuation)
	a.BufferChanged(text)
	return text, nil
}

// FixGrammar rewrites the buffer with corrected grammar.
func (a *App) FixGrammar() (string, error) {
	return a.rewriteBuffer(func(text string, cfg config.Config) (string, error) {
		return a.services.Assistant.FixGrammar(a.ctx, text, cfg.Keyboard.Language)
	})
}

// ChangeTone rewrites the buffer in the requested tone.
func (a *App) ChangeTone(tone string) (string, error) {
	return a.rewriteBuffer(func(text string, _ config.Config) (string, error) {
		return a.services.Assistant.ChangeTone(a.ctx, text, tone)
	})
}

// TranslateText rewrites the buffer in the target language.
func (a *App) TranslateText(targetLanguage string) (string, error) {
	return a.rewriteBuffer(func(text string, _ config.Config) (string, error) {
		return a.services.Assistant.Translate(a.ctx, text, targetLanguage)
	})
}

// ExtractText runs OCR on a base64 image and inserts the result.
func (a *App) ExtractText(imageBase64, mediaType string) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	extracted, err := a.services.Assistant.ExtractText(a.ctx, imageBase64, mediaType)
	if err != nil {
		a.BackendError(domain.ErrorCodeWriting, err.Error())
		return "", err
	}
	text := a.services.Buffer.Insert(extracted)
	a.BufferChanged(text)
	return text, nil
}

func (a *App) rewriteBuffer(op func(text string, cfg config.Config) (string, error)) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	cfg := a.services.Settings.Config()
	rewritten, err := op(a.services.Buffer.Text(), cfg)
	if err != nil {
		a.BackendError(domain.ErrorCodeWriting, err.Error())
		return "", err
	}
	a.services.Buffer.SetText(rewritten)
	a.BufferChanged(rewritten)
	return rewritten, nil
}

// --- dictation ---

// StartDictation starts voice input.
func (a *App) StartDictation() (domain.DictationStatus, error) {
	if err := a.requireReady(); err != nil {
		return domain.DictationStatus{}, err
	}
	if err := a.services.Dictation.Start(a.ctx); err != nil {
		a.BackendError(domain.ErrorCodeDictation, err.Error())
		return domain.DictationStatus{}, err
	}
	return a.services.Dictation.Status(), nil
}

// StopDictation stops voice input and inserts the transcript.
func (a *App) StopDictation() (domain.DictationResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.DictationResult{}, err
	}
	result, err := a.services.Dictation.Stop(a.ctx)
	if err != nil {
		a.BackendError(domain.ErrorCodeDictation, err.Error())
		return domain.DictationResult{}, err
	}
	return result, nil
}

// AbortDictation discards an in-progress recording.
func (a *App) AbortDictation() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Dictation.Abort(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveDictation) {
			return nil
		}
		a.BackendError(domain.ErrorCodeDictation, err.Error())
		return err
	}
	return nil
}

// GetDictationStatus returns the current dictation status.
func (a *App) GetDictationStatus() domain.DictationStatus {
	if a.bootErr != nil {
		return domain.DictationStatus{State: domain.DictationStateError, Message: a.bootErr.Error()}
	}
	if a.services.Dictation == nil {
		return domain.DictationStatus{State: domain.DictationStateIdle}
	}
	return a.services.Dictation.Status()
}

// --- clipboard history ---

// CopyToClipboard writes text to the system clipboard and records it.
func (a *App) CopyToClipboard(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := runtime.ClipboardSetText(a.ctx, text); err != nil {
		a.BackendError(domain.ErrorCodeClipboard, "clipboard write failed")
		return err
	}
	private := a.services.Settings.Config().Privacy.Private()
	if err := a.services.History.Record(text, private); err != nil {
		a.BackendError(domain.ErrorCodeHistory, err.Error())
		return err
	}
	return nil
}

// ClipboardHistory lists recorded entries, pinned first.
func (a *App) ClipboardHistory() ([]domain.ClipEntry, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.services.History.List()
}

// PinClip updates an entry's pinned flag.
func (a *App) PinClip(id string, pinned bool) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.History.Pin(id, pinned)
}

// DeleteClip removes one entry.
func (a *App) DeleteClip(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.History.Delete(id)
}

// ClearClipboardHistory removes all unpinned entries.
func (a *App) ClearClipboardHistory() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.History.Clear()
}

// PasteClip writes an entry back into the system clipboard.
func (a *App) PasteClip(id string) (domain.ClipEntry, error) {
	if err := a.requireReady(); err != nil {
		return domain.ClipEntry{}, err
	}
	entry, err := a.services.History.Paste(a.ctx, id)
	if err != nil {
		a.BackendError(domain.ErrorCodeClipboard, err.Error())
		return domain.ClipEntry{}, err
	}
	return entry, nil
}

// --- settings ---

// GetSettings returns the current settings snapshot.
func (a *App) GetSettings() (config.Config, error) {
	if err := a.requireReady(); err != nil {
		return config.Config{}, err
	}
	return a.services.Settings.Config(), nil
}

// UpdateKeyboardSettings applies keyboard customization changes.
func (a *App) UpdateKeyboardSettings(keyboard config.KeyboardConfig) (config.Config, error) {
	if err := a.requireReady(); err != nil {
		return config.Config{}, err
	}
	cfg, err := a.services.Settings.Update(func(c *config.Config) {
		c.Keyboard = keyboard
	})
	if err != nil {
		a.BackendError(domain.ErrorCodeSettings, err.Error())
		return config.Config{}, err
	}
	return cfg, nil
}

// UpdatePrivacySettings applies privacy mode changes.
func (a *App) UpdatePrivacySettings(privacy config.PrivacyConfig) (config.Config, error) {
	if err := a.requireReady(); err != nil {
		return config.Config{}, err
	}
	cfg, err := a.services.Settings.Update(func(c *config.Config) {
		c.Privacy = privacy
	})
	if err != nil {
		a.BackendError(domain.ErrorCodeSettings, err.Error())
		return config.Config{}, err
	}
	return cfg, nil
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	cfg := a.services.Settings.Config()
	return map[string]string{
		"decoderModel":   cfg.Anthropic.Model,
		"dictationModel": cfg.Deepgram.Model,
		"language":       cfg.Keyboard.Language,
		"theme":          cfg.Keyboard.Theme,
		"rulesFile":      cfg.Rules.Path,
		"historyDB":      cfg.History.DBPath,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services.Gestures == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// --- ports.EventSink ---

// BufferChanged emits the updated text buffer to the frontend.
func (a *App) BufferChanged(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventBuffer, map[string]string{"text": text})
}

// WordDecoded emits the outcome of one trace decode.
func (a *App) WordDecoded(word domain.DecodedWord) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventWord, word)
}

// SwipeDetected emits a classified swipe so the UI can animate and, when
// enabled, trigger haptic feedback.
func (a *App) SwipeDetected(direction domain.SwipeDirection, haptic bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSwipe, map[string]any{
		"direction": string(direction),
		"haptic":    haptic,
	})
}

// HideKeyboard asks the frontend to collapse the keyboard.
func (a *App) HideKeyboard() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventHide, nil)
}

// DictationStateChanged emits dictation lifecycle updates.
func (a *App) DictationStateChanged(state domain.DictationState, reason domain.DictationReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventDictation, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": dictationReasonMessage(reason),
	})
}

// PartialTranscript emits live partial transcript text.
func (a *App) PartialTranscript(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPartial, map[string]string{"text": text})
}

// BackendError emits backend errors to the UI.
func (a *App) BackendError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func dictationReasonMessage(reason domain.DictationReason) string {
	switch reason {
	case domain.DictationReasonReady:
		return "Ready"
	case domain.DictationReasonRecordingStarted:
		return "Listening"
	case domain.DictationReasonRecordingRestarted:
		return "Listening; previous capture discarded"
	case domain.DictationReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.DictationReasonTranscriptInserted:
		return "Transcript inserted"
	case domain.DictationReasonRecordingDiscarded:
		return "Recording discarded"
	case domain.DictationReasonNoTranscript:
		return "No transcript captured"
	case domain.DictationReasonTranscriptFailed:
		return "Transcription failed"
	case domain.DictationReasonReplacementsFailed:
		return "Text replacements failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeDictation:
		return "Dictation error"
	case domain.ErrorCodeDecode:
		return "Trace decoding error"
	case domain.ErrorCodeWriting:
		return "Writing assistant error"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeHistory:
		return "Clipboard history error"
	case domain.ErrorCodeSettings:
		return "Settings update failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
