// Package audio captures microphone PCM for dictation using an external
// ffmpeg process.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"gemkey/internal/ports"
)

// startupProbe is how long Start watches a fresh recorder process for an
// immediate failure (bad device, unknown input format) before handing
// the session to the streaming pump.
const startupProbe = 250 * time.Millisecond

// stopGrace is how long Stop waits for the recorder to exit after an
// interrupt before killing it.
const stopGrace = 1200 * time.Millisecond

// FFMPEGCapture streams microphone PCM audio using ffmpeg.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	applyCaptureDefaults(&cfg)
	source := cfg.InputFormat + ":" + cfg.InputDevice

	cmd := exec.CommandContext(ctx, c.command, captureArgs(cfg)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start recorder %q: %w", c.command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Give the recorder a moment to fail fast on a bad source before we
	// hand the session to the pump.
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("recorder for %s exited before capture started: %w: %s", source, err, trimmedStderr(&stderr))
		}
		return nil, fmt.Errorf("recorder for %s exited before capture started", source)
	case <-time.After(startupProbe):
	}

	return &captureSession{
		source:  source,
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

func applyCaptureDefaults(cfg *ports.AudioConfig) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
}

// captureArgs builds the ffmpeg invocation: raw signed 16-bit PCM on
// stdout at the configured rate and channel count.
func captureArgs(cfg ports.AudioConfig) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

type captureSession struct {
	source string
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *captureSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *captureSession) Close() error {
	return s.Stop()
}

func (s *captureSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(stopGrace):
			if s.process != nil {
				_ = s.process.Kill()
			}
			if err, ok := <-s.waitErr; ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && s.stopErr == nil {
			s.stopErr = closeErr
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("capture from %s: %w: %s", s.source, s.stopErr, trimmedStderr(s.stderr))
		}
	})

	return s.stopErr
}

// normalizeStopErr drops the recorder's exit status: an interrupted
// ffmpeg exits non-zero even on a clean stop.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimmedStderr(buf *bytes.Buffer) string {
	return string(bytes.TrimSpace(buf.Bytes()))
}
