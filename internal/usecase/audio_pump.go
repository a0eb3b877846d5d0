package usecase

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gemkey/internal/domain"
	"gemkey/internal/ports"
)

// Chunk bounds mirror the audio settings validation: chunks below
// minAudioChunk thrash the websocket with tiny frames, so the pump falls
// back to the default capture chunk instead.
const (
	minAudioChunk     = 256
	defaultAudioChunk = 4096
)

// pumpAudioChunks copies raw PCM from the capture session into the
// transcription stream until the capture ends. EOF means the recorder
// closed its pipe on stop; anything else is surfaced to the UI.
func pumpAudioChunks(
	audio ports.AudioSession,
	stream ports.StreamingSession,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < minAudioChunk {
		chunkSize = defaultAudioChunk
	}

	var streamed int64
	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				events.BackendError(domain.ErrorCodeAudioStream,
					fmt.Sprintf("dictation stream broke after %d bytes: %v", streamed, sendErr))
				return
			}
			streamed += int64(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.BackendError(domain.ErrorCodeAudioStream,
					fmt.Sprintf("microphone capture failed after %d bytes: %v", streamed, err))
			}
			return
		}
	}
}

// waitForStream waits for the transcription stream to drain, forcing the
// session closed when the grace period runs out.
func waitForStream(session ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
