package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/book-expert/logger"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// speakerBuffer is the amount of audio buffered by the output device.
const speakerBuffer = 100 * time.Millisecond

// SpeakerPlayer plays RIFF/WAV payloads on the default audio output device.
// The device is opened on first use and reopened when the sample rate changes.
type SpeakerPlayer struct {
	log        *logger.Logger
	sampleRate beep.SampleRate
	mu         sync.Mutex
}

// NewSpeakerPlayer creates a player; no device is opened until Play.
func NewSpeakerPlayer(log *logger.Logger) *SpeakerPlayer {
	return &SpeakerPlayer{log: log}
}

// Play decodes the payload and blocks until it has been fully played or ctx is done.
func (p *SpeakerPlayer) Play(ctx context.Context, data []byte) error {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAudio, err)
	}
	defer streamer.Close()

	p.mu.Lock()
	defer p.mu.Unlock()

	initErr := p.ensureDevice(format.SampleRate)
	if initErr != nil {
		return initErr
	}

	done := make(chan struct{})

	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()

		return fmt.Errorf("playback interrupted: %w", ctx.Err())
	}
}

// Close releases the output device if it was opened.
func (p *SpeakerPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sampleRate != 0 {
		speaker.Close()
		p.sampleRate = 0
	}
}

func (p *SpeakerPlayer) ensureDevice(sampleRate beep.SampleRate) error {
	if p.sampleRate == sampleRate {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(speakerBuffer))
	if err != nil {
		return fmt.Errorf("failed to open audio output device at %d Hz: %w", int(sampleRate), err)
	}

	p.log.Info("Audio output device opened at %d Hz", int(sampleRate))
	p.sampleRate = sampleRate

	return nil
}
