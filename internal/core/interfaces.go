// Package core defines the domain types and interfaces shared by the runner,
// the NATS worker and the speech client.
package core

import "context"

// Synthesizer submits one SSML document to the remote speech service.
// Remote failures arrive as a Canceled outcome; a non-nil error is a local
// fault the caller should not recover from.
type Synthesizer interface {
	Synthesize(ctx context.Context, ssml string) (Outcome, error)
}

// Player renders a RIFF/WAV payload on a live audio output device.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// AudioSink persists synthesized audio under the given name and reports
// where it was written.
type AudioSink interface {
	Save(ctx context.Context, name string, audio []byte) (string, error)
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
