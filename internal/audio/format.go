// Package audio describes the audio formats requested from the speech service
// and handles the synthesized RIFF payloads: inspection, human-readable
// reporting and speaker playback.
package audio

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultFormatName is the output format requested unless configured otherwise:
// mono, 24 kHz, 16-bit PCM in a RIFF container.
const DefaultFormatName = "riff-24khz-16bit-mono-pcm"

// Limits for format validation.
const (
	maxSampleRate = 192000
	maxChannels   = 8
	bitDepth8     = 8
	bitDepth16    = 16
	bitDepth24    = 24
	bitDepth32    = 32
)

// Error formats.
const (
	errFmtSampleRateRange = "%w: sample rate must be between 1 and %d Hz"
	errFmtBitDepthValues  = "%w: bit depth must be 8, 16, 24, or 32"
	errFmtChannelsRange   = "%w: channels must be between 1 and %d"
	errFmtUnsupported     = "%w: %q (supported: %v)"
)

// Common errors for the audio package.
var (
	ErrInvalidFormat     = errors.New("invalid audio format")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrInvalidAudio      = errors.New("invalid audio payload")
)

// Format is an uncompressed PCM output format in a RIFF container, named the
// way the speech service expects it in the X-Microsoft-OutputFormat header.
type Format struct {
	Name       string
	SampleRate int
	BitDepth   int
	Channels   int
}

var supportedFormats = map[string]Format{
	"riff-8khz-16bit-mono-pcm":    {Name: "riff-8khz-16bit-mono-pcm", SampleRate: 8000, BitDepth: 16, Channels: 1},
	"riff-16khz-16bit-mono-pcm":   {Name: "riff-16khz-16bit-mono-pcm", SampleRate: 16000, BitDepth: 16, Channels: 1},
	"riff-22050hz-16bit-mono-pcm": {Name: "riff-22050hz-16bit-mono-pcm", SampleRate: 22050, BitDepth: 16, Channels: 1},
	"riff-24khz-16bit-mono-pcm":   {Name: "riff-24khz-16bit-mono-pcm", SampleRate: 24000, BitDepth: 16, Channels: 1},
	"riff-44100hz-16bit-mono-pcm": {Name: "riff-44100hz-16bit-mono-pcm", SampleRate: 44100, BitDepth: 16, Channels: 1},
	"riff-48khz-16bit-mono-pcm":   {Name: "riff-48khz-16bit-mono-pcm", SampleRate: 48000, BitDepth: 16, Channels: 1},
}

// Lookup returns the supported format with the given service name.
func Lookup(name string) (Format, error) {
	format, ok := supportedFormats[name]
	if !ok {
		return Format{}, fmt.Errorf(errFmtUnsupported, ErrUnsupportedFormat, name, SupportedFormats())
	}

	return format, nil
}

// SupportedFormats lists the names of all supported output formats.
func SupportedFormats() []string {
	names := make([]string, 0, len(supportedFormats))
	for name := range supportedFormats {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Validate checks that the format parameters are within reasonable bounds.
func (f Format) Validate() error {
	sampleRateErr := validateSampleRate(f.SampleRate)
	if sampleRateErr != nil {
		return sampleRateErr
	}

	bitDepthErr := validateBitDepth(f.BitDepth)
	if bitDepthErr != nil {
		return bitDepthErr
	}

	channelsErr := validateChannels(f.Channels)
	if channelsErr != nil {
		return channelsErr
	}

	return nil
}

// BytesPerSecond is the PCM data rate of the format.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitDepth / bitDepth8
}

func validateSampleRate(sampleRate int) error {
	if sampleRate <= 0 || sampleRate > maxSampleRate {
		return fmt.Errorf(errFmtSampleRateRange, ErrInvalidFormat, maxSampleRate)
	}

	return nil
}

func validateBitDepth(bitDepth int) error {
	switch bitDepth {
	case bitDepth8, bitDepth16, bitDepth24, bitDepth32:
		return nil
	default:
		return fmt.Errorf(errFmtBitDepthValues, ErrInvalidFormat)
	}
}

func validateChannels(channels int) error {
	if channels <= 0 || channels > maxChannels {
		return fmt.Errorf(errFmtChannelsRange, ErrInvalidFormat, maxChannels)
	}

	return nil
}
