package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gopxl/beep/wav"
)

// Data size constants.
const (
	kilobyte = 1024
	megabyte = kilobyte * 1024
	gigabyte = megabyte * 1024
)

// Time and size formatting constants.
const (
	secondsInMinute = 60
	secondsInHour   = 3600
	formatSeconds   = "%.1fs"
	formatMinutes   = "%dm %.1fs"
	formatHours     = "%dh %dm"
	formatGB        = "%.1f GB"
	formatMB        = "%.1f MB"
	formatKB        = "%.1f KB"
	formatBytes     = "%d B"
)

// Info describes a decoded RIFF/WAV payload.
type Info struct {
	SampleRate int
	Channels   int
	Precision  int
	Duration   time.Duration
	Size       int64
}

// String renders the info for log lines, e.g. "1.5s, 70.4 KB, 24000 Hz mono".
func (i Info) String() string {
	channels := "mono"
	if i.Channels != 1 {
		channels = fmt.Sprintf("%d channels", i.Channels)
	}

	return fmt.Sprintf("%s, %s, %d Hz %s",
		FormatDuration(i.Duration), FormatFileSize(i.Size), i.SampleRate, channels)
}

// Inspect decodes the RIFF header of a synthesized payload.
func Inspect(data []byte) (Info, error) {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrInvalidAudio, err)
	}
	defer streamer.Close()

	return Info{
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		Precision:  format.Precision,
		Duration:   format.SampleRate.D(streamer.Len()),
		Size:       int64(len(data)),
	}, nil
}

// FormatDuration formats a duration in a human-readable string (e.g. "1h 15m",
// "5m 30.5s", "45.2s").
func FormatDuration(duration time.Duration) string {
	seconds := duration.Seconds()
	if seconds < secondsInMinute {
		return fmt.Sprintf(formatSeconds, seconds)
	}

	if seconds < secondsInHour {
		minutes := int(seconds / secondsInMinute)
		remainingSeconds := seconds - float64(minutes*secondsInMinute)

		return fmt.Sprintf(formatMinutes, minutes, remainingSeconds)
	}

	hours := int(seconds / secondsInHour)
	remainingSeconds := seconds - float64(hours*secondsInHour)
	remainingMinutes := int(remainingSeconds / secondsInMinute)

	return fmt.Sprintf(formatHours, hours, remainingMinutes)
}

// FormatFileSize formats a size in bytes (e.g. "1.2 GB", "500.5 MB").
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= gigabyte:
		return fmt.Sprintf(formatGB, float64(bytes)/gigabyte)
	case bytes >= megabyte:
		return fmt.Sprintf(formatMB, float64(bytes)/megabyte)
	case bytes >= kilobyte:
		return fmt.Sprintf(formatKB, float64(bytes)/kilobyte)
	default:
		return fmt.Sprintf(formatBytes, bytes)
	}
}
