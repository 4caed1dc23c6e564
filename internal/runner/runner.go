// Package runner synthesizes every SSML document in a directory, one file at
// a time, routing the audio to a speaker or to an audio sink.
//
// A cancellation reported by the speech service is logged and the batch moves
// on to the next document. Everything else, including unreadable documents and
// failing output devices, stops the batch and is returned to the caller.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/book-expert/ssml-speech/internal/audio"
	"github.com/book-expert/ssml-speech/internal/core"
	"github.com/book-expert/ssml-speech/internal/ssml"
)

// Mode selects where synthesized audio goes.
type Mode string

// Output modes.
const (
	ModeSpeaker Mode = "speaker"
	ModeFile    Mode = "file"
)

// DefaultPattern matches the documents processed when Options.Pattern is empty.
const DefaultPattern = "*.xml"

// Static errors.
var (
	ErrNilSynthesizer = errors.New("synthesizer cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrPlayerRequired = errors.New("speaker mode requires a player")
	ErrSinkRequired   = errors.New("file mode requires an audio sink")
	ErrInvalidMode    = errors.New("unknown output mode")
)

// Console lines, one per processing stage.
const (
	lineReading          = "Reading file ---> %s\n"
	lineSpeaking         = "Speaking speech from file ---> %s\n"
	lineCreating         = "Creating speech from file ---> %s\n"
	lineSpoken           = "Speech synthesized to speaker for text [%s]\n"
	lineCreated          = "Speech created from file for [%s]\n"
	lineWriting          = "Writing audio file ---> %s\n"
	lineCanceledReason   = "CANCELED: Reason=%s\n"
	lineCanceledCode     = "CANCELED: ErrorCode=%s\n"
	lineCanceledDetails  = "CANCELED: ErrorDetails=[%s]\n"
	lineCanceledHint     = "CANCELED: Did you update the subscription info?\n"
	logFmtDiscovered     = "Found %d documents matching %s in %s"
	logFmtCompleted      = "Synthesized %s: %s"
	logFmtUninspectable  = "Synthesized %s (%d bytes), audio not inspectable: %v"
	logFmtCanceled       = "Synthesis of %s canceled: reason=%s code=%s details=%s"
	logFmtSaved          = "Saved audio for %s to %s"
	logFmtBatchDone      = "Batch finished: %d discovered, %d completed, %d canceled"
	errFmtSynthesize     = "failed to synthesize %s: %w"
	errFmtPlay           = "failed to play audio for %s: %w"
	errFmtSave           = "failed to save audio for %s: %w"
	errFmtBatchInterrupt = "batch interrupted before %s: %w"
)

// Options configures a Runner.
type Options struct {
	// Synthesizer turns one SSML document into one outcome.
	Synthesizer core.Synthesizer
	// Player receives audio in speaker mode.
	Player core.Player
	// Sink receives audio in file mode.
	Sink core.AudioSink
	// Out receives the console stage lines; nil discards them.
	Out io.Writer
	// Log records per-file results.
	Log *logger.Logger
	// Mode selects speaker or file output.
	Mode Mode
	// Pattern selects documents by file name; empty selects DefaultPattern.
	Pattern string
}

// Summary counts what a batch did.
type Summary struct {
	// Written lists the sink locations of every saved audio file, in order.
	Written    []string
	Discovered int
	Completed  int
	Canceled   int
}

// Runner processes a directory of SSML documents sequentially.
type Runner struct {
	synthesizer core.Synthesizer
	player      core.Player
	sink        core.AudioSink
	out         io.Writer
	log         *logger.Logger
	mode        Mode
	pattern     string
}

// New validates opts and creates a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Synthesizer == nil {
		return nil, ErrNilSynthesizer
	}

	if opts.Log == nil {
		return nil, ErrNilLogger
	}

	switch opts.Mode {
	case ModeSpeaker:
		if opts.Player == nil {
			return nil, ErrPlayerRequired
		}
	case ModeFile:
		if opts.Sink == nil {
			return nil, ErrSinkRequired
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	return &Runner{
		synthesizer: opts.Synthesizer,
		player:      opts.Player,
		sink:        opts.Sink,
		out:         out,
		log:         opts.Log,
		mode:        opts.Mode,
		pattern:     pattern,
	}, nil
}

// Run processes every matching document in sourceDir in directory order.
// The returned summary is valid even when an error stops the batch early.
func (r *Runner) Run(ctx context.Context, sourceDir string) (Summary, error) {
	var summary Summary

	paths, err := ssml.Discover(sourceDir, r.pattern)
	if err != nil {
		return summary, err
	}

	summary.Discovered = len(paths)
	r.log.Info(logFmtDiscovered, len(paths), r.pattern, sourceDir)

	for _, path := range paths {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return summary, fmt.Errorf(errFmtBatchInterrupt, filepath.Base(path), ctxErr)
		}

		err = r.processFile(ctx, path, &summary)
		if err != nil {
			return summary, err
		}

		r.println()
	}

	r.log.Info(logFmtBatchDone, summary.Discovered, summary.Completed, summary.Canceled)

	return summary, nil
}

func (r *Runner) processFile(ctx context.Context, path string, summary *Summary) error {
	name := filepath.Base(path)
	r.printf(lineReading, name)

	doc, err := ssml.Read(path)
	if err != nil {
		return err
	}

	if r.mode == ModeSpeaker {
		r.printf(lineSpeaking, name)
	} else {
		r.printf(lineCreating, name)
	}

	outcome, err := r.synthesizer.Synthesize(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf(errFmtSynthesize, name, err)
	}

	if !outcome.IsCompleted() {
		summary.Canceled++
		r.reportCancellation(name, outcome.Cancellation)

		return nil
	}

	summary.Completed++
	r.logCompleted(name, outcome.Audio)

	if r.mode == ModeSpeaker {
		return r.speak(ctx, name, outcome.Audio)
	}

	location, err := r.write(ctx, doc, outcome.Audio)
	if err != nil {
		return err
	}

	summary.Written = append(summary.Written, location)

	return nil
}

func (r *Runner) speak(ctx context.Context, name string, audioData []byte) error {
	err := r.player.Play(ctx, audioData)
	if err != nil {
		return fmt.Errorf(errFmtPlay, name, err)
	}

	r.printf(lineSpoken, name)

	return nil
}

func (r *Runner) write(ctx context.Context, doc ssml.Document, audioData []byte) (string, error) {
	r.printf(lineCreated, doc.Name)

	outputName := doc.OutputName()
	r.printf(lineWriting, outputName)

	location, err := r.sink.Save(ctx, outputName, audioData)
	if err != nil {
		return "", fmt.Errorf(errFmtSave, doc.Name, err)
	}

	r.log.Info(logFmtSaved, doc.Name, location)

	return location, nil
}

func (r *Runner) reportCancellation(name string, cancellation *core.Cancellation) {
	if cancellation == nil {
		cancellation = &core.Cancellation{
			Reason:       core.CancellationError,
			ErrorCode:    core.ErrorCodeRuntimeError,
			ErrorDetails: "",
		}
	}

	r.printf(lineCanceledReason, cancellation.Reason)

	if cancellation.Reason == core.CancellationError {
		r.printf(lineCanceledCode, cancellation.ErrorCode)
		r.printf(lineCanceledDetails, cancellation.ErrorDetails)
		r.printf(lineCanceledHint)
	}

	r.log.Warn(logFmtCanceled, name, cancellation.Reason, cancellation.ErrorCode, cancellation.ErrorDetails)
}

func (r *Runner) logCompleted(name string, audioData []byte) {
	info, err := audio.Inspect(audioData)
	if err != nil {
		r.log.Warn(logFmtUninspectable, name, len(audioData), err)

		return
	}

	r.log.Info(logFmtCompleted, name, info)
}

// Console writes are best effort; a closed stdout must not abort synthesis.
func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) println() {
	_, _ = fmt.Fprintln(r.out)
}
