// Package worker provides a NATS worker that synthesizes documents announced on a subject.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/ssml-speech/internal/core"
	"github.com/book-expert/ssml-speech/internal/ssml"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// handleMessageTimeout bounds one job: download, synthesis and upload.
const handleMessageTimeout = 5 * time.Minute

var (
	// ErrNilConnection indicates that no NATS connection was supplied.
	ErrNilConnection = errors.New("nats connection cannot be nil")
	// ErrSubjectEmpty indicates that the subject is empty.
	ErrSubjectEmpty = errors.New("subject cannot be empty")
	// ErrVoiceEmpty indicates that no default voice is configured.
	ErrVoiceEmpty = errors.New("default voice cannot be empty")
	// ErrMissingDependency indicates that a store or the synthesizer is nil.
	ErrMissingDependency = errors.New("worker dependency cannot be nil")
	// ErrTextKeyEmpty indicates an event without a document key.
	ErrTextKeyEmpty = errors.New("event text key cannot be empty")
	// ErrSynthesisCanceled indicates that the speech service canceled the request.
	ErrSynthesisCanceled = errors.New("synthesis canceled")
)

// Settings holds the subject and the defaults applied to plain-text documents.
type Settings struct {
	Subject  string
	Voice    string
	Language string
}

// NatsWorker listens for processed-text events and replies with synthesized audio keys.
type NatsWorker struct {
	natsConnection *nats.Conn
	documents      core.ObjectStore
	audio          core.ObjectStore
	synthesizer    core.Synthesizer
	normalizer     *ssml.Normalizer
	log            *logger.Logger
	settings       Settings
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	settings Settings,
	documents core.ObjectStore,
	audio core.ObjectStore,
	synthesizer core.Synthesizer,
	log *logger.Logger,
) (*NatsWorker, error) {
	if natsConnection == nil {
		return nil, ErrNilConnection
	}

	if settings.Subject == "" {
		return nil, ErrSubjectEmpty
	}

	if settings.Voice == "" {
		return nil, ErrVoiceEmpty
	}

	if documents == nil || audio == nil || synthesizer == nil || log == nil {
		return nil, ErrMissingDependency
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		documents:      documents,
		audio:          audio,
		synthesizer:    synthesizer,
		normalizer:     ssml.NewNormalizer(),
		log:            log,
		settings:       settings,
	}, nil
}

// Run subscribes and handles messages one at a time until ctx is done.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.settings.Subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.settings.Subject, err)
	}

	w.log.Info("Listening for documents on subject: %s", w.settings.Subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate event: %v", err)

		return
	}

	audioKey, err := w.processJob(ctx, event)
	if err != nil {
		if errors.Is(err, ErrSynthesisCanceled) {
			w.log.Warn("Synthesis canceled for workflow %s: %v", event.Header.WorkflowID, err)

			return
		}

		w.log.Error("Failed to process document for workflow %s: %v", event.Header.WorkflowID, err)

		return
	}

	header := event.Header
	header.EventID = uuid.NewString()
	header.Timestamp = time.Now()

	replyEvent := &events.AudioChunkCreatedEvent{
		Header:     header,
		AudioKey:   audioKey,
		PageNumber: event.PageNumber,
		TotalPages: event.TotalPages,
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error("Failed to publish reply event for workflow %s: %v", event.Header.WorkflowID, err)

		return
	}

	w.log.Info("Synthesized %s to %s for workflow %s", event.TextKey, audioKey, event.Header.WorkflowID)
}

// processJob downloads the document, synthesizes it and uploads the audio.
func (w *NatsWorker) processJob(ctx context.Context, event *events.TextProcessedEvent) (string, error) {
	data, err := w.documents.Download(ctx, event.TextKey)
	if err != nil {
		return "", fmt.Errorf("failed to download document for key '%s': %w", event.TextKey, err)
	}

	document, err := w.prepareDocument(string(data), event.Voice)
	if err != nil {
		return "", fmt.Errorf("failed to prepare document '%s': %w", event.TextKey, err)
	}

	outcome, err := w.synthesizer.Synthesize(ctx, document)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize document '%s': %w", event.TextKey, err)
	}

	if !outcome.IsCompleted() {
		return "", canceledError(event.TextKey, outcome.Cancellation)
	}

	audioKey := ssml.OutputName(uuid.NewString())

	err = w.audio.Upload(ctx, audioKey, outcome.Audio)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, err)
	}

	return audioKey, nil
}

// prepareDocument passes SSML through and wraps plain text in a speak element.
func (w *NatsWorker) prepareDocument(content, voice string) (string, error) {
	if ssml.IsMarkup(content) {
		return content, nil
	}

	if voice == "" {
		voice = w.settings.Voice
	}

	document, err := ssml.FromText(w.normalizer.Normalize(content), voice, w.settings.Language)
	if err != nil {
		return "", fmt.Errorf("failed to build ssml: %w", err)
	}

	return document, nil
}

// publishReplyEvent marshals and responds with the AudioChunkCreatedEvent.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *events.AudioChunkCreatedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func (w *NatsWorker) parseAndValidateEvent(msg *nats.Msg) (*events.TextProcessedEvent, error) {
	var event events.TextProcessedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.TextKey == "" {
		return nil, ErrTextKeyEmpty
	}

	return &event, nil
}

func canceledError(key string, cancellation *core.Cancellation) error {
	if cancellation == nil {
		return fmt.Errorf("%w: document '%s'", ErrSynthesisCanceled, key)
	}

	return fmt.Errorf("%w: document '%s': reason=%s code=%s details=%s",
		ErrSynthesisCanceled, key, cancellation.Reason, cancellation.ErrorCode, cancellation.ErrorDetails)
}
