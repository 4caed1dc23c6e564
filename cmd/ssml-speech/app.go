package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/ssml-speech/internal/config"
	"github.com/book-expert/ssml-speech/internal/core"
	"github.com/book-expert/ssml-speech/internal/filestore"
	"github.com/book-expert/ssml-speech/internal/objectstore"
	"github.com/book-expert/ssml-speech/internal/speech"
	"github.com/nats-io/nats.go"
)

// Log file names and client identification.
const (
	bootstrapLogFile = "ssml-speech-bootstrap.log"
	logFile          = "ssml-speech.log"
	userAgent        = "ssml-speech/1.0"
	natsClientName   = "ssml-speech"
)

// cliFlags holds values that override the loaded configuration.
type cliFlags struct {
	configPath string
	mode       string
	source     string
	outputDir  string
}

// app carries what every command needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log *logger.Logger
}

// setup loads configuration with a bootstrap logger, applies flag overrides
// and opens the final logger in the configured log directory.
func setup(flags cliFlags) (*app, error) {
	bootstrapLog, err := logger.New(os.TempDir(), bootstrapLogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	defer func() {
		_ = bootstrapLog.Close()
	}()

	cfg, err := config.Load(flags.configPath, bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	err = applyOverrides(cfg, flags)
	if err != nil {
		bootstrapLog.Error("Invalid command line override: %v", err)

		return nil, err
	}

	finalLog, err := logger.New(cfg.Paths.BaseLogsDir, logFile)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return nil, fmt.Errorf("failed to create final logger: %w", err)
	}

	return &app{cfg: cfg, log: finalLog}, nil
}

// applyOverrides copies non-empty flags onto cfg and revalidates it.
func applyOverrides(cfg *config.Config, flags cliFlags) error {
	if flags.mode != "" {
		cfg.Output.Mode = strings.ToLower(strings.TrimSpace(flags.mode))
	}

	if flags.source != "" {
		cfg.Input.SourceDir = flags.source
	}

	if flags.outputDir != "" {
		cfg.Output.Dir = flags.outputDir
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func (a *app) close() {
	closeErr := a.log.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
	}
}

func (a *app) newSpeechClient() (*speech.Client, error) {
	client, err := speech.NewClient(speech.Options{
		BaseURL:      a.cfg.Speech.BaseURL(),
		Key:          a.cfg.Speech.Key,
		OutputFormat: a.cfg.Speech.OutputFormat,
		Timeout:      time.Duration(a.cfg.Speech.TimeoutSeconds) * time.Second,
		UserAgent:    userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return client, nil
}

func (a *app) connectNATS() (*nats.Conn, error) {
	natsConnection, err := nats.Connect(a.cfg.NATS.URL, nats.Name(natsClientName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", a.cfg.NATS.URL, err)
	}

	return natsConnection, nil
}

// newSink returns the audio sink selected by output.store and a release func.
func (a *app) newSink(ctx context.Context) (core.AudioSink, func(), error) {
	if a.cfg.Output.Store == config.StoreLocal {
		store, err := filestore.New(a.cfg.Output.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create file store: %w", err)
		}

		return store, func() {}, nil
	}

	natsConnection, err := a.connectNATS()
	if err != nil {
		return nil, nil, err
	}

	store, err := objectstore.New(ctx, natsConnection, a.cfg.NATS.AudioBucket)
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to open audio bucket: %w", err)
	}

	return store, natsConnection.Close, nil
}
