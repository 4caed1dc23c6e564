package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/book-expert/ssml-speech/internal/audio"
	"github.com/book-expert/ssml-speech/internal/config"
	"github.com/book-expert/ssml-speech/internal/objectstore"
	"github.com/book-expert/ssml-speech/internal/runner"
	"github.com/book-expert/ssml-speech/internal/worker"
	"github.com/spf13/cobra"
)

// Flag names.
const (
	flagConfig    = "config"
	flagMode      = "mode"
	flagSource    = "source"
	flagOutputDir = "output-dir"
)

// Flag descriptions.
const (
	flagConfigDesc    = "Path to a TOML configuration file (defaults to the project configuration)"
	flagModeDesc      = "Output mode: speaker or file"
	flagSourceDesc    = "Directory containing the SSML documents"
	flagOutputDirDesc = "Directory for .wav files in file mode"
)

func newRootCommand(out io.Writer) *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:           "ssml-speech",
		Short:         "Synthesize every SSML document in a directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.Context(), flags, out)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, flagConfig, "", flagConfigDesc)
	cmd.Flags().StringVar(&flags.mode, flagMode, "", flagModeDesc)
	cmd.Flags().StringVar(&flags.source, flagSource, "", flagSourceDesc)
	cmd.Flags().StringVar(&flags.outputDir, flagOutputDir, "", flagOutputDirDesc)

	cmd.SetOut(out)

	cmd.AddCommand(
		newVoicesCommand(&flags, out),
		newWorkerCommand(&flags),
	)

	return cmd
}

func newVoicesCommand(flags *cliFlags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the voices available to the configured credential and region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listVoices(cmd.Context(), *flags, out)
		},
	}
}

func newWorkerCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Synthesize documents announced on NATS until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), *flags)
		},
	}
}

// runBatch processes the source directory once. Canceled documents do not
// make the command fail; local faults do.
func runBatch(ctx context.Context, flags cliFlags, out io.Writer) error {
	application, err := setup(flags)
	if err != nil {
		return err
	}
	defer application.close()

	cfg := application.cfg
	log := application.log

	client, err := application.newSpeechClient()
	if err != nil {
		return err
	}

	opts := runner.Options{
		Synthesizer: client,
		Player:      nil,
		Sink:        nil,
		Out:         out,
		Log:         log,
		Mode:        runner.Mode(cfg.Output.Mode),
		Pattern:     cfg.Input.Pattern,
	}

	if opts.Mode == runner.ModeSpeaker {
		player := audio.NewSpeakerPlayer(log)
		defer player.Close()

		opts.Player = player
	} else {
		sink, release, sinkErr := application.newSink(ctx)
		if sinkErr != nil {
			log.Error("Failed to open audio sink: %v", sinkErr)

			return sinkErr
		}
		defer release()

		opts.Sink = sink
	}

	batch, err := runner.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	log.System("Processing %s in %s mode", cfg.Input.SourceDir, cfg.Output.Mode)

	summary, err := batch.Run(ctx, cfg.Input.SourceDir)
	if err != nil {
		log.Error("Batch stopped after %d of %d documents: %v",
			summary.Completed+summary.Canceled, summary.Discovered, err)

		return fmt.Errorf("batch failed: %w", err)
	}

	return nil
}

func listVoices(ctx context.Context, flags cliFlags, out io.Writer) error {
	application, err := setup(flags)
	if err != nil {
		return err
	}
	defer application.close()

	client, err := application.newSpeechClient()
	if err != nil {
		return err
	}

	voices, err := client.Voices(ctx)
	if err != nil {
		application.log.Error("Failed to list voices: %v", err)

		return fmt.Errorf("failed to list voices: %w", err)
	}

	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(writer, "SHORT NAME\tLOCALE\tGENDER\tTYPE")

	for _, voice := range voices {
		_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", voice.ShortName, voice.Locale, voice.Gender, voice.VoiceType)
	}

	err = writer.Flush()
	if err != nil {
		return fmt.Errorf("failed to write voices: %w", err)
	}

	application.log.Info("Listed %d voices", len(voices))

	return nil
}

func runWorker(ctx context.Context, flags cliFlags) error {
	application, err := setup(flags)
	if err != nil {
		return err
	}
	defer application.close()

	cfg := application.cfg
	log := application.log

	if cfg.NATS.URL == "" {
		return config.ErrNATSURLEmpty
	}

	client, err := application.newSpeechClient()
	if err != nil {
		return err
	}

	natsConnection, err := application.connectNATS()
	if err != nil {
		log.Error("%v", err)

		return err
	}
	defer natsConnection.Close()

	documents, err := objectstore.New(ctx, natsConnection, cfg.NATS.DocumentBucket)
	if err != nil {
		return fmt.Errorf("failed to open document bucket: %w", err)
	}

	audioStore, err := objectstore.New(ctx, natsConnection, cfg.NATS.AudioBucket)
	if err != nil {
		return fmt.Errorf("failed to open audio bucket: %w", err)
	}

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		worker.Settings{
			Subject:  cfg.NATS.Subject,
			Voice:    cfg.Speech.Voice,
			Language: cfg.Speech.Language,
		},
		documents,
		audioStore,
		client,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	log.System("ssml-speech worker initialized. Listening for jobs on subject: %s", cfg.NATS.Subject)

	err = natsWorker.Run(ctx)
	if err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}

	return nil
}
