// Package config provides the configuration structure for ssml-speech.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/book-expert/ssml-speech/internal/audio"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Output modes.
const (
	ModeSpeaker = "speaker"
	ModeFile    = "file"
)

// Output stores used by file mode.
const (
	StoreLocal = "local"
	StoreNATS  = "nats"
)

// Default values.
const (
	defaultRegion         = "westeurope"
	defaultVoice          = "en-US-AvaNeural"
	defaultLanguage       = "en-US"
	defaultTimeoutSeconds = 120
	defaultSourceDir      = "./Input"
	defaultPattern        = "*.xml"
	defaultOutputDir      = "."
	defaultSubject        = "text.processed"
	defaultDocumentBucket = "TEXT_FILES"
	defaultAudioBucket    = "AUDIO_FILES"
	envFileName           = ".env"
	serviceHostFormat     = "https://%s.tts.speech.microsoft.com"
)

// Validation errors.
var (
	ErrInvalidMode      = errors.New("output mode must be \"speaker\" or \"file\"")
	ErrInvalidStore     = errors.New("output store must be \"local\" or \"nats\"")
	ErrNATSURLEmpty     = errors.New("nats url cannot be empty when output store is nats")
	ErrAudioBucketEmpty = errors.New("nats audio bucket cannot be empty when output store is nats")
	ErrSourceDirEmpty   = errors.New("source directory cannot be empty")
	ErrNegativeTimeout  = errors.New("timeout_seconds must be non-negative")
	ErrInvalidPattern   = errors.New("invalid input file pattern")
)

// SpeechConfig holds the credential and request settings for the speech service.
type SpeechConfig struct {
	Key            string `toml:"key" env:"AZURE_SPEECH_KEY"`
	Region         string `toml:"region" env:"AZURE_SPEECH_REGION"`
	Endpoint       string `toml:"endpoint" env:"AZURE_SPEECH_ENDPOINT"`
	OutputFormat   string `toml:"output_format"`
	Voice          string `toml:"voice"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// InputConfig describes where SSML documents are read from.
type InputConfig struct {
	SourceDir string `toml:"source_dir" env:"SSML_SOURCE_DIR"`
	Pattern   string `toml:"pattern"`
}

// OutputConfig selects how synthesized audio is routed.
type OutputConfig struct {
	Mode  string `toml:"mode" env:"SSML_OUTPUT_MODE"`
	Dir   string `toml:"dir"`
	Store string `toml:"store"`
}

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL            string `toml:"url" env:"NATS_URL"`
	Subject        string `toml:"subject"`
	DocumentBucket string `toml:"document_bucket"`
	AudioBucket    string `toml:"audio_bucket"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Speech SpeechConfig `toml:"speech"`
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	NATS   NATSConfig   `toml:"nats"`
	Paths  PathsConfig  `toml:"paths"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		Speech: SpeechConfig{
			Key:            "",
			Region:         defaultRegion,
			Endpoint:       "",
			OutputFormat:   audio.DefaultFormatName,
			Voice:          defaultVoice,
			Language:       defaultLanguage,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Input: InputConfig{
			SourceDir: defaultSourceDir,
			Pattern:   defaultPattern,
		},
		Output: OutputConfig{
			Mode:  ModeSpeaker,
			Dir:   defaultOutputDir,
			Store: StoreLocal,
		},
		NATS: NATSConfig{
			URL:            "",
			Subject:        defaultSubject,
			DocumentBucket: defaultDocumentBucket,
			AudioBucket:    defaultAudioBucket,
		},
		Paths: PathsConfig{
			BaseLogsDir: os.TempDir(),
		},
	}
}

// Load loads the configuration. A non-empty path is read as a TOML file;
// otherwise the central configurator supplies the project configuration.
// Variables from a local .env file and the environment override both.
func Load(path string, log *logger.Logger) (*Config, error) {
	dotenvErr := godotenv.Load(envFileName)
	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFileName, dotenvErr)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}

		return Parse(data)
	}

	cfg := Default()

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return finalize(&cfg)
}

// Parse decodes TOML over the defaults, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	err := toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.Output.Mode = strings.ToLower(strings.TrimSpace(cfg.Output.Mode))
	cfg.Output.Store = strings.ToLower(strings.TrimSpace(cfg.Output.Store))

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings the runner cannot work without. The credential
// and region are deliberately left to the speech service to reject.
func (c *Config) Validate() error {
	if c.Input.SourceDir == "" {
		return ErrSourceDirEmpty
	}

	if c.Input.Pattern == "" {
		return fmt.Errorf("%w: pattern cannot be empty", ErrInvalidPattern)
	}

	_, matchErr := filepath.Match(c.Input.Pattern, c.Input.Pattern)
	if matchErr != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidPattern, c.Input.Pattern, matchErr)
	}

	if c.Speech.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeTimeout, c.Speech.TimeoutSeconds)
	}

	format, err := audio.Lookup(c.Speech.OutputFormat)
	if err != nil {
		return fmt.Errorf("invalid speech configuration: %w", err)
	}

	err = format.Validate()
	if err != nil {
		return fmt.Errorf("invalid speech configuration: %w", err)
	}

	switch c.Output.Mode {
	case ModeSpeaker, ModeFile:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidMode, c.Output.Mode)
	}

	switch c.Output.Store {
	case StoreLocal:
	case StoreNATS:
		if c.NATS.URL == "" {
			return ErrNATSURLEmpty
		}

		if c.NATS.AudioBucket == "" {
			return ErrAudioBucketEmpty
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidStore, c.Output.Store)
	}

	return nil
}

// BaseURL returns the endpoint override or the regional speech host.
func (s SpeechConfig) BaseURL() string {
	if s.Endpoint != "" {
		return strings.TrimRight(s.Endpoint, "/")
	}

	return fmt.Sprintf(serviceHostFormat, s.Region)
}
