// Package config_test tests the configuration loading for ssml-speech.
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/ssml-speech/internal/audio"
	"github.com/book-expert/ssml-speech/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tomlData := `
[speech]
output_format = "riff-16khz-16bit-mono-pcm"
voice = "en-GB-SoniaNeural"
language = "en-GB"
timeout_seconds = 30

[input]
source_dir = "/data/ssml"
pattern = "*.ssml"

[output]
mode = "File"
dir = "/data/audio"
store = "nats"

[nats]
subject = "ssml.ready"
document_bucket = "SSML_FILES"
audio_bucket = "AUDIO"

[paths]
base_logs_dir = "/var/log/ssml-speech"
`
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := config.Parse([]byte(tomlData))
	require.NoError(t, err)

	assert.Equal(t, "riff-16khz-16bit-mono-pcm", cfg.Speech.OutputFormat)
	assert.Equal(t, "en-GB-SoniaNeural", cfg.Speech.Voice)
	assert.Equal(t, "en-GB", cfg.Speech.Language)
	assert.Equal(t, 30, cfg.Speech.TimeoutSeconds)
	assert.Equal(t, "/data/ssml", cfg.Input.SourceDir)
	assert.Equal(t, "*.ssml", cfg.Input.Pattern)
	assert.Equal(t, config.ModeFile, cfg.Output.Mode)
	assert.Equal(t, "/data/audio", cfg.Output.Dir)
	assert.Equal(t, config.StoreNATS, cfg.Output.Store)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "ssml.ready", cfg.NATS.Subject)
	assert.Equal(t, "SSML_FILES", cfg.NATS.DocumentBucket)
	assert.Equal(t, "AUDIO", cfg.NATS.AudioBucket)
	assert.Equal(t, "/var/log/ssml-speech", cfg.Paths.BaseLogsDir)
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, audio.DefaultFormatName, cfg.Speech.OutputFormat)
	assert.Equal(t, 120, cfg.Speech.TimeoutSeconds)
	assert.Equal(t, "*.xml", cfg.Input.Pattern)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, config.StoreLocal, cfg.Output.Store)
	assert.NotEmpty(t, cfg.Paths.BaseLogsDir)
}

func TestParseConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AZURE_SPEECH_KEY", "secret-key")
	t.Setenv("AZURE_SPEECH_REGION", "northeurope")
	t.Setenv("SSML_SOURCE_DIR", "/env/input")
	t.Setenv("SSML_OUTPUT_MODE", "file")

	cfg, err := config.Parse([]byte(`
[speech]
key = "from-file"
region = "westus"

[output]
mode = "speaker"
`))
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Speech.Key)
	assert.Equal(t, "northeurope", cfg.Speech.Region)
	assert.Equal(t, "/env/input", cfg.Input.SourceDir)
	assert.Equal(t, config.ModeFile, cfg.Output.Mode)
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		toml    string
		wantErr error
	}{
		{name: "unknown mode", toml: "[output]\nmode = \"tape\"", wantErr: config.ErrInvalidMode},
		{name: "unknown store", toml: "[output]\nstore = \"s3\"", wantErr: config.ErrInvalidStore},
		{name: "compressed format", toml: "[speech]\noutput_format = \"audio-16khz-32kbitrate-mono-mp3\"", wantErr: audio.ErrUnsupportedFormat},
		{name: "negative timeout", toml: "[speech]\ntimeout_seconds = -1", wantErr: config.ErrNegativeTimeout},
		{name: "bad pattern", toml: "[input]\npattern = \"[\"", wantErr: config.ErrInvalidPattern},
		{name: "empty pattern", toml: "[input]\npattern = \"\"", wantErr: config.ErrInvalidPattern},
		{name: "empty source dir", toml: "[input]\nsource_dir = \"\"", wantErr: config.ErrSourceDirEmpty},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse([]byte(testCase.toml))
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestParseConfig_NATSStoreRequiresBucket(t *testing.T) {
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")

	_, err := config.Parse([]byte("[output]\nstore = \"nats\"\n[nats]\naudio_bucket = \"\""))
	require.ErrorIs(t, err, config.ErrAudioBucketEmpty)
}

func TestParseConfig_MalformedTOML(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte("[speech\nkey = "))
	require.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ssml-speech.toml")
	err := os.WriteFile(path, []byte("[input]\nsource_dir = \"./docs\"\n"), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "./docs", cfg.Input.SourceDir)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.Error(t, err)
}

func TestSpeechConfig_BaseURL(t *testing.T) {
	t.Parallel()

	regional := config.SpeechConfig{Region: "westeurope"}
	assert.Equal(t, "https://westeurope.tts.speech.microsoft.com", regional.BaseURL())

	custom := config.SpeechConfig{Region: "westeurope", Endpoint: "http://127.0.0.1:8080/"}
	assert.Equal(t, "http://127.0.0.1:8080", custom.BaseURL())
}
