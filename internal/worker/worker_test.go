// Package worker_test tests the NATS worker for the ssml-speech service.
package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/ssml-speech/internal/core"
	"github.com/book-expert/ssml-speech/internal/worker"
	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSubject   = "test_subject"
	testVoice     = "en-US-AvaNeural"
	testLanguage  = "en-US"
	noReplyWindow = 500 * time.Millisecond
)

var (
	errMockDownload = errors.New("mock download error")
	errMockUpload   = errors.New("mock upload error")
)

// mockObjectStore is a mock implementation of the ObjectStore interface.
type mockObjectStore struct {
	mu                 sync.Mutex
	content            []byte
	downloadShouldFail bool
	uploadShouldFail   bool
	downloadedKey      string
	uploadedKey        string
	uploadedData       []byte
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.downloadShouldFail {
		return nil, errMockDownload
	}

	m.downloadedKey = key

	return m.content, nil
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.uploadShouldFail {
		return errMockUpload
	}

	m.uploadedKey = key
	m.uploadedData = data

	return nil
}

func (m *mockObjectStore) snapshot() (downloaded, uploaded string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.downloadedKey, m.uploadedKey, m.uploadedData
}

// mockSynthesizer is a mock implementation of the Synthesizer interface.
type mockSynthesizer struct {
	mu       sync.Mutex
	outcome  core.Outcome
	received []string
}

func (m *mockSynthesizer) Synthesize(_ context.Context, ssml string) (core.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.received = append(m.received, ssml)

	return m.outcome, nil
}

func (m *mockSynthesizer) requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.received...)
}

type testEnv struct {
	worker    *worker.NatsWorker
	documents *mockObjectStore
	audio     *mockObjectStore
	synth     *mockSynthesizer
	conn      *nats.Conn
}

func createTestNatsClient(t *testing.T) *nats.Conn {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	server := test.RunServer(&opts)

	natsConnection, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	t.Cleanup(func() {
		natsConnection.Close()
		server.Shutdown()
	})

	return natsConnection
}

func setupTest(t *testing.T, content string) *testEnv {
	t.Helper()

	env := &testEnv{
		documents: &mockObjectStore{content: []byte(content)},
		audio:     &mockObjectStore{},
		synth:     &mockSynthesizer{outcome: core.Completed([]byte("sample audio"))},
		conn:      createTestNatsClient(t),
	}

	testLogger, err := logger.New(t.TempDir(), "worker-test.log")
	require.NoError(t, err)

	env.worker, err = worker.NewNatsWorker(
		env.conn,
		worker.Settings{Subject: testSubject, Voice: testVoice, Language: testLanguage},
		env.documents,
		env.audio,
		env.synth,
		testLogger,
	)
	require.NoError(t, err)

	return env
}

// start runs the worker until the test ends and waits for its subscription.
func (env *testEnv) start(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- env.worker.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return env.conn.NumSubscriptions() > 0
	}, 5*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errChan, "worker.Run should not error on graceful shutdown")
	})
}

func newEvent(t *testing.T, voice string) (*events.TextProcessedEvent, []byte) {
	t.Helper()

	event := &events.TextProcessedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
			UserID:     "",
			TenantID:   "",
		},
		TextKey:           "test-text-key",
		PNGKey:            "",
		PageNumber:        3,
		TotalPages:        10,
		Voice:             voice,
		Seed:              0,
		NGL:               0,
		TopP:              0,
		RepetitionPenalty: 0,
		Temperature:       0,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	return event, data
}

func TestNewNatsWorker_Validation(t *testing.T) {
	t.Parallel()

	conn := createTestNatsClient(t)
	store := &mockObjectStore{}
	synth := &mockSynthesizer{}

	testLogger, err := logger.New(t.TempDir(), "worker-test.log")
	require.NoError(t, err)

	valid := worker.Settings{Subject: testSubject, Voice: testVoice, Language: testLanguage}

	_, err = worker.NewNatsWorker(nil, valid, store, store, synth, testLogger)
	require.ErrorIs(t, err, worker.ErrNilConnection)

	_, err = worker.NewNatsWorker(conn, worker.Settings{Voice: testVoice}, store, store, synth, testLogger)
	require.ErrorIs(t, err, worker.ErrSubjectEmpty)

	_, err = worker.NewNatsWorker(conn, worker.Settings{Subject: testSubject}, store, store, synth, testLogger)
	require.ErrorIs(t, err, worker.ErrVoiceEmpty)

	_, err = worker.NewNatsWorker(conn, valid, store, store, nil, testLogger)
	require.ErrorIs(t, err, worker.ErrMissingDependency)
}

func TestMessageHandler_PlainText(t *testing.T) {
	t.Parallel()

	env := setupTest(t, "Chapter 1. Mr. Smith arrived")
	env.start(t)

	testEvent, eventData := newEvent(t, "")

	replyMsg, err := env.conn.Request(testSubject, eventData, 5*time.Second)
	require.NoError(t, err, "Request should succeed and receive a reply")

	var replyEvent events.AudioChunkCreatedEvent

	require.NoError(t, json.Unmarshal(replyMsg.Data, &replyEvent))

	downloaded, uploaded, data := env.audio.snapshot()
	assert.Empty(t, downloaded)
	assert.True(t, strings.HasSuffix(uploaded, ".wav"))
	assert.Equal(t, []byte("sample audio"), data)

	documentKey, _, _ := env.documents.snapshot()
	assert.Equal(t, "test-text-key", documentKey)

	requests := env.synth.requests()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `<voice name="en-US-AvaNeural">Chapter one. Mister Smith arrived.</voice>`)
	assert.Contains(t, requests[0], `xml:lang="en-US"`)

	assert.Equal(t, uploaded, replyEvent.AudioKey)
	assert.Equal(t, testEvent.Header.WorkflowID, replyEvent.Header.WorkflowID)
	assert.NotEqual(t, testEvent.Header.EventID, replyEvent.Header.EventID)
	assert.Equal(t, testEvent.PageNumber, replyEvent.PageNumber)
	assert.Equal(t, testEvent.TotalPages, replyEvent.TotalPages)
}

func TestMessageHandler_MarkupPassesThrough(t *testing.T) {
	t.Parallel()

	markup := `<speak version="1.0" xml:lang="en-GB"><voice name="en-GB-SoniaNeural">Page 2</voice></speak>`

	env := setupTest(t, markup)
	env.start(t)

	_, eventData := newEvent(t, "en-US-AndrewNeural")

	_, err := env.conn.Request(testSubject, eventData, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, []string{markup}, env.synth.requests())
}

func TestMessageHandler_EventVoice(t *testing.T) {
	t.Parallel()

	env := setupTest(t, "Hello")
	env.start(t)

	_, eventData := newEvent(t, "en-US-AndrewNeural")

	_, err := env.conn.Request(testSubject, eventData, 5*time.Second)
	require.NoError(t, err)

	requests := env.synth.requests()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `<voice name="en-US-AndrewNeural">Hello.</voice>`)
}

func TestMessageHandler_NoReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		configure func(env *testEnv)
		payload   func(t *testing.T) []byte
	}{
		{
			name: "synthesis canceled",
			configure: func(env *testEnv) {
				env.synth.outcome = core.CanceledWithError(core.ErrorCodeAuthenticationFailure, "Unauthorized (401)")
			},
		},
		{
			name:      "download fails",
			configure: func(env *testEnv) { env.documents.downloadShouldFail = true },
		},
		{
			name:      "upload fails",
			configure: func(env *testEnv) { env.audio.uploadShouldFail = true },
		},
		{
			name:      "invalid payload",
			configure: func(*testEnv) {},
			payload:   func(*testing.T) []byte { return []byte("not json") },
		},
		{
			name:      "missing text key",
			configure: func(*testEnv) {},
			payload: func(t *testing.T) []byte {
				t.Helper()

				data, err := json.Marshal(events.TextProcessedEvent{})
				require.NoError(t, err)

				return data
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			env := setupTest(t, "Hello")
			testCase.configure(env)
			env.start(t)

			var payload []byte
			if testCase.payload != nil {
				payload = testCase.payload(t)
			} else {
				_, payload = newEvent(t, "")
			}

			_, err := env.conn.Request(testSubject, payload, noReplyWindow)
			require.ErrorIs(t, err, nats.ErrTimeout)

			_, uploaded, _ := env.audio.snapshot()
			assert.Empty(t, uploaded)
		})
	}
}
