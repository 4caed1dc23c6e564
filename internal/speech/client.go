// Package speech provides a client for the Azure Speech text-to-speech REST API.
//
// Every request that reaches the service, or fails to, is reported as a
// core.Outcome: audio on success, a cancellation descriptor otherwise. Only
// faults in building the request itself are returned as errors.
package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/book-expert/ssml-speech/internal/core"
)

// API endpoints and paths.
const (
	apiSynthesize = "/cognitiveservices/v1"
	apiVoices     = "/cognitiveservices/voices/list"
)

// HTTP headers.
const (
	headerSubscriptionKey = "Ocp-Apim-Subscription-Key"
	headerOutputFormat    = "X-Microsoft-OutputFormat"
	headerContentType     = "Content-Type"
	headerUserAgent       = "User-Agent"
	contentTypeSSML       = "application/ssml+xml"
)

// Default values.
const (
	DefaultTimeout   = 120 * time.Second
	defaultUserAgent = "ssml-speech"
	maxDetailBytes   = 4096
)

// Error messages.
const (
	errFmtCreateRequest     = "failed to create request: %w"
	errFmtVoicesStatus      = "voices request failed with status %s: %s"
	errFmtVoicesTransport   = "voices request to %s failed: %w"
	errFmtVoicesDecode      = "failed to decode voices response: %w"
	errReceivedEmptyAudio   = "received empty audio data"
	detailFmtStatus         = "%s (%d)"
	detailFmtStatusWithBody = "%s (%d): %s"
)

// ErrEmptyBaseURL is returned when the client has no service URL.
var ErrEmptyBaseURL = errors.New("speech service base URL cannot be empty")

// Options configures a Client.
type Options struct {
	// BaseURL includes the scheme and host, e.g. "https://westeurope.tts.speech.microsoft.com".
	BaseURL string
	// Key is the subscription key sent with every request.
	Key string
	// OutputFormat is the X-Microsoft-OutputFormat value.
	OutputFormat string
	// Timeout applies to each request; zero selects DefaultTimeout.
	Timeout time.Duration
	// UserAgent identifies the application to the service.
	UserAgent string
}

// Client talks to the speech synthesis endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	key          string
	outputFormat string
	userAgent    string
}

// Voice describes one entry of the voices list.
type Voice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
	VoiceType string `json:"VoiceType"`
}

// NewClient creates a speech client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		key:          opts.Key,
		outputFormat: opts.OutputFormat,
		userAgent:    userAgent,
	}, nil
}

// Synthesize submits an SSML document and waits for exactly one outcome.
// The response body is fully consumed and closed before returning.
func (c *Client) Synthesize(ctx context.Context, ssml string) (core.Outcome, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSynthesize,
		strings.NewReader(ssml),
	)
	if err != nil {
		return core.Outcome{}, fmt.Errorf(errFmtCreateRequest, err)
	}

	httpReq.Header.Set(headerSubscriptionKey, c.key)
	httpReq.Header.Set(headerContentType, contentTypeSSML)
	httpReq.Header.Set(headerOutputFormat, c.outputFormat)
	httpReq.Header.Set(headerUserAgent, c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportOutcome(ctx, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusOutcome(resp), nil
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return canceledByUser(), nil
		}

		return core.Canceled(core.Cancellation{
			Reason:       core.CancellationEndOfStream,
			ErrorCode:    core.ErrorCodeNone,
			ErrorDetails: err.Error(),
		}), nil
	}

	if len(audioData) == 0 {
		return core.CanceledWithError(core.ErrorCodeServiceError, errReceivedEmptyAudio), nil
	}

	return core.Completed(audioData), nil
}

// Voices lists the voices available to the configured credential and region.
// It doubles as a credential and connectivity check.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiVoices, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf(errFmtCreateRequest, err)
	}

	req.Header.Set(headerSubscriptionKey, c.key)
	req.Header.Set(headerUserAgent, c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFmtVoicesTransport, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(errFmtVoicesStatus, resp.Status, readDetail(resp.Body))
	}

	var voices []Voice

	err = json.NewDecoder(resp.Body).Decode(&voices)
	if err != nil {
		return nil, fmt.Errorf(errFmtVoicesDecode, err)
	}

	return voices, nil
}

func transportOutcome(ctx context.Context, err error) core.Outcome {
	if ctx.Err() != nil {
		return canceledByUser()
	}

	code := core.ErrorCodeConnectionFailure

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		code = core.ErrorCodeServiceTimeout
	}

	return core.CanceledWithError(code, err.Error())
}

func canceledByUser() core.Outcome {
	return core.Canceled(core.Cancellation{
		Reason:       core.CancellationByUser,
		ErrorCode:    core.ErrorCodeNone,
		ErrorDetails: "",
	})
}

// statusOutcome maps a non-OK response to the cancellation the service's
// own SDK would report for it.
func statusOutcome(resp *http.Response) core.Outcome {
	detail := readDetail(resp.Body)
	statusText := http.StatusText(resp.StatusCode)

	message := fmt.Sprintf(detailFmtStatus, statusText, resp.StatusCode)
	if detail != "" {
		message = fmt.Sprintf(detailFmtStatusWithBody, statusText, resp.StatusCode, detail)
	}

	return core.CanceledWithError(errorCodeForStatus(resp.StatusCode), message)
}

func errorCodeForStatus(status int) core.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return core.ErrorCodeBadRequest
	case http.StatusUnauthorized:
		return core.ErrorCodeAuthenticationFailure
	case http.StatusForbidden:
		return core.ErrorCodeForbidden
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return core.ErrorCodeServiceTimeout
	case http.StatusTooManyRequests:
		return core.ErrorCodeTooManyRequests
	case http.StatusServiceUnavailable:
		return core.ErrorCodeServiceUnavailable
	default:
		return core.ErrorCodeServiceError
	}
}

// readDetail returns a bounded, trimmed copy of an error body.
func readDetail(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxDetailBytes))

	return strings.TrimSpace(string(data))
}
