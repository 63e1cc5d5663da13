// Package synthesize provides the client for the external speech-synthesis
// service. Every call is raced against a fixed timeout and failures are
// classified for user-facing reporting.
package synthesize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/book-expert/audio-description-service/internal/core"
)

const apiGenerateSpeech = "/v1/generate/speech"

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

// DefaultTimeout bounds a single synthesis call.
const DefaultTimeout = 60 * time.Second

// User-facing failure messages.
const (
	msgTimeout  = "Speech generation took too long. Please try again with shorter text."
	msgUpstream = "The speech service could not process this request. Please try again."
	msgNetwork  = "The speech service could not be reached. Please check your connection and try again."
)

// ErrTextEmpty indicates an empty synthesis input.
var ErrTextEmpty = errors.New("text cannot be empty")

// Request defines the JSON payload for a speech-generation call.
type Request struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
	UserID   string `json:"user_id"`
}

// Response defines the JSON payload returned on success. AudioURL is either
// an external URL or an inline data:audio base64 payload.
type Response struct {
	AudioURL string `json:"audio_url"`
	FileName string `json:"fileName"`
}

// ErrorResponse is the structured error body returned by the service.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Client is a client for the speech-synthesis HTTP service. Callers are
// expected to have passed rate-limit admission before invoking Synthesize;
// the client itself never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a client for the service at baseURL. A non-positive
// timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize requests speech for the given text and returns the audio
// reference reported by the service. Failures are returned as
// *core.GenerationError: a lost race against the timeout is ClassTimeout, a
// non-success or malformed response is ClassUpstreamError, and a call that
// could not be dispatched at all is ClassNetworkError.
func (c *Client) Synthesize(
	ctx context.Context,
	text, languageCode, voiceID, userID string,
) (string, error) {
	if text == "" {
		return "", ErrTextEmpty
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestBody, err := json.Marshal(Request{
		Text:     text,
		Language: languageCode,
		Voice:    voiceID,
		UserID:   userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + apiGenerateSpeech

	httpReq, err := http.NewRequestWithContext(
		callCtx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeJSON)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", core.WrapGenerationError(
			core.ClassUpstreamError,
			msgUpstream,
			c.parseErrorResponse(resp),
		)
	}

	var speech Response

	err = json.NewDecoder(resp.Body).Decode(&speech)
	if err != nil {
		return "", core.WrapGenerationError(
			core.ClassUpstreamError,
			msgUpstream,
			fmt.Errorf("failed to decode synthesis response: %w", err),
		)
	}

	if speech.AudioURL == "" {
		return "", core.WrapGenerationError(
			core.ClassUpstreamError,
			msgUpstream,
			errors.New("synthesis response carried no audio reference"),
		)
	}

	return speech.AudioURL, nil
}

// classifyTransportError separates a lost timeout race from a dispatch
// failure. The context error is unwrapped via errors.Is; the net.Error check
// covers http.Client's own timeout wrapping.
func (c *Client) classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return core.WrapGenerationError(core.ClassTimeout, msgTimeout, err)
	}

	return core.WrapGenerationError(
		core.ClassNetworkError,
		msgNetwork,
		fmt.Errorf("failed to send request to synthesis service at %s: %w", c.baseURL, err),
	)
}

// parseErrorResponse attempts to decode a structured JSON error from the
// service, falling back to the raw body so diagnostics are preserved.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil {
		return fmt.Errorf("synthesis service error (%s): %s (code: %s)",
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		"synthesis service returned non-OK status: %s, body: %s",
		resp.Status,
		string(body),
	)
}
