// Package enhance provides the client for the external text-enhancement
// service and a best-effort wrapper used by the generation flow.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiGenerateDescription = "/v1/generate/description"

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

// Static errors.
var (
	ErrTextEmpty     = errors.New("text cannot be empty")
	ErrEmptyResponse = errors.New("enhancement service returned empty generated text")
)

const (
	errFmtServiceErrorWithCode = "enhancement service error (%s): %s (code: %s)"
	errFmtServiceNonOKStatus   = "enhancement service returned non-OK status: %s, body: %s"
)

// Request defines the JSON payload for a description-generation call.
type Request struct {
	// ProductName is the short input text to expand into a description.
	ProductName string `json:"product_name"`

	// Language is the target language code (e.g., "en", "es").
	Language string `json:"language"`

	// VoiceName is the display name of the target voice; the service uses
	// it to match the register of the generated text.
	VoiceName string `json:"voice_name"`
}

// Response defines the JSON payload returned on success.
type Response struct {
	GeneratedText string `json:"generated_text"`
}

// ErrorResponse is the structured error body returned by the service.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// HTTPClient is a client for the text-enhancement HTTP service.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPClient creates a client for the service at baseURL. The timeout
// applies to every request made by this client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateDescription requests an enhanced description for the given input
// and returns the generated text.
func (c *HTTPClient) GenerateDescription(ctx context.Context, req Request) (string, error) {
	if req.ProductName == "" {
		return "", ErrTextEmpty
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + apiGenerateDescription

	httpReq, err := http.NewRequestWithContext(
		ctx,
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
		return "", fmt.Errorf(
			"failed to send request to enhancement service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.parseErrorResponse(resp)
	}

	var generated Response

	err = json.NewDecoder(resp.Body).Decode(&generated)
	if err != nil {
		return "", fmt.Errorf("failed to decode enhancement response: %w", err)
	}

	if generated.GeneratedText == "" {
		return "", ErrEmptyResponse
	}

	return generated.GeneratedText, nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// service, falling back to the raw body so diagnostics are preserved.
func (c *HTTPClient) parseErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil {
		return fmt.Errorf(errFmtServiceErrorWithCode,
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		errFmtServiceNonOKStatus,
		resp.Status,
		string(body),
	)
}
