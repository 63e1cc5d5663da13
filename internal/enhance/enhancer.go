package enhance

import (
	"context"
	"time"

	"github.com/book-expert/logger"
)

// DefaultTimeout bounds a single enhancement call.
const DefaultTimeout = 15 * time.Second

// Enhancer wraps the HTTP client with the best-effort policy of the
// generation flow: every call is raced against a timeout, and any failure
// yields an empty string so the caller falls back to the original text.
// Enhancement failure is never fatal to the overall generation.
type Enhancer struct {
	client  *HTTPClient
	timeout time.Duration
	log     *logger.Logger
}

// New creates an Enhancer. A non-positive timeout falls back to
// DefaultTimeout.
func New(client *HTTPClient, timeout time.Duration, log *logger.Logger) *Enhancer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Enhancer{
		client:  client,
		timeout: timeout,
		log:     log,
	}
}

// Enhance rewrites short input text into a fuller description. The context is
// cancelled when the timeout wins the race, so a stalled upstream call is not
// left running on the client side.
func (e *Enhancer) Enhance(ctx context.Context, text, languageCode, voiceName string) string {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	generated, err := e.client.GenerateDescription(callCtx, Request{
		ProductName: text,
		Language:    languageCode,
		VoiceName:   voiceName,
	})
	if err != nil {
		e.log.Warn("Description enhancement failed, keeping original text: %v", err)

		return ""
	}

	return generated
}
