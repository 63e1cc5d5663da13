// Package core defines the domain types, error classification, and
// collaborator contracts for the audio description service.
package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorClass identifies the failure mode of a generation attempt. The class
// is stable across releases and suitable for wire transport; the accompanying
// message is intended for direct display to the user.
type ErrorClass string

const (
	// ClassAuthenticationRequired indicates no authenticated user was
	// present for an operation that requires one.
	ClassAuthenticationRequired ErrorClass = "authentication_required"
	// ClassQuotaExhausted indicates the user's remaining generation count
	// is zero and unlimited mode is off.
	ClassQuotaExhausted ErrorClass = "quota_exhausted"
	// ClassRateLimited indicates the sliding-window admission check
	// refused the call.
	ClassRateLimited ErrorClass = "rate_limited"
	// ClassTimeout indicates an external call did not complete within its
	// bounded window.
	ClassTimeout ErrorClass = "timeout"
	// ClassUpstreamError indicates the external service responded with a
	// non-success status or a malformed payload.
	ClassUpstreamError ErrorClass = "upstream_error"
	// ClassInvalidAudio indicates the external service reported success
	// but the returned audio reference failed validation.
	ClassInvalidAudio ErrorClass = "invalid_audio"
	// ClassNetworkError indicates the call could not be dispatched at all.
	ClassNetworkError ErrorClass = "network_error"
	// ClassUnknown is returned by ClassOf for errors that carry no
	// classification.
	ClassUnknown ErrorClass = "unknown"
)

// GenerationError is a classified generation failure. Message is safe to show
// to the end user; Err optionally carries the underlying cause.
type GenerationError struct {
	Class   ErrorClass
	Message string
	Err     error
}

// NewGenerationError creates a classified error without an underlying cause.
func NewGenerationError(class ErrorClass, message string) *GenerationError {
	return &GenerationError{Class: class, Message: message, Err: nil}
}

// WrapGenerationError creates a classified error carrying an underlying cause.
func WrapGenerationError(class ErrorClass, message string, err error) *GenerationError {
	return &GenerationError{Class: class, Message: message, Err: err}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ClassOf extracts the classification from an error chain. Errors that do not
// carry a GenerationError report ClassUnknown.
func ClassOf(err error) ErrorClass {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Class
	}

	return ClassUnknown
}

// Language is a synthesis target language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Voice is a synthesis target voice.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

// GenerationRequest describes one audio description request. It is immutable
// once submitted.
type GenerationRequest struct {
	Text     string   `json:"text"`
	Language Language `json:"language"`
	Voice    Voice    `json:"voice"`
}

// GenerationResult is a successful generation outcome. AudioRef is either an
// external URL or an inline data:audio/...;base64 payload. Text is the text
// actually synthesized, which differs from the request text when the
// description enhancer rewrote it.
type GenerationResult struct {
	ID        string    `json:"id"`
	AudioRef  string    `json:"audio_ref"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRecord is one saved generation in a user's history.
type HistoryRecord struct {
	ID        string    `json:"id"`
	AudioURL  string    `json:"audio_url"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Voice     string    `json:"voice"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
