package core

import "context"

// DescriptionGenerator runs the end-to-end generation flow for one request.
// userID is empty for unauthenticated callers. Failures are returned as
// *GenerationError carrying a displayable message.
type DescriptionGenerator interface {
	Generate(ctx context.Context, req GenerationRequest, userID string) (GenerationResult, error)
}

// DescriptionEnhancer rewrites short input text into a fuller description.
// It is best-effort: any failure yields an empty string and the caller keeps
// the original text.
type DescriptionEnhancer interface {
	Enhance(ctx context.Context, text, languageCode, voiceName string) string
}

// SpeechSynthesizer invokes the external text-to-speech service and returns
// the produced audio reference.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, voiceID, userID string) (string, error)
}

// HistoryStore persists accepted generations to the user's history.
type HistoryStore interface {
	Insert(ctx context.Context, record HistoryRecord) error
}

// UsageStore tracks per-user daily generation counts and quota settings.
type UsageStore interface {
	RemainingGenerations(ctx context.Context, userID string) (int, error)
	UnlimitedModeEnabled(ctx context.Context) (bool, error)
	IncrementDailyCount(ctx context.Context, userID string) error
}

// AudioStore is a key-value blob store holding durable copies of generated
// audio payloads.
type AudioStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
