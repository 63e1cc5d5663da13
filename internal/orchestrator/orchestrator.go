// Package orchestrator composes the generation pipeline: cache lookup,
// optional description enhancement, rate-limit admission, speech synthesis,
// audio validation, and persistence of accepted results.
package orchestrator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/book-expert/audio-description-service/internal/audio"
	"github.com/book-expert/audio-description-service/internal/core"
	"github.com/book-expert/audio-description-service/internal/ratelimit"
	"github.com/book-expert/audio-description-service/internal/resultcache"
)

// enhanceBelowChars is the input length under which the description enhancer
// is consulted. Longer inputs are synthesized as-is.
const enhanceBelowChars = 100

// Operation names tracked by the rate limiter.
const (
	opEnhance    = "describe_text"
	opSynthesize = "generate_speech"
)

// User-facing failure messages.
const (
	msgAuthRequired   = "Please sign in to generate audio descriptions."
	msgQuotaExhausted = "You have used all of today's generations. Please try again tomorrow."
	msgRateLimited    = "Too many generation requests right now. Please wait a moment and try again."
	msgInvalidAudio   = "The generated audio was incomplete. Please try again."
)

// Static errors.
var (
	ErrTextEmpty          = errors.New("request text cannot be empty")
	ErrLimiterRequired    = errors.New("rate limiter is required")
	ErrCacheRequired      = errors.New("result cache is required")
	ErrSynthesizerMissing = errors.New("speech synthesizer is required")
	ErrLoggerRequired     = errors.New("logger is required")
)

// Budgets holds the sliding-window budgets for the two external operations.
// Synthesis carries the stricter budget because each call is far more
// expensive than an enhancement call.
type Budgets struct {
	EnhanceCalls     int
	EnhanceWindow    time.Duration
	SynthesizeCalls  int
	SynthesizeWindow time.Duration
}

// DefaultBudgets returns the production call budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		EnhanceCalls:     10,
		EnhanceWindow:    60 * time.Second,
		SynthesizeCalls:  5,
		SynthesizeWindow: 60 * time.Second,
	}
}

// Deps carries the collaborators of the generation service. Limiter, Cache,
// Synthesizer, and Log are required; the rest may be nil, which disables the
// corresponding step.
type Deps struct {
	Limiter     *ratelimit.Limiter
	Cache       *resultcache.Cache
	Enhancer    core.DescriptionEnhancer
	Synthesizer core.SpeechSynthesizer
	History     core.HistoryStore
	Usage       core.UsageStore
	Archive     core.AudioStore
	Budgets     Budgets
	AllowGuests bool
	Log         *logger.Logger
}

// Service owns the request lifecycle and is the only component that writes
// to the result cache and the history store. Construct one per process and
// inject it where needed; there are no package-level instances.
type Service struct {
	limiter     *ratelimit.Limiter
	cache       *resultcache.Cache
	enhancer    core.DescriptionEnhancer
	synthesizer core.SpeechSynthesizer
	history     core.HistoryStore
	usage       core.UsageStore
	archive     core.AudioStore
	budgets     Budgets
	allowGuests bool
	log         *logger.Logger
}

// New creates the generation service.
func New(deps Deps) (*Service, error) {
	if deps.Limiter == nil {
		return nil, ErrLimiterRequired
	}

	if deps.Cache == nil {
		return nil, ErrCacheRequired
	}

	if deps.Synthesizer == nil {
		return nil, ErrSynthesizerMissing
	}

	if deps.Log == nil {
		return nil, ErrLoggerRequired
	}

	if deps.Budgets == (Budgets{}) {
		deps.Budgets = DefaultBudgets()
	}

	return &Service{
		limiter:     deps.Limiter,
		cache:       deps.Cache,
		enhancer:    deps.Enhancer,
		synthesizer: deps.Synthesizer,
		history:     deps.History,
		usage:       deps.Usage,
		archive:     deps.Archive,
		budgets:     deps.Budgets,
		allowGuests: deps.AllowGuests,
		log:         deps.Log,
	}, nil
}

// Generate runs one request through the pipeline. Steps are strictly
// sequential: cache check, quota gate, optional enhancement, rate-limit
// admission, synthesis, validation, persistence. Failures after the cache check never
// leave partial state behind: nothing is written to the cache or the history
// store unless the result passed validation.
func (s *Service) Generate(
	ctx context.Context,
	req core.GenerationRequest,
	userID string,
) (core.GenerationResult, error) {
	if req.Text == "" {
		return core.GenerationResult{}, ErrTextEmpty
	}

	if userID == "" && !s.allowGuests {
		return core.GenerationResult{}, core.NewGenerationError(
			core.ClassAuthenticationRequired, msgAuthRequired,
		)
	}

	if hit := s.cache.Find(req.Text); hit != nil {
		return *hit, nil
	}

	quotaErr := s.checkQuota(ctx, userID)
	if quotaErr != nil {
		return core.GenerationResult{}, quotaErr
	}

	text := s.maybeEnhance(ctx, req, userID)

	if !s.limiter.Allow(opSynthesize, s.budgets.SynthesizeCalls, s.budgets.SynthesizeWindow) {
		return core.GenerationResult{}, core.NewGenerationError(
			core.ClassRateLimited, msgRateLimited,
		)
	}

	audioRef, err := s.synthesizer.Synthesize(ctx, text, req.Language.Code, req.Voice.ID, userID)
	if err != nil {
		return core.GenerationResult{}, classify(err)
	}

	// The upstream's self-reported success is not sufficient: the
	// reference must pass validation before it is trusted.
	if !audio.ValidReference(audioRef) {
		return core.GenerationResult{}, core.NewGenerationError(
			core.ClassInvalidAudio, msgInvalidAudio,
		)
	}

	result := core.GenerationResult{
		ID:        uuid.NewString(),
		AudioRef:  audioRef,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	// Persistence failures degrade saved history and accounting, never the
	// result already produced for the caller.
	s.persist(ctx, req, result, userID)

	s.cache.Store(result)

	return result, nil
}

// checkQuota enforces the daily generation limit for authenticated users.
// Store errors are logged and the request proceeds: quota accounting is not
// worth failing a generation the user could otherwise have.
func (s *Service) checkQuota(ctx context.Context, userID string) error {
	if userID == "" || s.usage == nil {
		return nil
	}

	unlimited, err := s.usage.UnlimitedModeEnabled(ctx)
	if err != nil {
		s.log.Warn("Failed to read unlimited mode flag, treating as off: %v", err)

		unlimited = false
	}

	if unlimited {
		return nil
	}

	remaining, err := s.usage.RemainingGenerations(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to read remaining generations for user %s: %v", userID, err)

		return nil
	}

	if remaining <= 0 {
		return core.NewGenerationError(core.ClassQuotaExhausted, msgQuotaExhausted)
	}

	return nil
}

// maybeEnhance runs the best-effort enhancement step for short inputs.
// Failure or a refused enhancement budget keeps the original text; neither
// is ever surfaced to the caller as an error.
func (s *Service) maybeEnhance(ctx context.Context, req core.GenerationRequest, userID string) string {
	if s.enhancer == nil || len(req.Text) >= enhanceBelowChars {
		return req.Text
	}

	if !s.limiter.Allow(opEnhance, s.budgets.EnhanceCalls, s.budgets.EnhanceWindow) {
		s.log.Warn("Skipping description enhancement for user %s: budget exhausted", userID)

		return req.Text
	}

	enhanced := s.enhancer.Enhance(ctx, req.Text, req.Language.Code, req.Voice.Name)
	if enhanced == "" {
		return req.Text
	}

	return enhanced
}

// persist writes the accepted result to history storage, bumps the daily
// count, and archives inline payloads. Each step is independent and logged
// on failure.
func (s *Service) persist(
	ctx context.Context,
	req core.GenerationRequest,
	result core.GenerationResult,
	userID string,
) {
	if userID != "" && s.history != nil {
		err := s.history.Insert(ctx, core.HistoryRecord{
			ID:        result.ID,
			AudioURL:  result.AudioRef,
			Text:      result.Text,
			Language:  req.Language.Code,
			Voice:     req.Voice.ID,
			UserID:    userID,
			CreatedAt: result.CreatedAt,
		})
		if err != nil {
			s.log.Error("Failed to save generation %s to history: %v", result.ID, err)
		}
	}

	if userID != "" && s.usage != nil {
		err := s.usage.IncrementDailyCount(ctx, userID)
		if err != nil {
			s.log.Error("Failed to increment daily count for user %s: %v", userID, err)
		}
	}

	s.archiveInline(ctx, result)
}

// archiveInline uploads a durable copy of an inline base64 payload to the
// object store, keyed by result ID.
func (s *Service) archiveInline(ctx context.Context, result core.GenerationResult) {
	if s.archive == nil {
		return
	}

	payload, ok := audio.InlinePayload(result.AudioRef)
	if !ok {
		return
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		s.log.Warn("Failed to decode inline audio payload for %s: %v", result.ID, err)

		return
	}

	err = s.archive.Upload(ctx, result.ID+".wav", data)
	if err != nil {
		s.log.Warn("Failed to archive audio payload for %s: %v", result.ID, err)
	}
}

// classify ensures every synthesis failure escalates with a classification.
// Errors that carry none are treated as upstream failures.
func classify(err error) error {
	var genErr *core.GenerationError
	if errors.As(err, &genErr) {
		return err
	}

	return core.WrapGenerationError(
		core.ClassUpstreamError,
		"The speech service could not process this request. Please try again.",
		fmt.Errorf("unclassified synthesis failure: %w", err),
	)
}
