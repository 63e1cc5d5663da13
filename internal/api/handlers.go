package api

import (
	"errors"
	"net/http"

	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"

	"github.com/book-expert/audio-description-service/internal/core"
)

// DescriptionHandlers serves the generation and quota endpoints.
type DescriptionHandlers struct {
	generator core.DescriptionGenerator
	usage     core.UsageStore
	sessions  SessionProvider
	log       *logger.Logger
}

// NewDescriptionHandlers creates the handler set.
func NewDescriptionHandlers(
	generator core.DescriptionGenerator,
	usage core.UsageStore,
	sessions SessionProvider,
	log *logger.Logger,
) *DescriptionHandlers {
	return &DescriptionHandlers{
		generator: generator,
		usage:     usage,
		sessions:  sessions,
		log:       log,
	}
}

type errorResponse struct {
	ErrorClass string `json:"error_class"`
	Message    string `json:"message"`
}

// CreateDescription runs one generation for the session user.
func (h *DescriptionHandlers) CreateDescription(c *gin.Context) {
	var request core.GenerationRequest

	err := c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			ErrorClass: "bad_request",
			Message:    "Request body is not a valid generation request.",
		})

		return
	}

	if request.Text == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			ErrorClass: "bad_request",
			Message:    "Text is required.",
		})

		return
	}

	userID, _ := h.sessions.CurrentUser(c.Request)

	result, err := h.generator.Generate(c.Request.Context(), request, userID)
	if err != nil {
		h.writeGenerationError(c, err)

		return
	}

	c.JSON(http.StatusOK, result)
}

// GetQuota reports the remaining generations for the session user.
func (h *DescriptionHandlers) GetQuota(c *gin.Context) {
	userID, ok := h.sessions.CurrentUser(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{
			ErrorClass: string(core.ClassAuthenticationRequired),
			Message:    "Please sign in to view your remaining generations.",
		})

		return
	}

	unlimited, err := h.usage.UnlimitedModeEnabled(c.Request.Context())
	if err != nil {
		h.log.Warn("Failed to read unlimited mode flag: %v", err)

		unlimited = false
	}

	remaining, err := h.usage.RemainingGenerations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			ErrorClass: string(core.ClassNetworkError),
			Message:    "Quota information is temporarily unavailable.",
		})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"remaining": remaining,
		"unlimited": unlimited,
	})
}

// writeGenerationError maps an error classification to an HTTP status and a
// user-displayable body.
func (h *DescriptionHandlers) writeGenerationError(c *gin.Context, err error) {
	class := core.ClassOf(err)

	message := "Audio generation failed. Please try again."

	var genErr *core.GenerationError
	if errors.As(err, &genErr) {
		message = genErr.Message
	}

	c.JSON(statusForClass(class), errorResponse{
		ErrorClass: string(class),
		Message:    message,
	})
}

func statusForClass(class core.ErrorClass) int {
	switch class {
	case core.ClassAuthenticationRequired:
		return http.StatusUnauthorized
	case core.ClassQuotaExhausted:
		return http.StatusPaymentRequired
	case core.ClassRateLimited:
		return http.StatusTooManyRequests
	case core.ClassTimeout:
		return http.StatusGatewayTimeout
	case core.ClassUpstreamError:
		return http.StatusBadGateway
	case core.ClassInvalidAudio:
		return http.StatusUnprocessableEntity
	case core.ClassNetworkError:
		return http.StatusServiceUnavailable
	case core.ClassUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
