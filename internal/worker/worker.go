// Package worker provides a NATS worker that serves audio description
// generation jobs.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/audio-description-service/internal/core"
)

// handleMessageTimeout bounds one generation job. It exceeds the synthesis
// deadline so the pipeline's own timeout fires first.
const handleMessageTimeout = 90 * time.Second

// ErrTextMissing indicates a request event without input text.
var ErrTextMissing = errors.New("request event carries no text")

// NatsWorker listens for generation request events on a NATS subject and
// replies with created or failed events.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	generator      core.DescriptionGenerator
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	generator core.DescriptionGenerator,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		generator:      generator,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate event: %v", err)

		return
	}

	request := core.GenerationRequest{
		Text: event.Text,
		Language: core.Language{
			Code: event.LanguageCode,
			Name: event.LanguageName,
		},
		Voice: core.Voice{
			ID:     event.VoiceID,
			Name:   event.VoiceName,
			Gender: event.VoiceGender,
		},
	}

	result, genErr := w.generator.Generate(ctx, request, event.Header.UserID)
	if genErr != nil {
		w.log.Error("Generation failed for workflow %s: %v", event.Header.WorkflowID, genErr)
		w.replyFailed(msg, event, genErr)

		return
	}

	w.replyCreated(msg, event, result)
}

func (w *NatsWorker) replyCreated(
	msg *nats.Msg,
	event *AudioDescriptionRequestedEvent,
	result core.GenerationResult,
) {
	reply := &AudioDescriptionCreatedEvent{
		Header:    event.Header,
		ResultID:  result.ID,
		AudioRef:  result.AudioRef,
		Text:      result.Text,
		CreatedAt: result.CreatedAt,
	}

	err := w.respond(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish created event for workflow %s: %v", event.Header.WorkflowID, err)
	}
}

func (w *NatsWorker) replyFailed(msg *nats.Msg, event *AudioDescriptionRequestedEvent, genErr error) {
	message := genErr.Error()

	var classified *core.GenerationError
	if errors.As(genErr, &classified) {
		message = classified.Message
	}

	reply := &AudioDescriptionFailedEvent{
		Header:     event.Header,
		ErrorClass: string(core.ClassOf(genErr)),
		Message:    message,
	}

	err := w.respond(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish failed event for workflow %s: %v", event.Header.WorkflowID, err)
	}
}

// respond marshals and replies with the given event.
func (w *NatsWorker) respond(msg *nats.Msg, reply any) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func parseAndValidateEvent(msg *nats.Msg) (*AudioDescriptionRequestedEvent, error) {
	var event AudioDescriptionRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.Text == "" {
		return nil, ErrTextMissing
	}

	return &event, nil
}
