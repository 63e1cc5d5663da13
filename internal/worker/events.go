package worker

import (
	"time"

	"github.com/book-expert/events"
)

// AudioDescriptionRequestedEvent asks for one audio description generation.
// The requester identity travels in the shared event header.
type AudioDescriptionRequestedEvent struct {
	Header       events.EventHeader `json:"header"`
	Text         string             `json:"text"`
	LanguageCode string             `json:"language_code"`
	LanguageName string             `json:"language_name"`
	VoiceID      string             `json:"voice_id"`
	VoiceName    string             `json:"voice_name"`
	VoiceGender  string             `json:"voice_gender"`
}

// AudioDescriptionCreatedEvent reports a successful generation.
type AudioDescriptionCreatedEvent struct {
	Header    events.EventHeader `json:"header"`
	ResultID  string             `json:"result_id"`
	AudioRef  string             `json:"audio_ref"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
}

// AudioDescriptionFailedEvent reports a failed generation with its
// classification and a user-displayable message.
type AudioDescriptionFailedEvent struct {
	Header     events.EventHeader `json:"header"`
	ErrorClass string             `json:"error_class"`
	Message    string             `json:"message"`
}
