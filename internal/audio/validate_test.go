// Package audio_test tests audio reference validation.
package audio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/book-expert/audio-description-service/internal/audio"
)

func inlineRef(payloadLength int) string {
	return "data:audio/mpeg;base64," + strings.Repeat("A", payloadLength)
}

func TestValidReference(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		ref  string
		want bool
	}{
		{
			name: "empty reference rejected",
			ref:  "",
			want: false,
		},
		{
			name: "http URL accepted",
			ref:  "http://cdn.example.com/audio/abc.mp3",
			want: true,
		},
		{
			name: "https URL accepted without probing content",
			ref:  "https://cdn.example.com/this-need-not-exist",
			want: true,
		},
		{
			name: "inline payload at the floor accepted",
			ref:  inlineRef(10000),
			want: true,
		},
		{
			name: "inline payload below the floor rejected",
			ref:  inlineRef(9999),
			want: false,
		},
		{
			name: "inline payload above floor with bad padding rejected",
			ref:  inlineRef(10001),
			want: false,
		},
		{
			name: "inline payload without base64 marker rejected",
			ref:  "data:audio/mpeg," + strings.Repeat("A", 10000),
			want: false,
		},
		{
			name: "non-audio data URI rejected",
			ref:  "data:image/png;base64," + strings.Repeat("A", 10000),
			want: false,
		},
		{
			name: "arbitrary string rejected",
			ref:  "not-an-audio-reference",
			want: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, audio.ValidReference(testCase.ref))
		})
	}
}

func TestInlinePayload(t *testing.T) {
	t.Parallel()

	payload, ok := audio.InlinePayload("data:audio/wav;base64,AAAA")
	assert.True(t, ok)
	assert.Equal(t, "AAAA", payload)

	_, ok = audio.InlinePayload("https://cdn.example.com/audio/abc.mp3")
	assert.False(t, ok)

	_, ok = audio.InlinePayload("data:audio/wav,raw-payload")
	assert.False(t, ok)
}
