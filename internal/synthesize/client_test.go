// Package synthesize_test tests the speech-synthesis client and its error
// classification.
package synthesize_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audio-description-service/internal/core"
	"github.com/book-expert/audio-description-service/internal/synthesize"
)

func TestSynthesize_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "/v1/generate/speech", request.URL.Path)

			var req synthesize.Request

			err := json.NewDecoder(request.Body).Decode(&req)
			require.NoError(t, err)
			assert.Equal(t, "A handcrafted ceramic mug.", req.Text)
			assert.Equal(t, "en", req.Language)
			assert.Equal(t, "voice-amber", req.Voice)
			assert.Equal(t, "user-1", req.UserID)

			responseWriter.Header().Set("Content-Type", "application/json")

			encodeErr := json.NewEncoder(responseWriter).Encode(synthesize.Response{
				AudioURL: "https://cdn.example.com/audio/abc.mp3",
				FileName: "abc.mp3",
			})
			require.NoError(t, encodeErr)
		},
	))
	defer server.Close()

	client := synthesize.NewClient(server.URL, 5*time.Second)

	audioRef, err := client.Synthesize(
		context.Background(), "A handcrafted ceramic mug.", "en", "voice-amber", "user-1",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/audio/abc.mp3", audioRef)
}

func TestSynthesize_EmptyTextRejected(t *testing.T) {
	t.Parallel()

	client := synthesize.NewClient("http://localhost:0", time.Second)

	_, err := client.Synthesize(context.Background(), "", "en", "voice-amber", "user-1")
	require.ErrorIs(t, err, synthesize.ErrTextEmpty)
}

func TestSynthesize_TimeoutClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, request *http.Request) {
			select {
			case <-request.Context().Done():
			case <-time.After(2 * time.Second):
				responseWriter.WriteHeader(http.StatusOK)
			}
		},
	))
	defer server.Close()

	client := synthesize.NewClient(server.URL, 50*time.Millisecond)

	_, err := client.Synthesize(context.Background(), "text", "en", "voice-amber", "user-1")
	require.Error(t, err)
	assert.Equal(t, core.ClassTimeout, core.ClassOf(err))
}

func TestSynthesize_UpstreamErrorClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, _ *http.Request) {
			responseWriter.Header().Set("Content-Type", "application/json")
			responseWriter.WriteHeader(http.StatusInternalServerError)

			err := json.NewEncoder(responseWriter).Encode(synthesize.ErrorResponse{
				Detail:    "synthesis backend unavailable",
				ErrorCode: "backend_down",
			})
			assert.NoError(t, err)
		},
	))
	defer server.Close()

	client := synthesize.NewClient(server.URL, time.Second)

	_, err := client.Synthesize(context.Background(), "text", "en", "voice-amber", "user-1")
	require.Error(t, err)
	assert.Equal(t, core.ClassUpstreamError, core.ClassOf(err))
	assert.Contains(t, err.Error(), "synthesis backend unavailable")
}

func TestSynthesize_MalformedResponseClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, _ *http.Request) {
			responseWriter.Header().Set("Content-Type", "application/json")

			_, err := responseWriter.Write([]byte("not json"))
			assert.NoError(t, err)
		},
	))
	defer server.Close()

	client := synthesize.NewClient(server.URL, time.Second)

	_, err := client.Synthesize(context.Background(), "text", "en", "voice-amber", "user-1")
	require.Error(t, err)
	assert.Equal(t, core.ClassUpstreamError, core.ClassOf(err))
}

func TestSynthesize_MissingAudioReferenceClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, _ *http.Request) {
			responseWriter.Header().Set("Content-Type", "application/json")

			err := json.NewEncoder(responseWriter).Encode(synthesize.Response{
				AudioURL: "",
				FileName: "abc.mp3",
			})
			assert.NoError(t, err)
		},
	))
	defer server.Close()

	client := synthesize.NewClient(server.URL, time.Second)

	_, err := client.Synthesize(context.Background(), "text", "en", "voice-amber", "user-1")
	require.Error(t, err)
	assert.Equal(t, core.ClassUpstreamError, core.ClassOf(err))
}

func TestSynthesize_NetworkErrorClassified(t *testing.T) {
	t.Parallel()

	// A server that is immediately closed guarantees a connection refusal.
	server := httptest.NewServer(http.HandlerFunc(
		func(http.ResponseWriter, *http.Request) {},
	))
	server.Close()

	client := synthesize.NewClient(server.URL, time.Second)

	_, err := client.Synthesize(context.Background(), "text", "en", "voice-amber", "user-1")
	require.Error(t, err)
	assert.Equal(t, core.ClassNetworkError, core.ClassOf(err))
}
