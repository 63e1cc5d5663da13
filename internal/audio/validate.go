// Package audio validates audio references returned by the speech-synthesis
// service before they are trusted as usable results.
package audio

import "strings"

const (
	httpPrefix      = "http://"
	httpsPrefix     = "https://"
	dataAudioPrefix = "data:audio/"
	base64Marker    = "base64,"

	// minInlinePayloadChars is the smallest inline base64 payload accepted.
	// Payloads below this floor have empirically been truncated or corrupt
	// encodings from the synthesis service. This is a pragmatic heuristic,
	// not an audio-format guarantee.
	minInlinePayloadChars = 10000
)

// ValidReference reports whether an audio reference is well-formed and
// non-trivial. External URLs are accepted without being dereferenced; inline
// data:audio payloads must carry a base64 body of at least
// minInlinePayloadChars characters with valid base64 padding. Anything else
// is rejected.
func ValidReference(ref string) bool {
	if ref == "" {
		return false
	}

	if strings.HasPrefix(ref, httpPrefix) || strings.HasPrefix(ref, httpsPrefix) {
		return true
	}

	if strings.HasPrefix(ref, dataAudioPrefix) && strings.Contains(ref, base64Marker) {
		_, payload, _ := strings.Cut(ref, base64Marker)

		return len(payload) >= minInlinePayloadChars && len(payload)%4 == 0
	}

	return false
}

// InlinePayload extracts the base64 body of an inline data:audio reference.
// The second return value is false when the reference is not an inline
// payload.
func InlinePayload(ref string) (string, bool) {
	if !strings.HasPrefix(ref, dataAudioPrefix) {
		return "", false
	}

	_, payload, found := strings.Cut(ref, base64Marker)
	if !found {
		return "", false
	}

	return payload, true
}
