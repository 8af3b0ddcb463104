// Package youtube extracts video IDs from YouTube URLs and builds
// playback URLs for them.
package youtube

import "regexp"

// IDLength is the fixed length of a YouTube video ID.
const IDLength = 11

// videoIDPattern matches the known YouTube URL shapes:
// youtube.com/watch?v=, youtube.com/embed/, youtube.com/v/ and youtu.be/.
// The capture group is the 11-character video ID.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// ExtractVideoID pulls the video ID out of an arbitrary URL string.
// Returns the ID and true on a match, or "" and false when the URL is
// not a recognizable YouTube link. Never returns a partial ID.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL builds the embeddable playback URL for a video ID.
// Deterministic: the same ID always produces the same URL. The
// parameters start playback muted and looping with player chrome off.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID +
		"?autoplay=1&mute=1&controls=0&loop=1&playlist=" + videoID
}

// WatchURL builds the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
