package textutil

import "regexp"

var (
	urlIDPattern     = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\s]+)`)
	literalIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID pulls the video ID out of a single token. URL patterns
// (watch?v=, youtu.be/, embed/) are tried first; a token that matches
// none of them is accepted as a literal ID when it is exactly 11
// characters of [A-Za-z0-9_-]. The second return is false when neither
// branch matches.
func ExtractVideoID(token string) (string, bool) {
	if match := urlIDPattern.FindStringSubmatch(token); match != nil {
		return match[1], true
	}
	if literalIDPattern.MatchString(token) {
		return token, true
	}
	return "", false
}

// ExtractVideoIDs maps tokens to video IDs, skipping tokens no ID could
// be extracted from.
func ExtractVideoIDs(tokens []string) []string {
	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if id, ok := ExtractVideoID(token); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
