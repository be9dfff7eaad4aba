package srt

import (
	"regexp"
	"strings"
)

var musicTagPattern = regexp.MustCompile(`(?i)\[music\]`)

// entityReplacer undoes the HTML escaping the backend applies to
// transcript text. The double-escaped apostrophe must be handled before
// the plain ampersand.
var entityReplacer = strings.NewReplacer(
	"&amp;#39;", "'",
	"&#39;", "'",
	"&amp;", "&",
	"&quot;", `"`,
	"&lt;", "<",
	"&gt;", ">",
)

// DecodeEntities replaces the backend's HTML entity escapes with their
// literal characters.
func DecodeEntities(text string) string {
	return entityReplacer.Replace(text)
}

// StripMusicTags removes every case variant of the bracketed [Music]
// token and trims the result.
func StripMusicTags(text string) string {
	return strings.TrimSpace(musicTagPattern.ReplaceAllString(text, ""))
}
