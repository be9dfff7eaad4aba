package textutil

import (
	"regexp"
	"strings"
)

var delimiterPattern = regexp.MustCompile(`[\s,\t]+`)

// Tokenize splits raw input on any run of whitespace, comma or tab
// characters, trims each token and drops empty ones. Re-tokenizing the
// Join of a previous result yields the same sequence.
func Tokenize(raw string) []string {
	parts := delimiterPattern.Split(raw, -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Join renders tokens in the canonical comma-space form shown back to
// the operator after formatting.
func Join(tokens []string) string {
	return strings.Join(tokens, ", ")
}
