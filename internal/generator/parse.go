package generator

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var (
	arrayPattern = regexp.MustCompile(`\[[^\[\]]*\]`)
	tokenPattern = regexp.MustCompile(`[A-Za-z]{2,}`)
)

// ParseChain extracts a word sequence from untrusted generator text.
// Strategies are tried in order, each total; first success wins.
func ParseChain(raw string, length int) ([]string, bool) {
	if words, ok := parseDirect(raw); ok {
		return words, true
	}
	if words, ok := parseEmbeddedArray(raw); ok {
		return words, true
	}
	return parseBareTokens(raw, length)
}

// parseDirect treats the whole response as a JSON string array.
func parseDirect(raw string) ([]string, bool) {
	var words []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &words); err != nil {
		return nil, false
	}
	return words, true
}

// parseEmbeddedArray locates the first bracketed substring and parses it,
// for responses that wrap the array in prose or code fences.
func parseEmbeddedArray(raw string) ([]string, bool) {
	match := arrayPattern.FindString(raw)
	if match == "" {
		return nil, false
	}
	var words []string
	if err := json.Unmarshal([]byte(match), &words); err != nil {
		return nil, false
	}
	return words, true
}

// parseBareTokens falls back to plain word tokens, taking the first
// `length` of them when at least that many are present.
func parseBareTokens(raw string, length int) ([]string, bool) {
	tokens := tokenPattern.FindAllString(raw, -1)
	if len(tokens) < length {
		return nil, false
	}
	return lo.Subset(tokens, 0, uint(length)), true
}
