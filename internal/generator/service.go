package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"vortcheno/internal/util"
)

// Service is the generation service: it validates the requested length,
// invokes the generator once, and defensively parses and normalizes the
// result. Rate limiting sits in front of it as HTTP middleware.
type Service struct {
	gen    Generator
	minLen int
	maxLen int
}

func NewService(gen Generator, minLen, maxLen int) *Service {
	return &Service{gen: gen, minLen: minLen, maxLen: maxLen}
}

func (s *Service) Bounds() (int, int) {
	return s.minLen, s.maxLen
}

// Generate produces a chain of exactly `length` uppercase words, or an
// error from the taxonomy in errors.go. The generator is never called
// for an out-of-bounds length, and never retried on failure.
func (s *Service) Generate(ctx context.Context, length int) ([]string, error) {
	if length < s.minLen || length > s.maxLen {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrLengthOutOfBounds, length, s.minLen, s.maxLen)
	}

	raw, err := s.gen.Complete(ctx, chainInstructions(length))
	if err != nil {
		util.LogWarn("Generator call failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	words, ok := ParseChain(raw, length)
	if !ok {
		util.LogWarn("Generator output unparsable (%d bytes)", len(raw))
		return nil, ErrUnparsableChain
	}

	if len(words) != length {
		return nil, fmt.Errorf("%w: got %d words, want %d", ErrBadChain, len(words), length)
	}

	normalized := lo.Map(words, func(w string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(w))
	})
	if lo.SomeBy(normalized, func(w string) bool { return w == "" }) {
		return nil, fmt.Errorf("%w: empty word in chain", ErrBadChain)
	}

	return normalized, nil
}

// chainInstructions embeds the exact length and the adjacency-phrase
// rule into the generator prompt.
func chainInstructions(length int) string {
	return fmt.Sprintf(
		"Generate a chain of exactly %d English words where every adjacent pair "+
			"forms a common two-word phrase or compound word. Each interior word must "+
			"form a phrase with both its neighbors. Respond with only a JSON array of "+
			"%d uppercase words, for example [\"GOOD\",\"TIME\",\"OUT\"].",
		length, length)
}
