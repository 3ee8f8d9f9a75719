package ai

import "context"

// Generator is the single capability the matching core needs from the
// reasoning service. It is used both for per-turn utterance generation and
// for structured metric extraction.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, maxOutputTokens int32) (string, error)
}
