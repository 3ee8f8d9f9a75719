package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/nikip0/matchsim/internal/ai"
	"github.com/nikip0/matchsim/internal/profile"
	"go.uber.org/zap"
)

//go:embed analyzer_prompt.md
var analyzerPromptTemplate string

const analyzerMaxOutputTokens = 800

// Analyzer extracts profile updates from conversation segments. It belongs
// to the chat surface that builds profiles between matching runs.
type Analyzer struct {
	generator ai.Generator
	logger    *zap.Logger
}

// NewAnalyzer returns an analyzer backed by the given generator.
func NewAnalyzer(generator ai.Generator, logger *zap.Logger) *Analyzer {
	return &Analyzer{generator: generator, logger: logger}
}

// Analyze asks the oracle for new profile facts in the latest exchange and
// folds them into the profile. An unparseable reply leaves the profile
// untouched and returns the parse error for observability.
func (an *Analyzer) Analyze(ctx context.Context, p *profile.Profile, userMessage, agentResponse string) error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	prompt := strings.ReplaceAll(analyzerPromptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{USER_MESSAGE}}", userMessage)
	prompt = strings.ReplaceAll(prompt, "{{AGENT_RESPONSE}}", agentResponse)

	raw, err := an.generator.GenerateContent(ctx, prompt, analyzerMaxOutputTokens)
	if err != nil {
		return fmt.Errorf("profile analysis: %w", err)
	}

	var doc map[string]any
	if err := ai.UnmarshalLenient(raw, &doc); err != nil {
		an.logger.Warn("profile analysis reply unparseable",
			zap.String("user_id", p.UserID),
			zap.Error(err),
		)
		return err
	}

	update, err := profile.DecodeUpdate(doc)
	if err != nil {
		return err
	}

	p.Merge(update)

	an.logger.Debug("profile updated from conversation",
		zap.String("user_id", p.UserID),
		zap.Float64("confidence_score", p.ConfidenceScore),
	)

	return nil
}
