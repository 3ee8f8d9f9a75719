package simulation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/nikip0/matchsim/internal/ai"
	"github.com/nikip0/matchsim/internal/utils"
	"go.uber.org/zap"
)

//go:embed analysis_prompt.md
var analysisPromptTemplate string

const (
	analysisMaxOutputTokens = 800
	defaultMaxLogLength     = 200

	minScore = 0
	maxScore = 10
)

// Extractor turns a completed transcript into a structured quality record by
// asking the oracle for a rating and parsing its free-text reply.
type Extractor struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewExtractor returns an extractor backed by the given generator.
func NewExtractor(generator ai.Generator, maxLogLength int, logger *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Extract rates the transcript against the scenario's focus areas. A
// malformed or missing oracle reply never surfaces as an error: the fixed
// neutral record is returned instead so the enclosing batch keeps going.
func (e *Extractor) Extract(ctx context.Context, conversation []Turn, scenario Scenario) *Metrics {
	prompt := buildAnalysisPrompt(conversation, scenario)

	e.logger.Debug("analysis request",
		zap.String("scenario", scenario.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt, analysisMaxOutputTokens)
	if err != nil {
		e.logger.Warn("analysis request failed, using neutral metrics",
			zap.String("scenario", scenario.ID),
			zap.Error(err),
		)
		return NeutralMetrics()
	}

	e.logger.Debug("analysis response",
		zap.String("scenario", scenario.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	metrics, err := parseMetrics(raw)
	if err != nil {
		e.logger.Warn("analysis response unparseable, using neutral metrics",
			zap.String("scenario", scenario.ID),
			zap.Error(err),
		)
		return NeutralMetrics()
	}

	return metrics
}

// NeutralMetrics is the fixed fallback record substituted when the oracle
// reply cannot be parsed.
func NeutralMetrics() *Metrics {
	return &Metrics{
		NaturalFlow:         5,
		ValueAlignment:      5,
		EmotionalConnection: 5,
		ConflictResolution:  5,
		HumorCompatibility:  5,
		ConversationalDepth: 5,
		MutualEngagement:    5,
		LongTermPotential:   5,
		OverallScore:        5,
		Summary:             "Analysis unavailable",
		Strengths:           []string{},
		Concerns:            []string{"Analysis error occurred"},
	}
}

func buildAnalysisPrompt(conversation []Turn, scenario Scenario) string {
	lines := make([]string, 0, len(conversation))
	for _, turn := range conversation {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Message))
	}

	prompt := strings.ReplaceAll(analysisPromptTemplate, "{{SCENARIO}}", scenario.ID)
	prompt = strings.ReplaceAll(prompt, "{{FOCUS_AREAS}}", strings.Join(scenario.Focus, ", "))
	prompt = strings.ReplaceAll(prompt, "{{CONVERSATION}}", strings.Join(lines, "\n"))

	return prompt
}

func parseMetrics(raw string) (*Metrics, error) {
	var metrics Metrics
	if err := ai.UnmarshalLenient(raw, &metrics); err != nil {
		return nil, err
	}

	metrics.NaturalFlow = clampScore(metrics.NaturalFlow)
	metrics.ValueAlignment = clampScore(metrics.ValueAlignment)
	metrics.EmotionalConnection = clampScore(metrics.EmotionalConnection)
	metrics.ConflictResolution = clampScore(metrics.ConflictResolution)
	metrics.HumorCompatibility = clampScore(metrics.HumorCompatibility)
	metrics.ConversationalDepth = clampScore(metrics.ConversationalDepth)
	metrics.MutualEngagement = clampScore(metrics.MutualEngagement)
	metrics.LongTermPotential = clampScore(metrics.LongTermPotential)
	metrics.OverallScore = clampScore(metrics.OverallScore)

	return &metrics, nil
}

func clampScore(v float64) float64 {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
