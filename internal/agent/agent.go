// Package agent builds the per-participant response provider: a persona
// driven by the participant's profile and backed by the generation oracle.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/nikip0/matchsim/internal/ai"
	"github.com/nikip0/matchsim/internal/profile"
	"github.com/nikip0/matchsim/internal/simulation"
	"github.com/nikip0/matchsim/internal/utils"
	"go.uber.org/zap"
)

//go:embed persona_prompt.md
var personaPromptTemplate string

const (
	// The persona only ever sees the tail of the conversation.
	recentContextTurns = 6

	responseMaxOutputTokens = 300
	defaultMaxLogLength     = 200
)

// Agent represents one participant inside simulated conversations.
type Agent struct {
	userID    string
	profile   *profile.Profile
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// New returns an agent answering as the given profile.
func New(p *profile.Profile, generator ai.Generator, maxLogLength int, logger *zap.Logger) (*Agent, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Agent{
		userID:    p.UserID,
		profile:   p,
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

// UserID returns the participant id this agent answers for.
func (a *Agent) UserID() string {
	return a.userID
}

// Respond produces the participant's next utterance. The previous message is
// what the agent answers; the conversation supplies context, capped to the
// most recent turns.
func (a *Agent) Respond(ctx context.Context, previous string, conversation []simulation.Turn, scenarioID string) (string, error) {
	prompt, err := a.buildPersonaPrompt(previous, conversation, scenarioID)
	if err != nil {
		return "", err
	}

	a.logger.Debug("persona request",
		zap.String("user_id", a.userID),
		zap.String("scenario", scenarioID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	response, err := a.generator.GenerateContent(ctx, prompt, responseMaxOutputTokens)
	if err != nil {
		return "", fmt.Errorf("agent %s response: %w", a.userID, err)
	}

	return strings.TrimSpace(response), nil
}

func (a *Agent) buildPersonaPrompt(previous string, conversation []simulation.Turn, scenarioID string) (string, error) {
	profileJSON, err := json.MarshalIndent(a.profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	recent := conversation
	if len(recent) > recentContextTurns {
		recent = recent[len(recent)-recentContextTurns:]
	}

	contextJSON, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal recent context: %w", err)
	}

	prompt := strings.ReplaceAll(personaPromptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{SCENARIO}}", scenarioID)
	prompt = strings.ReplaceAll(prompt, "{{RECENT_CONTEXT}}", string(contextJSON))
	prompt = strings.ReplaceAll(prompt, "{{LAST_MESSAGE}}", previous)

	return prompt, nil
}
