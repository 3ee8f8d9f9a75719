package simulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Simulator drives one scenario to a complete alternating-turn transcript
// between two response providers.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator returns a simulator logging through the provided logger.
func NewSimulator(logger *zap.Logger) *Simulator {
	return &Simulator{logger: logger}
}

// Run produces the transcript for one simulation. The first provider opens
// every round by answering the previous message (the scenario opening on the
// first round); the second provider answers the first. Any provider error
// aborts the whole simulation without returning a partial transcript.
func (s *Simulator) Run(ctx context.Context, a, b ResponseProvider, scenario Scenario) ([]Turn, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("scenario %s: both response providers are required", scenario.ID)
	}

	conversation := make([]Turn, 0, scenario.Turns*2)
	previous := scenario.Opening

	for round := 0; round < scenario.Turns; round++ {
		responseA, err := a.Respond(ctx, previous, conversation, scenario.ID)
		if err != nil {
			return nil, fmt.Errorf("scenario %s round %d speaker %s: %w", scenario.ID, round+1, SpeakerA, err)
		}

		conversation = append(conversation, Turn{
			Index:   round*2 + 1,
			Speaker: SpeakerA,
			Message: responseA,
		})

		responseB, err := b.Respond(ctx, responseA, conversation, scenario.ID)
		if err != nil {
			return nil, fmt.Errorf("scenario %s round %d speaker %s: %w", scenario.ID, round+1, SpeakerB, err)
		}

		conversation = append(conversation, Turn{
			Index:   round*2 + 2,
			Speaker: SpeakerB,
			Message: responseB,
		})

		previous = responseB
	}

	s.logger.Debug("simulation transcript complete",
		zap.String("scenario", scenario.ID),
		zap.Int("turns", len(conversation)),
	)

	return conversation, nil
}
