package simulation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

type scriptedProvider struct {
	name     string
	failAt   int
	calls    int
	prompts  []string
	contexts [][]Turn
}

func (p *scriptedProvider) Respond(_ context.Context, previous string, conversation []Turn, _ string) (string, error) {
	p.calls++
	p.prompts = append(p.prompts, previous)

	snapshot := make([]Turn, len(conversation))
	copy(snapshot, conversation)
	p.contexts = append(p.contexts, snapshot)

	if p.failAt > 0 && p.calls >= p.failAt {
		return "", errors.New("provider unavailable")
	}
	return fmt.Sprintf("%s-%d", p.name, p.calls), nil
}

func testScenario(turns int) Scenario {
	return Scenario{
		ID:      "test_scenario",
		Opening: "opening line",
		Turns:   turns,
		Focus:   []string{"chemistry"},
	}
}

func TestSimulatorProducesAlternatingTranscript(t *testing.T) {
	a := &scriptedProvider{name: "a"}
	b := &scriptedProvider{name: "b"}

	conversation, err := NewSimulator(zap.NewNop()).Run(context.Background(), a, b, testScenario(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(conversation) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(conversation))
	}

	for i, turn := range conversation {
		if turn.Index != i+1 {
			t.Fatalf("turn %d has index %d", i, turn.Index)
		}

		want := SpeakerA
		if i%2 == 1 {
			want = SpeakerB
		}
		if turn.Speaker != want {
			t.Fatalf("turn %d: expected speaker %s, got %s", i, want, turn.Speaker)
		}
	}
}

func TestSimulatorThreadsMessages(t *testing.T) {
	a := &scriptedProvider{name: "a"}
	b := &scriptedProvider{name: "b"}

	if _, err := NewSimulator(zap.NewNop()).Run(context.Background(), a, b, testScenario(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A opens every round: the scenario opening first, then B's last reply.
	if a.prompts[0] != "opening line" {
		t.Fatalf("first prompt to A should be the opening, got %q", a.prompts[0])
	}
	if a.prompts[1] != "b-1" {
		t.Fatalf("second prompt to A should be B's reply, got %q", a.prompts[1])
	}

	// B always answers A's most recent utterance.
	for i, prompt := range b.prompts {
		want := fmt.Sprintf("a-%d", i+1)
		if prompt != want {
			t.Fatalf("prompt %d to B: expected %q, got %q", i, want, prompt)
		}
	}

	// B sees the transcript including A's pending turn.
	if len(b.contexts[0]) != 1 || b.contexts[0][0].Speaker != SpeakerA {
		t.Fatalf("unexpected context for B's first call: %+v", b.contexts[0])
	}
}

func TestSimulatorProviderFailureReturnsNoPartialTranscript(t *testing.T) {
	a := &scriptedProvider{name: "a"}
	b := &scriptedProvider{name: "b", failAt: 2}

	conversation, err := NewSimulator(zap.NewNop()).Run(context.Background(), a, b, testScenario(5))
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
	if conversation != nil {
		t.Fatalf("expected no partial transcript, got %d turns", len(conversation))
	}
}

func TestSimulatorRequiresProviders(t *testing.T) {
	if _, err := NewSimulator(zap.NewNop()).Run(context.Background(), nil, &scriptedProvider{}, testScenario(1)); err == nil {
		t.Fatal("expected error for missing provider")
	}
}
