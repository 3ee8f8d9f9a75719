package agent

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/nikip0/matchsim/internal/profile"
	"github.com/nikip0/matchsim/internal/simulation"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string, _ int32) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testProfile() *profile.Profile {
	p := profile.New("user-a")
	p.Values = []string{"family", "honesty"}
	p.PersonalityTraits = []string{"curious"}
	return p
}

func longConversation(n int) []simulation.Turn {
	turns := make([]simulation.Turn, 0, n)
	for i := 0; i < n; i++ {
		speaker := simulation.SpeakerA
		if i%2 == 1 {
			speaker = simulation.SpeakerB
		}
		turns = append(turns, simulation.Turn{Index: i + 1, Speaker: speaker, Message: strings.Repeat("x", 3)})
	}
	return turns
}

func TestAgentRespondBuildsPersonaPrompt(t *testing.T) {
	stub := &stubGenerator{response: "  Sounds lovely!  "}
	a, err := New(testProfile(), stub, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := a.Respond(context.Background(), "Do you like hiking?", nil, "first_date_coffee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response != "Sounds lovely!" {
		t.Fatalf("expected trimmed response, got %q", response)
	}

	if !strings.Contains(stub.lastPrompt, `"family"`) {
		t.Fatal("prompt should embed the profile")
	}
	if !strings.Contains(stub.lastPrompt, "Scenario: first_date_coffee") {
		t.Fatal("prompt should name the scenario")
	}
	if !strings.Contains(stub.lastPrompt, "Do you like hiking?") {
		t.Fatal("prompt should include the message to answer")
	}
}

func TestAgentRespondCapsRecentContext(t *testing.T) {
	stub := &stubGenerator{response: "ok"}
	a, err := New(testProfile(), stub, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := a.Respond(context.Background(), "hm", longConversation(20), "daily_life"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the last six turns appear in the prompt context.
	if strings.Contains(stub.lastPrompt, `"turn": 14`) {
		t.Fatal("prompt contains turns older than the context cap")
	}
	for i := 15; i <= 20; i++ {
		if !strings.Contains(stub.lastPrompt, `"turn": `+strconv.Itoa(i)) {
			t.Fatalf("prompt missing recent turn %d", i)
		}
	}
}

func TestAgentRespondPropagatesProviderFailure(t *testing.T) {
	stub := &stubGenerator{err: errors.New("oracle down")}
	a, err := New(testProfile(), stub, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := a.Respond(context.Background(), "hi", nil, "humor_test"); err == nil {
		t.Fatal("expected provider failure to propagate")
	}
}

func TestNewAgentValidatesInputs(t *testing.T) {
	if _, err := New(nil, &stubGenerator{}, 0, zap.NewNop()); err == nil {
		t.Fatal("expected error for nil profile")
	}
	if _, err := New(testProfile(), nil, 0, zap.NewNop()); err == nil {
		t.Fatal("expected error for nil generator")
	}
}

func TestAnalyzerMergesExtractedUpdates(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"values": ["stability"],
		"interests": ["climbing"],
		"communication_style": {"humor_style": "dry"}
	}` + "\n```"}

	p := testProfile()
	analyzer := NewAnalyzer(stub, zap.NewNop())

	if err := analyzer.Analyze(context.Background(), p, "I love climbing and need stability", "That sounds grounding"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Values[len(p.Values)-1] != "stability" {
		t.Fatalf("expected merged value, got %v", p.Values)
	}
	if p.CommunicationStyle["humor_style"] != "dry" {
		t.Fatalf("expected style update, got %v", p.CommunicationStyle)
	}
	if p.ConfidenceScore == 0 {
		t.Fatal("expected confidence to be recalculated")
	}

	if !strings.Contains(stub.lastPrompt, "I love climbing and need stability") {
		t.Fatal("prompt should include the user message")
	}
}

func TestAnalyzerLeavesProfileUntouchedOnParseFailure(t *testing.T) {
	stub := &stubGenerator{response: "no structured data here"}
	p := testProfile()
	before := len(p.Values)

	analyzer := NewAnalyzer(stub, zap.NewNop())
	if err := analyzer.Analyze(context.Background(), p, "msg", "resp"); err == nil {
		t.Fatal("expected parse error")
	}

	if len(p.Values) != before {
		t.Fatal("profile changed despite parse failure")
	}
}
