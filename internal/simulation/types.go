package simulation

import (
	"context"
	"time"
)

// Speaker tags for simulated transcripts. The first role always opens.
const (
	SpeakerA = "user_a"
	SpeakerB = "user_b"
)

// Turn is a single utterance inside a simulated conversation.
type Turn struct {
	Index   int    `json:"turn"`
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

// Metrics is the structured quality record produced by the analysis oracle
// for one simulated conversation. All scores live in [0,10]; a dimension the
// oracle omitted stays at zero and is averaged as such.
type Metrics struct {
	NaturalFlow         float64 `json:"natural_flow"`
	ValueAlignment      float64 `json:"value_alignment"`
	EmotionalConnection float64 `json:"emotional_connection"`
	ConflictResolution  float64 `json:"conflict_resolution"`
	HumorCompatibility  float64 `json:"humor_compatibility"`
	ConversationalDepth float64 `json:"conversational_depth"`
	MutualEngagement    float64 `json:"mutual_engagement"`
	LongTermPotential   float64 `json:"long_term_potential"`

	OverallScore float64  `json:"overall_score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Concerns     []string `json:"concerns"`
}

// Dimension names in rating order.
const (
	DimNaturalFlow         = "natural_flow"
	DimValueAlignment      = "value_alignment"
	DimEmotionalConnection = "emotional_connection"
	DimConflictResolution  = "conflict_resolution"
	DimHumorCompatibility  = "humor_compatibility"
	DimConversationalDepth = "conversational_depth"
	DimMutualEngagement    = "mutual_engagement"
	DimLongTermPotential   = "long_term_potential"
)

// Dimensions lists the eight rated dimensions in their canonical order.
var Dimensions = []string{
	DimNaturalFlow,
	DimValueAlignment,
	DimEmotionalConnection,
	DimConflictResolution,
	DimHumorCompatibility,
	DimConversationalDepth,
	DimMutualEngagement,
	DimLongTermPotential,
}

// Dimension returns the score stored under the given dimension name.
func (m *Metrics) Dimension(name string) float64 {
	switch name {
	case DimNaturalFlow:
		return m.NaturalFlow
	case DimValueAlignment:
		return m.ValueAlignment
	case DimEmotionalConnection:
		return m.EmotionalConnection
	case DimConflictResolution:
		return m.ConflictResolution
	case DimHumorCompatibility:
		return m.HumorCompatibility
	case DimConversationalDepth:
		return m.ConversationalDepth
	case DimMutualEngagement:
		return m.MutualEngagement
	case DimLongTermPotential:
		return m.LongTermPotential
	default:
		return 0
	}
}

// Result is one completed simulation: the transcript and its quality record.
type Result struct {
	ID           string    `json:"id"`
	Scenario     string    `json:"scenario"`
	Conversation []Turn    `json:"conversation"`
	Metrics      *Metrics  `json:"metrics"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResponseProvider produces one participant's utterance in a simulated
// conversation. A failing provider aborts the enclosing simulation.
type ResponseProvider interface {
	Respond(ctx context.Context, previous string, conversation []Turn, scenarioID string) (string, error)
}
