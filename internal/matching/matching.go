// Package matching fuses simulated-conversation metrics with direct profile
// similarity into a single compatibility verdict.
package matching

import (
	"math"

	"github.com/nikip0/matchsim/internal/profile"
	"github.com/nikip0/matchsim/internal/simulation"
)

// Confidence labels on a compatibility result.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

const (
	maxAlignmentBonus = 15
	topStrengthCount  = 5
	topConcernCount   = 3
)

// dimensionWeights must sum to 1.00. Value alignment, emotional connection
// and long-term potential carry the most weight.
var dimensionWeights = map[string]float64{
	simulation.DimNaturalFlow:         0.10,
	simulation.DimValueAlignment:      0.20,
	simulation.DimEmotionalConnection: 0.18,
	simulation.DimConflictResolution:  0.12,
	simulation.DimHumorCompatibility:  0.10,
	simulation.DimConversationalDepth: 0.10,
	simulation.DimMutualEngagement:    0.08,
	simulation.DimLongTermPotential:   0.12,
}

// Result is the final compatibility verdict for one participant pair.
type Result struct {
	OverallScore          float64            `json:"overall_score"`
	Confidence            string             `json:"confidence"`
	SimulationCount       int                `json:"simulation_count"`
	Breakdown             map[string]float64 `json:"breakdown"`
	ProfileAlignmentBonus float64            `json:"profile_alignment_bonus"`
	TopStrengths          []string           `json:"top_strengths"`
	TopConcerns           []string           `json:"top_concerns"`
	Recommendation        string             `json:"recommendation"`
}

// Weights exposes the dimension weight table, mainly for tests and reports.
func Weights() map[string]float64 {
	out := make(map[string]float64, len(dimensionWeights))
	for k, v := range dimensionWeights {
		out[k] = v
	}
	return out
}

// Score computes the compatibility verdict from a batch of simulation
// results and the two profiles. An empty batch yields a degenerate
// low-confidence result rather than an error.
func Score(results []*simulation.Result, a, b *profile.Profile) *Result {
	if a == nil {
		a = profile.New("")
	}
	if b == nil {
		b = profile.New("")
	}

	breakdown := Aggregate(results)

	if len(results) == 0 {
		return &Result{
			OverallScore:   0,
			Confidence:     ConfidenceLow,
			Breakdown:      breakdown,
			TopStrengths:   []string{},
			TopConcerns:    []string{},
			Recommendation: recommendation(0, nil, nil),
		}
	}

	weighted := 0.0
	for _, dim := range simulation.Dimensions {
		weighted += breakdown[dim] * dimensionWeights[dim]
	}

	bonus := AlignmentBonus(a, b)
	finalScore := math.Min(100, round1(weighted*10+bonus))

	var strengths, concerns []string
	for _, result := range results {
		if result.Metrics == nil {
			continue
		}
		strengths = append(strengths, result.Metrics.Strengths...)
		concerns = append(concerns, result.Metrics.Concerns...)
	}

	topStrengths := topByFrequency(strengths, topStrengthCount)
	topConcerns := topByFrequency(concerns, topConcernCount)

	return &Result{
		OverallScore:          finalScore,
		Confidence:            classifyConfidence(len(results), a.ConfidenceScore, b.ConfidenceScore),
		SimulationCount:       len(results),
		Breakdown:             breakdown,
		ProfileAlignmentBonus: bonus,
		TopStrengths:          topStrengths,
		TopConcerns:           topConcerns,
		Recommendation:        recommendation(finalScore, topStrengths, topConcerns),
	}
}

// Aggregate averages every dimension across the results. The denominator is
// always the full result count; a record that omitted a dimension drags its
// average down instead of being excluded. An empty batch averages to zero
// everywhere.
func Aggregate(results []*simulation.Result) map[string]float64 {
	averages := make(map[string]float64, len(simulation.Dimensions))

	if len(results) == 0 {
		for _, dim := range simulation.Dimensions {
			averages[dim] = 0
		}
		return averages
	}

	for _, dim := range simulation.Dimensions {
		sum := 0.0
		for _, result := range results {
			if result.Metrics == nil {
				continue
			}
			sum += result.Metrics.Dimension(dim)
		}
		averages[dim] = round2(sum / float64(len(results)))
	}

	return averages
}

// AlignmentBonus scores profile overlap alone: Jaccard similarity on values
// and interests, capped goal overlap, and a penalty when A's deal breakers
// appear among B's values. The check is one-directional on purpose.
func AlignmentBonus(a, b *profile.Profile) float64 {
	score := 0.0

	valuesA, valuesB := toSet(a.Values), toSet(b.Values)
	if len(valuesA) > 0 && len(valuesB) > 0 {
		score += jaccard(valuesA, valuesB) * 5
	}

	interestsA, interestsB := toSet(a.Interests), toSet(b.Interests)
	if len(interestsA) > 0 && len(interestsB) > 0 {
		score += jaccard(interestsA, interestsB) * 4
	}

	goalsA, goalsB := toSet(a.RelationshipGoals), toSet(b.RelationshipGoals)
	if len(goalsA) > 0 && len(goalsB) > 0 {
		score += math.Min(float64(intersectionSize(goalsA, goalsB))*2, 4)
	}

	conflicting := intersectionSize(toSet(a.DealBreakers), valuesB)
	score -= float64(conflicting) * 1.5

	return math.Max(0, math.Min(maxAlignmentBonus, round1(score)))
}

// First matching rule wins: high requires a large batch and well-built
// profiles, medium a moderate one.
func classifyConfidence(simCount int, confA, confB float64) string {
	avg := (confA + confB) / 2

	switch {
	case simCount >= 80 && avg >= 0.7:
		return ConfidenceHigh
	case simCount >= 50 && avg >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func jaccard(a, b map[string]struct{}) float64 {
	union := len(a)
	for item := range b {
		if _, ok := a[item]; !ok {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersectionSize(a, b)) / float64(union)
}

func intersectionSize(a, b map[string]struct{}) int {
	n := 0
	for item := range a {
		if _, ok := b[item]; ok {
			n++
		}
	}
	return n
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
