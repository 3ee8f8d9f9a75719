package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Profile is the structured view of everything learned about a participant.
// It is owned and mutated by the conversational surface; the matching core
// reads it for alignment scoring and confidence classification.
type Profile struct {
	UserID                       string            `json:"user_id"`
	PersonalityTraits            []string          `json:"personality_traits"`
	Values                       []string          `json:"values"`
	Interests                    []string          `json:"interests"`
	RelationshipGoals            []string          `json:"relationship_goals"`
	CommunicationStyle           map[string]string `json:"communication_style"`
	DealBreakers                 []string          `json:"deal_breakers"`
	Preferences                  map[string]string `json:"preferences"`
	EmotionalIntelligenceMarkers []string          `json:"emotional_intelligence_markers"`
	ConversationCount            int               `json:"conversation_count"`
	ConfidenceScore              float64           `json:"confidence_score"`
}

// Update carries the incremental fields extracted from a conversation
// segment. Absent fields leave the profile untouched.
type Update struct {
	PersonalityTraits            []string          `mapstructure:"personality_traits"`
	Values                       []string          `mapstructure:"values"`
	Interests                    []string          `mapstructure:"interests"`
	RelationshipGoals            []string          `mapstructure:"relationship_goals"`
	CommunicationStyle           map[string]string `mapstructure:"communication_style"`
	DealBreakers                 []string          `mapstructure:"deal_breakers"`
	Preferences                  map[string]string `mapstructure:"preferences"`
	EmotionalIntelligenceMarkers []string          `mapstructure:"emotional_intelligence_markers"`
}

// completeness targets per field, used for the confidence score.
var confidenceWeights = []struct {
	weight float64
	target float64
	count  func(p *Profile) int
}{
	{0.2, 5, func(p *Profile) int { return len(p.PersonalityTraits) }},
	{0.25, 4, func(p *Profile) int { return len(p.Values) }},
	{0.15, 5, func(p *Profile) int { return len(p.Interests) }},
	{0.2, 2, func(p *Profile) int { return len(p.RelationshipGoals) }},
	{0.1, 4, func(p *Profile) int { return len(p.CommunicationStyle) }},
	{0.05, 2, func(p *Profile) int { return len(p.DealBreakers) }},
	{0.05, 3, func(p *Profile) int { return len(p.Preferences) }},
}

// New returns an empty profile for the given user.
func New(userID string) *Profile {
	return &Profile{
		UserID:             userID,
		CommunicationStyle: map[string]string{},
		Preferences:        map[string]string{},
	}
}

// DecodeUpdate converts a loosely shaped document (typically parsed oracle
// output) into a typed Update.
func DecodeUpdate(doc map[string]any) (*Update, error) {
	var update Update

	cfg := &mapstructure.DecoderConfig{
		Result:           &update,
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build update decoder: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode profile update: %w", err)
	}

	return &update, nil
}

// Merge folds the update into the profile. List fields are unioned keeping
// first-seen order, style and preference maps are overlaid, and the
// confidence score is recalculated.
func (p *Profile) Merge(update *Update) {
	if update == nil {
		return
	}

	p.PersonalityTraits = unionKeepOrder(p.PersonalityTraits, update.PersonalityTraits)
	p.Values = unionKeepOrder(p.Values, update.Values)
	p.Interests = unionKeepOrder(p.Interests, update.Interests)
	p.RelationshipGoals = unionKeepOrder(p.RelationshipGoals, update.RelationshipGoals)
	p.DealBreakers = unionKeepOrder(p.DealBreakers, update.DealBreakers)
	p.EmotionalIntelligenceMarkers = unionKeepOrder(p.EmotionalIntelligenceMarkers, update.EmotionalIntelligenceMarkers)

	if len(update.CommunicationStyle) > 0 {
		if p.CommunicationStyle == nil {
			p.CommunicationStyle = map[string]string{}
		}
		for k, v := range update.CommunicationStyle {
			p.CommunicationStyle[k] = v
		}
	}

	if len(update.Preferences) > 0 {
		if p.Preferences == nil {
			p.Preferences = map[string]string{}
		}
		for k, v := range update.Preferences {
			p.Preferences[k] = v
		}
	}

	p.RecalculateConfidence()
}

// RecalculateConfidence recomputes the completeness-based confidence score
// in [0,1]. Each field contributes its weight scaled by how close the field
// is to its completeness target.
func (p *Profile) RecalculateConfidence() {
	score := 0.0
	for _, w := range confidenceWeights {
		score += w.weight * math.Min(float64(w.count(p))/w.target, 1.0)
	}

	p.ConfidenceScore = math.Round(score*100) / 100
}

// Summary renders a short human-readable digest of the profile.
func (p *Profile) Summary() string {
	var parts []string

	if len(p.PersonalityTraits) > 0 {
		parts = append(parts, "Personality: "+strings.Join(head(p.PersonalityTraits, 5), ", "))
	}
	if len(p.Values) > 0 {
		parts = append(parts, "Values: "+strings.Join(head(p.Values, 4), ", "))
	}
	if len(p.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(head(p.Interests, 5), ", "))
	}
	if len(p.RelationshipGoals) > 0 {
		parts = append(parts, "Looking for: "+strings.Join(p.RelationshipGoals, ", "))
	}

	if len(parts) == 0 {
		return "Profile still building..."
	}

	return strings.Join(parts, "\n")
}

func unionKeepOrder(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item] = struct{}{}
	}

	for _, item := range incoming {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		existing = append(existing, item)
	}

	return existing
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
