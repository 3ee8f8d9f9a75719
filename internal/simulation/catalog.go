package simulation

// Scenario is a fixed interaction template structuring one simulated
// conversation.
type Scenario struct {
	ID      string   `json:"id"`
	Opening string   `json:"opening"`
	Turns   int      `json:"turns"`
	Focus   []string `json:"focus"`
}

// Allocation is the number of simulation slots assigned to one scenario.
type Allocation struct {
	Scenario Scenario
	Count    int
}

// catalog holds the fixed scenario set. Iteration order is significant: the
// distributor hands extra slots to the earliest scenarios.
var catalog = []Scenario{
	{
		ID:      "first_date_coffee",
		Opening: "You're both at a cozy coffee shop for a first date. The atmosphere is relaxed and comfortable. Start the conversation naturally.",
		Turns:   15,
		Focus:   []string{"chemistry", "conversation_flow", "initial_attraction"},
	},
	{
		ID:      "values_discussion",
		Opening: "You're having a deeper conversation about what matters most to you in life and relationships. Be authentic and open.",
		Turns:   20,
		Focus:   []string{"value_alignment", "depth", "authenticity"},
	},
	{
		ID:      "conflict_scenario",
		Opening: "You're discussing where to live - one prefers the city for career opportunities, the other prefers suburbs for space and quiet. Navigate this difference.",
		Turns:   15,
		Focus:   []string{"conflict_resolution", "respect", "compromise"},
	},
	{
		ID:      "future_planning",
		Opening: "You're talking about where you each see yourselves in 5 years - career, lifestyle, relationship goals.",
		Turns:   15,
		Focus:   []string{"goal_alignment", "compatibility", "ambition"},
	},
	{
		ID:      "stress_handling",
		Opening: "One of you just had a terrible day at work - everything went wrong. The other is there to listen and support.",
		Turns:   12,
		Focus:   []string{"emotional_support", "empathy", "reliability"},
	},
	{
		ID:      "humor_test",
		Opening: "You're both in a playful mood. Share jokes, funny stories, or just banter. See if your humor clicks.",
		Turns:   12,
		Focus:   []string{"humor_compatibility", "playfulness", "wit"},
	},
	{
		ID:      "vulnerability",
		Opening: "You're sharing something you've struggled with - being emotionally open and vulnerable with each other.",
		Turns:   18,
		Focus:   []string{"emotional_depth", "vulnerability", "trust"},
	},
	{
		ID:      "daily_life",
		Opening: "You're discussing your typical weekday and weekend routines - how you spend your time, what a normal day looks like.",
		Turns:   12,
		Focus:   []string{"lifestyle_compatibility", "practical_alignment", "routine"},
	},
	{
		ID:      "adventure_planning",
		Opening: "You're planning a weekend trip together. Discuss what kind of activities and experiences you'd want to have.",
		Turns:   14,
		Focus:   []string{"adventure_compatibility", "planning_style", "interests"},
	},
	{
		ID:      "intellectual_discussion",
		Opening: "You're having a stimulating conversation about a topic you both find interesting - current events, philosophy, or a shared interest.",
		Turns:   16,
		Focus:   []string{"intellectual_compatibility", "curiosity", "engagement"},
	},
}

// Scenarios returns the catalog in its fixed order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(catalog))
	copy(out, catalog)
	return out
}

// Distribute splits the requested simulation total across the catalog. Each
// scenario gets total/len(catalog) slots and the first total%len(catalog)
// scenarios get one extra, so the counts always sum to total.
func Distribute(total int) []Allocation {
	if total < 0 {
		total = 0
	}

	base := total / len(catalog)
	extra := total % len(catalog)

	allocations := make([]Allocation, 0, len(catalog))
	for i, scenario := range catalog {
		count := base
		if i < extra {
			count++
		}
		allocations = append(allocations, Allocation{Scenario: scenario, Count: count})
	}

	return allocations
}
