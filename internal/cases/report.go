package cases

import "time"

// AnalysisReport is the aggregated output of one analysis run. It is owned by
// its case and replaced wholesale on re-analysis, never partially mutated.
type AnalysisReport struct {
	Summary         Summary        `json:"summary"`
	Risks           []RiskItem     `json:"risks"`
	Suggestions     []Suggestion   `json:"suggestions"`
	CategoryInsight map[string]any `json:"categoryInsight"`
	Compliance      map[string]any `json:"compliance"`
	Degraded        bool           `json:"degraded"`
	Provider        string         `json:"provider,omitempty"`
	Model           string         `json:"model,omitempty"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

// Summary is the summary-pass sub-object.
type Summary struct {
	ExecutiveSummary string   `json:"executiveSummary"`
	KeyTerms         []string `json:"keyTerms"`
	CriticalDates    []string `json:"criticalDates"`
	Obligations      []string `json:"obligations"`
}

// RiskItem is one finding from the risk-assessment pass. Severity is clamped
// to [1,5] and confidence to [0,1] after parsing.
type RiskItem struct {
	Category    string   `json:"category"`
	Severity    int      `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Rationale   string   `json:"rationale"`
	Mitigations []string `json:"mitigations"`
}

// Suggestion types.
const (
	SuggestionBalanced  = "balanced"
	SuggestionFavorable = "favorable"
)

// Suggestion is one improvement proposal from the suggestion pass.
type Suggestion struct {
	Type            string   `json:"type"`
	OriginalText    string   `json:"originalText,omitempty"`
	SuggestedText   string   `json:"suggestedText"`
	Rationale       string   `json:"rationale"`
	NegotiationTips []string `json:"negotiationTips"`
}
