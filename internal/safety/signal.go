package safety

// RiskCategory labels the kind of risk detected in a child's message.
type RiskCategory string

const (
	CategoryNone           RiskCategory = "none"
	CategoryBodySafety     RiskCategory = "body_safety"
	CategoryStrangerDanger RiskCategory = "stranger_danger"
	CategoryOnlineSafety   RiskCategory = "online_safety"
	CategoryBullying       RiskCategory = "bullying"
	CategoryEmergency      RiskCategory = "emergency"
)

// Valid reports whether c is one of the known categories.
func (c RiskCategory) Valid() bool {
	switch c {
	case CategoryNone, CategoryBodySafety, CategoryStrangerDanger,
		CategoryOnlineSafety, CategoryBullying, CategoryEmergency:
		return true
	}
	return false
}

// RiskSignal is one detected risk in a message. Span is the byte range
// of the matched phrase in the original text, Matched the phrase itself.
type RiskSignal struct {
	Category   RiskCategory `json:"category"`
	Confidence float64      `json:"confidence"`
	Matched    string       `json:"matched,omitempty"`
	Span       [2]int       `json:"span,omitempty"`
}

// noSignal is the result for messages carrying no detectable risk.
func noSignal() []RiskSignal {
	return []RiskSignal{{Category: CategoryNone, Confidence: 1.0}}
}

// HasRisk reports whether the signal set contains anything beyond none.
func HasRisk(signals []RiskSignal) bool {
	for _, s := range signals {
		if s.Category != CategoryNone {
			return true
		}
	}
	return false
}
