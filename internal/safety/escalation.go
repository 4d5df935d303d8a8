package safety

// EscalationLevel orders how strongly a session should be escalated.
// Levels only ever rise during a session; the sole way down is Reset.
type EscalationLevel int

const (
	LevelNone EscalationLevel = iota
	LevelConcern
	LevelUrgent
	LevelEmergency
)

// String returns the wire name of the level.
func (l EscalationLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelConcern:
		return "concern"
	case LevelUrgent:
		return "urgent"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// ParseLevel converts a wire name back to a level.
func ParseLevel(s string) (EscalationLevel, bool) {
	switch s {
	case "none":
		return LevelNone, true
	case "concern":
		return LevelConcern, true
	case "urgent":
		return LevelUrgent, true
	case "emergency":
		return LevelEmergency, true
	}
	return LevelNone, false
}

// MaxLevel returns the higher of two levels.
func MaxLevel(a, b EscalationLevel) EscalationLevel {
	if a > b {
		return a
	}
	return b
}

// categoryFloor maps a risk category to the minimum level any session
// seeing it must reach.
var categoryFloor = map[RiskCategory]EscalationLevel{
	CategoryEmergency:      LevelEmergency,
	CategoryBodySafety:     LevelUrgent,
	CategoryStrangerDanger: LevelUrgent,
	CategoryOnlineSafety:   LevelConcern,
	CategoryBullying:       LevelConcern,
	CategoryNone:           LevelNone,
}

// FloorFor returns the minimum escalation level for a single category.
func FloorFor(c RiskCategory) EscalationLevel {
	return categoryFloor[c]
}

// LevelFromSignals computes the floor implied by a set of signals,
// taking the highest floor among them.
func LevelFromSignals(signals []RiskSignal) EscalationLevel {
	level := LevelNone
	for _, s := range signals {
		level = MaxLevel(level, categoryFloor[s.Category])
	}
	return level
}

// Decide joins the session's prior level with the floor implied by the
// current signals. The result never drops below prior, so escalation
// within a session is monotonic.
func Decide(prior EscalationLevel, signals []RiskSignal) EscalationLevel {
	return MaxLevel(prior, LevelFromSignals(signals))
}
