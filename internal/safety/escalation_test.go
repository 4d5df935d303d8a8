package safety

import "testing"

func TestLevelOrdering(t *testing.T) {
	if !(LevelNone < LevelConcern && LevelConcern < LevelUrgent && LevelUrgent < LevelEmergency) {
		t.Fatal("escalation levels are not strictly ordered")
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range []EscalationLevel{LevelNone, LevelConcern, LevelUrgent, LevelEmergency} {
		got, ok := ParseLevel(l.String())
		if !ok || got != l {
			t.Errorf("ParseLevel(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Error("ParseLevel accepted an unknown name")
	}
}

func TestFloorFor(t *testing.T) {
	tests := []struct {
		category RiskCategory
		want     EscalationLevel
	}{
		{CategoryEmergency, LevelEmergency},
		{CategoryBodySafety, LevelUrgent},
		{CategoryStrangerDanger, LevelUrgent},
		{CategoryOnlineSafety, LevelConcern},
		{CategoryBullying, LevelConcern},
		{CategoryNone, LevelNone},
	}
	for _, tt := range tests {
		if got := FloorFor(tt.category); got != tt.want {
			t.Errorf("FloorFor(%s) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		prior   EscalationLevel
		signals []RiskSignal
		want    EscalationLevel
	}{
		{
			name:    "no signals keeps prior",
			prior:   LevelUrgent,
			signals: noSignal(),
			want:    LevelUrgent,
		},
		{
			name:    "signal raises level",
			prior:   LevelNone,
			signals: []RiskSignal{{Category: CategoryBodySafety, Confidence: 0.9}},
			want:    LevelUrgent,
		},
		{
			name:    "lower floor never downgrades",
			prior:   LevelEmergency,
			signals: []RiskSignal{{Category: CategoryBullying, Confidence: 0.7}},
			want:    LevelEmergency,
		},
		{
			name:  "highest floor among signals wins",
			prior: LevelNone,
			signals: []RiskSignal{
				{Category: CategoryBullying, Confidence: 0.6},
				{Category: CategoryEmergency, Confidence: 0.8},
			},
			want: LevelEmergency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.prior, tt.signals); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}
