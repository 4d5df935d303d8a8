package safety

import "testing"

func TestResolveAgeBand(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name string
		age  *int
		want AgeBand
	}{
		{"nil age", nil, BandUnknown},
		{"below range", intPtr(2), BandUnknown},
		{"early low edge", intPtr(3), BandEarly},
		{"early high edge", intPtr(6), BandEarly},
		{"middle", intPtr(8), BandMiddle},
		{"preteen", intPtr(12), BandPreteen},
		{"teen low edge", intPtr(15), BandTeen},
		{"teen high edge", intPtr(18), BandTeen},
		{"above range", intPtr(25), BandUnknown},
		{"negative", intPtr(-1), BandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAgeBand(tt.age); got != tt.want {
				t.Errorf("ResolveAgeBand() = %v, want %v", got, tt.want)
			}
		})
	}
}
