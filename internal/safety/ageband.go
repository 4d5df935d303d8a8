package safety

// AgeBand groups children into developmental bands that drive the
// vocabulary and tone of composed responses.
type AgeBand string

const (
	BandEarly   AgeBand = "early"   // 3-6
	BandMiddle  AgeBand = "middle"  // 7-10
	BandPreteen AgeBand = "preteen" // 11-14
	BandTeen    AgeBand = "teen"    // 15-18
	BandUnknown AgeBand = "unknown"
)

// ResolveAgeBand maps a reported age to its band. A nil or out-of-range
// age resolves to BandUnknown, which downstream consumers treat as the
// most protective band.
func ResolveAgeBand(age *int) AgeBand {
	if age == nil {
		return BandUnknown
	}
	switch a := *age; {
	case a >= 3 && a <= 6:
		return BandEarly
	case a >= 7 && a <= 10:
		return BandMiddle
	case a >= 11 && a <= 14:
		return BandPreteen
	case a >= 15 && a <= 18:
		return BandTeen
	default:
		return BandUnknown
	}
}
