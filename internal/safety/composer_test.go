package safety

import (
	"strings"
	"testing"
)

func TestComposeTone(t *testing.T) {
	tests := []struct {
		level EscalationLevel
		want  Tone
	}{
		{LevelNone, ToneFriendly},
		{LevelConcern, ToneWarm},
		{LevelUrgent, ToneSeriousSupportive},
		{LevelEmergency, ToneUrgentCalm},
	}
	for _, tt := range tests {
		d := Compose(SessionState{Level: tt.level, AgeBand: BandMiddle})
		if d.Tone != tt.want {
			t.Errorf("Compose(level=%s).Tone = %s, want %s", tt.level, d.Tone, tt.want)
		}
	}
}

func TestComposeRequiredPhrases(t *testing.T) {
	d := Compose(SessionState{Level: LevelUrgent, AgeBand: BandMiddle})
	found := false
	for _, p := range d.RequiredPhrases {
		if strings.Contains(p, "trusted adult") {
			found = true
		}
	}
	if !found {
		t.Errorf("urgent directive lacks trusted adult phrase: %v", d.RequiredPhrases)
	}

	d = Compose(SessionState{Level: LevelEmergency, AgeBand: BandMiddle})
	found = false
	for _, p := range d.RequiredPhrases {
		if strings.Contains(p, "emergency number") {
			found = true
		}
	}
	if !found {
		t.Errorf("emergency directive lacks emergency number phrase: %v", d.RequiredPhrases)
	}

	d = Compose(SessionState{Level: LevelNone, AgeBand: BandMiddle})
	if len(d.RequiredPhrases) != 0 {
		t.Errorf("calm directive has required phrases: %v", d.RequiredPhrases)
	}
}

func TestComposeUnknownBandIsMostProtective(t *testing.T) {
	unknown := Compose(SessionState{Level: LevelNone, AgeBand: BandUnknown})
	early := Compose(SessionState{Level: LevelNone, AgeBand: BandEarly})
	if unknown.MaxSentenceWords != early.MaxSentenceWords {
		t.Errorf("unknown band word limit %d differs from early band %d",
			unknown.MaxSentenceWords, early.MaxSentenceWords)
	}

	teen := Compose(SessionState{Level: LevelNone, AgeBand: BandTeen})
	if teen.MaxSentenceWords <= unknown.MaxSentenceWords {
		t.Errorf("teen limit %d not looser than unknown limit %d",
			teen.MaxSentenceWords, unknown.MaxSentenceWords)
	}

	// A zero-value band must never loosen the limits either.
	zero := Compose(SessionState{Level: LevelNone})
	if zero.MaxSentenceWords != early.MaxSentenceWords {
		t.Errorf("zero band word limit %d differs from early band %d",
			zero.MaxSentenceWords, early.MaxSentenceWords)
	}
}

func TestComposeAlwaysForbidsTopics(t *testing.T) {
	for _, level := range []EscalationLevel{LevelNone, LevelConcern, LevelUrgent, LevelEmergency} {
		d := Compose(SessionState{Level: level, AgeBand: BandMiddle})
		if len(d.ForbiddenTopics) == 0 {
			t.Errorf("level %s directive has no forbidden topics", level)
		}
	}
}

func TestComposeEmergencyForbidsSmallTalk(t *testing.T) {
	forbids := func(d ResponseDirective) bool {
		for _, topic := range d.ForbiddenTopics {
			if strings.Contains(topic, "small talk") {
				return true
			}
		}
		return false
	}

	emergency := Compose(SessionState{Level: LevelEmergency, AgeBand: BandMiddle})
	if !forbids(emergency) {
		t.Errorf("emergency directive allows small talk: %v", emergency.ForbiddenTopics)
	}

	urgent := Compose(SessionState{Level: LevelUrgent, AgeBand: BandMiddle})
	if forbids(urgent) {
		t.Errorf("urgent directive forbids small talk: %v", urgent.ForbiddenTopics)
	}
	if len(urgent.ForbiddenTopics) != len(forbiddenTopics) {
		t.Errorf("base forbidden list changed under urgent: %v", urgent.ForbiddenTopics)
	}
}

func TestSystemPromptDeterministic(t *testing.T) {
	state := SessionState{Level: LevelUrgent, AgeBand: BandPreteen}
	first := Compose(state).SystemPrompt()
	for i := 0; i < 5; i++ {
		if got := Compose(state).SystemPrompt(); got != first {
			t.Fatal("SystemPrompt output varies for the same state")
		}
	}
	if !strings.Contains(first, "urgent") {
		t.Errorf("prompt does not state the level: %q", first)
	}
	if !strings.Contains(first, "Never include:") {
		t.Errorf("prompt does not list forbidden topics: %q", first)
	}
}
