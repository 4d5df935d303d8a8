package safety

import (
	"fmt"
	"strings"
)

// Tone instructs the language model how a reply should sound.
type Tone string

const (
	ToneFriendly          Tone = "friendly"
	ToneWarm              Tone = "warm"
	ToneSeriousSupportive Tone = "serious_supportive"
	ToneUrgentCalm        Tone = "urgent_calm"
)

// ResponseDirective tells the language model how to answer a child
// given the session's escalation level and age band. It carries no
// free text from the child; only derived constraints.
type ResponseDirective struct {
	Level            EscalationLevel `json:"level"`
	Tone             Tone            `json:"tone"`
	AgeBand          AgeBand         `json:"age_band"`
	MaxSentenceWords int             `json:"max_sentence_words"`
	RequiredPhrases  []string        `json:"required_phrases,omitempty"`
	ForbiddenTopics  []string        `json:"forbidden_topics"`
	Guidance         []string        `json:"guidance,omitempty"`
}

// toneFor maps escalation levels to reply tones.
func toneFor(level EscalationLevel) Tone {
	switch level {
	case LevelConcern:
		return ToneWarm
	case LevelUrgent:
		return ToneSeriousSupportive
	case LevelEmergency:
		return ToneUrgentCalm
	default:
		return ToneFriendly
	}
}

// forbiddenTopics apply at every level; emergency adds to them. Order
// is fixed so the composed prompt is deterministic.
var forbiddenTopics = []string{
	"graphic or frightening detail",
	"blaming the child",
	"adult relationship topics",
	"requests for personal identifying information",
}

// Compose builds the directive for a session state. The same state
// always yields the same directive.
func Compose(state SessionState) ResponseDirective {
	d := ResponseDirective{
		Level:           state.Level,
		Tone:            toneFor(state.Level),
		AgeBand:         state.AgeBand,
		ForbiddenTopics: forbiddenTopics,
	}

	// Any band that is not positively recognized, including the zero
	// value, gets the most protective vocabulary limits.
	switch state.AgeBand {
	case BandMiddle:
		d.MaxSentenceWords = 12
		d.Guidance = append(d.Guidance, "use simple, concrete language")
	case BandPreteen:
		d.MaxSentenceWords = 16
		d.Guidance = append(d.Guidance, "be straightforward without talking down")
	case BandTeen:
		d.MaxSentenceWords = 20
		d.Guidance = append(d.Guidance, "speak respectfully, as to a young adult")
	default:
		d.MaxSentenceWords = 8
		d.Guidance = append(d.Guidance, "use very simple words a young child understands")
	}

	switch state.Level {
	case LevelConcern:
		d.RequiredPhrases = append(d.RequiredPhrases, "it is good that you told me")
		d.Guidance = append(d.Guidance, "gently check how the child is feeling")
	case LevelUrgent:
		d.RequiredPhrases = append(d.RequiredPhrases,
			"it is good that you told me",
			"please talk to a trusted adult",
		)
		d.Guidance = append(d.Guidance,
			"reassure the child this is not their fault",
			"encourage telling a parent, teacher, or another trusted adult",
		)
	case LevelEmergency:
		d.RequiredPhrases = append(d.RequiredPhrases,
			"you are not in trouble",
			"please tell a trusted adult right away",
			"if you are in danger, call your local emergency number",
		)
		d.Guidance = append(d.Guidance,
			"stay calm and keep the child focused on getting help now",
			"do not ask for details about what happened",
		)
		// At emergency nothing off-topic is allowed. Copy before
		// appending so the shared base list stays untouched.
		d.ForbiddenTopics = append(append([]string{}, forbiddenTopics...),
			"any non-safety small talk")
	}

	return d
}

// SystemPrompt serializes the directive into the system prompt handed
// to the language model. Output is deterministic for a given directive.
func (d ResponseDirective) SystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are SafeChild, a friendly safety companion for children.\n")
	fmt.Fprintf(&b, "Escalation level: %s. Tone: %s.\n", d.Level, d.Tone)
	fmt.Fprintf(&b, "Keep sentences under %d words.\n", d.MaxSentenceWords)
	if len(d.RequiredPhrases) > 0 {
		b.WriteString("Your reply MUST include, in substance:\n")
		for _, p := range d.RequiredPhrases {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	b.WriteString("Never include:\n")
	for _, t := range d.ForbiddenTopics {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	if len(d.Guidance) > 0 {
		b.WriteString("Guidance:\n")
		for _, g := range d.Guidance {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	return b.String()
}
