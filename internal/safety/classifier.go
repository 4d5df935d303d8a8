package safety

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// KeywordRule is one configurable detection rule. Keywords are matched
// as whole words or phrases, case-insensitively. Negators suppress a
// keyword hit when they appear just before it ("nobody touched me").
type KeywordRule struct {
	Category RiskCategory `mapstructure:"category" json:"category"`
	Keywords []string     `mapstructure:"keywords" json:"keywords"`
	Negators []string     `mapstructure:"negators" json:"negators"`
}

// compiledRule stores precompiled patterns for efficient matching.
type compiledRule struct {
	category RiskCategory
	keywords []string
	patterns []*regexp.Regexp
	negators []*regexp.Regexp
}

// Classifier detects risk signals in message text with precompiled
// keyword patterns. Classify is pure and safe for concurrent use.
type Classifier struct {
	rules  []compiledRule
	logger *slog.Logger
}

// negationWindow is how far back (in bytes) a negator may sit and
// still suppress a keyword hit.
const negationWindow = 32

// NewClassifier compiles the given rules. Rules are evaluated in
// order; each category yields at most one signal per message.
func NewClassifier(rules []KeywordRule, logger *slog.Logger) (*Classifier, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	c := &Classifier{logger: logger}
	for _, rule := range rules {
		if !rule.Category.Valid() || rule.Category == CategoryNone {
			return nil, fmt.Errorf("invalid category %q in keyword rule", rule.Category)
		}
		cr := compiledRule{
			category: rule.Category,
			keywords: rule.Keywords,
			patterns: make([]*regexp.Regexp, len(rule.Keywords)),
			negators: make([]*regexp.Regexp, len(rule.Negators)),
		}
		for i, kw := range rule.Keywords {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern for keyword %q: %w", kw, err)
			}
			cr.patterns[i] = re
		}
		for i, neg := range rule.Negators {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(neg) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern for negator %q: %w", neg, err)
			}
			cr.negators[i] = re
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// Classify scans text and returns the detected risk signals. A message
// with no detectable risk (including an empty message) yields a single
// signal with CategoryNone. The same text always yields the same result.
func (c *Classifier) Classify(text string) []RiskSignal {
	if strings.TrimSpace(text) == "" {
		return noSignal()
	}

	var signals []RiskSignal
	for _, rule := range c.rules {
		matchCount := 0
		first := [2]int{-1, -1}
		firstMatched := ""
		for _, re := range rule.patterns {
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			if negatedAt(text, loc[0], rule.negators) {
				continue
			}
			matchCount++
			if first[0] < 0 {
				first = [2]int{loc[0], loc[1]}
				firstMatched = text[loc[0]:loc[1]]
			}
		}
		if matchCount == 0 {
			continue
		}
		ratio := float64(matchCount) / float64(len(rule.keywords))
		signal := RiskSignal{
			Category:   rule.category,
			Confidence: 0.5 + ratio*0.5,
			Matched:    firstMatched,
			Span:       first,
		}
		signals = append(signals, signal)
		if c.logger != nil {
			c.logger.Debug("keyword rule matched",
				"category", string(rule.category),
				"matched", firstMatched,
				"match_count", matchCount,
				"total_keywords", len(rule.keywords),
			)
		}
	}

	if len(signals) == 0 {
		return noSignal()
	}
	return signals
}

// negatedAt reports whether a negator appears shortly before position
// pos within the same sentence.
func negatedAt(text string, pos int, negators []*regexp.Regexp) bool {
	if len(negators) == 0 {
		return false
	}
	start := pos - negationWindow
	if start < 0 {
		start = 0
	}
	window := text[start:pos]
	// A sentence boundary resets negation scope.
	if i := strings.LastIndexAny(window, ".!?"); i >= 0 {
		window = window[i+1:]
	}
	for _, re := range negators {
		if re.MatchString(window) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in detection rules. Deployments can
// override them through configuration; these cover the phrases the
// product team collected from moderated transcripts.
func DefaultRules() []KeywordRule {
	return []KeywordRule{
		{
			Category: CategoryEmergency,
			Keywords: []string{
				"help me now",
				"hurting me right now",
				"scared right now",
				"he is here",
				"she is here",
				"call 911",
				"i am bleeding",
				"i'm bleeding",
				"can't breathe",
				"cant breathe",
				"going to kill",
				"kill myself",
				"want to die",
				"hurt myself",
				"emergency",
			},
		},
		{
			Category: CategoryBodySafety,
			Keywords: []string{
				"touched me",
				"touches me",
				"touching me",
				"touched my",
				"private parts",
				"told me not to tell",
				"said not to tell",
				"our secret",
				"keep it a secret",
				"don't tell anyone",
				"made me uncomfortable",
				"took off my clothes",
			},
			Negators: []string{"nobody", "no one", "noone", "never", "didn't", "did not", "hasn't", "has not"},
		},
		{
			Category: CategoryStrangerDanger,
			Keywords: []string{
				"stranger",
				"followed me",
				"following me",
				"don't know him",
				"don't know her",
				"get in the car",
				"get in his car",
				"offered me candy",
				"offered me sweets",
				"asked me to come with",
				"wants to meet me",
				"meet him alone",
				"waiting outside",
			},
			Negators: []string{"nobody", "no one", "noone", "never"},
		},
		{
			Category: CategoryOnlineSafety,
			Keywords: []string{
				"someone online",
				"met online",
				"online friend",
				"send a photo",
				"send photos",
				"send pictures",
				"sent me pictures",
				"asked for my address",
				"asked where i live",
				"asked for my password",
				"video chat",
				"webcam",
				"keep chatting in private",
			},
			Negators: []string{"nobody", "no one", "noone", "never"},
		},
		{
			Category: CategoryBullying,
			Keywords: []string{
				"bullied",
				"bullying",
				"bullies",
				"making fun of me",
				"make fun of me",
				"picking on me",
				"picks on me",
				"calling me names",
				"laughing at me",
				"hit me at school",
				"threatened me",
				"everyone hates me",
				"won't let me play",
			},
			Negators: []string{"nobody", "no one", "noone", "never", "stopped"},
		},
	}
}
