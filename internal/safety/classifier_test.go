package safety

import (
	"reflect"
	"testing"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(nil, nil)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	return c
}

func categoriesOf(signals []RiskSignal) []RiskCategory {
	out := make([]RiskCategory, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Category)
	}
	return out
}

func TestClassify(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name string
		text string
		want []RiskCategory
	}{
		{
			name: "empty message",
			text: "",
			want: []RiskCategory{CategoryNone},
		},
		{
			name: "whitespace only",
			text: "   \t\n",
			want: []RiskCategory{CategoryNone},
		},
		{
			name: "innocuous message",
			text: "I had pizza for lunch and played football",
			want: []RiskCategory{CategoryNone},
		},
		{
			name: "body safety disclosure",
			text: "someone touched me and told me not to tell",
			want: []RiskCategory{CategoryBodySafety},
		},
		{
			name: "case insensitive",
			text: "A STRANGER FOLLOWED ME home",
			want: []RiskCategory{CategoryStrangerDanger},
		},
		{
			name: "online grooming",
			text: "my online friend asked me to send a photo",
			want: []RiskCategory{CategoryOnlineSafety},
		},
		{
			name: "bullying",
			text: "the kids keep making fun of me at school",
			want: []RiskCategory{CategoryBullying},
		},
		{
			name: "emergency",
			text: "please help me now he is hurting me",
			want: []RiskCategory{CategoryEmergency},
		},
		{
			name: "multiple categories",
			text: "a stranger online asked me to send pictures and touched me",
			want: []RiskCategory{CategoryBodySafety, CategoryStrangerDanger, CategoryOnlineSafety},
		},
		{
			name: "negated disclosure does not trigger",
			text: "nobody touched me, I promise",
			want: []RiskCategory{CategoryNone},
		},
		{
			name: "negation does not cross sentences",
			text: "Nobody came today. He touched me again",
			want: []RiskCategory{CategoryBodySafety},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categoriesOf(c.Classify(tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q) categories = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyWordBoundary(t *testing.T) {
	c := newTestClassifier(t)
	// "strangeness" must not match the "stranger" keyword.
	got := c.Classify("the strangeness of the weather surprised me")
	if HasRisk(got) {
		t.Errorf("Classify matched inside a larger word: %+v", got)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTestClassifier(t)
	text := "someone touched me and told me not to tell"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		if got := c.Classify(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Classify is not deterministic: run %d = %+v, first = %+v", i, got, first)
		}
	}
}

func TestClassifyConfidenceAndSpan(t *testing.T) {
	c := newTestClassifier(t)
	text := "he touched me yesterday"
	signals := c.Classify(text)
	if len(signals) != 1 || signals[0].Category != CategoryBodySafety {
		t.Fatalf("unexpected signals: %+v", signals)
	}
	s := signals[0]
	if s.Confidence <= 0.5 || s.Confidence > 1.0 {
		t.Errorf("confidence %v outside (0.5, 1.0]", s.Confidence)
	}
	if s.Matched != "touched me" {
		t.Errorf("matched = %q, want %q", s.Matched, "touched me")
	}
	if text[s.Span[0]:s.Span[1]] != s.Matched {
		t.Errorf("span %v does not cover matched phrase in original text", s.Span)
	}
}

func TestNewClassifierRejectsBadRules(t *testing.T) {
	_, err := NewClassifier([]KeywordRule{{Category: "made_up", Keywords: []string{"x"}}}, nil)
	if err == nil {
		t.Error("NewClassifier accepted an unknown category")
	}
	_, err = NewClassifier([]KeywordRule{{Category: CategoryNone, Keywords: []string{"x"}}}, nil)
	if err == nil {
		t.Error("NewClassifier accepted a rule for the none category")
	}
}

func TestClassifyCustomRules(t *testing.T) {
	rules := []KeywordRule{
		{Category: CategoryBullying, Keywords: []string{"mean to me"}, Negators: []string{"not"}},
	}
	c, err := NewClassifier(rules, nil)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	if got := categoriesOf(c.Classify("they were mean to me")); !reflect.DeepEqual(got, []RiskCategory{CategoryBullying}) {
		t.Errorf("custom rule did not match: %v", got)
	}
	if got := c.Classify("they were not mean to me"); HasRisk(got) {
		t.Errorf("negated custom rule matched: %+v", got)
	}
}
