package safety

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewClassifier(nil, logger)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	return NewEngine(c, NewTracker(), logger)
}

func TestEngineEscalatesDisclosure(t *testing.T) {
	e := newTestEngine(t)
	age := 8

	d, err := e.ProcessMessage(context.Background(), "s1", "someone touched me and told me not to tell", &age)
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if d.State.Level != LevelUrgent {
		t.Fatalf("level = %v, want urgent", d.State.Level)
	}
	if d.State.AgeBand != BandMiddle {
		t.Errorf("band = %v, want middle", d.State.AgeBand)
	}

	var hasTrustedAdult bool
	for _, p := range d.Directive.RequiredPhrases {
		if strings.Contains(p, "trusted adult") {
			hasTrustedAdult = true
		}
	}
	if !hasTrustedAdult {
		t.Errorf("urgent directive lacks trusted adult phrase: %v", d.Directive.RequiredPhrases)
	}

	// An innocuous follow-up keeps the session at urgent.
	d, err = e.ProcessMessage(context.Background(), "s1", "ok. what games do you like?", &age)
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if d.State.Level != LevelUrgent {
		t.Errorf("level after follow-up = %v, want urgent", d.State.Level)
	}
	if HasRisk(d.Signals) {
		t.Errorf("innocuous follow-up produced risk signals: %+v", d.Signals)
	}
}

func TestEngineReset(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.ProcessMessage(context.Background(), "s1", "help me now", nil); err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	state, _ := e.Snapshot("s1")
	if state.Level != LevelEmergency {
		t.Fatalf("level = %v, want emergency", state.Level)
	}

	if !e.Reset("s1") {
		t.Fatal("Reset reported false for existing session")
	}
	state, _ = e.Snapshot("s1")
	if state.Level != LevelNone {
		t.Errorf("level after reset = %v, want none", state.Level)
	}

	if e.Reset("never-existed") {
		t.Error("Reset reported true for unknown session")
	}
}

func TestEngineRequiresSessionID(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.ProcessMessage(context.Background(), "", "hello", nil); err == nil {
		t.Error("ProcessMessage accepted empty session id")
	}
}

func TestEngineCancelledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.ProcessMessage(ctx, "s1", "hello", nil); err == nil {
		t.Error("ProcessMessage ignored cancelled context")
	}
	// The cancelled request must not have touched session state.
	if _, ok := e.Snapshot("s1"); ok {
		t.Error("cancelled request created session state")
	}
}

func TestEngineFailsOpenOnClassifierPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// A nil classifier panics on use; the engine must degrade, not crash.
	e := NewEngine(nil, NewTracker(), logger)

	d, err := e.ProcessMessage(context.Background(), "s1", "hello there", nil)
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if !d.ClassifierFault {
		t.Error("classifier fault not reported")
	}
	if d.State.Level < LevelConcern {
		t.Errorf("level = %v, want at least concern when failing open", d.State.Level)
	}
}

func TestEngineEmptyMessage(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.ProcessMessage(context.Background(), "s1", "", nil)
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if HasRisk(d.Signals) {
		t.Errorf("empty message produced risk signals: %+v", d.Signals)
	}
	if d.State.Level != LevelNone {
		t.Errorf("level = %v, want none", d.State.Level)
	}
}
