package safety

import (
	"context"
	"fmt"
	"log/slog"
)

// Decision is the full outcome of processing one message: the signals
// found, the session state after the update, and the directive for the
// language model.
type Decision struct {
	SessionID       string
	Signals         []RiskSignal
	State           SessionState
	Directive       ResponseDirective
	ClassifierFault bool
}

// Engine ties the classifier, the session tracker, and the response
// composer together. It performs no I/O; callers feed it message text
// and consume the directive.
type Engine struct {
	classifier *Classifier
	tracker    *Tracker
	logger     *slog.Logger
}

// NewEngine creates an engine around an existing classifier and tracker.
func NewEngine(classifier *Classifier, tracker *Tracker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{classifier: classifier, tracker: tracker, logger: logger}
}

// ProcessMessage classifies one message, joins the result into the
// session's escalation state, and composes the response directive.
//
// A classifier fault does not fail the request: the engine logs it and
// raises the session to at least LevelConcern so a broken classifier
// can never silently downgrade safety.
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, text string, age *int) (*Decision, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	band := ResolveAgeBand(age)
	signals, fault := e.classify(text)

	floor := LevelFromSignals(signals)
	if fault && floor < LevelConcern {
		floor = LevelConcern
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := e.tracker.Update(sessionID, band, floor, signals)
	directive := Compose(state)

	if state.Level >= LevelUrgent || fault {
		e.logger.Warn("session escalated",
			"session_id", sessionID,
			"level", state.Level.String(),
			"age_band", string(state.AgeBand),
			"signal_count", len(signals),
			"classifier_fault", fault,
		)
	} else {
		e.logger.Debug("message processed",
			"session_id", sessionID,
			"level", state.Level.String(),
			"message_count", state.MessageCount,
		)
	}

	return &Decision{
		SessionID:       sessionID,
		Signals:         signals,
		State:           state,
		Directive:       directive,
		ClassifierFault: fault,
	}, nil
}

// classify wraps the classifier so a panic in rule evaluation degrades
// to a fault instead of taking the request down.
func (e *Engine) classify(text string) (signals []RiskSignal, fault bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("classifier panicked, failing open", "panic", r)
			signals = noSignal()
			fault = true
		}
	}()
	return e.classifier.Classify(text), false
}

// Analyze classifies text without touching any session state. It
// returns the signals and the minimum level they imply.
func (e *Engine) Analyze(text string) ([]RiskSignal, EscalationLevel) {
	signals, fault := e.classify(text)
	floor := LevelFromSignals(signals)
	if fault && floor < LevelConcern {
		floor = LevelConcern
	}
	return signals, floor
}

// Snapshot returns a session's current state without changing it.
func (e *Engine) Snapshot(sessionID string) (SessionState, bool) {
	return e.tracker.Snapshot(sessionID)
}

// Sessions lists all tracked sessions.
func (e *Engine) Sessions() []SessionState {
	return e.tracker.Sessions()
}

// Reset clears a session's escalation state. It is the only way a
// session's level goes down, so every reset is logged as an explicit
// operator action.
func (e *Engine) Reset(sessionID string) bool {
	ok := e.tracker.Reset(sessionID)
	e.logger.Info("session escalation reset",
		"session_id", sessionID,
		"existed", ok,
	)
	return ok
}

// Remove drops a session from tracking entirely.
func (e *Engine) Remove(sessionID string) bool {
	return e.tracker.Remove(sessionID)
}
