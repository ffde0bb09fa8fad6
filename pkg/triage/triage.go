// Package triage classifies failures by severity and picks a recovery
// strategy for each one.
package triage

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/intentgate/pkg/history"
)

// Severity buckets a failure for recovery.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// RecoveryType says who drives recovery.
type RecoveryType string

const (
	RecoveryManual    RecoveryType = "manual"
	RecoveryAssisted  RecoveryType = "assisted"
	RecoveryAutomatic RecoveryType = "automatic"
)

var (
	criticalKeywords = []string{"system", "security", "breach", "corrupt"}
	criticalKinds    = []string{KindSystem, KindMemory, KindOS}
	highKinds        = []string{KindRuntime, KindValue, KindKey}
	highKeywords     = []string{"build", "crash", "fatal"}
	mediumKinds      = []string{KindAttribute, KindType, KindImport}
)

// AssessSeverity classifies a failure. Checks run in priority order and a
// critical keyword in the message outranks the kind.
func AssessSeverity(f Failure) Severity {
	msg := strings.ToLower(f.Message)
	switch {
	case containsAny(msg, criticalKeywords), oneOf(f.Kind, criticalKinds):
		return SeverityCritical
	case oneOf(f.Kind, highKinds), containsAny(msg, highKeywords):
		return SeverityHigh
	case oneOf(f.Kind, mediumKinds):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Strategy is the static recovery plan for a severity.
type Strategy struct {
	Type                 RecoveryType `json:"type"`
	RequiresIntervention bool         `json:"requires_intervention"`
	Steps                []string     `json:"steps"`
}

var strategies = map[Severity]Strategy{
	SeverityCritical: {Type: RecoveryManual, RequiresIntervention: true, Steps: []string{"Document issue", "Provide workarounds", "Escalate"}},
	SeverityHigh:     {Type: RecoveryAssisted, Steps: []string{"Retry with backoff", "Fallback options", "Guided resolution"}},
	SeverityMedium:   {Type: RecoveryAutomatic, Steps: []string{"Retry", "Alternative approach", "Graceful degradation"}},
	SeverityLow:      {Type: RecoveryAutomatic, Steps: []string{"Continue", "Log warning", "Best effort"}},
}

// StrategyFor returns the recovery strategy for a severity. Unknown
// severities get the low-severity strategy.
func StrategyFor(s Severity) Strategy {
	st, ok := strategies[s]
	if !ok {
		st = strategies[SeverityLow]
	}
	st.Steps = append([]string(nil), st.Steps...)
	return st
}

// Recovery is the outcome of applying a strategy.
type Recovery struct {
	Success     bool     `json:"success"`
	CanContinue bool     `json:"can_continue"`
	Action      string   `json:"action"`
	Strategy    Strategy `json:"strategy"`
	Guidance    []string `json:"guidance,omitempty"`
}

// Recover applies a strategy. Automatic recovery succeeds, assisted recovery
// lets the caller continue on a degraded path, manual recovery halts.
func Recover(st Strategy) Recovery {
	switch st.Type {
	case RecoveryAutomatic:
		return Recovery{Success: true, CanContinue: true, Action: "Automatic recovery attempted", Strategy: st}
	case RecoveryAssisted:
		return Recovery{CanContinue: true, Action: "Assisted recovery needed", Strategy: st, Guidance: st.Steps}
	default:
		return Recovery{Action: "Manual intervention required", Strategy: st}
	}
}

// Record is one handled failure.
type Record struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	Kind        string    `json:"kind"`
	Severity    Severity  `json:"severity"`
	Recovery    Recovery  `json:"recovery"`
	CanContinue bool      `json:"can_continue"`
	Component   string    `json:"component,omitempty"`
	Time        time.Time `json:"time"`
}

// Handler triages failures and keeps a bounded history of records.
// It is not safe for concurrent use.
type Handler struct {
	history *history.Ring[Record]
	sink    history.Sink
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHistoryLimit bounds the number of retained records.
func WithHistoryLimit(n int) Option {
	return func(h *Handler) {
		h.history = history.NewRing[Record](n)
	}
}

// WithSink publishes every record to sink.
func WithSink(sink history.Sink) Option {
	return func(h *Handler) {
		h.sink = sink
	}
}

// NewHandler creates a failure handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		history: history.NewRing[Record](256),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle classifies err raised by component and records the result.
func (h *Handler) Handle(err error, component string) Record {
	return h.HandleFailure(FromError(err, component))
}

// HandleFailure triages an already classified failure.
func (h *Handler) HandleFailure(f Failure) Record {
	severity := AssessSeverity(f)
	recovery := Recover(StrategyFor(severity))

	rec := Record{
		ID:          uuid.NewString(),
		Message:     f.Message,
		Kind:        f.Kind,
		Severity:    severity,
		Recovery:    recovery,
		CanContinue: recovery.CanContinue,
		Component:   f.Component,
		Time:        h.now(),
	}
	h.history.Add(rec)
	if h.sink != nil {
		h.sink.Record(rec)
	}

	fields := []zap.Field{
		zap.String("id", rec.ID),
		zap.String("kind", rec.Kind),
		zap.String("severity", string(severity)),
		zap.String("recovery", string(recovery.Strategy.Type)),
		zap.Bool("can_continue", rec.CanContinue),
		zap.String("component", rec.Component),
		zap.String("message", rec.Message),
	}
	if severity == SeverityCritical {
		h.logger.Error("failure triaged", fields...)
	} else {
		h.logger.Warn("failure triaged", fields...)
	}
	return rec
}

// History returns the retained records, oldest first.
func (h *Handler) History() []Record {
	return h.history.Items()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
