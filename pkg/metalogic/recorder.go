// Package metalogic records interaction outcomes and derives task priorities
// and self-evaluations from them.
package metalogic

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zen-systems/intentgate/pkg/history"
)

const (
	metricsNamespace = "intentgate"
	metricsSubsystem = "metalogic"

	outcomeSuccess = "success"
	outcomeFailure = "failure"

	defaultSampleLimit = 512
)

// Feedback carries user preferences stated during an interaction.
type Feedback struct {
	PreferredFormat string `json:"preferred_format,omitempty"`
	PreferredStyle  string `json:"preferred_style,omitempty"`
}

// Interaction is one handled request.
type Interaction struct {
	TaskType      string         `json:"task_type,omitempty"`
	OperationType string         `json:"operation_type,omitempty"`
	Success       bool           `json:"success"`
	ErrorKind     string         `json:"error_kind,omitempty"`
	Feedback      *Feedback      `json:"feedback,omitempty"`
	// ExecutionTime is nil when the interaction was not timed. A zero
	// duration is still a sample.
	ExecutionTime *time.Duration `json:"execution_time,omitempty"`
}

// Sample is a recorded execution time.
type Sample struct {
	TaskType string        `json:"task_type,omitempty"`
	Duration time.Duration `json:"duration"`
	Time     time.Time     `json:"time"`
}

// Recorder counts interactions, errors and user preferences. Counters are
// exported on a private prometheus registry.
type Recorder struct {
	mu          sync.Mutex
	patterns    map[string]int
	errors      map[string]int
	preferences map[string]string
	samples     *history.Ring[Sample]
	now         func() time.Time

	registry     *prometheus.Registry
	interactions *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	durations    *prometheus.HistogramVec
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSampleLimit bounds the number of retained execution-time samples.
func WithSampleLimit(n int) Option {
	return func(r *Recorder) {
		r.samples = history.NewRing[Sample](n)
	}
}

// NewRecorder creates a recorder with its own metrics registry.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		patterns:    make(map[string]int),
		errors:      make(map[string]int),
		preferences: make(map[string]string),
		samples:     history.NewRing[Sample](defaultSampleLimit),
		now:         time.Now,
		registry:    prometheus.NewRegistry(),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "interactions_total",
			Help:      "Handled interactions by task type and outcome",
		}, []string{"task_type", "outcome"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "errors_total",
			Help:      "Interaction failures by error kind",
		}, []string{"kind"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "execution_seconds",
			Help:      "Interaction execution time in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"task_type"}),
	}
	r.registry.MustRegister(r.interactions, r.errorsTotal, r.durations)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record learns from an interaction. It also satisfies history.Sink when
// given an Interaction or *Interaction; other events are ignored.
func (r *Recorder) Record(event any) {
	switch v := event.(type) {
	case Interaction:
		r.RecordInteraction(v)
	case *Interaction:
		if v != nil {
			r.RecordInteraction(*v)
		}
	}
}

// RecordInteraction updates pattern, error and preference counts.
func (r *Recorder) RecordInteraction(in Interaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := in.TaskType
	if label == "" {
		label = "none"
	}
	outcome := outcomeSuccess
	if !in.Success {
		outcome = outcomeFailure
	}
	r.interactions.WithLabelValues(label, outcome).Inc()

	if in.TaskType != "" {
		r.patterns[in.TaskType]++
	}
	if in.ErrorKind != "" {
		r.errors[in.ErrorKind]++
		r.errorsTotal.WithLabelValues(in.ErrorKind).Inc()
	}
	if fb := in.Feedback; fb != nil {
		if fb.PreferredFormat != "" {
			r.preferences["output_format"] = fb.PreferredFormat
		}
		if fb.PreferredStyle != "" {
			r.preferences["code_style"] = fb.PreferredStyle
		}
	}
	if in.ExecutionTime != nil {
		d := *in.ExecutionTime
		r.samples.Add(Sample{TaskType: in.TaskType, Duration: d, Time: r.now()})
		r.durations.WithLabelValues(label).Observe(d.Seconds())
	}
}

// PatternCount returns how often a task type has been seen.
func (r *Recorder) PatternCount(taskType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.patterns[taskType]
}

// ErrorCount returns how often an error kind has been seen.
func (r *Recorder) ErrorCount(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors[kind]
}

// Preferences returns a copy of the learned preferences.
func (r *Recorder) Preferences() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.preferences))
	for k, v := range r.preferences {
		out[k] = v
	}
	return out
}

// Samples returns the retained execution-time samples, oldest first.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples.Items()
}

// Registry exposes the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Interactions returns the interaction counter vector.
func (r *Recorder) Interactions() *prometheus.CounterVec {
	return r.interactions
}

// Errors returns the error counter vector.
func (r *Recorder) Errors() *prometheus.CounterVec {
	return r.errorsTotal
}

func (r *Recorder) known(taskType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.patterns[taskType]
	return ok
}
