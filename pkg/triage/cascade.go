package triage

import (
	"sort"

	"go.uber.org/zap"
)

// ContainmentUnverified is the only containment status reported. Nothing in
// this package isolates or rolls back a component.
const ContainmentUnverified = "unverified"

// CascadeReport describes a chain of failures.
type CascadeReport struct {
	RootCause          *Failure        `json:"root_cause"`
	RootSeverity       Severity        `json:"root_severity,omitempty"`
	PropagationPath    []string        `json:"propagation_path"`
	FailureCount       int             `json:"failure_count"`
	AffectedComponents []string        `json:"affected_components"`
	Containment        Containment     `json:"containment"`
	Recovery           CascadeRecovery `json:"recovery"`
}

// Containment reports what is known about the spread of a cascade.
type Containment struct {
	Verified           bool     `json:"verified"`
	Status             string   `json:"status"`
	AffectedComponents []string `json:"affected_components"`
}

// CascadeRecovery lists the manual steps for recovering from a cascade.
type CascadeRecovery struct {
	Attempted     bool     `json:"attempted"`
	StateRestored bool     `json:"state_restored"`
	NextSteps     []string `json:"next_steps"`
}

// HandleCascade treats the first failure as the root cause and builds the
// propagation path from the component names, in order. Failures without a
// component are reported as "unknown".
func (h *Handler) HandleCascade(failures []Failure) CascadeReport {
	report := CascadeReport{
		PropagationPath:    []string{},
		AffectedComponents: []string{},
		Containment:        Containment{Status: ContainmentUnverified, AffectedComponents: []string{}},
		Recovery: CascadeRecovery{
			NextSteps: []string{"Restore from backup", "Restart services", "Verify integrity"},
		},
	}
	if len(failures) == 0 {
		return report
	}

	root := failures[0]
	report.RootCause = &root
	report.RootSeverity = AssessSeverity(root)
	report.FailureCount = len(failures)

	seen := make(map[string]struct{})
	for _, f := range failures {
		component := f.Component
		if component == "" {
			component = "unknown"
		}
		report.PropagationPath = append(report.PropagationPath, component)
		if _, ok := seen[component]; !ok {
			seen[component] = struct{}{}
			report.AffectedComponents = append(report.AffectedComponents, component)
		}
	}
	sort.Strings(report.AffectedComponents)
	report.Containment.AffectedComponents = append([]string(nil), report.AffectedComponents...)

	h.logger.Warn("cascading failure",
		zap.String("root_kind", root.Kind),
		zap.String("root_severity", string(report.RootSeverity)),
		zap.Strings("path", report.PropagationPath),
		zap.Int("count", report.FailureCount),
	)
	return report
}
