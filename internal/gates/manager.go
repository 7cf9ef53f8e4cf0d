// Package gates evaluates a validated schedule against a configurable
// set of named quality gates. Evaluation is a pure function of the
// schedule and ledger snapshot: same input, same verdict.
package gates

import (
	"github.com/ovachev/planproof/internal/model"
)

// Outcome is what a single gate reports back
type Outcome struct {
	Passed    bool
	Score     float64 // Measured value
	Threshold float64 // Configured threshold, 0 for boolean gates
	Detail    string
}

// Gate is one named, thresholded pass/fail check over a whole schedule.
// Evaluate must never panic or return an error; problems are expressed
// as a failed outcome with detail.
type Gate interface {
	Name() string
	Blocking() bool
	Evaluate(schedule *model.Schedule, snapshot *model.LedgerSnapshot) Outcome
}

// Manager holds the registered gate set. Gate identity is by name, so
// adding a duplicate name overwrites the previous gate in place.
type Manager struct {
	gates map[string]Gate
	order []string
}

// NewManager creates a manager with the standard built-in gate set
func NewManager(cfg model.GatesConfig) *Manager {
	m := &Manager{gates: make(map[string]Gate)}
	m.Add(NewCitationCoverageGate(cfg.CitationCoverageThreshold))
	m.Add(NewContradictionSeverityGate())
	m.Add(NewConfidenceMinimumGate(cfg.ConfidenceMinimum))
	m.Add(NewSchemaComplianceGate())
	m.Add(NewRegulatoryFlagsGate())
	return m
}

// NewEmptyManager creates a manager with no gates registered
func NewEmptyManager() *Manager {
	return &Manager{gates: make(map[string]Gate)}
}

// Add registers a gate, overwriting any gate with the same name
func (m *Manager) Add(g Gate) {
	if _, exists := m.gates[g.Name()]; !exists {
		m.order = append(m.order, g.Name())
	}
	m.gates[g.Name()] = g
}

// Remove unregisters a gate by name. Removing an unknown name is a
// no-op, not an error.
func (m *Manager) Remove(name string) {
	if _, exists := m.gates[name]; !exists {
		return
	}
	delete(m.gates, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Names returns the registered gate names in registration order
func (m *Manager) Names() []string {
	return append([]string(nil), m.order...)
}

// Evaluate runs every registered gate. Passed is true iff no blocking
// gate failed; advisory failures land in Warnings and never flip the
// verdict.
func (m *Manager) Evaluate(schedule *model.Schedule, snapshot *model.LedgerSnapshot) model.GateResult {
	result := model.GateResult{
		Passed:   true,
		Failures: []model.GateFailure{},
		Warnings: []model.GateWarning{},
	}

	for _, name := range m.order {
		gate := m.gates[name]
		outcome := gate.Evaluate(schedule, snapshot)
		if outcome.Passed {
			continue
		}

		if gate.Blocking() {
			result.Passed = false
			result.Failures = append(result.Failures, model.GateFailure{
				Gate:      name,
				Blocking:  true,
				Score:     outcome.Score,
				Threshold: outcome.Threshold,
				Detail:    outcome.Detail,
			})
		} else {
			result.Warnings = append(result.Warnings, model.GateWarning{
				Gate:   name,
				Detail: outcome.Detail,
			})
		}
	}

	return result
}
