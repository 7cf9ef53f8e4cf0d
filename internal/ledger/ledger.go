// Package ledger is the single shared mutable store of one pipeline run:
// claims and contradictions live here as arena-style maps keyed by id,
// with secondary indexes by task id and claim type for O(1) retrieval.
// Tasks and contradictions hold only ids, never live references, so the
// ledger is the sole owner and the object graph stays acyclic.
//
// The ledger is intended for single-owner-per-job use. It is not safe
// for concurrent writers; parallel validation must serialize inserts
// (see validate.Service).
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ovachev/planproof/internal/model"
)

// Ledger stores claims and contradictions for one run
type Ledger struct {
	claims         map[string]*model.Claim
	contradictions map[string]*model.Contradiction

	byTask map[string][]string          // task id -> claim ids, insertion order
	byType map[model.ClaimType][]string // claim type -> claim ids, insertion order

	order       []string // claim insertion order, for deterministic export
	contraOrder []string
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		claims:         make(map[string]*model.Claim),
		contradictions: make(map[string]*model.Contradiction),
		byTask:         make(map[string][]string),
		byType:         make(map[model.ClaimType][]string),
	}
}

// AddClaim inserts a claim and maintains the secondary indexes.
// Claims without an id violate the ledger's ownership model and are
// rejected. Re-adding an existing id replaces the stored value without
// duplicating index entries.
func (l *Ledger) AddClaim(c model.Claim) error {
	if c.ID == "" {
		return fmt.Errorf("claim for task %q has no id", c.TaskID)
	}

	stored := c
	if _, exists := l.claims[c.ID]; !exists {
		l.order = append(l.order, c.ID)
		l.byTask[c.TaskID] = append(l.byTask[c.TaskID], c.ID)
		l.byType[c.Type] = append(l.byType[c.Type], c.ID)
	}
	l.claims[c.ID] = &stored

	return nil
}

// AddContradiction inserts a contradiction. Ids are mandatory here too.
func (l *Ledger) AddContradiction(c model.Contradiction) error {
	if c.ID == "" {
		return fmt.Errorf("contradiction between %q and %q has no id", c.ClaimA, c.ClaimB)
	}

	stored := c
	if _, exists := l.contradictions[c.ID]; !exists {
		l.contraOrder = append(l.contraOrder, c.ID)
	}
	l.contradictions[c.ID] = &stored

	return nil
}

// Claim returns the claim with the given id
func (l *Ledger) Claim(id string) (model.Claim, bool) {
	c, ok := l.claims[id]
	if !ok {
		return model.Claim{}, false
	}
	return *c, true
}

// ClaimsByTask returns the claims extracted from one task, in insertion order
func (l *Ledger) ClaimsByTask(taskID string) []model.Claim {
	return l.collect(l.byTask[taskID])
}

// ClaimsByType returns every claim of one type, in insertion order
func (l *Ledger) ClaimsByType(t model.ClaimType) []model.Claim {
	return l.collect(l.byType[t])
}

// UpdateClaim replaces a stored claim in place. Only the validation
// pipeline (confidence calibration) and the repair engine are expected
// to call this.
func (l *Ledger) UpdateClaim(c model.Claim) error {
	if _, ok := l.claims[c.ID]; !ok {
		return fmt.Errorf("unknown claim id %q", c.ID)
	}
	stored := c
	l.claims[c.ID] = &stored
	return nil
}

// Contradiction returns the contradiction with the given id
func (l *Ledger) Contradiction(id string) (model.Contradiction, bool) {
	c, ok := l.contradictions[id]
	if !ok {
		return model.Contradiction{}, false
	}
	return *c, true
}

// Contradictions returns every contradiction, in insertion order
func (l *Ledger) Contradictions() []model.Contradiction {
	out := make([]model.Contradiction, 0, len(l.contraOrder))
	for _, id := range l.contraOrder {
		out = append(out, *l.contradictions[id])
	}
	return out
}

// ContradictionsByTask returns the ids of contradictions touching any
// claim of the given task, sorted for determinism.
func (l *Ledger) ContradictionsByTask(taskID string) []string {
	mine := make(map[string]bool, len(l.byTask[taskID]))
	for _, id := range l.byTask[taskID] {
		mine[id] = true
	}

	var out []string
	for _, id := range l.contraOrder {
		c := l.contradictions[id]
		if mine[c.ClaimA] || mine[c.ClaimB] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve marks a contradiction closed. Resolution is a field mutation,
// never a removal; the ledger is append-only.
func (l *Ledger) Resolve(id, strategy, rejectedClaim string, at time.Time) error {
	c, ok := l.contradictions[id]
	if !ok {
		return fmt.Errorf("unknown contradiction id %q", id)
	}
	if c.Resolved() {
		return nil
	}
	t := at
	c.ResolvedAt = &t
	c.ResolutionStrategy = strategy
	c.RejectedClaim = rejectedClaim
	return nil
}

// Len returns the number of stored claims
func (l *Ledger) Len() int {
	return len(l.claims)
}

// Export returns an immutable snapshot of the ledger for reporting.
// The snapshot copies every claim and contradiction, so later ledger
// mutation cannot leak into an already-exported report.
func (l *Ledger) Export() *model.LedgerSnapshot {
	snap := &model.LedgerSnapshot{
		Claims:         make([]model.Claim, 0, len(l.order)),
		Contradictions: make([]model.Contradiction, 0, len(l.contraOrder)),
	}
	for _, id := range l.order {
		snap.Claims = append(snap.Claims, *l.claims[id])
	}
	for _, id := range l.contraOrder {
		snap.Contradictions = append(snap.Contradictions, *l.contradictions[id])
	}
	return snap
}

func (l *Ledger) collect(ids []string) []model.Claim {
	out := make([]model.Claim, 0, len(ids))
	for _, id := range ids {
		if c, ok := l.claims[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}
