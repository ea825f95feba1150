package domain

import "time"

// RunStatus is the lifecycle state of an analysis run.
type RunStatus string

// Run states.
const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// AnalysisRun is the persisted summary of one analysis.
type AnalysisRun struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"created_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Status     RunStatus               `json:"status"`
	LastStage  Stage                   `json:"last_stage"`
	Error      string                  `json:"error,omitempty"`
	Seeds      []SeedGene              `json:"seeds"`
	Strategy   AggregationStrategyName `json:"strategy"`

	Hypotheses  []ScoredHypothesis `json:"hypotheses"`
	Lineages    []Lineage          `json:"lineages"`
	Diagnostics []Diagnostic       `json:"diagnostics"`
}

// Records returns the output rows in rank order.
func (r *AnalysisRun) Records() []HypothesisRecord {
	out := make([]HypothesisRecord, 0, len(r.Hypotheses))
	for i := range r.Hypotheses {
		out = append(out, r.Hypotheses[i].Record())
	}
	return out
}

// Lineage returns the lineage of a pathway by canonical id.
func (r *AnalysisRun) Lineage(pathwayID string) (*Lineage, error) {
	for i := range r.Lineages {
		if r.Lineages[i].PathwayID == pathwayID {
			return &r.Lineages[i], nil
		}
	}
	return nil, ErrNotFound
}
