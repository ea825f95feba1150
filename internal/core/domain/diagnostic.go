package domain

// Stage identifies a pipeline stage.
type Stage string

// Pipeline stages in execution order.
const (
	StageNone         Stage = ""
	StageValidation   Stage = "validation"
	StageNeighborhood Stage = "neighborhood"
	StageEnrichment   Stage = "enrichment"
	StageDiscovery    Stage = "discovery"
	StageAggregation  Stage = "aggregation"
	StageRelevance    Stage = "relevance"
	StageScoring      Stage = "scoring"
	StageComplete     Stage = "complete"
)

// DiagnosticKind classifies a localised, non-fatal problem.
type DiagnosticKind string

// Diagnostic kinds.
const (
	// DiagnosticUnavailable is a collaborator lookup that exhausted its retries.
	DiagnosticUnavailable DiagnosticKind = "external_source_unavailable"

	// DiagnosticValidation is a rejected seed gene.
	DiagnosticValidation DiagnosticKind = "validation_error"

	// DiagnosticDegenerate marks an empty intermediate result.
	DiagnosticDegenerate DiagnosticKind = "statistical_degeneracy"
)

// Diagnostic records a degraded item without aborting the run.
type Diagnostic struct {
	Stage    Stage          `json:"stage"`
	Kind     DiagnosticKind `json:"kind"`
	Source   string         `json:"source,omitempty"`
	Item     string         `json:"item"`
	Attempts int            `json:"attempts,omitempty"`
	Message  string         `json:"message"`
}
