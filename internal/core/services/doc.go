// Package services implements the driving port interfaces.
// Services contain the pathway discovery engine and orchestrate
// calls to driven ports (adapters).
//
// The pipeline runs seven stages in order: neighborhood assembly, primary
// enrichment, secondary discovery, aggregation, relevance filtering,
// disease-association scoring and NES ranking. Per-item collaborator calls
// inside a stage run on a bounded worker pool with retries; results are
// merged in canonical order so rankings never depend on call timing.
package services
