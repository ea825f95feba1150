// Package domain defines the core entities of the pathway discovery engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SeedGene, NeighborGene, Neighborhood: the expanded gene network
//   - PathwayRecord: the canonical, source-independent pathway record
//   - PrimaryPathway, SecondaryPathwayInstance, AggregatedPathway: the
//     discovery lineage, always pointing upstream
//   - ScoredHypothesis, HypothesisRecord, Lineage: the ranked output
//   - AnalysisConfig, Lexicon: run configuration and reference vocabulary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
