// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for an analysis to run:
//
//   - NeighborSource: functional neighbours of a gene
//   - PathwayMembershipSource: pathway memberships per database
//   - PathwayDiscoverer: pathways related to a primary pathway
//   - DiseaseGeneReference: curated gene-to-disease scores
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - LiteratureSource: citation evidence. Without it every hypothesis has
//     zero citations and no literature support.
//   - GeneRegistry: known gene identifiers. Without it seeds are validated
//     by symbol syntax only.
//   - ExclusionList: already-known pathways. Without it nothing is excluded.
//   - RunStore: run persistence. Without it results live only in memory.
//   - CallObserver: call and stage metrics.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
