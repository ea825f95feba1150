package driven

import "github.com/custodia-labs/pathscout/internal/core/domain"

// DiseaseGeneReference is a curated gene-to-disease score table.
// Loaded once before a run and read-only afterwards.
type DiseaseGeneReference interface {
	// Lookup returns the score in [0, 1] of a gene, or false if absent.
	Lookup(gene string) (float64, bool)
}

// GeneRegistry knows the valid gene identifiers.
type GeneRegistry interface {
	// Known reports whether the gene identifier is recognised.
	Known(gene string) bool
}

// ExclusionList holds already-known pathways removed from the results.
type ExclusionList interface {
	// IsExcluded reports whether the pathway is already known, matching
	// either its canonical id or its name.
	IsExcluded(pathway domain.PathwayRecord) bool
}
