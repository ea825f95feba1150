package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// DiseaseScorer derives a disease-association score from evidence genes.
type DiseaseScorer struct {
	reference driven.DiseaseGeneReference
	topK      int
	decay     float64
}

// NewDiseaseScorer creates a scorer over a reference table.
func NewDiseaseScorer(reference driven.DiseaseGeneReference, topK int, decay float64) *DiseaseScorer {
	return &DiseaseScorer{reference: reference, topK: topK, decay: decay}
}

// Score returns the decay-weighted average of the top K gene scores.
// Genes missing from the reference score 0 and still take a rank slot.
func (d *DiseaseScorer) Score(genes []string) float64 {
	if len(genes) == 0 {
		return 0
	}
	scores := make([]float64, len(genes))
	for i, g := range genes {
		if d.reference != nil {
			if s, ok := d.reference.Lookup(g); ok {
				scores[i] = clamp01(s)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	k := len(scores)
	if d.topK > 0 && k > d.topK {
		k = d.topK
	}
	var weighted, total float64
	for i := 0; i < k; i++ {
		w := math.Pow(d.decay, float64(i))
		weighted += w * scores[i]
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
