package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiseaseScorer_DecayWeightedAverage(t *testing.T) {
	ref := mockReference{"A": 0.1, "B": 0.9, "C": 0.8}
	d := NewDiseaseScorer(ref, 3, 0.9)

	want := (1.0*0.9 + 0.9*0.8 + 0.81*0.1) / (1.0 + 0.9 + 0.81)
	assert.InDelta(t, want, d.Score([]string{"A", "B", "C"}), 1e-12)
	assert.InDelta(t, 0.62768, d.Score([]string{"C", "A", "B"}), 1e-4)
}

func TestDiseaseScorer_AbsentGenesTakeSlots(t *testing.T) {
	ref := mockReference{"A": 1.0}
	d := NewDiseaseScorer(ref, 10, 0.5)

	// Weights 1, 0.5 over scores 1, 0.
	assert.InDelta(t, 1.0/1.5, d.Score([]string{"A", "UNKNOWN"}), 1e-12)
}

func TestDiseaseScorer_TopK(t *testing.T) {
	ref := mockReference{"A": 1.0, "B": 1.0, "C": 0.0}
	d := NewDiseaseScorer(ref, 2, 0.9)

	assert.InDelta(t, 1.0, d.Score([]string{"A", "B", "C"}), 1e-12)
}

func TestDiseaseScorer_Empty(t *testing.T) {
	d := NewDiseaseScorer(mockReference{}, 10, 0.9)
	assert.Zero(t, d.Score(nil))
	assert.Zero(t, NewDiseaseScorer(nil, 10, 0.9).Score([]string{"A"}))
}
