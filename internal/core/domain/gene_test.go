package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWellFormedSymbol(t *testing.T) {
	assert.True(t, IsWellFormedSymbol("TP53"))
	assert.True(t, IsWellFormedSymbol("NKX2-5"))
	assert.True(t, IsWellFormedSymbol("C1ORF112"))
	assert.False(t, IsWellFormedSymbol(""))
	assert.False(t, IsWellFormedSymbol("tp53"))
	assert.False(t, IsWellFormedSymbol("TP 53"))
	assert.False(t, IsWellFormedSymbol("-ABC"))
}

func TestNeighborhood_IndexAndOrigins(t *testing.T) {
	n := NewNeighborhood([]GeneRecord{
		{Symbol: "YAP1", IsSeed: true, Seeds: []string{"YAP1"}},
		{Symbol: "TEAD1", Score: 0.9, Seeds: []string{"YAP1", "NRG1"}},
		{Symbol: "NRG1", IsSeed: true, Seeds: []string{"NRG1"}},
	}, []Edge{
		{From: 0, To: 1, Score: 0.9},
		{From: 2, To: 1, Score: 0.4},
		{From: 0, To: 7, Score: 0.1},
		{From: 1, To: 1, Score: 1},
	})

	assert.Equal(t, 3, n.Size())
	assert.Len(t, n.Edges, 2)
	assert.True(t, n.Contains("TEAD1"))
	assert.False(t, n.Contains("ERBB2"))
	assert.Equal(t, []string{"NRG1", "TEAD1", "YAP1"}, n.Symbols())
	assert.Equal(t, []string{"NRG1", "YAP1"}, n.OriginSeeds([]string{"TEAD1", "MISSING"}))
}
