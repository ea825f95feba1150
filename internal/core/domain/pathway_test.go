package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePathway_CanonicalIDs(t *testing.T) {
	tests := []struct {
		name string
		db   DatabaseKind
		id   string
		want string
	}{
		{"kegg strips path prefix", DatabaseKEGG, "path:hsa04390", "KEGG:HSA04390"},
		{"reactome upper-cased", DatabaseReactome, "r-hsa-2028269", "REACTOME:R-HSA-2028269"},
		{"go pads digits", DatabaseGOBP, "GO:31099", "GO:0031099"},
		{"wikipathways drops revision", DatabaseWikiPathways, "WP2032_r123", "WP:2032"},
		{"custom slugified", DatabaseCustom, "my set / v2", "CUSTOM:MY_SET_V2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizePathway(tt.db, tt.id, "name", "", nil)
			assert.Equal(t, tt.want, p.CanonicalID())
		})
	}
}

func TestNormalizePathway_IDFromName(t *testing.T) {
	p := NormalizePathway(DatabaseHallmark, "", "HALLMARK_HYPOXIA", "", []string{"vegfa", " HIF1A", "VEGFA"})

	assert.Equal(t, "HALLMARK:HALLMARK_HYPOXIA", p.CanonicalID())
	assert.Equal(t, []string{"HIF1A", "VEGFA"}, p.Members)
}

func TestParseDatabaseKind(t *testing.T) {
	k, ok := ParseDatabaseKind(" Reactome ")
	assert.True(t, ok)
	assert.Equal(t, DatabaseReactome, k)

	_, ok = ParseDatabaseKind("biocarta")
	assert.False(t, ok)
}

func TestAggregatedPathway_PrimaryIDsAndEvidence(t *testing.T) {
	agg := AggregatedPathway{
		Sources: []SecondaryPathwayInstance{
			{SourcePrimary: "KEGG:B", EvidenceGenes: []string{"YAP1", "TEAD1"}},
			{SourcePrimary: "KEGG:A", EvidenceGenes: []string{"YAP1"}},
			{SourcePrimary: "KEGG:B", EvidenceGenes: []string{"LATS1"}},
		},
	}

	assert.Equal(t, []string{"KEGG:A", "KEGG:B"}, agg.PrimaryIDs())
	assert.Equal(t, []string{"LATS1", "TEAD1", "YAP1"}, agg.EvidenceGenes())
}
