package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

func TestParseDiseaseTable(t *testing.T) {
	input := "gene\tscore\n# curated\nTNNT2\t0.95\nmyh6\t0.8\nTNNT2\t0.5\nGATA4\t1.7\n"

	table, err := ParseDiseaseTable(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	s, ok := table.Lookup("tnnt2")
	assert.True(t, ok)
	assert.Equal(t, 0.95, s)
	s, _ = table.Lookup("MYH6")
	assert.Equal(t, 0.8, s)
	s, _ = table.Lookup("GATA4")
	assert.Equal(t, 1.0, s)
	_, ok = table.Lookup("TP53")
	assert.False(t, ok)
}

func TestParseDiseaseTable_Errors(t *testing.T) {
	_, err := ParseDiseaseTable(strings.NewReader("TNNT2\n"))
	assert.Error(t, err)

	_, err = ParseDiseaseTable(strings.NewReader("TNNT2\t0.9\nMYH6\thigh\n"))
	assert.Error(t, err)
}

func TestNewDiseaseTable(t *testing.T) {
	table := NewDiseaseTable(map[string]float64{"a": -1, "B": 0.3})
	s, ok := table.Lookup("A")
	assert.True(t, ok)
	assert.Zero(t, s)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	disease := filepath.Join(dir, "disease.tsv")
	known := filepath.Join(dir, "known.txt")
	require.NoError(t, os.WriteFile(disease, []byte("TNNT2\t0.9\n"), 0600))
	require.NoError(t, os.WriteFile(known, []byte("# already studied\nKEGG:HSA04390\n\nWnt signaling pathway\n"), 0600))

	table, err := LoadDiseaseTable(disease)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	list, err := LoadExclusionList(known)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())
	assert.True(t, list.IsExcluded(domain.NormalizePathway(domain.DatabaseKEGG, "hsa04390", "Hippo", "", nil)))

	_, err = LoadDiseaseTable(filepath.Join(dir, "missing.tsv"))
	assert.Error(t, err)
	_, err = LoadExclusionList(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
