// Package file loads the curated reference tables from disk.
//
// Tables are read once at startup and never modified afterwards, so the
// returned values are safe to share across concurrent runs.
package file

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/pathscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure DiseaseTable implements the interface.
var _ driven.DiseaseGeneReference = (*DiseaseTable)(nil)

// DiseaseTable maps genes to a disease-association score in [0, 1].
type DiseaseTable struct {
	scores map[string]float64
}

// NewDiseaseTable creates a table from a gene-to-score map.
// Scores are clamped to [0, 1]; duplicate genes keep the highest score.
func NewDiseaseTable(scores map[string]float64) *DiseaseTable {
	t := &DiseaseTable{scores: make(map[string]float64, len(scores))}
	for g, s := range scores {
		t.add(g, s)
	}
	return t
}

func (t *DiseaseTable) add(gene string, score float64) {
	gene = domain.NormalizeSymbol(gene)
	if gene == "" {
		return
	}
	score = min(max(score, 0), 1)
	if cur, ok := t.scores[gene]; !ok || score > cur {
		t.scores[gene] = score
	}
}

// Lookup returns the score of a gene.
func (t *DiseaseTable) Lookup(gene string) (float64, bool) {
	s, ok := t.scores[domain.NormalizeSymbol(gene)]
	return s, ok
}

// Len returns the number of genes in the table.
func (t *DiseaseTable) Len() int {
	return len(t.scores)
}

// LoadDiseaseTable reads a `gene<TAB>score` file. A non-numeric first line
// is treated as a header.
func LoadDiseaseTable(path string) (*DiseaseTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening disease table: %w", err)
	}
	defer f.Close()

	t, err := ParseDiseaseTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// ParseDiseaseTable reads a disease table.
func ParseDiseaseTable(r io.Reader) (*DiseaseTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	t := &DiseaseTable{scores: make(map[string]float64)}
	for line := 1; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected gene and score", line)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid score %q", line, fields[1])
		}
		t.add(fields[0], score)
	}
	return t, nil
}

// LoadExclusionList reads already-known pathways, one canonical id or name
// per line. Blank lines and # comments are ignored.
func LoadExclusionList(path string) (*memory.ExclusionList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exclusion list: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return memory.NewExclusionList(entries), nil
}
