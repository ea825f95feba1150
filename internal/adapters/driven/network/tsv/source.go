// Package tsv provides a NeighborSource over a tab-separated gene
// interaction table.
//
// Each line holds `gene_a<TAB>gene_b<TAB>score`. Lines starting with # and a
// header whose score column is not numeric are skipped. Scores above 1 are
// read as STRING-style integers in [0, 1000] and scaled to [0, 1].
package tsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure NeighborSource implements the interface.
var _ driven.NeighborSource = (*NeighborSource)(nil)

// link is one adjacency entry; to indexes the gene table.
type link struct {
	to    int
	score float64
}

// NeighborSource serves neighbours from an interaction table held in
// memory. Genes live in one table; adjacency refers to them by index.
type NeighborSource struct {
	name  string
	genes []string
	index map[string]int
	adj   [][]link
}

// Load reads an interaction table from a file.
func Load(path string) (*NeighborSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening interaction table: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

// Parse reads an interaction table.
func Parse(r io.Reader) (*NeighborSource, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	s := &NeighborSource{name: "interaction-table", index: make(map[string]int)}
	best := make(map[[2]int]float64)

	line := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: expected 3 columns, got %d", line, len(fields))
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: invalid score %q", line, fields[2])
		}
		if score > 1 {
			score /= 1000
		}

		a, b := s.gene(fields[0]), s.gene(fields[1])
		if a < 0 || b < 0 || a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if score > best[key] {
			best[key] = score
		}
	}

	s.adj = make([][]link, len(s.genes))
	for key, score := range best {
		s.adj[key[0]] = append(s.adj[key[0]], link{to: key[1], score: score})
		s.adj[key[1]] = append(s.adj[key[1]], link{to: key[0], score: score})
	}
	for i := range s.adj {
		links := s.adj[i]
		sort.Slice(links, func(x, y int) bool {
			if links[x].score != links[y].score {
				return links[x].score > links[y].score
			}
			return s.genes[links[x].to] < s.genes[links[y].to]
		})
	}
	return s, nil
}

func (s *NeighborSource) gene(raw string) int {
	sym := domain.NormalizeSymbol(raw)
	if sym == "" {
		return -1
	}
	if i, ok := s.index[sym]; ok {
		return i
	}
	s.index[sym] = len(s.genes)
	s.genes = append(s.genes, sym)
	return len(s.genes) - 1
}

// Name returns the source name.
func (s *NeighborSource) Name() string {
	return s.name
}

// GetNeighbors returns up to k partners of gene ordered by score, then
// symbol. An unknown gene has no neighbours.
func (s *NeighborSource) GetNeighbors(ctx context.Context, gene string, k int) ([]domain.NeighborGene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := s.index[domain.NormalizeSymbol(gene)]
	if !ok {
		return []domain.NeighborGene{}, nil
	}
	links := s.adj[i]
	if k >= 0 && len(links) > k {
		links = links[:k]
	}
	out := make([]domain.NeighborGene, 0, len(links))
	for _, l := range links {
		out = append(out, domain.NeighborGene{Symbol: s.genes[l.to], Score: l.score, Source: s.name})
	}
	return out, nil
}

// Known reports whether the gene appears in the table.
func (s *NeighborSource) Known(gene string) bool {
	_, ok := s.index[domain.NormalizeSymbol(gene)]
	return ok
}

// Size returns the number of genes in the table.
func (s *NeighborSource) Size() int {
	return len(s.genes)
}
