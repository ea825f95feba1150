package domain

import (
	"regexp"
	"sort"
	"strings"
)

// symbolPattern accepts HGNC-style symbols (TP53, HLA-DRB1, C1orf112).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-\.]{0,19}$`)

// SeedGene is a user-supplied starting gene.
type SeedGene struct {
	Symbol string `json:"symbol"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// NormalizeSymbol trims and upper-cases a gene identifier.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsWellFormedSymbol reports whether s looks like a gene symbol.
func IsWellFormedSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// NeighborGene is a functional neighbour of one or more seeds.
type NeighborGene struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`

	// Seeds lists the seeds this gene was reached from, sorted.
	Seeds []string `json:"seeds,omitempty"`
}

// GeneRecord is one row of the neighborhood gene table.
type GeneRecord struct {
	Symbol string   `json:"symbol"`
	Score  float64  `json:"score"`
	IsSeed bool     `json:"is_seed"`
	Seeds  []string `json:"seeds"`
}

// Edge links two genes of a Neighborhood by table index.
type Edge struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	Score float64 `json:"score"`
}

// Neighborhood is the bounded gene network expanded from the seeds.
// Genes are owned by the table; edges refer to them by index.
type Neighborhood struct {
	Genes []GeneRecord `json:"genes"`
	Edges []Edge       `json:"edges"`
	index map[string]int
}

// NewNeighborhood builds a neighborhood from a gene table and edge list.
// Edges pointing outside the table are dropped.
func NewNeighborhood(genes []GeneRecord, edges []Edge) *Neighborhood {
	n := &Neighborhood{Genes: genes, index: make(map[string]int, len(genes))}
	for i, g := range genes {
		n.index[g.Symbol] = i
	}
	for _, e := range edges {
		if e.From < 0 || e.To < 0 || e.From >= len(genes) || e.To >= len(genes) || e.From == e.To {
			continue
		}
		n.Edges = append(n.Edges, e)
	}
	return n
}

// Index returns the table index of a gene.
func (n *Neighborhood) Index(symbol string) (int, bool) {
	if n == nil {
		return 0, false
	}
	if n.index == nil {
		n.index = make(map[string]int, len(n.Genes))
		for i, g := range n.Genes {
			n.index[g.Symbol] = i
		}
	}
	i, ok := n.index[symbol]
	return i, ok
}

// Contains reports whether the gene is part of the neighborhood.
func (n *Neighborhood) Contains(symbol string) bool {
	_, ok := n.Index(symbol)
	return ok
}

// Symbols returns all gene symbols, sorted.
func (n *Neighborhood) Symbols() []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Genes))
	for _, g := range n.Genes {
		out = append(out, g.Symbol)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of genes.
func (n *Neighborhood) Size() int {
	if n == nil {
		return 0
	}
	return len(n.Genes)
}

// OriginSeeds returns the sorted, de-duplicated seeds that reached any of
// the given genes.
func (n *Neighborhood) OriginSeeds(genes []string) []string {
	set := make(map[string]struct{})
	for _, g := range genes {
		i, ok := n.Index(g)
		if !ok {
			continue
		}
		for _, s := range n.Genes[i].Seeds {
			set[s] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
