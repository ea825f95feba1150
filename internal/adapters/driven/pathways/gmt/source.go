// Package gmt provides a PathwayMembershipSource over GMT gene set files.
//
// A GMT line is `name<TAB>description<TAB>gene...`. WikiPathways-style names
// of the form `Name%Release%WP123%Species` carry their id in the third
// field; Reactome files carry it in the description column. Otherwise the
// id is derived from the name.
package gmt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure Source implements the interfaces.
var (
	_ driven.PathwayMembershipSource = (*Source)(nil)
	_ driven.GeneRegistry            = (*Source)(nil)
)

// Source holds canonical pathway records per database, loaded once.
type Source struct {
	pathways map[domain.DatabaseKind][]domain.PathwayRecord

	// byGene maps a gene to indices into pathways[db].
	byGene map[domain.DatabaseKind]map[string][]int
}

// NewSource creates an empty source.
func NewSource() *Source {
	return &Source{
		pathways: make(map[domain.DatabaseKind][]domain.PathwayRecord),
		byGene:   make(map[domain.DatabaseKind]map[string][]int),
	}
}

// LoadFile adds the gene sets of a GMT file under the given database.
func (s *Source) LoadFile(db domain.DatabaseKind, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening gene set file: %w", err)
	}
	defer f.Close()

	if err := s.Load(db, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Load adds the gene sets read from r under the given database.
func (s *Source) Load(db domain.DatabaseKind, r io.Reader) error {
	if !db.IsValid() {
		return fmt.Errorf("unknown database %q", db)
	}
	if s.byGene[db] == nil {
		s.byGene[db] = make(map[string][]int)
	}

	seen := make(map[string]struct{}, len(s.pathways[db]))
	for _, p := range s.pathways[db] {
		seen[p.CanonicalID()] = struct{}{}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			return fmt.Errorf("line %d: expected name, description and genes", line)
		}

		name, id, description := splitHeader(fields[0], fields[1])
		rec := domain.NormalizePathway(db, id, name, description, fields[2:])
		if _, dup := seen[rec.CanonicalID()]; dup {
			continue
		}
		seen[rec.CanonicalID()] = struct{}{}

		idx := len(s.pathways[db])
		s.pathways[db] = append(s.pathways[db], rec)
		for _, g := range rec.Members {
			s.byGene[db][g] = append(s.byGene[db][g], idx)
		}
	}
	return scanner.Err()
}

// splitHeader extracts display name, native id and description.
func splitHeader(name, description string) (string, string, string) {
	if parts := strings.Split(name, "%"); len(parts) >= 3 {
		return parts[0], parts[2], ""
	}
	d := strings.TrimSpace(description)
	if d != "" && !strings.Contains(d, " ") && !strings.Contains(d, "://") {
		return prettyName(name), d, ""
	}
	if strings.Contains(d, "://") {
		d = ""
	}
	return prettyName(name), "", d
}

// prettyName turns MSigDB-style KEGG_CELL_CYCLE into "KEGG cell cycle".
func prettyName(name string) string {
	if strings.Contains(name, " ") || !strings.Contains(name, "_") {
		return name
	}
	return strings.ReplaceAll(name, "_", " ")
}

// Name returns the source name.
func (s *Source) Name() string {
	return "gmt"
}

// GetPathways returns every pathway of the database with at least one of
// the genes, ordered by canonical id.
func (s *Source) GetPathways(ctx context.Context, genes []string, database domain.DatabaseKind) ([]domain.PathwayRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	index := s.byGene[database]
	hit := make(map[int]struct{})
	for _, g := range genes {
		for _, i := range index[domain.NormalizeSymbol(g)] {
			hit[i] = struct{}{}
		}
	}

	out := make([]domain.PathwayRecord, 0, len(hit))
	for i := range hit {
		out = append(out, s.pathways[database][i])
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CanonicalID() < out[b].CanonicalID() })
	return out, nil
}

// Known reports whether the gene is a member of any loaded pathway.
func (s *Source) Known(gene string) bool {
	sym := domain.NormalizeSymbol(gene)
	for _, index := range s.byGene {
		if _, ok := index[sym]; ok {
			return true
		}
	}
	return false
}

// Databases returns the databases that have gene sets loaded, sorted.
func (s *Source) Databases() []domain.DatabaseKind {
	out := make([]domain.DatabaseKind, 0, len(s.pathways))
	for db := range s.pathways {
		out = append(out, db)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of pathways loaded for a database.
func (s *Source) Count(db domain.DatabaseKind) int {
	return len(s.pathways[db])
}
