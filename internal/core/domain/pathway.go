package domain

import (
	"sort"
	"strings"
	"unicode"
)

// DatabaseKind tags the pathway database a record was ingested from.
type DatabaseKind string

// Supported pathway databases.
const (
	DatabaseKEGG         DatabaseKind = "kegg"
	DatabaseReactome     DatabaseKind = "reactome"
	DatabaseGOBP         DatabaseKind = "go_bp"
	DatabaseWikiPathways DatabaseKind = "wikipathways"
	DatabaseHallmark     DatabaseKind = "hallmark"
	DatabaseCustom       DatabaseKind = "custom"
)

// ParseDatabaseKind converts a configuration string to a DatabaseKind.
func ParseDatabaseKind(s string) (DatabaseKind, bool) {
	k := DatabaseKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.IsValid()
}

// IsValid returns true if the database is recognised.
func (k DatabaseKind) IsValid() bool {
	switch k {
	case DatabaseKEGG, DatabaseReactome, DatabaseGOBP, DatabaseWikiPathways, DatabaseHallmark, DatabaseCustom:
		return true
	default:
		return false
	}
}

// Prefix returns the canonical id prefix for the database.
func (k DatabaseKind) Prefix() string {
	switch k {
	case DatabaseGOBP:
		return "GO"
	case DatabaseWikiPathways:
		return "WP"
	default:
		return strings.ToUpper(string(k))
	}
}

// String returns the string representation.
func (k DatabaseKind) String() string {
	return string(k)
}

// PathwayRecord is the canonical pathway record every source is normalised
// into. No source-specific shape flows past ingestion.
type PathwayRecord struct {
	Database    DatabaseKind `json:"database"`
	NativeID    string       `json:"native_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`

	// Members is the genome-wide member list, normalised and sorted.
	Members []string `json:"members,omitempty"`
}

// CanonicalID returns the database-qualified identifier, e.g. KEGG:HSA04010.
func (p PathwayRecord) CanonicalID() string {
	return p.Database.Prefix() + ":" + p.NativeID
}

// NormalizePathway builds a canonical record from source-specific fields.
func NormalizePathway(db DatabaseKind, nativeID, name, description string, members []string) PathwayRecord {
	name = strings.TrimSpace(name)
	id := normalizeNativeID(db, nativeID)
	if id == "" {
		id = slugify(name)
	}
	return PathwayRecord{
		Database:    db,
		NativeID:    id,
		Name:        name,
		Description: strings.TrimSpace(description),
		Members:     NormalizeGeneList(members),
	}
}

func normalizeNativeID(db DatabaseKind, id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return ""
	}
	switch db {
	case DatabaseKEGG:
		id = strings.TrimPrefix(id, "PATH:")
	case DatabaseGOBP:
		id = strings.TrimPrefix(id, "GO:")
		if len(id) < 7 && isDigits(id) {
			id = strings.Repeat("0", 7-len(id)) + id
		}
	case DatabaseWikiPathways:
		if i := strings.Index(id, "_R"); i > 0 {
			id = id[:i]
		}
		id = strings.TrimPrefix(id, "WP")
	}
	return slugify(id)
}

func slugify(s string) string {
	var b strings.Builder
	lastSep := false
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			b.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep && b.Len() > 0 {
			b.WriteByte('_')
			lastSep = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// NormalizeGeneList normalises, de-duplicates and sorts gene symbols.
func NormalizeGeneList(genes []string) []string {
	set := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		if g = NormalizeSymbol(g); g != "" {
			set[g] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Intersect returns the sorted genes of members that are in set.
func Intersect(members []string, set map[string]struct{}) []string {
	out := make([]string, 0)
	for _, m := range members {
		if _, ok := set[m]; ok {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// PrimaryPathway is a pathway found overrepresented in the neighborhood.
type PrimaryPathway struct {
	Pathway       PathwayRecord `json:"pathway"`
	EvidenceGenes []string      `json:"evidence_genes"`
	PathwaySize   int           `json:"pathway_size"`
	PValue        float64       `json:"p_value"`
	PAdj          float64       `json:"p_adj"`
}

// ID returns the canonical pathway id.
func (p PrimaryPathway) ID() string {
	return p.Pathway.CanonicalID()
}

// SecondaryPathwayInstance is one occurrence of a pathway discovered from a
// primary. Duplicates across primaries stay separate instances.
type SecondaryPathwayInstance struct {
	Pathway       PathwayRecord `json:"pathway"`
	EvidenceGenes []string      `json:"evidence_genes"`

	// SourcePrimary is the canonical id of the originating primary pathway.
	SourcePrimary string `json:"source_primary_pathway"`

	// Via names the discovery route (membership, literature).
	Via string `json:"via,omitempty"`
}

// ID returns the canonical id of the discovered pathway.
func (s SecondaryPathwayInstance) ID() string {
	return s.Pathway.CanonicalID()
}

// AggregationStrategyName identifies an aggregation strategy.
type AggregationStrategyName string

// Aggregation strategies. StrategyFallbackEmpty is only ever reported, never
// configured.
const (
	StrategyIntersection  AggregationStrategyName = "intersection"
	StrategyFrequency     AggregationStrategyName = "frequency"
	StrategyWeighted      AggregationStrategyName = "weighted"
	StrategyFallbackEmpty AggregationStrategyName = "fallback_empty"
)

// IsValid returns true for the configurable strategies.
func (s AggregationStrategyName) IsValid() bool {
	switch s {
	case StrategyIntersection, StrategyFrequency, StrategyWeighted:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s AggregationStrategyName) String() string {
	return string(s)
}

// AggregatedPathway merges every secondary instance sharing a canonical id.
type AggregatedPathway struct {
	CanonicalID string                     `json:"canonical_id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Database    DatabaseKind               `json:"database"`
	Sources     []SecondaryPathwayInstance `json:"source_secondary_pathways"`

	// Support is the number of distinct contributing primaries.
	Support  int                     `json:"support"`
	Score    float64                 `json:"aggregation_score"`
	Strategy AggregationStrategyName `json:"strategy"`
}

// PrimaryIDs returns the distinct contributing primary ids, sorted.
func (a AggregatedPathway) PrimaryIDs() []string {
	set := make(map[string]struct{}, len(a.Sources))
	for _, s := range a.Sources {
		set[s.SourcePrimary] = struct{}{}
	}
	return sortedKeys(set)
}

// EvidenceGenes returns the union of the instances' evidence genes, sorted.
func (a AggregatedPathway) EvidenceGenes() []string {
	set := make(map[string]struct{})
	for _, s := range a.Sources {
		for _, g := range s.EvidenceGenes {
			set[g] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// AggregationResult is the Aggregator's output.
type AggregationResult struct {
	Strategy       AggregationStrategyName `json:"strategy"`
	Pathways       []AggregatedPathway     `json:"pathways"`
	TotalInstances int                     `json:"total_instances"`
	Groups         int                     `json:"groups"`
}

// IsEmpty reports whether the aggregation produced no pathways.
func (r AggregationResult) IsEmpty() bool {
	return len(r.Pathways) == 0
}
