// Package neo4j provides a NeighborSource backed by a gene interaction graph
// in Neo4j or Memgraph.
//
// Genes are (:Gene {symbol}) nodes linked by [:INTERACTS_WITH {score}]
// relationships; direction is ignored.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure NeighborSource implements the interface.
var _ driven.NeighborSource = (*NeighborSource)(nil)

const neighborsQuery = `
MATCH (g:Gene {symbol: $gene})-[r:INTERACTS_WITH]-(n:Gene)
WHERE n.symbol <> $gene
RETURN n.symbol AS symbol, max(r.score) AS score
ORDER BY score DESC, symbol ASC
LIMIT $k`

// GraphDriver runs Cypher queries.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

// Config holds connection settings.
type Config struct {
	URI      string
	Username string
	Password string
}

// BoltDriver is a GraphDriver over the official Bolt driver.
type BoltDriver struct {
	driver neo4j.DriverWithContext
}

// NewBoltDriver connects and verifies connectivity.
func NewBoltDriver(ctx context.Context, cfg Config) (*BoltDriver, error) {
	d, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("connecting to %s: %w", cfg.URI, err)
	}
	return &BoltDriver{driver: d}, nil
}

// ExecuteQuery runs a read query and returns all records.
func (d *BoltDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("executing query: %w", err)
	}
	return *result, nil
}

// Close closes the underlying driver.
func (d *BoltDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

// NeighborSource answers neighbour lookups with one Cypher query per gene.
type NeighborSource struct {
	driver GraphDriver
}

// NewNeighborSource creates a neighbour source over a graph driver.
func NewNeighborSource(driver GraphDriver) *NeighborSource {
	return &NeighborSource{driver: driver}
}

// Name returns the source name.
func (s *NeighborSource) Name() string {
	return "neo4j"
}

// GetNeighbors returns up to k interaction partners of gene, best first.
func (s *NeighborSource) GetNeighbors(ctx context.Context, gene string, k int) ([]domain.NeighborGene, error) {
	result, err := s.driver.ExecuteQuery(ctx, neighborsQuery, map[string]any{
		"gene": gene,
		"k":    int64(k),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.NeighborGene, 0, len(result.Records))
	for _, rec := range result.Records {
		symbol, _ := rec.Get("symbol")
		score, _ := rec.Get("score")

		sym, ok := symbol.(string)
		if !ok || sym == "" {
			continue
		}
		out = append(out, domain.NeighborGene{
			Symbol: domain.NormalizeSymbol(sym),
			Score:  toFloat(score),
			Source: s.Name(),
		})
	}
	return out, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
