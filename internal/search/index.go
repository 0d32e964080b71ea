// Package search provides fuzzy player lookup over one refresh cycle's
// standings using an in-memory Bleve index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/leaderboard"
)

const defaultLimit = 10

// PlayerIndex is a throwaway index built from a single snapshot.
//
// Thread safety: all public methods are safe for concurrent use.
type PlayerIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// Hit is one matching player.
type Hit struct {
	Player string  `json:"player"`
	Team   string  `json:"team,omitempty"`
	Score  float64 `json:"score"`
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// Display name, stored for results.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = keyword.Name
	nameFieldMapping.Store = true
	nameFieldMapping.Index = false
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Accent-folded name, the search target.
	foldedFieldMapping := bleve.NewTextFieldMapping()
	foldedFieldMapping.Analyzer = simple.Name
	foldedFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("folded", foldedFieldMapping)

	teamFieldMapping := bleve.NewTextFieldMapping()
	teamFieldMapping.Analyzer = simple.Name
	teamFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("team", teamFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Build indexes the players of rows. A player listed twice is indexed once.
func Build(rows []leaderboard.IndividualRow, logger *slog.Logger) (*PlayerIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	batch := index.NewBatch()
	for _, row := range rows {
		doc := map[string]any{
			"name":   row.Player,
			"folded": Fold(row.Player),
			"team":   row.Team,
		}
		if err := batch.Index(row.Player, doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("batch index %q: %w", row.Player, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	logger.Debug("built player index", "players", batch.Size())

	return &PlayerIndex{index: index, logger: logger}, nil
}

// Search finds players whose name matches q exactly, by prefix, or within
// one edit per word. An empty query returns no hits.
func (p *PlayerIndex) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, fmt.Errorf("player index closed")
	}

	tokens := terms(q)
	if len(tokens) == 0 {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(tokens), limit, 0, false)
	req.Fields = []string{"name", "team"}
	req.SortBy([]string{"-_score", "_id"})

	res, err := p.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Player: h.ID, Score: h.Score}
		if team, ok := h.Fields["team"].(string); ok {
			hit.Team = team
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildQuery requires every query word to match some part of the name.
func buildQuery(tokens []string) query.Query {
	perToken := make([]query.Query, 0, len(tokens))
	for _, tok := range tokens {
		exact := bleve.NewTermQuery(tok)
		exact.SetField("folded")
		exact.SetBoost(3.0)

		prefix := bleve.NewPrefixQuery(tok)
		prefix.SetField("folded")
		prefix.SetBoost(1.5)

		alternatives := []query.Query{exact, prefix}

		// Fuzzy matching on very short words matches nearly everything.
		if len([]rune(tok)) >= 3 {
			fuzzy := bleve.NewFuzzyQuery(tok)
			fuzzy.SetField("folded")
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(0.8)
			alternatives = append(alternatives, fuzzy)
		}

		perToken = append(perToken, bleve.NewDisjunctionQuery(alternatives...))
	}
	if len(perToken) == 1 {
		return perToken[0]
	}
	return bleve.NewConjunctionQuery(perToken...)
}

// Count returns the number of indexed players.
func (p *PlayerIndex) Count() (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index.DocCount()
}

// Close releases the index. Safe to call more than once.
func (p *PlayerIndex) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.index.Close()
}
