package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Result window bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search.
type Params struct {
	Query  string
	Limit  int // 1..100, default 20
	Offset int
}

// Result is one page of search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a matching book.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	PageCount  int               `json:"page_count"`
	HasCover   bool              `json:"has_cover"`
	CreatedAt  int64             `json:"created_at"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs a query over titles, page text and captions.
// An empty query lists every book, most recent first.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)
	params.Offset = max(params.Offset, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params.Query), params.Limit, params.Offset, false)
	req.Fields = []string{"title", "page_count", "has_cover", "created_at"}

	if params.Query == "" {
		req.SortBy([]string{"-created_at", "_id"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("text")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["page_count"].(float64); ok {
			hit.PageCount = int(v)
		}
		if v, ok := h.Fields["has_cover"].(bool); ok {
			hit.HasCover = v
		}
		if v, ok := h.Fields["created_at"].(float64); ok {
			hit.CreatedAt = int64(v)
		}
		for field, fragments := range h.Fragments {
			if len(fragments) == 0 {
				continue
			}
			if hit.Highlights == nil {
				hit.Highlights = make(map[string]string)
			}
			hit.Highlights[field] = fragments[0]
		}
		out.Hits = append(out.Hits, hit)
	}

	return out, nil
}

// buildQuery matches title first, then page text and captions, with fuzzy and
// prefix matching on the title for typos and type-ahead.
func buildQuery(q string) query.Query {
	if q == "" {
		return bleve.NewMatchAllQuery()
	}

	title := bleve.NewMatchQuery(q)
	title.SetField("title")
	title.SetBoost(3.0)

	text := bleve.NewMatchQuery(q)
	text.SetField("text")

	captions := bleve.NewMatchQuery(q)
	captions.SetField("captions")
	captions.SetBoost(0.8)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)

	queries := []query.Query{title, text, captions, fuzzy}

	if len(q) >= 2 && !strings.ContainsAny(q, " \t") {
		prefix := bleve.NewPrefixQuery(strings.ToLower(q))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
