package search

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/mcpmux/mcpmux/pkg/types"
)

var tokenPattern = regexp.MustCompile(`[^A-Za-z0-9]+`)

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	parts := tokenPattern.Split(lower, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// bm25Config is the provider_config shape for method BM25.
type bm25Config struct {
	K1     float64
	B      float64
	Fields []string
}

func parseBM25Config(raw map[string]any) bm25Config {
	cfg := bm25Config{K1: 1.2, B: 0.75, Fields: defaultRegexFields}
	if raw == nil {
		return cfg
	}
	if v, ok := raw["k1"].(float64); ok {
		cfg.K1 = v
	}
	if v, ok := raw["b"].(float64); ok {
		cfg.B = v
	}
	if v, ok := raw["fields"]; ok {
		if list, ok := v.([]any); ok {
			fields := make([]string, 0, len(list))
			for _, f := range list {
				if s, ok := f.(string); ok {
					fields = append(fields, s)
				}
			}
			if len(fields) > 0 {
				cfg.Fields = fields
			}
		}
	}
	return cfg
}

// BM25Provider is the §4.A.2 Okapi BM25 search provider. A fresh index is
// built over availableTools on every Search call; nothing is cached
// between calls because the tool pool itself is not stable across requests.
type BM25Provider struct {
	cfg bm25Config
}

func NewBM25Provider() *BM25Provider {
	return &BM25Provider{cfg: bm25Config{K1: 1.2, B: 0.75, Fields: defaultRegexFields}}
}

func (p *BM25Provider) Name() types.SearchMethod { return types.SearchMethodBM25 }

func (p *BM25Provider) Initialize(ctx context.Context, config map[string]any) error {
	p.cfg = parseBM25Config(config)
	return nil
}

func (p *BM25Provider) Dispose(ctx context.Context) error { return nil }

func (p *BM25Provider) document(t types.Tool) string {
	parts := make([]string, 0, len(p.cfg.Fields))
	for _, field := range p.cfg.Fields {
		if text := fieldText(t, field); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func (p *BM25Provider) Search(
	ctx context.Context, query types.SearchQuery, availableTools []types.AvailableTool,
) ([]types.SearchResult, error) {
	maxResults := effectiveMaxResults(query.MaxResults)

	if query.Query == "" {
		return emptyQueryResults(availableTools, maxResults), nil
	}

	queryTokens := tokenize(query.Query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	n := len(availableTools)
	if n == 0 {
		return nil, nil
	}

	docTokens := make([][]string, n)
	docTF := make([]map[string]int, n)
	docLen := make([]int, n)
	docFreq := make(map[string]int)
	var totalLen int

	for i, at := range availableTools {
		tokens := tokenize(p.document(at.Tool))
		docTokens[i] = tokens
		docLen[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
		docTF[i] = tf
	}

	avgdl := float64(totalLen) / float64(n)
	if avgdl == 0 {
		return nil, nil
	}

	idf := make(map[string]float64, len(docFreq))
	nf := float64(n)
	for term, df := range docFreq {
		idf[term] = math.Log((nf-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}

	denom := float64(len(queryTokens)) * math.Log(nf+1) * (p.cfg.K1 + 1)

	results := make([]types.SearchResult, 0, n)
	for i, at := range availableTools {
		var raw float64
		matchedTerms := make([]string, 0)
		matchedSeen := make(map[string]bool)
		for _, qt := range queryTokens {
			tf := docTF[i][qt]
			if tf == 0 {
				continue
			}
			termIDF := idf[qt]
			numerator := termIDF * float64(tf) * (p.cfg.K1 + 1)
			denominator := float64(tf) + p.cfg.K1*(1-p.cfg.B+p.cfg.B*float64(docLen[i])/avgdl)
			raw += numerator / denominator
			if !matchedSeen[qt] {
				matchedSeen[qt] = true
				matchedTerms = append(matchedTerms, qt)
			}
		}
		if len(matchedTerms) == 0 {
			continue
		}

		var normalized float64
		if denom > 0 {
			normalized = clampScore(raw / denom)
		}
		if normalized <= 0 {
			continue
		}

		results = append(results, types.SearchResult{
			Tool:        at.Tool,
			ServerUUID:  at.ServerUUID,
			Score:       normalized,
			MatchReason: bm25MatchReason(matchedTerms),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func bm25MatchReason(terms []string) string {
	if len(terms) <= 3 {
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		return strings.Join(quoted, ", ")
	}
	return fmt.Sprintf("Matched %d terms", len(terms))
}
