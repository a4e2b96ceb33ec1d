package search

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/mcpmux/mcpmux/pkg/types"
)

var defaultRegexFields = []string{"name", "description"}

var fieldWeights = map[string]float64{
	"name":        0.6,
	"description": 0.3,
}

// regexConfig is the provider_config shape for method REGEX.
type regexConfig struct {
	Pattern       string
	CaseSensitive bool
	Fields        []string
}

func parseRegexConfig(raw map[string]any) regexConfig {
	cfg := regexConfig{Fields: defaultRegexFields}
	if raw == nil {
		return cfg
	}
	if v, ok := raw["pattern"].(string); ok {
		cfg.Pattern = v
	}
	if v, ok := raw["case_sensitive"].(bool); ok {
		cfg.CaseSensitive = v
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

// RegexProvider is the §4.A.1 literal-substring/regex search provider.
type RegexProvider struct {
	cfg regexConfig
}

func NewRegexProvider() *RegexProvider {
	return &RegexProvider{cfg: regexConfig{Fields: defaultRegexFields}}
}

func (p *RegexProvider) Name() types.SearchMethod { return types.SearchMethodRegex }

func (p *RegexProvider) Initialize(ctx context.Context, config map[string]any) error {
	p.cfg = parseRegexConfig(config)
	return nil
}

func (p *RegexProvider) Dispose(ctx context.Context) error { return nil }

func (p *RegexProvider) Search(
	ctx context.Context, query types.SearchQuery, availableTools []types.AvailableTool,
) ([]types.SearchResult, error) {
	maxResults := effectiveMaxResults(query.MaxResults)

	if query.Query == "" {
		return emptyQueryResults(availableTools, maxResults), nil
	}

	re := p.buildMatcher(query.Query)

	type fieldMatch struct {
		field      string
		index      int
		matchLen   int
	}

	results := make([]types.SearchResult, 0, len(availableTools))
	for _, at := range availableTools {
		var matches []fieldMatch
		for _, field := range p.cfg.Fields {
			text := fieldText(at.Tool, field)
			if text == "" {
				continue
			}
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			matches = append(matches, fieldMatch{field: field, index: loc[0], matchLen: loc[1] - loc[0]})
		}
		if len(matches) == 0 {
			continue
		}

		var score float64
		matchedFields := make([]string, 0, len(matches))
		for _, m := range matches {
			weight := fieldWeights[m.field]
			positionBonus := 0.20 - 0.003*float64(m.index)
			if positionBonus < 0.05 {
				positionBonus = 0.05
			}
			lengthBonus := 0.02 * float64(m.matchLen)
			if lengthBonus > 0.20 {
				lengthBonus = 0.20
			}
			score += weight + positionBonus + lengthBonus
			matchedFields = append(matchedFields, m.field)
		}
		score = clampScore(score)

		results = append(results, types.SearchResult{
			Tool:        at.Tool,
			ServerUUID:  at.ServerUUID,
			Score:       score,
			MatchReason: "Matched in " + strings.Join(matchedFields, ", "),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// buildMatcher returns a compiled case-insensitive-by-default matcher for
// the configured pattern, or for the literal query when no pattern is
// configured or the configured pattern fails to compile.
func (p *RegexProvider) buildMatcher(query string) *regexp.Regexp {
	pattern := p.cfg.Pattern
	if pattern == "" {
		pattern = regexp.QuoteMeta(query)
	} else if re, err := p.compile(pattern); err == nil {
		return re
	} else {
		pattern = regexp.QuoteMeta(query)
	}
	re, err := p.compile(pattern)
	if err != nil {
		// QuoteMeta output is always a valid pattern; this is unreachable
		// in practice, but fall back to a matcher that matches nothing
		// rather than panic.
		return regexp.MustCompile(`$.^`)
	}
	return re
}

func (p *RegexProvider) compile(pattern string) (*regexp.Regexp, error) {
	if !p.cfg.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func fieldText(t types.Tool, field string) string {
	switch field {
	case "name":
		return t.Name
	case "description":
		return t.Description
	default:
		return ""
	}
}
