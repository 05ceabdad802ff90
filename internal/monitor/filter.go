package monitor

import (
	"strings"
)

// Filter drops trends matching operator supplied exclusion terms.
type Filter struct {
	excluded []string
	minScore int
	dedupe   bool
}

// FilterConfig holds filter configuration.
type FilterConfig struct {
	ExcludeTerms []string
	MinScore     int
	Dedupe       bool // Drop repeated titles, ignoring case
}

// NewFilter creates a new filter. A zero config passes everything.
func NewFilter(cfg FilterConfig) *Filter {
	terms := make([]string, 0, len(cfg.ExcludeTerms))
	for _, term := range cfg.ExcludeTerms {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			terms = append(terms, term)
		}
	}

	return &Filter{
		excluded: terms,
		minScore: cfg.MinScore,
		dedupe:   cfg.Dedupe,
	}
}

// FilterResult contains the filter decision.
type FilterResult struct {
	Pass   bool
	Reason string
}

// Check examines a trend and returns whether it should be relayed.
func (f *Filter) Check(trend Trend) FilterResult {
	if f.minScore > 0 && trend.Score < f.minScore {
		return FilterResult{Pass: false, Reason: "score below threshold"}
	}

	title := strings.ToLower(trend.Title)
	for _, term := range f.excluded {
		if strings.Contains(title, term) {
			return FilterResult{Pass: false, Reason: "contains excluded term: " + term}
		}
	}

	return FilterResult{Pass: true}
}

// FilterTrends returns the trends that pass, in their original order.
func (f *Filter) FilterTrends(trends []Trend) []Trend {
	result := make([]Trend, 0, len(trends))
	seen := make(map[string]struct{}, len(trends))

	for _, trend := range trends {
		if !f.Check(trend).Pass {
			continue
		}
		if f.dedupe {
			key := strings.ToLower(strings.TrimSpace(trend.Title))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		result = append(result, trend)
	}

	return result
}
