package model

import "strings"

// Query is a single benchmark question. Immutable once loaded.
type Query struct {
	ID         string               `json:"id"`
	Text       string               `json:"query"`
	Expected   []string             `json:"expected,omitempty"`
	Category   string               `json:"category"`
	Notes      string               `json:"notes,omitempty"`
	Difficulty string               `json:"difficulty,omitempty"`
	Evidence   *EvidenceRequirement `json:"evidence,omitempty"`
}

// OpenEnded reports whether the query has no expected answers and should be
// judged for plausibility instead of correctness.
func (q Query) OpenEnded() bool {
	return q.Expected == nil
}

// EvidenceRequirement constrains the citations a provider must supply for a
// query, independent of answer correctness.
type EvidenceRequirement struct {
	MinCitations    int      `json:"min_citations,omitempty"`
	RequiredDomains []string `json:"required_domains,omitempty"`
	RequiredSources []string `json:"required_sources,omitempty"`
}

// Normalize lowercases required domains and collapses an all-empty
// requirement to nil, so "no requirement" and "absent" are the same thing.
func (e *EvidenceRequirement) Normalize() *EvidenceRequirement {
	if e == nil {
		return nil
	}

	domains := make([]string, 0, len(e.RequiredDomains))
	for _, d := range e.RequiredDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	sources := make([]string, 0, len(e.RequiredSources))
	for _, s := range e.RequiredSources {
		if strings.TrimSpace(s) != "" {
			sources = append(sources, s)
		}
	}

	minCitations := e.MinCitations
	if minCitations < 0 {
		minCitations = 0
	}

	if minCitations == 0 && len(domains) == 0 && len(sources) == 0 {
		return nil
	}

	return &EvidenceRequirement{
		MinCitations:    minCitations,
		RequiredDomains: domains,
		RequiredSources: sources,
	}
}
