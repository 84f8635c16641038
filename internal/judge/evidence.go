package judge

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sells-group/searchbench/internal/model"
)

// applyEvidence enforces the query's evidence requirement on an already
// labeled result. A passing gate annotates the result; a failing gate
// overrides the label to the mode's failing value regardless of what the
// grader said.
func applyEvidence(result model.JudgeResult, citations []string, evidence *model.EvidenceRequirement, hasExpected bool) model.JudgeResult {
	if evidence == nil {
		return result
	}
	passed, notes := checkEvidence(citations, evidence)
	if passed {
		result.EvidencePassed = boolPtr(true)
		result.EvidenceNotes = ""
		return result
	}
	return model.JudgeResult{
		Label:          model.FailLabel(hasExpected),
		Passed:         false,
		Explanation:    "Evidence check failed: " + notes,
		Raw:            result.Raw,
		Model:          result.Model,
		EvidencePassed: boolPtr(false),
		EvidenceNotes:  notes,
	}
}

// checkEvidence evaluates all gate conditions and reports every failure,
// not just the first.
func checkEvidence(citations []string, evidence *model.EvidenceRequirement) (bool, string) {
	unique := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		if c != "" {
			unique[c] = struct{}{}
		}
	}

	var reasons []string
	if evidence.MinCitations > 0 && len(unique) < evidence.MinCitations {
		reasons = append(reasons, fmt.Sprintf("only %d citation(s), need %d", len(unique), evidence.MinCitations))
	}

	domains := extractDomains(citations)
	var missingDomains []string
	for _, required := range evidence.RequiredDomains {
		if !domainPresent(domains, required) {
			missingDomains = append(missingDomains, required)
		}
	}
	if len(missingDomains) > 0 {
		reasons = append(reasons, "missing domains: "+strings.Join(missingDomains, ", "))
	}

	blob := strings.ToLower(strings.Join(citations, " "))
	var missingSources []string
	for _, source := range evidence.RequiredSources {
		if !strings.Contains(blob, strings.ToLower(source)) {
			missingSources = append(missingSources, source)
		}
	}
	if len(missingSources) > 0 {
		reasons = append(reasons, "missing sources: "+strings.Join(missingSources, ", "))
	}

	if len(reasons) > 0 {
		return false, strings.Join(reasons, "; ")
	}
	return true, ""
}

// extractDomains maps citations to their lowercased hosts, defaulting the
// scheme to https for bare domains and stripping a leading www.
func extractDomains(citations []string) map[string]struct{} {
	domains := make(map[string]struct{}, len(citations))
	for _, citation := range citations {
		value := strings.TrimSpace(citation)
		if value == "" {
			continue
		}
		if !strings.Contains(value, "://") {
			value = "https://" + value
		}
		host := ""
		if parsed, err := url.Parse(value); err == nil {
			host = parsed.Host
			if host == "" {
				host = strings.SplitN(parsed.Path, "/", 2)[0]
			}
		}
		host = strings.ToLower(host)
		host = strings.TrimPrefix(host, "www.")
		if host != "" {
			domains[host] = struct{}{}
		}
	}
	return domains
}

// domainPresent accepts exact matches and subdomains of the requirement.
func domainPresent(domains map[string]struct{}, required string) bool {
	required = strings.ToLower(required)
	for domain := range domains {
		if domain == required || strings.HasSuffix(domain, "."+required) || strings.HasSuffix(domain, required) {
			return true
		}
	}
	return false
}

func boolPtr(v bool) *bool { return &v }
