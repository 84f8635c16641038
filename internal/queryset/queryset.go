// Package queryset loads, samples, and appends benchmark query sets.
// The named sets public, private, and hard live in the configured queries
// directory; anything else is treated as a file path. Files may be JSON or
// YAML, selected by extension.
package queryset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/searchbench/internal/model"
)

var namedSets = map[string]bool{"public": true, "private": true, "hard": true}

type rawFile struct {
	Queries []rawQuery `json:"queries" yaml:"queries"`
}

type rawQuery struct {
	ID         string       `json:"id" yaml:"id"`
	Query      string       `json:"query" yaml:"query"`
	Expected   any          `json:"expected" yaml:"expected"`
	Category   string       `json:"category" yaml:"category"`
	Notes      string       `json:"notes" yaml:"notes"`
	Difficulty string       `json:"difficulty" yaml:"difficulty"`
	Evidence   *rawEvidence `json:"evidence" yaml:"evidence"`
}

type rawEvidence struct {
	MinCitations    int `json:"min_citations" yaml:"min_citations"`
	RequiredDomains any `json:"required_domains" yaml:"required_domains"`
	RequiredSources any `json:"required_sources" yaml:"required_sources"`
}

// Load resolves and parses a query set.
func Load(querySet, queriesDir string) ([]model.Query, error) {
	path, err := resolvePath(querySet, queriesDir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "queryset: read %s", path)
	}

	var file rawFile
	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, &file)
	} else {
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "queryset: parse %s", path)
	}

	queries := make([]model.Query, 0, len(file.Queries))
	for idx, item := range file.Queries {
		if strings.TrimSpace(item.Query) == "" {
			return nil, eris.Errorf("queryset: missing query text at index %d in %s", idx+1, path)
		}
		category := item.Category
		if category == "" {
			category = "general"
		}
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("%s_%02d", category, idx+1)
		}
		query := model.Query{
			ID:         id,
			Text:       item.Query,
			Expected:   normalizeExpected(item.Expected),
			Category:   category,
			Notes:      item.Notes,
			Difficulty: item.Difficulty,
		}
		if item.Evidence != nil {
			ev := model.EvidenceRequirement{
				MinCitations:    item.Evidence.MinCitations,
				RequiredDomains: toStringList(item.Evidence.RequiredDomains),
				RequiredSources: toStringList(item.Evidence.RequiredSources),
			}
			query.Evidence = ev.Normalize()
		}
		queries = append(queries, query)
	}
	return queries, nil
}

// Sample returns count randomly chosen queries, or everything when the set
// is smaller than count.
func Sample(queries []model.Query, count int) []model.Query {
	if count >= len(queries) {
		return queries
	}
	shuffled := make([]model.Query, len(queries))
	copy(shuffled, queries)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

// Append adds an open-ended query to the private set, creating the file on
// first use, and returns the assigned id. Existing entries are preserved
// untouched.
func Append(queriesDir, text, category, notes string) (string, error) {
	path := filepath.Join(queriesDir, "private.json")

	doc := struct {
		Queries []json.RawMessage `json:"queries"`
	}{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", eris.Wrapf(err, "queryset: parse %s", path)
		}
	} else if !os.IsNotExist(err) {
		return "", eris.Wrapf(err, "queryset: read %s", path)
	}

	id := fmt.Sprintf("private_%02d", len(doc.Queries)+1)
	entry := map[string]any{
		"id":       id,
		"query":    text,
		"expected": nil,
		"category": category,
	}
	if notes != "" {
		entry["notes"] = notes
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return "", eris.Wrap(err, "queryset: marshal entry")
	}
	doc.Queries = append(doc.Queries, raw)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "queryset: marshal document")
	}
	if err := os.MkdirAll(queriesDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "queryset: create %s", queriesDir)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", eris.Wrapf(err, "queryset: write %s", path)
	}
	return id, nil
}

func resolvePath(querySet, queriesDir string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(querySet))
	var candidates []string
	if namedSets[name] {
		candidates = []string{
			filepath.Join(queriesDir, name+".json"),
			filepath.Join(queriesDir, name+".yaml"),
			filepath.Join(queriesDir, name+".yml"),
		}
	} else {
		candidates = []string{querySet}
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", eris.Errorf("queryset: query set not found: %s (use public, hard, private, or a file path)", querySet)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// normalizeExpected maps the loose expected field onto the closed/open
// distinction: nil stays nil (open-ended), a scalar becomes a single-entry
// list, and list entries are stringified.
func normalizeExpected(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if entry == nil {
				continue
			}
			out = append(out, stringify(entry))
		}
		return out
	default:
		return []string{stringify(v)}
	}
}

func toStringList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if entry == nil {
				continue
			}
			if s := stringify(entry); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}
