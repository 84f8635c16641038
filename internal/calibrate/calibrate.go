// Package calibrate derives per-provider timeout suggestions from run
// history and writes them back to the config file.
package calibrate

import (
	"os"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/history"
	"github.com/sells-group/searchbench/internal/stats"
)

const (
	// minSamples is how many historical p99 observations a provider needs
	// before its default timeout gets overridden.
	minSamples = 10

	headroom   = 1.2
	minTimeout = 15
	maxTimeout = 60
)

// SuggestTimeouts proposes a timeout in seconds for every configured
// provider. The suggestion is the 99th percentile of historical p99
// latencies with headroom, clamped to a sane range; providers with thin
// history keep their defaults.
func SuggestTimeouts(doc history.Document) map[string]int {
	suggestions := make(map[string]int)
	for provider, fallback := range config.DefaultTimeouts() {
		var samples []float64
		for _, run := range doc.Runs {
			entry, ok := run.Results[provider]
			if !ok {
				continue
			}
			if entry.LatencyP99MS != nil && *entry.LatencyP99MS > 0 {
				samples = append(samples, float64(*entry.LatencyP99MS))
			}
		}
		if len(samples) < minSamples {
			suggestions[provider] = fallback
			continue
		}
		p99 := stats.PercentileFloat(samples, 99)
		suggested := int(p99 * headroom / 1000)
		if suggested < minTimeout {
			suggested = minTimeout
		}
		if suggested > maxTimeout {
			suggested = maxTimeout
		}
		suggestions[provider] = suggested
	}
	return suggestions
}

// timeoutKeyOrder fixes how the rewritten timeouts block is laid out.
var timeoutKeyOrder = []string{"default", "exa", "parallel", "brave", "linkup", "tavily"}

// ApplyTimeouts rewrites the timeouts block of the YAML config file in
// place, preserving every other section and its comments. A missing file
// or missing block is created.
func ApplyTimeouts(configPath string, updates map[string]int) error {
	var root yaml.Node
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return eris.Wrapf(err, "calibrate: parse %s", configPath)
		}
	case os.IsNotExist(err):
		// start a fresh document
	default:
		return eris.Wrapf(err, "calibrate: read %s", configPath)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return eris.Errorf("calibrate: %s is not a mapping document", configPath)
	}

	block := timeoutsNode(updates)
	replaced := false
	for i := 0; i < len(doc.Content)-1; i += 2 {
		if doc.Content[i].Value == "timeouts" {
			doc.Content[i+1] = block
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "timeouts"},
			block)
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return eris.Wrap(err, "calibrate: marshal config")
	}
	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return eris.Wrapf(err, "calibrate: write %s", configPath)
	}
	return nil
}

func timeoutsNode(updates map[string]int) *yaml.Node {
	keys := make([]string, 0, len(updates))
	seen := make(map[string]bool, len(updates))
	for _, key := range timeoutKeyOrder {
		if _, ok := updates[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var extras []string
	for key := range updates {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	keys = append(keys, extras...)

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(updates[key])})
	}
	return node
}
