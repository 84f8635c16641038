package calibrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/history"
)

func intPtr(v int) *int { return &v }

func historyWithP99(provider string, samples ...int) history.Document {
	doc := history.Document{}
	for _, sample := range samples {
		doc.Runs = append(doc.Runs, history.RunEntry{
			Results: map[string]history.ProviderEntry{
				provider: {LatencyP99MS: intPtr(sample)},
			},
		})
	}
	return doc
}

func TestSuggestTimeoutsKeepsDefaultsOnThinHistory(t *testing.T) {
	// nine samples is one short of the floor
	doc := historyWithP99("exa", 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000)
	got := SuggestTimeouts(doc)
	assert.Equal(t, config.DefaultTimeouts(), got)
}

func TestSuggestTimeoutsIgnoresNonPositiveSamples(t *testing.T) {
	doc := historyWithP99("exa", 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000)
	doc.Runs = append(doc.Runs, history.RunEntry{
		Results: map[string]history.ProviderEntry{"exa": {LatencyP99MS: intPtr(0)}},
	})
	doc.Runs = append(doc.Runs, history.RunEntry{
		Results: map[string]history.ProviderEntry{"exa": {}},
	})
	got := SuggestTimeouts(doc)
	assert.Equal(t, config.DefaultTimeouts()["exa"], got["exa"])
}

func TestSuggestTimeoutsFromHistory(t *testing.T) {
	// ten identical 40s p99 samples: 40000 * 1.2 / 1000 = 48
	doc := historyWithP99("exa", 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000, 40000)
	got := SuggestTimeouts(doc)
	assert.Equal(t, 48, got["exa"])
	// untouched providers keep defaults
	assert.Equal(t, config.DefaultTimeouts()["brave"], got["brave"])
}

func TestSuggestTimeoutsClamps(t *testing.T) {
	fast := historyWithP99("exa", 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)
	assert.Equal(t, 15, SuggestTimeouts(fast)["exa"])

	slow := historyWithP99("exa", 90000, 90000, 90000, 90000, 90000, 90000, 90000, 90000, 90000, 90000)
	assert.Equal(t, 60, SuggestTimeouts(slow)["exa"])
}

func TestApplyTimeoutsRewritesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"# benchmark settings",
		"judge:",
		"  model: test-model",
		"timeouts:",
		"  default: 30",
		"  exa: 30",
		"results:",
		"  dir: results",
		"",
	}, "\n")), 0o644))

	require.NoError(t, ApplyTimeouts(path, map[string]int{
		"default": 30, "exa": 48, "parallel": 30, "brave": 20, "linkup": 25, "tavily": 20,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg struct {
		Judge    struct{ Model string }
		Timeouts map[string]int
		Results  struct{ Dir string }
	}
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	// other sections survive the rewrite
	assert.Equal(t, "test-model", cfg.Judge.Model)
	assert.Equal(t, "results", cfg.Results.Dir)
	assert.Equal(t, 48, cfg.Timeouts["exa"])
	assert.Equal(t, 20, cfg.Timeouts["tavily"])
	assert.Contains(t, string(data), "# benchmark settings")
}

func TestApplyTimeoutsCreatesFileAndBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, ApplyTimeouts(path, map[string]int{"default": 30, "exa": 45}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg struct{ Timeouts map[string]int }
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, map[string]int{"default": 30, "exa": 45}, cfg.Timeouts)

	// default comes first in the rewritten block
	defaultIdx := strings.Index(string(data), "default:")
	exaIdx := strings.Index(string(data), "exa:")
	assert.Less(t, defaultIdx, exaIdx)
}
