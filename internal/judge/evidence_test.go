package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/searchbench/internal/model"
)

func TestCheckEvidenceMinCitations(t *testing.T) {
	ev := &model.EvidenceRequirement{MinCitations: 2}

	passed, notes := checkEvidence([]string{"https://a.example", "https://b.example"}, ev)
	assert.True(t, passed)
	assert.Empty(t, notes)

	// duplicates count once
	passed, notes = checkEvidence([]string{"https://a.example", "https://a.example"}, ev)
	assert.False(t, passed)
	assert.Equal(t, "only 1 citation(s), need 2", notes)

	passed, notes = checkEvidence(nil, ev)
	assert.False(t, passed)
	assert.Equal(t, "only 0 citation(s), need 2", notes)
}

func TestCheckEvidenceRequiredDomains(t *testing.T) {
	ev := &model.EvidenceRequirement{RequiredDomains: []string{"sec.gov"}}

	tests := []struct {
		name      string
		citations []string
		wantPass  bool
	}{
		{"exact host", []string{"https://sec.gov/filings"}, true},
		{"subdomain", []string{"https://efts.sec.gov/doc"}, true},
		{"www stripped", []string{"https://www.sec.gov/"}, true},
		{"bare domain no scheme", []string{"sec.gov/filings/10k"}, true},
		{"different domain", []string{"https://example.com"}, false},
		{"no citations", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed, notes := checkEvidence(tt.citations, ev)
			assert.Equal(t, tt.wantPass, passed)
			if !tt.wantPass {
				assert.Equal(t, "missing domains: sec.gov", notes)
			}
		})
	}
}

func TestCheckEvidenceRequiredSources(t *testing.T) {
	ev := &model.EvidenceRequirement{RequiredSources: []string{"10-K", "annual report"}}

	passed, notes := checkEvidence([]string{"https://sec.gov/10-k/annual-REPORT.pdf"}, ev)
	assert.True(t, passed)
	assert.Empty(t, notes)

	passed, notes = checkEvidence([]string{"https://sec.gov/10-k/filing.pdf"}, ev)
	assert.False(t, passed)
	assert.Equal(t, "missing sources: annual report", notes)
}

func TestCheckEvidenceJoinsReasons(t *testing.T) {
	ev := &model.EvidenceRequirement{
		MinCitations:    3,
		RequiredDomains: []string{"sec.gov", "nasdaq.com"},
		RequiredSources: []string{"10-K"},
	}
	passed, notes := checkEvidence([]string{"https://example.com"}, ev)
	require.False(t, passed)
	assert.Equal(t, "only 1 citation(s), need 3; missing domains: sec.gov, nasdaq.com; missing sources: 10-K", notes)
}

func TestApplyEvidence(t *testing.T) {
	base := model.JudgeResult{
		Label:       model.LabelCorrect,
		Passed:      true,
		Explanation: "Matches.",
		Raw:         "CORRECT: Matches.",
		Model:       "test-model",
	}

	t.Run("nil requirement leaves result untouched", func(t *testing.T) {
		got := applyEvidence(base, nil, nil, true)
		assert.Equal(t, base, got)
		assert.Nil(t, got.EvidencePassed)
	})

	t.Run("passing gate annotates", func(t *testing.T) {
		ev := &model.EvidenceRequirement{MinCitations: 1}
		got := applyEvidence(base, []string{"https://a.example"}, ev, true)
		assert.True(t, got.Passed)
		require.NotNil(t, got.EvidencePassed)
		assert.True(t, *got.EvidencePassed)
		assert.Empty(t, got.EvidenceNotes)
	})

	t.Run("failing gate overrides closed verdict", func(t *testing.T) {
		ev := &model.EvidenceRequirement{MinCitations: 2}
		got := applyEvidence(base, []string{"https://a.example"}, ev, true)
		assert.False(t, got.Passed)
		assert.Equal(t, model.LabelIncorrect, got.Label)
		assert.Equal(t, "Evidence check failed: only 1 citation(s), need 2", got.Explanation)
		require.NotNil(t, got.EvidencePassed)
		assert.False(t, *got.EvidencePassed)
		assert.Equal(t, "only 1 citation(s), need 2", got.EvidenceNotes)
		// the original model reply is preserved for the report
		assert.Equal(t, "CORRECT: Matches.", got.Raw)
	})

	t.Run("failing gate overrides open verdict", func(t *testing.T) {
		open := model.JudgeResult{Label: model.LabelPlausible, Passed: true, Explanation: "Cited."}
		ev := &model.EvidenceRequirement{MinCitations: 2}
		got := applyEvidence(open, []string{"https://a.example"}, ev, false)
		assert.False(t, got.Passed)
		assert.Equal(t, model.LabelImplausible, got.Label)
	})
}
