package judge

import (
	"regexp"
	"strings"

	"github.com/sells-group/searchbench/internal/model"
)

var verdictRe = regexp.MustCompile(`(?i)^(CORRECT|INCORRECT|PLAUSIBLE|IMPLAUSIBLE):\s*(.+)$`)

// parseVerdict extracts the label and explanation from the grader's reply.
// A verdict in the wrong mode (a PLAUSIBLE label on a closed query, or a
// CORRECT label on an open one) is treated as unparseable so the caller
// falls back to deterministic matching.
func parseVerdict(raw string, hasExpected bool) (model.Label, string, bool) {
	match := verdictRe.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return "", "", false
	}
	label := model.Label(strings.ToLower(match[1]))
	if hasExpected && (label == model.LabelPlausible || label == model.LabelImplausible) {
		return "", "", false
	}
	if !hasExpected && (label == model.LabelCorrect || label == model.LabelIncorrect) {
		return "", "", false
	}
	explanation := strings.TrimSpace(match[2])
	if explanation == "" {
		explanation = "No explanation provided."
	}
	return label, explanation, true
}
