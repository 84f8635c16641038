package judge

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/searchbench/internal/model"
)

const fuzzyMatchThreshold = 0.86

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	numberWordFor = map[string]string{
		"0": "zero", "1": "one", "2": "two", "3": "three", "4": "four",
		"5": "five", "6": "six", "7": "seven", "8": "eight", "9": "nine",
	}
)

// fallback grades deterministically when the model is unavailable or its
// reply could not be parsed. Closed queries match the expected answers by
// containment, fuzzy similarity, or digit/word equivalence; open queries
// pass when both an answer and at least one citation are present.
func fallback(expected []string, answer string, citations []string, reason string) model.JudgeResult {
	if expected == nil {
		plausible := strings.TrimSpace(answer) != "" && len(citations) > 0
		label := model.LabelImplausible
		if plausible {
			label = model.LabelPlausible
		}
		return model.JudgeResult{
			Label:       label,
			Passed:      plausible,
			Explanation: "Fallback: " + reason,
		}
	}

	normalized := normalizeText(answer)
	for _, exp := range expected {
		expNorm := normalizeText(exp)
		if strings.Contains(normalized, expNorm) {
			return model.JudgeResult{
				Label:       model.LabelCorrect,
				Passed:      true,
				Explanation: "Fallback: matched expected answer (" + reason + ").",
			}
		}
		if sequenceRatio(normalized, expNorm) >= fuzzyMatchThreshold {
			return model.JudgeResult{
				Label:       model.LabelCorrect,
				Passed:      true,
				Explanation: "Fallback: fuzzy match (" + reason + ").",
			}
		}
		if numberEquivalent(normalized, expNorm) {
			return model.JudgeResult{
				Label:       model.LabelCorrect,
				Passed:      true,
				Explanation: "Fallback: numeric equivalence (" + reason + ").",
			}
		}
	}
	return model.JudgeResult{
		Label:       model.LabelIncorrect,
		Passed:      false,
		Explanation: "Fallback: no match (" + reason + ").",
	}
}

// normalizeText lowercases after NFKC folding, strips everything outside
// [a-z0-9\s], and collapses runs of whitespace. Idempotent.
func normalizeText(text string) string {
	lowered := strings.ToLower(norm.NFKC.String(text))
	cleaned := nonAlnumRe.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
}

// numberEquivalent reports whether one string carries a digit whose spelled
// form appears in the other, for single digits 0 through 9.
func numberEquivalent(a, b string) bool {
	for digit, word := range numberWordFor {
		if strings.Contains(a, digit) && strings.Contains(b, word) {
			return true
		}
		if strings.Contains(b, digit) && strings.Contains(a, word) {
			return true
		}
	}
	return false
}

// sequenceRatio computes similarity as twice the total length of the
// longest matching blocks over the combined length, the Ratcliff/Obershelp
// measure. Two empty strings are identical.
func sequenceRatio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingTotal(ar, br)) / float64(total)
}

// matchingTotal recursively sums the longest common substring and the
// matches on either side of it.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingTotal(a[:ai], b[:bi]) +
		matchingTotal(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
				if cur[j+1] > size {
					size = cur[j+1]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
