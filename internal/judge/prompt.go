package judge

import "strings"

const systemPrompt = "You are a precise grader. Prefer concise, direct answers and ignore verbosity."

// buildPrompt renders the grading prompt. Queries with an expected answer
// get the closed-mode CORRECT/INCORRECT rubric; open-ended queries get the
// PLAUSIBLE/IMPLAUSIBLE rubric with citations included for context.
func buildPrompt(question string, expected []string, answer string, citations []string) string {
	if expected != nil {
		return strings.Join([]string{
			"You are grading a search API's answer to a factual question.",
			"",
			"Question: " + question,
			"Expected answer: " + strings.Join(expected, "; "),
			"API's answer: " + answer,
			"",
			"Think step-by-step:",
			"1. What are the key facts in the expected answer?",
			"2. Does the API's answer contain those key facts?",
			"3. Are there any factual errors in the API's answer?",
			"4. Is the answer concise and direct? (Verbose padding does not add credit)",
			"",
			`Consider semantic equivalence: "4" = "four", "NYC" = "New York City", etc.`,
			"",
			"Respond with exactly one line:",
			"CORRECT: [one-sentence explanation]",
			"or",
			"INCORRECT: [one-sentence explanation]",
		}, "\n")
	}

	citationsText := "None"
	if len(citations) > 0 {
		citationsText = strings.Join(citations, ", ")
	}
	return strings.Join([]string{
		"You are evaluating a search API's answer for plausibility and quality.",
		"",
		"Question: " + question,
		"API's answer: " + answer,
		"Citations provided: " + citationsText,
		"",
		"Evaluate step-by-step:",
		"1. Does the answer directly and specifically address the question?",
		"2. Are the citations from credible, authoritative sources?",
		"3. Does the answer make claims without citation support?",
		"4. Could this answer be verified by checking the citations?",
		"",
		"Respond with exactly one line:",
		"PLAUSIBLE: [one-sentence explanation]",
		"or",
		"IMPLAUSIBLE: [one-sentence explanation]",
	}, "\n")
}
