package model

// Label is the judge's verdict classification. Closed questions are graded
// correct/incorrect, open-ended ones plausible/implausible.
type Label string

const (
	LabelCorrect     Label = "correct"
	LabelIncorrect   Label = "incorrect"
	LabelPlausible   Label = "plausible"
	LabelImplausible Label = "implausible"
)

// Valid reports whether l is one of the four accepted labels.
func (l Label) Valid() bool {
	switch l {
	case LabelCorrect, LabelIncorrect, LabelPlausible, LabelImplausible:
		return true
	}
	return false
}

// Passed reports whether the label counts as a passing verdict.
func (l Label) Passed() bool {
	return l == LabelCorrect || l == LabelPlausible
}

// FailLabel returns the failing label for the grading mode: incorrect for
// closed-answer queries, implausible for open-ended ones.
func FailLabel(hasExpected bool) Label {
	if hasExpected {
		return LabelIncorrect
	}
	return LabelImplausible
}

// JudgeResult is the verdict for one (query, provider) answer. Immutable.
type JudgeResult struct {
	Label          Label  `json:"label"`
	Passed         bool   `json:"passed"`
	Explanation    string `json:"explanation"`
	Raw            string `json:"raw,omitempty"`
	Model          string `json:"model,omitempty"`
	EvidencePassed *bool  `json:"evidence_passed,omitempty"`
	EvidenceNotes  string `json:"evidence_notes,omitempty"`
}
