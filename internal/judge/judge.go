// Package judge grades provider answers with an LLM and deterministic
// fallbacks, and enforces per-query evidence requirements.
package judge

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/searchbench/internal/model"
	"github.com/sells-group/searchbench/pkg/anthropic"
)

// DefaultConcurrency bounds simultaneous grading calls across a run.
const DefaultConcurrency = 6

const maxVerdictTokens = 200

// Judge grades answers against their queries. Grading never returns an
// error: a failed or unparseable model call degrades to the deterministic
// fallback so one flaky verdict cannot sink a whole run.
type Judge struct {
	client      anthropic.Client
	model       string
	concurrency int
}

func New(client anthropic.Client, model string, concurrency int) *Judge {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Judge{client: client, model: model, concurrency: concurrency}
}

// Model returns the grading model identifier.
func (j *Judge) Model() string { return j.model }

// Grade grades one provider response to a query.
func (j *Judge) Grade(ctx context.Context, query model.Query, response model.SearchResult) model.JudgeResult {
	return j.GradeText(ctx, query.Text, query.Expected, response.Answer, response.Citations, query.Evidence)
}

// GradeText grades an answer against a question. A nil expected slice
// selects open-ended mode. The evidence gate runs on every path, including
// the empty-answer short circuit.
func (j *Judge) GradeText(ctx context.Context, question string, expected []string, answer string, citations []string, evidence *model.EvidenceRequirement) model.JudgeResult {
	hasExpected := expected != nil
	answer = strings.TrimSpace(answer)

	filtered := make([]string, 0, len(citations))
	for _, c := range citations {
		if c != "" {
			filtered = append(filtered, c)
		}
	}

	if answer == "" {
		result := model.JudgeResult{
			Label:       model.FailLabel(hasExpected),
			Passed:      false,
			Explanation: "No answer provided.",
		}
		return applyEvidence(result, filtered, evidence, hasExpected)
	}

	temperature := 0.0
	resp, err := j.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       j.model,
		MaxTokens:   maxVerdictTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: buildPrompt(question, expected, answer, filtered)}},
		Temperature: &temperature,
	})
	if err != nil {
		zap.L().Debug("judge: model call failed, using fallback", zap.Error(err))
		return applyEvidence(fallback(expected, answer, filtered, err.Error()), filtered, evidence, hasExpected)
	}

	raw := strings.TrimSpace(resp.Text())
	label, explanation, ok := parseVerdict(raw, hasExpected)
	if !ok {
		return applyEvidence(fallback(expected, answer, filtered, "Unable to parse judge response."), filtered, evidence, hasExpected)
	}

	result := model.JudgeResult{
		Label:       label,
		Passed:      label.Passed(),
		Explanation: explanation,
		Raw:         raw,
		Model:       j.model,
	}
	return applyEvidence(result, filtered, evidence, hasExpected)
}

// GradeRun grades every (query, provider) response in the run with at most
// j.concurrency grading calls in flight.
func (j *Judge) GradeRun(ctx context.Context, run model.RunResult) (model.GradedRun, error) {
	graded := make([]model.GradedQuery, len(run.Results))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for i, item := range run.Results {
		graded[i] = model.GradedQuery{
			Query:     item.Query,
			Responses: item.Results,
			Judgments: make(map[string]model.JudgeResult, len(item.Results)),
		}
		for name, response := range item.Results {
			g.Go(func() error {
				verdict := j.Grade(ctx, item.Query, response)
				mu.Lock()
				graded[i].Judgments[name] = verdict
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return model.GradedRun{}, eris.Wrap(err, "judge: grade run")
	}
	return model.GradedRun{Run: run, Queries: graded}, nil
}

// preflightCase is a known-verdict probe used to sanity-check the grader.
type preflightCase struct {
	question   string
	expected   []string
	answer     string
	shouldPass bool
}

var preflightCases = []preflightCase{
	{"What is 1+1?", []string{"2"}, "The answer is 2", true},
	{"What is 1+1?", []string{"2"}, "The answer is 3", false},
	{"Capital of France?", []string{"Paris"}, "Paris is the capital", true},
	{"Capital of France?", []string{"Paris"}, "London is the capital", false},
	{"Who founded Microsoft?", []string{"Bill Gates and Paul Allen"}, "Bill Gates", true},
}

// Preflight grades a handful of known cases and fails unless at least four
// of the five come back right. Run this before spending provider quota.
func (j *Judge) Preflight(ctx context.Context) error {
	passed := 0
	for _, c := range preflightCases {
		result := j.GradeText(ctx, c.question, c.expected, c.answer, nil, nil)
		if result.Passed == c.shouldPass {
			passed++
		}
	}
	if passed < 4 {
		return eris.Errorf("judge: preflight failed: %d/%d correct", passed, len(preflightCases))
	}
	zap.L().Info("judge preflight passed", zap.Int("correct", passed), zap.Int("cases", len(preflightCases)))
	return nil
}
